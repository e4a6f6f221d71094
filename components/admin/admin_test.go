package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/component"
	"github.com/yanizio/venuedesk/internal/config"
	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/postfields"
	"github.com/yanizio/venuedesk/internal/session"
	"github.com/yanizio/venuedesk/internal/submission"
	"github.com/yanizio/venuedesk/internal/venue"
)

const jwtSecret = "0123456789abcdef0123456789abcdef"

/*──────────────────────────── fakes ────────────────────────────────────────*/

type fakeVenues struct {
	rows []venue.Venue
}

func (f *fakeVenues) Create(_ context.Context, in venue.CreateInput) (*venue.Venue, error) {
	switch {
	case in.Name == "!!!":
		return nil, &venue.InputError{Field: "name", Message: "Name must contain letters or digits"}
	case in.Slug == "the-royal-hotel":
		return nil, venue.ErrSlugTaken
	}
	v := venue.Venue{ID: "v2", Name: in.Name, Slug: "crown", AccessKey: "abc", CreatedAt: time.Now()}
	if in.PIN != "" {
		v.PINHash = sql.NullString{String: "hash", Valid: true}
	}
	f.rows = append(f.rows, v)
	return &v, nil
}

func (f *fakeVenues) Delete(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return venue.ErrNotFound
}

func (f *fakeVenues) List(context.Context) ([]venue.Venue, error) { return f.rows, nil }
func (f *fakeVenues) Count(context.Context) (int, error)          { return len(f.rows), nil }
func (f *fakeVenues) Gate(context.Context, string, string, string) (*venue.Venue, venue.GateResult, error) {
	return nil, venue.GateNotFound, nil
}

type fakeSubs struct {
	rows    []submission.Summary
	detail  *submission.Detail
	filter  submission.Filter
	updated map[string]submission.Status
}

func (f *fakeSubs) List(_ context.Context, flt submission.Filter) ([]submission.Summary, error) {
	f.filter = flt
	return f.rows, nil
}

func (f *fakeSubs) Recent(_ context.Context, n int) ([]submission.Summary, error) {
	if n < len(f.rows) {
		return f.rows[:n], nil
	}
	return f.rows, nil
}

func (f *fakeSubs) Get(_ context.Context, id string) (*submission.Detail, error) {
	if f.detail == nil || f.detail.ID != id {
		return nil, submission.ErrNotFound
	}
	return f.detail, nil
}

func (f *fakeSubs) UpdateStatus(_ context.Context, id string, s submission.Status) error {
	if !s.Valid() {
		return submission.ErrInvalidStatus
	}
	if f.detail == nil || f.detail.ID != id {
		return submission.ErrNotFound
	}
	f.updated[id] = s
	return nil
}

func (f *fakeSubs) Counts(context.Context) (submission.Counts, error) {
	return submission.Counts{Total: 12, New: 4, Ready: 3}, nil
}

/*──────────────────────────── harness ──────────────────────────────────────*/

var at = time.Date(2025, 6, 1, 14, 5, 0, 0, time.UTC)

func trivia() submission.Submission {
	return submission.Submission{
		ID:            "s1",
		VenueID:       "v1",
		PostType:      postfields.Event,
		Status:        submission.StatusNew,
		RunStartDate:  at,
		RunEndDate:    sql.NullTime{Time: at.AddDate(0, 0, 7), Valid: true},
		PostFrequency: submission.FrequencyOnce,
		CTA:           submission.CTABuyTickets,
		FieldsJSON:    json.RawMessage(`{"event_name":"Trivia Night","event_date":"2025-06-06"}`),
		Notes:         sql.NullString{String: "Bring ID", Valid: true},
		CreatedAt:     at,
	}
}

type harness struct {
	venues *fakeVenues
	subs   *fakeSubs
	h      http.Handler
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hs := &harness{
		venues: &fakeVenues{rows: []venue.Venue{{ID: "v1", Name: "The Royal Hotel", Slug: "the-royal-hotel", AccessKey: "k3y", CreatedAt: at}}},
		subs: &fakeSubs{
			rows: []submission.Summary{{Submission: trivia(), VenueName: "The Royal Hotel", AttachmentCount: 1}},
			detail: &submission.Detail{
				Submission: trivia(),
				VenueName:  "The Royal Hotel",
				VenueSlug:  "the-royal-hotel",
				Attachments: []submission.Attachment{{
					ID: "a1", SubmissionID: "s1", FileURL: "https://cdn.example.com/s1/a.jpg",
					FileType: "image/jpeg", FileSize: 2048, OriginalName: "poster.jpg",
				}},
			},
			updated: map[string]submission.Status{},
		},
	}

	verifier := auth.NewVerifier(jwtSecret)
	c := &Component{}
	require.NoError(t, c.Init(component.Deps{
		Config:      &config.Config{HTTP: config.HTTP{BaseURL: "https://requests.example.com/"}},
		Venues:      hs.venues,
		Submissions: hs.subs,
		Gate:        auth.NewGate(verifier, nil),
	}))
	r := chi.NewRouter()
	c.Routes(r)
	hs.h = r

	tok, err := verifier.Sign(auth.User{ID: "u1", Email: "staff@example.com"}, time.Hour)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	session.Start(rec, httptest.NewRequest(http.MethodGet, "/", nil), tok, time.Now().Add(time.Hour))
	hs.cookie = rec.Result().Cookies()[0]
	return hs
}

func (hs *harness) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(hs.cookie)
	rec := httptest.NewRecorder()
	hs.h.ServeHTTP(rec, req)
	return rec
}

func (hs *harness) post(target string, vals url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(hs.cookie)
	rec := httptest.NewRecorder()
	hs.h.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T) string {
	t.Helper()
	tok, err := form.GenerateToken()
	require.NoError(t, err)
	return tok
}

/*──────────────────────────── tests ────────────────────────────────────────*/

func TestRequiresSession(t *testing.T) {
	hs := newHarness(t)
	rec := httptest.NewRecorder()
	hs.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/submissions?status=new", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fsubmissions%3Fstatus%3Dnew", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	hs.h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/venues/v1/delete", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, hs.venues.rows, 1)
}

func TestDashboard(t *testing.T) {
	hs := newHarness(t)
	assert.Equal(t, http.StatusSeeOther, hs.get("/admin").Code)

	rec := hs.get("/admin/dashboard")
	body := rec.Body.String()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `<span class="num">12</span> Total submissions`)
	assert.Contains(t, body, `<span class="num">4</span> New`)
	assert.Contains(t, body, `<span class="num">1</span> Venue`)
	assert.Contains(t, body, "Trivia Night")
	assert.Contains(t, body, "staff@example.com")
	assert.Contains(t, body, `<body class="admin">`)
	assert.Contains(t, body, `href="/admin/dashboard" class="active"`)
}

func TestInboxFilters(t *testing.T) {
	hs := newHarness(t)
	rec := hs.get("/admin/submissions?status=ready&type=event&venue=all")
	body := rec.Body.String()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, submission.Filter{Status: submission.StatusReady, PostType: postfields.Event}, hs.subs.filter)
	assert.Contains(t, body, `<option value="ready" selected>`)
	assert.Contains(t, body, `<option value="event" selected>`)
	assert.Contains(t, body, `href="/admin/submissions/export.xlsx?status=ready&amp;type=event"`)
	assert.Contains(t, body, `<a href="/admin/submissions/s1">Trivia Night</a>`)
	assert.Contains(t, body, `<span class="badge status-new">New</span>`)
	assert.Contains(t, body, "1 submission")

	hs.get("/admin/submissions")
	assert.False(t, hs.subs.filter.Active())
}

func TestDetail(t *testing.T) {
	hs := newHarness(t)
	rec := hs.get("/admin/submissions/s1")
	body := rec.Body.String()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "<h1>Trivia Night</h1>")
	assert.Contains(t, body, "Event Date")
	assert.Contains(t, body, "Buy tickets")
	assert.Contains(t, body, "8 Jun 2025")
	assert.Contains(t, body, "Bring ID")
	assert.Contains(t, body, `<img src="https://cdn.example.com/s1/a.jpg"`)
	assert.Contains(t, body, "2 KB")
	assert.Contains(t, body, `name="csrf_token"`)

	rec = hs.get("/admin/submissions/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}

func TestStatusUpdate(t *testing.T) {
	hs := newHarness(t)

	rec := hs.post("/admin/submissions/s1/status", url.Values{"status": {"ready"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = hs.post("/admin/submissions/s1/status", url.Values{"csrf_token": {token(t)}, "status": {"completed"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = hs.post("/admin/submissions/nope/status", url.Values{"csrf_token": {token(t)}, "status": {"ready"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Any canonical status may follow any other.
	for _, s := range []string{"archived", "new", "needs_info", "ready"} {
		rec = hs.post("/admin/submissions/s1/status", url.Values{"csrf_token": {token(t)}, "status": {s}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/submissions/s1", rec.Header().Get("Location"))
		assert.Equal(t, submission.Status(s), hs.subs.updated["s1"])
	}
}

func TestExport(t *testing.T) {
	hs := newHarness(t)
	rec := hs.get("/admin/submissions/export.xlsx?status=new")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="submissions-`)
	assert.Equal(t, submission.StatusNew, hs.subs.filter.Status)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Submissions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Trivia Night", rows[1][3])
	assert.Equal(t, "https://requests.example.com/admin/submissions/s1", rows[1][11])
}

func TestAPIList(t *testing.T) {
	hs := newHarness(t)
	rec := hs.get("/admin/api/submissions?type=event")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":[{
		"id":"s1","venue_id":"v1","venue_name":"The Royal Hotel","post_type":"event",
		"status":"new","headline":"Trivia Night","run_start_date":"2025-06-01",
		"run_end_date":"2025-06-08","until_sold_out":false,"frequency":"Post once",
		"cta":"Buy tickets","fields":{"event_name":"Trivia Night","event_date":"2025-06-06"},
		"notes":"Bring ID","attachments":1,"created_at":"2025-06-01T14:05:00Z",
		"url":"https://requests.example.com/admin/submissions/s1"}]}`, rec.Body.String())
}

func TestVenueList(t *testing.T) {
	hs := newHarness(t)
	rec := hs.get("/admin/venues")
	body := rec.Body.String()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `value="https://requests.example.com/submit/the-royal-hotel?key=k3y"`)
	assert.Contains(t, body, `action="/admin/venues/v1/delete"`)
	assert.Contains(t, body, `data-confirm="Delete The Royal Hotel?`)
	assert.Contains(t, body, `id="fld-name"`)
}

func TestVenueCreate(t *testing.T) {
	hs := newHarness(t)

	rec := hs.post("/admin/venues", url.Values{"csrf_token": {token(t)}, "name": {"Crown & Anchor"}, "pin": {"2468"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/venues?created=v2", rec.Header().Get("Location"))
	require.Len(t, hs.venues.rows, 2)

	rec = hs.get("/admin/venues?created=v2")
	assert.Contains(t, rec.Body.String(), "Crown &amp; Anchor was created.")
	assert.Contains(t, rec.Body.String(), "https://requests.example.com/submit/crown?key=abc")
}

func TestVenueHandlersLeaveLoggingToService(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))
	hs := newHarness(t)

	rec := hs.post("/admin/venues", url.Values{"csrf_token": {token(t)}, "name": {"Crown & Anchor"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = hs.post("/admin/venues/v2/delete", url.Values{"csrf_token": {token(t)}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Zero(t, logs.FilterMessage("venue created").Len())
	assert.Zero(t, logs.FilterMessage("venue deleted").Len())
}

func TestVenueCreateRejected(t *testing.T) {
	hs := newHarness(t)
	cases := []struct {
		name string
		vals url.Values
		want string
	}{
		{"duplicate slug", url.Values{"name": {"Royal"}, "slug": {"the-royal-hotel"}}, "A venue with this URL slug already exists"},
		{"service input error", url.Values{"name": {"!!!"}}, "Name must contain letters or digits"},
		{"bad pin", url.Values{"name": {"Crown"}, "pin": {"12"}}, "PIN must be 4 digits"},
		{"bad slug", url.Values{"name": {"Crown"}, "slug": {"Crown Hotel"}}, "Lowercase letters, numbers, and hyphens only"},
		{"missing name", url.Values{}, "This field is required."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.vals.Set("csrf_token", token(t))
			rec := hs.post("/admin/venues", tc.vals)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.Len(t, hs.venues.rows, 1)
		})
	}
}

func TestVenueDelete(t *testing.T) {
	hs := newHarness(t)

	rec := hs.post("/admin/venues/v1/delete", url.Values{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, hs.venues.rows, 1)

	rec = hs.post("/admin/venues/zzz/delete", url.Values{"csrf_token": {token(t)}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = hs.post("/admin/venues/v1/delete", url.Values{"csrf_token": {token(t)}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, hs.venues.rows)
}

func TestInitRequiresDeps(t *testing.T) {
	assert.Error(t, (&Component{}).Init(component.Deps{}))
}
