// Unit-tests for submission.Store using sqlmock.
//
// Run: go test ./internal/submission -v

package submission

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/venuedesk/internal/postfields"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet SQL expectations: %v", err)
		}
		raw.Close()
	})
	st := NewStore(sqlx.NewDb(raw, "mysql"))
	st.now = func() time.Time { return fixedNow }
	return st, mock
}

var summaryCols = []string{
	"id", "venue_id", "post_type", "status", "run_start_date", "run_end_date",
	"until_sold_out", "post_frequency", "frequency_custom", "cta", "cta_custom",
	"fields_json", "notes", "created_at", "updated_at", "venue_name", "attachment_count",
}

func TestCreateForcesStatusNew(t *testing.T) {
	st, mock := newMock(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := &Submission{
		ID:            "s1",
		VenueID:       "v1",
		PostType:      postfields.Event,
		Status:        StatusArchived,
		RunStartDate:  start,
		PostFrequency: FrequencyOnce,
		CTA:           CTAWalkIns,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO submission`)).
		WithArgs("s1", "v1", "event", "new", start, sql.NullTime{},
			false, "once", sql.NullString{}, "walk_ins", sql.NullString{},
			"{}", sql.NullString{}, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Status != StatusNew {
		t.Fatalf("status = %q, want new", s.Status)
	}
}

func TestAddAttachmentsBatch(t *testing.T) {
	st, mock := newMock(t)
	rows := []Attachment{
		{ID: "a1", SubmissionID: "s1", FileURL: "u1", FileType: "image/jpeg", FileSize: 10, OriginalName: "a.jpg"},
		{ID: "a2", SubmissionID: "s1", FileURL: "u2", FileType: "video/mp4", FileSize: 20, OriginalName: "b.mp4"},
	}

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO attachment (id, submission_id, file_url, file_type, file_size, original_name, created_at) VALUES (?, ?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs("a1", "s1", "u1", "image/jpeg", int64(10), "a.jpg", fixedNow,
			"a2", "s1", "u2", "video/mp4", int64(20), "b.mp4", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := st.AddAttachments(context.Background(), rows); err != nil {
		t.Fatalf("AddAttachments: %v", err)
	}
	if err := st.AddAttachments(context.Background(), nil); err != nil {
		t.Fatalf("empty AddAttachments: %v", err)
	}
}

func TestListFilters(t *testing.T) {
	st, mock := newMock(t)
	f := ParseFilter(url.Values{"status": {"ready"}, "type": {"event"}, "venue": {"all"}})

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN venue v ON v.id = s.venue_id WHERE s.status = ? AND s.post_type = ? ORDER BY s.created_at DESC`)).
		WithArgs("ready", "event").
		WillReturnRows(sqlmock.NewRows(summaryCols).AddRow(
			"s1", "v1", "event", "ready", fixedNow, nil,
			false, "once", nil, "walk_ins", nil,
			[]byte(`{"event_name":"Trivia"}`), nil, fixedNow, fixedNow, "Royal", 2))

	got, err := st.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Status != StatusReady || got[0].PostType != postfields.Event {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if got[0].VenueName != "Royal" || got[0].AttachmentCount != 2 {
		t.Fatalf("join columns lost: %+v", got[0])
	}
}

func TestListAllIsUnfiltered(t *testing.T) {
	st, mock := newMock(t)
	f := ParseFilter(url.Values{"status": {"all"}, "type": {""}})
	if f.Active() {
		t.Fatalf("all/empty should not constrain: %+v", f)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN venue v ON v.id = s.venue_id ORDER BY s.created_at DESC`)).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(summaryCols))

	if _, err := st.List(context.Background(), f); err != nil {
		t.Fatalf("List: %v", err)
	}
}

func TestRecentLimits(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY s.created_at DESC LIMIT 5`)).
		WillReturnRows(sqlmock.NewRows(summaryCols))

	if _, err := st.Recent(context.Background(), 5); err != nil {
		t.Fatalf("Recent: %v", err)
	}
}

func TestGetJoinsAttachments(t *testing.T) {
	st, mock := newMock(t)
	cols := append(append([]string{}, summaryCols[:15]...), "venue_name", "venue_slug")

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.id = ?`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"s1", "v1", "event", "new", fixedNow, nil,
			true, "custom", "Every Friday", "other", "DM us", []byte(`{}`), "bring ID",
			fixedNow, fixedNow, "Royal", "royal"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM attachment WHERE submission_id = ? ORDER BY created_at`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "file_url", "file_type", "file_size", "original_name", "created_at"}).
			AddRow("a1", "s1", "https://cdn/x.jpg", "image/jpeg", 1024, "x.jpg", fixedNow))

	d, err := st.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.VenueName != "Royal" || len(d.Attachments) != 1 || !d.Attachments[0].IsImage() {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if d.FrequencyText() != "Every Friday" || d.CTAText() != "DM us" || d.EndText() != "Until sold out" {
		t.Fatalf("display text: %q %q %q", d.FrequencyText(), d.CTAText(), d.EndText())
	}
}

func TestGetNotFound(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.id = ?`)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	st, mock := newMock(t)

	if err := st.UpdateStatus(context.Background(), "s1", "scheduled"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE submission SET status = ?, updated_at = ? WHERE id = ?`)).
		WithArgs("archived", fixedNow, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := st.UpdateStatus(context.Background(), "s1", StatusArchived); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE submission SET status = ?`)).
		WithArgs("new", fixedNow, "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM submission WHERE id = ?`)).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)
	if err := st.UpdateStatus(context.Background(), "gone", StatusNew); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCounts(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) AS total`)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "new_count", "ready_count"}).AddRow(9, 4, 2))

	c, err := st.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c != (Counts{Total: 9, New: 4, Ready: 2}) {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestLabels(t *testing.T) {
	if StatusNeedsInfo.Label() != "Needs Info" || Status("x").Label() != "x" {
		t.Error("status labels")
	}
	if Status("scheduled").Valid() {
		t.Error("legacy status accepted")
	}
	if FrequencyDaily.Label() != "Post daily" || CTAWalkIns.Label() != "Walk-ins welcome" {
		t.Error("option labels")
	}
}
