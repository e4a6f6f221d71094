package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/venue"
)

const secret = "0123456789abcdef0123456789abcdef"

type fakeVenues struct {
	rows    []venue.Venue
	created []venue.CreateInput
	deleted []string
}

func (f *fakeVenues) Create(_ context.Context, in venue.CreateInput) (*venue.Venue, error) {
	if in.PIN != "" && !venue.ValidPIN(in.PIN) {
		return nil, &venue.InputError{Field: "pin", Message: "PIN must be exactly 4 digits"}
	}
	f.created = append(f.created, in)
	slug := in.Slug
	if slug == "" {
		slug = venue.MakeSlug(in.Name)
	}
	v := venue.Venue{ID: "id-" + slug, Name: in.Name, Slug: slug, AccessKey: "k" + slug}
	f.rows = append(f.rows, v)
	return &v, nil
}

func (f *fakeVenues) List(context.Context) ([]venue.Venue, error) { return f.rows, nil }

func (f *fakeVenues) BySlug(_ context.Context, slug string) (*venue.Venue, error) {
	for i := range f.rows {
		if f.rows[i].Slug == slug {
			return &f.rows[i], nil
		}
	}
	return nil, venue.ErrNotFound
}

func (f *fakeVenues) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type harness struct {
	venues   *fakeVenues
	migrated bool
	closed   int
}

func (h *harness) open(context.Context) (*env, error) {
	return &env{
		baseURL: "https://requests.example.com",
		venues:  h.venues,
		migrate: func(context.Context) error { h.migrated = true; return nil },
		signer:  auth.NewVerifier(secret),
		close:   func() { h.closed++ },
	}, nil
}

func run(t *testing.T, h *harness, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(h.open)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func newHarness() *harness {
	return &harness{venues: &fakeVenues{rows: []venue.Venue{{
		ID: "v1", Name: "The Royal Hotel", Slug: "the-royal-hotel", AccessKey: "abc",
		PINHash:   sql.NullString{String: "hash", Valid: true},
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}}}}
}

func TestMigrate(t *testing.T) {
	h := newHarness()
	out, _, err := run(t, h, "migrate")
	require.NoError(t, err)
	assert.True(t, h.migrated)
	assert.Equal(t, 1, h.closed)
	assert.Equal(t, "schema up to date\n", out)
}

func TestOpenErrorSurfaces(t *testing.T) {
	cmd := newRootCmd(func(context.Context) (*env, error) { return nil, errors.New("dial tcp: refused") })
	cmd.SetArgs([]string{"venue", "list"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	assert.EqualError(t, err, "dial tcp: refused")
}

func TestVenueCreate(t *testing.T) {
	h := newHarness()
	out, _, err := run(t, h, "venue", "create", "--name", "Crown & Anchor", "--pin", "1234")
	require.NoError(t, err)
	assert.Equal(t, "https://requests.example.com/submit/crown-anchor?key=kcrown-anchor\n", out)
	assert.Equal(t, "1234", h.venues.created[0].PIN)

	_, _, err = run(t, h, "venue", "create")
	assert.ErrorContains(t, err, `"name"`)

	_, _, err = run(t, h, "venue", "create", "--name", "X", "--pin", "12")
	var ie *venue.InputError
	assert.ErrorAs(t, err, &ie)
}

func TestVenueList(t *testing.T) {
	out, _, err := run(t, newHarness(), "venue", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "the-royal-hotel")
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[1], "2025-06-01")
	assert.Contains(t, lines[1], "/submit/the-royal-hotel?key=abc")
}

func TestVenueLink(t *testing.T) {
	h := newHarness()
	out, _, err := run(t, h, "venue", "link", "the-royal-hotel")
	require.NoError(t, err)
	assert.Equal(t, "https://requests.example.com/submit/the-royal-hotel?key=abc\n", out)

	_, _, err = run(t, h, "venue", "link", "nope")
	assert.ErrorIs(t, err, venue.ErrNotFound)
}

func TestVenueDelete(t *testing.T) {
	h := newHarness()
	_, _, err := run(t, h, "venue", "delete", "the-royal-hotel")
	assert.ErrorContains(t, err, "--yes")
	assert.Empty(t, h.venues.deleted)

	out, _, err := run(t, h, "venue", "delete", "the-royal-hotel", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, h.venues.deleted)
	assert.Contains(t, out, "deleted The Royal Hotel")
}

func TestVenueImport(t *testing.T) {
	f := excelize.NewFile()
	for i, row := range [][]any{
		{"Name", "Slug", "PIN"},
		{"Crown & Anchor", "crown", "0042"},
		{"Bad Pin", "", "12a"},
		{"Harbour Bar", "", ""},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))

	h := newHarness()
	out, errOut, err := run(t, h, "venue", "import", path)
	assert.EqualError(t, err, "1 of 3 venue(s) not imported")
	assert.Contains(t, errOut, "row 3 (Bad Pin)")
	assert.Equal(t,
		"Crown & Anchor\thttps://requests.example.com/submit/crown?key=kcrown\n"+
			"Harbour Bar\thttps://requests.example.com/submit/harbour-bar?key=kharbour-bar\n",
		out)

	_, _, err = run(t, h, "venue", "import", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToken(t *testing.T) {
	out, _, err := run(t, newHarness(), "token", "--email", "Staff@Example.com", "--ttl", "5m")
	require.NoError(t, err)

	u, err := auth.NewVerifier(secret).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", u.Email)
}
