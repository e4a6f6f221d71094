package venue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// memRepo is an in-memory Repository keyed by slug.
type memRepo struct {
	mu     sync.Mutex
	bySlug map[string]*Venue
}

func newMemRepo() *memRepo { return &memRepo{bySlug: map[string]*Venue{}} }

func (r *memRepo) Insert(_ context.Context, v *Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySlug[v.Slug]; ok {
		return ErrSlugTaken
	}
	cp := *v
	r.bySlug[v.Slug] = &cp
	return nil
}

func (r *memRepo) ByID(_ context.Context, id string) (*Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.bySlug {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) BySlug(_ context.Context, slug string) (*Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memRepo) List(context.Context) ([]Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Venue, 0, len(r.bySlug))
	for _, v := range r.bySlug {
		out = append(out, *v)
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for s, v := range r.bySlug {
		if v.ID == id {
			delete(r.bySlug, s)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySlug), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(newMemRepo())
	t.Cleanup(s.Close)
	return s
}

func TestCreateDerivesSlugAndKey(t *testing.T) {
	s := newTestService(t)
	v, err := s.Create(context.Background(), CreateInput{Name: "  The Royal Hotel!! "})
	require.NoError(t, err)

	assert.Equal(t, "The Royal Hotel!!", v.Name)
	assert.Equal(t, "the-royal-hotel", v.Slug)
	assert.Len(t, v.AccessKey, AccessKeyLen)
	assert.False(t, v.HasPIN())
	assert.NotEmpty(t, v.ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		in    CreateInput
		field string
	}{
		{CreateInput{Name: "   "}, "name"},
		{CreateInput{Name: "Bar", Slug: "Bad Slug"}, "slug"},
		{CreateInput{Name: "!!!"}, "slug"},
		{CreateInput{Name: "Bar", PIN: "12"}, "pin"},
	}
	for _, tc := range cases {
		_, err := s.Create(ctx, tc.in)
		var ie *InputError
		if assert.ErrorAs(t, err, &ie, "%+v", tc.in) {
			assert.Equal(t, tc.field, ie.Field)
		}
	}
}

func TestCreateNameTooLong(t *testing.T) {
	s := newTestService(t)
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err := s.Create(context.Background(), CreateInput{Name: string(long)})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "name", ie.Field)
}

func TestCreateDuplicateSlug(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, CreateInput{Name: "Royal"})
	require.NoError(t, err)

	_, err = s.Create(ctx, CreateInput{Name: "Other", Slug: "royal"})
	assert.True(t, errors.Is(err, ErrSlugTaken))
}

func TestGate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	open, err := s.Create(ctx, CreateInput{Name: "Open Bar"})
	require.NoError(t, err)
	locked, err := s.Create(ctx, CreateInput{Name: "Locked Bar", PIN: "2468"})
	require.NoError(t, err)

	cases := []struct {
		name          string
		slug, key, pn string
		want          GateResult
		venue         bool
	}{
		{"unknown slug", "nope", "x", "", GateNotFound, false},
		{"bad key", open.Slug, "wrong", "", GateBadKey, false},
		{"ok without pin", open.Slug, open.AccessKey, "", GateOK, true},
		{"needs pin", locked.Slug, locked.AccessKey, "", GateNeedPIN, true},
		{"bad pin", locked.Slug, locked.AccessKey, "1111", GateBadPIN, true},
		{"good pin", locked.Slug, locked.AccessKey, "2468", GateOK, true},
		{"bad key beats pin", locked.Slug, "wrong", "2468", GateBadKey, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, res, err := s.Gate(ctx, tc.slug, tc.key, tc.pn)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res)
			assert.Equal(t, tc.venue, v != nil)
		})
	}
}

func TestDeleteForgetsCache(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	v, err := s.Create(ctx, CreateInput{Name: "Royal"})
	require.NoError(t, err)

	_, res, _ := s.Gate(ctx, v.Slug, v.AccessKey, "")
	require.Equal(t, GateOK, res)

	require.NoError(t, s.Delete(ctx, v.ID))
	_, res, _ = s.Gate(ctx, v.Slug, v.AccessKey, "")
	assert.Equal(t, GateNotFound, res)
}

func TestCreateAndDeleteLogOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	s := newTestService(t)
	ctx := context.Background()
	v, err := s.Create(ctx, CreateInput{Name: "Royal", PIN: "1234"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, v.ID))

	created := logs.FilterMessage("venue created").All()
	require.Len(t, created, 1)
	assert.Equal(t, true, created[0].ContextMap()["pin"])
	assert.Equal(t, 1, logs.FilterMessage("venue deleted").Len())
}
