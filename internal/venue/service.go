package venue

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/venuedesk/internal/metrics"
)

// Repository is the persistence contract Service needs.  *Store satisfies it.
type Repository interface {
	Insert(ctx context.Context, v *Venue) error
	ByID(ctx context.Context, id string) (*Venue, error)
	BySlug(ctx context.Context, slug string) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// InputError is a user-facing problem with one create field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Field + ": " + e.Message }

// CreateInput is what staff type into the new-venue form.  Slug and PIN are
// optional; a blank slug is derived from Name.
type CreateInput struct {
	Name string
	Slug string
	PIN  string
}

// Service ties the repository to the gate cache.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService builds a Service whose gate cache loads through repo.
func NewService(repo Repository) *Service {
	s := &Service{repo: repo, now: time.Now}
	s.cache = NewCache(repo.BySlug, IdleTTL, MaxAge, MaxEntries)
	return s
}

// Close stops the cache evictor.
func (s *Service) Close() { s.cache.Close() }

// Create validates in, derives the slug and access key, hashes the PIN, and
// inserts the row.  Returns *InputError for bad input and ErrSlugTaken for a
// duplicate slug.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Venue, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, &InputError{"name", "Venue name is required"}
	case len([]rune(name)) > 100:
		return nil, &InputError{"name", "Venue name must be 100 characters or fewer"}
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = MakeSlug(name)
	}
	if !ValidSlug(slug) {
		return nil, &InputError{"slug", "Slug must be lowercase letters, numbers, and hyphens only"}
	}

	v := &Venue{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		CreatedAt: s.now().UTC(),
	}
	v.UpdatedAt = v.CreatedAt

	key, err := NewAccessKey()
	if err != nil {
		return nil, err
	}
	v.AccessKey = key

	if pin := strings.TrimSpace(in.PIN); pin != "" {
		if !ValidPIN(pin) {
			return nil, &InputError{"pin", "PIN must be exactly 4 digits"}
		}
		hash, err := HashPIN(pin)
		if err != nil {
			return nil, err
		}
		v.PINHash = sql.NullString{String: hash, Valid: true}
	}

	if err := s.repo.Insert(ctx, v); err != nil {
		return nil, err
	}
	zap.S().Infow("venue created", "id", v.ID, "slug", v.Slug, "pin", v.HasPIN())
	return v, nil
}

// Delete removes the venue and forgets it in the gate cache.
func (s *Service) Delete(ctx context.Context, id string) error {
	v, err := s.repo.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Forget(v.Slug)
	zap.S().Infow("venue deleted", "id", id, "slug", v.Slug)
	return nil
}

func (s *Service) List(ctx context.Context) ([]Venue, error) { return s.repo.List(ctx) }

func (s *Service) ByID(ctx context.Context, id string) (*Venue, error) { return s.repo.ByID(ctx, id) }

func (s *Service) BySlug(ctx context.Context, slug string) (*Venue, error) {
	return s.repo.BySlug(ctx, slug)
}

func (s *Service) Count(ctx context.Context) (int, error) { return s.repo.Count(ctx) }

/*──────────────────────────── access gate ─────────────────────────────────*/

// GateResult is the outcome of one submission-link check.
type GateResult int

const (
	GateOK GateResult = iota
	GateNotFound
	GateBadKey
	GateNeedPIN
	GateBadPIN
)

func (r GateResult) String() string {
	return [...]string{"ok", "not_found", "bad_key", "need_pin", "bad_pin"}[r]
}

// Gate resolves slug and checks key and, when the venue has one, pin.  The
// venue is returned only for GateOK, GateNeedPIN, and GateBadPIN; a bad key
// reveals nothing.
func (s *Service) Gate(ctx context.Context, slug, key, pin string) (*Venue, GateResult, error) {
	v, err := s.cache.Get(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		metrics.GateChecksTotal.WithLabelValues(GateNotFound.String()).Inc()
		return nil, GateNotFound, nil
	}
	if err != nil {
		return nil, GateNotFound, err
	}

	res := GateOK
	switch {
	case !KeyMatches(v.AccessKey, key):
		res = GateBadKey
	case v.HasPIN() && pin == "":
		res = GateNeedPIN
	case v.HasPIN() && !PINMatches(v.PINHash.String, pin):
		res = GateBadPIN
	}
	metrics.GateChecksTotal.WithLabelValues(res.String()).Inc()

	if res == GateBadKey {
		return nil, res, nil
	}
	return v, res, nil
}
