package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/venuedesk/internal/database"
)

const venueColumns = `id, name, slug, access_key, pin_hash, created_at, updated_at`

// Store is the sqlx repository for the `venue` table.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// Insert writes v.  A duplicate slug yields ErrSlugTaken.
func (s *Store) Insert(ctx context.Context, v *Venue) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venue (id, name, slug, access_key, pin_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Slug, v.AccessKey, v.PINHash, v.CreatedAt, v.UpdatedAt)
	if database.IsDuplicate(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("insert venue: %w", err)
	}
	return nil
}

// ByID loads one venue by primary key.
func (s *Store) ByID(ctx context.Context, id string) (*Venue, error) {
	return s.one(ctx, `SELECT `+venueColumns+` FROM venue WHERE id = ?`, id)
}

// BySlug loads one venue by slug.
func (s *Store) BySlug(ctx context.Context, slug string) (*Venue, error) {
	return s.one(ctx, `SELECT `+venueColumns+` FROM venue WHERE slug = ?`, slug)
}

func (s *Store) one(ctx context.Context, q string, arg any) (*Venue, error) {
	var v Venue
	err := s.db.GetContext(ctx, &v, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load venue: %w", err)
	}
	return &v, nil
}

// List returns every venue ordered by name.
func (s *Store) List(ctx context.Context) ([]Venue, error) {
	var out []Venue
	if err := s.db.SelectContext(ctx, &out, `SELECT `+venueColumns+` FROM venue ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return out, nil
}

// Delete removes one venue; the schema cascades to its submissions.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM venue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of venues.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM venue`); err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return n, nil
}
