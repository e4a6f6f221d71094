// internal/submission/store.go
//
// sqlx repository for `submission` and `attachment`.
//
// Workflow
// --------
//  1. Create inserts the primary row with status forced to "new".
//  2. AddAttachments writes every stored file in one multi-row INSERT.
//  3. List / Recent / Counts feed the inbox and dashboard.
//  4. Get joins venue and attachments for the detail page.
//  5. UpdateStatus is a single-field update plus updated_at.
package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const listColumns = `s.id, s.venue_id, s.post_type, s.status, s.run_start_date, s.run_end_date,
	s.until_sold_out, s.post_frequency, s.frequency_custom, s.cta, s.cta_custom,
	s.fields_json, s.notes, s.created_at, s.updated_at`

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store { return &Store{db: db, now: time.Now} }

// Create inserts s.  Status is always "new" regardless of what the caller
// set; timestamps are stamped here when zero.
func (st *Store) Create(ctx context.Context, s *Submission) error {
	s.Status = StatusNew
	if s.CreatedAt.IsZero() {
		s.CreatedAt = st.now().UTC()
	}
	s.UpdatedAt = s.CreatedAt
	if len(s.FieldsJSON) == 0 {
		s.FieldsJSON = []byte("{}")
	}

	_, err := st.db.ExecContext(ctx, `
		INSERT INTO submission (id, venue_id, post_type, status, run_start_date, run_end_date,
			until_sold_out, post_frequency, frequency_custom, cta, cta_custom,
			fields_json, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.VenueID, string(s.PostType), string(s.Status), s.RunStartDate, s.RunEndDate,
		s.UntilSoldOut, string(s.PostFrequency), s.FrequencyCustom, string(s.CTA), s.CTACustom,
		string(s.FieldsJSON), s.Notes, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// AddAttachments inserts rows in one statement.  Nothing is written for an
// empty slice.
func (st *Store) AddAttachments(ctx context.Context, rows []Attachment) error {
	if len(rows) == 0 {
		return nil
	}
	var (
		b    strings.Builder
		args = make([]any, 0, len(rows)*7)
	)
	b.WriteString(`INSERT INTO attachment (id, submission_id, file_url, file_type, file_size, original_name, created_at) VALUES `)
	for i, a := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		if a.CreatedAt.IsZero() {
			a.CreatedAt = st.now().UTC()
		}
		args = append(args, a.ID, a.SubmissionID, a.FileURL, a.FileType, a.FileSize, a.OriginalName, a.CreatedAt)
	}
	if _, err := st.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert attachments: %w", err)
	}
	return nil
}

// List returns submissions matching f, newest first, with venue name and
// attachment count.
func (st *Store) List(ctx context.Context, f Filter) ([]Summary, error) {
	where, args := f.where()
	q := `SELECT ` + listColumns + `, v.name AS venue_name,
		(SELECT COUNT(*) FROM attachment a WHERE a.submission_id = s.id) AS attachment_count
		FROM submission s
		JOIN venue v ON v.id = s.venue_id` + where + `
		ORDER BY s.created_at DESC`
	if f.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(f.Limit)
	}

	var out []Summary
	if err := st.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

// Recent returns the n newest submissions.
func (st *Store) Recent(ctx context.Context, n int) ([]Summary, error) {
	return st.List(ctx, Filter{Limit: n})
}

// Get loads one submission with its venue and attachments.
func (st *Store) Get(ctx context.Context, id string) (*Detail, error) {
	var d Detail
	err := st.db.GetContext(ctx, &d, `SELECT `+listColumns+`, v.name AS venue_name, v.slug AS venue_slug
		FROM submission s
		JOIN venue v ON v.id = s.venue_id
		WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}

	if err := st.db.SelectContext(ctx, &d.Attachments, `
		SELECT id, submission_id, file_url, file_type, file_size, original_name, created_at
		FROM attachment WHERE submission_id = ? ORDER BY created_at`, id); err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	return &d, nil
}

// UpdateStatus sets status and updated_at.  Any canonical status may follow
// any other; anything else is ErrInvalidStatus.
func (st *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	res, err := st.db.ExecContext(ctx,
		`UPDATE submission SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), st.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for an unchanged row too, so tell the two apart.
		var one int
		err := st.db.GetContext(ctx, &one, `SELECT 1 FROM submission WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
	}
	return nil
}

// Counts returns the dashboard totals in one pass.
func (st *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := st.db.GetContext(ctx, &c, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(status = 'new'), 0)   AS new_count,
		       COALESCE(SUM(status = 'ready'), 0) AS ready_count
		FROM submission`)
	if err != nil {
		return Counts{}, fmt.Errorf("count submissions: %w", err)
	}
	return c, nil
}
