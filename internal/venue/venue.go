// internal/venue/venue.go
//
// Venue aggregate.
//
// Context
// -------
// A venue is a bar, pub, or restaurant that sends post requests.  Each
// venue gets a unique URL slug and a 32-character access key; together
// they form the private submission link `/submit/<slug>?key=<key>`.  A
// venue may also carry a 4-digit PIN, stored only as a bcrypt hash.
//
// Deleting a venue cascades in the database to its submissions and their
// attachment rows.
//
// Notes
// -----
//   - Slug uniqueness is a UNIQUE KEY on `venue.slug`.  Store.Insert maps
//     the duplicate-key error to ErrSlugTaken, so there is no read-then-
//     write race.
package venue

import (
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("venue not found")
	ErrSlugTaken = errors.New("A venue with this URL slug already exists")
)

// Venue mirrors one `venue` row.
type Venue struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Slug      string         `db:"slug"`
	AccessKey string         `db:"access_key"`
	PINHash   sql.NullString `db:"pin_hash"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// HasPIN reports whether the gate must ask for a PIN.
func (v *Venue) HasPIN() bool { return v.PINHash.Valid && v.PINHash.String != "" }

// Link returns the private submission URL under baseURL.
func (v *Venue) Link(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/submit/" + v.Slug + "?key=" + url.QueryEscape(v.AccessKey)
}
