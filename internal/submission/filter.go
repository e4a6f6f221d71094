package submission

import (
	"net/url"
	"strings"

	"github.com/yanizio/venuedesk/internal/postfields"
)

// AllSentinel in a filter value means "no constraint".
const AllSentinel = "all"

// Filter narrows the inbox by exact match.  Zero fields do not constrain.
type Filter struct {
	Status   Status
	VenueID  string
	PostType postfields.PostType
	Limit    int
}

// ParseFilter reads ?status=&venue=&type= from q.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Status:   Status(clean(q.Get("status"))),
		VenueID:  clean(q.Get("venue")),
		PostType: postfields.PostType(clean(q.Get("type"))),
	}
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if v == AllSentinel {
		return ""
	}
	return v
}

// Active reports whether any constraint is set.
func (f Filter) Active() bool {
	return f.Status != "" || f.VenueID != "" || f.PostType != ""
}

// Values is the inverse of ParseFilter, for building links.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.VenueID != "" {
		q.Set("venue", f.VenueID)
	}
	if f.PostType != "" {
		q.Set("type", string(f.PostType))
	}
	return q
}

// where renders the WHERE clause and its arguments.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "s.status = ?")
		args = append(args, string(f.Status))
	}
	if f.VenueID != "" {
		conds = append(conds, "s.venue_id = ?")
		args = append(args, f.VenueID)
	}
	if f.PostType != "" {
		conds = append(conds, "s.post_type = ?")
		args = append(args, string(f.PostType))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
