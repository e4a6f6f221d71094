// internal/venue/slug.go
//
// Slug helpers.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Trim leading / trailing “-”.
// 4. Cut to MaxSlugLen and trim a trailing “-” left by the cut.
//
// The result may be empty (e.g. "!!!"); Create rejects that.

package venue

import (
	"regexp"
	"strings"
)

// MaxSlugLen bounds slugs to fit `venue.slug VARCHAR(50)`.
const MaxSlugLen = 50

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// MakeSlug converts a venue name to lower-kebab ASCII.
func MakeSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	return slug
}

// ValidSlug reports whether s is an acceptable operator-supplied slug.
func ValidSlug(s string) bool {
	return len(s) > 0 && len(s) <= MaxSlugLen && slugPattern.MatchString(s)
}
