package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/session"
)

// LoginPath is where unauthenticated staff are sent.
const LoginPath = "/admin/login"

// Gate guards the admin surfaces.
type Gate struct {
	verifier *Verifier
	allow    map[string]struct{}
}

// NewGate builds a Gate.  An empty allow list admits every verified user
// of the provider project.
func NewGate(v *Verifier, allow []string) *Gate {
	g := &Gate{verifier: v, allow: make(map[string]struct{}, len(allow))}
	for _, e := range allow {
		g.allow[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return g
}

// Allowed reports whether email may use the admin surfaces.
func (g *Gate) Allowed(email string) bool {
	if len(g.allow) == 0 {
		return true
	}
	_, ok := g.allow[strings.ToLower(email)]
	return ok
}

// Require redirects (303) to the login page unless the session cookie
// holds a valid token for an allowed user.  The original path rides along
// in ?next= so login can return there.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := session.Token(r)
		if !ok {
			toLogin(w, r)
			return
		}
		u, err := g.verifier.Verify(tok)
		if err != nil {
			logger.FromContext(r.Context()).Debugw("admin session rejected", "err", err)
			session.End(w, r)
			toLogin(w, r)
			return
		}
		if !g.Allowed(u.Email) {
			logger.FromContext(r.Context()).Warnw("admin access denied", "email", u.Email)
			session.End(w, r)
			toLogin(w, r)
			return
		}

		ctx := logger.WithContext(WithUser(r.Context(), u),
			logger.FromContext(r.Context()).With("user", u.Email))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath
	if r.Method == http.MethodGet && r.URL.Path != LoginPath {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SafeNext returns next when it is a local admin path, else the dashboard.
func SafeNext(next string) string {
	if strings.HasPrefix(next, "/admin/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return "/admin/dashboard"
}
