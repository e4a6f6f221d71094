// internal/session/session.go
//
// Staff session cookie.
//
// Context
//   After a password sign-in the provider's access token is stored in an
//   HttpOnly cookie named “venuedesk_session”.  The token is a signed JWT,
//   so the cookie needs no server-side store; internal/auth verifies it on
//   every admin request.  The cookie expires with the token.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

const cookieName = "venuedesk_session"

// Start sets the session cookie.
func Start(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// End clears the session cookie.
func End(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Token returns the stored access token.  ok is false when the cookie is
// missing or empty.
func Token(r *http.Request) (token string, ok bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// secure reports whether the browser reached us over TLS, directly or via
// a terminating proxy.
func secure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
