// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years)
//   • Content-Security-Policy   –  self-only policy, plus the media host
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  keeps venue access keys out of Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set before next.ServeHTTP; anything written after the
//   first byte would be dropped.  Handlers may still override a value.
// • Attachments are served from the bucket or its CDN, so that origin is
//   added to img-src and media-src.
// • Two spaces after periods.

package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// Security returns header middleware.  mediaOrigin is the public base URL
// of the attachment store; any path part is ignored.
func Security(mediaOrigin string) func(http.Handler) http.Handler {
	headers := map[string]string{
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		"Content-Security-Policy":   csp(origin(mediaOrigin)),
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"Referrer-Policy":           "no-referrer",
		"Permissions-Policy":        "geolocation=(), microphone=(), camera=()",
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range headers {
				if h.Get(k) == "" {
					h.Set(k, v)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func csp(media string) string {
	src := "'self'"
	if media != "" {
		src += " " + media
	}
	return strings.Join([]string{
		"default-src 'self'",
		"img-src " + src + " data: blob:",
		"media-src " + src + " blob:",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")
}

// origin reduces a URL to scheme://host.
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
