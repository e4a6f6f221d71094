// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"
)

// ForceHTTPS returns a wrapper that, when enabled, issues a 308 Permanent
// Redirect from plain HTTP to the HTTPS version of the same URL.  Requests
// that already arrived over TLS (directly or per X-Forwarded-Proto), local
// development hosts, and /healthz pass through unchanged.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if !enabled {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" ||
				isLocal(r.Host) || r.URL.Path == "/healthz" {
				h.ServeHTTP(w, r)
				return
			}
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

// isLocal reports loopback hosts, with or without a port.
func isLocal(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
