// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits high in the chain, right after recovery and before the
rate limiter, which keys on the client address resolved here.  For every
request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Resolves the client IP.  X-Forwarded-For and X-Real-IP are honoured
     only when trustProxy is set; otherwise r.RemoteAddr wins.
  3. Performs a GeoLite2 lookup when a database is loaded.
  4. Stores the *RequestInfo in the request context, plus a request-scoped
     logger (logger.WithContext) carrying the method, path, and IP.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
  • Two spaces after periods.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/venuedesk/internal/logger"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich returns middleware that attaches *RequestInfo and a scoped logger.
func Enrich(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)

			info := &RequestInfo{
				UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
				Geo:       lookupGeo(ip),
				URL:       r.URL,
				Timestamp: time.Now().UTC(),
			}

			log := zap.S().With("method", r.Method, "path", r.URL.Path, "ip", info.ClientIP())
			log.Debugw("request info",
				"country", info.Geo.CountryISO,
				"browser", info.UA.Browser,
				"device", info.UA.Device,
				"bot", info.UA.IsBot,
			)

			ctx := context.WithValue(r.Context(), ctxKey{}, info)
			ctx = logger.WithContext(ctx, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most parseable address from X-Forwarded-For
// or X-Real-IP when trusted, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, part := range strings.Split(xff, ",") {
				if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
					return ip
				}
			}
		}
		if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
			if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
