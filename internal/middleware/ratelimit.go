// internal/middleware/ratelimit.go
//
// Fixed-window rate limiter backed by Redis.
//
// Context
// -------
// The intake endpoint is public: anyone holding a venue id can post to it.
// Each client address gets `limit` requests per `window`.  The counter key
// is ratelimit:<scope>:<ip>; the first INCR in a window sets its TTL.
//
// Notes
// -----
//   - Redis errors fail open.  A broken cache must not stop venues from
//     sending requests; the error is logged.
//   - The client address comes from requestinfo.Enrich, so mount Enrich
//     first.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/metrics"
	"github.com/yanizio/venuedesk/internal/requestinfo"
)

// Counter is the slice of the Redis client the limiter needs.
// *redis.Client satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit returns the limiter for scope.  A nil counter or a
// non-positive limit disables it.
func RateLimit(c Counter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := requestinfo.FromContext(r.Context()).ClientIP()
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}
			key := "ratelimit:" + scope + ":" + ip
			log := logger.FromContext(r.Context())

			n, err := c.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warnw("rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				if err := c.Expire(r.Context(), key, window).Err(); err != nil {
					log.Warnw("rate limiter expire failed", "key", key, "err", err)
				}
			}
			if n > int64(limit) {
				metrics.RateLimitedTotal.Inc()
				log.Infow("rate limited", "scope", scope, "count", n)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests, please try again later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
