// cmd/web/routes.go
//
// Root router.
//
// Middleware order (outermost first):
//
//	ForceHTTPS → Prometheus instrumentation → Recoverer → request info
//	→ security headers → component routes
//
// Framework routes live here; everything else is attached by the
// registered components through component.Mount.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/component"
	"github.com/yanizio/venuedesk/internal/config"
	"github.com/yanizio/venuedesk/internal/metrics"
	"github.com/yanizio/venuedesk/internal/middleware"
	"github.com/yanizio/venuedesk/internal/requestinfo"
	"github.com/yanizio/venuedesk/internal/view"
)

// pinger is the slice of *sqlx.DB the health check needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

func routes(cfg *config.Config, db pinger, mediaBase string, deps component.Deps) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(
		chimw.Recoverer,
		requestinfo.Enrich(cfg.HTTP.TrustProxy),
		middleware.Security(mediaBase),
	)

	r.Handle("/static/*", view.Static())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthz(db))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, auth.LoginPath, http.StatusSeeOther)
	})

	if err := component.Mount(r, deps); err != nil {
		return nil, err
	}

	var h http.Handler = r
	h = promhttp.InstrumentHandlerDuration(metrics.HTTPRequestDuration, h)
	h = promhttp.InstrumentHandlerCounter(metrics.HTTPRequestsTotal, h)
	return middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS)(h), nil
}

// healthz reports 200 while the database answers a ping.
func healthz(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unavailable\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	}
}
