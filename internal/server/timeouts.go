// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
//   • ReadHeaderTimeout – abort slow-loris headers (10 s)
//   • ReadTimeout       – whole request, sized for large video uploads (15 m)
//   • WriteTimeout      – whole response, same window since intake replies
//                         only after the uploads finish (15 m)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// This helper centralises those defaults so cmd/web doesn't repeat
// boilerplate.  Run adds signal-driven graceful shutdown.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Minute,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to grace.  A clean shutdown returns nil.
func Run(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		zap.S().Infow("http server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zap.S().Infow("http server shutting down", "grace", grace)
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
