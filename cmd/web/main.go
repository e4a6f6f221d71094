// cmd/web/main.go
//
// venuedesk – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load config (conf/.env → conf/global.yaml → INTAKE_* env, Vault
//     references resolved).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Install the CSRF key, open the optional GeoLite2 database, and point
//     the view engine at <root>/templates when that directory exists.
//
//  4. Open MySQL, apply the idempotent schema, and log the venue count.
//
//  5. Build the collaborators once: S3 attachment store, Resend mailer (or
//     the no-op sender), Redis rate limiter, venue service with its gate
//     cache, submission store, intake pipeline, and the admin session gate.
//
//  6. Build the root router (see routes.go) and serve until SIGINT/SIGTERM,
//     then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/blob"
	"github.com/yanizio/venuedesk/internal/component"
	"github.com/yanizio/venuedesk/internal/config"
	"github.com/yanizio/venuedesk/internal/database"
	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/intake"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/message"
	"github.com/yanizio/venuedesk/internal/middleware"
	"github.com/yanizio/venuedesk/internal/requestinfo"
	"github.com/yanizio/venuedesk/internal/server"
	"github.com/yanizio/venuedesk/internal/submission"
	"github.com/yanizio/venuedesk/internal/venue"
	"github.com/yanizio/venuedesk/internal/view"

	_ "github.com/yanizio/venuedesk/components/admin"
	_ "github.com/yanizio/venuedesk/components/auth"
	_ "github.com/yanizio/venuedesk/components/submit"
)

const (
	shutdownGrace   = 30 * time.Second
	providerTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, logger.RunningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	if err := form.SetSecret(cfg.Security.CSRFKey); err != nil {
		logOut.Fatalw("csrf key rejected", "err", err)
	}
	if err := requestinfo.InitGeo(cfg.Security.GeoIPPath); err != nil {
		logOut.Warnw("geoip disabled", "path", cfg.Security.GeoIPPath, "err", err)
	}
	defer requestinfo.CloseGeo()

	// <root>/templates/<comp>/<name>.html replaces the embedded page.
	// Overrides are re-read on every render so edits show without a restart.
	if dir := filepath.Join(cfg.Paths.Root, "templates"); isDir(dir) {
		view.SetOverrideDir(dir)
		view.SetCachePolicy(view.CacheSkip)
		logOut.Infow("template overrides enabled", "dir", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Database ────────────────────────────────────────────────────
	//
	logOut.Info("connecting to database …")
	db, err := database.OpenWithOptions(cfg.Database.DSN, cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		logOut.Fatalw("connect database", "err", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logOut.Fatalw("apply schema", "err", err)
	}

	venues := venue.NewService(venue.NewStore(db))
	defer venues.Close()
	if n, err := venues.Count(ctx); err == nil {
		logOut.Infof("database online, %d venue(s) found", n)
	}

	//
	// ── 2.  Attachment storage and e-mail ───────────────────────────────
	//
	blobs, err := blob.NewS3(ctx, cfg.Storage)
	if err != nil {
		logOut.Fatalw("open attachment store", "bucket", cfg.Storage.Bucket, "err", err)
	}

	var mail message.Sender = message.Disabled{}
	notify := intake.Notify{BaseURL: cfg.HTTP.BaseURL, Timeout: cfg.Email.Timeout}
	if cfg.Email.Enabled() {
		mail = message.NewResend(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.Timeout)
		notify.From = cfg.Email.From
		notify.To = cfg.Email.AdminAddress
	} else {
		logOut.Info("e-mail notifications disabled")
	}

	//
	// ── 3.  Rate limiter (optional) ─────────────────────────────────────
	//
	limiter := rateLimiter(ctx, cfg.Redis, logOut)

	//
	// ── 4.  Services and router ─────────────────────────────────────────
	//
	subs := submission.NewStore(db)
	deps := component.Deps{
		Config:      cfg,
		Venues:      venues,
		Submissions: subs,
		Intake:      intake.New(venues, subs, blobs, mail, notify),
		SignIn:      auth.NewPasswordClient(cfg.Auth.ProviderURL, cfg.Auth.AnonKey, providerTimeout),
		Gate:        auth.NewGate(auth.NewVerifier(cfg.Auth.JWTSecret), cfg.Auth.AdminEmails),
		Limiter:     limiter,
	}

	handler, err := routes(cfg, db, blobs.URL(""), deps)
	if err != nil {
		logOut.Fatalw("mount components", "err", err)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, handler), shutdownGrace); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Info("http server stopped")
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// rateLimiter dials Redis when configured.  An unreachable server at boot
// is logged; the limiter itself fails open per request.
func rateLimiter(ctx context.Context, cfg config.Redis, logOut *zap.SugaredLogger) func(next http.Handler) http.Handler {
	if cfg.Addr == "" {
		logOut.Info("rate limiting disabled (redis.addr not set)")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		logOut.Warnw("redis unreachable, limiter will fail open", "addr", cfg.Addr, "err", err)
	}
	return middleware.RateLimit(rdb, "intake", cfg.RateLimit, cfg.RateWindow)
}
