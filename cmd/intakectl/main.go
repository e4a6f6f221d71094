// cmd/intakectl/main.go
//
// intakectl – operator CLI for venuedesk.
//
/*
Context
--------
Staff manage venues through the admin pages; intakectl covers the jobs
that happen outside a browser: applying the schema on a fresh database,
bulk-loading a venue roster from a spreadsheet, printing a venue's
private link, and minting a session token for local development when the
hosted auth provider is not reachable.

Commands
--------
  migrate                 apply the idempotent schema
  venue create            add one venue (prints its link)
  venue list              table of venues and their links
  venue link <slug>       print one venue's link
  venue delete <slug>     remove a venue and its submissions
  venue import <file>     create venues from an XLSX roster
  token                   sign an admin session token

Notes
-----
  • Configuration is read exactly as cmd/web reads it (conf/global.yaml,
    INTAKE_* env, Vault references).
  • Logs go to the daily file only, so stdout stays pipe-friendly.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/config"
	"github.com/yanizio/venuedesk/internal/database"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/venue"
)

// venueAdmin is the slice of *venue.Service the venue commands use.
type venueAdmin interface {
	Create(ctx context.Context, in venue.CreateInput) (*venue.Venue, error)
	List(ctx context.Context) ([]venue.Venue, error)
	BySlug(ctx context.Context, slug string) (*venue.Venue, error)
	Delete(ctx context.Context, id string) error
}

// env holds the collaborators a command runs against.
type env struct {
	baseURL string
	venues  venueAdmin
	migrate func(ctx context.Context) error
	signer  *auth.Verifier
	close   func()
}

// opener builds an env on demand, so `intakectl --help` never dials MySQL.
type opener func(ctx context.Context) (*env, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(openEnv).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "intakectl",
		Short:         "Operate the venue content-request service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newVenueCmd(open),
		newTokenCmd(open),
	)
	return root
}

// openEnv loads config and opens the database the way cmd/web does.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logOut, err := logger.New(cfg.Paths.Root, false)
	if err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}

	db, err := database.OpenWithOptions(cfg.Database.DSN, cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	svc := venue.NewService(venue.NewStore(db))

	return &env{
		baseURL: cfg.HTTP.BaseURL,
		venues:  svc,
		migrate: func(ctx context.Context) error { return database.Migrate(ctx, db) },
		signer:  auth.NewVerifier(cfg.Auth.JWTSecret),
		close: func() {
			svc.Close()
			_ = db.Close()
			_ = logOut.Sync()
		},
	}, nil
}

// withEnv opens the env, runs fn, and releases the env afterwards.
func withEnv(open opener, fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := open(cmd.Context())
		if err != nil {
			return err
		}
		if e.close != nil {
			defer e.close()
		}
		return fn(cmd, args, e)
	}
}

/*──────────────────────────── migrate ─────────────────────────────────────*/

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Create the venue, submission, and attachment tables when missing.

Safe to run repeatedly; cmd/web runs the same statements at start-up.`,
		Args: cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, _ []string, e *env) error {
			if err := e.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}),
	}
}
