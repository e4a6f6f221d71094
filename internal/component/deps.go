// internal/component/deps.go
//
// Shared dependencies handed to every component's Init.
//
// Context
// -------
// cmd/web builds the datastore, blob, mail, and auth clients once from the
// read-only Config and injects them here.  Components see narrow
// interfaces, so handler tests swap in fakes without a database.
package component

import (
	"context"
	"net/http"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/config"
	"github.com/yanizio/venuedesk/internal/intake"
	"github.com/yanizio/venuedesk/internal/submission"
	"github.com/yanizio/venuedesk/internal/venue"
)

// Venues is the venue service surface used by the gate and venue admin.
type Venues interface {
	Create(ctx context.Context, in venue.CreateInput) (*venue.Venue, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]venue.Venue, error)
	Count(ctx context.Context) (int, error)
	Gate(ctx context.Context, slug, key, pin string) (*venue.Venue, venue.GateResult, error)
}

// Submissions is the read and triage surface of the submission store.
type Submissions interface {
	List(ctx context.Context, f submission.Filter) ([]submission.Summary, error)
	Recent(ctx context.Context, n int) ([]submission.Summary, error)
	Get(ctx context.Context, id string) (*submission.Detail, error)
	UpdateStatus(ctx context.Context, id string, status submission.Status) error
	Counts(ctx context.Context) (submission.Counts, error)
}

// Intake runs the submission pipeline.
type Intake interface {
	Submit(ctx context.Context, req *intake.Request) (*intake.Result, error)
}

// SignIn exchanges staff credentials with the auth provider.
type SignIn interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
}

// Deps bundles everything components may need.  Limiter is optional; nil
// leaves the intake endpoint unthrottled.
type Deps struct {
	Config      *config.Config
	Venues      Venues
	Submissions Submissions
	Intake      Intake
	SignIn      SignIn
	Gate        *auth.Gate
	Limiter     func(http.Handler) http.Handler
}
