// components/admin/admin.go
//
// Staff admin component: dashboard, submission inbox, and venues.
//
// Context
// -------
// Every route here sits behind auth.Gate.Require, so handlers can assume a
// signed-in, allow-listed user on the context.  Pages are server-rendered;
// the only script is static/admin.js (delete confirmation, filter submit).
//
// Routes
// ------
//   GET  /admin                               → 303 /admin/dashboard
//   GET  /admin/dashboard
//   GET  /admin/submissions                   ?status=&venue=&type=
//   GET  /admin/submissions/export.xlsx       same filters
//   GET  /admin/submissions/{id}
//   POST /admin/submissions/{id}/status
//   GET  /admin/api/submissions               same filters, JSON
//   GET  /admin/venues
//   POST /admin/venues
//   POST /admin/venues/{id}/delete
//
//------------------------------------------------------------------------------

package admin

import (
	"embed"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/component"
	"github.com/yanizio/venuedesk/internal/core"
	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/view"
)

// recentCount is how many submissions the dashboard lists.
const recentCount = 5

//go:embed forms/*.yaml templates/*.html
var assets embed.FS

var _ component.Component = (*Component)(nil)

// Component holds the admin handlers' collaborators.
type Component struct {
	venues  component.Venues
	subs    component.Submissions
	gate    *auth.Gate
	baseURL string
}

/*────────────────── component.Component methods ───────────────────────────*/

func (c *Component) Name() string { return "admin" }

func (c *Component) Init(d component.Deps) error {
	if d.Venues == nil || d.Submissions == nil || d.Gate == nil || d.Config == nil {
		return errors.New("admin: Config, Venues, Submissions, and Gate are required")
	}
	c.venues, c.subs, c.gate = d.Venues, d.Submissions, d.Gate
	c.baseURL = d.Config.HTTP.BaseURL

	if err := form.RegisterFS(assets, "forms"); err != nil {
		return err
	}
	view.Register("admin", assets)
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(c.gate.Require)

		g.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		})
		g.Get("/admin/dashboard", c.handleDashboard)

		g.Get("/admin/submissions", c.handleList)
		g.Get("/admin/submissions/export.xlsx", c.handleExport)
		g.Get("/admin/submissions/{id}", c.handleDetail)
		g.Post("/admin/submissions/{id}/status", c.handleStatus)
		g.Get("/admin/api/submissions", c.handleAPIList)

		g.Get("/admin/venues", c.handleVenues)
		g.Post("/admin/venues", c.handleCreateVenue)
		g.Post("/admin/venues/{id}/delete", c.handleDeleteVenue)
	})
}

func init() { component.Register(&Component{}) }

/*──────────────────────────── dashboard ────────────────────────────────────*/

func (c *Component) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := c.subs.Counts(ctx)
	if err != nil {
		c.serverError(w, r, "dashboard counts", err)
		return
	}
	venues, err := c.venues.Count(ctx)
	if err != nil {
		c.serverError(w, r, "dashboard venue count", err)
		return
	}
	recent, err := c.subs.Recent(ctx, recentCount)
	if err != nil {
		c.serverError(w, r, "dashboard recent", err)
		return
	}

	c.render(w, r, http.StatusOK, "dashboard", "Dashboard", map[string]any{
		"Counts": counts,
		"Venues": venues,
		"Recent": recent,
	})
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	ctx := core.NewContext(r)
	ctx.Head.SetTitle(title)
	ctx.Head.NoIndex()
	ctx.Head.Script("/static/admin.js")
	_ = view.Render(ctx, w, status, "admin", page, data)
}

func (c *Component) notFound(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusNotFound, "notfound", "Not found", nil)
}

func (c *Component) serverError(w http.ResponseWriter, r *http.Request, what string, err error) {
	logger.FromContext(r.Context()).Errorw(what+" failed", "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
