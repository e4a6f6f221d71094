// components/submit/submit.go
//
// Venue-facing component: the gated submission page and the intake API.
//
// Context
// -------
// Each venue gets a private link `/submit/<slug>?key=<key>`.  The page is
// server-rendered; the browser posts the finished request, files included,
// to /api/submissions as one multipart form (see static/submit.js).
//
// Workflow
// --------
//   - GET  /submit/{slug}   run the access gate, then render one of: not
//     found (404), invalid link, PIN entry, or the submission form.
//   - POST /submit/{slug}   the PIN form; same gate with the posted PIN.
//   - POST /api/submissions decode the multipart form, run the intake
//     pipeline, and answer with the JSON envelope.
//
// Notes
// -----
//   - A bad key renders a normal 200 page that names no venue.
//   - The per-type field blocks are rendered once at Init; they carry no
//     CSRF token because the intake API is called by script, not by a
//     browser form post.
//
//------------------------------------------------------------------------------

package submit

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/venuedesk/internal/attachment"
	"github.com/yanizio/venuedesk/internal/component"
	"github.com/yanizio/venuedesk/internal/core"
	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/intake"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/postfields"
	"github.com/yanizio/venuedesk/internal/requestinfo"
	"github.com/yanizio/venuedesk/internal/submission"
	"github.com/yanizio/venuedesk/internal/venue"
	"github.com/yanizio/venuedesk/internal/view"
)

const (
	pinForm = "submit/pin"

	// memLimit is how much of a multipart body stays in memory before
	// parts spill to temporary files.
	memLimit = 32 << 20
)

//go:embed forms templates
var assets embed.FS

var _ component.Component = (*Component)(nil)

// Component serves the venue link and the intake endpoint.
type Component struct {
	venues   component.Venues
	intake   component.Intake
	limiter  func(http.Handler) http.Handler
	maxBody  int64
	sections []section
	now      func() time.Time
}

// section is one post type's pre-rendered field block.
type section struct {
	Type   postfields.PostType
	Fields template.HTML
}

/*────────────────── component.Component methods ───────────────────────────*/

func (c *Component) Name() string { return "submit" }

// Init registers the forms and templates and pre-renders the field blocks.
func (c *Component) Init(d component.Deps) error {
	if d.Venues == nil || d.Intake == nil {
		return errors.New("submit: Venues and Intake are required")
	}
	c.venues, c.intake, c.limiter = d.Venues, d.Intake, d.Limiter
	c.now = time.Now
	if d.Config != nil && d.Config.HTTP.MaxUploadMB > 0 {
		c.maxBody = d.Config.HTTP.MaxUploadMB << 20
	}

	if err := form.RegisterFS(assets, "forms"); err != nil {
		return err
	}
	view.Register("submit", assets)

	c.sections = c.sections[:0]
	for _, t := range postfields.Types {
		html, err := form.RenderForm("post/"+string(t), form.RenderOptions{
			Prefix:    string(t) + "-",
			OmitToken: true,
		})
		if err != nil {
			return err
		}
		c.sections = append(c.sections, section{Type: t, Fields: html})
	}
	return nil
}

// Routes attaches the page and the API.  PIN attempts and the API share
// the limiter; opening a link without a PIN does not count.
func (c *Component) Routes(r chi.Router) {
	page := http.HandlerFunc(c.handlePage)
	r.Get("/submit/{slug}", c.pinLimited(page).ServeHTTP)
	r.Post("/submit/{slug}", c.pinLimited(page).ServeHTTP)

	if c.limiter != nil {
		r.With(c.limiter).Post("/api/submissions", c.handleCreate)
		return
	}
	r.Post("/api/submissions", c.handleCreate)
}

// pinLimited routes requests that carry a PIN through the limiter.
func (c *Component) pinLimited(next http.Handler) http.Handler {
	if c.limiter == nil {
		return next
	}
	limited := c.limiter(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.URL.Query().Has("pin") {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func init() { component.Register(&Component{}) }

/*──────────────────────────── page ─────────────────────────────────────────*/

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	key := r.URL.Query().Get("key")
	pin := r.URL.Query().Get("pin")

	var pinErrs []form.ErrorField
	if r.Method == http.MethodPost {
		data, err := form.HandleSubmit(pinForm, r)
		switch {
		case form.IsValidationError(err):
			pinErrs = form.FieldErrors(err)
			pin = ""
		case err != nil:
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		default:
			pin = form.String(data, "pin")
		}
	}

	v, res, err := c.venues.Gate(r.Context(), slug, key, pin)
	if err != nil {
		log.Errorw("venue gate failed", "slug", slug, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if res != venue.GateOK {
		log.Infow("venue gate refused", append([]any{"slug", slug, "result", res.String()},
			requestinfo.FromContext(r.Context()).LogFields()...)...)
	}

	ctx := core.NewContext(r)
	ctx.Head.NoIndex()

	switch res {
	case venue.GateNotFound:
		ctx.Head.SetTitle("Not found")
		_ = view.Render(ctx, w, http.StatusNotFound, "submit", "notfound", nil)
	case venue.GateBadKey:
		ctx.Head.SetTitle("Invalid access link")
		_ = view.Render(ctx, w, http.StatusOK, "submit", "invalid", nil)
	case venue.GateNeedPIN:
		status := http.StatusOK
		if len(pinErrs) > 0 {
			status = http.StatusUnprocessableEntity
		}
		c.renderPIN(ctx, w, status, v, key, pinErrs)
	case venue.GateBadPIN:
		c.renderPIN(ctx, w, http.StatusUnauthorized, v, key,
			[]form.ErrorField{{Name: "pin", Message: "Incorrect PIN"}})
	default:
		c.renderForm(ctx, w, v)
	}
}

func (c *Component) renderPIN(ctx *core.Context, w http.ResponseWriter, status int, v *venue.Venue, key string, errs []form.ErrorField) {
	html, err := form.RenderForm(pinForm, form.RenderOptions{Errors: errs})
	if err != nil {
		logger.FromContext(ctx.Request.Context()).Errorw("render pin form", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx.Head.SetTitle(v.Name)
	_ = view.Render(ctx, w, status, "submit", "pin", map[string]any{
		"Venue": v,
		"Key":   key,
		"Form":  html,
	})
}

func (c *Component) renderForm(ctx *core.Context, w http.ResponseWriter, v *venue.Venue) {
	ctx.Head.SetTitle(v.Name)
	ctx.Head.Script("/static/submit.js")
	_ = view.Render(ctx, w, http.StatusOK, "submit", "submit", map[string]any{
		"Venue":       v,
		"Types":       postfields.Types,
		"Sections":    c.sections,
		"Frequencies": submission.Frequencies,
		"CTAs":        submission.CTAs,
		"DefaultCTA":  submission.CTAWalkIns,
		"Accept":      attachment.AcceptAttr(),
		"MaxImage":    attachment.HumanSize(attachment.MaxImageBytes),
		"MaxVideo":    attachment.HumanSize(attachment.MaxVideoBytes),
		"Today":       c.now().Format(submission.InputDate),
	})
}

/*──────────────────────────── API ──────────────────────────────────────────*/

// envelope is the success body of POST /api/submissions.
type envelope struct {
	Success bool           `json:"success"`
	Data    *intake.Result `json:"data"`
}

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if c.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.maxBody)
	}
	req, err := intake.ParseRequest(r, memLimit)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	log.Infow("intake received", append([]any{
		"venue_id", req.VenueID, "post_type", req.PostType, "files", len(req.Files),
	}, requestinfo.FromContext(r.Context()).LogFields()...)...)

	res, err := c.intake.Submit(r.Context(), req)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: res})
}

// fail maps err to the `{"error": …}` body.  Anything that is not an
// *intake.Error is an internal failure.
func (c *Component) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "Failed to create submission"
	var ie *intake.Error
	if errors.As(err, &ie) {
		status, msg = ie.Status, ie.Message
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Errorw("intake failed", "err", err)
	} else {
		logger.FromContext(r.Context()).Infow("intake rejected", "status", status, "reason", msg)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
