// components/auth/auth.go
//
// Staff authentication component: login and logout.
//
// Context
// -------
// Staff sign in with the hosted auth provider's password grant.  The
// returned access token goes into the session cookie; internal/auth.Gate
// verifies it on every admin request.
//
// Workflow
// --------
//   - GET  /admin/login   render the sign-in form (?next= rides in the action).
//   - POST /admin/login   validate, exchange credentials, check the admin
//     allow list, start the session, and 303 to next.
//   - POST /admin/logout  CSRF-checked; clears the cookie.
//
//------------------------------------------------------------------------------

package auth

import (
	"embed"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/component"
	"github.com/yanizio/venuedesk/internal/core"
	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/logger"
	"github.com/yanizio/venuedesk/internal/session"
	"github.com/yanizio/venuedesk/internal/view"
)

const loginForm = "auth/login"

//go:embed forms/*.yaml templates/*.html
var assets embed.FS

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates login functionality.
type Component struct {
	signIn component.SignIn
	gate   *auth.Gate
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Init keeps the provider client and the allow list.
func (c *Component) Init(d component.Deps) error {
	if d.SignIn == nil || d.Gate == nil {
		return errors.New("auth: SignIn and Gate are required")
	}
	c.signIn, c.gate = d.SignIn, d.Gate

	if err := form.RegisterFS(assets, "forms"); err != nil {
		return err
	}
	view.Register("auth", assets)
	return nil
}

// Routes attaches the login endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get(auth.LoginPath, c.handleLoginGET)
	r.Post(auth.LoginPath, c.handleLoginPOST)
	r.Post("/admin/logout", c.handleLogout)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, nil, nil)
}

func (c *Component) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	data, err := form.HandleSubmit(loginForm, r)
	if err != nil {
		if form.IsValidationError(err) {
			c.render(w, r, http.StatusUnprocessableEntity, form.FieldErrors(err), form.Prefill(r))
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	email := form.String(data, "email")
	sess, err := c.signIn.SignIn(r.Context(), email, form.String(data, "password"))
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		log.Infow("login failed", "email", email)
		c.render(w, r, http.StatusUnauthorized,
			[]form.ErrorField{{Message: auth.ErrBadCredentials.Error()}}, form.Prefill(r))
		return
	case err != nil:
		log.Errorw("auth provider unavailable", "err", err)
		c.render(w, r, http.StatusServiceUnavailable,
			[]form.ErrorField{{Message: "Sign-in is unavailable right now.  Please try again shortly."}}, form.Prefill(r))
		return
	}

	if !c.gate.Allowed(email) {
		log.Warnw("login refused: not an admin", "email", email)
		c.render(w, r, http.StatusForbidden,
			[]form.ErrorField{{Message: "This account does not have admin access."}}, form.Prefill(r))
		return
	}

	session.Start(w, r, sess.AccessToken, sess.ExpiresAt)
	log.Infow("staff signed in", "email", email)
	http.Redirect(w, r, auth.SafeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func (c *Component) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !form.VerifyToken(r.PostFormValue("csrf_token")) {
		http.Error(w, "Security token invalid", http.StatusForbidden)
		return
	}
	session.End(w, r)
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, errs []form.ErrorField, prefill map[string]string) {
	html, err := form.RenderForm(loginForm, form.RenderOptions{Errors: errs, Prefill: prefill})
	if err != nil {
		logger.FromContext(r.Context()).Errorw("render login form", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	action := auth.LoginPath
	if next := r.URL.Query().Get("next"); next != "" {
		action += "?next=" + url.QueryEscape(next)
	}

	ctx := core.NewContext(r)
	ctx.Head.SetTitle("Sign in")
	ctx.Head.NoIndex()
	_ = view.Render(ctx, w, status, "auth", "login", map[string]any{
		"Form":   html,
		"Action": action,
	})
}
