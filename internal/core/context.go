// internal/core/context.go
//
// Central per-request context.
//
// Context
// -------
// Every page handler builds a *core.Context and hands it to view.Render.
// It bundles:
//
//   - Request – the original *http.Request.
//   - Head    – the <head> builder for this page.
//   - Info    – parsed UA, geo, URL, and timestamp (nil without Enrich).
//   - User    – the signed-in staff user on admin pages, nil elsewhere.
//
// Notes
// -----
// • Templates reach it as .Ctx, e.g. {{ .Ctx.Head.Title }}.
// • Two spaces after periods.
package core

import (
	"net/http"

	"github.com/yanizio/venuedesk/internal/auth"
	"github.com/yanizio/venuedesk/internal/head"
	"github.com/yanizio/venuedesk/internal/requestinfo"
)

// SiteName suffixes every page title.
const SiteName = "Venue Requests"

// Context is created once per rendered request.
type Context struct {
	Request *http.Request
	Head    *head.Builder
	Info    *requestinfo.RequestInfo
	User    *auth.User
}

// NewContext initialises a Context from r.
func NewContext(r *http.Request) *Context {
	u, _ := auth.UserFrom(r.Context())
	return &Context{
		Request: r,
		Head:    head.New(SiteName),
		Info:    requestinfo.FromContext(r.Context()),
		User:    u,
	}
}

// Path is the request path, used by navigation to mark the active link.
func (c *Context) Path() string { return c.Request.URL.Path }
