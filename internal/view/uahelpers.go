// internal/view/uahelpers.go
//
// User-Agent-related template helpers.  They read the request info that
// requestinfo.Enrich attached, so pages can adapt (the submit page tightens
// its layout on phones, where most venue staff upload from).
package view

import (
	"html/template"

	"github.com/yanizio/venuedesk/internal/core"
	"github.com/yanizio/venuedesk/internal/requestinfo"
)

// uaFuncMap returns helpers keyed off *core.Context.
func uaFuncMap() template.FuncMap {
	return template.FuncMap{
		"browser":  func(c *core.Context) string { return uaOf(c).Browser },
		"os":       func(c *core.Context) string { return uaOf(c).OS },
		"device":   func(c *core.Context) string { return uaOf(c).Device },
		"isBot":    func(c *core.Context) bool { return uaOf(c).IsBot },
		"isMobile": func(c *core.Context) bool { d := uaOf(c).Device; return d == "Mobile" || d == "Tablet" },
	}
}

// uaOf tolerates pages rendered without Enrich (tests, error paths).
func uaOf(c *core.Context) requestinfo.UA {
	if c == nil || c.Info == nil {
		return requestinfo.UA{}
	}
	return c.Info.UA
}
