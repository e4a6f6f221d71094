package view

import (
	"database/sql"
	"html/template"
	"strings"
	"time"

	"github.com/yanizio/venuedesk/internal/form"
	"github.com/yanizio/venuedesk/internal/submission"
)

// funcMap is shared by every page set.
func funcMap() template.FuncMap {
	m := template.FuncMap{
		"dict":       dict,
		"trimPrefix": trimPrefix,
		"lower":      strings.ToLower,
		"hasPrefix":  strings.HasPrefix,
		"date":       func(t time.Time) string { return t.Format(submission.DateFormat) },
		"datetime":   func(t time.Time) string { return t.Format(submission.DateTimeFormat) },
		"nullString": func(s sql.NullString) string { return s.String },
		"csrf":       csrfToken,
		"plural":     plural,
	}
	for k, fn := range uaFuncMap() {
		m[k] = fn
	}
	return m
}

// csrfToken feeds bare forms (status buttons, delete buttons) that are not
// built from a YAML definition.
func csrfToken() (string, error) { return form.GenerateToken() }

// plural picks the singular or plural word for n.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
