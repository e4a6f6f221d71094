// internal/form/validate.go
//
// Forms subsystem: server-side validation and normalisation.
//
// Context
//   The renderer outputs HTML containing a CSRF token.  When the browser
//   posts, this file verifies the submission: CSRF, required fields, type
//   constraints, regex patterns, option values, and length limits.  It
//   returns a normalised map that handlers can trust.
//
// Workflow
//   •  ValidateForm retrieves the FormDef and checks CSRF before per-field
//      validation.
//   •  Each field is validated by type.  Errors are captured in
//      []ErrorField so templates can highlight exact issues.
//   •  On success a map[string]any of clean values is returned: strings,
//      true for checked boxes, and []string for tags.
//
// Notes
//   •  Values are trimmed but not HTML-escaped.  html/template escapes on
//      output, and escaping here would double-encode stored text.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// ErrorField describes a single validation failure so the template can render
// a field-level message.  An empty Name marks a form-level message.
type ErrorField struct {
	Name    string
	Message string
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// ValidateForm validates posted values for formID.  A non-empty error slice
// means the page must be re-rendered.
func ValidateForm(formID string, posted url.Values) (map[string]any, []ErrorField) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, []ErrorField{{Name: "", Message: "Unknown form."}}
	}

	if !verifyCSRF(posted.Get("csrf_token")) {
		return nil, []ErrorField{{"", "Security token invalid.  Please refresh and try again."}}
	}

	var errs []ErrorField
	clean := make(map[string]any, len(fd.Fields))

	for i := range fd.Fields {
		f := &fd.Fields[i]
		raw := strings.TrimSpace(posted.Get(f.Name))

		if raw == "" {
			if f.Required {
				errs = append(errs, ErrorField{f.Name, requiredMsg(f)})
			}
			continue
		}

		val, msg := validateValue(f, raw)
		if msg != "" {
			errs = append(errs, ErrorField{f.Name, msg})
			continue
		}
		clean[f.Name] = val
	}

	return clean, errs
}

// String reads a validated string value, "" when absent.
func String(clean map[string]any, name string) string {
	s, _ := clean[name].(string)
	return s
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func verifyCSRF(token string) bool {
	return token != "" && VerifyToken(token)
}

func validateValue(f *FieldDef, val string) (any, string) {
	switch f.Type {
	case "text", "textarea", "password":
		if msg := lengthCheck(f, val); msg != "" {
			return nil, msg
		}
		if f.Pattern != "" && !regexMatch(f.Pattern, val) {
			return nil, patternMsg(f)
		}
		return val, ""

	case "email":
		if msg := lengthCheck(f, val); msg != "" {
			return nil, msg
		}
		if addr, err := mail.ParseAddress(val); err != nil || addr.Address != val {
			return nil, invalidMsg(f)
		}
		return val, ""

	case "url":
		u, err := url.ParseRequestURI(val)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalidMsg(f)
		}
		return val, ""

	case "number":
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return nil, invalidMsg(f)
		}
		return val, ""

	case "date":
		if _, err := time.Parse("2006-01-02", val); err != nil {
			return nil, invalidMsg(f)
		}
		return val, ""

	case "checkbox":
		return true, ""

	case "tags":
		return SplitList(val), ""

	case "select", "radio":
		for _, o := range f.Options {
			if o == val {
				return val, ""
			}
		}
		return nil, invalidMsg(f)

	default:
		return nil, fmt.Sprintf("Unsupported field type %q.", f.Type)
	}
}

// SplitList turns "a, b,,c" into [a b c].
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lengthCheck(f *FieldDef, s string) string {
	n := utf8.RuneCountInString(s)
	if f.MinLength > 0 && n < f.MinLength {
		return fmt.Sprintf("Must be at least %d characters.", f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return fmt.Sprintf("Must be %d characters or fewer.", f.MaxLength)
	}
	return ""
}

func regexMatch(pattern, s string) bool {
	re, _ := regexp.Compile(anchor(pattern)) // pre-validated at load
	return re.MatchString(s)
}

func requiredMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return "This field is required."
}

func invalidMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return "Invalid input."
}

func patternMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return "Input does not match required format."
}
