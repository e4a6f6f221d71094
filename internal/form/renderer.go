// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Given a parsed FormDef this file converts the definition into plain,
//   accessible HTML.  It applies HTML5 validation attributes, injects the
//   CSRF hidden input, honours pre-fill values, and prints the field errors
//   of a failed submission next to the offending inputs.
//
// Workflow
//   •  RenderForm looks up the FormDef by ID and writes each field via
//      writeField.
//   •  Errors with an empty Name are form-level and print above the fields.
//   •  Prefix namespaces element ids so several forms can share a page
//      (the venue submit page draws one field block per post type).
//   •  The caller receives template.HTML so the surrounding template does
//      not double-escape the markup.  The <form> element itself belongs to
//      the page template.
//
// Style
//   Output HTML is deliberately plain: each input gets id="fld-{name}" and
//   is wrapped in <div class="form-field">.  Keyed inputs also carry
//   data-key="{name}" for the submit page script.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides initial field values keyed by field name.
	Prefill map[string]string
	// Errors from a failed submission, shown beside their fields.
	Errors []ErrorField
	// Prefix is prepended to element ids.
	Prefix string
	// OmitToken skips the CSRF input, for field blocks posted by script.
	OmitToken bool
}

// RenderForm returns the HTML markup for the specified form ID.
func RenderForm(formID string, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return "", fmt.Errorf("RenderForm: unknown form %q", formID)
	}

	byField := make(map[string]string, len(opts.Errors))
	var buf bytes.Buffer
	buf.WriteString(`<div class="form-body" data-form="` + html.EscapeString(fd.ID) + `">` + "\n")

	for _, e := range opts.Errors {
		if e.Name == "" {
			buf.WriteString(`<p class="form-error" role="alert">` + html.EscapeString(e.Message) + `</p>` + "\n")
			continue
		}
		if _, dup := byField[e.Name]; !dup {
			byField[e.Name] = e.Message
		}
	}

	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := writeField(&buf, f, opts.Prefix, prefillValue(f.Name, opts.Prefill), byField[f.Name]); err != nil {
			return "", err
		}
	}

	if !opts.OmitToken {
		tok, err := GenerateToken()
		if err != nil {
			return "", fmt.Errorf("RenderForm: csrf token: %w", err)
		}
		buf.WriteString(`<input type="hidden" name="csrf_token" value="` + tok + `">` + "\n")
	}

	buf.WriteString(`</div>`)
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for one field into buf.
func writeField(buf *bytes.Buffer, f *FieldDef, prefix, val, errMsg string) error {
	id := "fld-" + html.EscapeString(prefix+f.Name)
	name := html.EscapeString(f.Name)

	class := "form-field"
	if errMsg != "" {
		class += " has-error"
	}
	buf.WriteString(`<div class="` + class + `">` + "\n")

	if f.Type != "checkbox" {
		buf.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label) + requiredMark(f) + `</label>` + "\n")
	}

	common := `id="` + id + `" name="` + name + `" data-key="` + name + `"`

	switch f.Type {
	case "text", "email", "password", "number", "date", "url", "tags":
		typ := f.Type
		if typ == "tags" {
			typ = "text"
		}
		buf.WriteString(`<input ` + common + ` type="` + typ + `"`)
		if f.Type == "tags" {
			buf.WriteString(` data-list="true"`)
		}
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		writeConstraints(buf, f)
		if f.Pattern != "" {
			buf.WriteString(` pattern="` + html.EscapeString(f.Pattern) + `"`)
		}
		if val != "" && f.Type != "password" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + common + ` rows="3"`)
		writeConstraints(buf, f)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		buf.WriteString(`>` + html.EscapeString(val) + `</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + common)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(`>` + "\n")
		for _, opt := range f.Options {
			sel := ""
			if val == opt {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt) + `"` + sel + `>` + html.EscapeString(opt) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case "checkbox":
		checked := ""
		if val != "" && strings.ToLower(val) != "false" {
			checked = ` checked`
		}
		buf.WriteString(`<label class="check"><input ` + common + ` type="checkbox" value="true"` + checked + `> ` + html.EscapeString(f.Label) + `</label>` + "\n")

	case "radio":
		for i, opt := range f.Options {
			radioID := id + "-" + strconv.Itoa(i)
			checked := ""
			if val == opt {
				checked = ` checked`
			}
			buf.WriteString(`<div class="radio-option">` + "\n")
			buf.WriteString(`<input id="` + radioID + `" name="` + name + `" type="radio" value="` + html.EscapeString(opt) + `"` + checked)
			if f.Required {
				buf.WriteString(` required`)
			}
			buf.WriteString(`>` + "\n")
			buf.WriteString(`<label for="` + radioID + `">` + html.EscapeString(opt) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
		}

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	if f.Help != "" {
		buf.WriteString(`<small class="help">` + html.EscapeString(f.Help) + `</small>` + "\n")
	}
	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(errMsg) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}

func writeConstraints(buf *bytes.Buffer, f *FieldDef) {
	if f.Required {
		buf.WriteString(` required`)
	}
	if f.MinLength > 0 {
		buf.WriteString(` minlength="` + strconv.Itoa(f.MinLength) + `"`)
	}
	if f.MaxLength > 0 {
		buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
	}
}

func requiredMark(f *FieldDef) string {
	if f.Required {
		return ` <span class="req">*</span>`
	}
	return ""
}

// prefillValue returns the previously submitted value or "".
func prefillValue(name string, pre map[string]string) string {
	if pre == nil {
		return ""
	}
	return pre[name]
}
