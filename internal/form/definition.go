// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file that names the form, its
//   submit label, and its fields.  Components embed their `forms/`
//   directory and hand it to RegisterFS at startup; the parsed FormDef
//   lands in an in-memory registry.  The renderer and the validator fetch
//   definitions from that registry by ID, so markup hints and server checks
//   come from one source.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef.
//   •  ParseFormDef parses one YAML document and checks structural rules.
//   •  RegisterFS walks an fs.FS for “*.yaml” and registers each form.
//      Later registrations override earlier ones with the same ID.
//   •  GetFormDef offers read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// ID is namespaced by component, e.g. “admin/venue” or “post/event”.
type FormDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Submit string     `yaml:"submit"` // submit button label, optional
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control on the form.  Validation
// metadata lives inline so the server enforces the rules the browser hints
// at.
type FieldDef struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"` // see fieldTypes
	Placeholder string   `yaml:"placeholder"`
	Help        string   `yaml:"help"`
	Required    bool     `yaml:"required"`
	MinLength   int      `yaml:"minlength"`
	MaxLength   int      `yaml:"maxlength"`
	Pattern     string   `yaml:"pattern"`
	Options     []string `yaml:"options"`
	ErrorMsg    string   `yaml:"error"`
}

// fieldTypes lists the controls the renderer knows how to draw.  "tags" is
// a comma-separated list that validates into []string.
var fieldTypes = map[string]bool{
	"text": true, "email": true, "password": true, "number": true,
	"date": true, "url": true, "textarea": true, "select": true,
	"radio": true, "checkbox": true, "tags": true,
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by ID.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef parses one YAML document and validates its structure.  src
// names the document in errors.  It never touches the registry.
func ParseFormDef(raw []byte, src string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", src, err)
	}
	if err := validateFormDef(&fd, src); err != nil {
		return nil, err
	}
	return &fd, nil
}

// RegisterFS loads every “*.yaml” under root in fsys.  Components call it
// with their embedded forms directory:
//
//	//go:embed forms/*.yaml
//	var forms embed.FS
//	...
//	form.RegisterFS(forms, "forms")
func RegisterFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Ext(p) != ".yaml" {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read form file %s: %w", p, err)
		}
		fd, err := ParseFormDef(raw, p)
		if err != nil {
			return err
		}
		register(fd)
		return nil
	})
}

func register(fd *FormDef) {
	registryMu.Lock()
	registry[fd.ID] = fd
	registryMu.Unlock()
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

func validateFormDef(fd *FormDef, src string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", src)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", src)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, src); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", src, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func validateField(f *FieldDef, src string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", src)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", src, f.Name)
	}
	if !fieldTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unknown type %q", src, f.Name, f.Type)
	}
	if (f.Type == "select" || f.Type == "radio") && len(f.Options) == 0 {
		return fmt.Errorf("form %s: field '%s' needs 'options'", src, f.Name)
	}

	if f.Pattern != "" {
		if _, err := regexp.Compile(anchor(f.Pattern)); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", src, f.Name, err)
		}
	}

	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", src, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", src, f.Name)
	}
	return nil
}

// anchor wraps a pattern the way the HTML pattern attribute does, so the
// server and the browser agree on what matches.
func anchor(p string) string {
	if strings.HasPrefix(p, "^") && strings.HasSuffix(p, "$") {
		return p
	}
	return "^(?:" + p + ")$"
}
