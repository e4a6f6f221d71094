// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template sets.
//
// Public helpers
// --------------
//   - Register       – a component hands over its embedded templates.
//   - Render         – write rendered HTML with a status code.
//   - RenderToString – return template.HTML (fragments, tests).
//
// Lookup precedence (first hit wins):
//  1. <override dir>/<comp>/<tpl>.html   (SetOverrideDir, optional)
//  2. the component's embedded templates/<tpl>.html
//
// A page set is the shared layout (layout/*.html), the component's
// partials (templates/_*.html), and the page file itself.  Pages wrap their
// markup in {{ template "base.html" . }} and fill the "content" block.
//
// execName() chooses the template to execute:
//   - If the set contains "<name>.html", we run that.
//   - Else we fall back to "<name>" (root template defined via {{ define }}).
//
// Style
// -----
// • Two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template/parse"

	"github.com/yanizio/venuedesk/internal/cache"
	"github.com/yanizio/venuedesk/internal/core"
)

//go:embed layout/*.html
var layoutFS embed.FS

// ErrNoTemplate is returned when no source provides the requested page.
var ErrNoTemplate = errors.New("view: template not found")

//
// cache definitions
//

// CachePolicy controls whether parsed sets are kept.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // keep parsed sets in the LRU
	CacheSkip                       // re-parse every render (template development)
)

var (
	tmplLRU = cache.New(256)

	mu       sync.RWMutex
	sources  = map[string]fs.FS{}
	override string
	policy   = CacheDefault
)

//
// configuration
//

// Register makes comp's templates available.  fsys must contain a
// "templates" directory.
func Register(comp string, fsys fs.FS) {
	mu.Lock()
	sources[comp] = fsys
	mu.Unlock()
	tmplLRU.Purge()
}

// SetOverrideDir points the engine at an on-disk directory whose
// <comp>/<name>.html files replace the embedded pages.
func SetOverrideDir(dir string) {
	mu.Lock()
	override = dir
	mu.Unlock()
	tmplLRU.Purge()
}

// SetCachePolicy switches caching for every subsequent render.
func SetCachePolicy(p CachePolicy) {
	mu.Lock()
	policy = p
	mu.Unlock()
	tmplLRU.Purge()
}

//
// public helpers
//

// Page is the value every template receives.
type Page struct {
	Ctx  *core.Context
	Data any
}

// Render executes the page and streams it to w with status.  Output is
// buffered so a template error still yields a clean 500.
func Render(ctx *core.Context, w http.ResponseWriter, status int, comp, name string, data any) error {
	html, err := RenderToString(ctx, comp, name, data)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err = w.Write([]byte(html))
	return err
}

// RenderToString executes and returns HTML.
func RenderToString(ctx *core.Context, comp, name string, data any) (template.HTML, error) {
	t, err := load(comp, name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), Page{Ctx: ctx, Data: data}); err != nil {
		return "", fmt.Errorf("view: execute %s/%s: %w", comp, name, err)
	}
	return template.HTML(buf.String()), nil
}

//
// internal: load
//

// load finds and (if necessary) parses the template set for comp/name.
func load(comp, name string) (*template.Template, error) {
	mu.RLock()
	src, ok := sources[comp]
	dir, pol := override, policy
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: component %q not registered", ErrNoTemplate, comp)
	}

	key := comp + "::" + name
	if pol != CacheSkip {
		if v, ok := tmplLRU.Get(key); ok {
			return v.(*template.Template), nil
		}
	}

	t := template.New(name).Funcs(funcMap())
	if _, err := t.ParseFS(layoutFS, "layout/*.html"); err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}
	if partials, _ := fs.Glob(src, "templates/_*.html"); len(partials) > 0 {
		if _, err := t.ParseFS(src, partials...); err != nil {
			return nil, fmt.Errorf("view: parse %s partials: %w", comp, err)
		}
	}

	if err := parsePage(t, src, dir, comp, name); err != nil {
		return nil, err
	}

	if pol != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

// parsePage adds the page file, preferring the override directory.
func parsePage(t *template.Template, src fs.FS, dir, comp, name string) error {
	if dir != "" {
		p := filepath.Join(dir, comp, name+".html")
		if _, err := os.Stat(p); err == nil {
			_, err = t.ParseFiles(p)
			return err
		}
	}
	p := "templates/" + name + ".html"
	if _, err := fs.Stat(src, p); err != nil {
		return fmt.Errorf("%w: %s/%s", ErrNoTemplate, comp, name)
	}
	_, err := t.ParseFS(src, p)
	return err
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has a non-empty "<name>.html" (file-based template), run
//     that.  A file holding only {{ define }} blocks parses to an empty
//     tree and is skipped.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil && tmpl.Tree != nil && !parse.IsEmptyTree(tmpl.Tree.Root) {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// trimPrefix exists so templates can strip "image/" from MIME types.
func trimPrefix(prefix, s string) string { return strings.TrimPrefix(s, prefix) }
