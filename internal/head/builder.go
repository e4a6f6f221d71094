// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single request.  Handlers push tags
// into the builder, then the base layout emits each slice.
//
// Features
// --------
//   - SetTitle                  – page title, suffixed with the site name.
//   - Meta, Stylesheet, Script  – tags built from escaped attributes, with
//     deduplication.
//   - NoIndex                   – robots noindex.  Venue links carry their
//     access key, so those pages must never be indexed.
//   - Render helpers            – concat methods that return template.HTML.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is used by one request at a time; the mutex covers handlers that
// fan work out to goroutines.
type Builder struct {
	mu sync.Mutex

	site  string
	title string

	metas   []string
	links   []string
	scripts []string

	seen map[string]struct{}
}

// New returns a Builder whose titles end in site.
func New(site string) *Builder {
	return &Builder{site: site, seen: make(map[string]struct{})}
}

// SetTitle overrides the page title.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.site
	if b.title != "" && b.site != "" {
		t = b.title + " · " + b.site
	} else if b.title != "" {
		t = b.title
	}
	if t == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(t) + "</title>")
}

// Meta adds <meta name=… content=…>.
func (b *Builder) Meta(name, content string) {
	tag := `<meta name="` + esc(name) + `" content="` + esc(content) + `">`
	b.add("meta:"+name, &b.metas, tag)
}

// Stylesheet adds a <link rel="stylesheet">.
func (b *Builder) Stylesheet(href string) {
	b.add("link:"+href, &b.links, `<link rel="stylesheet" href="`+esc(href)+`">`)
}

// Script adds a deferred external script.
func (b *Builder) Script(src string) {
	b.add("script:"+src, &b.scripts, `<script defer src="`+esc(src)+`"></script>`)
}

// NoIndex keeps the page out of search engines.
func (b *Builder) NoIndex() { b.Meta("robots", "noindex, nofollow") }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from the layout
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML   { return b.concat(b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(b.scripts) }

// concat joins pre-escaped tags with newlines.
func (b *Builder) concat(sl []string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(sl, "\n"))
}

func esc(s string) string { return template.HTMLEscapeString(s) }
