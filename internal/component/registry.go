// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web blank-imports the
// components it serves, builds one Deps value, and hands it to Mount,
// which calls Init on every component and then lets each one attach its
// routes to the shared router.
//
// Notes
// -----
//   - Components share path prefixes (auth and admin both live under
//     /admin), so each registers its routes on the root router instead of
//     being mounted at a sub-path.
//   - Mount visits components in name order so route registration is
//     deterministic across runs.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer receives the shared dependencies once, before Routes.
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Routes should attach BOTH page and API endpoints, e.g:
//
//	func (c *Component) Routes(r chi.Router) {
//		r.Get("/submit/{slug}", c.page)
//		r.Post("/api/submissions", c.create)
//	}
type Component interface {
	Name() string
	Routes(r chi.Router)
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every registered component with deps and attaches its
// routes to r.  The first Init failure aborts.
func Mount(r chi.Router, deps Deps) error {
	for _, c := range All() {
		if err := c.Init(deps); err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}
		c.Routes(r)
	}
	return nil
}
