// internal/venue/cache.go
//
// Gate cache: slug → *Venue.
//
// Context
// -------
// Every hit on a submission link resolves the venue by slug.  Cache keeps
// recently used venues in a sync.Map, coalesces concurrent misses for the
// same slug with singleflight, and drops entries that are idle too long,
// older than MaxAge, or beyond MaxEntries (least recently used first).
// Not-found results are never cached, so a freshly created venue is
// reachable immediately.  Service.Delete calls Forget.
//
// A shared load is detached from the caller that started it and bounded by
// LoadTimeout.  Each caller still stops waiting when its own ctx ends.
package venue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/venuedesk/internal/metrics"
)

// Static defaults.
const (
	IdleTTL       = 30 * time.Minute
	MaxAge        = 5 * time.Minute
	MaxEntries    = 500
	EvictInterval = time.Minute
	LoadTimeout   = 5 * time.Second
)

// LoaderFunc fetches a venue by slug from the source of truth.
type LoaderFunc func(ctx context.Context, slug string) (*Venue, error)

type entry struct {
	venue    *Venue
	loadedAt int64 // UnixNano
	lastSeen int64 // UnixNano
}

// Cache lazily loads venues and evicts them on idle, age, or size pressure.
type Cache struct {
	load       LoaderFunc
	sfg        singleflight.Group
	m          sync.Map
	idleTTL    time.Duration
	maxAge     time.Duration
	maxEntries int
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(load LoaderFunc, idleTTL, maxAge time.Duration, maxEntries int) *Cache {
	c := newCache(load, idleTTL, maxAge, maxEntries)
	go c.evictLoop(EvictInterval)
	return c
}

func newCache(load LoaderFunc, idleTTL, maxAge time.Duration, maxEntries int) *Cache {
	return &Cache{
		load:       load,
		idleTTL:    idleTTL,
		maxAge:     maxAge,
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

// Get returns the venue for slug, loading it on demand.
func (c *Cache) Get(ctx context.Context, slug string) (*Venue, error) {
	if v, ok := c.fresh(slug); ok {
		return v, nil
	}

	ch := c.sfg.DoChan(slug, func() (any, error) {
		// Double-check after the singleflight barrier.
		if v, ok := c.fresh(slug); ok {
			return v, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		ven, err := c.load(lctx, slug)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				metrics.VenueCacheLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		now := c.now().UnixNano()
		if _, loaded := c.m.Swap(slug, &entry{venue: ven, loadedAt: now, lastSeen: now}); !loaded {
			metrics.VenueCacheEntries.Inc()
		}
		metrics.VenueCacheLoadTotal.Inc()
		return ven, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Venue), nil
	}
}

// Forget drops slug so the next Get reloads it.
func (c *Cache) Forget(slug string) {
	if _, ok := c.m.LoadAndDelete(slug); ok {
		metrics.VenueCacheEntries.Dec()
	}
}

// Len reports the number of cached venues.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Close stops the evictor.
func (c *Cache) Close() { c.stopOnce.Do(func() { close(c.stop) }) }

// fresh returns a cached venue that has not outlived maxAge.
func (c *Cache) fresh(slug string) (*Venue, bool) {
	v, ok := c.m.Load(slug)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	now := c.now().UnixNano()
	if c.maxAge > 0 && time.Duration(now-ent.loadedAt) > c.maxAge {
		return nil, false
	}
	atomic.StoreInt64(&ent.lastSeen, now)
	return ent.venue, true
}
