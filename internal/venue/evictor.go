// evictor.go houses the eviction loop for Cache.  Every tick it scans the
// map and removes:
//
//   - venues idle longer than idleTTL or loaded longer than maxAge ago
//   - least-recently-used venues when the map exceeds maxEntries
//
// Each eviction is logged at DEBUG and counted in Prometheus.
package venue

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/venuedesk/internal/metrics"
)

func (c *Cache) evictLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.evictOnce()
		}
	}
}

func (c *Cache) evictOnce() {
	now := c.now().UnixNano()

	type kv struct {
		slug string
		at   int64
	}
	var live []kv

	// ----------------------------------------------------------------
	// Idle and age pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		ent := value.(*entry)
		seen := atomic.LoadInt64(&ent.lastSeen)
		idle := time.Duration(now - seen)
		age := time.Duration(now - ent.loadedAt)
		if idle > c.idleTTL || (c.maxAge > 0 && age > c.maxAge) {
			c.drop(key.(string), "expired")
			return true
		}
		live = append(live, kv{slug: key.(string), at: seen})
		return true
	})

	// ----------------------------------------------------------------
	// LRU pass
	// ----------------------------------------------------------------
	if c.maxEntries <= 0 || len(live) <= c.maxEntries {
		return
	}
	sort.Slice(live, func(i, j int) bool { return live[i].at < live[j].at })
	for _, e := range live[:len(live)-c.maxEntries] {
		c.drop(e.slug, "lru")
	}
}

func (c *Cache) drop(slug, why string) {
	if _, ok := c.m.LoadAndDelete(slug); !ok {
		return
	}
	zap.S().Debugw("venue evicted", "slug", slug, "reason", why)
	metrics.VenueCacheEvictTotal.Inc()
	metrics.VenueCacheEntries.Dec()
}
