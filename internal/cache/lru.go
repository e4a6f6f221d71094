// internal/cache/lru.go
//
// Small goroutine-safe LRU used by the view engine to hold parsed
// *template.Template sets, one per component page.
//
// Notes
// -----
//   - Every method takes the mutex.  Get mutates recency, so a RWMutex
//     would buy nothing.
//   - Purge exists for development reloads; production never calls it.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a least-recently-used cache with string keys.
type LRU struct {
	mu   sync.Mutex
	cap  int
	ll   *list.List
	dict map[string]*list.Element
}

type pair struct {
	key string
	val any
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New(capacity int) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a value and marks it MRU.
func (c *LRU) Get(key string) (val any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(pair).val, true
	}
	return nil, false
}

// Add inserts or updates a value, evicting the LRU entry when full.
func (c *LRU) Add(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair{key, val}
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[key] = c.ll.PushFront(pair{key, val})
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(pair).key)
	}
}

// Purge empties the cache.
func (c *LRU) Purge() {
	c.mu.Lock()
	c.ll.Init()
	c.dict = make(map[string]*list.Element, c.cap)
	c.mu.Unlock()
}

// Len reports current size.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
