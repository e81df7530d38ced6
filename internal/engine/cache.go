package engine

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/traitkit/internal/ir"
)

// Cache memoizes engine results. Keys carry the whole input tuple and the
// rule tables never change, so entries are never invalidated.
//
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	hits    atomic.Int64
	misses  atomic.Int64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    int64 `json:"hits" yaml:"hits"`
	Misses  int64 `json:"misses" yaml:"misses"`
	Entries int   `json:"entries" yaml:"entries"`
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Get returns the value stored under key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores v under key. An existing entry is kept; two evaluations of
// the same key always agree.
func (c *Cache) Put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = v
	}
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}

// cacheKey joins the operation, tag, descriptor and every auxiliary
// descriptor. Descriptor keys never contain ';'.
func cacheKey(op string, tag ir.Tag, d ir.Descriptor, args []ir.Descriptor) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteByte(';')
	b.WriteString(tag.String())
	b.WriteByte(';')
	b.WriteString(d.Key())
	for _, a := range args {
		b.WriteByte(';')
		b.WriteString(a.Key())
	}
	return b.String()
}

func (e *Engine) cacheGet(key string) (any, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(key)
}

func (e *Engine) cachePut(key string, v any) {
	if e.cache != nil {
		e.cache.Put(key, v)
	}
}
