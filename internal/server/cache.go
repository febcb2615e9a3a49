package server

import (
	"sync"

	"golang.org/x/exp/slices"

	gocas "github.com/njchilds90/gocas"
)

// cacheKey identifies a tool call by the structure of its expression, so the
// text and JSON forms of the same tree share an entry.
type cacheKey struct {
	tool string
	fp   uint64
	rest string // the other params, JSON encoded
}

// Cache is a bounded tool-response cache with oldest-first eviction.
type Cache struct {
	mu      sync.Mutex
	size    int
	entries map[cacheKey]gocas.ToolResponse
	order   []cacheKey

	hits, misses uint64
}

// NewCache returns a cache holding at most size responses. A size of zero
// disables caching.
func NewCache(size int) *Cache {
	return &Cache{size: size, entries: make(map[cacheKey]gocas.ToolResponse)}
}

func (c *Cache) get(k cacheKey) (gocas.ToolResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

func (c *Cache) put(k cacheKey, r gocas.ToolResponse) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; ok {
		c.entries[k] = r
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = slices.Delete(c.order, 0, 1)
		delete(c.entries, oldest)
	}
	c.entries[k] = r
	c.order = append(c.order, k)
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
