// Package cache provides a size-bounded, TTL-expiring read cache.
// Writers purge it explicitly; the TTL only bounds staleness if a purge is missed.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a string-keyed LRU with per-entry expiry. Safe for concurrent use.
//
// Every Purge starts a new generation. A reader that loads a value takes the
// generation before querying and stores with AddIfCurrent, so a result read
// before a concurrent purge is dropped instead of cached.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]

	mu  sync.Mutex
	gen uint64
}

// New creates a cache holding at most size entries for ttl each.
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 1
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *Cache[V]) Add(key string, v V) {
	c.lru.Add(key, v)
}

// Generation returns the current purge generation.
func (c *Cache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// AddIfCurrent stores v only if no purge happened since gen was taken.
// It reports whether the value was stored.
func (c *Cache[V]) AddIfCurrent(key string, v V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lru.Add(key, v)
	return true
}

// Purge drops every entry and starts a new generation.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Purge()
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
