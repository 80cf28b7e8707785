package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces a fresh value, typically a reconciliation result.
type LoadFunc[V any] func(ctx context.Context) V

type cacheEntry[V any] struct {
	value V
	built time.Time
	ttl   time.Duration
}

func (e *cacheEntry[V]) expired(now time.Time) bool {
	if e.ttl <= 0 {
		return true
	}
	return now.Sub(e.built) > e.ttl
}

// Cache holds the latest value per key with a TTL and collapses
// concurrent loads of the same key into one reconciliation.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry[V]
	sf      singleflight.Group
	now     func() time.Time
}

// NewCache creates an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]*cacheEntry[V]),
		now:     time.Now,
	}
}

// GetOrLoad returns the cached value for key while it is fresh, otherwise
// runs load once for all concurrent callers and stores the outcome. The
// second return value reports whether the value came from the cache.
// A non-positive ttl always reloads.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load LoadFunc[V]) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !entry.expired(c.now()) {
		return entry.value, true
	}

	v, _, _ := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have refreshed the entry while we waited.
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && !entry.expired(c.now()) {
			return entry.value, nil
		}

		value := load(ctx)

		c.mu.Lock()
		c.entries[key] = &cacheEntry[V]{value: value, built: c.now(), ttl: ttl}
		c.mu.Unlock()
		return value, nil
	})
	return v.(V), false
}

// Peek returns the last stored value for key, fresh or not.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Invalidate forces the next GetOrLoad for key to reload.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		// Entries are read outside the lock, so replace instead of mutating.
		c.entries[key] = &cacheEntry[V]{value: entry.value, built: entry.built}
	}
	c.mu.Unlock()
}
