package forecast

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a cached horizon set is served before
// recomputation.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	predictions []Prediction
	insertedAt  time.Time
}

// Cache memoizes full forecast results keyed by (entity, metric, sorted
// horizon set). It is advisory: a miss or expiry always triggers full
// recomputation, and concurrent misses on the same key may compute twice —
// duplicate work is acceptable, a torn entry is not. Entries are immutable
// values swapped whole under the lock.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given TTL. A non-positive TTL disables
// caching entirely (every lookup misses). The clock defaults to time.Now
// and can be overridden for tests via WithClock.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock substitutes the cache's clock and returns the cache.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// cacheKey builds the lookup key. Horizons are sorted so request order does
// not fragment the cache.
func cacheKey(entityID, metric string, horizons []time.Duration) string {
	sorted := make([]time.Duration, len(horizons))
	copy(sorted, horizons)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, h := range sorted {
		parts[i] = fmt.Sprintf("%d", int64(h/time.Second))
	}
	return entityID + "|" + metric + "|" + strings.Join(parts, ",")
}

// Get returns the cached predictions for the key, or false on miss or
// expiry. Expired entries are left for Put to overwrite; reads never block
// on cleanup.
func (c *Cache) Get(entityID, metric string, horizons []time.Duration) ([]Prediction, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	key := cacheKey(entityID, metric, horizons)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		return nil, false
	}
	return entry.predictions, true
}

// Put stores a computed horizon set.
func (c *Cache) Put(entityID, metric string, horizons []time.Duration, predictions []Prediction) {
	if c == nil || c.ttl <= 0 {
		return
	}

	key := cacheKey(entityID, metric, horizons)

	c.mu.Lock()
	c.entries[key] = cacheEntry{predictions: predictions, insertedAt: c.now()}
	c.mu.Unlock()
}

// Prune drops expired entries. Callers run this opportunistically; the
// cache never serves stale data regardless.
func (c *Cache) Prune() {
	if c == nil || c.ttl <= 0 {
		return
	}

	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	for key, entry := range c.entries {
		if entry.insertedAt.Before(cutoff) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of entries, expired included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
