// Package cache provides keyed memoization with manual invalidation.
//
// Every derived getter in the nutrition store is built on this primitive:
// an entry is valid only while a freshly computed dependency key matches the
// stored one, which makes the cache a memoization of pure derivations rather
// than a time-based cache. The TTL variant layers an expiry on top for the
// read-through fetch caches. Each mutation's invalidation list is part of its
// contract: a missed name here is a stale value silently shown to the user.
package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type entry struct {
	data      any
	key       string
	createdAt time.Time
}

// Cache stores named entries guarded by a dependency key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

// Key canonicalizes a dependency descriptor into a stable string. Map order
// does not matter: identical dependency values always produce identical keys.
func Key(deps map[string]any) string {
	names := make([]string, 0, len(deps))
	for k := range deps {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", k, deps[k]))
	}
	return strings.Join(parts, "|")
}

// Invalidate removes the named entries, or every entry when called with no
// arguments.
func (c *Cache) Invalidate(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(names) == 0 {
		c.entries = make(map[string]entry)
		return
	}
	for _, n := range names {
		delete(c.entries, n)
	}
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(name, key string) (any, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok || e.key != key {
		return nil, time.Time{}, false
	}
	return e.data, e.createdAt, true
}

func (c *Cache) store(name, key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = entry{data: data, key: key, createdAt: c.now()}
}

// GetOrCompute returns the stored value under name when the dependency
// descriptor still matches; otherwise it runs compute, stores the result and
// returns it. On a hit the stored value is returned as-is, so pointer-typed
// results keep their identity across calls.
func GetOrCompute[T any](c *Cache, name string, deps map[string]any, compute func() T) T {
	key := Key(deps)
	if data, _, ok := c.lookup(name, key); ok {
		if v, ok := data.(T); ok {
			return v
		}
	}
	v := compute()
	c.store(name, key, v)
	return v
}

// GetOrComputeTTL behaves like GetOrCompute but additionally expires entries
// older than ttl even when the dependency key still matches. Compute errors
// propagate and nothing is cached for them, so the next call retries.
func GetOrComputeTTL[T any](c *Cache, name string, deps map[string]any, ttl time.Duration, compute func() (T, error)) (T, error) {
	key := Key(deps)
	if data, at, ok := c.lookup(name, key); ok && c.now().Sub(at) < ttl {
		if v, ok := data.(T); ok {
			return v, nil
		}
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	c.store(name, key, v)
	return v, nil
}
