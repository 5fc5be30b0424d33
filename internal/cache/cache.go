package cache

import (
	"strings"
	"sync"
	"time"

	"panelsim/ports"
)

// entry pairs a cached value with its expiry instant
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is an explicit in-process cache with an injected clock and
// prefix-based invalidation. Lifetime is scoped to whoever constructs it;
// there is no package-global instance.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   ports.Clock
}

// New creates a cache where entries live for ttl after insertion
func New(ttl time.Duration, clock ports.Clock) *TTLCache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &TTLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached value for key if present and unexpired
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the cache's TTL
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix.
// Used to evict all cached aggregates for a study when its responses change.
func (c *TTLCache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Purge drops expired entries. Callers decide when to sweep; the cache
// spawns no background goroutine of its own.
func (c *TTLCache) Purge() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Close empties the cache. Explicit teardown pairs with explicit construction.
func (c *TTLCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of entries, expired included
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
