// Package cache provides a small concurrency-safe cache with per-entry
// expiry, used to keep hot read paths (like ledger summaries) off SQLite.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTLCache maps string keys to values that expire after a fixed duration.
// When full, the entry closest to expiry is evicted.
type TTLCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]entry[T]
}

func NewTTLCache[T any](maxSize int, ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the cached value for key. Expired entries are removed and
// reported as a miss.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting if the cache is at capacity.
func (c *TTLCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictLocked(now)
	}
	c.entries[key] = entry[T]{value: value, expiresAt: now.Add(c.ttl)}
}

// evictLocked drops expired entries, or if none are expired, the entry
// closest to expiry.
func (c *TTLCache[T]) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
		dropped   bool
	)
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			dropped = true
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.expiresAt
		}
	}
	if !dropped && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Invalidate removes a single key.
func (c *TTLCache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Flush removes every entry.
func (c *TTLCache[T]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

func (c *TTLCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
