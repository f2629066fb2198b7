// Package cache provides a small bounded in-process TTL cache used for
// report views.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTLCache is a bounded map cache with per-entry expiry. When full, the
// entry closest to expiry is evicted to make room.
type TTLCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]entry[T]
}

func New[T any](maxSize int, ttl time.Duration) *TTLCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &TTLCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]entry[T], maxSize),
	}
}

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

func (c *TTLCache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictNearestExpiry()
	}
	c.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

func (c *TTLCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *TTLCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *TTLCache[T]) evictNearestExpiry() {
	var (
		victim string
		oldest time.Time
		first  = true
	)
	for key, e := range c.entries {
		if first || e.expiresAt.Before(oldest) {
			victim, oldest, first = key, e.expiresAt, false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}
