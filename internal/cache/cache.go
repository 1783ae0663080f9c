// Package cache provides the in-process result cache used by the data
// resolution layer. Entries carry an individual time-to-live; there is no
// capacity bound and no LRU eviction, because the working set is a handful of
// table payloads that are refetched every few minutes anyway.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is a cached payload plus its expiry deadline.
type entry struct {
	payload   interface{}
	fetchedAt time.Time
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Cache is a key→payload store with per-entry TTL.
// Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time // injectable clock for testing
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets a custom clock function (for testing).
func WithClock(fn func() time.Time) Option {
	return func(c *Cache) { c.now = fn }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the payload for key if present and not expired.
// An expired entry is evicted as a side effect and reported as absent.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key with the given TTL.
// A non-positive TTL stores nothing.
func (c *Cache) Set(key string, payload interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry{
		payload:   payload,
		fetchedAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, counting expired ones that have
// not been touched by Get yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// FetchFunc produces the payload for a cache miss.
type FetchFunc func(ctx context.Context) (interface{}, error)

// GetOrFetch returns the cached payload for key, or runs fn to produce it and
// stores the result under key with the given TTL. Concurrent callers for the
// same cold key share one fn execution.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fn FetchFunc) (interface{}, error) {
	if payload, ok := c.Get(key); ok {
		return payload, nil
	}

	payload, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have filled the
		// entry between our miss and the group admitting us.
		if payload, ok := c.Get(key); ok {
			return payload, nil
		}
		payload, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, payload, ttl)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}
