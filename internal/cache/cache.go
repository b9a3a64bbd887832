// Package cache provides the in-memory caching layer used by the data-access
// stores: a generic read-through cache with TTL expiry, explicit invalidation,
// and an optional size bound with oldest-first eviction.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry wraps a cached value with the time it was stored and its TTL.
type entry[T any] struct {
	value    T
	storedAt time.Time
	ttl      time.Duration
}

func (e entry[T]) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// Stats represents cache statistics.
type Stats struct {
	Hits      uint64 // Total cache hits
	Misses    uint64 // Total cache misses
	Evictions uint64 // Total entries removed by Sweep
	Items     int    // Current number of items
}

// TimedCache is an in-memory expiring key/value store holding values of one
// resource family. Expired entries are treated as absent on read; they are
// only removed by Get (opportunistically), Delete, DeletePrefix, or Sweep.
//
// Concurrent GetOrSet calls for the same key are coalesced so the producer
// runs once per in-flight key.
type TimedCache[T any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[T]
	defaultTTL time.Duration

	// Size bound; zero maxEntries means unbounded.
	maxEntries int
	evictBatch int

	group singleflight.Group

	hits      uint64
	misses    uint64
	evictions uint64

	name string
}

// New creates an unbounded cache with the given default TTL.
// The name labels the cache in stats and metrics.
func New[T any](name string, defaultTTL time.Duration) *TimedCache[T] {
	return &TimedCache[T]{
		entries:    make(map[string]entry[T]),
		defaultTTL: defaultTTL,
		name:       name,
	}
}

// NewBounded creates a cache that Sweep trims back to maxEntries-evictBatch
// entries whenever the count exceeds maxEntries, evicting oldest-stored first.
func NewBounded[T any](name string, defaultTTL time.Duration, maxEntries, evictBatch int) *TimedCache[T] {
	c := New[T](name, defaultTTL)
	c.maxEntries = maxEntries
	c.evictBatch = evictBatch
	return c
}

// Name returns the cache's registry name.
func (c *TimedCache[T]) Name() string { return c.name }

// Get retrieves the value for key if present and not expired.
func (c *TimedCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.miss()
		var zero T
		return zero, false
	}

	if e.expired(time.Now()) {
		// Opportunistic eviction; re-check under the write lock in case the
		// entry was refreshed since the read.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.miss()
		var zero T
		return zero, false
	}

	c.hit()
	return e.value, true
}

// Set stores value under key with storedAt = now, overwriting any existing
// entry. A ttl of 0 means use the cache's default TTL.
func (c *TimedCache[T]) Set(key string, value T, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, storedAt: time.Now(), ttl: ttl}
	c.mu.Unlock()
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (c *TimedCache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// GetOrSet returns the cached value for key if present and not expired;
// otherwise it invokes producer, stores the result with the given TTL
// (0 means default) and returns it. If producer fails nothing is stored,
// so the next call retries. Concurrent misses on the same key share a
// single producer invocation.
func (c *TimedCache[T]) GetOrSet(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have populated the entry while we waited.
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && !e.expired(time.Now()) {
			return e.value, nil
		}

		val, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Keys enumerates all currently stored keys, expired or not.
func (c *TimedCache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the current number of entries, expired or not.
func (c *TimedCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *TimedCache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// the number of entries removed. Used for listing invalidation, where the
// concrete set of cached pages/sorts is unknowable to the mutating caller.
func (c *TimedCache[T]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Sweep enforces the size bound: when the entry count exceeds maxEntries it
// removes the oldest-stored entries until maxEntries-evictBatch remain.
// It is invoked explicitly by callers after writes (or on a schedule), never
// implicitly by Set. Sweep is a no-op on unbounded caches.
func (c *TimedCache[T]) Sweep() int {
	if c.maxEntries <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) <= c.maxEntries {
		return 0
	}

	retain := c.maxEntries - c.evictBatch
	if retain < 0 {
		retain = 0
	}

	type aged struct {
		key      string
		storedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].storedAt.Before(all[j].storedAt) })

	evict := len(all) - retain
	for i := 0; i < evict; i++ {
		delete(c.entries, all[i].key)
	}
	c.evictions += uint64(evict)
	return evict
}

// Stats returns a snapshot of cache statistics.
func (c *TimedCache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Items:     len(c.entries),
	}
}

func (c *TimedCache[T]) hit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *TimedCache[T]) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
