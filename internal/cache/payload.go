package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// PayloadCache is a size-bounded LRU cache for rendered response payloads
// (serialized JSON pages), backed by ristretto. The API layer uses it to
// avoid re-encoding hot listing responses; it sits in front of the typed
// TimedCache registry and tolerates arbitrary eviction.
type PayloadCache struct {
	cache      *ristretto.Cache
	defaultTTL time.Duration
}

// payloadItem wraps the data with its expiration time.
type payloadItem struct {
	data      []byte
	expiresAt time.Time
}

// NewPayloadCache creates a payload cache bounded to maxSizeMB megabytes and
// maxEntries entries, with the given default TTL.
func NewPayloadCache(maxSizeMB, maxEntries int64, defaultTTL time.Duration) (*PayloadCache, error) {
	// NumCounters should be ~10x the number of entries per the ristretto docs.
	numCounters := maxEntries * 10
	if numCounters < 1000 {
		numCounters = 1000
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxSizeMB * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &PayloadCache{cache: c, defaultTTL: defaultTTL}, nil
}

// Get retrieves a payload by key.
func (c *PayloadCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	item, ok := val.(*payloadItem)
	if !ok {
		c.cache.Del(key)
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		c.cache.Del(key)
		return nil, false
	}

	return item.data, true
}

// Set stores a payload with the given TTL. TTL of 0 means the default.
func (c *PayloadCache) Set(key string, data []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	item := &payloadItem{data: data, expiresAt: time.Now().Add(ttl)}

	// Cost is the payload size; ristretto handles eviction internally.
	_ = c.cache.Set(key, item, int64(len(data)))

	// Wait for the value to pass through ristretto's buffers.
	c.cache.Wait()
}

// Delete removes a payload.
func (c *PayloadCache) Delete(key string) {
	c.cache.Del(key)
}

// Clear removes all payloads.
func (c *PayloadCache) Clear() {
	c.cache.Clear()
}

// Close releases the cache's resources.
func (c *PayloadCache) Close() {
	c.cache.Close()
}
