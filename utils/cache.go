package utils

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the in-process TTL store used for response memoization and
// idempotency. Entries expire lazily: there is no background sweep, an
// expired entry simply reads as absent. Safe for concurrent use.
type Cache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

// NewCache creates a cache with the given default entry lifetime.
// A cleanup interval of zero disables the janitor goroutine, so expiry is
// enforced only at read time.
func NewCache(defaultTTL time.Duration) *Cache {
	return &Cache{
		store:      gocache.New(defaultTTL, 0),
		defaultTTL: defaultTTL,
	}
}

// DefaultTTL returns the configured default entry lifetime.
func (c *Cache) DefaultTTL() time.Duration { return c.defaultTTL }

// Set stores value under key with expiry now + ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// SetDefault stores value under key with the default TTL.
func (c *Cache) SetDefault(key string, value any) {
	c.store.SetDefault(key, value)
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Add stores value only if no unexpired entry exists for key, and reports
// whether it was stored. This is the atomic insert-if-absent primitive.
func (c *Cache) Add(key string, value any, ttl time.Duration) bool {
	return c.store.Add(key, value, ttl) == nil
}

// Delete removes key immediately.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes all entries immediately.
func (c *Cache) Clear() {
	c.store.Flush()
}
