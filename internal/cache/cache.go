// Package cache provides the process-wide TTL caches shared by all
// concurrently handled requests: verified-credential results and recently
// generated recipe snapshots. Entries past their TTL are treated as absent
// and the oldest entries are evicted once capacity is reached.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Default sizing for the two cache instances.
const (
	TokenTTL      = time.Hour
	TokenCapacity = 1000

	RecipeTTL      = 5 * time.Minute
	RecipeCapacity = 100
)

// Cache is a time-bounded key/value map. Implementations must be safe for
// concurrent use. Constructor-injected so tests can substitute a
// deterministic implementation.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Delete(key string)
	EvictExpired()
}

// TTL is a Cache backed by an in-process ttlcache instance.
type TTL[V any] struct {
	inner *ttlcache.Cache[string, V]
}

// NewTTL creates a cache whose entries expire after ttl and which holds at
// most capacity entries, evicting the oldest first.
func NewTTL[V any](ttl time.Duration, capacity uint64) *TTL[V] {
	inner := ttlcache.New[string, V](
		ttlcache.WithTTL[string, V](ttl),
		ttlcache.WithCapacity[string, V](capacity),
		// Reads must not extend an entry's lifetime.
		ttlcache.WithDisableTouchOnHit[string, V](),
	)
	return &TTL[V]{inner: inner}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	item := c.inner.Get(key)
	if item == nil || item.IsExpired() {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

func (c *TTL[V]) Set(key string, value V) {
	c.inner.Set(key, value, ttlcache.DefaultTTL)
}

func (c *TTL[V]) Delete(key string) {
	c.inner.Delete(key)
}

// EvictExpired removes entries past their TTL. Expired entries are already
// invisible to Get; this just reclaims memory eagerly.
func (c *TTL[V]) EvictExpired() {
	c.inner.DeleteExpired()
}
