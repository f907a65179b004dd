package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLSetGet(t *testing.T) {
	c := NewTTL[string](time.Minute, 10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("token", "user-1")
	got, ok := c.Get("token")
	require.True(t, ok)
	assert.Equal(t, "user-1", got)

	c.Delete("token")
	_, ok = c.Get("token")
	assert.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL[int](20*time.Millisecond, 10)

	c.Set("a", 1)
	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok, "expired entry must be treated as absent")

	c.EvictExpired()
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCapacityEvictsOldest(t *testing.T) {
	c := NewTTL[int](time.Minute, 3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted at capacity")

	got, ok := c.Get("d")
	require.True(t, ok)
	assert.Equal(t, 4, got)
}

func TestTTLGetDoesNotExtendLifetime(t *testing.T) {
	c := NewTTL[int](30*time.Millisecond, 10)

	c.Set("a", 1)
	for i := 0; i < 3; i++ {
		time.Sleep(15 * time.Millisecond)
		c.Get("a")
	}

	_, ok := c.Get("a")
	assert.False(t, ok, "reads must not refresh the TTL")
}
