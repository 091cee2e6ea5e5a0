package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory(time.Minute, 0)
	defer c.Close()

	c.Set("k", "v", 0)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory(time.Minute, 0)
	defer c.Close()

	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemory(time.Minute, 0)
	defer c.Close()

	c.Set("k", "v", 0)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemory(time.Minute, 0)
	defer c.Close()

	c.Set(ProductKey("p1"), 1, 0)
	c.Set(ProductKey("p2"), 2, 0)
	c.Set(VendorDashboardKey("v1"), 3, 0)

	c.DeletePrefix(ProductPrefix)

	_, ok := c.Get(ProductKey("p1"))
	assert.False(t, ok)
	_, ok = c.Get(ProductKey("p2"))
	assert.False(t, ok)
	_, ok = c.Get(VendorDashboardKey("v1"))
	assert.True(t, ok)
}

func TestMemoryCacheFlush(t *testing.T) {
	c := NewMemory(time.Minute, 0)
	defer c.Close()

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Flush()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryCacheSweep(t *testing.T) {
	c := NewMemory(time.Minute, 5*time.Millisecond)
	defer c.Close()

	c.Set("k", "v", time.Millisecond)

	assert.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		_, present := c.entries["k"]
		return !present
	}, time.Second, 10*time.Millisecond)
}
