package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetPut(t *testing.T) {
	c := New[string](2, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("a", "1")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestExpiry(t *testing.T) {
	c := New[string](2, 10*time.Millisecond)
	c.Put("a", "1")

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entries are dropped on read")
}

func TestEvictionAtCapacity(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("c")
	assert.True(t, ok, "the newest entry survives eviction")
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3)

	assert.Equal(t, 2, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, 3, v)
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func TestPurge(t *testing.T) {
	c := New[int](4, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Purge()
	assert.Equal(t, 0, c.Len())
}
