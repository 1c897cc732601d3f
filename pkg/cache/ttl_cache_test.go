package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)

	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTLCacheSweep(t *testing.T) {
	c := NewTTLCache[string, int]()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("stale", 1, time.Second)
	c.Set("fresh", 2, time.Hour)
	now = now.Add(time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheConcurrentUpdate(t *testing.T) {
	c := NewTTLCache[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update("n", time.Hour, func(cur int, _ bool) int { return cur + 1 })
		}()
	}
	wg.Wait()

	v, ok := c.Get("n")
	assert.True(t, ok)
	assert.Equal(t, 50, v)
}

func TestNoopCache(t *testing.T) {
	var c Cache[string, int] = NoopCache[string, int]{}
	c.Set("a", 1, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Update("a", 0, func(cur int, _ bool) int { return cur + 1 }))
}
