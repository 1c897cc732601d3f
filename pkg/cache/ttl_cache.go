package cache

import (
	"sync"
	"time"
)

// Cache is a small keyed store with per-entry expiry.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Update(key K, ttl time.Duration, fn func(current V, found bool) V) V
	Delete(key K)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// TTLCache keeps values in memory. A zero ttl never expires.
type TTLCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]entry[V]
	now   func() time.Time
}

// NewTTLCache returns an empty cache.
func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: make(map[K]entry[V]),
		now:   time.Now,
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	c.setLocked(key, value, ttl)
	c.mu.Unlock()
}

// Update applies fn to the current value under the cache lock and stores
// the result, so concurrent read-modify-write cycles never lose updates.
func (c *TTLCache[K, V]) Update(key K, ttl time.Duration, fn func(current V, found bool) V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, found := c.getLocked(key)
	next := fn(current, found)
	c.setLocked(key, next, ttl)
	return next
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Sweep drops expired entries and reports how many were removed.
func (c *TTLCache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Len counts live and not yet swept entries.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TTLCache[K, V]) getLocked(key K) (V, bool) {
	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if e.expired(c.now()) {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[K, V]) setLocked(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
}

// NoopCache misses on every read and ignores writes.
type NoopCache[K comparable, V any] struct{}

func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

func (NoopCache[K, V]) Update(key K, ttl time.Duration, fn func(current V, found bool) V) V {
	var zero V
	return fn(zero, false)
}

func (NoopCache[K, V]) Delete(key K) {}
