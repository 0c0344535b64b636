package cache

import (
	"sync"
	"time"
)

// Entry is one stored key/payload pair with its insertion timestamp.
// Exported for snapshot persistence; values are replaced wholesale,
// never edited in place.
type Entry[V any] struct {
	Key        string
	Value      V
	InsertedAt time.Time
}

// Cache is a string-keyed container bounded by TTL and entry count.
//
// Thread-safety model:
//   - All methods are safe from any goroutine; a single mutex guards
//     every mutation.
//   - Reads never block on anything but the mutex; network I/O never
//     happens under a cache lock.
//
// INVARIANTS:
//   - order holds the live keys oldest-inserted first.
//   - An entry past its TTL is never returned, regardless of whether the
//     background sweep has run (lazy expiry on read).
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]Entry[V]
	order   []string

	now func() time.Time // test hook
}

// New creates a cache holding at most maxSize entries, each living for
// at most ttl after insertion. Both bounds must be positive.
func New[V any](ttl time.Duration, maxSize int) *Cache[V] {
	if ttl <= 0 {
		panic("cache: ttl must be positive")
	}
	if maxSize <= 0 {
		panic("cache: maxSize must be positive")
	}
	return &Cache[V]{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]Entry[V]),
		now:     time.Now,
	}
}

// Get returns the payload for key, or ok=false if the key was never set
// or its TTL has elapsed. An expired entry is deleted as a side effect.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(e) {
		c.remove(key)
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Has reports key freshness with the same semantics as Get, without
// returning the payload.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores the payload under key. A write to an existing key replaces
// the value and restarts its lifetime. When the cache is at capacity, the
// single oldest-inserted surviving entry is evicted first.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if len(c.entries) >= c.maxSize {
		// order is oldest-first, so the head is the eviction victim.
		c.remove(c.order[0])
	}
	c.entries[key] = Entry[V]{Key: key, Value: value, InsertedAt: c.now()}
	c.order = append(c.order, key)
}

// Cleanup sweeps all entries and removes every expired one. Intended to
// run on a fixed interval; correctness does not depend on it because
// reads already expire lazily.
func (c *Cache[V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if c.expired(e) {
			c.remove(key)
		}
	}
}

// Clear unconditionally removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V])
	c.order = c.order[:0]
}

// Len returns the number of stored entries, counting any not yet swept
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Export returns the live (unexpired) entries oldest-inserted first.
// Used by snapshot persistence.
func (c *Cache[V]) Export() []Entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry[V], 0, len(c.entries))
	for _, key := range c.order {
		e := c.entries[key]
		if !c.expired(e) {
			out = append(out, e)
		}
	}
	return out
}

// Restore replaces the cache contents with the given entries, preserving
// their original insertion timestamps. Expired entries are dropped and
// capacity is enforced oldest-first, exactly as if the survivors had been
// Set in order.
func (c *Cache[V]) Restore(entries []Entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V], len(entries))
	c.order = c.order[:0]
	for _, e := range entries {
		if c.expired(e) {
			continue
		}
		if _, ok := c.entries[e.Key]; ok {
			c.remove(e.Key)
		}
		if len(c.entries) >= c.maxSize {
			c.remove(c.order[0])
		}
		c.entries[e.Key] = e
		c.order = append(c.order, e.Key)
	}
}

// expired reports whether e's TTL has elapsed. Caller holds the mutex.
func (c *Cache[V]) expired(e Entry[V]) bool {
	return c.now().Sub(e.InsertedAt) >= c.ttl
}

// remove deletes key from both the map and the order slice.
// Caller holds the mutex.
func (c *Cache[V]) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
