package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock gives tests control over the cache's notion of now.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration, maxSize int) (*Cache[string], *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	c := New[string](ttl, maxSize)
	c.now = clk.now
	return c, clk
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(5*time.Minute, 10)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.True(t, c.Has("k"))
}

func TestGetAbsent(t *testing.T) {
	c, _ := newTestCache(5*time.Minute, 10)

	got, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", got)
	assert.False(t, c.Has("missing"))
}

func TestTTLExpiry(t *testing.T) {
	c, clk := newTestCache(5*time.Minute, 10)

	c.Set("k", "v")
	clk.advance(5*time.Minute - time.Second)
	assert.True(t, c.Has("k"), "entry still fresh just before the TTL")

	clk.advance(time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok, "entry must be absent once the TTL elapses")
}

func TestLazyExpiryDeletesOnRead(t *testing.T) {
	c, clk := newTestCache(time.Minute, 10)

	c.Set("k", "v")
	clk.advance(2 * time.Minute)
	assert.Equal(t, 1, c.Len(), "expired entry lingers until read or swept")

	c.Get("k")
	assert.Equal(t, 0, c.Len(), "lookup of an expired entry deletes it")
}

func TestCapacityEvictsOldestInserted(t *testing.T) {
	c, clk := newTestCache(time.Hour, 3)

	c.Set("a", "1")
	clk.advance(time.Second)
	c.Set("b", "2")
	clk.advance(time.Second)
	c.Set("c", "3")

	// Reading "a" must not refresh its position: eviction is insertion
	// order, not LRU.
	c.Get("a")

	clk.advance(time.Second)
	c.Set("d", "4")

	assert.False(t, c.Has("a"), "oldest-inserted entry evicted")
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
	assert.True(t, c.Has("d"))
	assert.Equal(t, 3, c.Len())
}

func TestCapacityEvictsExactlyOne(t *testing.T) {
	c, _ := newTestCache(time.Hour, 2)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
}

func TestSetExistingKeyReplacesAndRestartsLifetime(t *testing.T) {
	c, clk := newTestCache(time.Minute, 2)

	c.Set("k", "old")
	clk.advance(50 * time.Second)
	c.Set("k", "new")

	clk.advance(30 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok, "re-set restarts the TTL")
	assert.Equal(t, "new", got)

	// The re-set key moved to the back of the eviction order.
	c.Set("x", "1")
	c.Set("y", "2")
	assert.False(t, c.Has("k"))
}

func TestSetExistingKeyDoesNotEvictOthers(t *testing.T) {
	c, _ := newTestCache(time.Hour, 2)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated")

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("a"))
	assert.True(t, c.Has("b"))
}

func TestCleanupSweepsOnlyExpired(t *testing.T) {
	c, clk := newTestCache(time.Minute, 10)

	c.Set("old", "1")
	clk.advance(2 * time.Minute)
	c.Set("fresh", "2")

	c.Cleanup()

	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Has("old"))
	assert.True(t, c.Has("fresh"))
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(time.Hour, 10)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has("a"))

	// The cache remains usable after a clear.
	c.Set("c", "3")
	assert.True(t, c.Has("c"))
}

func TestExportOrder(t *testing.T) {
	c, clk := newTestCache(time.Hour, 10)

	c.Set("b", "2")
	clk.advance(time.Second)
	c.Set("a", "1")

	entries := c.Export()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key, "export is oldest-inserted first")
	assert.Equal(t, "a", entries[1].Key)
}

func TestRestoreDropsExpiredAndEnforcesCapacity(t *testing.T) {
	c, clk := newTestCache(time.Minute, 2)

	base := clk.t
	entries := []Entry[string]{
		{Key: "expired", Value: "x", InsertedAt: base.Add(-2 * time.Minute)},
		{Key: "a", Value: "1", InsertedAt: base.Add(-30 * time.Second)},
		{Key: "b", Value: "2", InsertedAt: base.Add(-20 * time.Second)},
		{Key: "c", Value: "3", InsertedAt: base.Add(-10 * time.Second)},
	}
	c.Restore(entries)

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Has("expired"))
	assert.False(t, c.Has("a"), "capacity enforced oldest-first during restore")
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
}

func TestKeyOrderIndependent(t *testing.T) {
	k1 := Key("search", "wss://a.example.com", "wss://b.example.com")
	k2 := Key("wss://b.example.com", "search", "wss://a.example.com")
	assert.Equal(t, k1, k2, "equivalent dimension sets must collapse to one slot")

	k3 := Key("search", "wss://a.example.com")
	assert.NotEqual(t, k1, k3)
}

func TestNewPanicsOnBadBounds(t *testing.T) {
	assert.Panics(t, func() { New[string](0, 1) })
	assert.Panics(t, func() { New[string](time.Minute, 0) })
}
