package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s, err := OpenSnapshot(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestSnapshot(t)

	src, clk := newTestCache(time.Hour, 10)
	src.Set("a", "1")
	clk.advance(time.Second)
	src.Set("b", "2")

	require.NoError(t, Save(ctx, s, "index", src))

	dst, dclk := newTestCache(time.Hour, 10)
	dclk.t = clk.t
	require.NoError(t, Load(ctx, s, "index", dst))

	got, ok := dst.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", got)
	got, ok = dst.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2", got)
	assert.Equal(t, 2, dst.Len())
}

func TestSnapshotLoadDropsEntriesExpiredSinceSave(t *testing.T) {
	ctx := context.Background()
	s := openTestSnapshot(t)

	src, clk := newTestCache(time.Minute, 10)
	src.Set("k", "v")
	require.NoError(t, Save(ctx, s, "index", src))

	// The process "restarts" two minutes later; the saved entry's
	// original insertion time is past the TTL.
	dst, dclk := newTestCache(time.Minute, 10)
	dclk.t = clk.t.Add(2 * time.Minute)
	require.NoError(t, Load(ctx, s, "index", dst))

	assert.Equal(t, 0, dst.Len())
}

func TestSnapshotSaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	s := openTestSnapshot(t)

	src, _ := newTestCache(time.Hour, 10)
	src.Set("old", "1")
	require.NoError(t, Save(ctx, s, "index", src))

	src.Clear()
	src.Set("new", "2")
	require.NoError(t, Save(ctx, s, "index", src))

	dst, _ := newTestCache(time.Hour, 10)
	require.NoError(t, Load(ctx, s, "index", dst))

	assert.False(t, dst.Has("old"))
	assert.True(t, dst.Has("new"))
}

func TestSnapshotNamesArePartitioned(t *testing.T) {
	ctx := context.Background()
	s := openTestSnapshot(t)

	profiles, _ := newTestCache(time.Hour, 10)
	profiles.Set("p", "profile")
	require.NoError(t, Save(ctx, s, "profiles", profiles))

	index, _ := newTestCache(time.Hour, 10)
	index.Set("i", "index")
	require.NoError(t, Save(ctx, s, "index", index))

	dst, _ := newTestCache(time.Hour, 10)
	require.NoError(t, Load(ctx, s, "profiles", dst))
	assert.True(t, dst.Has("p"))
	assert.False(t, dst.Has("i"))
}

func TestSnapshotLoadUnknownNameIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := openTestSnapshot(t)

	dst, _ := newTestCache(time.Hour, 10)
	dst.Set("stale", "x")
	require.NoError(t, Load(ctx, s, "never-saved", dst))
	assert.Equal(t, 0, dst.Len(), "restore replaces contents wholesale")
}

func TestSnapshotStructPayload(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	ctx := context.Background()
	s := openTestSnapshot(t)

	src := New[payload](time.Hour, 10)
	src.Set("k", payload{Name: "x", Count: 3})
	require.NoError(t, Save(ctx, s, "structs", src))

	dst := New[payload](time.Hour, 10)
	require.NoError(t, Load(ctx, s, "structs", dst))

	got, ok := dst.Get("k")
	require.True(t, ok)
	assert.Equal(t, payload{Name: "x", Count: 3}, got)
}

func TestJanitorSweeps(t *testing.T) {
	c, clk := newTestCache(time.Minute, 10)
	c.Set("k", "v")
	clk.advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunJanitor(ctx, 5*time.Millisecond, c)
	}()

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
