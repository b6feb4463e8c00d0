package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	list  []Species
}

func (s *countingSource) FetchAll(context.Context) ([]Species, error) {
	s.calls++
	return s.list, nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]Species, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, []Species, time.Duration) error {
	return errors.New("cache down")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 12, 4, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache(func() time.Time { return now })

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", Static()[:2], time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 2)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok, "entry should expire at its TTL")
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewMemoryCache(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", Static(), 0))
	now = now.Add(24 * 365 * time.Hour)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestCached_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{list: Static()}
	c := NewCached(src, NewMemoryCache(nil), time.Hour, discardLogger())

	for i := 0; i < 3; i++ {
		list, err := c.FetchAll(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 10)
	}
	assert.Equal(t, 1, src.calls)
}

func TestCached_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{list: Static()}
	c := NewCached(src, brokenCache{}, time.Hour, discardLogger())

	list, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 10)

	_, err = c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCached_SourceError(t *testing.T) {
	boom := errors.New("offline")
	c := NewCached(errSource{err: boom}, NewMemoryCache(nil), time.Hour, discardLogger())

	_, err := c.FetchAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

// TestRedisCache runs against a live server when SPEARFISHED_TEST_REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SPEARFISHED_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SPEARFISHED_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := DialRedis(addr)
	require.NoError(t, err)
	defer c.Close()

	key := "spearfished:test:" + time.Now().Format(time.RFC3339Nano)
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, Static(), time.Minute))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Static(), got)
}

func TestDialRedis_Unreachable(t *testing.T) {
	_, err := DialRedis("127.0.0.1:1")
	assert.Error(t, err)
}
