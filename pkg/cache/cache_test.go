package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "p", point{"BTC/USDT", 64000.5}, time.Minute))
	var got point
	require.NoError(t, mc.Get(ctx, "p", &got))
	assert.Equal(t, point{"BTC/USDT", 64000.5}, got)

	assert.ErrorIs(t, mc.Get(ctx, "missing", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	mc := NewMemoryCache(WithMemoryClock(clock.now))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))
	clock.t = clock.t.Add(time.Minute)
	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clock.now))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	clock.t = clock.t.Add(time.Second)
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &v))
}

func TestMemoryLock(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	token, err := mc.TryLock(ctx, "mine:btc", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := mc.TryLock(ctx, "mine:btc", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	assert.ErrorIs(t, mc.Unlock(ctx, "mine:btc", "someone-else"), ErrNotLocked)
	require.NoError(t, mc.Unlock(ctx, "mine:btc", token))

	token, err = mc.TryLock(ctx, "mine:btc", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLayeredReadsThroughToL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2)
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "p", point{"ETH/USDT", 3100}, time.Minute))
	var got point
	require.NoError(t, lc.Get(ctx, "p", &got))
	assert.Equal(t, "ETH/USDT", got.Symbol)

	require.NoError(t, lc.Set(ctx, "q", point{"SOL/USDT", 150}, time.Minute))
	require.NoError(t, l2.Get(ctx, "q", &got))
	assert.Equal(t, 150.0, got.Price)

	require.NoError(t, lc.Delete(ctx, "q"))
	assert.ErrorIs(t, lc.Get(ctx, "q", &got), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "confluence:btc/usdt", Key("confluence", "BTC/USDT"))
}
