package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)
	defer c.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "torrentio:tt0113277")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value := []byte(`{"streams":[]}`)
	require.NoError(t, c.Set(ctx, "torrentio:tt0113277", value, time.Minute))
	value[0] = 'x'

	got, err := c.Get(ctx, "torrentio:tt0113277")
	require.NoError(t, err)
	assert.Equal(t, `{"streams":[]}`, string(got), "stored values are copied")

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "torrentio:tt0113277")
	assert.ErrorIs(t, err, ErrCacheMiss)

	c.evictExpired()
	assert.Zero(t, c.Len())
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close(), "Close is idempotent")
}
