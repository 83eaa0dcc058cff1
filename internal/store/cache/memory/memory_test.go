package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Code string `json:"code"`
	}

	require.NoError(t, c.Set(ctx, "k", payload{Code: "mindmap"}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "mindmap", got.Code)
}

func TestGetMissingKey(t *testing.T) {
	c := NewMemoryCache()

	var got string
	err := c.Get(context.Background(), "nope", &got)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", -time.Second))

	var got string
	err := c.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestSetOverwrites(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "old", time.Minute))
	require.NoError(t, c.Set(ctx, "k", "new", time.Minute))

	var got string
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "new", got)
}

func TestDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got string
	err := c.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
