package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/cache"
	"github.com/idilsaglam/tada/internal/model"
)

func newCache(t *testing.T) (*cache.TodoCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewTodoCache(rdb, time.Minute), mr
}

func TestTodoCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	list := []model.RemoteTodo{{ID: 2, Text: "b", CreatedByID: "1", CreatedAt: at, UpdatedAt: at}}

	t.Run("miss", func(t *testing.T) {
		got, err := c.GetList(ctx, "1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set and get", func(t *testing.T) {
		gen, err := c.Generation(ctx, "1")
		require.NoError(t, err)
		assert.Zero(t, gen)

		ok, err := c.SetList(ctx, "1", gen, list)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Minute, mr.TTL("todo:list:1"))

		got, err := c.GetList(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, list, got)

		other, err := c.GetList(ctx, "2")
		require.NoError(t, err)
		assert.Nil(t, other, "lists are per owner")
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		ok, err := c.SetList(ctx, "3", 0, []model.RemoteTodo{})
		require.NoError(t, err)
		require.True(t, ok)
		got, err := c.GetList(ctx, "3")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("invalidate bumps generation", func(t *testing.T) {
		require.NoError(t, c.Invalidate(ctx, "1"))
		got, err := c.GetList(ctx, "1")
		require.NoError(t, err)
		assert.Nil(t, got)

		gen, err := c.Generation(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), gen)
	})

	t.Run("stale generation is not stored", func(t *testing.T) {
		ok, err := c.SetList(ctx, "1", 0, list)
		require.NoError(t, err)
		assert.False(t, ok)
		got, err := c.GetList(ctx, "1")
		require.NoError(t, err)
		assert.Nil(t, got)

		ok, err = c.SetList(ctx, "1", 1, list)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
