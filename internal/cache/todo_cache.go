package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/idilsaglam/tada/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	keyList = "todo:list:"
	keyGen  = "todo:gen:"
)

// TodoCache caches each owner's todo list in Redis. Every Invalidate bumps a
// per-owner generation; a list loaded under an older generation is never
// written back.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context, owner string) ([]model.RemoteTodo, error) {
	b, err := c.rdb.Get(ctx, keyList+owner).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []model.RemoteTodo{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Generation returns the owner's current generation, 0 before the first
// Invalidate.
func (c *TodoCache) Generation(ctx context.Context, owner string) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGen+owner).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList stores the list in cache if the owner's generation is still gen.
// It reports whether the list was stored.
func (c *TodoCache) SetList(ctx context.Context, owner string, gen int64, list []model.RemoteTodo) (bool, error) {
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, keyGen+owner).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyList+owner, b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, keyGen+owner)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate drops the owner's cached list and bumps its generation.
func (c *TodoCache) Invalidate(ctx context.Context, owner string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keyList+owner)
		pipe.Incr(ctx, keyGen+owner)
		return nil
	})
	return err
}
