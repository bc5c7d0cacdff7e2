package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/career-onboard/internal/application/service"
)

const keyPrefix = "view"

var _ service.ViewCache = (*RedisViewCache)(nil)

// RedisViewCache stores rendered views per path and identity.
type RedisViewCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisViewCache(rdb redis.Cmdable, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{rdb: rdb, ttl: ttl}
}

// Key is "view:<path>:<externalID>".
func Key(path, externalID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, path, externalID)
}

func (c *RedisViewCache) Get(ctx context.Context, path, externalID string) (json.RawMessage, bool, error) {
	val, err := c.rdb.Get(ctx, Key(path, externalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get view: %w", err)
	}
	return json.RawMessage(val), true, nil
}

func (c *RedisViewCache) Set(ctx context.Context, path, externalID string, view json.RawMessage) error {
	if err := c.rdb.Set(ctx, Key(path, externalID), []byte(view), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set view: %w", err)
	}
	return nil
}

func (c *RedisViewCache) SetIfAbsent(ctx context.Context, path, externalID string, view json.RawMessage) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, Key(path, externalID), []byte(view), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx view: %w", err)
	}
	return ok, nil
}

func (c *RedisViewCache) Invalidate(ctx context.Context, path, externalID string) error {
	if err := c.rdb.Del(ctx, Key(path, externalID)).Err(); err != nil {
		return fmt.Errorf("redis invalidate view: %w", err)
	}
	return nil
}
