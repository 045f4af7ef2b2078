// internal/adapters/out/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"remarket/internal/application/query"
	"remarket/internal/application/usecase"
)

// RedisCache backs the catalog read caches. A nil receiver or nil
// client behaves as a disabled cache: every Get is a miss and every
// Set succeeds silently, so the app runs fine without Redis.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

// Compile-time checks
var (
	_ usecase.CatalogCache = (*RedisCache)(nil)
	_ query.ResponseCache  = (*RedisCache)(nil)
)

func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	if c == nil || c.Client == nil {
		return false, nil
	}
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// A corrupt entry is treated as a miss; the caller rebuilds it.
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil || c.Client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.Client == nil || len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
