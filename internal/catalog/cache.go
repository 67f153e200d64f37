package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

const cacheKeyPrefix = "product:"

// RedisCache caches normalized products in Redis with a TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisCache(client *goredis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		// A mangled cache entry reads as a miss; the next Set repairs it.
		return nil, ErrCacheMiss
	}
	return &product, nil
}

func (c *RedisCache) Set(ctx context.Context, product domain.Product) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+product.ID.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
