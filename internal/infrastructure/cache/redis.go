package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"retailops/internal/core/id"
	"retailops/internal/domain/storefront"
)

// RedisAvailabilityCache stores availability snapshots as JSON strings.
type RedisAvailabilityCache struct {
	client *redis.Client
}

var _ storefront.Cache = (*RedisAvailabilityCache)(nil)

func NewRedisAvailabilityCache(addr string, password string, db int) *RedisAvailabilityCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisAvailabilityCache{client: client}
}

func (c *RedisAvailabilityCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisAvailabilityCache) Close() error {
	return c.client.Close()
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, productID id.ID) (*storefront.Availability, bool, error) {
	val, err := c.client.Get(ctx, key(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var av storefront.Availability
	if err := json.Unmarshal(val, &av); err != nil {
		return nil, false, err
	}
	return &av, true, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, value *storefront.Availability, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(value.ProductID), payload, ttl).Err()
}

func (c *RedisAvailabilityCache) Delete(ctx context.Context, productIDs ...id.ID) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, pid := range productIDs {
		keys[i] = key(pid)
	}
	return c.client.Del(ctx, keys...).Err()
}
