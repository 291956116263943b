package duplicate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
)

const redisKeyPrefix = "labmanager:duplicates:"

// RedisCache shares cluster results between server instances.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func redisKey(kind domain.Kind) string {
	return redisKeyPrefix + string(kind)
}

func (c *RedisCache) Get(ctx context.Context, kind domain.Kind) ([]Cluster, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get clusters: %w", err)
	}
	var clusters []Cluster
	if err := json.Unmarshal(raw, &clusters); err != nil {
		// a corrupt entry is a miss; the next Set overwrites it
		return nil, false, nil
	}
	return clusters, true, nil
}

func (c *RedisCache) Set(ctx context.Context, kind domain.Kind, clusters []Cluster, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(clusters)
	if err != nil {
		return fmt.Errorf("marshal clusters: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(kind), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set clusters: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, kinds ...domain.Kind) error {
	if len(kinds) == 0 {
		return nil
	}
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = redisKey(k)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate clusters: %w", err)
	}
	return nil
}
