package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "distance:"

type redisDistance struct {
	Meters  int `json:"m"`
	Seconds int `json:"s"`
}

// RedisDistanceCache keeps distance results in Redis with a TTL, so a fleet of
// servers shares lookups. A zero TTL keeps entries until evicted.
type RedisDistanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func redisKey(origin, destination string) string {
	return redisKeyPrefix + origin + "|" + destination
}

func (c *RedisDistanceCache) Get(
	ctx context.Context,
	origin string,
	destination string,
) (_ ports.DistanceResult, _ bool, err error) {
	defer obs.Time(ctx, "distance.redis.Get")(&err)

	b, err := c.client.Get(ctx, redisKey(origin, destination)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get redis distance: %w", err)
	}

	var v redisDistance
	if err := json.Unmarshal(b, &v); err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("decode redis distance %q -> %q: %w", origin, destination, err)
	}

	return ports.DistanceResult{DistanceMeters: v.Meters, DurationSeconds: v.Seconds}, true, nil
}

func (c *RedisDistanceCache) Put(
	ctx context.Context,
	origin string,
	destination string,
	r ports.DistanceResult,
) error {
	b, err := json.Marshal(redisDistance{Meters: r.DistanceMeters, Seconds: r.DurationSeconds})
	if err != nil {
		return fmt.Errorf("encode redis distance: %w", err)
	}

	if err := c.client.Set(ctx, redisKey(origin, destination), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set redis distance: %w", err)
	}

	return nil
}
