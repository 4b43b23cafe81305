package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "adstts:transcript:"

// RedisCache shares transcripts between machines that point at the same
// redis instance.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("could not connect to cache at %s: %w", addr, err)
	}
	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisCache) GetTranscript(ctx context.Context, key string) (string, error) {
	text, err := c.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return text, err
}

func (c *RedisCache) PutTranscript(ctx context.Context, key, text string) error {
	return c.rdb.Set(ctx, redisKeyPrefix+key, text, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
