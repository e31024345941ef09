// Package cache adapts Redis to fiber.Storage so the rate limiter and the
// CMS client share one connection.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

// RedisStorage implements fiber.Storage for Redis
type RedisStorage struct {
	client *redis.Client
	prefix string
}

var _ fiber.Storage = (*RedisStorage)(nil)

// NewRedisStorage returns nil when REDIS_ADDR is not configured.
func NewRedisStorage(prefix string) *RedisStorage {
	addr := utils.GetConfig("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: utils.GetConfig("REDIS_PASSWORD"),
			DB:       utils.GetConfigInt("REDIS_DB", 0),
		}),
		prefix: prefix,
	}
}

// WithPrefix shares the connection under another key namespace.
func (r *RedisStorage) WithPrefix(prefix string) *RedisStorage {
	return &RedisStorage{client: r.client, prefix: prefix}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), r.prefix+key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), r.prefix+key).Err()
}

// Reset drops only the keys under this storage's prefix.
func (r *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
