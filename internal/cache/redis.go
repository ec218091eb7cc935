package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// responseKeyPrefix namespaces response entries in a shared Redis.
	responseKeyPrefix = "homeflux:response:"

	// defaultTTL bounds how stale a cached analytics response may get.
	defaultTTL = 5 * time.Minute
)

// RedisCache is a Redis-backed ResponseCache shared across replicas.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ctx: ctx, ttl: defaultTTL}, nil
}

func (r *RedisCache) Get(key string) ([]byte, error) {
	data, err := r.client.Get(r.ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisCache) Set(key string, value []byte) error {
	return r.client.Set(r.ctx, responseKeyPrefix+key, value, r.ttl).Err()
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ ResponseCache = (*RedisCache)(nil)
