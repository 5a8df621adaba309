package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores short lived string values.
type Cache interface {
	// Get returns "" without error on a miss.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Key(parts ...string) string
}

type redisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisCache wraps a redis client. Keys are prefixed with namespace.
func NewRedisCache(client *redis.Client, namespace string) Cache {
	return &redisCache{client: client, namespace: namespace}
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Key(parts ...string) string {
	return buildKey(r.namespace, parts)
}

func buildKey(namespace string, parts []string) string {
	return fmt.Sprintf("%s:%s", namespace, strings.Join(parts, ":"))
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, error) { return "", nil }

func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }

func (Nop) Delete(context.Context, ...string) error { return nil }

func (Nop) Key(parts ...string) string { return buildKey("nop", parts) }
