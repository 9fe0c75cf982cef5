package redis

import (
	"context"
	"fmt"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// CacheRepository implements port.Cache on top of a shared Redis client.
type CacheRepository struct {
	client *red.Client
	prefix string
}

// NewCacheRepository constructs a cache repository with an optional key prefix.
func NewCacheRepository(client *red.Client, keyPrefix string) *CacheRepository {
	return &CacheRepository{client: client, prefix: keyPrefix}
}

// Get returns the value for key or repository.ErrNotFound when absent.
func (r *CacheRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err == red.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Set stores value under key. A zero ttl persists until the next overwrite.
func (r *CacheRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// TTL returns the remaining lifetime of key, or repository.ErrNotFound when
// the key does not exist.
func (r *CacheRepository) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	if ttl == -2 {
		return 0, repository.ErrNotFound
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *CacheRepository) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

var _ port.Cache = (*CacheRepository)(nil)
