package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-accounts/internal/core/port"
)

const defaultAttemptPrefix = "captcha:passed"

// AttemptRepository persists captcha pass/attempt records in Redis. The key
// encodes subject+address; presence doubles as the captcha-pass flag and the
// integer value carries the remaining downstream-attempt budget.
type AttemptRepository struct {
	client *red.Client
	prefix string
}

// NewAttemptRepository constructs the repository with the provided key prefix.
func NewAttemptRepository(client *red.Client, keyPrefix string) *AttemptRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultAttemptPrefix
	}
	return &AttemptRepository{client: client, prefix: prefix}
}

// Get returns the remaining-attempt counter and whether the record exists.
func (r *AttemptRepository) Get(ctx context.Context, key string) (int, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Result()
	if err == red.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get attempts: %w", err)
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse attempts counter: %w", err)
	}
	return value, true, nil
}

// Set stores the counter with the supplied TTL.
func (r *AttemptRepository) Set(ctx context.Context, key string, attempts int, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	if err := r.client.Set(ctx, r.key(key), strconv.Itoa(attempts), ttl).Err(); err != nil {
		return fmt.Errorf("redis set attempts: %w", err)
	}
	return nil
}

// Delete removes the record, clearing both the pass flag and the budget.
func (r *AttemptRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del attempts: %w", err)
	}
	return nil
}

// TTL reports the remaining lifetime of the record.
func (r *AttemptRepository) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := r.client.TTL(ctx, r.key(key)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis ttl attempts: %w", err)
	}
	if ttl == -2 {
		return 0, false, nil
	}
	if ttl < 0 {
		ttl = 0
	}
	return ttl, true, nil
}

func (r *AttemptRepository) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

var _ port.AttemptStore = (*AttemptRepository)(nil)
