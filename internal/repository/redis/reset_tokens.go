package redis

import (
	"context"
	"fmt"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const resetTokenPrefix = "password_reset_token"

// ResetTokenRepository keeps single-use password reset tokens in Redis.
// Tokens are stored hashed so a cache dump does not leak usable values.
type ResetTokenRepository struct {
	client *red.Client
	ttl    time.Duration
}

// NewResetTokenRepository constructs the repository with the provided TTL
// (30 minutes when unset).
func NewResetTokenRepository(client *red.Client, ttl time.Duration) *ResetTokenRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResetTokenRepository{client: client, ttl: ttl}
}

// Issue creates a fresh reset token for the user and returns the raw value.
func (r *ResetTokenRepository) Issue(ctx context.Context, userID string) (string, error) {
	raw, err := security.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	key := fmt.Sprintf("%s:%s", resetTokenPrefix, security.HashToken(raw))
	if err := r.client.Set(ctx, key, userID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis store reset token: %w", err)
	}

	return raw, nil
}

// Lookup resolves a raw token to the owning user id.
func (r *ResetTokenRepository) Lookup(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf("%s:%s", resetTokenPrefix, security.HashToken(token))
	userID, err := r.client.Get(ctx, key).Result()
	if err == red.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis lookup reset token: %w", err)
	}
	return userID, nil
}

// Consume removes the token, enforcing single use.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) error {
	key := fmt.Sprintf("%s:%s", resetTokenPrefix, security.HashToken(token))
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis consume reset token: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ port.ResetTokenStore = (*ResetTokenRepository)(nil)
