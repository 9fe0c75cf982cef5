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

const (
	verificationTokenPrefix    = "resend_verification_token"
	verificationReversedPrefix = "resend_verification_token_reversed"
	verificationCooldownPrefix = "resend_verification_cooldown"
)

// VerificationConfig tunes the verification token store lifetimes.
type VerificationConfig struct {
	TokenTTL    time.Duration
	CooldownTTL time.Duration
	TokenLength int
}

// VerificationTokenRepository keeps the bidirectional resend-confirmation
// token mapping in Redis: token -> user id and user id -> token, both bound
// to the same TTL, plus an independent per-user cooldown flag.
type VerificationTokenRepository struct {
	client *red.Client
	cfg    VerificationConfig
}

// NewVerificationTokenRepository constructs the repository, applying defaults
// for unset config fields (30 minute tokens, 5 minute cooldown).
func NewVerificationTokenRepository(client *red.Client, cfg VerificationConfig) *VerificationTokenRepository {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.CooldownTTL <= 0 {
		cfg.CooldownTTL = 5 * time.Minute
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = 32
	}
	return &VerificationTokenRepository{client: client, cfg: cfg}
}

// IssueOrReuse returns the live token for the user. While an unexpired token
// exists it is returned unchanged so repeated login attempts within the TTL
// see the same token.
func (r *VerificationTokenRepository) IssueOrReuse(ctx context.Context, userID string) (string, error) {
	reverseKey := fmt.Sprintf("%s:%s", verificationReversedPrefix, userID)

	current, err := r.client.Get(ctx, reverseKey).Result()
	if err == nil && current != "" {
		return current, nil
	}
	if err != nil && err != red.Nil {
		return "", fmt.Errorf("redis get verification token: %w", err)
	}

	token, err := security.GenerateRandomString(r.cfg.TokenLength)
	if err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, reverseKey, token, r.cfg.TokenTTL)
	pipe.Set(ctx, fmt.Sprintf("%s:%s", verificationTokenPrefix, token), userID, r.cfg.TokenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("redis store verification token: %w", err)
	}

	return token, nil
}

// LookupToken resolves a token back to its user id.
func (r *VerificationTokenRepository) LookupToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, fmt.Sprintf("%s:%s", verificationTokenPrefix, token)).Result()
	if err == red.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis lookup verification token: %w", err)
	}
	return userID, nil
}

// Invalidate drops both directions of the mapping.
func (r *VerificationTokenRepository) Invalidate(ctx context.Context, userID, token string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf("%s:%s", verificationReversedPrefix, userID))
	if token != "" {
		pipe.Del(ctx, fmt.Sprintf("%s:%s", verificationTokenPrefix, token))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate verification token: %w", err)
	}
	return nil
}

// CooldownActive reports whether a confirmation email was sent recently.
func (r *VerificationTokenRepository) CooldownActive(ctx context.Context, userID string) (bool, error) {
	count, err := r.client.Exists(ctx, fmt.Sprintf("%s:%s", verificationCooldownPrefix, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check verification cooldown: %w", err)
	}
	return count > 0, nil
}

// SetCooldown blocks further confirmation emails for the configured window.
func (r *VerificationTokenRepository) SetCooldown(ctx context.Context, userID string) error {
	key := fmt.Sprintf("%s:%s", verificationCooldownPrefix, userID)
	if err := r.client.Set(ctx, key, "1", r.cfg.CooldownTTL).Err(); err != nil {
		return fmt.Errorf("redis set verification cooldown: %w", err)
	}
	return nil
}

var _ port.VerificationTokenStore = (*VerificationTokenRepository)(nil)
