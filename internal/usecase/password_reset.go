package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// PasswordResetService handles the request/confirm password reset flow.
// Requests for unknown addresses succeed silently so the endpoint cannot be
// used for account enumeration.
type PasswordResetService struct {
	cfg       *config.AppConfig
	users     port.UserRepository
	profiles  port.ProfileRepository
	tokens    port.ResetTokenStore
	attempts  port.AttemptStore
	captcha   port.CaptchaVerifier
	publisher port.NotificationPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(
	cfg *config.AppConfig,
	users port.UserRepository,
	profiles port.ProfileRepository,
	tokens port.ResetTokenStore,
	attempts port.AttemptStore,
	captcha port.CaptchaVerifier,
	publisher port.NotificationPublisher,
	log *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		cfg:       cfg,
		users:     users,
		profiles:  profiles,
		tokens:    tokens,
		attempts:  attempts,
		captcha:   captcha,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// RequestReset issues a reset token for the account behind the email and
// enqueues the reset notification. Unknown addresses return nil.
func (s *PasswordResetService) RequestReset(ctx context.Context, email, captchaResponse, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	proc := NewCaptchaProcessor(s.cfg.Captcha, s.attempts, s.captcha, s.logger, email, ip).
		WithExtraChecksSkipped()
	if err := proc.Verify(ctx, captchaResponse); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				zap.String("email", logger.MaskEmail(email)))
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	now := s.now().UTC()
	event := domain.PasswordResetRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		Email:       user.Email,
		Token:       token,
		RequestedAt: now,
		ExpiresAt:   now.Add(s.cfg.Verification.ResetTokenTTL),
	}
	if err := s.publisher.PublishPasswordResetRequested(ctx, event); err != nil {
		s.logger.Warn("publish password-reset notification failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	return nil
}

// ConfirmReset validates the token and the new password, re-hashes, updates
// the stored credential, consumes the token and freezes sensitive profile
// actions for the configured duration.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	validator := security.NewPasswordValidator(
		security.MinLengthRule(8),
		security.RequireLetterRule(),
		security.RequireDigitRule(),
		security.RequirePasswordStrengthRule(s.cfg.Registration.MinPasswordScore, user.Email, user.Username),
	)
	if err := validator.Validate(newPassword); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			return fmt.Errorf("%w: %s", ErrWeakPassword, policyErr.Message)
		}
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, hash, "argon2id", now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.Consume(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("consume reset token failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	freezeUntil := now.Add(s.cfg.Verification.ActionsFreeze)
	if err := s.profiles.SetActionsFreeze(ctx, user.ID, freezeUntil); err != nil {
		s.logger.Warn("set actions freeze failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("password reset completed",
		zap.String("user_id", user.ID),
		zap.Time("actions_frozen_till", freezeUntil),
	)

	return nil
}
