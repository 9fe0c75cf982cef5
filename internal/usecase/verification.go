package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// VerificationService handles resend-confirmation requests and completes
// email verification.
type VerificationService struct {
	cfg       config.VerificationSettings
	users     port.UserRepository
	tokens    port.VerificationTokenStore
	publisher port.NotificationPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(
	cfg config.VerificationSettings,
	users port.UserRepository,
	tokens port.VerificationTokenStore,
	publisher port.NotificationPublisher,
	log *zap.Logger,
) *VerificationService {
	return &VerificationService{
		cfg:       cfg,
		users:     users,
		tokens:    tokens,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// RequestResend re-triggers the confirmation email for the user behind the
// resend token, then blocks further requests for the cooldown period.
func (s *VerificationService) RequestResend(ctx context.Context, token, language string) error {
	userID, err := s.tokens.LookupToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("lookup resend token: %w", err)
	}

	active, err := s.tokens.CooldownActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("check resend cooldown: %w", err)
	}
	if active {
		return ErrConfirmationInProgress
	}

	if !s.languageSupported(language) {
		return ErrUnsupportedLanguage
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.EmailVerified() {
		return ErrAlreadyVerified
	}

	event := domain.ConfirmationRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		Email:       user.Email,
		Key:         token,
		Language:    language,
		RequestedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishConfirmationRequested(ctx, event); err != nil {
		return fmt.Errorf("publish confirmation request: %w", err)
	}

	if err := s.tokens.SetCooldown(ctx, userID); err != nil {
		return fmt.Errorf("set resend cooldown: %w", err)
	}

	return nil
}

// ConfirmEmail activates the pending account behind a confirmation key and
// invalidates the token mapping.
func (s *VerificationService) ConfirmEmail(ctx context.Context, key string) (*domain.User, error) {
	userID, err := s.tokens.LookupToken(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("lookup confirmation key: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.EmailVerified() {
		return nil, ErrAlreadyVerified
	}

	if err := s.users.UpdateStatus(ctx, user.ID, domain.UserStatusActive); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}

	if err := s.tokens.Invalidate(ctx, userID, key); err != nil {
		s.logger.Warn("invalidate confirmation token failed",
			zap.String("user_id", userID), zap.Error(err))
	}

	user.Status = domain.UserStatusActive
	sanitized := *user
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

func (s *VerificationService) languageSupported(language string) bool {
	for _, lang := range s.cfg.Languages {
		if lang == language {
			return true
		}
	}
	return false
}
