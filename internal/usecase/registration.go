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

// RegisterInput carries one registration attempt.
type RegisterInput struct {
	Email           string
	Password        string
	CaptchaResponse string
	Language        string
	IP              string
	UserAgent       string
}

// RegistrationService creates accounts. Usernames are system assigned; the
// new account stays pending until email verification completes.
type RegistrationService struct {
	cfg          *config.AppConfig
	users        port.UserRepository
	guard        *DuplicateEmailGuard
	attempts     port.AttemptStore
	captcha      port.CaptchaVerifier
	uaParser     port.UserAgentParser
	verification port.VerificationTokenStore
	publisher    port.NotificationPublisher
	validator    *security.PasswordValidator
	logger       *zap.Logger
	now          func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(
	cfg *config.AppConfig,
	users port.UserRepository,
	guard *DuplicateEmailGuard,
	attempts port.AttemptStore,
	captcha port.CaptchaVerifier,
	uaParser port.UserAgentParser,
	verification port.VerificationTokenStore,
	publisher port.NotificationPublisher,
	log *zap.Logger,
) *RegistrationService {
	validator := security.NewPasswordValidator(
		security.MinLengthRule(8),
		security.RequireLetterRule(),
		security.RequireDigitRule(),
		security.RequirePasswordStrengthRule(cfg.Registration.MinPasswordScore),
	)

	return &RegistrationService{
		cfg:          cfg,
		users:        users,
		guard:        guard,
		attempts:     attempts,
		captcha:      captcha,
		uaParser:     uaParser,
		verification: verification,
		publisher:    publisher,
		validator:    validator,
		logger:       log,
		now:          time.Now,
	}
}

// ValidateEmail refuses addresses that already have an account. The refusal
// is non-disclosing: the caller learns only that registration failed, while
// the existing owner is alerted about the duplicate attempt.
func (s *RegistrationService) ValidateEmail(ctx context.Context, email, ip, userAgent string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrRegistrationFailed
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	client := s.uaParser.Parse(userAgent)
	event := domain.DuplicateRegistrationEvent{
		EventID:    uuid.NewString(),
		Email:      existing.Email,
		IP:         ip,
		Browser:    client.Browser,
		OS:         client.OS,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishDuplicateRegistration(ctx, event); err != nil {
		s.logger.Warn("publish duplicate-registration notification failed",
			zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}

	return ErrRegistrationFailed
}

// ValidateUsername rejects candidates too similar to recently registered
// usernames.
func (s *RegistrationService) ValidateUsername(ctx context.Context, candidate string) error {
	suspicious, err := s.guard.IsSuspicious(ctx, candidate)
	if err != nil {
		return err
	}
	if suspicious {
		return ErrSimilarUsernameRecentlyUsed
	}
	return nil
}

// Register creates a pending account with a system-assigned username inside a
// single transaction, then refreshes the duplicate guard window and sends the
// initial confirmation email.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if s.cfg.Registration.Disabled {
		return nil, ErrRegistrationDisabled
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	proc := NewCaptchaProcessor(s.cfg.Captcha, s.attempts, s.captcha, s.logger, email, input.IP).
		WithExtraChecksSkipped()
	if err := proc.Verify(ctx, input.CaptchaResponse); err != nil {
		return nil, err
	}

	if err := s.ValidateEmail(ctx, email, input.IP, input.UserAgent); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Password); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			return nil, fmt.Errorf("%w: %s", ErrWeakPassword, policyErr.Message)
		}
		return nil, err
	}

	username, err := GenerateUsername(ctx, s.users, s.cfg.Registration.UsernameMaxLength, nil)
	if err != nil {
		return nil, fmt.Errorf("generate username: %w", err)
	}

	if err := s.ValidateUsername(ctx, username); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	language := input.Language
	if language == "" && len(s.cfg.Verification.Languages) > 0 {
		language = s.cfg.Verification.Languages[0]
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordAlgo: "argon2id",
		Status:       domain.UserStatusPending,
		IsActive:     true,
		RegisteredAt: now,
	}
	profile := domain.Profile{
		UserID:    user.ID,
		Language:  language,
		CreatedAt: now,
	}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		s.logger.Error("registration transaction failed",
			zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		return nil, ErrRegistrationUnavailable
	}

	if err := s.guard.RefreshWindow(ctx); err != nil {
		s.logger.Warn("refresh username window failed", zap.Error(err))
	}

	s.sendInitialConfirmation(ctx, user, language)

	sanitized := user
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

// sendInitialConfirmation issues a verification token and enqueues the
// confirmation email. Best effort: the resend flow covers delivery failures.
func (s *RegistrationService) sendInitialConfirmation(ctx context.Context, user domain.User, language string) {
	token, err := s.verification.IssueOrReuse(ctx, user.ID)
	if err != nil {
		s.logger.Warn("issue confirmation token failed",
			zap.String("user_id", user.ID), zap.Error(err))
		return
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
		s.logger.Warn("publish confirmation notification failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}
}
