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

// LoginInput carries everything one login attempt needs.
type LoginInput struct {
	Email            string
	Password         string
	CaptchaResponse  string
	SecondFactorCode string
	IP               string
	UserAgent        string
}

// AuthService runs the login validation pipeline. The step order is fixed;
// every failure is surfaced immediately with no retries inside the pipeline.
type AuthService struct {
	cfg          *config.AppConfig
	users        port.UserRepository
	history      port.LoginHistoryRepository
	verification port.VerificationTokenStore
	attempts     port.AttemptStore
	captcha      port.CaptchaVerifier
	secondFactor port.SecondFactorVerifier
	uaParser     port.UserAgentParser
	publisher    port.NotificationPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg *config.AppConfig,
	users port.UserRepository,
	history port.LoginHistoryRepository,
	verification port.VerificationTokenStore,
	attempts port.AttemptStore,
	captcha port.CaptchaVerifier,
	secondFactor port.SecondFactorVerifier,
	uaParser port.UserAgentParser,
	publisher port.NotificationPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		cfg:          cfg,
		users:        users,
		history:      history,
		verification: verification,
		attempts:     attempts,
		captcha:      captcha,
		secondFactor: secondFactor,
		uaParser:     uaParser,
		publisher:    publisher,
		logger:       log,
		now:          time.Now,
	}
}

// Login authenticates a user. On success the sanitized identity is returned
// and a login-history entry is appended. Notification enqueues are best
// effort and never fail the attempt.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	proc := NewCaptchaProcessor(s.cfg.Captcha, s.attempts, s.captcha, s.logger, email, input.IP)

	if err := proc.Verify(ctx, input.CaptchaResponse); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn the same hashing work as a real check so response
			// timing does not reveal whether the account exists.
			security.DummyVerify(input.Password)
			proc.Clear(ctx)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.PasswordHash == "" {
		proc.Clear(ctx)
		s.notifyFailedLogin(ctx, user.ID, input.IP)
		return nil, ErrPasswordResetRequired
	}

	if !user.IsActive || user.Status == domain.UserStatusDisabled {
		// The user is legitimate, just blocked: keep the pass flag so a
		// later attempt does not force a fresh captcha.
		return nil, &AccountNotActiveError{Reason: ReasonAccountDisabled}
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		proc.Clear(ctx)
		s.notifyFailedLogin(ctx, user.ID, input.IP)
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified() {
		token, err := s.verification.IssueOrReuse(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("issue confirmation token: %w", err)
		}
		return nil, &AccountNotActiveError{Reason: ReasonEmailNotVerified, Token: token}
	}

	if err := s.secondFactor.Verify(ctx, user.ID, input.SecondFactorCode); err != nil {
		s.notifyFailedLogin(ctx, user.ID, input.IP)
		if derr := proc.DecreaseAttempts(ctx, ErrTooManyTwoFactorFailures); derr != nil {
			return nil, derr
		}
		return nil, ErrInvalidCredentials
	}

	proc.Clear(ctx)

	client := s.uaParser.Parse(input.UserAgent)
	s.detectIPChange(ctx, user.ID, input.IP, client)

	entry := domain.LoginHistory{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		CreatedAt: s.now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append login history: %w", err)
	}

	s.logger.Info("login succeeded",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.String("ip", logger.MaskIP(input.IP)),
		zap.String("browser", client.Browser),
		zap.String("os", client.OS),
		zap.String("device_class", client.DeviceClass()),
	)

	sanitized := *user
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

// detectIPChange enqueues an IP-change notification when the login came from
// an address never seen before and the user has at least one prior login.
func (s *AuthService) detectIPChange(ctx context.Context, userID, ip string, client domain.ClientInfo) {
	known, err := s.history.ListIPs(ctx, userID)
	if err != nil {
		s.logger.Warn("list known ips failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	if len(known) == 0 {
		return
	}
	for _, prior := range known {
		if prior == ip {
			return
		}
	}

	event := domain.IPChangedEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		IP:         ip,
		Device:     client.DeviceClass(),
		OS:         client.OS,
		Browser:    client.Browser,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishIPChanged(ctx, event); err != nil {
		s.logger.Warn("publish ip-change notification failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *AuthService) notifyFailedLogin(ctx context.Context, userID, ip string) {
	event := domain.FailedLoginEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		IP:         ip,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishFailedLogin(ctx, event); err != nil {
		s.logger.Warn("publish failed-login notification failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
