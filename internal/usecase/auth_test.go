package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

const loginPassword = "Sup3r!SecurePass#7890"

func testAppConfig() *config.AppConfig {
	return &config.AppConfig{
		App: config.AppSettings{Name: "accounts-test", Env: "test"},
		Captcha: config.CaptchaSettings{
			Enabled:       false,
			AllowedIPMask: `172\.\d{1,3}\.\d{1,3}\.\d{1,3}`,
			PassTTL:       180 * time.Second,
			MaxAttempts:   6,
		},
		Registration: config.RegistrationSettings{
			RecentUsernames:   5,
			MinSimilarity:     85,
			UsernameMaxLength: 20,
			MinPasswordScore:  2,
		},
		Verification: config.VerificationSettings{
			TokenTTL:       30 * time.Minute,
			ResendCooldown: 5 * time.Minute,
			ResetTokenTTL:  30 * time.Minute,
			ActionsFreeze:  30 * time.Minute,
			Languages:      []string{"en", "es"},
		},
	}
}

type authFixture struct {
	service   *AuthService
	users     *mockUserRepository
	history   *mockLoginHistoryRepository
	tokens    *mockVerificationStore
	attempts  *memAttemptStore
	publisher *mockPublisher
	second    *stubSecondFactor
}

func newAuthFixture(cfg *config.AppConfig) *authFixture {
	f := &authFixture{
		users:     newMockUserRepository(),
		history:   &mockLoginHistoryRepository{},
		tokens:    newMockVerificationStore(),
		attempts:  newMemAttemptStore(),
		publisher: &mockPublisher{},
		second:    &stubSecondFactor{},
	}
	f.service = NewAuthService(
		cfg,
		f.users,
		f.history,
		f.tokens,
		f.attempts,
		&stubCaptchaVerifier{ok: true},
		f.second,
		&stubUAParser{info: domain.ClientInfo{OS: "Linux", Browser: "Firefox", Desktop: true}},
		f.publisher,
		zap.NewNop(),
	)
	return f
}

func activeUser(t *testing.T, email string) domain.User {
	t.Helper()
	hash, err := security.HashPassword(loginPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return domain.User{
		ID:           "user-1",
		Username:     "SwiftFalcon42",
		Email:        email,
		PasswordHash: hash,
		PasswordAlgo: "argon2id",
		Status:       domain.UserStatusActive,
		IsActive:     true,
		RegisteredAt: time.Now().UTC().Add(-24 * time.Hour),
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture(testAppConfig())

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever1",
		IP:       "203.0.113.7",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.publisher.failedLoginCalls != 0 {
		t.Error("no failed-login notification without a matched identity")
	}
	if f.history.appendCalls != 0 {
		t.Error("no history write on failure")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	f.users.addUser(activeUser(t, "user@example.com"))

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "not-the-password1",
		IP:       "203.0.113.7",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.publisher.failedLoginCalls != 1 {
		t.Errorf("expected exactly one failed-login notification, got %d", f.publisher.failedLoginCalls)
	}
	if f.publisher.failedLoginEvent.UserID != "user-1" {
		t.Errorf("failed-login event targets %q", f.publisher.failedLoginEvent.UserID)
	}
}

func TestAuthService_Login_WrongPasswordClearsPassFlag(t *testing.T) {
	cfg := testAppConfig()
	cfg.Captcha.Enabled = true
	f := newAuthFixture(cfg)
	f.users.addUser(activeUser(t, "user@example.com"))

	f.attempts.values["user@example.com:203.0.113.7"] = 6
	f.attempts.ttls["user@example.com:203.0.113.7"] = 120 * time.Second

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "not-the-password1",
		IP:       "203.0.113.7",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok := f.attempts.values["user@example.com:203.0.113.7"]; ok {
		t.Error("pass flag must be cleared on credential failure")
	}
}

func TestAuthService_Login_NoPasswordSet(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	user := activeUser(t, "user@example.com")
	user.PasswordHash = ""
	f.users.addUser(user)

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "anything1",
		IP:       "203.0.113.7",
	})
	if !errors.Is(err, ErrPasswordResetRequired) {
		t.Fatalf("expected ErrPasswordResetRequired, got %v", err)
	}
}

func TestAuthService_Login_DisabledAccountKeepsPassFlag(t *testing.T) {
	cfg := testAppConfig()
	cfg.Captcha.Enabled = true
	f := newAuthFixture(cfg)

	user := activeUser(t, "user@example.com")
	user.IsActive = false
	user.Status = domain.UserStatusDisabled
	f.users.addUser(user)

	f.attempts.values["user@example.com:203.0.113.7"] = 6
	f.attempts.ttls["user@example.com:203.0.113.7"] = 120 * time.Second

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: loginPassword,
		IP:       "203.0.113.7",
	})

	var notActive *AccountNotActiveError
	if !errors.As(err, &notActive) {
		t.Fatalf("expected AccountNotActiveError, got %v", err)
	}
	if notActive.Reason != ReasonAccountDisabled {
		t.Errorf("reason = %q", notActive.Reason)
	}
	if !errors.Is(err, ErrAccountNotActive) {
		t.Error("AccountNotActiveError must unwrap to ErrAccountNotActive")
	}
	if _, ok := f.attempts.values["user@example.com:203.0.113.7"]; !ok {
		t.Error("pass flag must survive the disabled-account failure")
	}
	if f.publisher.failedLoginCalls != 0 {
		t.Error("no failed-login notification for blocked accounts")
	}
}

func TestAuthService_Login_UnverifiedEmailReturnsStableToken(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	user := activeUser(t, "user@example.com")
	user.Status = domain.UserStatusPending
	f.users.addUser(user)

	input := LoginInput{
		Email:    "user@example.com",
		Password: loginPassword,
		IP:       "203.0.113.7",
	}

	_, err := f.service.Login(context.Background(), input)
	var first *AccountNotActiveError
	if !errors.As(err, &first) {
		t.Fatalf("expected AccountNotActiveError, got %v", err)
	}
	if first.Reason != ReasonEmailNotVerified {
		t.Errorf("reason = %q", first.Reason)
	}
	if first.Token == "" {
		t.Fatal("expected a resend token")
	}

	_, err = f.service.Login(context.Background(), input)
	var second *AccountNotActiveError
	if !errors.As(err, &second) {
		t.Fatalf("expected AccountNotActiveError, got %v", err)
	}
	if second.Token != first.Token {
		t.Errorf("token changed between calls: %q vs %q", first.Token, second.Token)
	}
}

func TestAuthService_Login_SecondFactorExhaustion(t *testing.T) {
	cfg := testAppConfig()
	cfg.Captcha.Enabled = true
	f := newAuthFixture(cfg)
	f.users.addUser(activeUser(t, "user@example.com"))
	f.second.err = errors.New("wrong code")

	key := "user@example.com:203.0.113.7"
	f.attempts.values[key] = 1
	f.attempts.ttls[key] = 60 * time.Second

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:            "user@example.com",
		Password:         loginPassword,
		SecondFactorCode: "000000",
		IP:               "203.0.113.7",
	})
	if !errors.Is(err, ErrTooManyTwoFactorFailures) {
		t.Fatalf("expected ErrTooManyTwoFactorFailures, got %v", err)
	}
	if _, ok := f.attempts.values[key]; ok {
		t.Error("pass flag must be deleted at exhaustion")
	}
	if f.publisher.failedLoginCalls != 1 {
		t.Errorf("expected one failed-login notification, got %d", f.publisher.failedLoginCalls)
	}
}

func TestAuthService_Login_FirstIPNoNotification(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	f.users.addUser(activeUser(t, "user@example.com"))

	user, err := f.service.Login(context.Background(), LoginInput{
		Email:     "user@example.com",
		Password:  loginPassword,
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("returned identity must not carry the password hash")
	}
	if f.publisher.ipChangedCalls != 0 {
		t.Error("first-ever IP must not trigger an IP-change notification")
	}
	if f.history.appendCalls != 1 {
		t.Errorf("expected one history entry, got %d", f.history.appendCalls)
	}
	if f.history.appended[0].IP != "203.0.113.7" {
		t.Errorf("history IP = %q", f.history.appended[0].IP)
	}
}

func TestAuthService_Login_NewIPNotifiesOnce(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	f.users.addUser(activeUser(t, "user@example.com"))
	f.history.knownIPs = []string{"198.51.100.4"}

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:     "user@example.com",
		Password:  loginPassword,
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if f.publisher.ipChangedCalls != 1 {
		t.Errorf("expected exactly one IP-change notification, got %d", f.publisher.ipChangedCalls)
	}
	if f.publisher.ipChangedEvent.IP != "203.0.113.7" {
		t.Errorf("event IP = %q", f.publisher.ipChangedEvent.IP)
	}
	if f.publisher.ipChangedEvent.Browser != "Firefox" {
		t.Errorf("event browser = %q", f.publisher.ipChangedEvent.Browser)
	}
	if f.history.appendCalls != 1 {
		t.Errorf("expected one history entry, got %d", f.history.appendCalls)
	}
}

func TestAuthService_Login_KnownIPNoNotification(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	f.users.addUser(activeUser(t, "user@example.com"))
	f.history.knownIPs = []string{"203.0.113.7", "198.51.100.4"}

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: loginPassword,
		IP:       "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if f.publisher.ipChangedCalls != 0 {
		t.Error("known IP must not trigger a notification")
	}
	if f.history.appendCalls != 1 {
		t.Errorf("expected one history entry, got %d", f.history.appendCalls)
	}
}

func TestAuthService_Login_PublishFailureDoesNotFailLogin(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	f.users.addUser(activeUser(t, "user@example.com"))
	f.history.knownIPs = []string{"198.51.100.4"}
	f.publisher.err = errors.New("broker unavailable")

	if _, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: loginPassword,
		IP:       "203.0.113.7",
	}); err != nil {
		t.Fatalf("publish failure must not fail login: %v", err)
	}
}

func TestAuthService_Login_SuccessClearsPassFlag(t *testing.T) {
	cfg := testAppConfig()
	cfg.Captcha.Enabled = true
	f := newAuthFixture(cfg)
	f.users.addUser(activeUser(t, "user@example.com"))

	key := "user@example.com:203.0.113.7"
	f.attempts.values[key] = 6
	f.attempts.ttls[key] = 120 * time.Second

	if _, err := f.service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: loginPassword,
		IP:       "203.0.113.7",
	}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, ok := f.attempts.values[key]; ok {
		t.Error("pass flag must be cleared after a successful login")
	}
}

func TestAuthService_Login_EmailIsLowercased(t *testing.T) {
	f := newAuthFixture(testAppConfig())
	f.users.addUser(activeUser(t, "user@example.com"))

	if _, err := f.service.Login(context.Background(), LoginInput{
		Email:    "  UsEr@Example.COM ",
		Password: loginPassword,
		IP:       "203.0.113.7",
	}); err != nil {
		t.Fatalf("Login with mixed-case email: %v", err)
	}
}
