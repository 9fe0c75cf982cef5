package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

func captchaSettings() config.CaptchaSettings {
	return config.CaptchaSettings{
		Enabled:       true,
		AllowedIPMask: `172\.\d{1,3}\.\d{1,3}\.\d{1,3}`,
		TimeoutWindow: time.Hour,
		PassTTL:       180 * time.Second,
		MaxAttempts:   6,
	}
}

func newTestProcessor(store *memAttemptStore, verifier *stubCaptchaVerifier, address string) *CaptchaProcessor {
	return NewCaptchaProcessor(captchaSettings(), store, verifier, zap.NewNop(), "user@example.com", address)
}

func TestCaptchaProcessor_AllowlistedAddressesSkipChallenge(t *testing.T) {
	store := newMemAttemptStore()

	for _, address := range []string{"127.0.0.1", "::1", "localhost", "172.16.4.20", "172.255.0.1"} {
		proc := newTestProcessor(store, &stubCaptchaVerifier{}, address)
		if proc.IsChallengeRequired(context.Background()) {
			t.Errorf("expected no challenge for allow-listed address %s", address)
		}
	}

	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")
	if !proc.IsChallengeRequired(context.Background()) {
		t.Error("expected challenge for public address without pass flag")
	}
}

func TestCaptchaProcessor_MaskDoesNotMatchSubstrings(t *testing.T) {
	store := newMemAttemptStore()

	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "1172.16.0.14")
	if !proc.IsChallengeRequired(context.Background()) {
		t.Error("mask must anchor to the whole address")
	}
}

func TestCaptchaProcessor_MarkPassedSuppressesChallenge(t *testing.T) {
	store := newMemAttemptStore()
	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")

	if err := proc.MarkPassed(context.Background()); err != nil {
		t.Fatalf("MarkPassed: %v", err)
	}

	if proc.IsChallengeRequired(context.Background()) {
		t.Error("expected no challenge while pass flag present")
	}

	key := proc.key()
	if store.values[key] != 6 {
		t.Errorf("expected fresh budget 6, got %d", store.values[key])
	}
	if store.ttls[key] != 180*time.Second {
		t.Errorf("expected 180s ttl, got %s", store.ttls[key])
	}
}

func TestCaptchaProcessor_MarkPassedIdempotent(t *testing.T) {
	store := newMemAttemptStore()
	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")

	if err := proc.MarkPassed(context.Background()); err != nil {
		t.Fatalf("MarkPassed: %v", err)
	}

	// Simulate elapsed time by shrinking the stored TTL; a second call must
	// not refresh it.
	key := proc.key()
	store.ttls[key] = 90 * time.Second
	setCalls := store.setCalls

	if err := proc.MarkPassed(context.Background()); err != nil {
		t.Fatalf("second MarkPassed: %v", err)
	}

	if store.setCalls != setCalls {
		t.Error("second MarkPassed must be a no-op")
	}
	if store.ttls[key] != 90*time.Second {
		t.Errorf("ttl was reset to %s", store.ttls[key])
	}
}

func TestCaptchaProcessor_DecreaseAttemptsExhaustsOnSixthCall(t *testing.T) {
	store := newMemAttemptStore()
	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")
	exhausted := errors.New("budget exhausted")

	for i := 1; i <= 5; i++ {
		if err := proc.DecreaseAttempts(context.Background(), exhausted); err != nil {
			t.Fatalf("call %d: unexpected error %v", i, err)
		}
		if _, ok := store.values[proc.key()]; !ok {
			t.Fatalf("call %d: pass flag deleted early", i)
		}
	}

	err := proc.DecreaseAttempts(context.Background(), exhausted)
	if !errors.Is(err, exhausted) {
		t.Fatalf("expected exhaustion on 6th call, got %v", err)
	}
	if _, ok := store.values[proc.key()]; ok {
		t.Error("pass flag must be deleted at exhaustion")
	}
}

func TestCaptchaProcessor_DecreaseAttemptsPreservesTTL(t *testing.T) {
	store := newMemAttemptStore()
	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")

	key := proc.key()
	store.values[key] = 4
	store.ttls[key] = 42 * time.Second

	if err := proc.DecreaseAttempts(context.Background(), errors.New("exhausted")); err != nil {
		t.Fatalf("DecreaseAttempts: %v", err)
	}

	if store.values[key] != 3 {
		t.Errorf("expected 3 remaining, got %d", store.values[key])
	}
	if store.ttls[key] != 42*time.Second {
		t.Errorf("ttl not preserved: %s", store.ttls[key])
	}
}

func TestCaptchaProcessor_VerifyEmptyResponse(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{}
	proc := newTestProcessor(store, verifier, "203.0.113.7")

	err := proc.Verify(context.Background(), "")
	if !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected ErrCaptchaRequired, got %v", err)
	}
	if verifier.calls != 0 {
		t.Error("verifier must not be called for empty response")
	}
}

func TestCaptchaProcessor_VerifyRejectionClearsPassFlag(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{ok: false}
	proc := newTestProcessor(store, verifier, "203.0.113.7")

	err := proc.Verify(context.Background(), "bad-response")
	if !errors.Is(err, ErrBadCaptcha) {
		t.Fatalf("expected ErrBadCaptcha, got %v", err)
	}
	if _, ok := store.values[proc.key()]; ok {
		t.Error("pass flag must be cleared after rejection")
	}
}

func TestCaptchaProcessor_VerifyNetworkErrorFailsClosed(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{err: errors.New("connection refused")}
	proc := newTestProcessor(store, verifier, "203.0.113.7")

	err := proc.Verify(context.Background(), "any-response")
	if err == nil {
		t.Fatal("expected error when verifier is unreachable")
	}
	if errors.Is(err, ErrBadCaptcha) || errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("infrastructure failure must not map to a validation kind: %v", err)
	}
}

func TestCaptchaProcessor_VerifySuccessMarksPassed(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{ok: true}
	proc := newTestProcessor(store, verifier, "203.0.113.7")

	if err := proc.Verify(context.Background(), "good-response"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if proc.IsChallengeRequired(context.Background()) {
		t.Error("challenge still required after successful verification")
	}
}

func TestCaptchaProcessor_DisabledFeatureIsNoOp(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{}

	cfg := captchaSettings()
	cfg.Enabled = false
	proc := NewCaptchaProcessor(cfg, store, verifier, zap.NewNop(), "user@example.com", "203.0.113.7")

	if proc.IsChallengeRequired(context.Background()) {
		t.Error("disabled captcha must never require a challenge")
	}
	if err := proc.Verify(context.Background(), ""); err != nil {
		t.Fatalf("Verify with disabled captcha: %v", err)
	}
	if verifier.calls != 0 {
		t.Error("verifier must not be called while disabled")
	}
}

func TestCaptchaProcessor_CacheFailureRequiresChallenge(t *testing.T) {
	store := newMemAttemptStore()
	store.getErr = errors.New("redis down")
	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")

	if !proc.IsChallengeRequired(context.Background()) {
		t.Error("unreadable pass flag must fall back to requiring a challenge")
	}
}

func TestCaptchaProcessor_DecreaseAttemptsAbsentCounterUsesWindowTTL(t *testing.T) {
	store := newMemAttemptStore()
	proc := newTestProcessor(store, &stubCaptchaVerifier{}, "203.0.113.7")

	if err := proc.DecreaseAttempts(context.Background(), errors.New("exhausted")); err != nil {
		t.Fatalf("DecreaseAttempts: %v", err)
	}

	key := proc.key()
	if store.values[key] != 5 {
		t.Errorf("expected 5 remaining, got %d", store.values[key])
	}
	if store.ttls[key] != time.Hour {
		t.Errorf("expected attempt-record window ttl 1h, got %s", store.ttls[key])
	}
}

func TestCaptchaProcessor_SkippedExtraChecksIgnoreAllowlist(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{}
	proc := newTestProcessor(store, verifier, "127.0.0.1").WithExtraChecksSkipped()

	err := proc.Verify(context.Background(), "")
	if !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected ErrCaptchaRequired for loopback with extra checks skipped, got %v", err)
	}
	if verifier.calls != 0 {
		t.Error("verifier must not be called without a response")
	}
}

func TestCaptchaProcessor_SkippedExtraChecksIgnorePassFlag(t *testing.T) {
	store := newMemAttemptStore()
	verifier := &stubCaptchaVerifier{ok: true}
	proc := newTestProcessor(store, verifier, "203.0.113.7").WithExtraChecksSkipped()

	if err := proc.MarkPassed(context.Background()); err != nil {
		t.Fatalf("MarkPassed: %v", err)
	}

	if err := proc.Verify(context.Background(), "fresh-response"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verifier.calls != 1 {
		t.Errorf("expected verifier call despite live pass flag, got %d", verifier.calls)
	}
	if verifier.last != "fresh-response" {
		t.Errorf("unexpected response forwarded: %q", verifier.last)
	}
}
