package usecase

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// CaptchaProcessor drives the per (subject, address) captcha state machine.
// A single cache entry doubles as the pass flag (presence) and the remaining
// downstream-attempt budget (integer value). The pass flag lives for PassTTL;
// the budget is decremented in place preserving whatever TTL remains.
type CaptchaProcessor struct {
	cfg      config.CaptchaSettings
	store    port.AttemptStore
	verifier port.CaptchaVerifier
	logger   *zap.Logger

	subject         string
	address         string
	allowed         *regexp.Regexp
	skipExtraChecks bool
}

// NewCaptchaProcessor builds a processor scoped to one subject and client
// address. The allowed-IP mask is compiled once; an invalid mask disables the
// mask allowlist but keeps the loopback exemption.
func NewCaptchaProcessor(
	cfg config.CaptchaSettings,
	store port.AttemptStore,
	verifier port.CaptchaVerifier,
	log *zap.Logger,
	subject, address string,
) *CaptchaProcessor {
	var allowed *regexp.Regexp
	if cfg.AllowedIPMask != "" {
		compiled, err := regexp.Compile("^(?:" + cfg.AllowedIPMask + ")$")
		if err != nil {
			log.Warn("invalid captcha allowed_ip_mask, ignoring",
				zap.String("mask", cfg.AllowedIPMask), zap.Error(err))
		} else {
			allowed = compiled
		}
	}

	return &CaptchaProcessor{
		cfg:      cfg,
		store:    store,
		verifier: verifier,
		logger:   log,
		subject:  strings.ToLower(subject),
		address:  address,
		allowed:  allowed,
	}
}

// WithExtraChecksSkipped disables the allowlist and pass-flag waivers: while
// the feature is enabled, Verify always demands a captcha response. Used by
// registration and password reset, where a previously earned pass must not
// carry over.
func (p *CaptchaProcessor) WithExtraChecksSkipped() *CaptchaProcessor {
	p.skipExtraChecks = true
	return p
}

func (p *CaptchaProcessor) key() string {
	return fmt.Sprintf("%s:%s", p.subject, p.address)
}

// IsChallengeRequired reports whether the subject must solve a captcha.
// Allow-listed addresses are exempt, as is any subject still holding a live
// pass flag. Cache unavailability counts as "no pass flag" and therefore
// requires a challenge.
func (p *CaptchaProcessor) IsChallengeRequired(ctx context.Context) bool {
	if !p.cfg.Enabled {
		return false
	}

	if p.addressAllowed() {
		return false
	}

	_, found, err := p.store.Get(ctx, p.key())
	if err != nil {
		p.logger.Warn("captcha pass flag lookup failed",
			zap.String("address", logger.MaskIP(p.address)), zap.Error(err))
		return true
	}

	return !found
}

func (p *CaptchaProcessor) addressAllowed() bool {
	if ip := net.ParseIP(p.address); ip != nil && ip.IsLoopback() {
		return true
	}
	if p.address == "localhost" {
		return true
	}
	if p.allowed != nil && p.allowed.MatchString(p.address) {
		return true
	}
	return false
}

// Verify validates the supplied captcha response when a challenge is
// required. Missing responses fail with ErrCaptchaRequired, rejected ones
// with ErrBadCaptcha. Every failure path clears the pass flag. With extra
// checks skipped the challenge is unconditional.
func (p *CaptchaProcessor) Verify(ctx context.Context, response string) error {
	if !p.cfg.Enabled {
		return nil
	}

	if !p.skipExtraChecks && !p.IsChallengeRequired(ctx) {
		return nil
	}

	if response == "" {
		p.Clear(ctx)
		return ErrCaptchaRequired
	}

	ok, err := p.verifier.Verify(ctx, response)
	if err != nil {
		p.Clear(ctx)
		return fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		p.Clear(ctx)
		return ErrBadCaptcha
	}

	return p.MarkPassed(ctx)
}

// MarkPassed records the pass flag with a fresh attempt budget. Idempotent:
// an existing flag keeps its TTL and remaining budget.
func (p *CaptchaProcessor) MarkPassed(ctx context.Context) error {
	_, found, err := p.store.Get(ctx, p.key())
	if err != nil {
		return fmt.Errorf("read pass flag: %w", err)
	}
	if found {
		return nil
	}

	if err := p.store.Set(ctx, p.key(), p.cfg.MaxAttempts, p.cfg.PassTTL); err != nil {
		return fmt.Errorf("set pass flag: %w", err)
	}

	return nil
}

// DecreaseAttempts burns one unit of the downstream-attempt budget. An absent
// counter starts from the configured maximum and is persisted with the
// attempt-record window TTL. An existing counter keeps its remaining TTL so
// the budget cannot be refreshed by repeated failures. When the budget
// reaches zero the flag is deleted and exhaustionErr is returned.
func (p *CaptchaProcessor) DecreaseAttempts(ctx context.Context, exhaustionErr error) error {
	key := p.key()

	attempts, found, err := p.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read attempts: %w", err)
	}
	if !found {
		attempts = p.cfg.MaxAttempts
	}

	ttl := p.cfg.TimeoutWindow
	if ttl <= 0 {
		ttl = p.cfg.PassTTL
	}
	if found {
		remaining, ok, err := p.store.TTL(ctx, key)
		if err != nil {
			return fmt.Errorf("read attempts ttl: %w", err)
		}
		if ok {
			ttl = remaining
		}
	}

	attempts--
	if attempts <= 0 {
		if err := p.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete pass flag: %w", err)
		}
		return exhaustionErr
	}

	if err := p.store.Set(ctx, key, attempts, ttl); err != nil {
		return fmt.Errorf("persist attempts: %w", err)
	}

	return nil
}

// Clear removes the pass flag unconditionally. Failures are logged and
// swallowed; a stale flag only shortens the next challenge, it cannot grant
// access.
func (p *CaptchaProcessor) Clear(ctx context.Context) {
	if err := p.store.Delete(ctx, p.key()); err != nil {
		p.logger.Warn("clear captcha pass flag failed",
			zap.String("address", logger.MaskIP(p.address)), zap.Error(err))
	}
}
