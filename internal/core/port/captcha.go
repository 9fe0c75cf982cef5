package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// CaptchaVerifier checks a captcha response against the external verifier
// endpoint. A nil error with ok=false means the verifier answered and
// rejected the response; a non-nil error means the check itself failed and
// the caller must fail closed.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response string) (bool, error)
}

// SecondFactorVerifier runs an additional post-credential check. The default
// implementation accepts everything; deployments can plug in TOTP or similar.
type SecondFactorVerifier interface {
	Verify(ctx context.Context, userID, code string) error
}

// UserAgentParser turns a raw User-Agent header into structured client info.
type UserAgentParser interface {
	Parse(raw string) domain.ClientInfo
}
