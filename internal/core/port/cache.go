package port

import (
	"context"
	"time"
)

// Cache exposes the shared key/value cache operations leveraged across the
// service. Values are opaque strings; a zero ttl stores without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// AttemptStore keeps captcha pass/attempt state per (subject, address) pair.
// A present entry means the captcha was recently passed; its integer value is
// the remaining downstream-attempt budget. Absence is reported via the
// boolean, not an error, so cache misses stay distinguishable from outages.
type AttemptStore interface {
	Get(ctx context.Context, key string) (int, bool, error)
	Set(ctx context.Context, key string, attempts int, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
}

// VerificationTokenStore maintains the bidirectional resend-confirmation
// token mapping plus the independent per-user cooldown flag.
type VerificationTokenStore interface {
	// IssueOrReuse returns the live token for the user, creating one when no
	// unexpired token exists. Issuance is idempotent within the token TTL.
	IssueOrReuse(ctx context.Context, userID string) (string, error)
	// LookupToken resolves a token back to its user id.
	LookupToken(ctx context.Context, token string) (string, error)
	// Invalidate removes both directions of the mapping for the user.
	Invalidate(ctx context.Context, userID, token string) error
	CooldownActive(ctx context.Context, userID string) (bool, error)
	SetCooldown(ctx context.Context, userID string) error
}

// ResetTokenStore keeps single-use password reset tokens.
type ResetTokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Lookup(ctx context.Context, token string) (string, error)
	Consume(ctx context.Context, token string) error
}
