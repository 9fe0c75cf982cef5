package security

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// AcceptAllSecondFactor is the default second factor check. It accepts every
// code; deployments wire a real verifier in its place.
type AcceptAllSecondFactor struct{}

// NewAcceptAllSecondFactor constructs the default verifier.
func NewAcceptAllSecondFactor() *AcceptAllSecondFactor {
	return &AcceptAllSecondFactor{}
}

// Verify always succeeds.
func (AcceptAllSecondFactor) Verify(_ context.Context, _, _ string) error {
	return nil
}

var _ port.SecondFactorVerifier = AcceptAllSecondFactor{}
