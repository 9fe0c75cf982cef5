package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// NotificationPublisher enqueues notification work on the message bus.
// Delivery is at-least-once and fire-and-forget: callers log publish errors
// but never fail the request over them.
type NotificationPublisher interface {
	PublishDuplicateRegistration(ctx context.Context, event domain.DuplicateRegistrationEvent) error
	PublishIPChanged(ctx context.Context, event domain.IPChangedEvent) error
	PublishFailedLogin(ctx context.Context, event domain.FailedLoginEvent) error
	PublishConfirmationRequested(ctx context.Context, event domain.ConfirmationRequestedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
}
