package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly notification publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishDuplicateRegistration logs account.registration.duplicate events.
func (p *StubPublisher) PublishDuplicateRegistration(_ context.Context, event domain.DuplicateRegistrationEvent) error {
	payload := map[string]any{
		"email":       event.Email,
		"ip":          event.IP,
		"browser":     event.Browser,
		"os":          event.OS,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("registration.duplicate", "", event.OccurredAt, payload)
	return nil
}

// PublishIPChanged logs account.login.ip_changed events.
func (p *StubPublisher) PublishIPChanged(_ context.Context, event domain.IPChangedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"ip":          event.IP,
		"device":      event.Device,
		"os":          event.OS,
		"browser":     event.Browser,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("login.ip_changed", event.UserID, event.OccurredAt, payload)
	return nil
}

// PublishFailedLogin logs account.login.failed events.
func (p *StubPublisher) PublishFailedLogin(_ context.Context, event domain.FailedLoginEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"ip":          event.IP,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("login.failed", event.UserID, event.OccurredAt, payload)
	return nil
}

// PublishConfirmationRequested logs account.verification.requested events.
func (p *StubPublisher) PublishConfirmationRequested(_ context.Context, event domain.ConfirmationRequestedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"email":        event.Email,
		"key":          event.Key,
		"language":     event.Language,
		"requested_at": event.RequestedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("verification.requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs account.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"email":        event.Email,
		"token":        event.Token,
		"requested_at": event.RequestedAt,
		"expires_at":   event.ExpiresAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("password.reset_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

var _ port.NotificationPublisher = (*StubPublisher)(nil)
