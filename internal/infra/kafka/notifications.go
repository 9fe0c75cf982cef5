package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

const schemaVersion = "1.0"

// NotificationPublisher implements port.NotificationPublisher using Kafka.
type NotificationPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewNotificationPublisher constructs a Kafka-backed notification publisher.
func NewNotificationPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *NotificationPublisher {
	return &NotificationPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *NotificationPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishDuplicateRegistration publishes account.registration.duplicate events.
// The message targets the existing owner of the address, never the registrant.
func (p *NotificationPublisher) PublishDuplicateRegistration(ctx context.Context, event domain.DuplicateRegistrationEvent) error {
	payload := struct {
		Email      string         `json:"email"`
		IP         string         `json:"ip"`
		Browser    string         `json:"browser"`
		OS         string         `json:"os"`
		OccurredAt time.Time      `json:"occurred_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		Email:      event.Email,
		IP:         event.IP,
		Browser:    event.Browser,
		OS:         event.OS,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "registration.duplicate", "", event.OccurredAt, payload)
}

// PublishIPChanged publishes account.login.ip_changed events.
func (p *NotificationPublisher) PublishIPChanged(ctx context.Context, event domain.IPChangedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		IP         string         `json:"ip"`
		Device     string         `json:"device"`
		OS         string         `json:"os"`
		Browser    string         `json:"browser"`
		OccurredAt time.Time      `json:"occurred_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		IP:         event.IP,
		Device:     event.Device,
		OS:         event.OS,
		Browser:    event.Browser,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "login.ip_changed", event.UserID, event.OccurredAt, payload)
}

// PublishFailedLogin publishes account.login.failed events.
func (p *NotificationPublisher) PublishFailedLogin(ctx context.Context, event domain.FailedLoginEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		IP         string         `json:"ip,omitempty"`
		OccurredAt time.Time      `json:"occurred_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		IP:         event.IP,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "login.failed", event.UserID, event.OccurredAt, payload)
}

// PublishConfirmationRequested publishes account.verification.requested events.
func (p *NotificationPublisher) PublishConfirmationRequested(ctx context.Context, event domain.ConfirmationRequestedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		Email       string         `json:"email"`
		Key         string         `json:"key"`
		Language    string         `json:"language"`
		RequestedAt time.Time      `json:"requested_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		Email:       event.Email,
		Key:         event.Key,
		Language:    event.Language,
		RequestedAt: event.RequestedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "verification.requested", event.UserID, event.RequestedAt, payload)
}

// PublishPasswordResetRequested publishes account.password.reset_requested events.
func (p *NotificationPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		Email       string         `json:"email"`
		Token       string         `json:"token"`
		RequestedAt time.Time      `json:"requested_at"`
		ExpiresAt   time.Time      `json:"expires_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		Email:       event.Email,
		Token:       event.Token,
		RequestedAt: event.RequestedAt.UTC(),
		ExpiresAt:   event.ExpiresAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "password.reset_requested", event.UserID, event.RequestedAt, payload)
}

var _ port.NotificationPublisher = (*NotificationPublisher)(nil)
