package domain

import "time"

// DuplicateRegistrationEvent represents the payload for
// account.registration.duplicate messages. The recipient is the existing
// owner of the address; the new registrant learns nothing.
type DuplicateRegistrationEvent struct {
	EventID    string
	Email      string
	IP         string
	Browser    string
	OS         string
	OccurredAt time.Time
	Metadata   map[string]any
}

// IPChangedEvent represents the payload for account.login.ip_changed
// messages, emitted when a login succeeds from a previously unseen address.
type IPChangedEvent struct {
	EventID    string
	UserID     string
	IP         string
	Device     string
	OS         string
	Browser    string
	OccurredAt time.Time
	Metadata   map[string]any
}

// FailedLoginEvent represents the payload for account.login.failed messages.
type FailedLoginEvent struct {
	EventID    string
	UserID     string
	IP         string
	OccurredAt time.Time
	Metadata   map[string]any
}

// ConfirmationRequestedEvent represents the payload for
// account.verification.requested messages, consumed by the mailer.
type ConfirmationRequestedEvent struct {
	EventID     string
	UserID      string
	Email       string
	Key         string
	Language    string
	RequestedAt time.Time
	Metadata    map[string]any
}

// PasswordResetRequestedEvent represents the payload for
// account.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID     string
	UserID      string
	Email       string
	Token       string
	RequestedAt time.Time
	ExpiresAt   time.Time
	Metadata    map[string]any
}
