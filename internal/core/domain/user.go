package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	// UserStatusPending marks accounts created but not yet email-verified.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive marks fully verified accounts.
	UserStatusActive UserStatus = "active"
	// UserStatusDisabled marks administratively blocked accounts.
	UserStatusDisabled UserStatus = "disabled"
)

// User mirrors the persisted representation in the users table.
// Email is unique case-insensitively; comparison always happens on the
// lower-cased value.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	PasswordAlgo string
	Status       UserStatus
	IsActive     bool
	RegisteredAt time.Time
	LastLogin    *time.Time
}

// EmailVerified reports whether the account completed email verification.
func (u User) EmailVerified() bool {
	return u.Status != UserStatusPending
}

// Profile holds per-user settings kept 1:1 with the users table.
type Profile struct {
	UserID            string
	Language          string
	ActionsFreezeTill *time.Time
	CreatedAt         time.Time
}

// ActionsFrozen reports whether sensitive actions are currently frozen.
func (p Profile) ActionsFrozen(now time.Time) bool {
	if p.ActionsFreezeTill == nil {
		return false
	}
	return now.Before(*p.ActionsFreezeTill)
}

// LoginHistory records one successful authentication. Append-only; entries
// are never mutated or deleted by this service.
type LoginHistory struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	CreatedAt time.Time
}

// SiteConfig is the singleton row registration depends on. Registration is
// refused while it is missing.
type SiteConfig struct {
	ID     int64
	Domain string
	Name   string
}
