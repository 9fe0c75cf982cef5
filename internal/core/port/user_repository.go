package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches case-insensitively on the email column.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// ListRecentUsernames returns the usernames of the limit most recently
	// registered users, newest first.
	ListRecentUsernames(ctx context.Context, limit int) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, passwordAlgo string, changedAt time.Time) error
	// CreateWithProfile atomically verifies the site configuration row exists
	// and inserts the user together with its profile. Either both rows exist
	// afterwards or neither does.
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) error
}

// ProfileRepository exposes persistence behavior for user profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	SetActionsFreeze(ctx context.Context, userID string, until time.Time) error
}

// LoginHistoryRepository appends and queries the login audit trail.
type LoginHistoryRepository interface {
	Append(ctx context.Context, entry domain.LoginHistory) error
	// ListIPs returns every distinct IP previously recorded for the user.
	ListIPs(ctx context.Context, userID string) ([]string, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.LoginHistory, error)
}

// SiteRepository reads the singleton site configuration row.
type SiteRepository interface {
	Get(ctx context.Context) (*domain.SiteConfig, error)
}
