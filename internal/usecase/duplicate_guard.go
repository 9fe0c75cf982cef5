package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const recentUsernamesKey = "registration:recent_usernames"

// DuplicateEmailGuard scores candidate usernames against a small rolling
// window of recently registered ones. It is a cheap anti-spam heuristic for
// catching near-duplicate bot registrations, not an authoritative check;
// staleness up to one registration cycle is acceptable.
type DuplicateEmailGuard struct {
	cfg    config.RegistrationSettings
	cache  port.Cache
	users  port.UserRepository
	logger *zap.Logger
}

// NewDuplicateEmailGuard constructs a guard.
func NewDuplicateEmailGuard(cfg config.RegistrationSettings, cache port.Cache, users port.UserRepository, log *zap.Logger) *DuplicateEmailGuard {
	return &DuplicateEmailGuard{cfg: cfg, cache: cache, users: users, logger: log}
}

// Score returns the maximum token-sort similarity in [0,100] between the
// candidate and the cached window. An empty window scores 0. A missing cache
// entry triggers a lazy refresh from the persistent store.
func (g *DuplicateEmailGuard) Score(ctx context.Context, candidate string) (int, error) {
	window, err := g.window(ctx)
	if err != nil {
		return 0, err
	}

	best := 0
	for _, name := range window {
		if score := fuzzy.TokenSortRatio(candidate, name); score > best {
			best = score
		}
	}

	return best, nil
}

// IsSuspicious reports whether the candidate is too close to a recent
// username.
func (g *DuplicateEmailGuard) IsSuspicious(ctx context.Context, candidate string) (bool, error) {
	score, err := g.Score(ctx, candidate)
	if err != nil {
		return false, err
	}
	return score >= g.cfg.MinSimilarity, nil
}

// RefreshWindow overwrites the cached window with the most recent usernames
// from the persistent store. The entry carries no TTL and persists until the
// next refresh.
func (g *DuplicateEmailGuard) RefreshWindow(ctx context.Context) error {
	names, err := g.users.ListRecentUsernames(ctx, g.cfg.RecentUsernames)
	if err != nil {
		return fmt.Errorf("list recent usernames: %w", err)
	}

	encoded, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode username window: %w", err)
	}

	if err := g.cache.Set(ctx, recentUsernamesKey, string(encoded), 0); err != nil {
		return fmt.Errorf("store username window: %w", err)
	}

	return nil
}

func (g *DuplicateEmailGuard) window(ctx context.Context) ([]string, error) {
	raw, err := g.cache.Get(ctx, recentUsernamesKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("read username window: %w", err)
		}

		if err := g.RefreshWindow(ctx); err != nil {
			return nil, err
		}

		raw, err = g.cache.Get(ctx, recentUsernamesKey)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("read username window: %w", err)
		}
	}

	var window []string
	if err := json.Unmarshal([]byte(raw), &window); err != nil {
		g.logger.Warn("corrupt username window, rebuilding", zap.Error(err))
		if err := g.RefreshWindow(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return window, nil
}
