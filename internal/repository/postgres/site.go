package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// SiteRepository reads the singleton site configuration row.
type SiteRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSiteRepository wires a PostgreSQL-backed site repository.
func NewSiteRepository(pool *pgxpool.Pool) *SiteRepository {
	return &SiteRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the site configuration or repository.ErrSiteConfigMissing.
func (r *SiteRepository) Get(ctx context.Context) (*domain.SiteConfig, error) {
	stmt, args, err := r.builder.
		Select("id", "domain", "name").
		From("accounts.site_config").
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select site config sql: %w", err)
	}

	var site domain.SiteConfig
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&site.ID, &site.Domain, &site.Name); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrSiteConfigMissing
		}
		return nil, fmt.Errorf("scan site config: %w", err)
	}

	return &site, nil
}

var _ port.SiteRepository = (*SiteRepository)(nil)
