package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

const userAgentMaxLength = 255

// LoginHistoryRepository implements port.LoginHistoryRepository using PostgreSQL.
type LoginHistoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLoginHistoryRepository wires a PostgreSQL-backed login history repository.
func NewLoginHistoryRepository(pool *pgxpool.Pool) *LoginHistoryRepository {
	return &LoginHistoryRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts a new history entry. The user agent is truncated to the
// column width rather than rejected.
func (r *LoginHistoryRepository) Append(ctx context.Context, entry domain.LoginHistory) error {
	userAgent := entry.UserAgent
	if len(userAgent) > userAgentMaxLength {
		userAgent = userAgent[:userAgentMaxLength]
	}

	stmt, args, err := r.builder.Insert("accounts.login_history").
		Columns("id", "user_id", "ip", "user_agent", "created_at").
		Values(entry.ID, entry.UserID, entry.IP, userAgent, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert login history sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert login history: %w", err)
	}

	return nil
}

// ListIPs returns every distinct IP previously recorded for the user.
func (r *LoginHistoryRepository) ListIPs(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.
		Select("DISTINCT ip").
		From("accounts.login_history").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select login ips sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query login ips: %w", err)
	}
	defer rows.Close()

	ips := make([]string, 0)
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			return nil, fmt.Errorf("scan login ip: %w", err)
		}
		ips = append(ips, ip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate login ips: %w", err)
	}

	return ips, nil
}

// ListByUser returns the most recent entries for the user, newest first.
func (r *LoginHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.LoginHistory, error) {
	query := r.builder.
		Select("id", "user_id", "ip", "user_agent", "created_at").
		From("accounts.login_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select login history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query login history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LoginHistory, 0)
	for rows.Next() {
		var entry domain.LoginHistory
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.IP, &entry.UserAgent, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan login history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate login history: %w", err)
	}

	return entries, nil
}

var _ port.LoginHistoryRepository = (*LoginHistoryRepository)(nil)
