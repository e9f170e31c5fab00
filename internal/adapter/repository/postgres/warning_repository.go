package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// WarningRepository implements domain.WarningRepository for PostgreSQL.
type WarningRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWarningRepository creates a new PostgreSQL warning repository.
func NewWarningRepository(db *sql.DB, logger *slog.Logger) *WarningRepository {
	return &WarningRepository{db: db, logger: logger}
}

func (r *WarningRepository) InsertWarning(ctx context.Context, warning domain.Warning) error {
	query := `
		INSERT INTO warnings (user_id, guild_id, moderator_id, reason, created_at, active)
		VALUES ($1, $2, $3, $4, $5, true)`
	_, err := r.db.ExecContext(ctx, query,
		warning.UserID, warning.GuildID, warning.ModeratorID, warning.Reason, warning.Timestamp)
	if err != nil {
		return fmt.Errorf("insert warning for user %s: %w", warning.UserID, err)
	}
	return nil
}

func (r *WarningRepository) CountActiveWarnings(ctx context.Context, userID, guildID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM warnings WHERE user_id = $1 AND guild_id = $2 AND active = true`,
		userID, guildID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count warnings for user %s: %w", userID, err)
	}
	return count, nil
}

func (r *WarningRepository) ListActiveWarnings(ctx context.Context, userID, guildID string, limit int) ([]domain.Warning, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, guild_id, moderator_id, reason, created_at, active
		FROM warnings
		WHERE user_id = $1 AND guild_id = $2 AND active = true
		ORDER BY created_at DESC
		LIMIT $3`, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("list warnings for user %s: %w", userID, err)
	}
	defer rows.Close()

	var warnings []domain.Warning
	for rows.Next() {
		var w domain.Warning
		if err := rows.Scan(&w.ID, &w.UserID, &w.GuildID, &w.ModeratorID, &w.Reason, &w.Timestamp, &w.Active); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}
