package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// WebhookRepository implements domain.WebhookRepository for PostgreSQL.
type WebhookRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWebhookRepository creates a new PostgreSQL webhook repository.
func NewWebhookRepository(db *sql.DB, logger *slog.Logger) *WebhookRepository {
	return &WebhookRepository{db: db, logger: logger}
}

// GetWebhookURL returns the configured URL for a guild, or "" when none is set.
func (r *WebhookRepository) GetWebhookURL(ctx context.Context, guildID string) (string, error) {
	var url string
	err := r.db.QueryRowContext(ctx,
		`SELECT url FROM webhooks WHERE guild_id = $1`, guildID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query webhook for guild %s: %w", guildID, err)
	}
	return url, nil
}

func (r *WebhookRepository) UpsertWebhookURL(ctx context.Context, guildID, url, addedBy string) error {
	query := `
		INSERT INTO webhooks (guild_id, url, added_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE SET
			url = EXCLUDED.url,
			added_by = EXCLUDED.added_by,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, guildID, url, addedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert webhook for guild %s: %w", guildID, err)
	}
	return nil
}
