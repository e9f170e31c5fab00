package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SettingsRepository implements domain.SettingsRepository for PostgreSQL.
// Settings are stored as one row per (guild, key) so individual toggles can
// be flipped without rewriting the whole policy.
type SettingsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSettingsRepository creates a new PostgreSQL settings repository.
func NewSettingsRepository(db *sql.DB, logger *slog.Logger) *SettingsRepository {
	return &SettingsRepository{db: db, logger: logger}
}

// GetSettings returns all stored settings rows for a guild. A guild with no
// rows yields an empty map.
func (r *SettingsRepository) GetSettings(ctx context.Context, guildID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT setting, value FROM automod_settings WHERE guild_id = $1`, guildID)
	if err != nil {
		return nil, fmt.Errorf("query settings for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// UpsertSettings applies all key/value pairs in a single transaction so a
// partially applied update never becomes visible.
func (r *SettingsRepository) UpsertSettings(ctx context.Context, guildID string, values map[string]string) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	query := `
		INSERT INTO automod_settings (guild_id, setting, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, setting) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for key, value := range values {
		if _, err := txn.ExecContext(ctx, query, guildID, key, value, now); err != nil {
			return fmt.Errorf("upsert setting %s for guild %s: %w", key, guildID, err)
		}
	}
	return txn.Commit()
}
