package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create every table the bot needs. Statements are
// idempotent so startup can always run them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		seq BIGINT PRIMARY KEY,
		type TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		moderator_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		payload JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_guild ON events (guild_id, seq DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user ON events (user_id, seq DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_events_type ON events (type, seq DESC)`,

	`CREATE TABLE IF NOT EXISTS warnings (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		active BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE INDEX IF NOT EXISTS idx_warnings_user ON warnings (user_id, guild_id) WHERE active`,

	`CREATE TABLE IF NOT EXISTS automod_settings (
		guild_id TEXT NOT NULL,
		setting TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (guild_id, setting)
	)`,

	`CREATE TABLE IF NOT EXISTS webhooks (
		guild_id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		added_by TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS api_keys (
		key TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
