package domain

import (
	"context"
	"time"
)

// SettingsRepository stores per-guild moderation settings as key/value rows.
type SettingsRepository interface {
	// GetSettings returns all stored settings rows for a guild. A guild with
	// no rows returns an empty map, not an error.
	GetSettings(ctx context.Context, guildID string) (map[string]string, error)

	// UpsertSettings applies all key/value pairs in a single transaction,
	// timestamping each row.
	UpsertSettings(ctx context.Context, guildID string, values map[string]string) error
}

// EventRepository is the durable, append-only moderation event store.
type EventRepository interface {
	// InsertEvent writes a finalized event. The sequence id is assigned by
	// the caller; the repository must never reassign it.
	InsertEvent(ctx context.Context, event Event) error

	// QueryEvents returns events matching the filter, newest first.
	QueryEvents(ctx context.Context, filter EventFilter) ([]Event, error)

	// MaxSequence returns the highest persisted sequence id, or 0 when the
	// log is empty.
	MaxSequence(ctx context.Context) (uint64, error)
}

// WarningRepository tracks per-user warning records.
type WarningRepository interface {
	InsertWarning(ctx context.Context, warning Warning) error

	// CountActiveWarnings counts active warnings for a user in a guild.
	CountActiveWarnings(ctx context.Context, userID, guildID string) (int, error)

	// ListActiveWarnings returns active warnings newest first, bounded by limit.
	ListActiveWarnings(ctx context.Context, userID, guildID string, limit int) ([]Warning, error)
}

// WebhookRepository stores the per-guild notification webhook URL.
type WebhookRepository interface {
	// GetWebhookURL returns the configured URL, or "" when none is set.
	GetWebhookURL(ctx context.Context, guildID string) (string, error)

	UpsertWebhookURL(ctx context.Context, guildID, url, addedBy string) error
}

// MessageQueue buffers inbound chat messages between the gateway-facing
// ingest service and the moderation worker. Delivery order within the
// stream is preserved.
type MessageQueue interface {
	// Enqueue appends a message to the stream. Must not block on pipeline
	// completion.
	Enqueue(ctx context.Context, msg Message) error

	// ReadBatch reads up to count messages for a consumer group member.
	ReadBatch(ctx context.Context, group, consumer string, count int) ([]Message, error)

	// Ack marks messages as processed.
	Ack(ctx context.Context, group string, streamIDs ...string) error
}

// ChatPlatform is the outbound boundary to the chat platform. Every call is
// slow relative to the pipeline and must be issued with a bounded context.
type ChatPlatform interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error
	KickMember(ctx context.Context, guildID, userID, reason string) error
	BanMember(ctx context.Context, guildID, userID, reason string, deleteDays int) error

	// NotifyUser DMs the user. Best effort; failures are logged and dropped.
	NotifyUser(ctx context.Context, userID, content string) error
}

// Notifier delivers a fire-and-forget copy of an appended event to the
// guild's configured webhook. Errors are swallowed at this boundary and
// never affect event log state.
type Notifier interface {
	Notify(guildID string, event Event)
}

// APIKeyRepository validates dashboard API keys.
type APIKeyRepository interface {
	// IsValid checks if the provided API key is valid and active.
	// Implementations should handle caching to reduce database load.
	IsValid(ctx context.Context, key string) (bool, error)
}
