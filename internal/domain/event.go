package domain

import (
	"encoding/json"
	"time"
)

// Event types recorded in the moderation log.
const (
	EventTypeWarning        = "warning"
	EventTypeKick           = "kick"
	EventTypeBan            = "ban"
	EventTypeTimeout        = "timeout"
	EventTypeAutoModAction  = "automod_action"
	EventTypeAutoModTimeout = "automod_timeout"
	EventTypeModeration     = "moderation"
)

// AutoModerator is the synthetic moderator identity recorded on automated
// actions.
const AutoModerator = "AUTO"

// EventDraft is an event before the log assigns its sequence id.
type EventDraft struct {
	Type        string          `json:"type"`
	GuildID     string          `json:"guild_id"`
	UserID      string          `json:"user_id"`
	ModeratorID string          `json:"moderator_id"`
	Reason      string          `json:"reason"`
	Content     string          `json:"content,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"data,omitempty"`
}

// Event is a finalized, persisted moderation event. Immutable once appended.
type Event struct {
	Seq         uint64          `json:"id"`
	Type        string          `json:"type"`
	GuildID     string          `json:"guild_id"`
	UserID      string          `json:"user_id"`
	ModeratorID string          `json:"moderator_id"`
	Reason      string          `json:"reason"`
	Content     string          `json:"content,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"data,omitempty"`
}

// EventFilter narrows an event log query. Zero values mean "no constraint".
// UserID matches either the subject or the moderator.
type EventFilter struct {
	Type    string
	GuildID string
	UserID  string
	Since   time.Time
	Limit   int
}

// Warning is one active or revoked warning on a user's record.
type Warning struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	GuildID     string    `json:"guild_id"`
	ModeratorID string    `json:"moderator_id"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
	Active      bool      `json:"active"`
}
