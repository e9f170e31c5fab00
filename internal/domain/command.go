package domain

import (
	"fmt"
	"time"
)

// Command actions accepted from the command adapter.
const (
	ActionWarn    = "warn"
	ActionKick    = "kick"
	ActionBan     = "ban"
	ActionTimeout = "timeout"
)

const (
	maxReasonLength    = 512
	maxTimeoutMinutes  = 40320 // 28 days
	maxBanDeleteDays   = 7
	minTimeoutDuration = 1
)

// Command is an explicit, already-authorized moderation request. The adapter
// that delivers it owns permission checks; Validate only guards shape.
type Command struct {
	Action          string `json:"action"`
	GuildID         string `json:"guild_id"`
	UserID          string `json:"user_id"`
	ModeratorID     string `json:"moderator_id"`
	Reason          string `json:"reason"`
	DurationMinutes int    `json:"duration,omitempty"`
	DeleteDays      int    `json:"delete_days,omitempty"`
}

// Validate rejects malformed commands before they reach the enforcer.
func (c *Command) Validate() error {
	switch c.Action {
	case ActionWarn, ActionKick, ActionBan, ActionTimeout:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, c.Action)
	}
	if c.GuildID == "" || c.UserID == "" || c.ModeratorID == "" {
		return fmt.Errorf("%w: guild_id, user_id and moderator_id are required", ErrInvalidCommand)
	}
	if len(c.Reason) > maxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidCommand, maxReasonLength)
	}
	if c.Action == ActionWarn && c.Reason == "" {
		return fmt.Errorf("%w: warn requires a reason", ErrInvalidCommand)
	}
	if c.Action == ActionTimeout {
		if c.DurationMinutes < minTimeoutDuration || c.DurationMinutes > maxTimeoutMinutes {
			return fmt.Errorf("%w: timeout duration must be between %d and %d minutes",
				ErrInvalidCommand, minTimeoutDuration, maxTimeoutMinutes)
		}
	}
	if c.Action == ActionBan {
		if c.DeleteDays < 0 || c.DeleteDays > maxBanDeleteDays {
			return fmt.Errorf("%w: delete_days must be between 0 and %d", ErrInvalidCommand, maxBanDeleteDays)
		}
	}
	return nil
}

// ReasonOrDefault returns the command reason, or the placeholder the
// original commands used when none was given.
func (c *Command) ReasonOrDefault() string {
	if c.Reason == "" {
		return "No reason provided"
	}
	return c.Reason
}

// Duration converts the timeout duration to a time.Duration.
func (c *Command) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}
