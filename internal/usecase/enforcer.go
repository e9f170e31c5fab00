package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// spamTimeoutDuration is the fixed communication restriction applied on a
// message-spam trigger.
const spamTimeoutDuration = 5 * time.Minute

// enforcementPayload is the structured data recorded on enforcement events.
type enforcementPayload struct {
	Enforcement  domain.EnforcementResult `json:"enforcement"`
	Kind         domain.ViolationKind     `json:"kind,omitempty"`
	WarningCount int                      `json:"warning_count,omitempty"`
	Duration     string                   `json:"duration,omitempty"`
	DeleteDays   int                      `json:"delete_days,omitempty"`
}

// Enforcer executes remediation for detected violations and explicit
// moderation commands, then records the outcome through the event log.
// Platform failures are non-fatal: the moderation record is the durable
// source of truth and is written even when the platform-side action failed.
type Enforcer struct {
	platform domain.ChatPlatform
	warnings domain.WarningRepository
	log      *EventLog
	notifier domain.Notifier
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.ModerationMetrics
}

// NewEnforcer creates a new Enforcer. Each platform call is bounded by the
// given timeout; expiry is treated as a non-fatal failure.
func NewEnforcer(
	platform domain.ChatPlatform,
	warnings domain.WarningRepository,
	log *EventLog,
	notifier domain.Notifier,
	timeout time.Duration,
	logger *slog.Logger,
	m *metrics.ModerationMetrics,
) *Enforcer {
	return &Enforcer{
		platform: platform,
		warnings: warnings,
		log:      log,
		notifier: notifier,
		timeout:  timeout,
		logger:   logger.With("component", "enforcer"),
		metrics:  m,
	}
}

// Punish remediates an automod violation: message spam earns a timeout,
// everything else a message deletion. A warning is always recorded, the
// resulting event is appended and broadcast, and the guild webhook plus a
// user DM are notified best-effort.
func (e *Enforcer) Punish(ctx context.Context, v *domain.Violation) (domain.Event, error) {
	var result domain.EnforcementResult
	eventType := domain.EventTypeAutoModAction

	switch v.Kind {
	case domain.ViolationMessageSpam:
		eventType = domain.EventTypeAutoModTimeout
		result = e.platformCall(ctx, "timeout", func(cctx context.Context) error {
			return e.platform.TimeoutMember(cctx, v.GuildID, v.UserID, spamTimeoutDuration, "AutoMod: "+v.Reason)
		})
	default:
		result = e.platformCall(ctx, "delete_message", func(cctx context.Context) error {
			return e.platform.DeleteMessage(cctx, v.ChannelID, v.MessageID)
		})
	}

	warningCount := e.recordWarning(ctx, domain.Warning{
		UserID:      v.UserID,
		GuildID:     v.GuildID,
		ModeratorID: domain.AutoModerator,
		Reason:      "AutoMod: " + v.Reason,
		Timestamp:   time.Now().UTC(),
	})

	payload, _ := json.Marshal(enforcementPayload{
		Enforcement:  result,
		Kind:         v.Kind,
		WarningCount: warningCount,
	})

	event, err := e.log.Append(ctx, domain.EventDraft{
		Type:        eventType,
		GuildID:     v.GuildID,
		UserID:      v.UserID,
		ModeratorID: domain.AutoModerator,
		Reason:      v.Reason,
		Content:     v.Evidence,
		Payload:     payload,
	})
	if err != nil {
		return domain.Event{}, err
	}

	e.notifier.Notify(v.GuildID, event)
	e.dmUser(v.UserID, fmt.Sprintf("Your message was removed.\nReason: %s\nWarnings: %d", v.Reason, warningCount))

	return event, nil
}

// Execute performs an explicit, already-authorized moderation command.
// Malformed commands are rejected before any side effect.
func (e *Enforcer) Execute(ctx context.Context, cmd domain.Command) (domain.Event, error) {
	if err := cmd.Validate(); err != nil {
		return domain.Event{}, err
	}

	reason := cmd.ReasonOrDefault()
	result := domain.EnforcementResult{Action: cmd.Action, OK: true}
	eventType := cmd.Action
	payload := enforcementPayload{}

	switch cmd.Action {
	case domain.ActionWarn:
		eventType = domain.EventTypeWarning
		payload.WarningCount = e.recordWarning(ctx, domain.Warning{
			UserID:      cmd.UserID,
			GuildID:     cmd.GuildID,
			ModeratorID: cmd.ModeratorID,
			Reason:      cmd.Reason,
			Timestamp:   time.Now().UTC(),
		})
	case domain.ActionKick:
		result = e.platformCall(ctx, "kick", func(cctx context.Context) error {
			return e.platform.KickMember(cctx, cmd.GuildID, cmd.UserID, reason)
		})
	case domain.ActionBan:
		payload.DeleteDays = cmd.DeleteDays
		result = e.platformCall(ctx, "ban", func(cctx context.Context) error {
			return e.platform.BanMember(cctx, cmd.GuildID, cmd.UserID, reason, cmd.DeleteDays)
		})
	case domain.ActionTimeout:
		payload.Duration = cmd.Duration().String()
		result = e.platformCall(ctx, "timeout", func(cctx context.Context) error {
			return e.platform.TimeoutMember(cctx, cmd.GuildID, cmd.UserID, cmd.Duration(), reason)
		})
	}

	payload.Enforcement = result
	raw, _ := json.Marshal(payload)

	event, err := e.log.Append(ctx, domain.EventDraft{
		Type:        eventType,
		GuildID:     cmd.GuildID,
		UserID:      cmd.UserID,
		ModeratorID: cmd.ModeratorID,
		Reason:      reason,
		Payload:     raw,
	})
	if err != nil {
		return domain.Event{}, err
	}

	e.notifier.Notify(cmd.GuildID, event)
	if cmd.Action == domain.ActionWarn {
		e.dmUser(cmd.UserID, fmt.Sprintf("You received a warning.\nReason: %s\nTotal warnings: %d", reason, payload.WarningCount))
	}

	return event, nil
}

// platformCall runs one platform action under the bounded timeout and
// converts any failure into a non-fatal EnforcementResult.
func (e *Enforcer) platformCall(ctx context.Context, action string, call func(context.Context) error) domain.EnforcementResult {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := call(cctx)
	if err == nil {
		return domain.EnforcementResult{Action: action, OK: true}
	}

	kind := domain.EnforcementErrUnknown
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		kind = domain.EnforcementErrPermission
	case errors.Is(err, domain.ErrNotFound):
		kind = domain.EnforcementErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		kind = domain.EnforcementErrTimeout
	}

	e.logger.Warn("platform action failed, recording event anyway", "action", action, "error", err, "error_kind", kind)
	if e.metrics != nil {
		e.metrics.EnforcementFailures.WithLabelValues(action).Inc()
	}
	return domain.EnforcementResult{Action: action, OK: false, ErrorKind: kind}
}

// recordWarning inserts the warning and returns the user's new active
// count. Storage failures are logged and degrade to a zero count; the
// event append still proceeds.
func (e *Enforcer) recordWarning(ctx context.Context, w domain.Warning) int {
	if err := e.warnings.InsertWarning(ctx, w); err != nil {
		e.logger.Error("failed to record warning", "error", err, "user_id", w.UserID, "guild_id", w.GuildID)
		return 0
	}
	count, err := e.warnings.CountActiveWarnings(ctx, w.UserID, w.GuildID)
	if err != nil {
		e.logger.Warn("failed to count warnings", "error", err, "user_id", w.UserID)
		return 0
	}
	return count
}

// dmUser sends a best-effort direct message off the hot path.
func (e *Enforcer) dmUser(userID, content string) {
	go func() {
		cctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if err := e.platform.NotifyUser(cctx, userID, content); err != nil {
			e.logger.Debug("could not DM user", "user_id", userID, "error", err)
		}
	}()
}
