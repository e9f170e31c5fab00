package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"
)

// DashboardHandler serves the moderation dashboard API: the event log,
// per-guild automod settings, warning records and explicit moderation
// actions.
type DashboardHandler struct {
	events   *usecase.EventLog
	policies *usecase.PolicyStore
	enforcer *usecase.Enforcer
	spam     *usecase.SpamTracker
	warnings domain.WarningRepository
	webhooks domain.WebhookRepository
	logger   *slog.Logger
	started  time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	events *usecase.EventLog,
	policies *usecase.PolicyStore,
	enforcer *usecase.Enforcer,
	spam *usecase.SpamTracker,
	warnings domain.WarningRepository,
	webhooks domain.WebhookRepository,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		events:   events,
		policies: policies,
		enforcer: enforcer,
		spam:     spam,
		warnings: warnings,
		webhooks: webhooks,
		logger:   logger,
		started:  time.Now().UTC(),
	}
}

// GetStats reports coarse service counters for the dashboard landing page.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"total_events":   h.events.LastSequence(),
		"tracked_spam":   h.spam.TrackedPairs(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// GetLogs returns moderation events matching the query parameters, newest
// first.
func (h *DashboardHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Type:    q.Get("type"),
		GuildID: q.Get("guild_id"),
		UserID:  q.Get("user_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid since, expected RFC3339", http.StatusBadRequest)
			return
		}
		filter.Since = since
	}

	events, err := h.events.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query events", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetAutomod returns the effective policy for a guild, with defaults applied.
func (h *DashboardHandler) GetAutomod(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	policy := h.policies.Resolve(r.Context(), guildID)
	writeJSON(w, http.StatusOK, policy)
}

// UpdateAutomod applies settings changes for a guild. The body is a flat
// object of setting keys to values; each value is stored JSON-encoded.
func (h *DashboardHandler) UpdateAutomod(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "no settings provided", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(body))
	for key, raw := range body {
		values[key] = string(raw)
	}

	if err := h.policies.Update(r.Context(), guildID, values); err != nil {
		h.logger.Error("failed to update automod settings", "error", err, "guild_id", guildID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.policies.Resolve(r.Context(), guildID))
}

// PostAction executes an explicit moderation command.
func (h *DashboardHandler) PostAction(w http.ResponseWriter, r *http.Request) {
	var cmd domain.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	event, err := h.enforcer.Execute(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCommand) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to execute moderation action", "error", err, "action", cmd.Action)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// GetWarnings lists a user's active warnings, newest first.
func (h *DashboardHandler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	userID := r.PathValue("userID")

	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	warnings, err := h.warnings.ListActiveWarnings(r.Context(), userID, guildID, limit)
	if err != nil {
		h.logger.Error("failed to list warnings", "error", err, "user_id", userID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	count, err := h.warnings.CountActiveWarnings(r.Context(), userID, guildID)
	if err != nil {
		h.logger.Error("failed to count warnings", "error", err, "user_id", userID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    count,
		"warnings": warnings,
	})
}

// PutWebhook sets the guild's notification webhook URL.
func (h *DashboardHandler) PutWebhook(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")

	var body struct {
		URL     string `json:"url"`
		AddedBy string `json:"added_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	if err := h.webhooks.UpsertWebhookURL(r.Context(), guildID, body.URL, body.AddedBy); err != nil {
		h.logger.Error("failed to store webhook", "error", err, "guild_id", guildID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
