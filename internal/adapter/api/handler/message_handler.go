package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"
)

// MessageHandler accepts inbound chat messages from the gateway and buffers
// them for the moderation worker. It responds as soon as the message is
// queued; moderation happens asynchronously.
type MessageHandler struct {
	useCase *usecase.IngestMessage
	logger  *slog.Logger
	maxSize int64
	metrics *metrics.IngestMetrics
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(uc *usecase.IngestMessage, logger *slog.Logger, maxSize int64, m *metrics.IngestMetrics) *MessageHandler {
	return &MessageHandler{
		useCase: uc,
		logger:  logger,
		maxSize: maxSize,
		metrics: m,
	}
}

// ServeHTTP processes one inbound message.
func (h *MessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	var msg domain.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.count("error_size")
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.count("error_parse")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if msg.GuildID == "" || msg.AuthorID == "" {
		h.count("error_parse")
		http.Error(w, "guild_id and author_id are required", http.StatusBadRequest)
		return
	}

	if err := h.useCase.Ingest(r.Context(), &msg); err != nil {
		h.logger.Error("failed to buffer message", "error", err, "guild_id", msg.GuildID)
		h.count("error_queue")
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	if h.metrics != nil {
		h.metrics.MessagesTotal.WithLabelValues("accepted").Inc()
		h.metrics.BytesTotal.Add(float64(len(msg.Content)))
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *MessageHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.MessagesTotal.WithLabelValues(status).Inc()
	}
}
