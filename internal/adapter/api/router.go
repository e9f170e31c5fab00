package api

import (
	"log/slog"
	"net/http"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/api/handler"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/api/middleware"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/pkg/config"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"
)

// NewIngestRouter creates the HTTP router for the gateway-facing ingest
// service.
func NewIngestRouter(
	cfg *config.Config,
	logger *slog.Logger,
	apiKeyRepo domain.APIKeyRepository,
	ingest *usecase.IngestMessage,
	m *metrics.IngestMetrics,
) http.Handler {
	mux := http.NewServeMux()

	messageHandler := handler.NewMessageHandler(ingest, logger, cfg.MaxMessageSize, m)
	authMiddleware := middleware.Auth(apiKeyRepo, logger)

	mux.Handle("POST /messages", authMiddleware(messageHandler))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return middleware.Logging(logger)(mux)
}
