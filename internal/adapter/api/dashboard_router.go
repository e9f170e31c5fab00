package api

import (
	"log/slog"
	"net/http"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/api/handler"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/api/middleware"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/ws"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// NewDashboardRouter creates the HTTP router for the moderation dashboard.
// Note: route patterns with path values (e.g. "/{guildID}") require Go 1.22+.
func NewDashboardRouter(
	dashboard *handler.DashboardHandler,
	stream *ws.StreamHandler,
	apiKeyRepo domain.APIKeyRepository,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(apiKeyRepo, logger)

	mux.Handle("GET /api/logs", auth(http.HandlerFunc(dashboard.GetLogs)))
	mux.Handle("GET /api/stats", auth(http.HandlerFunc(dashboard.GetStats)))

	mux.Handle("GET /api/automod/{guildID}", auth(http.HandlerFunc(dashboard.GetAutomod)))
	mux.Handle("PUT /api/automod/{guildID}", auth(http.HandlerFunc(dashboard.UpdateAutomod)))

	mux.Handle("POST /api/action", auth(http.HandlerFunc(dashboard.PostAction)))
	mux.Handle("GET /api/warnings/{guildID}/{userID}", auth(http.HandlerFunc(dashboard.GetWarnings)))
	mux.Handle("PUT /api/webhook/{guildID}", auth(http.HandlerFunc(dashboard.PutWebhook)))

	mux.Handle("GET /ws", middleware.AuthQuery(apiKeyRepo, logger)(stream))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return middleware.Logging(logger)(mux)
}
