package middleware

import (
	"log/slog"
	"net/http"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const (
	APIKeyHeader = "X-API-Key"
	APIKeyParam  = "api_key"
)

// Auth is a middleware factory that returns a new authentication middleware.
// It checks for a valid API key in the X-API-Key header.
func Auth(repo domain.APIKeyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return authWith(repo, logger, func(r *http.Request) string {
		return r.Header.Get(APIKeyHeader)
	})
}

// AuthQuery authenticates via the api_key query parameter. Used for the
// WebSocket upgrade, where browsers cannot set request headers.
func AuthQuery(repo domain.APIKeyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return authWith(repo, logger, func(r *http.Request) string {
		return r.URL.Query().Get(APIKeyParam)
	})
}

func authWith(repo domain.APIKeyRepository, logger *slog.Logger, extract func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := extract(r)
			if apiKey == "" {
				logger.Warn("API key missing from request", "remote_addr", r.RemoteAddr)
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			isValid, err := repo.IsValid(r.Context(), apiKey)
			if err != nil {
				logger.Error("failed to validate API key", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if !isValid {
				logger.Warn("invalid API key provided", "remote_addr", r.RemoteAddr)
				http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
