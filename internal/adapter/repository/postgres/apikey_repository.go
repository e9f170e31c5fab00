package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
)

// apiKeyCacheSize bounds the verdict cache; far above the number of keys
// any one deployment issues.
const apiKeyCacheSize = 4096

// APIKeyRepository validates API keys against PostgreSQL, caching verdicts
// in a TTL'd LRU so the hot auth path stays off the database.
type APIKeyRepository struct {
	db      *sql.DB
	logger  *slog.Logger
	cache   *expirable.LRU[string, bool]
	metrics *metrics.IngestMetrics
}

// NewAPIKeyRepository creates a new PostgreSQL API key repository. Cached
// verdicts expire after cacheTTL, so key revocation takes effect within one
// TTL. The metrics set is optional.
func NewAPIKeyRepository(db *sql.DB, logger *slog.Logger, cacheTTL time.Duration, m *metrics.IngestMetrics) *APIKeyRepository {
	return &APIKeyRepository{
		db:      db,
		logger:  logger.With("component", "apikey_repository"),
		cache:   expirable.NewLRU[string, bool](apiKeyCacheSize, nil, cacheTTL),
		metrics: m,
	}
}

// IsValid reports whether the key exists, is active and has not expired.
// Lookup errors are returned and never cached, so the next request retries
// the database.
func (r *APIKeyRepository) IsValid(ctx context.Context, key string) (bool, error) {
	if valid, ok := r.cache.Get(key); ok {
		if r.metrics != nil {
			r.metrics.APIKeyCacheHits.Inc()
		}
		return valid, nil
	}
	if r.metrics != nil {
		r.metrics.APIKeyCacheMisses.Inc()
	}

	var valid bool
	query := `SELECT EXISTS(SELECT 1 FROM api_keys WHERE key = $1 AND is_active = true AND (expires_at IS NULL OR expires_at > NOW()))`
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&valid); err != nil {
		r.logger.Error("failed to validate API key in database", "error", err)
		return false, err
	}

	r.cache.Add(key, valid)
	return valid, nil
}
