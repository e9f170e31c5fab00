package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// PolicyStore resolves per-guild moderation policy from the settings store,
// caching resolved policies in a capacity- and TTL-bounded LRU. Updates
// invalidate the cached entry so the next resolve re-reads.
type PolicyStore struct {
	repo    domain.SettingsRepository
	cache   *expirable.LRU[string, domain.Policy]
	logger  *slog.Logger
	metrics *metrics.ModerationMetrics
}

// NewPolicyStore creates a new PolicyStore. The metrics set is optional.
func NewPolicyStore(repo domain.SettingsRepository, cacheSize int, cacheTTL time.Duration, logger *slog.Logger, m *metrics.ModerationMetrics) *PolicyStore {
	return &PolicyStore{
		repo:    repo,
		cache:   expirable.NewLRU[string, domain.Policy](cacheSize, nil, cacheTTL),
		logger:  logger.With("component", "policy_store"),
		metrics: m,
	}
}

// Resolve returns the guild's policy, from cache when fresh. A storage
// failure degrades to a disabled policy so messages are never filtered
// against a partial one; the degraded policy is not cached, letting the
// next resolve retry the store.
func (s *PolicyStore) Resolve(ctx context.Context, guildID string) domain.Policy {
	if policy, ok := s.cache.Get(guildID); ok {
		if s.metrics != nil {
			s.metrics.PolicyCacheHits.Inc()
		}
		return policy
	}
	if s.metrics != nil {
		s.metrics.PolicyCacheMisses.Inc()
	}

	rows, err := s.repo.GetSettings(ctx, guildID)
	if err != nil {
		s.logger.Error("failed to load automod settings, disabling moderation for guild", "error", err, "guild_id", guildID)
		return domain.DisabledPolicy()
	}

	policy := s.parse(rows, guildID)
	s.cache.Add(guildID, policy)
	return policy
}

// Update upserts the given settings in one transaction and invalidates the
// cached policy. Values must be JSON-encoded.
func (s *PolicyStore) Update(ctx context.Context, guildID string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.repo.UpsertSettings(ctx, guildID, values); err != nil {
		return err
	}
	s.cache.Remove(guildID)
	return nil
}

// Invalidate drops the cached policy for a guild.
func (s *PolicyStore) Invalidate(guildID string) {
	s.cache.Remove(guildID)
}

// parse overlays stored rows onto the default policy. A row that fails to
// parse keeps the default for that key rather than poisoning the whole
// policy.
func (s *PolicyStore) parse(rows map[string]string, guildID string) domain.Policy {
	policy := domain.DefaultPolicy()

	for key, raw := range rows {
		var err error
		switch key {
		case "enabled":
			err = json.Unmarshal([]byte(raw), &policy.Enabled)
		case "badWords":
			err = json.Unmarshal([]byte(raw), &policy.BannedTerms)
		case "spamThreshold":
			err = json.Unmarshal([]byte(raw), &policy.SpamThreshold)
		case "spamWindow":
			err = json.Unmarshal([]byte(raw), &policy.SpamWindowMs)
		case "maxMentions":
			err = json.Unmarshal([]byte(raw), &policy.MaxMentions)
		case "linkFilter":
			err = json.Unmarshal([]byte(raw), &policy.LinkFilter)
		case "inviteFilter":
			err = json.Unmarshal([]byte(raw), &policy.InviteFilter)
		case "capsFilter":
			err = json.Unmarshal([]byte(raw), &policy.CapsFilter)
		case "capsThreshold":
			err = json.Unmarshal([]byte(raw), &policy.CapsRatioThreshold)
		default:
			continue
		}
		if err != nil {
			s.logger.Warn("malformed automod setting, keeping default", "guild_id", guildID, "key", key, "error", err)
		}
	}

	if policy.SpamThreshold < 0 {
		policy.SpamThreshold = 0
	}
	if policy.SpamWindowMs < 0 {
		policy.SpamWindowMs = 0
	}
	if policy.MaxMentions < 0 {
		policy.MaxMentions = 0
	}
	if policy.CapsRatioThreshold < 0 {
		policy.CapsRatioThreshold = 0
	}
	if policy.CapsRatioThreshold > 1 {
		policy.CapsRatioThreshold = 1
	}

	return policy
}
