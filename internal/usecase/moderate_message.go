package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// ModerateMessage runs one inbound message through the moderation pipeline:
// resolve the guild policy, evaluate the lexical filters, and, when the
// message passes those, feed the spam tracker. Any violation flows through
// the enforcer into the event log and broadcast.
type ModerateMessage struct {
	policies *PolicyStore
	filters  *FilterPipeline
	spam     *SpamTracker
	enforcer *Enforcer
	logger   *slog.Logger
	metrics  *metrics.ModerationMetrics
}

// NewModerateMessage creates the pipeline orchestrator.
func NewModerateMessage(
	policies *PolicyStore,
	filters *FilterPipeline,
	spam *SpamTracker,
	enforcer *Enforcer,
	logger *slog.Logger,
	m *metrics.ModerationMetrics,
) *ModerateMessage {
	return &ModerateMessage{
		policies: policies,
		filters:  filters,
		spam:     spam,
		enforcer: enforcer,
		logger:   logger.With("component", "moderate_message"),
		metrics:  m,
	}
}

// Handle processes a single message. A disabled or degraded policy is a
// no-op. The returned error covers only the append step; enforcement
// failures are recorded in the event itself.
func (uc *ModerateMessage) Handle(ctx context.Context, msg domain.Message) error {
	policy := uc.policies.Resolve(ctx, msg.GuildID)
	if !policy.Enabled {
		uc.count("clean")
		return nil
	}

	if v := uc.filters.Evaluate(msg, policy); v != nil {
		uc.count("violation")
		uc.countViolation(v.Kind)
		_, err := uc.enforcer.Punish(ctx, v)
		return err
	}

	// Spam tracking runs only for messages that passed the lexical filters,
	// so a deleted message never also counts toward the author's rate.
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if v := uc.spam.Observe(msg, ts, policy); v != nil {
		uc.count("spam")
		uc.countViolation(v.Kind)
		_, err := uc.enforcer.Punish(ctx, v)
		return err
	}

	uc.count("clean")
	return nil
}

func (uc *ModerateMessage) count(result string) {
	if uc.metrics != nil {
		uc.metrics.MessagesTotal.WithLabelValues(result).Inc()
	}
}

func (uc *ModerateMessage) countViolation(kind domain.ViolationKind) {
	if uc.metrics != nil {
		uc.metrics.ViolationsTotal.WithLabelValues(string(kind)).Inc()
	}
}
