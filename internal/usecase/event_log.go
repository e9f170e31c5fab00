package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// EventLog is the single authoritative writer of moderation events. It owns
// sequence-id assignment: ids are strictly increasing and gapless within a
// process lifetime, and the record for id N is durable before id N+1 is
// handed out.
type EventLog struct {
	repo    domain.EventRepository
	logger  *slog.Logger
	metrics *metrics.ModerationMetrics

	mu      sync.Mutex
	nextSeq uint64
	sink    func(domain.Event)
}

// NewEventLog creates an EventLog, resuming the sequence counter from the
// highest persisted id. The metrics set is optional.
func NewEventLog(ctx context.Context, repo domain.EventRepository, logger *slog.Logger, m *metrics.ModerationMetrics) (*EventLog, error) {
	max, err := repo.MaxSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSequenceUnavailable, err)
	}
	return &EventLog{
		repo:    repo,
		logger:  logger.With("component", "event_log"),
		metrics: m,
		nextSeq: max + 1,
	}, nil
}

// Append assigns the next sequence id, persists the event, and returns the
// finalized record. A storage failure fails only this event; the id is not
// consumed, so the log stays gapless.
func (l *EventLog) Append(ctx context.Context, draft domain.EventDraft) (domain.Event, error) {
	if draft.Timestamp.IsZero() {
		draft.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	event := domain.Event{
		Seq:         l.nextSeq,
		Type:        draft.Type,
		GuildID:     draft.GuildID,
		UserID:      draft.UserID,
		ModeratorID: draft.ModeratorID,
		Reason:      draft.Reason,
		Content:     draft.Content,
		Timestamp:   draft.Timestamp,
		Payload:     draft.Payload,
	}

	if err := l.repo.InsertEvent(ctx, event); err != nil {
		l.logger.Error("failed to append event", "error", err, "type", draft.Type, "seq", event.Seq)
		return domain.Event{}, fmt.Errorf("append event: %w", err)
	}
	l.nextSeq++

	// Published under the same lock that assigned the id, so the broadcast
	// order always matches sequence order even with racing appenders.
	if l.sink != nil {
		l.sink(event)
	}

	if l.metrics != nil {
		l.metrics.EventsAppendedTotal.WithLabelValues(event.Type).Inc()
	}
	return event, nil
}

// AttachSink registers a function invoked with every appended event, in
// sequence order, after the event is durable. Call before processing starts.
func (l *EventLog) AttachSink(sink func(domain.Event)) {
	l.sink = sink
}

// LastSequence returns the most recently issued sequence id, or 0 when no
// event has ever been appended.
func (l *EventLog) LastSequence() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextSeq - 1
}

// Query returns events matching the filter, newest first. The limit defaults
// to 50 and is clamped to 500.
func (l *EventLog) Query(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultQueryLimit
	}
	if filter.Limit > maxQueryLimit {
		filter.Limit = maxQueryLimit
	}
	return l.repo.QueryEvents(ctx, filter)
}
