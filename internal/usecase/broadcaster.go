package usecase

import (
	"context"
	"log/slog"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const (
	opSubscribe = iota
	opUnsubscribe
	opPublish
)

type broadcastOp struct {
	op    int
	sub   *Subscriber
	event domain.Event
}

// Subscriber is one live observer of the event feed. On subscription its
// channel is pre-filled with the replay buffer in ascending sequence order;
// live events follow in append order. The channel is closed on unsubscribe.
type Subscriber struct {
	events chan domain.Event
}

// Events is the subscriber's ordered event feed.
func (s *Subscriber) Events() <-chan domain.Event {
	return s.events
}

// Broadcaster fans appended events out to live subscribers in sequence
// order and serves a bounded replay of the most recent events to
// late-joining subscribers. The ring buffer is an optimization over the
// durable log, not a second source of truth; it is rehydrated from the log
// on startup.
//
// All state is owned by the run loop; subscribe, unsubscribe and publish
// are serialized through the ops channel.
type Broadcaster struct {
	ops    chan broadcastOp
	done   chan struct{}
	subs   map[*Subscriber]struct{}
	ring   []domain.Event
	depth  int
	logger *slog.Logger

	metrics *metrics.ModerationMetrics
}

// NewBroadcaster creates a Broadcaster with the given replay depth. The
// metrics set is optional.
func NewBroadcaster(depth int, logger *slog.Logger, m *metrics.ModerationMetrics) *Broadcaster {
	return &Broadcaster{
		ops:     make(chan broadcastOp, 256),
		done:    make(chan struct{}),
		subs:    make(map[*Subscriber]struct{}),
		depth:   depth,
		logger:  logger.With("component", "broadcaster"),
		metrics: m,
	}
}

// Rehydrate seeds the replay ring from the durable log. Events must be in
// ascending sequence order. Call before Run.
func (b *Broadcaster) Rehydrate(events []domain.Event) {
	if len(events) > b.depth {
		events = events[len(events)-b.depth:]
	}
	b.ring = append(b.ring[:0], events...)
}

// Run processes broadcaster operations until the context is cancelled, then
// closes all subscriber channels.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for sub := range b.subs {
				close(sub.events)
			}
			b.subs = make(map[*Subscriber]struct{})
			b.setGauge()
			// Unblocks producers that arrive after the loop has exited.
			close(b.done)
			return
		case op := <-b.ops:
			switch op.op {
			case opSubscribe:
				// Replay first so live events land behind the backfill. The
				// channel is sized to hold a full replay without blocking.
				for _, e := range b.ring {
					op.sub.events <- e
				}
				b.subs[op.sub] = struct{}{}
				b.setGauge()
				b.logger.Debug("subscriber connected", "replayed", len(b.ring), "subscribers", len(b.subs))
			case opUnsubscribe:
				if _, ok := b.subs[op.sub]; ok {
					delete(b.subs, op.sub)
					close(op.sub.events)
					b.setGauge()
				}
			case opPublish:
				b.ring = append(b.ring, op.event)
				if len(b.ring) > b.depth {
					b.ring = b.ring[len(b.ring)-b.depth:]
				}
				for sub := range b.subs {
					select {
					case sub.events <- op.event:
					default:
						// Slow subscriber; delivery is at-most-once and it
						// can recover the gap from the replay on reconnect.
						b.logger.Warn("subscriber channel full, dropping event", "seq", op.event.Seq)
					}
				}
			}
		}
	}
}

// Subscribe registers a new live subscriber. The returned subscriber's
// channel first yields the replay buffer, then live events. After the run
// loop has stopped the channel comes back already closed.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{events: make(chan domain.Event, b.depth+256)}
	select {
	case <-b.done:
		close(sub.events)
		return sub
	default:
	}
	select {
	case b.ops <- broadcastOp{op: opSubscribe, sub: sub}:
	case <-b.done:
		close(sub.events)
	}
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// after the run loop has stopped.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	select {
	case b.ops <- broadcastOp{op: opUnsubscribe, sub: sub}:
	case <-b.done:
	}
}

// Publish fans out one appended event. Call only after the event is durable;
// events must be published in append order. Events published after the run
// loop has stopped are discarded.
func (b *Broadcaster) Publish(event domain.Event) {
	select {
	case b.ops <- broadcastOp{op: opPublish, event: event}:
	case <-b.done:
	}
}

func (b *Broadcaster) setGauge() {
	if b.metrics != nil {
		b.metrics.Subscribers.Set(float64(len(b.subs)))
	}
}
