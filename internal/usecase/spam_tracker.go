package usecase

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// spamWindow holds the recent message timestamps for one (guild, author)
// pair. All timestamps are inside the trailing policy window; pruning
// happens on every observe.
type spamWindow struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// SpamTracker maintains bounded sliding windows of message timestamps per
// (guild, author) pair and detects message-rate spam. Windows are evicted by
// a periodic sweep: first any pair idle past staleAfter, then, if the total
// count still exceeds maxTracked, the least-recently-active pairs.
type SpamTracker struct {
	mu      sync.Mutex
	windows map[string]*spamWindow

	staleAfter time.Duration
	maxTracked int

	logger  *slog.Logger
	metrics *metrics.ModerationMetrics
}

// NewSpamTracker creates a new SpamTracker. The metrics set is optional.
func NewSpamTracker(staleAfter time.Duration, maxTracked int, logger *slog.Logger, m *metrics.ModerationMetrics) *SpamTracker {
	return &SpamTracker{
		windows:    make(map[string]*spamWindow),
		staleAfter: staleAfter,
		maxTracked: maxTracked,
		logger:     logger.With("component", "spam_tracker"),
		metrics:    m,
	}
}

// Observe records one message from (guild, author) at the given time and
// returns a MessageSpam violation if the policy threshold is reached within
// the policy window. On a trigger the pair's window is dropped, so the next
// message starts a fresh count.
func (t *SpamTracker) Observe(msg domain.Message, now time.Time, policy domain.Policy) *domain.Violation {
	if policy.SpamThreshold <= 0 || policy.SpamWindowMs <= 0 {
		return nil
	}

	key := msg.GuildID + "/" + msg.AuthorID
	windowSpan := time.Duration(policy.SpamWindowMs) * time.Millisecond

	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[key]
	if !ok {
		w = &spamWindow{}
		t.windows[key] = w
	}

	// Prune entries that fell out of the trailing window, then record now.
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if now.Sub(ts) < windowSpan {
			kept = append(kept, ts)
		}
	}
	w.timestamps = append(kept, now)

	if len(w.timestamps) >= policy.SpamThreshold {
		delete(t.windows, key)
		t.updateGauge()
		return &domain.Violation{
			Kind:      domain.ViolationMessageSpam,
			Reason:    "Spam detected",
			GuildID:   msg.GuildID,
			UserID:    msg.AuthorID,
			ChannelID: msg.ChannelID,
			MessageID: msg.ID,
		}
	}

	w.lastSeen = now
	t.updateGauge()
	return nil
}

// Sweep evicts idle windows and enforces the global pair ceiling. Safe to
// run concurrently with Observe.
func (t *SpamTracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for key, w := range t.windows {
		if now.Sub(w.lastSeen) > t.staleAfter {
			delete(t.windows, key)
			evicted++
		}
	}

	if over := len(t.windows) - t.maxTracked; over > 0 {
		type pair struct {
			key      string
			lastSeen time.Time
		}
		pairs := make([]pair, 0, len(t.windows))
		for key, w := range t.windows {
			pairs = append(pairs, pair{key, w.lastSeen})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].lastSeen.Before(pairs[j].lastSeen)
		})
		for _, p := range pairs[:over] {
			delete(t.windows, p.key)
			evicted++
		}
	}

	t.updateGauge()
	return evicted
}

// TrackedPairs reports the number of live windows.
func (t *SpamTracker) TrackedPairs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// RunSweeper runs the eviction sweep on a fixed interval until the context
// is cancelled.
func (t *SpamTracker) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("stopping spam sweeper")
			return
		case <-ticker.C:
			if evicted := t.Sweep(time.Now()); evicted > 0 {
				t.logger.Debug("swept spam windows", "evicted", evicted, "remaining", t.TrackedPairs())
			}
		}
	}
}

func (t *SpamTracker) updateGauge() {
	if t.metrics != nil {
		t.metrics.SpamWindows.Set(float64(len(t.windows)))
	}
}
