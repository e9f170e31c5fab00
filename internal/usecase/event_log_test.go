package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain/mocks"
)

func newTestEventLog(t *testing.T, repo *mocks.MockEventRepository) *EventLog {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log, err := NewEventLog(context.Background(), repo, logger, nil)
	if err != nil {
		t.Fatalf("failed to create event log: %v", err)
	}
	return log
}

func TestEventLog_Append(t *testing.T) {
	t.Run("Assigns Increasing Sequence Ids", func(t *testing.T) {
		repo := &mocks.MockEventRepository{}
		log := newTestEventLog(t, repo)

		first, err := log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeWarning})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		second, err := log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeBan})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if first.Seq != 1 || second.Seq != 2 {
			t.Errorf("expected seq 1,2 got %d,%d", first.Seq, second.Seq)
		}
		if first.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	})

	t.Run("Resumes From Persisted Max", func(t *testing.T) {
		repo := &mocks.MockEventRepository{MaxSeq: 41}
		log := newTestEventLog(t, repo)

		event, err := log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeKick})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if event.Seq != 42 {
			t.Errorf("expected seq 42, got %d", event.Seq)
		}
	})

	t.Run("Concurrent Appends Are Gapless", func(t *testing.T) {
		repo := &mocks.MockEventRepository{}
		log := newTestEventLog(t, repo)

		const n = 200
		var wg sync.WaitGroup
		seqs := make(chan uint64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				event, err := log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeAutoModAction})
				if err != nil {
					t.Errorf("append failed: %v", err)
					return
				}
				seqs <- event.Seq
			}()
		}
		wg.Wait()
		close(seqs)

		var got []uint64
		for seq := range seqs {
			got = append(got, seq)
		}
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		if len(got) != n {
			t.Fatalf("expected %d events, got %d", n, len(got))
		}
		for i, seq := range got {
			if seq != uint64(i+1) {
				t.Fatalf("sequence not gapless at index %d: got %d", i, seq)
			}
		}
	})

	t.Run("Failed Append Does Not Burn An Id", func(t *testing.T) {
		repo := &mocks.MockEventRepository{}
		log := newTestEventLog(t, repo)

		repo.InsertErr = errors.New("disk full")
		if _, err := log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeWarning}); err == nil {
			t.Fatal("expected append error")
		}

		repo.InsertErr = nil
		event, err := log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeWarning})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if event.Seq != 1 {
			t.Errorf("expected the failed id to be reissued, got %d", event.Seq)
		}
	})

	t.Run("Sink Sees Events In Sequence Order", func(t *testing.T) {
		repo := &mocks.MockEventRepository{}
		log := newTestEventLog(t, repo)

		var mu sync.Mutex
		var published []uint64
		log.AttachSink(func(e domain.Event) {
			mu.Lock()
			published = append(published, e.Seq)
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				log.Append(context.Background(), domain.EventDraft{Type: domain.EventTypeTimeout})
			}()
		}
		wg.Wait()

		for i, seq := range published {
			if seq != uint64(i+1) {
				t.Fatalf("publish order broke at index %d: got %d", i, seq)
			}
		}
	})
}

func TestEventLog_Query(t *testing.T) {
	repo := &mocks.MockEventRepository{}
	log := newTestEventLog(t, repo)

	for i := 0; i < 10; i++ {
		eventType := domain.EventTypeWarning
		if i%2 == 0 {
			eventType = domain.EventTypeBan
		}
		if _, err := log.Append(context.Background(), domain.EventDraft{Type: eventType, GuildID: "g1"}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	t.Run("Filters By Type Newest First", func(t *testing.T) {
		events, err := log.Query(context.Background(), domain.EventFilter{Type: domain.EventTypeBan})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(events) != 5 {
			t.Fatalf("expected 5 bans, got %d", len(events))
		}
		for i := 1; i < len(events); i++ {
			if events[i].Seq > events[i-1].Seq {
				t.Fatal("expected newest-first ordering")
			}
		}
	})

	t.Run("Limit Is Clamped", func(t *testing.T) {
		events, err := log.Query(context.Background(), domain.EventFilter{Limit: 100000})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(events) != 10 {
			t.Fatalf("expected all 10 events, got %d", len(events))
		}
	})
}

func TestEventLog_BrokenCounter(t *testing.T) {
	repo := &mocks.MockEventRepository{MaxSeqErr: errors.New("table missing")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewEventLog(context.Background(), repo, logger, nil); !errors.Is(err, domain.ErrSequenceUnavailable) {
		t.Fatalf("expected ErrSequenceUnavailable, got %v", err)
	}
}
