package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain/mocks"
)

func newProcessFixture(t *testing.T, queue *mocks.MockMessageQueue) *ProcessMessages {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	events := &mocks.MockEventRepository{}
	log, err := NewEventLog(context.Background(), events, logger, nil)
	if err != nil {
		t.Fatalf("failed to create event log: %v", err)
	}
	enforcer := NewEnforcer(&mocks.MockChatPlatform{}, &mocks.MockWarningRepository{}, log, &mocks.MockNotifier{}, time.Second, logger, nil)
	moderate := NewModerateMessage(
		NewPolicyStore(&mocks.MockSettingsRepository{}, 16, time.Minute, logger, nil),
		NewFilterPipeline(),
		NewSpamTracker(time.Minute, 100, logger, nil),
		enforcer,
		logger,
		nil,
	)
	return NewProcessMessages(queue, moderate, logger, "group", "consumer")
}

func TestProcessMessages_ProcessBatch(t *testing.T) {
	t.Run("Processes And Acks In Order", func(t *testing.T) {
		queue := &mocks.MockMessageQueue{
			ReadResult: []domain.Message{
				{ID: "m1", GuildID: "g1", AuthorID: "u1", Content: "hello", StreamID: "1-0", Timestamp: time.Now().UTC()},
				{ID: "m2", GuildID: "g1", AuthorID: "u1", Content: "world", StreamID: "1-1", Timestamp: time.Now().UTC()},
			},
		}
		uc := newProcessFixture(t, queue)

		n, err := uc.ProcessBatch(context.Background())
		if err != nil {
			t.Fatalf("process batch failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 processed, got %d", n)
		}
		if len(queue.Acked) != 2 || queue.Acked[0] != "1-0" || queue.Acked[1] != "1-1" {
			t.Errorf("unexpected acks: %v", queue.Acked)
		}
	})

	t.Run("Empty Stream Is A No-Op", func(t *testing.T) {
		queue := &mocks.MockMessageQueue{}
		uc := newProcessFixture(t, queue)

		n, err := uc.ProcessBatch(context.Background())
		if err != nil || n != 0 {
			t.Fatalf("expected quiet no-op, got n=%d err=%v", n, err)
		}
		if len(queue.Acked) != 0 {
			t.Error("nothing should be acked")
		}
	})

	t.Run("Read Error Propagates", func(t *testing.T) {
		queue := &mocks.MockMessageQueue{ReadErr: errors.New("redis down")}
		uc := newProcessFixture(t, queue)

		if _, err := uc.ProcessBatch(context.Background()); err == nil {
			t.Fatal("expected read error")
		}
	})
}
