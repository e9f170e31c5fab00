package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// IngestMessage accepts one chat message from the gateway adapter and
// enqueues it for the moderation worker. Enqueueing is the only durable
// step here; the caller never waits on pipeline completion.
type IngestMessage struct {
	queue  domain.MessageQueue
	logger *slog.Logger
}

// NewIngestMessage creates a new IngestMessage use case.
func NewIngestMessage(queue domain.MessageQueue, logger *slog.Logger) *IngestMessage {
	return &IngestMessage{queue: queue, logger: logger}
}

// Ingest enriches and buffers a message.
func (uc *IngestMessage) Ingest(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	if err := uc.queue.Enqueue(ctx, *msg); err != nil {
		uc.logger.Error("failed to enqueue message", "error", err, "message_id", msg.ID)
		return err
	}
	return nil
}
