package usecase

import (
	"context"
	"log/slog"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const defaultReadBatchSize = 100

// ProcessMessages drains the inbound message stream and runs each message
// through the moderation pipeline, acknowledging messages once handled.
type ProcessMessages struct {
	queue    domain.MessageQueue
	moderate *ModerateMessage
	logger   *slog.Logger
	group    string
	consumer string
}

// NewProcessMessages creates the stream consumer use case.
func NewProcessMessages(queue domain.MessageQueue, moderate *ModerateMessage, logger *slog.Logger, group, consumer string) *ProcessMessages {
	return &ProcessMessages{
		queue:    queue,
		moderate: moderate,
		logger:   logger,
		group:    group,
		consumer: consumer,
	}
}

// ProcessBatch reads one batch off the stream and moderates each message in
// delivery order. A message whose processing fails is still acknowledged:
// the failure is already logged and one bad message must never wedge the
// stream.
func (uc *ProcessMessages) ProcessBatch(ctx context.Context) (int, error) {
	messages, err := uc.queue.ReadBatch(ctx, uc.group, uc.consumer, defaultReadBatchSize)
	if err != nil {
		uc.logger.Error("failed to read message batch", "error", err)
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	streamIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		if err := uc.moderate.Handle(ctx, msg); err != nil {
			uc.logger.Error("failed to moderate message", "error", err, "message_id", msg.ID, "guild_id", msg.GuildID)
		}
		if msg.StreamID != "" {
			streamIDs = append(streamIDs, msg.StreamID)
		}
	}

	if err := uc.queue.Ack(ctx, uc.group, streamIDs...); err != nil {
		uc.logger.Error("failed to acknowledge messages", "error", err)
		return 0, err
	}

	return len(messages), nil
}
