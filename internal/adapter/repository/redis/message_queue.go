package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const messageStreamKey = "chat_messages"

// MessageQueue implements the domain.MessageQueue interface using Redis
// Streams. Messages are read through a consumer group so the moderation
// worker can be restarted without losing undelivered entries, and the stream
// preserves arrival order.
type MessageQueue struct {
	client *redis.Client
	logger *slog.Logger
}

// NewMessageQueue creates a new Redis-backed message queue and ensures the
// consumer group exists. Pass an empty group for enqueue-only use.
func NewMessageQueue(client *redis.Client, logger *slog.Logger, group string) (*MessageQueue, error) {
	q := &MessageQueue{
		client: client,
		logger: logger.With("component", "redis_queue"),
	}
	if group != "" {
		if err := q.setupConsumerGroup(context.Background(), group); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (q *MessageQueue) setupConsumerGroup(ctx context.Context, group string) error {
	err := q.client.XGroupCreateMkStream(ctx, messageStreamKey, group, "0").Err()
	if err != nil && !isRedisBusyGroupError(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Enqueue appends a chat message to the stream.
func (q *MessageQueue) Enqueue(ctx context.Context, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: messageStreamKey,
		Values: map[string]interface{}{"payload": payload},
	}
	if err := q.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

// ReadBatch reads up to count messages for a consumer group member. Returns
// nil when the stream is idle.
func (q *MessageQueue) ReadBatch(ctx context.Context, group, consumer string, count int) ([]domain.Message, error) {
	args := &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{messageStreamKey, ">"},
		Count:    int64(count),
		Block:    2 * time.Second,
	}

	streams, err := q.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to XREADGROUP from redis: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	entries := streams[0].Messages
	messages := make([]domain.Message, 0, len(entries))
	for _, entry := range entries {
		payload, ok := entry.Values["payload"].(string)
		if !ok {
			q.logger.Warn("invalid entry format in stream, skipping", "stream_id", entry.ID)
			continue
		}

		var msg domain.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			q.logger.Warn("failed to unmarshal message from stream, skipping", "stream_id", entry.ID, "error", err)
			continue
		}
		msg.StreamID = entry.ID
		messages = append(messages, msg)
	}

	return messages, nil
}

// Ack marks stream entries as processed.
func (q *MessageQueue) Ack(ctx context.Context, group string, streamIDs ...string) error {
	if len(streamIDs) == 0 {
		return nil
	}
	if err := q.client.XAck(ctx, messageStreamKey, group, streamIDs...).Err(); err != nil {
		return fmt.Errorf("failed to XACK messages in redis: %w", err)
	}
	return nil
}

func isRedisBusyGroupError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
