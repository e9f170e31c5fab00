package domain

import "time"

// Message is a single inbound chat message as delivered by the gateway
// adapter. The pipeline treats it as read-only; it is never persisted.
type Message struct {
	ID           string    `json:"message_id"`
	GuildID      string    `json:"guild_id"`
	ChannelID    string    `json:"channel_id"`
	AuthorID     string    `json:"author_id"`
	Content      string    `json:"content"`
	MentionCount int       `json:"mention_count"`
	Timestamp    time.Time `json:"timestamp"`

	// StreamID is the Redis Stream entry id, set when the message is read
	// back off the queue. Not part of the wire payload.
	StreamID string `json:"-"`
}
