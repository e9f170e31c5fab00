package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// EventRepository implements domain.EventRepository for PostgreSQL. The
// sequence id column is the primary key and is always supplied by the
// caller, so a duplicate insert fails loudly instead of silently renumbering.
type EventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEventRepository creates a new PostgreSQL event repository.
func NewEventRepository(db *sql.DB, logger *slog.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// InsertEvent writes one finalized event.
func (r *EventRepository) InsertEvent(ctx context.Context, event domain.Event) error {
	query := `
		INSERT INTO events (seq, type, guild_id, user_id, moderator_id, reason, content, created_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	payload := []byte(event.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx, query,
		event.Seq, event.Type, event.GuildID, event.UserID, event.ModeratorID,
		event.Reason, event.Content, event.Timestamp, payload,
	)
	if err != nil {
		return fmt.Errorf("insert event %d: %w", event.Seq, err)
	}
	return nil
}

// QueryEvents returns events matching the filter, newest first. The filter's
// UserID matches the subject or the moderator, mirroring how moderators look
// up both "actions on user X" and "actions by moderator X".
func (r *EventRepository) QueryEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.GuildID != "" {
		add("guild_id = $%d", filter.GuildID)
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("(user_id = $%d OR moderator_id = $%d)", len(args), len(args)))
	}
	if !filter.Since.IsZero() {
		add("created_at >= $%d", filter.Since)
	}

	query := `SELECT seq, type, guild_id, user_id, moderator_id, reason, content, created_at, payload FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY seq DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var payload []byte
		if err := rows.Scan(&e.Seq, &e.Type, &e.GuildID, &e.UserID, &e.ModeratorID,
			&e.Reason, &e.Content, &e.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}

// MaxSequence returns the highest persisted sequence id, or 0 for an empty log.
func (r *EventRepository) MaxSequence(ctx context.Context) (uint64, error) {
	var max uint64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("query max sequence: %w", err)
	}
	return max, nil
}
