package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// MockSettingsRepository is an in-memory domain.SettingsRepository for testing.
type MockSettingsRepository struct {
	mu        sync.Mutex
	Settings  map[string]map[string]string // guildID -> key -> value
	GetErr    error
	UpsertErr error
	GetCalls  int
}

func (m *MockSettingsRepository) GetSettings(ctx context.Context, guildID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	out := make(map[string]string, len(m.Settings[guildID]))
	for k, v := range m.Settings[guildID] {
		out[k] = v
	}
	return out, nil
}

func (m *MockSettingsRepository) UpsertSettings(ctx context.Context, guildID string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if m.Settings == nil {
		m.Settings = make(map[string]map[string]string)
	}
	if m.Settings[guildID] == nil {
		m.Settings[guildID] = make(map[string]string)
	}
	for k, v := range values {
		m.Settings[guildID][k] = v
	}
	return nil
}

// MockEventRepository is an in-memory domain.EventRepository for testing.
type MockEventRepository struct {
	mu        sync.Mutex
	Events    []domain.Event
	InsertErr error
	QueryErr  error
	MaxSeq    uint64
	MaxSeqErr error
}

func (m *MockEventRepository) InsertEvent(ctx context.Context, event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEventRepository) QueryEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	var out []domain.Event
	for i := len(m.Events) - 1; i >= 0; i-- {
		e := m.Events[i]
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.GuildID != "" && e.GuildID != filter.GuildID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID && e.ModeratorID != filter.UserID {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockEventRepository) MaxSequence(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaxSeqErr != nil {
		return 0, m.MaxSeqErr
	}
	max := m.MaxSeq
	for _, e := range m.Events {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max, nil
}

// MockWarningRepository is an in-memory domain.WarningRepository for testing.
type MockWarningRepository struct {
	mu        sync.Mutex
	Warnings  []domain.Warning
	InsertErr error
}

func (m *MockWarningRepository) InsertWarning(ctx context.Context, warning domain.Warning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	warning.ID = int64(len(m.Warnings) + 1)
	warning.Active = true
	m.Warnings = append(m.Warnings, warning)
	return nil
}

func (m *MockWarningRepository) CountActiveWarnings(ctx context.Context, userID, guildID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, w := range m.Warnings {
		if w.Active && w.UserID == userID && w.GuildID == guildID {
			count++
		}
	}
	return count, nil
}

func (m *MockWarningRepository) ListActiveWarnings(ctx context.Context, userID, guildID string, limit int) ([]domain.Warning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Warning
	for i := len(m.Warnings) - 1; i >= 0; i-- {
		w := m.Warnings[i]
		if !w.Active || w.UserID != userID || w.GuildID != guildID {
			continue
		}
		out = append(out, w)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// MockWebhookRepository is an in-memory domain.WebhookRepository for testing.
type MockWebhookRepository struct {
	mu   sync.Mutex
	URLs map[string]string
}

func (m *MockWebhookRepository) GetWebhookURL(ctx context.Context, guildID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.URLs[guildID], nil
}

func (m *MockWebhookRepository) UpsertWebhookURL(ctx context.Context, guildID, url, addedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.URLs == nil {
		m.URLs = make(map[string]string)
	}
	m.URLs[guildID] = url
	return nil
}

// PlatformCall records one invocation of the mock chat platform.
type PlatformCall struct {
	Method    string
	GuildID   string
	ChannelID string
	UserID    string
	MessageID string
	Reason    string
	Duration  time.Duration
	Days      int
}

// MockChatPlatform is a recording domain.ChatPlatform for testing. Each
// method can be made to fail independently.
type MockChatPlatform struct {
	mu         sync.Mutex
	Calls      []PlatformCall
	DeleteErr  error
	TimeoutErr error
	KickErr    error
	BanErr     error
	NotifyErr  error
}

func (m *MockChatPlatform) record(call PlatformCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallsTo returns the recorded calls for one method.
func (m *MockChatPlatform) CallsTo(method string) []PlatformCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PlatformCall
	for _, c := range m.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockChatPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.record(PlatformCall{Method: "DeleteMessage", ChannelID: channelID, MessageID: messageID})
	return m.DeleteErr
}

func (m *MockChatPlatform) TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error {
	m.record(PlatformCall{Method: "TimeoutMember", GuildID: guildID, UserID: userID, Duration: duration, Reason: reason})
	return m.TimeoutErr
}

func (m *MockChatPlatform) KickMember(ctx context.Context, guildID, userID, reason string) error {
	m.record(PlatformCall{Method: "KickMember", GuildID: guildID, UserID: userID, Reason: reason})
	return m.KickErr
}

func (m *MockChatPlatform) BanMember(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	m.record(PlatformCall{Method: "BanMember", GuildID: guildID, UserID: userID, Reason: reason, Days: deleteDays})
	return m.BanErr
}

func (m *MockChatPlatform) NotifyUser(ctx context.Context, userID, content string) error {
	m.record(PlatformCall{Method: "NotifyUser", UserID: userID, Reason: content})
	return m.NotifyErr
}

// MockNotifier records fire-and-forget webhook notifications.
type MockNotifier struct {
	mu     sync.Mutex
	Guilds []string
	Events []domain.Event
}

func (m *MockNotifier) Notify(guildID string, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Guilds = append(m.Guilds, guildID)
	m.Events = append(m.Events, event)
}

// MockMessageQueue is an in-memory domain.MessageQueue for testing.
type MockMessageQueue struct {
	mu         sync.Mutex
	Enqueued   []domain.Message
	ReadResult []domain.Message
	Acked      []string
	EnqueueErr error
	ReadErr    error
	AckErr     error
}

func (m *MockMessageQueue) Enqueue(ctx context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.Enqueued = append(m.Enqueued, msg)
	return nil
}

func (m *MockMessageQueue) ReadBatch(ctx context.Context, group, consumer string, count int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	batch := m.ReadResult
	m.ReadResult = nil
	return batch, nil
}

func (m *MockMessageQueue) Ack(ctx context.Context, group string, streamIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.Acked = append(m.Acked, streamIDs...)
	return nil
}
