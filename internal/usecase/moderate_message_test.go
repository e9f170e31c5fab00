package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain/mocks"
)

type pipelineFixture struct {
	handler  *ModerateMessage
	settings *mocks.MockSettingsRepository
	platform *mocks.MockChatPlatform
	events   *mocks.MockEventRepository
}

func newPipelineFixture(t *testing.T, settings map[string]string) *pipelineFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	settingsRepo := &mocks.MockSettingsRepository{}
	if settings != nil {
		settingsRepo.Settings = map[string]map[string]string{"g1": settings}
	}
	events := &mocks.MockEventRepository{}
	log, err := NewEventLog(context.Background(), events, logger, nil)
	if err != nil {
		t.Fatalf("failed to create event log: %v", err)
	}
	platform := &mocks.MockChatPlatform{}
	enforcer := NewEnforcer(platform, &mocks.MockWarningRepository{}, log, &mocks.MockNotifier{}, time.Second, logger, nil)

	handler := NewModerateMessage(
		NewPolicyStore(settingsRepo, 16, time.Minute, logger, nil),
		NewFilterPipeline(),
		NewSpamTracker(time.Minute, 100, logger, nil),
		enforcer,
		logger,
		nil,
	)
	return &pipelineFixture{handler: handler, settings: settingsRepo, platform: platform, events: events}
}

func TestModerateMessage_Handle(t *testing.T) {
	t.Run("Invite Link Ends As AutoMod Event", func(t *testing.T) {
		fx := newPipelineFixture(t, map[string]string{}) // defaults: inviteFilter on

		msg := domain.Message{
			ID:        "m1",
			GuildID:   "g1",
			ChannelID: "c1",
			AuthorID:  "u1",
			Content:   "FREE STUFF JOIN discord.gg/xyz",
			Timestamp: time.Now().UTC(),
		}
		if err := fx.handler.Handle(context.Background(), msg); err != nil {
			t.Fatalf("handle failed: %v", err)
		}

		if len(fx.events.Events) != 1 {
			t.Fatalf("expected one event, got %d", len(fx.events.Events))
		}
		event := fx.events.Events[0]
		if event.Type != domain.EventTypeAutoModAction {
			t.Errorf("expected automod_action, got %s", event.Type)
		}
		if event.Reason != "Discord invite link detected" {
			t.Errorf("unexpected reason: %q", event.Reason)
		}
		if len(fx.platform.CallsTo("DeleteMessage")) != 1 {
			t.Error("expected the offending message to be deleted")
		}
	})

	t.Run("Disabled Policy Is A No-Op", func(t *testing.T) {
		fx := newPipelineFixture(t, map[string]string{"enabled": "false"})

		msg := domain.Message{ID: "m1", GuildID: "g1", AuthorID: "u1", Content: "discord.gg/xyz", Timestamp: time.Now().UTC()}
		if err := fx.handler.Handle(context.Background(), msg); err != nil {
			t.Fatalf("handle failed: %v", err)
		}
		if len(fx.events.Events) != 0 {
			t.Error("disabled guilds must produce no events")
		}
		if len(fx.platform.Calls) != 0 {
			t.Error("disabled guilds must trigger no platform actions")
		}
	})

	t.Run("Clean Message Produces Nothing", func(t *testing.T) {
		fx := newPipelineFixture(t, map[string]string{})

		msg := domain.Message{ID: "m1", GuildID: "g1", AuthorID: "u1", Content: "good morning", Timestamp: time.Now().UTC()}
		if err := fx.handler.Handle(context.Background(), msg); err != nil {
			t.Fatalf("handle failed: %v", err)
		}
		if len(fx.events.Events) != 0 {
			t.Errorf("expected no events, got %d", len(fx.events.Events))
		}
	})

	t.Run("Rapid Messages Trigger Spam Timeout", func(t *testing.T) {
		fx := newPipelineFixture(t, map[string]string{"spamThreshold": "3", "spamWindow": "5000"})

		base := time.Now().UTC()
		for i := 0; i < 3; i++ {
			msg := domain.Message{
				ID:        "m",
				GuildID:   "g1",
				AuthorID:  "u1",
				Content:   "hello",
				Timestamp: base.Add(time.Duration(i) * time.Second),
			}
			if err := fx.handler.Handle(context.Background(), msg); err != nil {
				t.Fatalf("handle failed: %v", err)
			}
		}

		if len(fx.events.Events) != 1 {
			t.Fatalf("expected one spam event, got %d", len(fx.events.Events))
		}
		event := fx.events.Events[0]
		if event.Type != domain.EventTypeAutoModTimeout {
			t.Errorf("expected automod_timeout, got %s", event.Type)
		}
		if event.Reason != "Spam detected" {
			t.Errorf("unexpected reason: %q", event.Reason)
		}
		calls := fx.platform.CallsTo("TimeoutMember")
		if len(calls) != 1 || calls[0].Duration != 5*time.Minute {
			t.Fatalf("unexpected timeout calls: %+v", calls)
		}
	})

	t.Run("Filtered Message Does Not Feed Spam Window", func(t *testing.T) {
		fx := newPipelineFixture(t, map[string]string{"spamThreshold": "3", "spamWindow": "5000", "linkFilter": "true"})

		base := time.Now().UTC()
		// Three link violations in quick succession: each is deleted, none
		// count toward the spam window, so no timeout follows.
		for i := 0; i < 3; i++ {
			msg := domain.Message{
				ID:        "m",
				GuildID:   "g1",
				AuthorID:  "u1",
				Content:   "see https://example.com",
				Timestamp: base.Add(time.Duration(i) * time.Second),
			}
			if err := fx.handler.Handle(context.Background(), msg); err != nil {
				t.Fatalf("handle failed: %v", err)
			}
		}

		if len(fx.platform.CallsTo("TimeoutMember")) != 0 {
			t.Error("filtered messages must not feed the spam window")
		}
		if got := len(fx.platform.CallsTo("DeleteMessage")); got != 3 {
			t.Errorf("expected 3 deletions, got %d", got)
		}
	})

	t.Run("Resolver Failure Degrades To Disabled", func(t *testing.T) {
		fx := newPipelineFixture(t, nil)
		fx.settings.GetErr = context.DeadlineExceeded

		msg := domain.Message{ID: "m1", GuildID: "g1", AuthorID: "u1", Content: "discord.gg/xyz", Timestamp: time.Now().UTC()}
		if err := fx.handler.Handle(context.Background(), msg); err != nil {
			t.Fatalf("degraded policy must not fail the handler: %v", err)
		}
		if len(fx.events.Events) != 0 {
			t.Error("degraded policy must produce no events")
		}
	})
}
