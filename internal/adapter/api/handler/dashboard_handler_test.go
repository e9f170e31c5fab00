package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain/mocks"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"
)

type dashboardFixture struct {
	handler  *DashboardHandler
	events   *mocks.MockEventRepository
	settings *mocks.MockSettingsRepository
	platform *mocks.MockChatPlatform
	warnings *mocks.MockWarningRepository
	webhooks *mocks.MockWebhookRepository
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	events := &mocks.MockEventRepository{}
	log, err := usecase.NewEventLog(context.Background(), events, logger, nil)
	if err != nil {
		t.Fatalf("failed to create event log: %v", err)
	}

	settings := &mocks.MockSettingsRepository{}
	policies := usecase.NewPolicyStore(settings, 16, time.Minute, logger, nil)
	platform := &mocks.MockChatPlatform{}
	warnings := &mocks.MockWarningRepository{}
	webhooks := &mocks.MockWebhookRepository{}
	enforcer := usecase.NewEnforcer(platform, warnings, log, &mocks.MockNotifier{}, time.Second, logger, nil)
	spam := usecase.NewSpamTracker(time.Minute, 100, logger, nil)

	return &dashboardFixture{
		handler:  NewDashboardHandler(log, policies, enforcer, spam, warnings, webhooks, logger),
		events:   events,
		settings: settings,
		platform: platform,
		warnings: warnings,
		webhooks: webhooks,
	}
}

// serve routes the request through a mux so r.PathValue works.
func (fx *dashboardFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/logs", fx.handler.GetLogs)
	mux.HandleFunc("GET /api/stats", fx.handler.GetStats)
	mux.HandleFunc("GET /api/automod/{guildID}", fx.handler.GetAutomod)
	mux.HandleFunc("PUT /api/automod/{guildID}", fx.handler.UpdateAutomod)
	mux.HandleFunc("POST /api/action", fx.handler.PostAction)
	mux.HandleFunc("GET /api/warnings/{guildID}/{userID}", fx.handler.GetWarnings)
	mux.HandleFunc("PUT /api/webhook/{guildID}", fx.handler.PutWebhook)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestDashboardHandler_Logs(t *testing.T) {
	fx := newDashboardFixture(t)
	fx.events.Events = []domain.Event{
		{Seq: 1, Type: domain.EventTypeWarning, GuildID: "g1", UserID: "u1", Timestamp: time.Now().UTC()},
		{Seq: 2, Type: domain.EventTypeBan, GuildID: "g1", UserID: "u2", Timestamp: time.Now().UTC()},
	}

	t.Run("Returns Newest First", func(t *testing.T) {
		rr := fx.serve(httptest.NewRequest(http.MethodGet, "/api/logs?guild_id=g1", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", rr.Code)
		}
		var got []domain.Event
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		if len(got) != 2 || got[0].Seq != 2 {
			t.Fatalf("unexpected events: %+v", got)
		}
	})

	t.Run("Filters By Type", func(t *testing.T) {
		rr := fx.serve(httptest.NewRequest(http.MethodGet, "/api/logs?type=ban", nil))
		var got []domain.Event
		_ = json.Unmarshal(rr.Body.Bytes(), &got)
		if len(got) != 1 || got[0].Type != domain.EventTypeBan {
			t.Fatalf("unexpected events: %+v", got)
		}
	})

	t.Run("Rejects Bad Limit", func(t *testing.T) {
		rr := fx.serve(httptest.NewRequest(http.MethodGet, "/api/logs?limit=abc", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", rr.Code)
		}
	})
}

func TestDashboardHandler_Automod(t *testing.T) {
	t.Run("Get Returns Defaults For Unknown Guild", func(t *testing.T) {
		fx := newDashboardFixture(t)
		rr := fx.serve(httptest.NewRequest(http.MethodGet, "/api/automod/g1", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", rr.Code)
		}
		var policy domain.Policy
		if err := json.Unmarshal(rr.Body.Bytes(), &policy); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		if !policy.Enabled || policy.SpamThreshold != 5 {
			t.Fatalf("unexpected policy: %+v", policy)
		}
	})

	t.Run("Update Round-Trips", func(t *testing.T) {
		fx := newDashboardFixture(t)
		body := bytes.NewBufferString(`{"spamThreshold": 3, "linkFilter": true}`)
		rr := fx.serve(httptest.NewRequest(http.MethodPut, "/api/automod/g1", body))
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", rr.Code)
		}
		var policy domain.Policy
		_ = json.Unmarshal(rr.Body.Bytes(), &policy)
		if policy.SpamThreshold != 3 || !policy.LinkFilter {
			t.Fatalf("update not applied: %+v", policy)
		}
	})

	t.Run("Empty Update Is Rejected", func(t *testing.T) {
		fx := newDashboardFixture(t)
		rr := fx.serve(httptest.NewRequest(http.MethodPut, "/api/automod/g1", bytes.NewBufferString(`{}`)))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", rr.Code)
		}
	})
}

func TestDashboardHandler_Action(t *testing.T) {
	t.Run("Warn Creates Event", func(t *testing.T) {
		fx := newDashboardFixture(t)
		body := bytes.NewBufferString(`{"action": "warn", "guild_id": "g1", "user_id": "u1", "moderator_id": "mod7", "reason": "spam"}`)
		rr := fx.serve(httptest.NewRequest(http.MethodPost, "/api/action", body))
		if rr.Code != http.StatusCreated {
			t.Fatalf("unexpected status: %d, body: %s", rr.Code, rr.Body.String())
		}
		var event domain.Event
		_ = json.Unmarshal(rr.Body.Bytes(), &event)
		if event.Seq != 1 || event.Type != domain.EventTypeWarning {
			t.Fatalf("unexpected event: %+v", event)
		}
		if len(fx.warnings.Warnings) != 1 {
			t.Error("expected a recorded warning")
		}
	})

	t.Run("Invalid Action Is 400", func(t *testing.T) {
		fx := newDashboardFixture(t)
		body := bytes.NewBufferString(`{"action": "nuke", "guild_id": "g1", "user_id": "u1", "moderator_id": "mod7"}`)
		rr := fx.serve(httptest.NewRequest(http.MethodPost, "/api/action", body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", rr.Code)
		}
		if len(fx.events.Events) != 0 {
			t.Error("invalid commands must not create events")
		}
	})
}

func TestDashboardHandler_Warnings(t *testing.T) {
	fx := newDashboardFixture(t)
	_ = fx.warnings.InsertWarning(context.Background(), domain.Warning{
		UserID: "u1", GuildID: "g1", ModeratorID: "mod7", Reason: "spam", Timestamp: time.Now().UTC(),
	})

	rr := fx.serve(httptest.NewRequest(http.MethodGet, "/api/warnings/g1/u1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var got struct {
		Count    int              `json:"count"`
		Warnings []domain.Warning `json:"warnings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if got.Count != 1 || len(got.Warnings) != 1 || got.Warnings[0].Reason != "spam" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestDashboardHandler_Webhook(t *testing.T) {
	fx := newDashboardFixture(t)
	body := bytes.NewBufferString(`{"url": "https://hooks.example.com/abc", "added_by": "mod7"}`)
	rr := fx.serve(httptest.NewRequest(http.MethodPut, "/api/webhook/g1", body))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	url, _ := fx.webhooks.GetWebhookURL(context.Background(), "g1")
	if url != "https://hooks.example.com/abc" {
		t.Fatalf("webhook not stored: %q", url)
	}
}
