package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/pii"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const notifyTimeout = 10 * time.Second

// Notifier implements domain.Notifier by POSTing appended events to the
// guild's configured webhook URL. Delivery is fire-and-forget and rate
// limited as a whole: when the limiter has no token the notification is
// dropped rather than queued, so a flood of violations cannot build an
// unbounded backlog.
type Notifier struct {
	repo     domain.WebhookRepository
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	redactor *pii.Redactor
	logger   *slog.Logger
	metrics  *metrics.ModerationMetrics
}

// NewNotifier creates a webhook notifier sending at most ratePerSec
// notifications per second with the given burst. Message content is run
// through the redactor before leaving the system.
func NewNotifier(repo domain.WebhookRepository, ratePerSec float64, burst int, redactor *pii.Redactor, logger *slog.Logger, m *metrics.ModerationMetrics) *Notifier {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = notifyTimeout
	rc.Logger = nil

	return &Notifier{
		repo:     repo,
		http:     rc,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), burst),
		redactor: redactor,
		logger:   logger.With("component", "webhook_notifier"),
		metrics:  m,
	}
}

// Notify delivers the event to the guild webhook off the hot path. Failures
// are logged and counted, never surfaced.
func (n *Notifier) Notify(guildID string, event domain.Event) {
	if !n.limiter.Allow() {
		n.logger.Warn("webhook notification dropped by rate limit", "guild_id", guildID, "seq", event.Seq)
		n.count("dropped")
		return
	}

	go n.deliver(guildID, event)
}

func (n *Notifier) deliver(guildID string, event domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	url, err := n.repo.GetWebhookURL(ctx, guildID)
	if err != nil {
		n.logger.Warn("failed to look up webhook URL", "guild_id", guildID, "error", err)
		n.count("failed")
		return
	}
	if url == "" {
		n.count("unconfigured")
		return
	}

	event.Content = n.redactor.Scrub(event.Content)
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal event for webhook", "seq", event.Seq, "error", err)
		n.count("failed")
		return
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		n.logger.Error("failed to build webhook request", "guild_id", guildID, "error", err)
		n.count("failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", "guild_id", guildID, "seq", event.Seq, "error", err)
		n.count("failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected event", "guild_id", guildID, "seq", event.Seq, "status", resp.StatusCode)
		n.count("failed")
		return
	}
	n.count("sent")
}

func (n *Notifier) count(status string) {
	if n.metrics != nil {
		n.metrics.WebhooksTotal.WithLabelValues(status).Inc()
	}
}
