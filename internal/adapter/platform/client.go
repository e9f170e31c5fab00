package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

// Client implements the domain.ChatPlatform interface against the chat
// platform's REST API. Transient failures are retried with backoff; 4xx
// responses are mapped to domain errors so the enforcer can classify them.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

// NewClient creates a new platform REST client.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil

	return &Client{
		http:    rc,
		baseURL: baseURL,
		token:   token,
		logger:  logger.With("component", "platform_client"),
	}
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", url.PathEscape(channelID), url.PathEscape(messageID))
	return c.do(ctx, http.MethodDelete, path, nil, "")
}

func (c *Client) TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(guildID), url.PathEscape(userID))
	body := map[string]any{
		"communication_disabled_until": time.Now().UTC().Add(duration).Format(time.RFC3339),
	}
	return c.do(ctx, http.MethodPatch, path, body, reason)
}

func (c *Client) KickMember(ctx context.Context, guildID, userID, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(guildID), url.PathEscape(userID))
	return c.do(ctx, http.MethodDelete, path, nil, reason)
}

func (c *Client) BanMember(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	path := fmt.Sprintf("/guilds/%s/bans/%s", url.PathEscape(guildID), url.PathEscape(userID))
	body := map[string]any{"delete_message_days": deleteDays}
	return c.do(ctx, http.MethodPut, path, body, reason)
}

// NotifyUser opens (or reuses) a DM channel with the user and posts the
// content there.
func (c *Client) NotifyUser(ctx context.Context, userID, content string) error {
	var channel struct {
		ID string `json:"id"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/users/@me/channels",
		map[string]any{"recipient_id": userID}, &channel, "")
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}

	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channel.ID))
	return c.do(ctx, http.MethodPost, path, map[string]any{"content": content}, "")
}

// do issues one API call and discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body any, auditReason string) error {
	return c.doJSON(ctx, method, path, body, nil, auditReason)
}

// doJSON issues one API call, decoding the response into out when non-nil.
// A non-empty auditReason is forwarded in the audit log header.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, auditReason string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auditReason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.QueryEscape(auditReason))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrPermissionDenied)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
}
