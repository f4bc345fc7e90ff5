package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// DiscordNotifier delivers events to a Discord channel webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordNotifier creates a DiscordNotifier. Discord allows bursts,
// so the limiter runs at 2 req/s with burst of 5.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(2.0, 5),
	}
}

// Embed colors: blurple for announcements, red for failures.
const (
	discordColorInfo  = 0x5865F2
	discordColorAlert = 0xED4245

	maxEmbedDescription     = 4096
	discordTruncationSuffix = "..."
)

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// discordErrorResponse carries retry_after (seconds) on 429 responses.
type discordErrorResponse struct {
	RetryAfter float64 `json:"retry_after"`
}

func (d *DiscordNotifier) buildPayload(event *Event) discordPayload {
	color := discordColorInfo
	if event.Severe() {
		color = discordColorAlert
	}

	embed := discordEmbed{
		Title:       truncateText(event.Title, 256, discordTruncationSuffix),
		URL:         event.URL,
		Description: truncateText(event.Body, maxEmbedDescription, discordTruncationSuffix),
		Color:       color,
	}
	if event.SourceName != "" {
		embed.Footer = &discordFooter{Text: event.SourceName}
	}
	if !event.OccurredAt.IsZero() {
		embed.Timestamp = event.OccurredAt.Format(time.RFC3339)
	}

	return discordPayload{Embeds: []discordEmbed{embed}}
}

func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, event *Event) error {
	jsonData, err := json.Marshal(d.buildPayload(event))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: discordRetryAfter(resp, body),
			Message:    "Discord rate limit exceeded",
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// discordRetryAfter prefers the JSON retry_after field, then the
// Retry-After header, then a 5s default.
func discordRetryAfter(resp *http.Response, body []byte) time.Duration {
	var discordErr discordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}
	return retryAfterFromHeader(resp)
}

// NotifyEvent implements the Notifier interface.
func (d *DiscordNotifier) NotifyEvent(ctx context.Context, event *Event) error {
	requestID := event.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return sendWithRetry(ctx, "discord", requestID, event, d.sendWebhookRequest)
}
