package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// SlackNotifier delivers events to Slack via an Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a SlackNotifier. The rate limiter is pinned
// to 1 request/second with burst of 1, the Slack webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// slackPayload is the Block Kit payload sent to the webhook.
type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string           `json:"type"`
	Text     *slackTextObject `json:"text,omitempty"`
	Elements []slackTextObject `json:"elements,omitempty"`
}

type slackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength  = 3000
	maxFallbackLength     = 150
	slackTruncationSuffix = "..."
)

// buildPayload renders an event as a section block plus a context line.
// Severe events get a warning prefix so they stand out in the channel.
func (s *SlackNotifier) buildPayload(event *Event) slackPayload {
	title := event.Title
	if event.Severe() {
		title = ":warning: " + title
	}

	fallback := truncateText(title, maxFallbackLength, slackTruncationSuffix)

	sectionText := "*" + title + "*"
	if event.URL != "" {
		sectionText = fmt.Sprintf("*<%s|%s>*", event.URL, title)
	}
	if event.Body != "" {
		sectionText += "\n\n" + event.Body
	}
	sectionText = truncateText(sectionText, maxSectionTextLength, slackTruncationSuffix)

	contextText := event.SourceName
	if !event.OccurredAt.IsZero() {
		contextText = fmt.Sprintf("%s • %s", event.SourceName, event.OccurredAt.Format(time.RFC3339))
	}

	return slackPayload{
		Text: fallback,
		Blocks: []slackBlock{
			{Type: "section", Text: &slackTextObject{Type: "mrkdwn", Text: sectionText}},
			{Type: "context", Elements: []slackTextObject{{Type: "mrkdwn", Text: contextText}}},
		},
	}
}

func (s *SlackNotifier) sendWebhookRequest(ctx context.Context, event *Event) error {
	jsonData, err := json.Marshal(s.buildPayload(event))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
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
			RetryAfter: retryAfterFromHeader(resp),
			Message:    "Slack rate limit exceeded",
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API client error: %s", string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API server error: %s", string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

func retryAfterFromHeader(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

// NotifyEvent implements the Notifier interface: rate limit, then send
// with bounded retry. 4xx errors fail immediately, 429 honors the
// retry_after, 5xx and network errors back off once.
func (s *SlackNotifier) NotifyEvent(ctx context.Context, event *Event) error {
	requestID := event.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return sendWithRetry(ctx, "slack", requestID, event, s.sendWebhookRequest)
}

// sendWithRetry is the retry loop shared by the webhook notifiers.
func sendWithRetry(
	ctx context.Context,
	channel, requestID string,
	event *Event,
	send func(context.Context, *Event) error,
) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := send(ctx, event)
		if err == nil {
			slog.Info("notification delivered",
				slog.String("channel", channel),
				slog.String("request_id", requestID),
				slog.String("kind", event.Kind),
				slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("webhook rate limit hit, backing off",
				slog.String("channel", channel),
				slog.String("request_id", requestID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))
			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("notification failed with non-retryable error",
				slog.String("channel", channel),
				slog.String("request_id", requestID),
				slog.Any("error", err))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("webhook request failed, retrying",
				slog.String("channel", channel),
				slog.String("request_id", requestID),
				slog.Any("error", err),
				slog.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("%s notification failed after %d attempts: %w", channel, maxAttempts, lastErr)
}
