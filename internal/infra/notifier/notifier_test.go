package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(kind string) *Event {
	return &Event{
		Kind:       kind,
		Title:      "Channel fetch failed",
		Body:       "account terminated upstream",
		SourceName: "Some Channel",
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		RequestID:  "req-1",
	}
}

func TestSlackNotifier_NotifyEvent(t *testing.T) {
	t.Parallel()

	var got slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, n.NotifyEvent(context.Background(), testEvent(KindSourceFailed)))

	require.Len(t, got.Blocks, 2)
	assert.Contains(t, got.Blocks[0].Text.Text, ":warning:", "severe events carry the warning marker")
	assert.Contains(t, got.Blocks[1].Elements[0].Text, "Some Channel")
}

func TestSlackNotifier_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: 5 * time.Second})
	err := n.NotifyEvent(context.Background(), testEvent(KindFetchError))

	require.Error(t, err)
	var clientErr *ClientError
	assert.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestDiscordNotifier_NotifyEvent(t *testing.T) {
	t.Parallel()

	var got discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: 5 * time.Second})
	require.NoError(t, n.NotifyEvent(context.Background(), testEvent(KindNewVideo)))

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, discordColorInfo, got.Embeds[0].Color)
	assert.Equal(t, "Some Channel", got.Embeds[0].Footer.Text)
}

func TestDiscordNotifier_SevereEventColor(t *testing.T) {
	t.Parallel()

	n := NewDiscordNotifier(DiscordConfig{})
	payload := n.buildPayload(testEvent(KindIntegrityError))
	assert.Equal(t, discordColorAlert, payload.Embeds[0].Color)
}

func TestDiscordRetryAfter(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"7"}}}
	assert.Equal(t, 7*time.Second, discordRetryAfter(resp, nil))

	body := []byte(`{"retry_after": 2.5}`)
	assert.Equal(t, 2500*time.Millisecond, discordRetryAfter(resp, body), "JSON field wins over header")

	assert.Equal(t, 5*time.Second, discordRetryAfter(&http.Response{Header: http.Header{}}, nil))
}

func TestTruncateText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateText("short", 10, "..."))
	assert.Equal(t, "lon...", truncateText("long text here", 6, "..."))
}

func TestNoOpNotifier(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewNoOpNotifier().NotifyEvent(context.Background(), testEvent(KindNewVideo)))
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(100.0, 1)
	require.NoError(t, limiter.Allow(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Allow(ctx))
}
