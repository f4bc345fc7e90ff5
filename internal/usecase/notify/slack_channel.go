package notify

import (
	"context"

	"tubefeed/internal/infra/notifier"
)

// SlackChannel adapts the infrastructure SlackNotifier to the Channel
// interface used by the dispatch service.
type SlackChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewSlackChannel creates a Slack channel. When Slack is disabled in
// configuration a NoOpNotifier backs the channel so the Channel
// contract is always satisfied.
func NewSlackChannel(config notifier.SlackConfig) *SlackChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	} else {
		n = notifier.NewNoOpNotifier()
	}

	return &SlackChannel{
		notifier: n,
		enabled:  config.Enabled,
	}
}

func (c *SlackChannel) Name() string { return "slack" }

func (c *SlackChannel) IsEnabled() bool { return c.enabled }

// Send delivers the event through the Slack webhook. The underlying
// notifier handles rate limiting, retries, and request ID logging.
func (c *SlackChannel) Send(ctx context.Context, event *notifier.Event) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if event == nil || event.Kind == "" {
		return ErrInvalidEvent
	}
	return c.notifier.NotifyEvent(ctx, event)
}
