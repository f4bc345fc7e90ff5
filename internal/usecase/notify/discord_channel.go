package notify

import (
	"context"

	"tubefeed/internal/infra/notifier"
)

// DiscordChannel adapts the infrastructure DiscordNotifier to the
// Channel interface used by the dispatch service.
type DiscordChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordChannel creates a Discord channel. When Discord is disabled
// in configuration a NoOpNotifier backs the channel.
func NewDiscordChannel(config notifier.DiscordConfig) *DiscordChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	} else {
		n = notifier.NewNoOpNotifier()
	}

	return &DiscordChannel{
		notifier: n,
		enabled:  config.Enabled,
	}
}

func (c *DiscordChannel) Name() string { return "discord" }

func (c *DiscordChannel) IsEnabled() bool { return c.enabled }

// Send delivers the event through the Discord webhook. The underlying
// notifier handles rate limiting, retries, and request ID logging.
func (c *DiscordChannel) Send(ctx context.Context, event *notifier.Event) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if event == nil || event.Kind == "" {
		return ErrInvalidEvent
	}
	return c.notifier.NotifyEvent(ctx, event)
}
