// Package notify dispatches operator events to delivery channels
// (Discord, Slack) asynchronously, with a bounded worker pool and a
// per-channel circuit breaker.
package notify

import (
	"context"

	"tubefeed/internal/infra/notifier"
)

// Channel is one notification delivery destination.
//
// Retry policy contract:
//   - Transient failures (5xx, network errors): retry with backoff (max 2 attempts)
//   - Rate limits (429): sleep for the retry_after duration, then retry
//   - Client errors (4xx except 429): no retry
//   - Context timeout: no retry
//
// Implementations must be safe for concurrent use and must respect
// context cancellation.
type Channel interface {
	// Name returns the channel identifier (lowercase, alphanumeric).
	// Used for logging, metrics labels, and health endpoints.
	Name() string

	// IsEnabled reports whether the channel is enabled via
	// configuration. Disabled channels are skipped during dispatching.
	IsEnabled() bool

	// Send delivers one event to this channel. It returns
	// ErrChannelDisabled when called on a disabled channel and
	// ErrInvalidEvent for a nil or kind-less event.
	Send(ctx context.Context, event *notifier.Event) error
}
