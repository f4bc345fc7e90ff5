package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidEvent indicates a nil event or one missing its kind.
	ErrInvalidEvent = errors.New("invalid event data")

	// ErrNotificationDropped indicates that an event was dropped due to
	// worker pool saturation. Used for observability, never propagated.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")

	// ErrCircuitBreakerOpen indicates the per-channel breaker is open
	// and events for that channel are being rejected.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")
)
