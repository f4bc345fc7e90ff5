// Package notifier provides webhook delivery of operator events.
// It defines the Notifier interface which allows different delivery
// mechanisms (Discord, Slack) to be used interchangeably through
// dependency injection, plus a no-op implementation for when a channel
// is disabled.
package notifier

import (
	"context"
	"time"
)

// Event kinds.
const (
	KindNewVideo       = "new_video"
	KindSourceFailed   = "source_failed"
	KindFetchError     = "fetch_error"
	KindIntegrityError = "integrity_error"
)

// Event is one operator notification: either a new-video announcement
// or an error report from the fetch pipeline.
type Event struct {
	Kind       string
	Title      string
	Body       string
	URL        string
	SourceName string
	OccurredAt time.Time
	RequestID  string
}

// Severe reports whether the event describes a failure rather than an
// announcement.
func (e *Event) Severe() bool {
	return e.Kind != KindNewVideo
}

// Notifier delivers a single event to one destination.
// Implementations handle rate limiting, retries, and error logging
// internally and must respect context cancellation.
type Notifier interface {
	NotifyEvent(ctx context.Context, event *Event) error
}
