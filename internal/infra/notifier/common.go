package notifier

import (
	"errors"
	"fmt"
	"time"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Webhook error classes shared by the Slack and Discord notifiers. The
// delivery loop treats each class differently: 429 waits out the
// advertised delay, other 4xx aborts, 5xx and transport errors retry.

// RateLimitError is a 429 from the webhook service, carrying its
// Retry-After delay.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError is a non-429 4xx: the payload or webhook URL is wrong
// and retrying cannot fix it.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError is a 5xx from the webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

func is429Error(err error) (*RateLimitError, bool) {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr, true
	}
	return nil, false
}

// isRetryableError reports whether a delivery error is transient.
// Unclassified errors are assumed to be transport failures and retried.
func isRetryableError(err error) bool {
	var (
		clientErr    *ClientError
		rateLimitErr *RateLimitError
	)
	switch {
	case errors.As(err, &clientErr):
		return false
	case errors.As(err, &rateLimitErr):
		return false
	default:
		return true
	}
}

// truncateText cuts text to maxLength, appending suffix when a cut
// happened. Webhook services reject oversized fields outright.
func truncateText(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}
	truncateAt := maxLength - len(suffix)
	if truncateAt < 0 {
		truncateAt = 0
	}
	return text[:truncateAt] + suffix
}
