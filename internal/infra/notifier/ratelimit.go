package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound webhook deliveries with a token bucket so
// a burst of new videos cannot trip the provider's own rate limits.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter returns a limiter sustaining requestsPerSecond with
// the given burst capacity. Slack incoming webhooks document roughly
// one message per second; Discord tolerates short bursts.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or ctx is canceled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
