package notify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/notifier"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

const (
	circuitBreakerThreshold = 5                // consecutive failures before opening
	circuitBreakerTimeout   = 5 * time.Minute  // duration to keep the breaker open
	workerPoolTimeout       = 5 * time.Second  // timeout for acquiring a worker slot
	notificationTimeout     = 30 * time.Second // timeout for one delivery
)

// Service dispatches operator events to all enabled channels. Dispatch
// is fire-and-forget: every method returns immediately and delivery
// failures are logged, never propagated, so a webhook outage can never
// stall the fetch pipeline.
type Service interface {
	// NotifyNewVideo announces a newly stored video.
	NotifyNewVideo(ctx context.Context, video *entity.Video, source *entity.Source) error

	// NotifySourceFailed reports a whole-source fetch failure.
	NotifySourceFailed(ctx context.Context, source *entity.Source, cause error) error

	// NotifyFetchError reports a non-source-scoped pipeline error.
	NotifyFetchError(ctx context.Context, scope string, cause error) error

	// NotifyIntegrityError reports a stored-data inconsistency found
	// during fetch, such as a video row missing its source link.
	NotifyIntegrityError(ctx context.Context, detail string) error

	// GetChannelHealth returns circuit breaker state per channel for
	// monitoring and health endpoints.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown waits for in-flight deliveries to finish or the context
	// to expire.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the health snapshot of one channel.
type ChannelHealthStatus struct {
	Name               string
	Enabled            bool
	CircuitBreakerOpen bool
	DisabledUntil      *time.Time // nil when the breaker is closed
}

type service struct {
	channels       []Channel
	workerPool     chan struct{} // semaphore limiting concurrent deliveries
	channelHealth  map[string]*channelHealth
	healthMu       sync.RWMutex
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// channelHealth is the circuit breaker state for one channel.
type channelHealth struct {
	consecutiveFailures int
	disabledUntil       time.Time
	mu                  sync.Mutex
}

// NewService creates a notification service dispatching to the given
// channels with at most maxConcurrent deliveries in flight.
func NewService(channels []Channel, maxConcurrent int) Service {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		channelHealth:  make(map[string]*channelHealth),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	for _, ch := range channels {
		svc.channelHealth[ch.Name()] = &channelHealth{}
	}

	return svc
}

// NotifyNewVideo implements Service.
func (s *service) NotifyNewVideo(ctx context.Context, video *entity.Video, source *entity.Source) error {
	if video == nil || source == nil {
		slog.Warn("invalid notification input",
			slog.Bool("nil_video", video == nil),
			slog.Bool("nil_source", source == nil))
		return nil
	}

	return s.dispatch(ctx, &notifier.Event{
		Kind:       notifier.KindNewVideo,
		Title:      video.Title,
		Body:       truncateBody(video.Description),
		URL:        video.URL,
		SourceName: source.Name,
		OccurredAt: time.Now(),
	})
}

// NotifySourceFailed implements Service.
func (s *service) NotifySourceFailed(ctx context.Context, source *entity.Source, cause error) error {
	if source == nil || cause == nil {
		return nil
	}

	return s.dispatch(ctx, &notifier.Event{
		Kind:       notifier.KindSourceFailed,
		Title:      fmt.Sprintf("Fetch failed for %s", source.Name),
		Body:       cause.Error(),
		URL:        source.URL,
		SourceName: source.Name,
		OccurredAt: time.Now(),
	})
}

// NotifyFetchError implements Service.
func (s *service) NotifyFetchError(ctx context.Context, scope string, cause error) error {
	if cause == nil {
		return nil
	}

	return s.dispatch(ctx, &notifier.Event{
		Kind:       notifier.KindFetchError,
		Title:      fmt.Sprintf("Fetch error: %s", scope),
		Body:       cause.Error(),
		OccurredAt: time.Now(),
	})
}

// NotifyIntegrityError implements Service.
func (s *service) NotifyIntegrityError(ctx context.Context, detail string) error {
	if detail == "" {
		return nil
	}

	return s.dispatch(ctx, &notifier.Event{
		Kind:       notifier.KindIntegrityError,
		Title:      "Stored data integrity error",
		Body:       detail,
		OccurredAt: time.Now(),
	})
}

// dispatch fans the event out to every enabled channel in background
// goroutines. It never blocks on delivery and never returns a delivery
// error.
func (s *service) dispatch(ctx context.Context, event *notifier.Event) error {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
	}
	event.RequestID = requestID

	enabledCount := 0
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabledCount++
		}
	}
	SetChannelsEnabled(float64(enabledCount))

	if enabledCount == 0 {
		slog.Debug("no notification channels enabled",
			slog.String("request_id", requestID),
			slog.String("kind", event.Kind))
		return nil
	}

	slog.Info("dispatching notification",
		slog.String("request_id", requestID),
		slog.String("kind", event.Kind),
		slog.String("title", event.Title),
		slog.Int("enabled_channels", enabledCount))

	for _, ch := range s.channels {
		if ch.IsEnabled() {
			channel := ch
			s.wg.Add(1)
			go s.notifyChannel(requestID, channel, event)
		}
	}

	return nil
}

// notifyChannel delivers one event to one channel in a goroutine.
func (s *service) notifyChannel(requestID string, channel Channel, event *notifier.Event) {
	defer s.wg.Done()

	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	// Acquire a worker slot, with a timeout so dispatch cannot pile up
	// goroutines behind a slow webhook.
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("notification dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "pool_full")
		return
	}

	health := s.getChannelHealth(channel.Name())
	health.mu.Lock()
	if time.Now().Before(health.disabledUntil) {
		slog.Warn("channel temporarily disabled by circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Time("disabled_until", health.disabledUntil))
		health.mu.Unlock()
		RecordDropped(channel.Name(), "circuit_open")
		return
	}
	health.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	startTime := time.Now()
	RecordDispatch(channel.Name())

	err := channel.Send(ctx, event)
	duration := time.Since(startTime)

	health.mu.Lock()
	if err != nil {
		health.consecutiveFailures++
		if health.consecutiveFailures >= circuitBreakerThreshold {
			health.disabledUntil = time.Now().Add(circuitBreakerTimeout)
			slog.Error("circuit breaker opened for channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Int("consecutive_failures", health.consecutiveFailures))
			RecordCircuitBreakerOpen(channel.Name())
		}
	} else {
		health.consecutiveFailures = 0
	}
	health.mu.Unlock()

	if err != nil {
		RecordFailure(channel.Name(), duration)
		slog.Warn("channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("kind", event.Kind),
			slog.String("title", event.Title),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	} else {
		RecordSuccess(channel.Name(), duration)
		slog.Info("channel notification sent",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.String("kind", event.Kind),
			slog.Duration("send_duration", duration))
	}
}

func (s *service) getChannelHealth(channelName string) *channelHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.channelHealth[channelName]
}

// GetChannelHealth implements Service.
func (s *service) GetChannelHealth() []ChannelHealthStatus {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()

	statuses := make([]ChannelHealthStatus, 0, len(s.channels))

	for _, ch := range s.channels {
		health := s.channelHealth[ch.Name()]

		health.mu.Lock()
		var disabledUntil *time.Time
		circuitBreakerOpen := false
		if time.Now().Before(health.disabledUntil) {
			circuitBreakerOpen = true
			until := health.disabledUntil
			disabledUntil = &until
		}
		health.mu.Unlock()

		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: circuitBreakerOpen,
			DisabledUntil:      disabledUntil,
		})
	}

	return statuses
}

// Shutdown implements Service.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down notification service")

	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}

const maxNotificationBodyLength = 500

func truncateBody(text string) string {
	if len(text) <= maxNotificationBodyLength {
		return text
	}
	return text[:maxNotificationBodyLength-3] + "..."
}
