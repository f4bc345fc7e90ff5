package notifier

import "context"

// NoOpNotifier is a no-operation implementation of the Notifier
// interface, used when a channel is disabled to avoid nil checks.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyEvent does nothing and returns nil immediately.
func (n *NoOpNotifier) NotifyEvent(_ context.Context, _ *Event) error {
	return nil
}
