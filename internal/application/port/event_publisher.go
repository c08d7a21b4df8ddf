package port

import "context"

// EventPublisher pushes pipeline events to an external bus (Port).
// Implementations are fire-and-forget from the cycle's perspective: publish
// failures are logged, never propagated.
type EventPublisher interface {
	// PublishEvent publishes an event under the given subject.
	PublishEvent(ctx context.Context, subject string, event interface{}) error

	// Close closes the underlying connection.
	Close() error
}
