package eventpipeline

import (
	"context"
)

// EventSource defines the contract for a long-lived listener that turns
// inbound broker messages into Events.
type EventSource interface {
	// Events returns the read-only channel on which normalized events are
	// emitted, in the order the underlying messages were received.
	Events() <-chan Event
	// Start begins listening. Configuration and connection failures are
	// returned synchronously; Start does not retry.
	Start(ctx context.Context) error
	// Stop unsubscribes and releases the connection. It is idempotent and
	// safe to call before Start. No events are emitted after Stop returns.
	Stop(ctx context.Context) error
	// Done returns a channel that is closed once the source has fully shut
	// down, whether through Stop or a terminal transport failure.
	Done() <-chan struct{}
	// Err reports the terminal transport error that caused an unrequested
	// shutdown, or nil after a clean Stop.
	Err() error
}

// EventHandler is the boundary to the downstream rule-evaluation engine. The
// handler owns the event once the call returns. A non-nil error is reported
// by the dispatcher but does not stop delivery of subsequent events.
type EventHandler func(ctx context.Context, event *Event) error
