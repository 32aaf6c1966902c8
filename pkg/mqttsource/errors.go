package mqttsource

import "errors"

var (
	// ErrInvalidConfig marks a configuration rejected before any connection
	// attempt is made.
	ErrInvalidConfig = errors.New("invalid mqtt source configuration")

	// ErrConnect marks a failed connection or authentication attempt at
	// startup. The source does not retry; restarting is host policy.
	ErrConnect = errors.New("mqtt broker connection failed")

	// ErrSubscribe marks a failed topic subscription at startup.
	ErrSubscribe = errors.New("mqtt topic subscription failed")

	// ErrConnectionLost marks a connection dropped after a successful start.
	// It is terminal for the source instance.
	ErrConnectionLost = errors.New("mqtt broker connection lost")
)
