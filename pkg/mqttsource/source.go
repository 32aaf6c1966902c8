package mqttsource

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/kubealex/kubealex.eda/pkg/eventpipeline"
	"github.com/kubealex/kubealex.eda/pkg/metrics"
)

// Source implements eventpipeline.EventSource for a single MQTT topic
// subscription. It owns its broker connection exclusively: the connection is
// opened by Start and released on every exit path, whether through Stop or a
// terminal transport failure.
//
// The source performs no reconnection of its own. A connection drop after a
// successful start tears the source down and is reported through Err; see
// eventpipeline.Supervisor for the host-side restart policy.
type Source struct {
	pahoClient mqtt.Client
	cfg        *Config
	logger     zerolog.Logger
	events     chan eventpipeline.Event
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.Mutex
	termErr error
}

// NewSource creates a new Source. It validates the configuration but does
// not connect until Start is called. Pass a nil client to have Start build
// one from the configuration; tests inject their own.
func NewSource(client mqtt.Client, cfg *Config, logger zerolog.Logger) (*Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfgCopy := *cfg
	cfgCopy.applyDefaults()

	return &Source{
		pahoClient: client,
		cfg:        &cfgCopy,
		logger:     logger.With().Str("component", "MQTTSource").Str("topic", cfgCopy.Topic).Logger(),
		events:     make(chan eventpipeline.Event, cfgCopy.ChannelCapacity),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Events returns the read-only channel on which normalized events are
// emitted in message receipt order.
func (s *Source) Events() <-chan eventpipeline.Event {
	return s.events
}

// Start connects to the broker and subscribes to the configured topic. A
// connection or subscription failure is returned synchronously and is not
// retried. On success the source listens until Stop or context cancellation.
func (s *Source) Start(ctx context.Context) error {
	if s.pahoClient == nil {
		opts, err := s.clientOptions()
		if err != nil {
			return err
		}
		s.pahoClient = mqtt.NewClient(opts)
	}

	s.logger.Info().Str("broker", s.cfg.BrokerURL()).Msg("Connecting to MQTT broker...")
	token := s.pahoClient.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnect, s.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	subToken := s.pahoClient.Subscribe(s.cfg.Topic, s.cfg.QoS, s.handleMessage)
	if !subToken.WaitTimeout(s.cfg.ConnectTimeout) {
		s.pahoClient.Disconnect(disconnectQuiesceMs)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribe, s.cfg.ConnectTimeout)
	}
	if err := subToken.Error(); err != nil {
		s.pahoClient.Disconnect(disconnectQuiesceMs)
		return fmt.Errorf("%w: %w", ErrSubscribe, err)
	}
	s.logger.Info().Msg("Subscribed to MQTT topic.")

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Shutdown signal received, stopping source.")
			_ = s.Stop(context.Background())
		case <-s.done:
		}
	}()

	return nil
}

// Stop unsubscribes and releases the broker connection. It is idempotent and
// safe to call before Start. No events are emitted after Stop returns.
func (s *Source) Stop(_ context.Context) error {
	s.shutdown(nil)
	return nil
}

// Done returns a channel closed once the source has fully shut down.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Err reports the terminal transport error behind an unrequested shutdown,
// or nil after a clean Stop.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termErr
}

// IsConnected reports the connection status of the underlying client.
func (s *Source) IsConnected() bool {
	return s.pahoClient != nil && s.pahoClient.IsConnected()
}

const disconnectQuiesceMs = 500

// shutdown is the single teardown path shared by Stop and the connection
// lost handler. The quiesce period on Disconnect lets in-flight message
// handlers complete before the event channel closes.
func (s *Source) shutdown(cause error) {
	s.stopOnce.Do(func() {
		if cause != nil {
			s.mu.Lock()
			s.termErr = cause
			s.mu.Unlock()
		}
		s.logger.Info().Msg("Stopping MQTT source...")
		close(s.quit)

		if s.pahoClient != nil && s.pahoClient.IsConnected() {
			if token := s.pahoClient.Unsubscribe(s.cfg.Topic); token.WaitTimeout(2*time.Second) && token.Error() != nil {
				s.logger.Warn().Err(token.Error()).Msg("Failed to unsubscribe from MQTT topic.")
			}
			s.pahoClient.Disconnect(disconnectQuiesceMs)
			s.logger.Info().Msg("MQTT client disconnected.")
		}

		close(s.events)
		close(s.done)
		s.logger.Info().Msg("MQTT source stopped.")
	})
}

// connectionLost records the cause and tears the source down. The host
// observes the termination through Done and Err.
func (s *Source) connectionLost(err error) {
	s.logger.Error().Err(err).Msg("MQTT connection lost, source is terminal.")
	s.shutdown(fmt.Errorf("%w: %w", ErrConnectionLost, err))
}

// handleMessage is the transport callback converting one inbound message
// into exactly one normalized event. The payload is copied because paho
// reuses its buffers. The channel send blocks under backpressure rather than
// drop; only a shutdown in progress abandons delivery.
func (s *Source) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	metrics.MessagesReceived.WithLabelValues(msg.Topic()).Inc()
	s.logger.Debug().Str("topic", msg.Topic()).Msg("Received MQTT message.")

	payloadCopy := make([]byte, len(msg.Payload()))
	copy(payloadCopy, msg.Payload())

	event := eventpipeline.NewEvent(msg.Topic(), payloadCopy)
	select {
	case s.events <- event:
		metrics.EventsEmitted.WithLabelValues(msg.Topic()).Inc()
	case <-s.quit:
		s.logger.Warn().Str("topic", msg.Topic()).Msg("Source is shutting down, dropping MQTT message.")
	}
}
