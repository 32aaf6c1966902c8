package eventpipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kubealex/kubealex.eda/pkg/metrics"
)

// DispatchService connects an EventSource to an EventHandler. A single
// dispatch goroutine reads from the source, so events reach the handler in
// exactly the order they were emitted. Handler failures are logged and
// counted; they never drop or reorder the stream.
type DispatchService struct {
	source  EventSource
	handler EventHandler
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(source EventSource, handler EventHandler, logger zerolog.Logger) (*DispatchService, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	return &DispatchService{
		source:  source,
		handler: handler,
		logger:  logger.With().Str("component", "DispatchService").Logger(),
	}, nil
}

// Start begins the service operation. It starts the source and then spawns
// the dispatch loop.
func (s *DispatchService) Start(ctx context.Context) error {
	s.logger.Info().Msg("Starting dispatch service...")

	if err := s.source.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event source: %w", err)
	}

	s.wg.Add(1)
	go s.dispatchLoop(ctx)

	s.logger.Info().Msg("Dispatch service started successfully.")
	return nil
}

// Stop gracefully shuts down the service: the source first, so no new events
// arrive, then the dispatch loop once the event channel drains.
func (s *DispatchService) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping dispatch service...")

	if err := s.source.Stop(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Error during source stop, continuing shutdown.")
	}

	loopDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(loopDone)
	}()

	select {
	case <-loopDone:
		s.logger.Info().Msg("Dispatch loop completed gracefully.")
	case <-ctx.Done():
		s.logger.Error().Err(ctx.Err()).Msg("Timeout waiting for dispatch loop to finish.")
		return ctx.Err()
	}

	s.logger.Info().Msg("Dispatch service stopped.")
	return nil
}

// dispatchLoop is the single consumer of the source channel. Keeping one
// reader preserves source ordering end-to-end.
func (s *DispatchService) dispatchLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Dispatch loop shutting down due to context cancellation.")
			return
		case event, ok := <-s.source.Events():
			if !ok {
				s.logger.Info().Msg("Source channel closed, dispatch loop exiting.")
				return
			}
			s.dispatchEvent(ctx, event)
		}
	}
}

// dispatchEvent hands one event to the handler. A handler error is terminal
// for that event only.
func (s *DispatchService) dispatchEvent(ctx context.Context, event Event) {
	s.logger.Debug().Str("event_id", event.ID).Str("topic", event.SourceTopic).Msg("Dispatching event.")

	if err := s.handler(ctx, &event); err != nil {
		metrics.HandlerErrors.Inc()
		s.logger.Error().Err(err).Str("event_id", event.ID).Msg("Handler failed to process event.")
		return
	}
	metrics.EventsDispatched.Inc()
}
