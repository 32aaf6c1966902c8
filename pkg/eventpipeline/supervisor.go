package eventpipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kubealex/kubealex.eda/pkg/metrics"
)

// SourceFactory builds a fresh EventSource for each supervised run. Sources
// are single-use: once one terminates it is discarded and a new one is built.
type SourceFactory func() (EventSource, error)

// Supervisor is the host-side restart policy around an EventSource. The
// source itself treats a connection drop as terminal; the supervisor decides
// whether that ends the process or triggers a fresh source after a delay.
type Supervisor struct {
	factory      SourceFactory
	handler      EventHandler
	restartDelay time.Duration
	logger       zerolog.Logger
}

// NewSupervisor creates a Supervisor. A restartDelay of zero disables
// restarting: the first terminal source failure is returned to the caller.
func NewSupervisor(factory SourceFactory, handler EventHandler, restartDelay time.Duration, logger zerolog.Logger) (*Supervisor, error) {
	if factory == nil {
		return nil, fmt.Errorf("source factory cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	return &Supervisor{
		factory:      factory,
		handler:      handler,
		restartDelay: restartDelay,
		logger:       logger.With().Str("component", "Supervisor").Logger(),
	}, nil
}

// Run builds and dispatches sources until the context is cancelled. Startup
// failures are returned immediately; post-start terminal failures either end
// the run or, when a restart delay is configured, start a replacement source.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		source, err := s.factory()
		if err != nil {
			return fmt.Errorf("failed to build event source: %w", err)
		}

		dispatch, err := NewDispatchService(source, s.handler, s.logger)
		if err != nil {
			return err
		}
		if err := dispatch.Start(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := dispatch.Stop(stopCtx)
			cancel()
			return err
		case <-source.Done():
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = dispatch.Stop(stopCtx)
		cancel()

		cause := source.Err()
		if s.restartDelay <= 0 {
			s.logger.Error().Err(cause).Msg("Event source terminated and restarts are disabled.")
			return cause
		}

		metrics.SourceRestarts.Inc()
		s.logger.Warn().Err(cause).Dur("restart_delay", s.restartDelay).Msg("Event source terminated, restarting after delay.")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.restartDelay):
		}
	}
}
