package eventpipeline_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubealex/kubealex.eda/pkg/eventpipeline"
)

func noopHandler(_ context.Context, _ *eventpipeline.Event) error { return nil }

func TestSupervisor_RestartsTerminatedSource(t *testing.T) {
	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := func() (eventpipeline.EventSource, error) {
		count := builds.Add(1)
		source := newFakeSource(1)
		if count < 3 {
			// Fail shortly after start to trigger a restart.
			go func() {
				time.Sleep(10 * time.Millisecond)
				source.terminate(fmt.Errorf("broker connection lost"))
			}()
		} else {
			cancel()
		}
		return source, nil
	}

	supervisor, err := eventpipeline.NewSupervisor(factory, noopHandler, time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	err = supervisor.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, builds.Load(), int32(3), "terminated sources should be replaced")
}

func TestSupervisor_NoRestartWhenDisabled(t *testing.T) {
	terminalErr := fmt.Errorf("broker connection lost")
	factory := func() (eventpipeline.EventSource, error) {
		source := newFakeSource(1)
		go func() {
			time.Sleep(10 * time.Millisecond)
			source.terminate(terminalErr)
		}()
		return source, nil
	}

	supervisor, err := eventpipeline.NewSupervisor(factory, noopHandler, 0, zerolog.Nop())
	require.NoError(t, err)

	err = supervisor.Run(context.Background())
	require.ErrorIs(t, err, terminalErr)
}

func TestSupervisor_StopsOnContextCancel(t *testing.T) {
	factory := func() (eventpipeline.EventSource, error) {
		return newFakeSource(1), nil
	}
	supervisor, err := eventpipeline.NewSupervisor(factory, noopHandler, time.Second, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- supervisor.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop on context cancellation")
	}
}

func TestSupervisor_FactoryErrorPropagates(t *testing.T) {
	factory := func() (eventpipeline.EventSource, error) {
		return nil, fmt.Errorf("bad configuration")
	}
	supervisor, err := eventpipeline.NewSupervisor(factory, noopHandler, 0, zerolog.Nop())
	require.NoError(t, err)

	err = supervisor.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad configuration")
}
