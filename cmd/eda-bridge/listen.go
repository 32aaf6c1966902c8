package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kubealex/kubealex.eda/pkg/eventpipeline"
	"github.com/kubealex/kubealex.eda/pkg/mqttsource"
	"github.com/kubealex/kubealex.eda/pkg/rulebook"
	"github.com/kubealex/kubealex.eda/pkg/service"
)

var (
	rulebookPath string
	httpPort     string
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Subscribe to the rulebook's sources and dispatch events",
	RunE:  runListen,
}

func init() {
	listenCmd.Flags().StringVar(&rulebookPath, "rulebook", "", "path to the rulebook YAML file (required)")
	listenCmd.Flags().StringVar(&httpPort, "http-port", ":8080", "ops HTTP listen address for /healthz and /metrics, empty to disable")
	_ = listenCmd.MarkFlagRequired("rulebook")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	rb, err := rulebook.Load(rulebookPath)
	if err != nil {
		return err
	}

	handler, err := buildHandler(rb)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if httpPort != "" {
		opsServer := service.NewServer(logger, httpPort)
		if err := opsServer.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = opsServer.Shutdown(shutdownCtx)
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(rb.Sources))

	for _, src := range rb.Sources {
		src := src
		sourceLogger := logger.With().Str("source", src.Name).Logger()
		supervisor, err := eventpipeline.NewSupervisor(
			func() (eventpipeline.EventSource, error) {
				return mqttsource.NewSource(nil, &src.MQTT, sourceLogger)
			},
			handler,
			rb.RestartDelay,
			sourceLogger,
		)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := supervisor.Run(runCtx); err != nil {
				errCh <- fmt.Errorf("source %s: %w", src.Name, err)
				cancel()
			}
		}()
	}

	logger.Info().Int("sources", len(rb.Sources)).Msg("Listening for events.")
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// buildHandler selects the event sink the rulebook asks for.
func buildHandler(rb *rulebook.Rulebook) (eventpipeline.EventHandler, error) {
	switch rb.Sink.Type {
	case "", rulebook.SinkTypeLog:
		return eventpipeline.NewLogSink(logger), nil
	case rulebook.SinkTypeWebhook:
		sink, err := eventpipeline.NewWebhookSink(rb.Sink.URL, nil, logger)
		if err != nil {
			return nil, err
		}
		return sink.Handle, nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", rb.Sink.Type)
	}
}
