package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eda-bridge",
	Short: "Event-Driven Ansible glue tooling",
	Long: `eda-bridge bridges MQTT topics into an event-driven automation loop and
provisions the backing EDA Controller resources.

The listen command subscribes to the topics a rulebook defines and forwards
every message as a normalized event. The provision command applies a plan of
credentials, projects, decision environments and activations against the
controller API.`,
	Version:           "0.1.0",
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return nil
}
