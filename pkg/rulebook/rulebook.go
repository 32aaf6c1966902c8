// Package rulebook loads the host's source definitions: which broker topics
// to listen on and where the resulting events go.
package rulebook

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kubealex/kubealex.eda/pkg/mqttsource"
)

// SinkTypeLog writes events to the process log.
const SinkTypeLog = "log"

// SinkTypeWebhook forwards events to an external rule engine over HTTP.
const SinkTypeWebhook = "webhook"

// Source is one named event source definition.
type Source struct {
	Name string            `yaml:"name"`
	MQTT mqttsource.Config `yaml:"mqtt"`
}

// Sink selects where dispatched events are delivered.
type Sink struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

// Rulebook is the top-level listener configuration.
type Rulebook struct {
	Sources []Source `yaml:"sources"`
	Sink    Sink     `yaml:"sink"`
	// RestartDelay, when positive, restarts a terminated source after the
	// delay instead of ending the run.
	RestartDelay time.Duration `yaml:"restart_delay"`
}

// Load reads and validates a rulebook file. Unknown fields are rejected.
func Load(path string) (*Rulebook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rulebook file: %w", err)
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var rb Rulebook
	if err := decoder.Decode(&rb); err != nil {
		return nil, fmt.Errorf("failed to parse rulebook file %s: %w", path, err)
	}
	if err := rb.Validate(); err != nil {
		return nil, err
	}
	return &rb, nil
}

// Validate checks the rulebook before any source is started.
func (r *Rulebook) Validate() error {
	if len(r.Sources) == 0 {
		return fmt.Errorf("rulebook: at least one source is required")
	}
	for i, source := range r.Sources {
		if source.Name == "" {
			return fmt.Errorf("rulebook: sources[%d] is missing a name", i)
		}
		if err := source.MQTT.Validate(); err != nil {
			return fmt.Errorf("rulebook: source %q: %w", source.Name, err)
		}
	}
	switch r.Sink.Type {
	case "", SinkTypeLog:
	case SinkTypeWebhook:
		if r.Sink.URL == "" {
			return fmt.Errorf("rulebook: sink.url is required for the webhook sink")
		}
	default:
		return fmt.Errorf("rulebook: unknown sink type %q", r.Sink.Type)
	}
	return nil
}
