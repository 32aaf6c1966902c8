package eventpipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// NewLogSink returns an EventHandler that writes each event to the logger.
// It is the default sink and is mostly useful for wiring checks and local
// rulebook development.
func NewLogSink(logger zerolog.Logger) EventHandler {
	sinkLogger := logger.With().Str("component", "LogSink").Logger()
	return func(_ context.Context, event *Event) error {
		sinkLogger.Info().
			Str("event_id", event.ID).
			Str("topic", event.SourceTopic).
			Interface("data", event.Data).
			Msg("Event received.")
		return nil
	}
}

// WebhookSink forwards events to an external rule-evaluation engine as JSON
// over HTTP POST. The engine owns the event once the request succeeds.
type WebhookSink struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewWebhookSink creates a WebhookSink posting to the given URL. A nil
// httpClient falls back to a client with a 15 second timeout.
func NewWebhookSink(url string, httpClient *http.Client, logger zerolog.Logger) (*WebhookSink, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebhookSink{
		url:        url,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "WebhookSink").Logger(),
	}, nil
}

// Handle implements EventHandler for the sink.
func (s *WebhookSink) Handle(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d for event %s", resp.StatusCode, event.ID)
	}

	s.logger.Debug().Str("event_id", event.ID).Msg("Event forwarded to webhook.")
	return nil
}
