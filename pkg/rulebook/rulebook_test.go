package rulebook_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubealex/kubealex.eda/pkg/mqttsource"
	"github.com/kubealex/kubealex.eda/pkg/rulebook"
)

func writeRulebookFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rulebook.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRulebookFile(t, `
sources:
  - name: anomaly
    mqtt:
      host: localhost
      port: 1883
      topic: anomaly-data-out
sink:
  type: webhook
  url: http://rules.internal:5000/endpoint
restart_delay: 5s
`)

	rb, err := rulebook.Load(path)
	require.NoError(t, err)

	require.Len(t, rb.Sources, 1)
	assert.Equal(t, "anomaly", rb.Sources[0].Name)
	assert.Equal(t, "localhost", rb.Sources[0].MQTT.Host)
	assert.Equal(t, 1883, rb.Sources[0].MQTT.Port)
	assert.Equal(t, "anomaly-data-out", rb.Sources[0].MQTT.Topic)
	assert.Equal(t, rulebook.SinkTypeWebhook, rb.Sink.Type)
	assert.Equal(t, 5*time.Second, rb.RestartDelay)
}

func TestLoad_InvalidSourceConfig(t *testing.T) {
	path := writeRulebookFile(t, `
sources:
  - name: anomaly
    mqtt:
      host: localhost
      port: 70000
      topic: anomaly-data-out
`)

	_, err := rulebook.Load(path)
	require.ErrorIs(t, err, mqttsource.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "anomaly")
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeRulebookFile(t, `
sources:
  - name: anomaly
    mqtt:
      host: localhost
      port: 1883
      topic: t
      hostt: typo
`)

	_, err := rulebook.Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *rulebook.Rulebook {
		return &rulebook.Rulebook{
			Sources: []rulebook.Source{{
				Name: "anomaly",
				MQTT: mqttsource.Config{Host: "localhost", Port: 1883, Topic: "t"},
			}},
		}
	}

	t.Run("log sink is the default", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("no sources", func(t *testing.T) {
		rb := &rulebook.Rulebook{}
		require.Error(t, rb.Validate())
	})

	t.Run("unnamed source", func(t *testing.T) {
		rb := base()
		rb.Sources[0].Name = ""
		require.Error(t, rb.Validate())
	})

	t.Run("webhook sink requires a URL", func(t *testing.T) {
		rb := base()
		rb.Sink.Type = rulebook.SinkTypeWebhook
		require.Error(t, rb.Validate())
	})

	t.Run("unknown sink type", func(t *testing.T) {
		rb := base()
		rb.Sink.Type = "kafka"
		require.Error(t, rb.Validate())
	})
}
