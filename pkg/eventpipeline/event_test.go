package eventpipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kubealex/kubealex.eda/pkg/eventpipeline"
)

func TestNewEvent(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected map[string]any
	}{
		{
			name:     "JSON object decodes to itself",
			payload:  `{"sensor_location": "room1", "value": 42}`,
			expected: map[string]any{"sensor_location": "room1", "value": float64(42)},
		},
		{
			name:     "nested JSON object is preserved",
			payload:  `{"meta": {"source": "dht22"}, "readings": [1, 2]}`,
			expected: map[string]any{"meta": map[string]any{"source": "dht22"}, "readings": []any{float64(1), float64(2)}},
		},
		{
			name:     "plain text is wrapped",
			payload:  "ERROR: sensor offline",
			expected: map[string]any{"payload": "ERROR: sensor offline"},
		},
		{
			name:     "malformed JSON is wrapped",
			payload:  `{"broken":`,
			expected: map[string]any{"payload": `{"broken":`},
		},
		{
			name:     "JSON array is not an object and is wrapped",
			payload:  `[1, 2, 3]`,
			expected: map[string]any{"payload": "[1, 2, 3]"},
		},
		{
			name:     "bare JSON number is wrapped",
			payload:  `42`,
			expected: map[string]any{"payload": "42"},
		},
		{
			name:     "JSON null is wrapped, not a nil map",
			payload:  `null`,
			expected: map[string]any{"payload": "null"},
		},
		{
			name:     "empty payload is wrapped",
			payload:  "",
			expected: map[string]any{"payload": ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event := eventpipeline.NewEvent("sensors/room1", []byte(tc.payload))

			assert.Equal(t, tc.expected, event.Data)
			assert.Equal(t, "sensors/room1", event.SourceTopic)
			assert.NotEmpty(t, event.ID)
			assert.False(t, event.ReceivedAt.IsZero())
		})
	}
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	first := eventpipeline.NewEvent("t", []byte(`{}`))
	second := eventpipeline.NewEvent("t", []byte(`{}`))
	assert.NotEqual(t, first.ID, second.ID)
}
