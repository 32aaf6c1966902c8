package eventpipeline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kubealex/kubealex.eda/pkg/metrics"
)

// PayloadKey is the fallback key under which a payload that could not be
// decoded as a JSON object is wrapped. Wrapping instead of dropping means a
// malformed message still reaches the rule engine.
const PayloadKey = "payload"

// Event is the canonical, normalized representation of one inbound broker
// message. It is created by an EventSource, handed to the host's handler, and
// owned by the handler from that point on.
type Event struct {
	// ID is a unique identifier assigned when the event is created.
	ID string `json:"id"`

	// SourceTopic is the broker topic the originating message arrived on.
	SourceTopic string `json:"source_topic"`

	// ReceivedAt is the timestamp at which the message was received.
	ReceivedAt time.Time `json:"received_at"`

	// Data is the normalized payload: the decoded JSON object, or
	// {"payload": <raw text>} when the payload is not a JSON object.
	Data map[string]any `json:"data"`
}

// NewEvent normalizes one raw broker payload into an Event.
//
// The payload is decoded as a JSON object. Anything that is not a JSON
// object, including malformed JSON, plain text and empty payloads, is wrapped
// under PayloadKey so that no message is ever dropped for being malformed.
func NewEvent(topic string, payload []byte) Event {
	data := make(map[string]any)
	// A payload of "null" unmarshals without error but leaves the map nil,
	// so it takes the fallback path like any other non-object payload.
	if err := json.Unmarshal(payload, &data); err != nil || data == nil {
		metrics.DecodeFallbacks.WithLabelValues(topic).Inc()
		data = map[string]any{PayloadKey: string(payload)}
	}
	return Event{
		ID:          uuid.NewString(),
		SourceTopic: topic,
		ReceivedAt:  time.Now().UTC(),
		Data:        data,
	}
}
