// Package metrics exposes the Prometheus collectors shared by the bridge
// components. Collectors are registered once at package load via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Bridge ingestion metrics
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eda_bridge_messages_received_total",
			Help: "Total number of messages received from the broker",
		},
		[]string{"topic"},
	)

	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eda_bridge_events_emitted_total",
			Help: "Total number of normalized events emitted to the pipeline",
		},
		[]string{"topic"},
	)

	DecodeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eda_bridge_decode_fallbacks_total",
			Help: "Total number of payloads wrapped under the fallback key because they were not JSON objects",
		},
		[]string{"topic"},
	)

	// Dispatch metrics
	EventsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eda_bridge_events_dispatched_total",
			Help: "Total number of events successfully handed to the event handler",
		},
	)

	HandlerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eda_bridge_handler_errors_total",
			Help: "Total number of handler failures while processing events",
		},
	)

	// Supervisor metrics
	SourceRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eda_bridge_source_restarts_total",
			Help: "Total number of times a terminated event source was restarted",
		},
	)
)
