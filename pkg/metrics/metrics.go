// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// GenerationsTotal tracks generation attempts by mode and terminal status.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "Total generation attempts by mode and terminal status",
		},
		[]string{"mode", "status"},
	)

	// GenerationDuration tracks wall time from dispatch to terminal state.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Generation duration from dispatch to terminal state",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"mode", "status"},
	)

	// StreamChunksTotal tracks streamed chunks applied to placeholder messages.
	StreamChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_chunks_total",
			Help: "Streamed chunks applied to pending messages",
		},
		[]string{"mode"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// StorageSavesTotal tracks history snapshot writes by degradation tier.
	StorageSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_saves_total",
			Help: "History snapshot writes by degradation tier and result",
		},
		[]string{"tier", "result"},
	)

	// PromptHistorySize tracks the size of the prompt recall list.
	PromptHistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prompt_history_size",
			Help: "Number of prompts in the recall list",
		},
	)

	// EventsPublishedTotal tracks lifecycle events published to the feed.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Generation lifecycle events published",
		},
		[]string{"type"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGeneration records metrics for a finished generation attempt.
func RecordGeneration(mode, status string, duration float64) {
	GenerationsTotal.WithLabelValues(mode, status).Inc()
	GenerationDuration.WithLabelValues(mode, status).Observe(duration)
}

// RecordStorageSave records a history snapshot write attempt.
func RecordStorageSave(tier, result string) {
	StorageSavesTotal.WithLabelValues(tier, result).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
