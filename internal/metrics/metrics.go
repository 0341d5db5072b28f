// Package metrics registers the Prometheus metrics used by the backend.
// Import this package from the server entry point so all metrics are
// registered before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Insight-engine counters and histograms.
var (
	// InsightRequestsTotal counts insight generations labelled by template
	// and outcome ("success", "cache_hit", "rejected", "busy", "error").
	InsightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skepesis_insight_requests_total",
			Help: "Total insight generation requests.",
		},
		[]string{"template", "status"},
	)

	// InsightDuration observes end-to-end generation latency in seconds,
	// including queue wait.
	InsightDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skepesis_insight_duration_seconds",
			Help:    "End-to-end insight generation duration in seconds.",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"template"},
	)

	// CacheHits counts insight cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skepesis_insight_cache_hits_total",
			Help: "Total insight cache hits.",
		},
	)

	// CacheMisses counts insight cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skepesis_insight_cache_misses_total",
			Help: "Total insight cache misses.",
		},
	)

	// GateWait observes time spent waiting for an inference permit.
	GateWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skepesis_gate_wait_seconds",
			Help:    "Time spent queued for an inference slot.",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30},
		},
	)

	// GateRejections counts requests rejected because no inference slot
	// freed up within the queue timeout.
	GateRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skepesis_gate_rejections_total",
			Help: "Total requests rejected by the concurrency gate.",
		},
	)

	// BackendErrors counts downstream failures by kind
	// ("unavailable", "timeout", "status", "circuit_open", "unexpected").
	BackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skepesis_backend_errors_total",
			Help: "Total inference backend errors by kind.",
		},
		[]string{"kind"},
	)

	// BreakerState tracks the inference circuit breaker as a gauge:
	// 0 = closed, 1 = open, 2 = half_open.
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skepesis_backend_breaker_state",
			Help: "Inference circuit breaker state (0=closed 1=open 2=half_open).",
		},
	)
)

// Quiz-domain counters.
var (
	// ResponsesRecorded counts quiz responses persisted, labelled by
	// correctness ("correct", "incorrect").
	ResponsesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skepesis_responses_recorded_total",
			Help: "Total quiz responses recorded.",
		},
		[]string{"result"},
	)

	// QuestionsImported counts questions imported from the trivia API.
	QuestionsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skepesis_questions_imported_total",
			Help: "Total questions imported from the trivia API.",
		},
	)

	// RateLimitRejections counts requests rejected by the HTTP rate-limit
	// middleware, labelled by key_type ("ip", "user").
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skepesis_rate_limit_rejections_total",
			Help: "Total requests rejected by rate limiting.",
		},
		[]string{"key_type"},
	)
)
