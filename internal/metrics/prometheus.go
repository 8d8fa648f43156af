// Package metrics provides Prometheus metrics for pipeline runs and the REST API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Manager owns every metric and the registry they live on. A nil *Manager is
// valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Pipeline
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	sourceRecords *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	skipped       prometheus.Counter
	joinGaps      prometheus.Counter
	teamsReported prometheus.Gauge

	// Sinks
	sinkErrors *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager on a fresh registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sidelined",
		histogramBuckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "pipeline_runs_total",
		Help:      "Pipeline runs by outcome",
	}, []string{"status"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "pipeline_run_duration_seconds",
		Help:      "Wall time of a full pipeline run",
		Buckets:   m.histogramBuckets,
	})

	m.sourceRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "source_records_total",
		Help:      "Records returned by each data source",
	}, []string{"source"})

	m.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "source_fetch_duration_seconds",
		Help:      "Time to fetch and parse one season from a data source",
		Buckets:   m.histogramBuckets,
	}, []string{"source", "status"})

	m.skipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "skipped_records_total",
		Help:      "Malformed records dropped by the allocation engine",
	})

	m.joinGaps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "join_gaps_total",
		Help:      "Injured players with no performance stint",
	})

	m.teamsReported = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "teams_reported",
		Help:      "Number of teams in the most recent result",
	})

	m.sinkErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sink_errors_total",
		Help:      "Failed writes per report sink",
	}, []string{"sink"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records one pipeline run.
func (m *Manager) RecordRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// RecordFetch records one source fetch and, on success, its record count.
func (m *Manager) RecordFetch(source, status string, records int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(source, status).Observe(elapsed.Seconds())
	if records > 0 {
		m.sourceRecords.WithLabelValues(source).Add(float64(records))
	}
}

// RecordResult records the data-quality counters of a computed result.
func (m *Manager) RecordResult(teams, skipped, gaps int) {
	if m == nil {
		return
	}
	m.teamsReported.Set(float64(teams))
	m.skipped.Add(float64(skipped))
	m.joinGaps.Add(float64(gaps))
}

// RecordSinkError increments the failure counter for a report sink.
func (m *Manager) RecordSinkError(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(elapsed.Seconds())
}
