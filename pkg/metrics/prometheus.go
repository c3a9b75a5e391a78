// Package metrics provides Prometheus metrics for the Argus screening service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/model"
)

// client_golang >= v1.23 validates metric names as UTF-8 by default; the
// older version pinned for the Go 1.21 toolchain defaults to legacy
// validation, so opt in explicitly to keep the same behavior.
func init() { //nolint:gochecknoinits // dependency-level validation config
	model.NameValidationScheme = model.UTF8Validation
}

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the Argus service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Screening pipeline metrics
	screeningsSubmitted prometheus.Counter
	screeningsDuplicate prometheus.Counter
	screeningsRejected  prometheus.Counter
	screeningsProcessed prometheus.Counter

	// Evaluation metrics
	evaluationsComputed *prometheus.CounterVec
	tokensDerived       prometheus.Counter
	scoringDuration     prometheus.Histogram

	// Queue metrics
	queueDepth       prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge

	// Worker metrics
	workerCount  prometheus.Gauge
	workerBusy   prometheus.Gauge
	workerErrors prometheus.Counter

	// Store metrics
	watchlistSize       prometheus.Gauge
	statusEntries       *prometheus.GaugeVec
	storeWrites         prometheus.Counter
	storeWriteRejects   prometheus.Counter
	storeUpdateDuration prometheus.Histogram
	storeQueryDuration  prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "argus",
		subsystem:        "screening",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Screening pipeline metrics
	m.screeningsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "screenings_submitted_total",
		Help:      "Total number of screening requests accepted for async processing",
	})

	m.screeningsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "screenings_duplicate_total",
		Help:      "Total number of screening requests replayed with an already-seen request ID",
	})

	m.screeningsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "screenings_rejected_total",
		Help:      "Total number of screening requests rejected due to queue backpressure",
	})

	m.screeningsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "screenings_processed_total",
		Help:      "Total number of screenings drained and evaluated by workers",
	})

	// Evaluation metrics
	m.evaluationsComputed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "evaluations_computed_total",
			Help:      "Total number of evaluations computed, labeled by resulting status",
		},
		[]string{"status"},
	)

	m.tokensDerived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tokens_derived_total",
		Help:      "Total number of provenance tokens derived",
	})

	m.scoringDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_duration_milliseconds",
		Help:      "Histogram of score plus token derivation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Queue metrics
	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Current number of screenings waiting in the queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue depth as a fraction of capacity",
	})

	// Worker metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of workers in the pool",
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_busy",
		Help:      "Number of workers currently evaluating a screening",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker-side evaluation failures",
	})

	// Store metrics
	m.watchlistSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "watchlist_size",
		Help:      "Total number of evaluated addresses held in the store",
	})

	m.statusEntries = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "status_entries",
			Help:      "Number of stored evaluations per status",
		},
		[]string{"status"},
	)

	m.storeWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_writes_total",
		Help:      "Total number of store writes applied",
	})

	m.storeWriteRejects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_rejects_total",
		Help:      "Total number of store writes rejected because the entry already matched",
	})

	m.storeUpdateDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_duration_milliseconds",
		Help:      "Store write operation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_milliseconds",
		Help:      "Store read operation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error metrics
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors by component and error type",
		},
		[]string{"component", "error_type"},
	)
}

// RefreshInterval returns the interval gauge publishers should refresh at.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// RecordScreeningSubmitted increments the accepted screenings counter.
func RecordScreeningSubmitted() {
	globalManager.screeningsSubmitted.Inc()
}

// RecordScreeningDuplicate increments the duplicate screenings counter.
func RecordScreeningDuplicate() {
	globalManager.screeningsDuplicate.Inc()
}

// RecordScreeningRejected increments the backpressure rejections counter.
func RecordScreeningRejected() {
	globalManager.screeningsRejected.Inc()
}

// RecordScreeningProcessed increments the worker completions counter.
func RecordScreeningProcessed() {
	globalManager.screeningsProcessed.Inc()
}

// RecordEvaluation increments the evaluations counter for the given status.
func RecordEvaluation(status string) {
	globalManager.evaluationsComputed.WithLabelValues(status).Inc()
}

// RecordTokenDerived increments the derived tokens counter.
func RecordTokenDerived() {
	globalManager.tokensDerived.Inc()
}

// RecordScoringDuration records score plus token derivation duration in milliseconds.
func RecordScoringDuration(durationMs float64) {
	globalManager.scoringDuration.Observe(durationMs)
}

// UpdateQueueDepth sets the current queue depth.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue depth as a fraction of capacity.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerBusy sets the number of workers currently evaluating.
func UpdateWorkerBusy(count int) {
	globalManager.workerBusy.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateWatchlistSize sets the total number of stored evaluations.
func UpdateWatchlistSize(count int) {
	globalManager.watchlistSize.Set(float64(count))
}

// UpdateStatusEntries sets the number of stored evaluations for one status.
func UpdateStatusEntries(status string, count int) {
	globalManager.statusEntries.WithLabelValues(status).Set(float64(count))
}

// RecordStoreWrite increments the applied writes counter.
func RecordStoreWrite() {
	globalManager.storeWrites.Inc()
}

// RecordStoreWriteRejected increments the matched-entry rejection counter.
func RecordStoreWriteRejected() {
	globalManager.storeWriteRejects.Inc()
}

// RecordStoreUpdateDuration records store write duration in milliseconds.
func RecordStoreUpdateDuration(durationMs float64) {
	globalManager.storeUpdateDuration.Observe(durationMs)
}

// RecordStoreQueryDuration records store read duration in milliseconds.
func RecordStoreQueryDuration(durationMs float64) {
	globalManager.storeQueryDuration.Observe(durationMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
