// Package metrics provides Prometheus metrics for the triage pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Risk scores are integers in the 0-7 range; one bucket per value.
var riskScoreBuckets = []float64{0, 1, 2, 3, 4, 5, 6, 7}

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Upstream request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram

	// Retry metrics, split by cause
	rateLimitRetries   prometheus.Counter
	serverErrorRetries prometheus.Counter
	retryWaitSeconds   prometheus.Histogram

	// Collection metrics
	pagesFetched      prometheus.Counter
	patientsCollected prometheus.Counter

	// Classification metrics
	invalidFields *prometheus.CounterVec
	riskScores    prometheus.Histogram

	// Report metrics
	reportListSize *prometheus.GaugeVec
	submissions    *prometheus.CounterVec

	// Run metrics
	runDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "triage",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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
	auto := promauto.With(m.registry)

	m.requestsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream HTTP requests by endpoint and status class",
		},
		[]string{"endpoint", "status_class"},
	)

	m.requestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_request_duration_seconds",
		Help:      "Upstream HTTP request duration in seconds, including retries",
		Buckets:   m.histogramBuckets,
	})

	m.rateLimitRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_retries_total",
		Help:      "Total number of retries caused by 429 responses",
	})

	m.serverErrorRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "server_error_retries_total",
		Help:      "Total number of retries caused by 5xx responses",
	})

	m.retryWaitSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "retry_wait_seconds",
		Help:      "Time spent sleeping between retry attempts",
		Buckets:   m.histogramBuckets,
	})

	m.pagesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pages_fetched_total",
		Help:      "Total number of patient pages fetched",
	})

	m.patientsCollected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "patients_collected_total",
		Help:      "Total number of patient records collected",
	})

	m.invalidFields = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "invalid_fields_total",
			Help:      "Total number of malformed scoring inputs by dimension",
		},
		[]string{"dimension"},
	)

	m.riskScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "risk_score",
		Help:      "Distribution of total risk scores",
		Buckets:   riskScoreBuckets,
	})

	m.reportListSize = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "report_list_size",
			Help:      "Number of identifiers in each report list",
		},
		[]string{"list"},
	)

	m.submissions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "submissions_total",
			Help:      "Total number of assessment submissions by outcome",
		},
		[]string{"outcome"},
	)

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Duration of a complete pipeline run in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})
}

// Package-level helpers operating on the global manager.

// RecordRequest records an upstream request outcome.
func RecordRequest(endpoint, statusClass string) {
	globalManager.requestsTotal.WithLabelValues(endpoint, statusClass).Inc()
}

// RecordRequestDuration records the total duration of an upstream request.
func RecordRequestDuration(seconds float64) {
	globalManager.requestDuration.Observe(seconds)
}

// RecordRateLimitRetry counts a retry triggered by a 429 response.
func RecordRateLimitRetry() {
	globalManager.rateLimitRetries.Inc()
}

// RecordServerErrorRetry counts a retry triggered by a 5xx response.
func RecordServerErrorRetry() {
	globalManager.serverErrorRetries.Inc()
}

// RecordRetryWait records the duration of a retry sleep.
func RecordRetryWait(seconds float64) {
	globalManager.retryWaitSeconds.Observe(seconds)
}

// RecordPageFetched counts a fetched patient page.
func RecordPageFetched() {
	globalManager.pagesFetched.Inc()
}

// AddPatientsCollected counts collected patient records.
func AddPatientsCollected(n int) {
	globalManager.patientsCollected.Add(float64(n))
}

// RecordInvalidField counts a malformed scoring input for a dimension.
func RecordInvalidField(dimension string) {
	globalManager.invalidFields.WithLabelValues(dimension).Inc()
}

// RecordRiskScore records a patient's total risk score.
func RecordRiskScore(score int) {
	globalManager.riskScores.Observe(float64(score))
}

// UpdateReportListSize sets the size of a report list.
func UpdateReportListSize(list string, size int) {
	globalManager.reportListSize.WithLabelValues(list).Set(float64(size))
}

// RecordSubmission records an assessment submission outcome ("ok" or "error").
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordRunDuration records the duration of a complete pipeline run.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// Handler returns an HTTP handler exposing the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// GetRegistry returns the custom metrics registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
