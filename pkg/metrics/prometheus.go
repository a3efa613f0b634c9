// Package metrics provides Prometheus metrics for the attention-risk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Analysis metrics
	jobsSubmitted    prometheus.Counter
	jobsDeduplicated prometheus.Counter
	jobsCompleted    prometheus.Counter
	jobsFailed       *prometheus.CounterVec
	jobsSwept        prometheus.Counter
	jobsTracked      prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
	analysisDuration prometheus.Histogram
	criticalRisk     prometheus.Histogram
	uploadBytes      prometheus.Histogram

	// Audience metrics
	audienceEvaluations *prometheus.CounterVec
	audienceFitScore    *prometheus.HistogramVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount prometheus.Gauge
	workerBusy  prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
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
		namespace:        "attnrisk",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.jobsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_submitted_total",
		Help:        "Total number of recordings accepted for analysis",
		ConstLabels: m.constLabels,
	})

	m.jobsDeduplicated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_deduplicated_total",
		Help:        "Total number of uploads answered from an earlier idempotency key",
		ConstLabels: m.constLabels,
	})

	m.jobsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_completed_total",
		Help:        "Total number of analyses that finished successfully",
		ConstLabels: m.constLabels,
	})

	m.jobsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_failed_total",
		Help:        "Total number of analyses that failed, by failure kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.jobsSwept = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_swept_total",
		Help:        "Total number of terminal jobs evicted by the retention sweeper",
		ConstLabels: m.constLabels,
	})

	m.jobsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "jobs_tracked",
		Help:        "Number of jobs currently held in the registry",
		ConstLabels: m.constLabels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of each pipeline stage in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.analysisDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duration_seconds",
		Help:        "End-to-end analysis duration in seconds",
		Buckets:     []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300, 600},
		ConstLabels: m.constLabels,
	})

	m.criticalRisk = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "critical_risk",
		Help:        "Risk value of the selected critical moment",
		Buckets:     prometheus.LinearBuckets(10, 10, 10),
		ConstLabels: m.constLabels,
	})

	m.uploadBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_bytes",
		Help:        "Size of uploaded recordings in bytes",
		Buckets:     prometheus.ExponentialBuckets(64*1024, 4, 8),
		ConstLabels: m.constLabels,
	})

	m.audienceEvaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "audience",
		Name:        "evaluations_total",
		Help:        "Total number of audience fit evaluations",
		ConstLabels: m.constLabels,
	}, []string{"audience"})

	m.audienceFitScore = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "audience",
		Name:        "fit_score",
		Help:        "Distribution of audience fit scores",
		Buckets:     prometheus.LinearBuckets(10, 10, 10),
		ConstLabels: m.constLabels,
	}, []string{"audience"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "size",
		Help:        "Current number of tickets waiting in the queue",
		ConstLabels: m.constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "capacity",
		Help:        "Maximum number of tickets the queue accepts",
		ConstLabels: m.constLabels,
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "utilization_ratio",
		Help:        "Queue size divided by capacity",
		ConstLabels: m.constLabels,
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "enqueued_total",
		Help:        "Total number of tickets enqueued",
		ConstLabels: m.constLabels,
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "dequeued_total",
		Help:        "Total number of tickets handed to workers",
		ConstLabels: m.constLabels,
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "queue",
		Name:        "enqueue_errors_total",
		Help:        "Total number of rejected enqueue attempts",
		ConstLabels: m.constLabels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "worker",
		Name:        "count",
		Help:        "Number of analysis workers in the pool",
		ConstLabels: m.constLabels,
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "worker",
		Name:        "busy",
		Help:        "Number of workers currently running an analysis",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "errors",
		Name:        "by_component_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

// RecordJobSubmitted increments the submitted jobs counter.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDeduplicated increments the deduplicated uploads counter.
func RecordJobDeduplicated() {
	globalManager.jobsDeduplicated.Inc()
}

// RecordJobCompleted increments the completed jobs counter.
func RecordJobCompleted() {
	globalManager.jobsCompleted.Inc()
}

// RecordJobFailed increments the failed jobs counter for a failure kind.
func RecordJobFailed(kind string) {
	globalManager.jobsFailed.WithLabelValues(kind).Inc()
}

// RecordJobsSwept adds n evicted jobs.
func RecordJobsSwept(n int) {
	globalManager.jobsSwept.Add(float64(n))
}

// UpdateJobsTracked sets the number of jobs in the registry.
func UpdateJobsTracked(count int) {
	globalManager.jobsTracked.Set(float64(count))
}

// RecordStageDuration records the duration of a pipeline stage in seconds.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordAnalysisDuration records an end-to-end analysis duration in seconds.
func RecordAnalysisDuration(seconds float64) {
	globalManager.analysisDuration.Observe(seconds)
}

// RecordCriticalRisk records the risk of a selected critical moment.
func RecordCriticalRisk(risk int) {
	globalManager.criticalRisk.Observe(float64(risk))
}

// RecordUploadBytes records the size of an uploaded recording.
func RecordUploadBytes(n int64) {
	globalManager.uploadBytes.Observe(float64(n))
}

// RecordAudienceEvaluation records one audience evaluation and its score.
func RecordAudienceEvaluation(audience string, fitScore int) {
	globalManager.audienceEvaluations.WithLabelValues(audience).Inc()
	globalManager.audienceFitScore.WithLabelValues(audience).Observe(float64(fitScore))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueued tickets counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeued tickets counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of workers in the pool.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// IncWorkerBusy marks one more worker as busy.
func IncWorkerBusy() {
	globalManager.workerBusy.Inc()
}

// DecWorkerBusy marks one worker as idle again.
func DecWorkerBusy() {
	globalManager.workerBusy.Dec()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
