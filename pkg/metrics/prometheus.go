// Package metrics provides Prometheus metrics for the class-break AHP service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation modes.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Manager owns every metric of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Evaluation metrics
	evaluations          *prometheus.CounterVec
	evaluationLatency    prometheus.Histogram
	consistencyRatio     prometheus.Histogram
	eigenIterations      prometheus.Histogram
	factorCount          prometheus.Histogram
	nonConverged         prometheus.Counter
	uninformativeFactors prometheus.Counter
	inconsistent         prometheus.Counter

	// State
	storedEvaluations prometheus.Gauge
	dedupeSize        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "classahp",
		subsystem:      "service",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all metric definitions
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluations_total",
		Help:      "Completed evaluations by mode (sync or async)",
	}, []string{"mode"})
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds",
		"Time spent in the AHP pipeline per evaluation", m.latencyBuckets)
	m.consistencyRatio = m.histogram("consistency_ratio",
		"Consistency ratio of derived comparison matrices",
		[]float64{0.01, 0.02, 0.05, 0.08, 0.1, 0.15, 0.2, 0.3, 0.5, 1})
	m.eigenIterations = m.histogram("eigen_iterations",
		"Power iteration steps per evaluation",
		[]float64{1, 2, 5, 10, 20, 50, 100, 250, 500, 1000})
	m.factorCount = m.histogram("factor_count",
		"Number of factors per evaluation",
		prometheus.LinearBuckets(2, 1, 14))
	m.nonConverged = m.counter("eigen_non_converged_total",
		"Evaluations whose power iteration stopped before reaching tolerance")
	m.uninformativeFactors = m.counter("uninformative_factors_total",
		"Factors submitted without any usable class counts")
	m.inconsistent = m.counter("inconsistent_evaluations_total",
		"Evaluations whose consistency ratio exceeded the configured threshold")

	m.storedEvaluations = m.gauge("stored_evaluations", "Evaluations currently held in the store")
	m.dedupeSize = m.gauge("dedupe_size", "Request ids currently remembered for idempotency")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the evaluation queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum evaluation queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs refused by the queue")

	m.workerCount = m.gauge("worker_count", "Evaluation workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spends on one job", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs a worker failed to complete")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Evaluation describes one finished evaluation for ObserveEvaluation.
type Evaluation struct {
	Mode          string
	LatencyMs     float64
	Factors       int
	Uninformative int
	CR            float64
	Iterations    int
	Converged     bool
	Acceptable    bool
}

// ObserveEvaluation records every evaluation-level metric at once.
func ObserveEvaluation(e Evaluation) {
	globalManager.evaluations.WithLabelValues(e.Mode).Inc()
	globalManager.evaluationLatency.Observe(e.LatencyMs)
	globalManager.consistencyRatio.Observe(e.CR)
	globalManager.eigenIterations.Observe(float64(e.Iterations))
	globalManager.factorCount.Observe(float64(e.Factors))
	if e.Uninformative > 0 {
		globalManager.uninformativeFactors.Add(float64(e.Uninformative))
	}
	if !e.Converged {
		globalManager.nonConverged.Inc()
	}
	if !e.Acceptable {
		globalManager.inconsistent.Inc()
	}
}

// UpdateStoredEvaluations sets the number of stored evaluations.
func UpdateStoredEvaluations(count int) {
	globalManager.storedEvaluations.Set(float64(count))
}

// UpdateDedupeSize sets the number of remembered request ids.
func UpdateDedupeSize(size int64) {
	globalManager.dedupeSize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	code := strconv.Itoa(statusCode)
	globalManager.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// UpdateQueue sets the queue size, capacity and utilization gauges.
func UpdateQueue(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	globalManager.queueCapacity.Set(float64(capacity))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the refused-job counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time spent on one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global metrics live on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
