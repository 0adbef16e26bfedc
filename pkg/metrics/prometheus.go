// Package metrics provides Prometheus metrics for the podium ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Image sources reported by RecordImageProcessed.
const (
	SourceExtracted = "extracted"
	SourceCache     = "cache"
	SourceFallback  = "fallback"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Extraction
	imagesProcessed     *prometheus.CounterVec
	extractionLatency   prometheus.Histogram
	extractionRateLimit prometheus.Counter
	extractionRetries   prometheus.Counter
	extractionFallbacks prometheus.Counter
	extractionParseErrs prometheus.Counter
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheEntries        prometheus.Gauge

	// Consolidation and correlation
	overflowDropped   prometheus.Counter
	unmatchedLabels   prometheus.Counter
	duplicatesRemoved prometheus.Counter
	correlationTier   *prometheus.CounterVec

	// Operator workflow
	batchesTotal     *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	resultEdits      prometheus.Counter
	editConflicts    prometheus.Counter
	manualAccepted   prometheus.Counter
	manualRejected   *prometheus.CounterVec
	resultsCommitted prometheus.Counter
	activeSessions   prometheus.Gauge

	// Queue and workers
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueueError prometheus.Counter
	workerCount       prometheus.Gauge
	workerJobLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // dedicated registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	latencyBuckets := []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 80000}

	m.imagesProcessed = m.counterVec("images_processed_total",
		"Images processed, by where their entries came from", "source")
	m.extractionLatency = m.histogram("extraction_latency_milliseconds",
		"Latency of a single extraction call including its retry wait", latencyBuckets)
	m.extractionRateLimit = m.counter("extraction_rate_limited_total",
		"Extraction calls rejected by the provider quota")
	m.extractionRetries = m.counter("extraction_retries_total",
		"Second extraction attempts after a rate-limit wait")
	m.extractionFallbacks = m.counter("extraction_fallbacks_total",
		"Images whose entries were replaced by a synthetic ranking")
	m.extractionParseErrs = m.counter("extraction_parse_errors_total",
		"Extraction responses that did not contain a readable ranking")
	m.cacheHits = m.counter("extraction_cache_hits_total",
		"Images served from the extraction cache")
	m.cacheMisses = m.counter("extraction_cache_misses_total",
		"Images not found in the extraction cache")
	m.cacheEntries = m.gauge("extraction_cache_entries",
		"Entries currently held by the extraction cache")

	m.overflowDropped = m.counter("overflow_dropped_total",
		"Entries or rows dropped because they exceeded the team limit")
	m.unmatchedLabels = m.counter("unmatched_labels_total",
		"Extracted labels that did not resolve to a registered team")
	m.duplicatesRemoved = m.counter("duplicates_removed_total",
		"Scored rows removed by the (team, placement) deduplicator")
	m.correlationTier = m.counterVec("correlation_matches_total",
		"Correlated labels by the matcher tier that resolved them", "tier")

	m.batchesTotal = m.counterVec("batches_total",
		"Batches processed, by terminal status", "status")
	m.batchDuration = m.histogram("batch_duration_milliseconds",
		"End-to-end duration of a batch", latencyBuckets)
	m.resultEdits = m.counter("result_edits_total",
		"Successful operator edits of a result row")
	m.editConflicts = m.counter("result_edit_conflicts_total",
		"Operator edits rejected because the placement was taken")
	m.manualAccepted = m.counter("manual_results_accepted_total",
		"Manual rows accepted into a final result set")
	m.manualRejected = m.counterVec("manual_results_rejected_total",
		"Manual rows rejected, by reason", "reason")
	m.resultsCommitted = m.counter("results_committed_total",
		"Result rows handed to persistence")
	m.activeSessions = m.gauge("sessions_active",
		"Sessions currently held in memory")

	m.queueSize = m.gauge("queue_size", "Current number of queued batch jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the batch job queue")
	m.queueEnqueueError = m.counter("queue_enqueue_errors_total",
		"Batch jobs refused by the queue")
	m.workerCount = m.gauge("worker_count", "Batch workers running")
	m.workerJobLatency = m.histogram("worker_job_latency_milliseconds",
		"Time a worker spent on one batch job", latencyBuckets)

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total",
		"Errors by component and type", "component", "error_type")
}

// RecordImageProcessed counts an image by the source of its entries.
func RecordImageProcessed(source string) {
	globalManager.imagesProcessed.WithLabelValues(source).Inc()
}

// RecordExtractionLatency records one extraction call in milliseconds.
func RecordExtractionLatency(latencyMs float64) {
	globalManager.extractionLatency.Observe(latencyMs)
}

// RecordRateLimited increments the rate-limit counter.
func RecordRateLimited() { globalManager.extractionRateLimit.Inc() }

// RecordRetry increments the retry counter.
func RecordRetry() { globalManager.extractionRetries.Inc() }

// RecordFallback increments the fallback substitution counter.
func RecordFallback() { globalManager.extractionFallbacks.Inc() }

// RecordParseError increments the parse error counter.
func RecordParseError() { globalManager.extractionParseErrs.Inc() }

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// UpdateCacheEntries sets the number of cached images.
func UpdateCacheEntries(n int) { globalManager.cacheEntries.Set(float64(n)) }

// RecordOverflowDropped adds n dropped entries.
func RecordOverflowDropped(n int) { globalManager.overflowDropped.Add(float64(n)) }

// RecordUnmatched adds n unmatched labels.
func RecordUnmatched(n int) { globalManager.unmatchedLabels.Add(float64(n)) }

// RecordDuplicatesRemoved adds n removed duplicates.
func RecordDuplicatesRemoved(n int) { globalManager.duplicatesRemoved.Add(float64(n)) }

// RecordCorrelationTier counts a label resolved by tier.
func RecordCorrelationTier(tier string) {
	globalManager.correlationTier.WithLabelValues(tier).Inc()
}

// RecordBatch counts a finished batch by status.
func RecordBatch(status string) { globalManager.batchesTotal.WithLabelValues(status).Inc() }

// RecordBatchDuration records a batch duration in milliseconds.
func RecordBatchDuration(ms float64) { globalManager.batchDuration.Observe(ms) }

// RecordEdit increments the successful edit counter.
func RecordEdit() { globalManager.resultEdits.Inc() }

// RecordEditConflict increments the edit conflict counter.
func RecordEditConflict() { globalManager.editConflicts.Inc() }

// RecordManualAccepted adds n accepted manual rows.
func RecordManualAccepted(n int) { globalManager.manualAccepted.Add(float64(n)) }

// RecordManualRejected counts a rejected manual row by reason.
func RecordManualRejected(reason string) {
	globalManager.manualRejected.WithLabelValues(reason).Inc()
}

// RecordCommitted adds n committed rows.
func RecordCommitted(n int) { globalManager.resultsCommitted.Add(float64(n)) }

// UpdateActiveSessions sets the number of sessions in memory.
func UpdateActiveSessions(n int) { globalManager.activeSessions.Set(float64(n)) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueueError increments the refused enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueError.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerJobLatency records one job duration in milliseconds.
func RecordWorkerJobLatency(ms float64) { globalManager.workerJobLatency.Observe(ms) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent tracks errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry the service metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
