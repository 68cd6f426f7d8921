// Package metrics provides Prometheus metrics for the activity tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Log ingestion
	recordsDecoded   *prometheus.CounterVec
	recordsMalformed prometheus.Counter
	eventsAppended   prometheus.Counter
	eventsDuplicate  prometheus.Counter
	eventsMerged     prometheus.Counter

	// Gap backfill
	syntheticEvents prometheus.Counter
	gapsResolved    prometheus.Counter

	// Weekly roll-up
	weekSummaryUpdates prometheus.Counter

	// Blob store
	storeOperations *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec

	// Queries
	queryLatency *prometheus.HistogramVec
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
		namespace:        "syrnia",
		subsystem:        "tracker",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.recordsDecoded = m.counterVec("records_decoded_total",
		"Log records decoded, by matched layout", "shape")
	m.recordsMalformed = m.counter("records_malformed_total",
		"Log records skipped because they were too short to decode")
	m.eventsAppended = m.counter("events_appended_total",
		"Events appended to the activity log")
	m.eventsDuplicate = m.counter("events_duplicate_total",
		"Appended events whose canonical key was already seen")
	m.eventsMerged = m.counter("events_merged_total",
		"Log records folded into an earlier observation of the same event")

	m.syntheticEvents = m.counter("synthetic_events_total",
		"Backfilled events written for untracked gaps")
	m.gapsResolved = m.counter("gaps_resolved_total",
		"Untracked gaps resolved")

	m.weekSummaryUpdates = m.counter("week_summary_updates_total",
		"Weekly summary rows written")

	m.storeOperations = m.counterVec("store_operations_total",
		"Blob store operations by driver and operation", "driver", "op")
	m.storeErrors = m.counterVec("store_errors_total",
		"Failed blob store operations by driver and operation", "driver", "op")
	m.storeLatency = m.histogramVec("store_latency_milliseconds",
		"Blob store operation latency in milliseconds", "driver", "op")
	m.breakerState = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_breaker_state",
		Help:        "Blob store circuit breaker state (0 closed, 1 half-open, 2 open)",
		ConstLabels: m.customLabels,
	}, []string{"name"})

	m.queryLatency = m.histogramVec("query_latency_milliseconds",
		"Query latency in milliseconds by query kind", "kind")
}

// RecordDecoded counts a record decoded with the named layout.
func RecordDecoded(shape string) {
	globalManager.recordsDecoded.WithLabelValues(shape).Inc()
}

// RecordMalformed counts a skipped record.
func RecordMalformed() {
	globalManager.recordsMalformed.Inc()
}

// RecordLogLoaded counts the records of a stored log read at startup.
func RecordLogLoaded(decoded map[string]int64, malformed int64) {
	for shape, n := range decoded {
		if n > 0 {
			globalManager.recordsDecoded.WithLabelValues(shape).Add(float64(n))
		}
	}
	if malformed > 0 {
		globalManager.recordsMalformed.Add(float64(malformed))
	}
}

// RecordEventAppended counts an appended event.
func RecordEventAppended() {
	globalManager.eventsAppended.Inc()
}

// RecordEventDuplicate counts a repeated observation.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventsMerged counts records folded by deduplication.
func RecordEventsMerged(n int) {
	if n > 0 {
		globalManager.eventsMerged.Add(float64(n))
	}
}

// RecordSyntheticEvents counts backfilled events.
func RecordSyntheticEvents(n int) {
	if n > 0 {
		globalManager.syntheticEvents.Add(float64(n))
	}
}

// RecordGapResolved counts a resolved gap.
func RecordGapResolved() {
	globalManager.gapsResolved.Inc()
}

// RecordWeekSummaryUpdate counts a weekly summary write.
func RecordWeekSummaryUpdate() {
	globalManager.weekSummaryUpdates.Inc()
}

// RecordStoreOperation records a blob store call and its latency.
func RecordStoreOperation(driver, op string, latencyMs float64, err error) {
	globalManager.storeOperations.WithLabelValues(driver, op).Inc()
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(driver, op).Inc()
	}
}

// UpdateBreakerState sets the breaker state gauge.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordQueryLatency records how long a query took.
func RecordQueryLatency(kind string, latencyMs float64) {
	globalManager.queryLatency.WithLabelValues(kind).Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
