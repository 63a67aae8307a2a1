package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Inspection metrics
	InspectionsTotal *prometheus.CounterVec
	InspectDuration  *prometheus.HistogramVec
	BinarySize       *prometheus.GaugeVec
	SymbolsMissing   *prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewPrometheusMetrics creates metrics on a private registry, so several
// instances can coexist in one process.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,

		InspectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wasminspect_inspections_total",
				Help: "Total number of module inspections",
			},
			[]string{"engine", "status"},
		),

		InspectDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wasminspect_inspect_duration_seconds",
				Help:    "Time spent reading and describing a module",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"engine"},
		),

		BinarySize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wasminspect_binary_size_bytes",
				Help: "Size of the inspected binary",
			},
			[]string{"path"},
		),

		SymbolsMissing: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wasminspect_symbols_missing",
				Help: "Number of expected exports the binary lacks",
			},
			[]string{"path"},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wasminspect_cache_hits_total",
				Help: "Total number of descriptor cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wasminspect_cache_misses_total",
				Help: "Total number of descriptor cache misses",
			},
		),
	}
}

// RecordInspection records the outcome and latency of one inspection
func (m *PrometheusMetrics) RecordInspection(engine, status string, duration time.Duration) {
	m.InspectionsTotal.WithLabelValues(engine, status).Inc()
	m.InspectDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordBinary records size and missing symbol count for a path
func (m *PrometheusMetrics) RecordBinary(path string, size, missing int) {
	m.BinarySize.WithLabelValues(path).Set(float64(size))
	m.SymbolsMissing.WithLabelValues(path).Set(float64(missing))
}

// RecordCacheHit records a cache hit
func (m *PrometheusMetrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// Gatherer exposes the registry
func (m *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics in the node exporter textfile format
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}
