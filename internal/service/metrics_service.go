package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Apply outcomes recorded by ObserveApply.
const (
	ApplyResultApplied  = "applied"
	ApplyResultNoop     = "noop"
	ApplyResultConflict = "conflict"
	ApplyResultError    = "error"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer and the timetable engine.
// All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	generationDuration *prometheus.HistogramVec
	generationPeriods  *prometheus.CounterVec
	generationWarnings *prometheus.CounterVec
	applyTotal         *prometheus.CounterVec
	applyPeriods       *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_preview_cache_latency_seconds",
		Help:    "Latency of preview store lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_preview_cache_hits_total",
		Help: "Preview lookups that found a live preview",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_preview_cache_misses_total",
		Help: "Preview lookups for missing or expired previews",
	})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Time spent generating and analysing a timetable preview",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"category"})

	generationPeriods := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generated_periods_total",
		Help: "Generated periods by kind",
	}, []string{"category", "kind"})

	generationWarnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_warnings_total",
		Help: "Analysis warnings emitted for generated previews",
	}, []string{"category"})

	applyTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_apply_total",
		Help: "Apply attempts by outcome",
	}, []string{"result"})

	applyPeriods := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_apply_periods_total",
		Help: "Periods written by apply, by operation",
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheHits, cacheMisses,
		generationDuration, generationPeriods, generationWarnings,
		applyTotal, applyPeriods,
		goroutines,
	)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		generationDuration: generationDuration,
		generationPeriods:  generationPeriods,
		generationWarnings: generationWarnings,
		applyTotal:         applyTotal,
		applyPeriods:       applyPeriods,
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a preview store lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// GenerationStats summarises one generation run for ObserveGeneration.
type GenerationStats struct {
	Category string
	Lessons  int
	Free     int
	Other    int
	Warnings int
	Duration time.Duration
}

// ObserveGeneration records a generated preview.
func (m *MetricsService) ObserveGeneration(stats GenerationStats) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(stats.Category).Observe(stats.Duration.Seconds())
	m.generationPeriods.WithLabelValues(stats.Category, "lesson").Add(float64(stats.Lessons))
	m.generationPeriods.WithLabelValues(stats.Category, "free").Add(float64(stats.Free))
	m.generationPeriods.WithLabelValues(stats.Category, "other").Add(float64(stats.Other))
	m.generationWarnings.WithLabelValues(stats.Category).Add(float64(stats.Warnings))
}

// ObserveApply records an apply attempt and the writes it performed.
func (m *MetricsService) ObserveApply(result string, inserted, updated int) {
	if m == nil {
		return
	}
	m.applyTotal.WithLabelValues(result).Inc()
	if inserted > 0 {
		m.applyPeriods.WithLabelValues("insert").Add(float64(inserted))
	}
	if updated > 0 {
		m.applyPeriods.WithLabelValues("update").Add(float64(updated))
	}
}
