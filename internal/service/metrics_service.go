package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/studymate-api/internal/models"
)

// MetricsService owns the Prometheus registry and keeps counters for the
// JSON snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	llmDuration     *prometheus.HistogramVec
	llmCalls        *prometheus.CounterVec
	plansGenerated  prometheus.Counter
	planEvents      prometheus.Histogram
	documents       prometheus.Gauge
	aiResults       *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	llmCallCount         uint64
	llmFailureCount      uint64
	planCount            uint64
}

// NewMetricsService registers the collectors.
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

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache reads",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	llmDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_request_duration_seconds",
		Help:    "Duration of text completion calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"kind"})

	llmCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_requests_total",
		Help: "Text completion calls by kind and outcome",
	}, []string{"kind", "outcome"})

	plansGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "study_plans_generated_total",
		Help: "Study plans generated",
	})

	planEvents := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "study_plan_events",
		Help:    "Events per generated study plan",
		Buckets: []float64{0, 10, 25, 50, 75, 100},
	})

	documents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "documents_stored",
		Help: "Documents currently held in memory",
	})

	aiResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_results_persisted_total",
		Help: "AI results handed to the persistence queue by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheLatency, cacheWrite,
		llmDuration, llmCalls, plansGenerated, planEvents, documents, aiResults, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLookups:    cacheLookups,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		llmDuration:     llmDuration,
		llmCalls:        llmCalls,
		plansGenerated:  plansGenerated,
		planEvents:      planEvents,
		documents:       documents,
		aiResults:       aiResults,
	}
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

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache read.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveLLMCall records a text completion call.
func (m *MetricsService) ObserveLLMCall(kind models.AIResultKind, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.llmFailureCount, 1)
	}
	m.llmDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
	m.llmCalls.WithLabelValues(string(kind), outcome).Inc()
	atomic.AddUint64(&m.llmCallCount, 1)
}

// ObservePlanGenerated records a generated plan and its size.
func (m *MetricsService) ObservePlanGenerated(events int) {
	if m == nil {
		return
	}
	m.plansGenerated.Inc()
	m.planEvents.Observe(float64(events))
	atomic.AddUint64(&m.planCount, 1)
}

// SetDocumentsStored reports the in-memory document count.
func (m *MetricsService) SetDocumentsStored(n int) {
	if m == nil {
		return
	}
	m.documents.Set(float64(n))
}

// RecordAIResult counts an AI result persistence outcome.
func (m *MetricsService) RecordAIResult(outcome string) {
	if m == nil {
		return
	}
	m.aiResults.WithLabelValues(outcome).Inc()
}

// Snapshot summarises the counters.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if hits+misses > 0 {
		cacheRatio = float64(hits) / float64(hits+misses)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            cacheRatio,
		LLMCalls:                 atomic.LoadUint64(&m.llmCallCount),
		LLMFailures:              atomic.LoadUint64(&m.llmFailureCount),
		PlansGenerated:           atomic.LoadUint64(&m.planCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
