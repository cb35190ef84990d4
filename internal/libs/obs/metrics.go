package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported on /metrics
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	searches      *prometheus.CounterVec
	piiDetections *prometheus.CounterVec
	hydrations    prometheus.Counter
	workerScanned prometheus.Counter
}

// NewMetrics creates collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptlib",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "promptlib",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptlib",
			Name:      "searches_total",
			Help:      "Library searches by outcome (hit or empty).",
		}, []string{"outcome"}),
		piiDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptlib",
			Name:      "pii_detections_total",
			Help:      "PII detections by type.",
		}, []string{"type"}),
		hydrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "promptlib",
			Name:      "library_hydrations_total",
			Help:      "Library snapshot hydrations.",
		}),
		workerScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "promptlib",
			Name:      "worker_prompts_scanned_total",
			Help:      "Prompts inspected by the risk scanner.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.searches,
		m.piiDetections,
		m.hydrations,
		m.workerScanned,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveSearch counts a library search
func (m *Metrics) ObserveSearch(results int) {
	if m == nil {
		return
	}
	outcome := "hit"
	if results == 0 {
		outcome = "empty"
	}
	m.searches.WithLabelValues(outcome).Inc()
}

// ObservePII counts a detection of the given PII type
func (m *Metrics) ObservePII(piiType string) {
	if m == nil {
		return
	}
	m.piiDetections.WithLabelValues(piiType).Inc()
}

// ObserveHydration counts a library snapshot load
func (m *Metrics) ObserveHydration() {
	if m == nil {
		return
	}
	m.hydrations.Inc()
}

// ObserveScanned counts prompts inspected by the worker
func (m *Metrics) ObserveScanned(n int) {
	if m == nil {
		return
	}
	m.workerScanned.Add(float64(n))
}
