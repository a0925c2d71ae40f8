// Package metrics exposes Prometheus collectors for the HTTP surface and the
// calculation engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	registry *prometheus.Registry

	Calculations     prometheus.Counter
	UnhealthyModels  prometheus.Counter
	Projections      prometheus.Counter
	ProjectedPeriods prometheus.Histogram
	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Calculations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moneymodel_calculations_total",
			Help: "Unit-economics calculations performed.",
		}),
		UnhealthyModels: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moneymodel_unhealthy_results_total",
			Help: "Calculations whose funded ratio was below the healthy threshold.",
		}),
		Projections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moneymodel_projections_total",
			Help: "Growth projections simulated.",
		}),
		ProjectedPeriods: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moneymodel_projection_periods",
			Help:    "Number of periods per simulated projection.",
			Buckets: prometheus.LinearBuckets(6, 6, 6),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.Calculations,
		m.UnhealthyModels,
		m.Projections,
		m.ProjectedPeriods,
		m.requests,
		m.latency,
	)
	return m
}

// ObserveCalculation records one calculator run.
func (m *Metrics) ObserveCalculation(healthy bool) {
	m.Calculations.Inc()
	if !healthy {
		m.UnhealthyModels.Inc()
	}
}

// ObserveProjection records one simulation of n periods.
func (m *Metrics) ObserveProjection(n int) {
	m.Projections.Inc()
	m.ProjectedPeriods.Observe(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests and their latency, labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
