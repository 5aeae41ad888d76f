package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of one server. Each server owns its registry.
type Metrics struct {
	registry          *prometheus.Registry
	requestCounter    *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	simulations       *prometheus.CounterVec
	convergenceRounds prometheus.Histogram
	lossEvents        prometheus.Histogram
	cacheLookups      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netsim",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "netsim",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "path"},
		),
		simulations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netsim",
				Subsystem: "sim",
				Name:      "runs_total",
				Help:      "Simulations run, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		convergenceRounds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "netsim",
				Subsystem: "rip",
				Name:      "convergence_rounds",
				Help:      "Distance-vector rounds needed per topology",
				Buckets:   prometheus.LinearBuckets(1, 2, 10),
			},
		),
		lossEvents: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "netsim",
				Subsystem: "tcp",
				Name:      "loss_events",
				Help:      "Loss events per transmission",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netsim",
				Subsystem: "rip",
				Name:      "cache_lookups_total",
				Help:      "Converged network cache lookups",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records the count and latency of every request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)
		m.requestCounter.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern labels a request by the route it matched so that unknown paths share one series.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.RoutePatterns) == 0 {
		return "unmatched"
	}
	return strings.ReplaceAll(strings.Join(rctx.RoutePatterns, ""), "/*/", "/")
}

func (m *Metrics) observeRun(kind, outcome string) {
	m.simulations.WithLabelValues(kind, outcome).Inc()
}
