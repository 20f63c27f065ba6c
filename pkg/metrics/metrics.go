package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge
	RateLimited     prometheus.Counter

	SurgeriesScheduledTotal prometheus.Counter
	SurgeriesModifiedTotal  prometheus.Counter
	SurgeriesCancelledTotal prometheus.Counter

	DBQueryDuration *prometheus.HistogramVec
	DBErrorsTotal   *prometheus.CounterVec
	BreakerState    prometheus.Gauge
}

// NewCollector registers the service metrics on reg. Metric namespaces may not
// contain dashes, so serviceName is normalised.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	ns := strings.ReplaceAll(serviceName, "-", "_")
	f := promauto.With(reg)

	return &Collector{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),

		SurgeriesScheduledTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "scheduling",
			Name:      "surgeries_scheduled_total",
			Help:      "Total number of surgeries scheduled.",
		}),

		SurgeriesModifiedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "scheduling",
			Name:      "surgeries_modified_total",
			Help:      "Total number of successful surgery modifications.",
		}),

		SurgeriesCancelledTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "scheduling",
			Name:      "surgeries_cancelled_total",
			Help:      "Total number of surgeries cancelled.",
		}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Document store operation latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "collection"}),

		DBErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Document store operations that failed with a driver error.",
		}, []string{"operation", "collection"}),

		BreakerState: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "breaker_state",
			Help:      "Store circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}),
	}
}

func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
