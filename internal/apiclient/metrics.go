package apiclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records forwarder activity.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apsmcp",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Resource API requests by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apsmcp",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Resource API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apsmcp",
			Subsystem: "api",
			Name:      "rejected_total",
			Help:      "Requests rejected before any network I/O.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.rejected)
	return m
}

// Registry exposes the registry so other components can add collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) reject(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
