// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bakehouse"

// Metrics groups every collector behind a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	orderOps      *prometheus.CounterVec
	stepFailures  *prometheus.CounterVec
	droppedEvents prometheus.Counter
	activeStreams *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		orderOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_operations_total",
			Help:      "Order submissions and transitions by outcome.",
		}, []string{"operation", "outcome"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_step_failures_total",
			Help:      "Failed submission saga steps.",
		}, []string{"step"}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_dropped_events_total",
			Help:      "Change notifications dropped because a subscriber was slow.",
		}),
		activeStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_active_streams",
			Help:      "Open SSE streams by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.orderOps,
		m.stepFailures,
		m.droppedEvents,
		m.activeStreams,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// OrderOperation counts a submit/advance/cancel by outcome.
func (m *Metrics) OrderOperation(operation, outcome string) {
	m.orderOps.WithLabelValues(operation, outcome).Inc()
}

// StepFailed counts one failed saga step attempt.
func (m *Metrics) StepFailed(step string) {
	m.stepFailures.WithLabelValues(stepKind(step)).Inc()
}

// EventDropped counts a notification that could not be delivered.
func (m *Metrics) EventDropped() {
	m.droppedEvents.Inc()
}

// StreamOpened tracks an SSE stream; the returned func closes it.
func (m *Metrics) StreamOpened(kind string) func() {
	g := m.activeStreams.WithLabelValues(kind)
	g.Inc()
	return g.Dec
}

// TrackedCustomers exposes the number of customers with a live order
// tracking, read from count at scrape time.
func (m *Metrics) TrackedCustomers(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_tracked_customers",
		Help:      "Customers with a live order tracking.",
	}, func() float64 { return float64(count()) }))
}

// stepKind drops the product id so the label set stays bounded.
func stepKind(step string) string {
	for i := 0; i < len(step); i++ {
		if step[i] == ':' {
			return step[:i]
		}
	}
	return step
}
