package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Tree metrics
	TreeReplacements prometheus.Counter
	ShapeRejections  *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec

	// Store metrics
	StoreWrites        *prometheus.CounterVec
	StoreWriteDuration *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with its own registry, so several
// collectors (one per test, say) never collide on registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TreeReplacements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tree_replacements_total",
				Help:      "Total number of accepted full-document replacements",
			},
		),
		ShapeRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tree_shape_rejections_total",
				Help:      "Total number of documents refused by the shape check",
			},
			[]string{"reason"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of password logins by outcome",
			},
			[]string{"outcome"},
		),
		StoreWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_writes_total",
				Help:      "Total number of background store writes",
			},
			[]string{"backend", "status"},
		),
		StoreWriteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_write_duration_seconds",
				Help:      "Store write duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.TreeReplacements,
		c.ShapeRejections,
		c.LoginAttempts,
		c.StoreWrites,
		c.StoreWriteDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStoreWrite implements ports.StoreObserver.
func (c *Collector) ObserveStoreWrite(backend string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.StoreWrites.WithLabelValues(backend, status).Inc()
	c.StoreWriteDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// ObserveReplacement counts an accepted PUT.
func (c *Collector) ObserveReplacement() {
	c.TreeReplacements.Inc()
}

// ObserveRejection counts a refused PUT by reason.
func (c *Collector) ObserveRejection(reason string) {
	c.ShapeRejections.WithLabelValues(reason).Inc()
}

// ObserveLogin counts a login attempt: "ok", "denied" or "limited".
func (c *Collector) ObserveLogin(outcome string) {
	c.LoginAttempts.WithLabelValues(outcome).Inc()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
