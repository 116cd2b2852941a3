// Package telemetry exports inkpad's Prometheus metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "inkpad").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is where metrics are registered.
	// Default: a fresh prometheus.Registry.
	Registry *prometheus.Registry
}

// Option configures the metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds inkpad's collectors. It implements reactive.Hooks.
type Metrics struct {
	registry *prometheus.Registry

	sets            prometheus.Counter
	suppressedSets  prometheus.Counter
	notifications   prometheus.Counter
	listenerPanics  prometheus.Counter
	prunedListeners prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	wsClients       prometheus.Gauge
	wsDropped       prometheus.Counter
}

// New creates and registers the metrics.
func New(opts ...Option) *Metrics {
	config := Config{Namespace: "inkpad"}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		registry: config.Registry,

		sets:            counter("value_sets_total", "Reactive value writes that changed the value"),
		suppressedSets:  counter("value_sets_suppressed_total", "Reactive value writes dropped because the value was unchanged"),
		notifications:   counter("listener_notifications_total", "Update listeners invoked"),
		listenerPanics:  counter("listener_panics_total", "Update listeners that panicked"),
		prunedListeners: counter("listeners_pruned_total", "Listeners removed because their derived value was collected"),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by route and status",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"route"}),

		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "websocket_clients",
			Help:        "Connected WebSocket clients",
			ConstLabels: config.ConstLabels,
		}),

		wsDropped: counter("websocket_dropped_total", "WebSocket clients dropped for falling behind"),
	}
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnSet implements reactive.Hooks.
func (m *Metrics) OnSet(changed bool) {
	if changed {
		m.sets.Inc()
	} else {
		m.suppressedSets.Inc()
	}
}

// OnNotify implements reactive.Hooks.
func (m *Metrics) OnNotify(listeners int) {
	m.notifications.Add(float64(listeners))
}

// OnListenerPanic implements reactive.Hooks.
func (m *Metrics) OnListenerPanic(any) {
	m.listenerPanics.Inc()
}

// OnPrune implements reactive.Hooks.
func (m *Metrics) OnPrune() {
	m.prunedListeners.Inc()
}

// ClientConnected records a new WebSocket client.
func (m *Metrics) ClientConnected() {
	m.wsClients.Inc()
}

// ClientDisconnected records a WebSocket client leaving.
// dropped is true when the server cut it off for being too slow.
func (m *Metrics) ClientDisconnected(dropped bool) {
	m.wsClients.Dec()
	if dropped {
		m.wsDropped.Inc()
	}
}

// Middleware records request counts and durations by chi route pattern.
// The pattern keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
