// Package telemetry instruments compile and package operations with
// Prometheus metrics and OpenTelemetry spans. Both are opt-in: a nil
// *Metrics or Tracer is valid and records nothing.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nextroute-dev/nextroute/pkg/routes"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "nextroute").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for compile duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "nextroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors.
type Metrics struct {
	buildsTotal     *prometheus.CounterVec
	compileDuration prometheus.Histogram
	rulesEmitted    *prometheus.GaugeVec
	assetsUploaded  prometheus.Counter
}

// NewMetrics registers the collectors and returns the handle used to record
// observations.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "builds_total",
			Help:        "Total number of packaging runs by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		compileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "compile_duration_seconds",
			Help:        "Route table compilation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		rulesEmitted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "rules_emitted",
			Help:        "Rules in the last compiled table by phase",
			ConstLabels: config.ConstLabels,
		}, []string{"phase"}),

		assetsUploaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "assets_uploaded_total",
			Help:        "Total static assets offloaded to object storage",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordBuild records one packaging run.
func (m *Metrics) RecordBuild(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.buildsTotal.WithLabelValues(status).Inc()
}

// RecordCompile records a compile duration and the per-phase rule counts of
// the resulting table.
func (m *Metrics) RecordCompile(d time.Duration, table *routes.RouteTable) {
	if m == nil {
		return
	}
	m.compileDuration.Observe(d.Seconds())

	counts := make(map[routes.Phase]int)
	phase := routes.Phase("")
	for _, r := range table.Routes {
		if r.IsMarker() {
			phase = r.Handle
			continue
		}
		counts[phase]++
	}
	m.rulesEmitted.Reset()
	for phase, n := range counts {
		label := string(phase)
		if label == "" {
			label = "main"
		}
		m.rulesEmitted.WithLabelValues(label).Set(float64(n))
	}
}

// RecordUploads records offloaded assets.
func (m *Metrics) RecordUploads(count int) {
	if m == nil {
		return
	}
	m.assetsUploaded.Add(float64(count))
}
