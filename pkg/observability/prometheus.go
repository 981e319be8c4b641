package observability

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusConfig configures PrometheusMetrics.
type PrometheusConfig struct {
	// Registry defaults to a private registry.
	Registry  *prometheus.Registry
	Namespace string
	// Buckets for histograms and timings, in seconds for timings.
	Buckets []float64
	Logger  *slog.Logger
}

// DefaultPrometheusConfig returns the worker defaults.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace: "chief",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}
}

// PrometheusMetrics implements Metrics on a Prometheus registry. Vectors
// are created on first use with the call's tag keys as label names.
type PrometheusMetrics struct {
	registry  *prometheus.Registry
	namespace string
	buckets   []float64
	logger    *slog.Logger

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a collector.
func NewPrometheusMetrics(cfg PrometheusConfig) *PrometheusMetrics {
	def := DefaultPrometheusConfig()
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = def.Buckets
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PrometheusMetrics{
		registry:   cfg.Registry,
		namespace:  cfg.Namespace,
		buckets:    cfg.Buckets,
		logger:     cfg.Logger,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	keys, values := splitTags(tags)
	name = metricName(name)

	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      "Counter " + name,
		}, keys)
		if !m.register(name, vec) {
			m.mu.Unlock()
			return
		}
		m.counters[name] = vec
	}
	m.mu.Unlock()

	if c, err := vec.GetMetricWithLabelValues(values...); err == nil {
		c.Add(float64(value))
	} else {
		m.logger.Warn("dropping counter sample", "metric", name, "error", err)
	}
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	keys, values := splitTags(tags)
	name = metricName(name)

	m.mu.Lock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      "Gauge " + name,
		}, keys)
		if !m.register(name, vec) {
			m.mu.Unlock()
			return
		}
		m.gauges[name] = vec
	}
	m.mu.Unlock()

	if g, err := vec.GetMetricWithLabelValues(values...); err == nil {
		g.Set(value)
	} else {
		m.logger.Warn("dropping gauge sample", "metric", name, "error", err)
	}
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(metricName(name), value, tags)
}

// Timing records seconds into a "<name>_seconds" histogram.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(metricName(name)+"_seconds", duration.Seconds(), tags)
}

func (m *PrometheusMetrics) observe(name string, value float64, tags []Tag) {
	keys, values := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      "Histogram " + name,
			Buckets:   m.buckets,
		}, keys)
		if !m.register(name, vec) {
			m.mu.Unlock()
			return
		}
		m.histograms[name] = vec
	}
	m.mu.Unlock()

	if h, err := vec.GetMetricWithLabelValues(values...); err == nil {
		h.Observe(value)
	} else {
		m.logger.Warn("dropping histogram sample", "metric", name, "error", err)
	}
}

// register must be called with m.mu held.
func (m *PrometheusMetrics) register(name string, c prometheus.Collector) bool {
	if err := m.registry.Register(c); err != nil {
		m.logger.Warn("failed to register metric", "metric", name, "error", err)
		return false
	}
	return true
}

func splitTags(tags []Tag) ([]string, []string) {
	sorted := sortedTags(tags)
	keys := make([]string, len(sorted))
	values := make([]string, len(sorted))
	for i, t := range sorted {
		keys[i] = t.Key
		values[i] = t.Value
	}
	return keys, values
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}
