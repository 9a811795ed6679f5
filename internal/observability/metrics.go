// Package observability holds the Prometheus metrics for model invocations,
// upstream fallbacks and batch outlooks.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greenpulse"

// Metrics holds the Prometheus counters and histograms for both services.
type Metrics struct {
	ModelInvocations        *prometheus.CounterVec // labels: outcome={success,rejected,error}
	ModelInvocationDuration prometheus.Histogram
	UpstreamFallbacks       *prometheus.CounterVec // labels: upstream={pollutants,weather}, reason={not_configured,error}
	BatchStations           *prometheus.CounterVec // labels: outcome={success,error}
	StationsLoaded          prometheus.Gauge

	gatherer prometheus.Gatherer
}

func newMetrics() *Metrics {
	return &Metrics{
		ModelInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_invocations_total",
			Help:      "Model invocations by outcome.",
		}, []string{"outcome"}),
		ModelInvocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_invocation_duration_seconds",
			Help:      "Duration of a single model and explainer call.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		UpstreamFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fallbacks_total",
			Help:      "Synthetic readings served in place of live upstream data.",
		}, []string{"upstream", "reason"}),
		BatchStations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_stations_total",
			Help:      "Stations processed by batch outlook requests, by outcome.",
		}, []string{"outcome"}),
		StationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_loaded",
			Help:      "Number of entries in the station registry.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ModelInvocations,
		m.ModelInvocationDuration,
		m.UpstreamFallbacks,
		m.BatchStations,
		m.StationsLoaded,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

// ObserveInvocation records one model invocation.
func (m *Metrics) ObserveInvocation(outcome string, elapsed time.Duration) {
	m.ModelInvocations.WithLabelValues(outcome).Inc()
	m.ModelInvocationDuration.Observe(elapsed.Seconds())
}

// ObserveFallback records one synthetic fallback.
func (m *Metrics) ObserveFallback(upstream, reason string) {
	m.UpstreamFallbacks.WithLabelValues(upstream, reason).Inc()
}

// ObserveBatchStation records the outcome for one station of a batch.
func (m *Metrics) ObserveBatchStation(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.BatchStations.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
