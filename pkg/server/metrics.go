package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "nexp"

// Metrics holds the dev loop collectors. Each DevServer owns a registry so
// that several servers (and tests) never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	compilesTotal   *prometheus.CounterVec
	compileDuration prometheus.Histogram
	routes          prometheus.Gauge
	watchEvents     prometheus.Counter
	coalesced       prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		compilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "compiles_total",
			Help:      "Total number of server entry compiles",
		}, []string{"status"}),
		compileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "compile_duration_seconds",
			Help:      "Compile duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "routes",
			Help:      "Number of routes in the last successful compile",
		}),
		watchEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "watch_events_total",
			Help:      "Filesystem events that scheduled a compile",
		}),
		coalesced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "coalesced_compiles_total",
			Help:      "Compile requests folded into a follow-up compile",
		}),
	}
}

func (m *Metrics) observeCompile(seconds float64, routes int, err error) {
	m.compileDuration.Observe(seconds)
	if err != nil {
		m.compilesTotal.WithLabelValues("error").Inc()
		return
	}
	m.compilesTotal.WithLabelValues("ok").Inc()
	m.routes.Set(float64(routes))
}
