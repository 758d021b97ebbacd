// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records solver, auth and settlement outcomes. Services take
// the interface so tests can pass a no-op.
type Collector interface {
	ObserveSolve(duration time.Duration, nonce uint64)
	RecordAuth(outcome string)
	RecordSettlement(outcome string)
	RecordConsistencyGap()
}

// PrometheusCollector is the Prometheus-backed Collector.
type PrometheusCollector struct {
	solveDuration prometheus.Histogram
	solveNonce    prometheus.Histogram
	authOutcomes  *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	gaps          prometheus.Counter
}

// NewCollector creates a collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agora_pow_solve_seconds",
			Help:    "Wall time spent solving the admission puzzle",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		solveNonce: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agora_pow_solve_nonce",
			Help:    "Winning nonce value, a proxy for solver effort",
			Buckets: prometheus.ExponentialBuckets(16, 4, 12),
		}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_auth_outcomes_total",
			Help: "Authentication attempts by outcome",
		}, []string{"outcome"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_settlements_total",
			Help: "Purchase attempts by outcome",
		}, []string{"outcome"}),
		gaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agora_consistency_gaps_total",
			Help: "Payments that settled without a listing update",
		}),
	}

	reg.MustRegister(
		c.solveDuration,
		c.solveNonce,
		c.authOutcomes,
		c.settlements,
		c.gaps,
	)
	return c
}

func (c *PrometheusCollector) ObserveSolve(duration time.Duration, nonce uint64) {
	c.solveDuration.Observe(duration.Seconds())
	c.solveNonce.Observe(float64(nonce))
}

func (c *PrometheusCollector) RecordAuth(outcome string) {
	c.authOutcomes.WithLabelValues(outcome).Inc()
}

func (c *PrometheusCollector) RecordSettlement(outcome string) {
	c.settlements.WithLabelValues(outcome).Inc()
}

func (c *PrometheusCollector) RecordConsistencyGap() {
	c.gaps.Inc()
}

// Handler returns the scrape endpoint for a registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Noop is a Collector that records nothing.
type Noop struct{}

func (Noop) ObserveSolve(time.Duration, uint64) {}
func (Noop) RecordAuth(string)                  {}
func (Noop) RecordSettlement(string)            {}
func (Noop) RecordConsistencyGap()              {}
