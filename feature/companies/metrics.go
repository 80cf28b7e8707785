package companies

import (
	"company-manager/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "company_manager"

// Metrics records reconciliation outcomes for Prometheus.
type Metrics struct {
	runs     *prometheus.CounterVec
	requests *prometheus.CounterVec
	added    *prometheus.CounterVec
	failures *prometheus.CounterVec
	loaded   prometheus.Gauge
	expected prometheus.Gauge
	duration prometheus.Histogram
}

// NewMetrics creates the reconciliation metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation runs by final status.",
		}, []string{"status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_requests_total",
			Help:      "Listing requests issued by reconciliation phase.",
		}, []string{"phase"}),
		added: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_companies_added_total",
			Help:      "New companies contributed by reconciliation phase.",
		}, []string{"phase"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_request_failures_total",
			Help:      "Failed listing requests by reconciliation phase.",
		}, []string{"phase"}),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "companies_loaded",
			Help:      "Unique companies found by the last reconciliation.",
		}),
		expected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "companies_expected",
			Help:      "Total declared by the portal in the last reconciliation.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of reconciliation runs.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.runs, m.requests, m.added, m.failures, m.loaded, m.expected, m.duration)
	}
	return m
}

// Observe records one finished run. A nil receiver is a no-op.
func (m *Metrics) Observe(result *reconcile.Result) {
	if m == nil || result == nil {
		return
	}
	m.runs.WithLabelValues(string(result.Status())).Inc()
	for _, p := range result.Phases {
		m.requests.WithLabelValues(p.Name).Add(float64(p.Requests))
		m.added.WithLabelValues(p.Name).Add(float64(p.Added))
		m.failures.WithLabelValues(p.Name).Add(float64(p.Failures))
	}
	m.loaded.Set(float64(result.Loaded))
	m.expected.Set(float64(result.Expected))
	m.duration.Observe(result.Duration.Seconds())
}
