package companies

import (
	"testing"
	"time"

	"company-manager/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func findByLabel(family *dto.MetricFamily, name, value string) *dto.Metric {
	for _, m := range family.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == name && l.GetValue() == value {
				return m
			}
		}
	}
	return nil
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Observe(&reconcile.Result{
		Loaded:   47,
		Expected: 50,
		Failures: 2,
		Duration: 3 * time.Second,
		Phases: []reconcile.PhaseStat{
			{Phase: reconcile.PhaseBulk, Name: "bulk", Requests: 1, Added: 40},
			{Phase: reconcile.PhasePagedSweep, Name: "paged_sweep", Requests: 4, Added: 7, Failures: 2},
		},
	})

	families, err := reg.Gather()
	require.NoError(t, err)

	runs := findFamily(families, "company_manager_reconcile_runs_total")
	require.NotNil(t, runs)
	partial := findByLabel(runs, "status", "partial")
	require.NotNil(t, partial)
	assert.Equal(t, 1.0, partial.GetCounter().GetValue())

	failures := findFamily(families, "company_manager_reconcile_request_failures_total")
	require.NotNil(t, failures)
	assert.Equal(t, 2.0, findByLabel(failures, "phase", "paged_sweep").GetCounter().GetValue())

	loaded := findFamily(families, "company_manager_companies_loaded")
	require.NotNil(t, loaded)
	assert.Equal(t, 47.0, loaded.GetMetric()[0].GetGauge().GetValue())

	duration := findFamily(families, "company_manager_reconcile_duration_seconds")
	require.NotNil(t, duration)
	assert.Equal(t, dto.MetricType_HISTOGRAM, duration.GetType())
	assert.Equal(t, uint64(1), duration.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe(&reconcile.Result{}) })
}
