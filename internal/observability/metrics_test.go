package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequestObservesLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/analytics/overview", "GET", 200, 150*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var count, requests uint64
	var sum float64
	for _, mf := range families {
		switch mf.GetName() {
		case "http_request_duration_seconds":
			require.Len(t, mf.GetMetric(), 1)
			hist := mf.GetMetric()[0].GetHistogram()
			count = hist.GetSampleCount()
			sum = hist.GetSampleSum()
		case "http_requests_total":
			require.Len(t, mf.GetMetric(), 1)
			requests = uint64(mf.GetMetric()[0].GetCounter().GetValue())
		}
	}

	assert.Equal(t, uint64(1), count)
	assert.InDelta(t, 0.15, sum, 1e-9)
	assert.Equal(t, uint64(1), requests)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest("/health/live", "GET", 200, time.Millisecond)
		m.RecordError("/health/live", "GET", "INTERNAL_ERROR")
		m.ObserveReport(time.Millisecond)
		m.RecordSkippedTenant()
	})
}
