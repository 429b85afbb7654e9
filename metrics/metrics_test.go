package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveRender(time.Now())
	m.ObserveRender(time.Now())
	m.Calculated("sma")
	m.Calculated("sma")
	m.Calculated("rsi")
	m.Frame()
	m.Series(true)
	m.Series(false)
	m.Indicators(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RenderPasses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calculations.WithLabelValues("sma")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("rsi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnimationFrames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeriesAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeriesRejected))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ActiveIndicators))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderDuration))

	n, err := testutil.GatherAndCount(reg, "chart_render_passes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRender(time.Now())
		m.Calculated("sma")
		m.Frame()
		m.Series(false)
		m.Indicators(1)
	})

	unregistered, err := New(nil)
	require.NoError(t, err)
	unregistered.Frame()
	assert.Equal(t, 1.0, testutil.ToFloat64(unregistered.AnimationFrames))
}
