// Package metrics holds the Prometheus instruments of the chart engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all chart engine instruments.
type Metrics struct {
	RenderPasses     prometheus.Counter
	RenderDuration   prometheus.Histogram
	Calculations     *prometheus.CounterVec // labels: kind
	AnimationFrames  prometheus.Counter
	SeriesRejected   prometheus.Counter
	SeriesAccepted   prometheus.Counter
	ActiveIndicators prometheus.Gauge
}

// New creates the instruments and registers them on reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RenderPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chart_render_passes_total",
			Help: "Full redraws of the chart surface",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_render_duration_seconds",
			Help:    "Time spent in one redraw",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.004, 0.008, 0.016, 0.033, 0.1},
		}),
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_indicator_calculations_total",
			Help: "Indicator calculator runs (by kind)",
		}, []string{"kind"}),
		AnimationFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chart_animation_frames_total",
			Help: "Viewport animation frames processed",
		}),
		SeriesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chart_series_rejected_total",
			Help: "Bar series rejected as invalid",
		}),
		SeriesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chart_series_accepted_total",
			Help: "Bar series and appends accepted",
		}),
		ActiveIndicators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chart_active_indicators",
			Help: "Indicators currently attached to the chart",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.RenderPasses,
		m.RenderDuration,
		m.Calculations,
		m.AnimationFrames,
		m.SeriesRejected,
		m.SeriesAccepted,
		m.ActiveIndicators,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRender records one redraw that started at start.
func (m *Metrics) ObserveRender(start time.Time) {
	if m == nil {
		return
	}
	m.RenderPasses.Inc()
	m.RenderDuration.Observe(time.Since(start).Seconds())
}

// Calculated records one calculator run.
func (m *Metrics) Calculated(kind string) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(kind).Inc()
}

// Frame records one animation frame.
func (m *Metrics) Frame() {
	if m == nil {
		return
	}
	m.AnimationFrames.Inc()
}

// Series records the outcome of a data update.
func (m *Metrics) Series(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.SeriesAccepted.Inc()
	} else {
		m.SeriesRejected.Inc()
	}
}

// Indicators sets the number of attached indicators.
func (m *Metrics) Indicators(n int) {
	if m == nil {
		return
	}
	m.ActiveIndicators.Set(float64(n))
}
