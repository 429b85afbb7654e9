package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/chartkit/frame"
	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/metrics"
	"github.com/rustyeddy/chartkit/surface"
)

func TestNewFailsWithoutSurface(t *testing.T) {
	surfs := &recorders{fail: true}
	r, err := New(surfs.provide, frame.NewManual(time.Now()), 800, 600, Options{})
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, surface.ErrNoSurface))

	_, err = New(nil, frame.NewManual(time.Now()), 800, 600, Options{})
	assert.True(t, errors.Is(err, surface.ErrNoSurface))

	_, err = New((&recorders{}).provide, nil, 800, 600, Options{})
	assert.Error(t, err)
}

func TestRetargetedAnimationConverges(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r

	r.SetVisibleRange(0, 100)
	r.SetVisibleRange(50, 150)
	assert.Equal(t, Animating, r.State())

	prev := r.Viewport().XMin
	for r.State() == Animating {
		h.sched.Advance(16 * time.Millisecond)
		x := r.Viewport().XMin
		assert.GreaterOrEqual(t, x, prev-1e-9, "xMin went backwards")
		assert.LessOrEqual(t, x, 50+1e-9, "xMin overshot")
		prev = x
	}

	v := r.Viewport()
	assert.Equal(t, 50.0, v.XMin)
	assert.Equal(t, 150.0, v.XMax)
	assert.Equal(t, 0, h.sched.Pending())
}

func TestRetargetStartsFromInterpolatedViewport(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r

	r.SetVisibleRange(0, 100)
	h.sched.Advance(100 * time.Millisecond)
	mid := r.Viewport()
	require.Greater(t, mid.XMin, 0.0)

	r.SetVisibleRange(200, 300)
	// no frame has run yet, the view has not snapped anywhere
	assert.Equal(t, mid, r.Viewport())
	assert.Equal(t, 1, h.sched.Pending())

	h.settle()
	assert.Equal(t, 200.0, r.Viewport().XMin)
	assert.Equal(t, Idle, r.State())
}

func TestRenderDoesNotRecalculate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	h := newHarness(t, Options{Metrics: m})
	r := h.r
	_, err = r.AddIndicator(indicators.KindSMA, indicators.Params{})
	require.NoError(t, err)
	_, err = r.AddIndicator(indicators.KindRSI, indicators.Params{})
	require.NoError(t, err)
	require.NoError(t, r.SetData(genBars(200)))

	calcs := r.Manager().Calculations()
	assert.Equal(t, 2, calcs)
	rec := h.surfs.last()
	rec.Reset()
	passes := testutil.ToFloat64(m.RenderPasses)

	const n = 10
	for i := 0; i < n; i++ {
		r.Render()
	}

	assert.Equal(t, calcs, r.Manager().Calculations())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("sma")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("rsi")))
	assert.Equal(t, n, rec.Count("clear"))
	assert.Equal(t, passes+n, testutil.ToFloat64(m.RenderPasses))
}

func TestSetDataRejectsInvalidSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	h := newHarness(t, Options{Metrics: m})
	r := h.r

	good := genBars(50)
	require.NoError(t, r.SetData(good))
	view := r.Viewport()

	bad := genBars(50)
	bad[10].Time = bad[9].Time
	err = r.SetData(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrInvalidSeries))
	assert.Equal(t, good, r.Bars())
	assert.Equal(t, view, r.Viewport())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeriesRejected))

	err = r.AppendBar(market.Bar{Time: good[49].Time, Open: 1, High: 1, Low: 1, Close: 1})
	assert.True(t, errors.Is(err, market.ErrInvalidSeries))
	assert.Len(t, r.Bars(), 50)
}

func TestSetDataFitsLatestBars(t *testing.T) {
	h := newHarness(t, Options{FitBars: 50})
	r := h.r
	r.SetSymbol("EURUSD")
	require.NoError(t, r.SetInterval("M1"))

	bars := genBars(200)
	require.NoError(t, r.SetData(bars))

	v := r.Viewport()
	assert.Equal(t, float64(bars[150].Time)-30, v.XMin)
	assert.Equal(t, float64(bars[199].Time)+180, v.XMax)
	assert.NoError(t, v.Validate())

	lo, hi, _ := market.Extent(bars[150:])
	assert.Less(t, v.YMin, lo)
	assert.Greater(t, v.YMax, hi)
	assert.Contains(t, h.surfs.last().Texts(), "EURUSD M1")
}

func TestSymbolChangeRefits(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(300)))

	r.Zoom(4, 0.5)
	h.settle()
	zoomed := r.Viewport()

	// same symbol: the view stays where the user put it
	require.NoError(t, r.SetData(genBars(300)))
	assert.Equal(t, zoomed.XMin, r.Viewport().XMin)

	r.SetSymbol("GBPUSD")
	require.NoError(t, r.SetData(genBars(300)))
	assert.NotEqual(t, zoomed.XMin, r.Viewport().XMin)
	assert.Equal(t, float64(genBars(300)[180].Time)-30, r.Viewport().XMin)

	assert.Error(t, r.SetInterval("M7"))
}

func TestZoomAccumulatesOnPendingTarget(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(300)))
	v0 := r.Viewport()
	center := v0.XMin + v0.SpanX()/2

	r.Zoom(2, 0.5)
	h.sched.Advance(16 * time.Millisecond)
	r.Zoom(2, 0.5)
	h.settle()

	v := r.Viewport()
	assert.InDelta(t, v0.SpanX()/4, v.SpanX(), 1e-6)
	assert.InDelta(t, center, v.XMin+v.SpanX()/2, 1e-6)
}

func TestZoomClampsToMinimumSpan(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(100)))

	r.Zoom(1e9, 0.5)
	h.settle()
	assert.InDelta(t, 120.0, r.Viewport().SpanX(), 1e-6)
	assert.NoError(t, r.Viewport().Validate())

	before := r.Viewport()
	r.Zoom(0, 0.5)
	r.Zoom(-2, 0.5)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, before, r.Viewport())
}

func TestPanAndDurations(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(300)))
	v0 := r.Viewport()

	// plot is 800-64 pixels wide; dragging left by a tenth moves forward
	r.Pan(-73.6)
	h.sched.Advance(150 * time.Millisecond)
	assert.Equal(t, Idle, r.State())
	assert.InDelta(t, v0.XMin+v0.SpanX()*0.1, r.Viewport().XMin, 1e-6)

	r.Zoom(2, 0.5)
	h.sched.Advance(150 * time.Millisecond)
	assert.Equal(t, Animating, r.State())
	h.sched.Advance(150 * time.Millisecond)
	assert.Equal(t, Idle, r.State())
}

func TestTunableDurations(t *testing.T) {
	h := newHarness(t, Options{RangeDuration: 50 * time.Millisecond, PanDuration: 20 * time.Millisecond})
	r := h.r
	require.NoError(t, r.SetData(genBars(100)))

	r.Zoom(2, 0.5)
	h.sched.Advance(50 * time.Millisecond)
	assert.Equal(t, Idle, r.State())

	r.Pan(10)
	h.sched.Advance(20 * time.Millisecond)
	assert.Equal(t, Idle, r.State())
}

func TestPointerDragPans(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(300)))
	v0 := r.Viewport()

	r.PointerDown(400, 100)
	r.PointerMove(300, 100)
	assert.Equal(t, Animating, r.State())
	r.PointerMove(200, 100)
	r.PointerUp(200, 100)
	h.settle()

	want := v0.XMin + 200/736.0*v0.SpanX()
	assert.InDelta(t, want, r.Viewport().XMin, 1e-6)

	// moving without a drag only redraws
	r.PointerMove(250, 100)
	assert.Equal(t, Idle, r.State())
}

func TestWheelZoomsAroundCursor(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(300)))
	v0 := r.Viewport()

	x := 184.0 // a quarter of the plot
	r.Wheel(-200, x)
	h.settle()

	v := r.Viewport()
	assert.Less(t, v.SpanX(), v0.SpanX())
	anchor := v0.XMin + 0.25*v0.SpanX()
	assert.InDelta(t, anchor, v.XMin+0.25*v.SpanX(), 1e-6)
}

func TestResizeRedrawsImmediately(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(100)))
	view := r.Viewport()

	require.NoError(t, r.Resize(400, 300))
	rec := h.surfs.last()
	w, ht := rec.Size()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, ht)
	assert.Equal(t, 1, rec.Count("clear"))
	assert.Equal(t, view, r.Viewport())
	assert.Same(t, rec, r.Surface())

	h.surfs.fail = true
	err := r.Resize(10, 10)
	assert.True(t, errors.Is(err, surface.ErrNoSurface))
	assert.Same(t, rec, r.Surface())
}

func TestAppendBarFollowsLatest(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	bars := genBars(100)
	require.NoError(t, r.SetData(bars[:99]))
	v0 := r.Viewport()

	require.NoError(t, r.AppendBar(bars[99]))
	v := r.Viewport()
	assert.Equal(t, v0.XMin+60, v.XMin)
	assert.Equal(t, v0.XMax+60, v.XMax)
	assert.Len(t, r.Bars(), 100)
}

func TestAppendRecalculatesIndicators(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	smaID, err := r.AddIndicator(indicators.KindSMA, indicators.Params{Period: 5})
	require.NoError(t, err)

	bars := genBars(20)
	require.NoError(t, r.SetData(bars[:10]))
	require.NoError(t, r.AppendBar(bars[10]))

	ind, ok := r.Manager().Get(smaID)
	require.True(t, ok)
	got := ind.PointerMove(float64(bars[10].Time))
	require.Len(t, got, 1)

	want := indicators.SMA(bars[:11], 5, market.PriceClose).Line("sma")
	assert.Equal(t, want[len(want)-1].Value, got[0].Value)
}

func TestReadout(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	_, ok := r.Readout(100)
	assert.False(t, ok)

	smaID, err := r.AddIndicator(indicators.KindSMA, indicators.Params{Period: 3})
	require.NoError(t, err)
	bars := genBars(200)
	require.NoError(t, r.SetData(bars))

	out, ok := r.Readout(735)
	require.True(t, ok)
	// the right edge is three bars of empty space past the last bar
	assert.Equal(t, 199, out.Index)
	assert.Equal(t, bars[199], out.Bar)
	require.Len(t, out.Indicators, 1)
	assert.Equal(t, smaID, out.Indicators[0].ID)
	assert.Equal(t, "sma", out.Indicators[0].Line)
	assert.InDelta(t, (bars[197].Close+bars[198].Close+bars[199].Close)/3, out.Indicators[0].Value, 1e-9)
}

func TestIndicatorAPI(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(200)))

	smaID, err := r.AddIndicator(indicators.KindSMA, indicators.Params{})
	require.NoError(t, err)
	macdID, err := r.AddIndicator(indicators.KindMACD, indicators.Params{})
	require.NoError(t, err)
	base := r.Manager().Calculations()
	assert.Equal(t, 2, base)

	// params touch only their own indicator
	require.NoError(t, r.SetParams(smaID, indicators.Params{Period: 5}))
	assert.Equal(t, base+1, r.Manager().Calculations())

	// style and visibility never recalculate
	require.NoError(t, r.SetStyle(macdID, Style{UpColor: "#000000"}))
	require.NoError(t, r.SetVisible(macdID, false))
	require.NoError(t, r.SetVisible(macdID, true))
	assert.Equal(t, base+1, r.Manager().Calculations())

	assert.Error(t, r.SetParams(smaID, indicators.Params{Period: -1}))
	assert.Equal(t, base+1, r.Manager().Calculations())

	require.NoError(t, r.RemoveIndicator(smaID))
	assert.True(t, errors.Is(r.RemoveIndicator(smaID), ErrUnknownIndicator))
	assert.True(t, errors.Is(r.SetVisible("nope", true), ErrUnknownIndicator))

	_, err = r.AddIndicator("ichimoku", indicators.Params{})
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestRedrawOrder(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	_, err := r.AddIndicator(indicators.KindSMA, indicators.Params{Period: 5})
	require.NoError(t, err)
	_, err = r.AddIndicator(indicators.KindATR, indicators.Params{Period: 5})
	require.NoError(t, err)
	require.NoError(t, r.SetData(genBars(100)))

	rec := h.surfs.last()
	rec.Reset()
	r.Render()

	first := func(match func(surface.Call) bool) int {
		for i, c := range rec.Calls {
			if match(c) {
				return i
			}
		}
		return -1
	}
	th := DefaultTheme()
	clear := first(func(c surface.Call) bool { return c.Op == "clear" })
	grid := first(func(c surface.Call) bool { return c.Op == "stroke" && c.State.Stroke == th.Grid })
	candle := first(func(c surface.Call) bool {
		return c.Op == "fill" && (c.State.Fill == th.Up || c.State.Fill == th.Down)
	})
	overlay := first(func(c surface.Call) bool { return c.Op == "stroke" && c.State.Stroke == "#2962ff" })
	panel := first(func(c surface.Call) bool { return c.Op == "stroke" && c.State.Stroke == "#ab47bc" })

	require.GreaterOrEqual(t, clear, 0)
	assert.Less(t, clear, grid)
	assert.Less(t, grid, candle)
	assert.Less(t, candle, overlay)
	assert.Less(t, overlay, panel)
}

func TestPanelsShareHeightEqually(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	_, err := r.AddIndicator(indicators.KindRSI, indicators.Params{})
	require.NoError(t, err)
	_, err = r.AddIndicator(indicators.KindMACD, indicators.Params{})
	require.NoError(t, err)
	require.NoError(t, r.SetData(genBars(200)))

	rec := h.surfs.last()
	rec.Reset()
	r.Render()

	var bands []float64
	var tops []float64
	for _, c := range rec.Calls {
		if c.Op == "clip" && c.State.Clip.Y > 0 {
			bands = append(bands, c.State.Clip.H)
			tops = append(tops, c.State.Clip.Y)
		}
	}
	// 600 - 22 axis = 578 plot; RSI 100 + MACD 120 fits under the cap
	require.Len(t, bands, 2)
	assert.InDelta(t, 110.0, bands[0], 1e-9)
	assert.InDelta(t, 110.0, bands[1], 1e-9)
	assert.InDelta(t, 358.0, tops[0], 1e-9)
	assert.InDelta(t, 468.0, tops[1], 1e-9)
}

func TestEaseOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(0))
	assert.Equal(t, 1.0, EaseOutCubic(1))
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-12)

	prev := 0.0
	for p := 0.0; p <= 1; p += 0.01 {
		e := EaseOutCubic(p)
		assert.GreaterOrEqual(t, e, prev)
		assert.LessOrEqual(t, e, 1.0)
		prev = e
	}
}

func TestAnimationRunsOnSchedulerClock(t *testing.T) {
	// a host timebase that starts at zero, far from wall-clock time
	sched := frame.NewManual(time.Unix(0, 0))
	r, err := New((&recorders{}).provide, sched, 800, 600, Options{})
	require.NoError(t, err)

	r.SetVisibleRange(0, 100)
	frames := sched.RunFor(10*time.Second, 16*time.Millisecond)

	assert.Equal(t, Idle, r.State())
	assert.Equal(t, 0, sched.Pending())
	assert.LessOrEqual(t, frames, 20)
	assert.Equal(t, 0.0, r.Viewport().XMin)
	assert.Equal(t, 100.0, r.Viewport().XMax)
}

func TestZoomOutIsBounded(t *testing.T) {
	h := newHarness(t, Options{})
	r := h.r
	require.NoError(t, r.SetData(genBars(200)))

	// four times the 200 bar extent, which is wider than the fit window
	const limit = 4 * 200 * 60.0

	r.Zoom(1e-9, 0.5)
	h.settle()
	assert.InDelta(t, limit, r.Viewport().SpanX(), 1e-6)
	assert.NoError(t, r.Viewport().Validate())

	for i := 0; i < 10; i++ {
		r.Wheel(2000, 400)
	}
	h.settle()
	assert.LessOrEqual(t, r.Viewport().SpanX(), limit+1e-6)
	assert.Equal(t, Idle, r.State())
}

func TestTimeTicksBounded(t *testing.T) {
	ticks, step := timeTicks(0, 3600, 6)
	assert.Equal(t, int64(900), step)
	assert.Equal(t, []int64{0, 900, 1800, 2700, 3600}, ticks)

	year := int64(365 * 86400)
	ticks, step = timeTicks(0, 1e13, 8)
	assert.Zero(t, step%year)
	assert.NotEmpty(t, ticks)
	assert.LessOrEqual(t, len(ticks), 9)

	ticks, _ = timeTicks(0, 1e300, 8)
	assert.Empty(t, ticks)
}
