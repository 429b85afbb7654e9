// Package chart is the candlestick chart engine: indicator instances, the
// manager that lays them out, and the renderer that owns the viewport and
// its animations.
//
// Everything in this package is single-threaded. Hosts call the Renderer
// and drive its frame scheduler from one goroutine.
package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rustyeddy/chartkit/frame"
	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/internal/logger"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/metrics"
	"github.com/rustyeddy/chartkit/surface"
	"github.com/rustyeddy/chartkit/viewport"
)

// Options tunes a Renderer. Zero fields take the defaults noted.
type Options struct {
	// RangeDuration animates SetVisibleRange and Zoom (300ms).
	RangeDuration time.Duration
	// PanDuration animates Pan (150ms).
	PanDuration time.Duration
	// FitBars is how many of the latest bars a fit shows (120).
	FitBars int
	// RightBars is the empty space, in bars, right of the last bar after a fit (3).
	RightBars float64
	// AxisWidth is the price axis width in pixels (64).
	AxisWidth float64
	// TimeAxisHeight is the time axis height in pixels (22).
	TimeAxisHeight float64
	// MaxPanelRatio caps the panel area as a share of the plot height (0.45).
	MaxPanelRatio float64

	Theme   Theme
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.RangeDuration == 0 {
		o.RangeDuration = 300 * time.Millisecond
	}
	if o.PanDuration == 0 {
		o.PanDuration = 150 * time.Millisecond
	}
	if o.FitBars <= 0 {
		o.FitBars = 120
	}
	if o.RightBars == 0 {
		o.RightBars = 3
	}
	if o.AxisWidth == 0 {
		o.AxisWidth = 64
	}
	if o.TimeAxisHeight == 0 {
		o.TimeAxisHeight = 22
	}
	if o.MaxPanelRatio <= 0 || o.MaxPanelRatio > 1 {
		o.MaxPanelRatio = 0.45
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme()
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o
}

const maxSpanFactor = 4

// Renderer owns the live viewport, the bar series and the indicator
// manager, and redraws the chart onto its surface.
type Renderer struct {
	opts     Options
	provider surface.Provider
	sched    frame.Scheduler
	surf     surface.Surface
	mgr      *Manager
	log      *slog.Logger
	metrics  *metrics.Metrics

	symbol   string
	interval string
	tf       int64
	bars     []market.Bar
	needsFit bool

	view   viewport.Viewport
	anim   *animation
	handle frame.Handle

	cursor struct {
		x, y     float64
		in       bool
		dragging bool
		lastX    float64
	}
}

// New acquires a w by h surface from provider and returns an idle renderer.
// It fails when no surface can be acquired.
func New(provider surface.Provider, sched frame.Scheduler, w, h int, opts Options) (*Renderer, error) {
	if provider == nil {
		return nil, fmt.Errorf("new chart: %w", surface.ErrNoSurface)
	}
	if sched == nil {
		return nil, errors.New("new chart: nil frame scheduler")
	}
	surf, err := provider(w, h)
	if err != nil {
		return nil, fmt.Errorf("new chart: acquire surface: %w", err)
	}
	if surf == nil {
		return nil, fmt.Errorf("new chart: %w", surface.ErrNoSurface)
	}

	opts = opts.withDefaults()
	mgr := NewManager(opts.Logger, opts.Metrics)
	mgr.SetTheme(opts.Theme)

	return &Renderer{
		opts:     opts,
		provider: provider,
		sched:    sched,
		surf:     surf,
		mgr:      mgr,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		needsFit: true,
		view:     viewport.Viewport{XMin: 0, XMax: 1, YMin: 0, YMax: 1},
	}, nil
}

// Manager returns the indicator manager.
func (r *Renderer) Manager() *Manager { return r.mgr }

// Surface returns the current drawing surface.
func (r *Renderer) Surface() surface.Surface { return r.surf }

// Viewport returns the viewport as currently drawn.
func (r *Renderer) Viewport() viewport.Viewport { return r.view }

// State reports whether a transition is in flight.
func (r *Renderer) State() State {
	if r.anim != nil {
		return Animating
	}
	return Idle
}

// Bars returns the accepted bar series.
func (r *Renderer) Bars() []market.Bar { return r.bars }

// Symbol returns the current symbol.
func (r *Renderer) Symbol() string { return r.symbol }

// Interval returns the current interval name.
func (r *Renderer) Interval() string { return r.interval }

// ---------------------------------------------------------------------------
// Bar feed

// SetSymbol switches the symbol. The next series is fitted to the view.
func (r *Renderer) SetSymbol(sym string) {
	if sym == r.symbol {
		return
	}
	r.symbol = sym
	r.needsFit = true
	r.log.Info("symbol changed", "symbol", sym)
}

// SetInterval switches the interval, e.g. "M5" or "H1". The next series is
// fitted to the view.
func (r *Renderer) SetInterval(iv string) error {
	sec, err := market.TimeframeSeconds(iv)
	if err != nil {
		return fmt.Errorf("set interval: %w", err)
	}
	if iv == r.interval {
		return nil
	}
	r.interval, r.tf = iv, sec
	r.needsFit = true
	r.log.Info("interval changed", "interval", iv)
	return nil
}

// SetData replaces the bar series. An invalid series is rejected with an
// error wrapping market.ErrInvalidSeries and the previous one stays.
func (r *Renderer) SetData(bars []market.Bar) error {
	if err := market.ValidateSeries(bars); err != nil {
		r.metrics.Series(false)
		r.log.Warn("series rejected", "symbol", r.symbol, "error", err)
		return err
	}
	r.metrics.Series(true)

	r.bars = append([]market.Bar(nil), bars...)
	r.mgr.CalculateAll(r.bars)
	r.log.Info("series accepted", "symbol", r.symbol, "interval", r.interval, "bars", len(r.bars))

	if r.needsFit {
		r.fit()
	} else {
		r.view = r.fitY(r.view)
	}
	r.Render()
	return nil
}

// AppendBar adds one bar after the last. A view showing the previous last
// bar follows the series.
func (r *Renderer) AppendBar(b market.Bar) error {
	if err := b.Validate(); err != nil {
		r.metrics.Series(false)
		return fmt.Errorf("%w: append: %v", market.ErrInvalidSeries, err)
	}
	n := len(r.bars)
	if n > 0 && b.Time <= r.bars[n-1].Time {
		r.metrics.Series(false)
		return fmt.Errorf("%w: append: time %d not after %d", market.ErrInvalidSeries, b.Time, r.bars[n-1].Time)
	}
	r.metrics.Series(true)

	r.bars = append(r.bars, b)
	r.mgr.CalculateAll(r.bars)

	switch {
	case n == 0 || r.needsFit:
		r.fit()
	case r.anim == nil:
		last := float64(r.bars[n-1].Time)
		if last >= r.view.XMin && last <= r.view.XMax {
			d := float64(b.Time) - last
			r.view.XMin += d
			r.view.XMax += d
		}
		r.view = r.fitY(r.view)
	}
	r.Render()
	return nil
}

// fit shows the latest FitBars bars and cancels any animation.
func (r *Renderer) fit() {
	r.cancelAnimation()
	r.needsFit = false
	n := len(r.bars)
	if n == 0 {
		return
	}
	sp := float64(r.spacing())
	first := max(0, n-r.opts.FitBars)
	v := viewport.Viewport{
		XMin: float64(r.bars[first].Time) - sp/2,
		XMax: float64(r.bars[n-1].Time) + sp*r.opts.RightBars,
		YMin: r.view.YMin,
		YMax: r.view.YMax,
	}
	r.view = r.fitY(v)
}

// fitY scales the price range to the bars and overlays inside v's time range.
func (r *Renderer) fitY(v viewport.Viewport) viewport.Viewport {
	v = viewport.Limit(viewport.Clamp(v, r.minSpanX(), 0), r.maxSpanX())
	lo, hi := market.Window(r.bars, v.XMin, v.XMax)
	pLo, pHi, ok := market.Extent(r.bars[lo:hi])
	if oLo, oHi, found := r.mgr.RangeOverlays(v.XMin, v.XMax); found {
		if !ok {
			pLo, pHi, ok = oLo, oHi, true
		}
		pLo, pHi = math.Min(pLo, oLo), math.Max(pHi, oHi)
	}
	if !ok {
		return viewport.Clamp(v, r.minSpanX(), 1e-9)
	}
	pLo, pHi = viewport.Pad(pLo, pHi, 0.08)
	return viewport.Clamp(v.WithY(pLo, pHi), r.minSpanX(), math.Max(math.Abs(pHi)*1e-4, 1e-9))
}

func (r *Renderer) spacing() int64 {
	if sp := market.Spacing(r.bars); sp > 0 {
		return sp
	}
	if r.tf > 0 {
		return r.tf
	}
	return 60
}

func (r *Renderer) minSpanX() float64 {
	if len(r.bars) == 0 && r.tf == 0 {
		return 1e-9
	}
	return 2 * float64(r.spacing())
}

// maxSpanX bounds zoom-out to a few times the series or the fit window,
// whichever is wider. Without bars there is no bound.
func (r *Renderer) maxSpanX() float64 {
	n := len(r.bars)
	if n == 0 {
		return 0
	}
	sp := float64(r.spacing())
	extent := float64(r.bars[n-1].Time-r.bars[0].Time) + sp
	return maxSpanFactor * math.Max(extent, float64(r.opts.FitBars)*sp)
}

// ---------------------------------------------------------------------------
// Viewport control

// SetVisibleRange animates the time range to [start, end]; the price range
// follows the bars inside it.
func (r *Renderer) SetVisibleRange(start, end float64) {
	v := r.target()
	v.XMin, v.XMax = start, end
	r.animateTo(v, r.opts.RangeDuration)
}

// Zoom scales the time span by 1/factor around the point centerRatio of the
// way across the plot. factor > 1 zooms in. Repeated calls compound on the
// pending target.
func (r *Renderer) Zoom(factor, centerRatio float64) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return
	}
	centerRatio = math.Max(0, math.Min(1, centerRatio))
	v := r.target()
	center := v.XMin + centerRatio*v.SpanX()
	span := v.SpanX() / factor
	v.XMin = center - centerRatio*span
	v.XMax = v.XMin + span
	r.animateTo(v, r.opts.RangeDuration)
}

// Pan shifts the view by deltaPixels of the price plot; positive drags the
// content right, revealing earlier bars.
func (r *Renderer) Pan(deltaPixels float64) {
	plot := r.layout().price
	if plot.W <= 0 || deltaPixels == 0 {
		return
	}
	v := r.target()
	d := -deltaPixels / plot.W * v.SpanX()
	v.XMin += d
	v.XMax += d
	r.animateTo(v, r.opts.PanDuration)
}

// target is the viewport the chart is heading to.
func (r *Renderer) target() viewport.Viewport {
	if r.anim != nil {
		return r.anim.to
	}
	return r.view
}

// animateTo starts a transition to v, or retargets the running one from
// the viewport it has reached by now.
func (r *Renderer) animateTo(v viewport.Viewport, d time.Duration) {
	v = r.fitY(v)
	now := r.sched.Now()

	from := r.view
	if r.anim != nil {
		from = r.anim.at(now)
	}
	r.cancelAnimation()
	r.view = from

	if d <= 0 {
		r.view = v
		r.Render()
		return
	}
	r.anim = &animation{start: now, from: from, to: v, duration: d}
	r.handle = r.sched.RequestFrame(r.tick)
}

func (r *Renderer) tick(now time.Time) {
	r.handle = 0
	if r.anim == nil {
		return
	}
	r.view = r.anim.at(now)
	r.metrics.Frame()
	if r.anim.progress(now) >= 1 {
		r.anim = nil
	} else {
		r.handle = r.sched.RequestFrame(r.tick)
	}
	r.Render()
}

func (r *Renderer) cancelAnimation() {
	if r.handle != 0 {
		r.sched.Cancel(r.handle)
		r.handle = 0
	}
	r.anim = nil
}

// ---------------------------------------------------------------------------
// Host events

// Resize reacquires the surface at the new size and redraws at the current
// viewport. On failure the old surface is kept.
func (r *Renderer) Resize(w, h int) error {
	surf, err := r.provider(w, h)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if surf == nil {
		return fmt.Errorf("resize: %w", surface.ErrNoSurface)
	}
	r.surf = surf
	r.log.Debug("resized", "w", w, "h", h)
	r.Render()
	return nil
}

// PointerDown starts a drag at x.
func (r *Renderer) PointerDown(x, y float64) {
	r.cursor.dragging = true
	r.cursor.lastX = x
	r.moveCursor(x, y)
}

// PointerMove moves the crosshair and pans while dragging.
func (r *Renderer) PointerMove(x, y float64) {
	r.moveCursor(x, y)
	if r.cursor.dragging {
		dx := x - r.cursor.lastX
		r.cursor.lastX = x
		if dx != 0 {
			r.Pan(dx)
			return
		}
	}
	if r.anim == nil {
		r.Render()
	}
}

// PointerUp ends a drag.
func (r *Renderer) PointerUp(x, y float64) {
	r.cursor.dragging = false
	r.moveCursor(x, y)
}

// PointerLeave hides the crosshair.
func (r *Renderer) PointerLeave() {
	r.cursor.in = false
	r.cursor.dragging = false
	if r.anim == nil {
		r.Render()
	}
}

// Wheel zooms around x. Negative delta (wheel up) zooms in.
func (r *Renderer) Wheel(delta, x float64) {
	plot := r.layout().price
	if plot.W <= 0 || delta == 0 {
		return
	}
	r.Zoom(math.Exp(-delta*0.002), (x-plot.X)/plot.W)
}

func (r *Renderer) moveCursor(x, y float64) {
	r.cursor.x, r.cursor.y = x, y
	lay := r.layout()
	r.cursor.in = x >= lay.price.X && x <= lay.price.Right() && y >= lay.price.Y && y <= lay.panels.Bottom()
}

// Readout is what lies under the cursor.
type Readout struct {
	Index      int        `json:"index"`
	Bar        market.Bar `json:"bar"`
	Indicators []Reading  `json:"indicators,omitempty"`
}

// Readout returns the bar nearest to surface x and the indicator values at
// its time. ok is false without bars.
func (r *Renderer) Readout(x float64) (Readout, bool) {
	if len(r.bars) == 0 {
		return Readout{}, false
	}
	tr := viewport.New(r.view, r.layout().price)
	i := market.Nearest(r.bars, tr.ToWorldX(x))
	b := r.bars[i]
	return Readout{
		Index:      i,
		Bar:        b,
		Indicators: r.mgr.Readings(float64(b.Time)),
	}, true
}

// ---------------------------------------------------------------------------
// Indicators

// AddIndicator attaches a visible indicator of kind in its default
// placement. Zero params mean the kind defaults.
func (r *Renderer) AddIndicator(kind indicators.Kind, p indicators.Params) (string, error) {
	return r.AddIndicatorConfig(Config{Kind: kind, Params: p, Visible: true, Overlay: IsOverlay(kind)})
}

// AddIndicatorConfig attaches an indicator with full control over its config.
func (r *Renderer) AddIndicatorConfig(cfg Config) (string, error) {
	indID, err := r.mgr.Add(cfg)
	if err != nil {
		return "", err
	}
	r.Render()
	return indID, nil
}

// RemoveIndicator detaches an indicator.
func (r *Renderer) RemoveIndicator(indID string) error {
	return r.redrawAfter(r.mgr.Remove(indID))
}

// SetParams changes an indicator's parameters and recalculates it alone.
func (r *Renderer) SetParams(indID string, p indicators.Params) error {
	return r.redrawAfter(r.mgr.SetParams(indID, p))
}

// SetStyle restyles an indicator without recalculating it.
func (r *Renderer) SetStyle(indID string, st Style) error {
	return r.redrawAfter(r.mgr.SetStyle(indID, st))
}

// SetVisible shows or hides an indicator.
func (r *Renderer) SetVisible(indID string, visible bool) error {
	return r.redrawAfter(r.mgr.SetVisible(indID, visible))
}

func (r *Renderer) redrawAfter(err error) error {
	if err != nil {
		return err
	}
	r.Render()
	return nil
}
