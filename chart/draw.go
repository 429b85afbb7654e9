package chart

import (
	"math"
	"time"

	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/surface"
	"github.com/rustyeddy/chartkit/viewport"
)

type layout struct {
	price     viewport.Rect
	panels    viewport.Rect
	priceAxis viewport.Rect
	timeAxis  viewport.Rect
}

// layout splits the surface into the price pane, the panel stack below it
// and the two axes. The panel stack gets the height its panels request, up
// to MaxPanelRatio of the plot.
func (r *Renderer) layout() layout {
	w, h := r.surf.Size()
	plotW := math.Max(0, w-r.opts.AxisWidth)
	plotH := math.Max(0, h-r.opts.TimeAxisHeight)
	panelH := math.Min(r.mgr.PanelHeight(), plotH*r.opts.MaxPanelRatio)

	price := viewport.Rect{W: plotW, H: plotH - panelH}
	return layout{
		price:     price,
		panels:    viewport.Rect{Y: price.Bottom(), W: plotW, H: panelH},
		priceAxis: viewport.Rect{X: plotW, W: w - plotW, H: price.H},
		timeAxis:  viewport.Rect{Y: plotH, W: plotW, H: h - plotH},
	}
}

// Render redraws the whole chart at the current viewport: background,
// grid, candles, overlays, panels, axes and crosshair, in that order. It
// never runs a calculator.
func (r *Renderer) Render() {
	start := time.Now()
	defer r.metrics.ObserveRender(start)

	s := r.surf
	s.ResetClip()
	s.Clear(r.opts.Theme.Background)

	lay := r.layout()
	if lay.price.W <= 0 || lay.price.H <= 0 {
		return
	}
	view := r.view
	if view.Validate() != nil {
		view = viewport.Clamp(view, r.minSpanX(), 1e-9)
	}
	tr := viewport.New(view, lay.price)

	r.drawGrid(s, lay, tr)

	s.Clip(lay.price)
	r.drawCandles(s, tr)
	r.mgr.RenderOverlays(s, tr)
	s.ResetClip()

	r.mgr.RenderPanels(s, view, lay.panels)

	r.drawAxes(s, lay, tr)
	r.drawCrosshair(s, lay, tr)
}

func (r *Renderer) drawGrid(s surface.Surface, lay layout, tr viewport.Transform) {
	th := r.opts.Theme
	ticks, _ := timeTicks(tr.View.XMin, tr.View.XMax, max(1, int(lay.price.W/110)))
	for _, t := range ticks {
		x := tr.ToSurfaceX(float64(t))
		s.SetAlpha(1)
		s.SetStroke(th.Grid, 1, nil)
		s.BeginPath()
		s.MoveTo(x, lay.price.Y)
		s.LineTo(x, lay.panels.Bottom())
		s.Stroke()
	}
	for _, p := range viewport.Ticks(tr.View.YMin, tr.View.YMax, max(1, int(lay.price.H/50))) {
		y := tr.ToSurfaceY(p)
		s.SetAlpha(1)
		s.SetStroke(th.Grid, 1, nil)
		s.BeginPath()
		s.MoveTo(lay.price.X, y)
		s.LineTo(lay.price.Right(), y)
		s.Stroke()
	}
}

// drawCandles draws the bars inside the time range plus one either side so
// partly visible candles reach the edge.
func (r *Renderer) drawCandles(s surface.Surface, tr viewport.Transform) {
	lo, hi := market.Window(r.bars, tr.View.XMin, tr.View.XMax)
	lo = max(0, lo-1)
	hi = min(len(r.bars), hi+1)
	w := barWidth(tr, r.spacing())

	for _, b := range r.bars[lo:hi] {
		color := r.opts.Theme.Down
		if b.Up() {
			color = r.opts.Theme.Up
		}
		x := tr.ToSurfaceX(float64(b.Time))

		// wick
		s.SetAlpha(1)
		s.SetStroke(color, 1, nil)
		s.BeginPath()
		s.MoveTo(x, tr.ToSurfaceY(b.High))
		s.LineTo(x, tr.ToSurfaceY(b.Low))
		s.Stroke()

		// body, at least a pixel tall for dojis
		top := tr.ToSurfaceY(math.Max(b.Open, b.Close))
		bottom := tr.ToSurfaceY(math.Min(b.Open, b.Close))
		s.SetFill(color)
		s.BeginPath()
		s.Rect(x-w/2, top, w, math.Max(1, bottom-top))
		s.Fill()
	}
}

func (r *Renderer) drawAxes(s surface.Surface, lay layout, tr viewport.Transform) {
	th := r.opts.Theme
	s.SetAlpha(1)
	s.SetFont(th.FontSize)

	// price axis
	yTicks := viewport.Ticks(tr.View.YMin, tr.View.YMax, max(1, int(lay.price.H/50)))
	decimals := 0
	if len(yTicks) > 1 {
		decimals = priceDecimals(yTicks[1] - yTicks[0])
	}
	for _, p := range yTicks {
		s.SetFill(th.Text)
		s.FillText(priceLabel(p, decimals), lay.priceAxis.X+6, tr.ToSurfaceY(p)+th.FontSize/3)
	}

	// time axis
	ticks, step := timeTicks(tr.View.XMin, tr.View.XMax, max(1, int(lay.price.W/110)))
	for _, t := range ticks {
		label := timeLabel(t, step)
		x := tr.ToSurfaceX(float64(t)) - s.MeasureText(label)/2
		s.SetFill(th.Text)
		s.FillText(label, x, lay.timeAxis.Y+th.FontSize+4)
	}

	// last price tag
	if n := len(r.bars); n > 0 {
		last := r.bars[n-1]
		if last.Close >= tr.View.YMin && last.Close <= tr.View.YMax {
			color := th.Down
			if last.Up() {
				color = th.Up
			}
			y := tr.ToSurfaceY(last.Close)
			s.SetFill(color)
			s.BeginPath()
			s.Rect(lay.priceAxis.X, y-th.FontSize/2-2, lay.priceAxis.W, th.FontSize+4)
			s.Fill()
			s.SetFill(th.Background)
			s.FillText(priceLabel(last.Close, max(decimals, 2)), lay.priceAxis.X+6, y+th.FontSize/3)
		}
	}

	if r.symbol != "" {
		s.SetFill(th.Text)
		s.FillText(r.symbol+" "+r.interval, lay.price.X+6, lay.price.Y+th.FontSize+4)
	}
}

func (r *Renderer) drawCrosshair(s surface.Surface, lay layout, tr viewport.Transform) {
	if !r.cursor.in || len(r.bars) == 0 {
		return
	}
	th := r.opts.Theme
	b := r.bars[market.Nearest(r.bars, tr.ToWorldX(r.cursor.x))]
	x := tr.ToSurfaceX(float64(b.Time))
	y := r.cursor.y

	s.SetAlpha(1)
	s.SetStroke(th.Crosshair, 1, []float64{3, 3})
	s.BeginPath()
	s.MoveTo(x, lay.price.Y)
	s.LineTo(x, lay.panels.Bottom())
	s.Stroke()

	s.SetStroke(th.Crosshair, 1, []float64{3, 3})
	s.BeginPath()
	s.MoveTo(lay.price.X, y)
	s.LineTo(lay.price.Right(), y)
	s.Stroke()

	if y <= lay.price.Bottom() {
		s.SetFont(th.FontSize)
		s.SetFill(th.Crosshair)
		s.BeginPath()
		s.Rect(lay.priceAxis.X, y-th.FontSize/2-2, lay.priceAxis.W, th.FontSize+4)
		s.Fill()
		s.SetFill(th.Background)
		s.FillText(priceLabel(tr.ToWorldY(y), 2), lay.priceAxis.X+6, y+th.FontSize/3)
	}
}
