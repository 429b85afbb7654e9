package chart

import (
	"math"
	"sort"

	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/surface"
	"github.com/rustyeddy/chartkit/viewport"
)

// Config is the identity and configuration of one indicator instance.
type Config struct {
	ID          string            `json:"id" yaml:"id"`
	Kind        indicators.Kind   `json:"kind" yaml:"kind"`
	Params      indicators.Params `json:"params" yaml:"params"`
	Style       Style             `json:"style" yaml:"style"`
	Visible     bool              `json:"visible" yaml:"visible"`
	Overlay     bool              `json:"overlay" yaml:"overlay"`
	PanelHeight float64           `json:"panel_height,omitempty" yaml:"panel_height,omitempty"`
}

// Label is the short name shown in panel headers and read-outs.
func (c Config) Label() string {
	return c.Params.String(c.Kind)
}

// Reading is one indicator value under the cursor.
type Reading struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Line  string  `json:"line"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Indicator is a calculator bound to a config and a cached output.
//
// Calculate is the only method that runs the calculator. Render and
// PointerMove read the cache and never change it.
type Indicator interface {
	Config() Config
	Calculate(bars []market.Bar)
	Render(s surface.Surface, tr viewport.Transform)
	// Range returns the value extent inside [xMin, xMax].
	Range(xMin, xMax float64) (lo, hi float64, ok bool)
	PointerMove(t float64) []Reading
}

type series struct {
	cfg  Config
	spec kindSpec
	out  indicators.Output
	bars []market.Bar

	// onCalculate observes every calculator run.
	onCalculate func(Config, indicators.Output)
}

var _ Indicator = (*series)(nil)

func newSeries(cfg Config, spec kindSpec, onCalculate func(Config, indicators.Output)) *series {
	return &series{cfg: cfg, spec: spec, onCalculate: onCalculate}
}

func (s *series) Config() Config { return s.cfg }

func (s *series) Calculate(bars []market.Bar) {
	s.bars = bars
	s.out = s.spec.calc(bars, s.cfg.Params)
	if s.onCalculate != nil {
		s.onCalculate(s.cfg, s.out)
	}
	s.colorize()
}

// colorize assigns per-point colors from the cached output and style.
func (s *series) colorize() {
	if s.spec.colorize != nil {
		s.spec.colorize(&s.out, s.bars, s.cfg.Params, s.cfg.Style)
	}
}

// restyle swaps the style and recolors the cache without recomputing.
func (s *series) restyle(st Style) {
	s.cfg.Style = st.merge(s.spec.style)
	s.colorize()
}

func (s *series) Render(surf surface.Surface, tr viewport.Transform) {
	if s.out.Empty() {
		return
	}
	for i, l := range s.out.Lines {
		switch s.spec.modes[l.Name] {
		case drawHistogram:
			s.drawHistogram(surf, tr, l.Values, s.cfg.Style.color(i))
		case drawBand:
			if i+2 < len(s.out.Lines) {
				s.drawBand(surf, tr, l.Values, s.out.Lines[i+2].Values, s.cfg.Style.color(i))
			}
			s.drawLine(surf, tr, l.Values, s.cfg.Style.color(i))
		default:
			s.drawLine(surf, tr, l.Values, s.cfg.Style.color(i))
		}
	}
}

// visible returns the index range of vals to draw for tr, one point wider on
// each side so lines run to the edge.
func visible(vals []indicators.Value, tr viewport.Transform) (int, int) {
	lo := sort.Search(len(vals), func(i int) bool { return float64(vals[i].Time) >= tr.View.XMin })
	hi := sort.Search(len(vals), func(i int) bool { return float64(vals[i].Time) > tr.View.XMax })
	if lo > 0 {
		lo--
	}
	if hi < len(vals) {
		hi++
	}
	return lo, hi
}

func (s *series) drawLine(surf surface.Surface, tr viewport.Transform, vals []indicators.Value, color string) {
	lo, hi := visible(vals, tr)
	if hi-lo < 1 {
		return
	}
	st := s.cfg.Style

	// segments are split wherever the point color changes
	segColor := pointColor(vals[lo], color)
	surf.BeginPath()
	surf.MoveTo(tr.ToSurfaceX(float64(vals[lo].Time)), tr.ToSurfaceY(vals[lo].Value))
	for i := lo + 1; i < hi; i++ {
		x, y := tr.ToSurfaceX(float64(vals[i].Time)), tr.ToSurfaceY(vals[i].Value)
		surf.LineTo(x, y)
		if c := pointColor(vals[i], color); c != segColor || i == hi-1 {
			surf.SetAlpha(1)
			surf.SetStroke(segColor, st.Width, st.Dash)
			surf.Stroke()
			segColor = c
			surf.BeginPath()
			surf.MoveTo(x, y)
		}
	}
	if hi-lo == 1 {
		// a lone point still marks its position
		x, y := tr.ToSurfaceX(float64(vals[lo].Time)), tr.ToSurfaceY(vals[lo].Value)
		surf.BeginPath()
		surf.Rect(x-1, y-1, 2, 2)
		surf.SetAlpha(1)
		surf.SetFill(segColor)
		surf.Fill()
	}
}

func (s *series) drawHistogram(surf surface.Surface, tr viewport.Transform, vals []indicators.Value, color string) {
	lo, hi := visible(vals, tr)
	if hi <= lo {
		return
	}
	w := barWidth(tr, market.Spacing(s.bars))
	base := tr.ToSurfaceY(math.Max(tr.View.YMin, math.Min(0, tr.View.YMax)))

	alpha := s.cfg.Style.Opacity
	if alpha == 0 {
		alpha = 1
	}
	for i := lo; i < hi; i++ {
		x := tr.ToSurfaceX(float64(vals[i].Time))
		y := tr.ToSurfaceY(vals[i].Value)
		surf.BeginPath()
		surf.Rect(x-w/2, math.Min(y, base), w, math.Abs(base-y))
		surf.SetAlpha(alpha)
		surf.SetFill(pointColor(vals[i], color))
		surf.Fill()
	}
	surf.SetAlpha(1)
}

func (s *series) drawBand(surf surface.Surface, tr viewport.Transform, upper, lower []indicators.Value, color string) {
	lo, hi := visible(upper, tr)
	if hi-lo < 2 || len(lower) != len(upper) {
		return
	}
	surf.BeginPath()
	surf.MoveTo(tr.ToSurfaceX(float64(upper[lo].Time)), tr.ToSurfaceY(upper[lo].Value))
	for i := lo + 1; i < hi; i++ {
		surf.LineTo(tr.ToSurfaceX(float64(upper[i].Time)), tr.ToSurfaceY(upper[i].Value))
	}
	for i := hi - 1; i >= lo; i-- {
		surf.LineTo(tr.ToSurfaceX(float64(lower[i].Time)), tr.ToSurfaceY(lower[i].Value))
	}
	surf.ClosePath()
	surf.SetAlpha(s.cfg.Style.Opacity)
	surf.SetFill(color)
	surf.Fill()
	surf.SetAlpha(1)
}

func pointColor(v indicators.Value, fallback string) string {
	if v.Color != "" {
		return v.Color
	}
	return fallback
}

// barWidth is 70% of the on-screen bar spacing, at least one pixel.
func barWidth(tr viewport.Transform, spacing int64) float64 {
	if spacing <= 0 {
		return 1
	}
	return math.Max(1, tr.ScaleX(float64(spacing))*0.7)
}

func (s *series) Range(xMin, xMax float64) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, l := range s.out.Lines {
		histogram := s.spec.modes[l.Name] == drawHistogram
		for _, v := range l.Values {
			t := float64(v.Time)
			if t < xMin || t > xMax {
				continue
			}
			lo, hi = math.Min(lo, v.Value), math.Max(hi, v.Value)
			if histogram {
				lo, hi = math.Min(lo, 0), math.Max(hi, 0)
			}
		}
	}
	if math.IsInf(lo, 0) {
		return 0, 0, false
	}
	return lo, hi, true
}

// PointerMove interpolates every line at t. Outside a line's extent the
// nearest end value is used.
func (s *series) PointerMove(t float64) []Reading {
	var out []Reading
	for _, l := range s.out.Lines {
		v, ok := interpolate(l.Values, t)
		if !ok {
			continue
		}
		out = append(out, Reading{
			ID:    s.cfg.ID,
			Label: s.cfg.Label(),
			Line:  l.Name,
			Value: v.Value,
			Color: v.Color,
		})
	}
	return out
}

func interpolate(vals []indicators.Value, t float64) (indicators.Value, bool) {
	n := len(vals)
	if n == 0 {
		return indicators.Value{}, false
	}
	i := sort.Search(n, func(i int) bool { return float64(vals[i].Time) >= t })
	switch {
	case i == 0:
		return vals[0], true
	case i == n:
		return vals[n-1], true
	case float64(vals[i].Time) == t:
		return vals[i], true
	}

	a, b := vals[i-1], vals[i]
	f := (t - float64(a.Time)) / float64(b.Time-a.Time)
	near := a
	if f > 0.5 {
		near = b
	}
	return indicators.Value{
		Time:  int64(math.Round(t)),
		Value: a.Value + (b.Value-a.Value)*f,
		Color: near.Color,
	}, true
}
