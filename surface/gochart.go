package surface

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rustyeddy/chartkit/viewport"
)

// Format selects the go-chart output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat maps a file extension or name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// GoChart adapts a go-chart Renderer to Surface. go-chart paints with integer
// pixels and has no clip region, so paths are buffered in float coordinates
// and clipped in software when painted.
type GoChart struct {
	format Format
	w, h   int
	r      chart.Renderer
	err    error // last failed Clear, reported by Save

	path     [][]Point
	stroke   drawing.Color
	width    float64
	dash     []float64
	fill     drawing.Color
	alpha    float64
	fontSize float64
	clip     *viewport.Rect
}

var _ Surface = (*GoChart)(nil)

// NewGoChart acquires a go-chart renderer of the given size.
func NewGoChart(format Format, w, h int) (*GoChart, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrNoSurface, w, h)
	}
	g := &GoChart{format: format, w: w, h: h, alpha: 1, fontSize: 10, width: 1}
	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// GoChartProvider returns a Provider producing GoChart surfaces.
func GoChartProvider(format Format) Provider {
	return func(w, h int) (Surface, error) {
		return NewGoChart(format, w, h)
	}
}

func (g *GoChart) reset() error {
	var (
		r   chart.Renderer
		err error
	)
	switch g.format {
	case FormatSVG:
		r, err = chart.SVG(g.w, g.h)
	case FormatPNG:
		r, err = chart.PNG(g.w, g.h)
	default:
		return fmt.Errorf("%w: unknown format %q", ErrNoSurface, g.format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoSurface, err)
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("%w: load font: %v", ErrNoSurface, err)
	}
	r.SetFont(font)
	g.r = r
	return nil
}

// Save encodes everything painted so far. It fails if the last Clear could
// not start a fresh canvas, since the frame would be painted over stale
// content.
func (g *GoChart) Save(w io.Writer) error {
	if g.err != nil {
		return g.err
	}
	return g.r.Save(w)
}

func (g *GoChart) Size() (float64, float64) { return float64(g.w), float64(g.h) }

// Clear starts a fresh canvas painted with color.
func (g *GoChart) Clear(color string) {
	if err := g.reset(); err != nil {
		g.err = fmt.Errorf("clear: %w", err)
		return
	}
	g.err = nil
	g.path = nil
	full := viewport.Rect{W: float64(g.w), H: float64(g.h)}
	g.paintFill([]Point{{0, 0}, {full.W, 0}, {full.W, full.H}, {0, full.H}}, parseColor(color))
}

func (g *GoChart) BeginPath() { g.path = nil }

func (g *GoChart) MoveTo(x, y float64) {
	g.path = append(g.path, []Point{{x, y}})
}

func (g *GoChart) LineTo(x, y float64) {
	if len(g.path) == 0 {
		g.MoveTo(x, y)
		return
	}
	last := len(g.path) - 1
	g.path[last] = append(g.path[last], Point{x, y})
}

func (g *GoChart) Rect(x, y, w, h float64) {
	g.path = append(g.path, []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y}})
}

func (g *GoChart) ClosePath() {
	if len(g.path) == 0 {
		return
	}
	last := len(g.path) - 1
	if sub := g.path[last]; len(sub) > 0 {
		g.path[last] = append(sub, sub[0])
	}
}

func (g *GoChart) SetStroke(color string, width float64, dash []float64) {
	g.stroke = parseColor(color)
	g.width = width
	g.dash = append([]float64(nil), dash...)
}

func (g *GoChart) SetFill(color string) { g.fill = parseColor(color) }

func (g *GoChart) SetAlpha(a float64) { g.alpha = math.Max(0, math.Min(1, a)) }

func (g *GoChart) Stroke() {
	g.r.ResetStyle()
	g.r.SetStrokeColor(g.withAlpha(g.stroke))
	g.r.SetStrokeWidth(g.width)
	g.r.SetStrokeDashArray(g.dash)

	bounds := g.bounds()
	drawn := false
	for _, sub := range g.path {
		for i := 1; i < len(sub); i++ {
			a, b, ok := clipSegment(sub[i-1], sub[i], bounds)
			if !ok {
				continue
			}
			g.r.MoveTo(px(a.X), px(a.Y))
			g.r.LineTo(px(b.X), px(b.Y))
			drawn = true
		}
	}
	if drawn {
		g.r.Stroke()
	}
}

func (g *GoChart) Fill() {
	for _, sub := range g.path {
		g.paintFill(sub, g.fill)
	}
}

func (g *GoChart) paintFill(poly []Point, c drawing.Color) {
	poly = clipPolygon(poly, g.bounds())
	if len(poly) < 3 {
		return
	}
	g.r.ResetStyle()
	g.r.SetFillColor(g.withAlpha(c))
	g.r.SetStrokeWidth(0)
	g.r.MoveTo(px(poly[0].X), px(poly[0].Y))
	for _, p := range poly[1:] {
		g.r.LineTo(px(p.X), px(p.Y))
	}
	g.r.Close()
	g.r.Fill()
}

func (g *GoChart) Clip(r viewport.Rect) { g.clip = &r }
func (g *GoChart) ResetClip()           { g.clip = nil }

func (g *GoChart) SetFont(size float64) { g.fontSize = size }

func (g *GoChart) MeasureText(text string) float64 {
	g.r.SetFontSize(g.fontSize)
	return float64(g.r.MeasureText(text).Width())
}

// FillText draws text with its baseline at y. Text anchored outside the
// clip region is dropped rather than cut.
func (g *GoChart) FillText(text string, x, y float64) {
	if !g.bounds().Contains(x, y) {
		return
	}
	g.r.ResetStyle()
	g.r.SetFontSize(g.fontSize)
	g.r.SetFontColor(g.withAlpha(g.fill))
	g.r.Text(text, px(x), px(y))
}

func (g *GoChart) bounds() viewport.Rect {
	full := viewport.Rect{W: float64(g.w), H: float64(g.h)}
	if g.clip == nil {
		return full
	}
	return full.Intersect(*g.clip)
}

func (g *GoChart) withAlpha(c drawing.Color) drawing.Color {
	return c.WithAlpha(uint8(math.Round(float64(c.A) * g.alpha)))
}

func px(v float64) int { return int(math.Round(v)) }

// parseColor accepts "#rgb", "#rrggbb" and "none"/"transparent".
func parseColor(s string) drawing.Color {
	switch strings.ToLower(s) {
	case "", "none", "transparent":
		return drawing.ColorTransparent
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
