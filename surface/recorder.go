package surface

import (
	"github.com/rustyeddy/chartkit/viewport"
)

// State is the style state in effect when a call was recorded.
type State struct {
	Stroke   string
	Width    float64
	Dash     []float64
	Fill     string
	Alpha    float64
	FontSize float64
	Clip     *viewport.Rect
}

// Point is a path vertex.
type Point struct{ X, Y float64 }

// Call is one recorded surface operation. Path is set for Stroke and Fill,
// Text and X/Y for FillText.
type Call struct {
	Op    string
	State State
	Path  [][]Point
	Text  string
	X, Y  float64
}

// Recorder is an in-memory Surface that records paint operations. Text is
// measured at 0.6 of the font size per rune.
type Recorder struct {
	W, H  float64
	Calls []Call

	state State
	path  [][]Point
}

var _ Surface = (*Recorder)(nil)

// NewRecorder returns a recorder of the given size.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{W: w, H: h, state: State{Alpha: 1, FontSize: 10}}
}

// RecorderProvider is a Provider that hands out recorders.
func RecorderProvider(w, h int) (Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrNoSurface
	}
	return NewRecorder(float64(w), float64(h)), nil
}

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

func (r *Recorder) Clear(color string) {
	r.record(Call{Op: "clear", Text: color})
}

func (r *Recorder) BeginPath() { r.path = nil }

func (r *Recorder) MoveTo(x, y float64) {
	r.path = append(r.path, []Point{{x, y}})
}

func (r *Recorder) LineTo(x, y float64) {
	if len(r.path) == 0 {
		r.MoveTo(x, y)
		return
	}
	last := len(r.path) - 1
	r.path[last] = append(r.path[last], Point{x, y})
}

func (r *Recorder) Rect(x, y, w, h float64) {
	r.path = append(r.path, []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y}})
}

func (r *Recorder) ClosePath() {
	if len(r.path) == 0 {
		return
	}
	last := len(r.path) - 1
	if sub := r.path[last]; len(sub) > 0 {
		r.path[last] = append(sub, sub[0])
	}
}

func (r *Recorder) SetStroke(color string, width float64, dash []float64) {
	r.state.Stroke, r.state.Width = color, width
	r.state.Dash = append([]float64(nil), dash...)
}

func (r *Recorder) SetFill(color string) { r.state.Fill = color }
func (r *Recorder) SetAlpha(a float64)   { r.state.Alpha = a }

func (r *Recorder) Stroke() { r.record(Call{Op: "stroke", Path: r.copyPath()}) }
func (r *Recorder) Fill()   { r.record(Call{Op: "fill", Path: r.copyPath()}) }

func (r *Recorder) Clip(rect viewport.Rect) {
	r.state.Clip = &rect
	r.record(Call{Op: "clip"})
}

func (r *Recorder) ResetClip() {
	r.state.Clip = nil
	r.record(Call{Op: "resetclip"})
}

func (r *Recorder) SetFont(size float64) { r.state.FontSize = size }

func (r *Recorder) MeasureText(text string) float64 {
	return float64(len([]rune(text))) * r.state.FontSize * 0.6
}

func (r *Recorder) FillText(text string, x, y float64) {
	r.record(Call{Op: "text", Text: text, X: x, Y: y})
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Texts returns every string drawn with FillText, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.Calls {
		if c.Op == "text" {
			out = append(out, c.Text)
		}
	}
	return out
}

// Reset drops the recorded calls but keeps the style state.
func (r *Recorder) Reset() { r.Calls = nil }

func (r *Recorder) record(c Call) {
	c.State = r.state
	if r.state.Clip != nil {
		clip := *r.state.Clip
		c.State.Clip = &clip
	}
	r.Calls = append(r.Calls, c)
}

func (r *Recorder) copyPath() [][]Point {
	out := make([][]Point, len(r.path))
	for i, sub := range r.path {
		out[i] = append([]Point(nil), sub...)
	}
	return out
}
