// Package surface defines the immediate-mode 2D drawing context the chart
// draws on, plus a recording surface for tests and a go-chart backed
// SVG/PNG surface.
package surface

import (
	"errors"

	"github.com/rustyeddy/chartkit/viewport"
)

// ErrNoSurface is returned when a host cannot provide a drawing context.
var ErrNoSurface = errors.New("no drawing surface")

// Surface is a borrowed drawing context. Callers must set every piece of
// style state they depend on right before the draw call that uses it.
//
// Paths follow canvas semantics: BeginPath starts an empty path, Stroke and
// Fill paint the current path without consuming it.
type Surface interface {
	Size() (w, h float64)
	Clear(color string)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Rect(x, y, w, h float64)
	ClosePath()

	SetStroke(color string, width float64, dash []float64)
	SetFill(color string)
	SetAlpha(a float64)
	Stroke()
	Fill()

	// Clip restricts drawing to r until ResetClip.
	Clip(r viewport.Rect)
	ResetClip()

	SetFont(size float64)
	MeasureText(text string) float64
	FillText(text string, x, y float64)
}

// Provider acquires a surface of the given pixel size.
type Provider func(w, h int) (Surface, error)
