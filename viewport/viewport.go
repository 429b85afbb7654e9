// Package viewport maps a time/price rectangle onto a surface rectangle and back.
package viewport

import (
	"fmt"
	"math"
)

// Viewport is the visible time (X) by price (Y) rectangle.
type Viewport struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
}

// Validate rejects degenerate or non-finite viewports. Transforms assume a
// viewport that passed Validate.
func (v Viewport) Validate() error {
	for _, f := range []float64{v.XMin, v.XMax, v.YMin, v.YMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("viewport: non-finite bound in %+v", v)
		}
	}
	if !(v.XMin < v.XMax) {
		return fmt.Errorf("viewport: xMin %.6f must be below xMax %.6f", v.XMin, v.XMax)
	}
	if !(v.YMin < v.YMax) {
		return fmt.Errorf("viewport: yMin %.6f must be below yMax %.6f", v.YMin, v.YMax)
	}
	return nil
}

// SpanX returns XMax - XMin.
func (v Viewport) SpanX() float64 { return v.XMax - v.XMin }

// SpanY returns YMax - YMin.
func (v Viewport) SpanY() float64 { return v.YMax - v.YMin }

// WithY returns v with its price bounds replaced.
func (v Viewport) WithY(lo, hi float64) Viewport {
	v.YMin, v.YMax = lo, hi
	return v
}

// Clamp widens spans narrower than the given minimums around their centre.
// Non-finite bounds collapse to a unit range at the origin first.
func Clamp(v Viewport, minSpanX, minSpanY float64) Viewport {
	v.XMin, v.XMax = clampSpan(v.XMin, v.XMax, minSpanX)
	v.YMin, v.YMax = clampSpan(v.YMin, v.YMax, minSpanY)
	return v
}

// Limit narrows an X span wider than maxSpanX around its centre. A
// non-positive maxSpanX means no limit.
func Limit(v Viewport, maxSpanX float64) Viewport {
	if !(maxSpanX > 0) || v.SpanX() <= maxSpanX {
		return v
	}
	mid := v.XMin + v.SpanX()/2
	v.XMin, v.XMax = mid-maxSpanX/2, mid+maxSpanX/2
	return v
}

func clampSpan(lo, hi, minSpan float64) (float64, float64) {
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if minSpan <= 0 || math.IsNaN(minSpan) {
		minSpan = math.SmallestNonzeroFloat64
	}
	if hi-lo >= minSpan {
		return lo, hi
	}
	mid := lo + (hi-lo)/2
	lo, hi = mid-minSpan/2, mid+minSpan/2
	if !(lo < hi) {
		// span too small to represent around mid
		lo, hi = mid-math.Abs(mid)*1e-9-minSpan, mid+math.Abs(mid)*1e-9+minSpan
	}
	return lo, hi
}

// Lerp interpolates every bound of a towards b by t in [0, 1].
func Lerp(a, b Viewport, t float64) Viewport {
	return Viewport{
		XMin: lerp(a.XMin, b.XMin, t),
		XMax: lerp(a.XMax, b.XMax, t),
		YMin: lerp(a.YMin, b.YMin, t),
		YMax: lerp(a.YMax, b.YMax, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Pad grows the price range by frac of its span on each side.
func Pad(lo, hi, frac float64) (float64, float64) {
	d := (hi - lo) * frac
	return lo - d, hi + d
}
