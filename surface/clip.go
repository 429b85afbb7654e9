package surface

import (
	"github.com/rustyeddy/chartkit/viewport"
)

// clipSegment clips the segment a-b to r (Liang-Barsky). ok is false when
// nothing of the segment is inside.
func clipSegment(a, b Point, r viewport.Rect) (Point, Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, a.X - r.X},
		{dx, r.Right() - a.X},
		{-dy, a.Y - r.Y},
		{dy, r.Bottom() - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = min(t1, t)
		}
	}
	return Point{a.X + t0*dx, a.Y + t0*dy}, Point{a.X + t1*dx, a.Y + t1*dy}, true
}

// clipPolygon clips a closed polygon to r (Sutherland-Hodgman).
func clipPolygon(poly []Point, r viewport.Rect) []Point {
	type edge struct {
		inside func(Point) bool
		cross  func(a, b Point) Point
	}
	atX := func(x float64) func(a, b Point) Point {
		return func(a, b Point) Point {
			t := (x - a.X) / (b.X - a.X)
			return Point{x, a.Y + t*(b.Y-a.Y)}
		}
	}
	atY := func(y float64) func(a, b Point) Point {
		return func(a, b Point) Point {
			t := (y - a.Y) / (b.Y - a.Y)
			return Point{a.X + t*(b.X-a.X), y}
		}
	}
	edges := []edge{
		{func(p Point) bool { return p.X >= r.X }, atX(r.X)},
		{func(p Point) bool { return p.X <= r.Right() }, atX(r.Right())},
		{func(p Point) bool { return p.Y >= r.Y }, atY(r.Y)},
		{func(p Point) bool { return p.Y <= r.Bottom() }, atY(r.Bottom())},
	}

	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = nil
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}
