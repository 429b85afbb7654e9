package viewport

// Rect is an axis-aligned surface region in pixels. Y grows downwards.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Intersect returns the overlap of r and o, with zero size when they are
// disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Transform maps View onto Area. It is a value type with no state beyond the
// viewport and area it was built from.
type Transform struct {
	View Viewport
	Area Rect
}

// New returns a Transform for v drawn into area.
func New(v Viewport, area Rect) Transform {
	return Transform{View: v, Area: area}
}

// ToSurfaceX maps a time to a surface x coordinate.
func (t Transform) ToSurfaceX(x float64) float64 {
	return t.Area.X + (x-t.View.XMin)/(t.View.XMax-t.View.XMin)*t.Area.W
}

// ToSurfaceY maps a price to a surface y coordinate; prices grow upwards.
func (t Transform) ToSurfaceY(p float64) float64 {
	return t.Area.Y + t.Area.H - (p-t.View.YMin)/(t.View.YMax-t.View.YMin)*t.Area.H
}

// ToWorldX inverts ToSurfaceX.
func (t Transform) ToWorldX(px float64) float64 {
	return t.View.XMin + (px-t.Area.X)/t.Area.W*(t.View.XMax-t.View.XMin)
}

// ToWorldY inverts ToSurfaceY.
func (t Transform) ToWorldY(py float64) float64 {
	return t.View.YMin + (t.Area.Y+t.Area.H-py)/t.Area.H*(t.View.YMax-t.View.YMin)
}

// ScaleX converts a time duration into a pixel width.
func (t Transform) ScaleX(d float64) float64 {
	return d / (t.View.XMax - t.View.XMin) * t.Area.W
}
