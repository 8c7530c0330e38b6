// Package geom provides viewport geometry helpers shared by the simulator and page drivers.
package geom

// Rect describes a rectangle using top-left origin and size, in CSS pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a viewport-relative position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Normalize returns a rectangle with non-negative width/height.
func Normalize(r Rect) Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Span returns the rectangle spanned by two corners, in either order.
func Span(a, b Point) Rect {
	return Normalize(Rect{X: a.X, Y: a.Y, W: b.X - a.X, H: b.Y - a.Y})
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point of r.
func (r Rect) Center() Point {
	r = Normalize(r)
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether a point is inside the rectangle (edges inclusive).
func Contains(r Rect, p Point) bool {
	r = Normalize(r)
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether a and b overlap. Touching edges count as overlap,
// so a zero-area drag still picks up the text it sits on.
func Intersects(a, b Rect) bool {
	a = Normalize(a)
	b = Normalize(b)
	return !(a.Right() < b.X || a.X > b.Right() || a.Bottom() < b.Y || a.Y > b.Bottom())
}

// Clamp bounds v to [lo, hi]. When hi < lo the lower bound wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Size is a width/height pair, used for the viewport and the cursor.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}
