// Package geom provides the small value types shared by the overlay packages:
// points, axis-aligned rectangles (envelopes), segments, circles and the
// world-to-screen transform signature.
package geom

import "math"

// Point represents a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// DistanceSquared returns the squared Euclidean distance between two points.
func (p Point) DistanceSquared(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Sqrt(p.DistanceSquared(q))
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Rect is an axis-aligned bounding box. It is the key type of the spatial
// index (an envelope). Min and Max are inclusive.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectXYWH creates a Rect from an origin and a size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Around returns the square envelope of half-size r centered on p.
func Around(p Point, r float64) Rect {
	return Rect{MinX: p.X - r, MinY: p.Y - r, MaxX: p.X + r, MaxY: p.Y + r}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the height of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Valid reports whether the rectangle is finite and not inverted.
// A degenerate rectangle (zero width or height) is valid.
func (r Rect) Valid() bool {
	if !isFinite(r.MinX) || !isFinite(r.MinY) || !isFinite(r.MaxX) || !isFinite(r.MaxY) {
		return false
	}
	return r.MinX <= r.MaxX && r.MinY <= r.MaxY
}

// Expand returns the rectangle grown by m on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{MinX: r.MinX - m, MinY: r.MinY - m, MaxX: r.MaxX + m, MaxY: r.MaxY + m}
}

// Intersects reports whether the two rectangles overlap.
// Rectangles that only touch along an edge or corner intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Segment is a line segment between two points.
type Segment struct {
	A, B Point
}

// Circle is a circle given by center and radius.
type Circle struct {
	Center Point
	Radius float64
}

// Transform maps a world position to screen space.
// A nil Transform is treated as the identity by every consumer.
type Transform func(world Point) Point

// Identity returns its argument unchanged.
func Identity(p Point) Point { return p }

// Affine returns a Transform that scales and then translates.
func Affine(scaleX, scaleY, tx, ty float64) Transform {
	return func(p Point) Point {
		return Point{X: p.X*scaleX + tx, Y: p.Y*scaleY + ty}
	}
}
