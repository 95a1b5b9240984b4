// pkg/physics/shape.go
package physics

import "math"

// Shape is a static obstacle outline that can be stamped onto a grid.
type Shape interface {
	// Contains reports whether the point lies inside the shape
	Contains(point Vector2D) bool
	// Bounds returns the axis-aligned extremes of the shape
	Bounds() (min, max Vector2D)
}

// Circle represents a circular obstacle
type Circle struct {
	Center Vector2D
	Radius float64
}

// Contains reports whether point lies within the circle
func (c Circle) Contains(point Vector2D) bool {
	d := point.Sub(c.Center)
	return d.Dot(d) <= c.Radius*c.Radius
}

// Bounds returns the square enclosing the circle
func (c Circle) Bounds() (Vector2D, Vector2D) {
	r := Vector2D{X: c.Radius, Y: c.Radius}
	return c.Center.Sub(r), c.Center.Add(r)
}

// Rect represents an axis-aligned rectangular area given by its corner and size
type Rect struct {
	Min    Vector2D
	Width  float64
	Height float64
}

// Contains reports whether point lies in the half-open rectangle
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Min.X &&
		point.X < r.Min.X+r.Width &&
		point.Y >= r.Min.Y &&
		point.Y < r.Min.Y+r.Height
}

// Bounds returns the rectangle's extremes
func (r Rect) Bounds() (Vector2D, Vector2D) {
	return r.Min, Vector2D{X: r.Min.X + r.Width, Y: r.Min.Y + r.Height}
}

// Inset shrinks the rectangle by margin on every side.
func (r Rect) Inset(margin float64) Rect {
	return Rect{
		Min:    Vector2D{X: r.Min.X + margin, Y: r.Min.Y + margin},
		Width:  math.Max(0, r.Width-2*margin),
		Height: math.Max(0, r.Height-2*margin),
	}
}

// RectBorder is the band between an outer rectangle and the same rectangle
// inset by Margin. It models the arena walls.
type RectBorder struct {
	Outer  Rect
	Margin float64
}

// Contains reports whether point lies inside the outer rectangle but outside
// the inset one
func (b RectBorder) Contains(point Vector2D) bool {
	return b.Outer.Contains(point) && !b.Outer.Inset(b.Margin).Contains(point)
}

// Bounds returns the outer rectangle's extremes
func (b RectBorder) Bounds() (Vector2D, Vector2D) {
	return b.Outer.Bounds()
}
