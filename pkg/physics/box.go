// pkg/physics/box.go
package physics

import "math"

// OrientedBox is a rectangle defined by its center, half-extents and heading.
// HalfHeight runs along the heading (the body's length), HalfWidth across it.
type OrientedBox struct {
	Center     Vector2D
	HalfWidth  float64
	HalfHeight float64
	Heading    float64 // radians
}

// localCorners lists the corners in (lateral, forward) units, in rotational
// order. The last two lie on the forward side of the box.
var localCorners = [4][2]float64{
	{-1, -1},
	{+1, -1},
	{+1, +1},
	{-1, +1},
}

// Corners returns the four corners of the box in a fixed rotational order.
// Indices 2 and 3 are the leading-edge corners.
func (b OrientedBox) Corners() [4]Vector2D {
	sin, cos := math.Sincos(b.Heading)
	forward := Vector2D{X: cos, Y: sin}
	lateral := Vector2D{X: -sin, Y: cos}

	var out [4]Vector2D
	for i, c := range localCorners {
		out[i] = b.Center.
			Add(lateral.Scale(c[0] * b.HalfWidth)).
			Add(forward.Scale(c[1] * b.HalfHeight))
	}
	return out
}

// FrontCorners returns the two corners on the leading edge of the box.
func (b OrientedBox) FrontCorners() [2]Vector2D {
	c := b.Corners()
	return [2]Vector2D{c[2], c[3]}
}

// Polygon is a closed polygon given by its vertices in order.
type Polygon []Vector2D

// SweptRegion builds the quadrilateral traced by a leading edge moving from
// before to after. The second pair is reversed so the outline does not cross
// itself.
func SweptRegion(before, after [2]Vector2D) Polygon {
	return Polygon{before[0], before[1], after[1], after[0]}
}

// SignedArea returns the shoelace area, positive for counter-clockwise outlines.
func (p Polygon) SignedArea() float64 {
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].Cross(p[j])
	}
	return sum / 2
}

// Area returns the absolute enclosed area.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Bounds returns the axis-aligned extremes of the polygon.
func (p Polygon) Bounds() (min, max Vector2D) {
	if len(p) == 0 {
		return Vector2D{}, Vector2D{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// Contains reports whether pt lies inside the polygon under the even-odd rule.
// Points exactly on a horizontal crossing use the half-open convention
// shared with field rasterization.
func (p Polygon) Contains(pt Vector2D) bool {
	inside := false
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		if (a.Y > pt.Y) == (b.Y > pt.Y) {
			continue
		}
		x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if pt.X < x {
			inside = !inside
		}
	}
	return inside
}

// Reversed returns the polygon with its vertex order reversed.
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}
