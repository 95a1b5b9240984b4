// pkg/physics/kinematics.go
package physics

import "math"

// Kinematics tracks an agent's pose and motion. A negative Speed moves the
// body backwards along its heading.
type Kinematics struct {
	Position   Vector2D
	Heading    float64 // radians in [0, 2π)
	Speed      float64 // units per step, signed
	HalfWidth  float64
	HalfHeight float64
}

// Advance moves the body one step along its heading.
func (k *Kinematics) Advance() {
	k.Position = k.Position.Add(FromAngle(k.Heading, k.Speed))
}

// Rotate turns the heading by delta radians, wrapping into [0, 2π).
func (k *Kinematics) Rotate(delta float64) {
	k.Heading = NormalizeAngle(k.Heading + delta)
}

// ReverseSpeed flips the direction of travel without touching the heading.
func (k *Kinematics) ReverseSpeed() {
	k.Speed = -k.Speed
}

// Box returns the body outline at the current pose.
func (k *Kinematics) Box() OrientedBox {
	return OrientedBox{
		Center:     k.Position,
		HalfWidth:  k.HalfWidth,
		HalfHeight: k.HalfHeight,
		Heading:    k.Heading,
	}
}

// StepsToCover returns how many advances at the current speed are needed to
// travel at least distance. A stationary body needs none.
func (k *Kinematics) StepsToCover(distance float64) int {
	s := math.Abs(k.Speed)
	if s == 0 || distance <= 0 {
		return 0
	}
	return int(math.Ceil(distance / s))
}
