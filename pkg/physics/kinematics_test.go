// pkg/physics/kinematics_test.go
package physics

import (
	"math"
	"testing"
)

func TestKinematics_Advance(t *testing.T) {
	tests := []struct {
		name     string
		heading  float64
		speed    float64
		expected Vector2D
	}{
		{"east", 0, 2, Vector2D{X: 2, Y: 0}},
		{"north", math.Pi / 2, 3, Vector2D{X: 0, Y: 3}},
		{"backwards", 0, -2, Vector2D{X: -2, Y: 0}},
		{"stationary", 1.3, 0, Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := Kinematics{Heading: tt.heading, Speed: tt.speed}
			k.Advance()
			if !approxVector(k.Position, tt.expected) {
				t.Errorf("Position = %v, expected %v", k.Position, tt.expected)
			}
			if k.Heading != tt.heading {
				t.Errorf("Advance() changed heading to %v", k.Heading)
			}
		})
	}
}

func TestKinematics_ReverseRoundTrip(t *testing.T) {
	k := Kinematics{Position: Vector2D{X: 100, Y: 100}, Heading: 3 * math.Pi / 4, Speed: 5}
	start := k.Position

	k.Advance()
	k.ReverseSpeed()
	k.Advance()

	if !approxVector(k.Position, start) {
		t.Errorf("Position = %v, expected %v", k.Position, start)
	}
	if k.Speed != -5 {
		t.Errorf("Speed = %v, expected -5", k.Speed)
	}
	if k.Heading != 3*math.Pi/4 {
		t.Errorf("ReverseSpeed() changed heading to %v", k.Heading)
	}
}

func TestKinematics_RotateWraps(t *testing.T) {
	k := Kinematics{Heading: 3 * math.Pi / 2}
	k.Rotate(math.Pi)
	if !approxEqual(k.Heading, math.Pi/2) {
		t.Errorf("Heading = %v, expected %v", k.Heading, math.Pi/2)
	}

	k.Rotate(-math.Pi)
	if !approxEqual(k.Heading, 3*math.Pi/2) {
		t.Errorf("Heading = %v, expected %v", k.Heading, 3*math.Pi/2)
	}
}

func TestKinematics_StepsToCover(t *testing.T) {
	tests := []struct {
		speed    float64
		distance float64
		expected int
	}{
		{5, 45, 9},
		{-5, 45, 9},
		{2, 45, 23},
		{0.7, 1, 2},
		{0, 45, 0},
	}

	for _, tt := range tests {
		k := Kinematics{Speed: tt.speed}
		if got := k.StepsToCover(tt.distance); got != tt.expected {
			t.Errorf("StepsToCover(%v) at speed %v = %d, expected %d", tt.distance, tt.speed, got, tt.expected)
		}
	}
}

func TestKinematics_Box(t *testing.T) {
	k := Kinematics{Position: Vector2D{X: 1, Y: 2}, Heading: 0.5, HalfWidth: 3, HalfHeight: 4}
	box := k.Box()
	if box.Center != k.Position || box.Heading != 0.5 || box.HalfWidth != 3 || box.HalfHeight != 4 {
		t.Errorf("Box() = %+v", box)
	}
}
