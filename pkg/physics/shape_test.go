// pkg/physics/shape_test.go
package physics

import "testing"

func TestCircle_Contains(t *testing.T) {
	c := Circle{Center: Vector2D{X: 10, Y: 10}, Radius: 5}
	tests := []struct {
		name     string
		point    Vector2D
		expected bool
	}{
		{"center", Vector2D{X: 10, Y: 10}, true},
		{"on_edge", Vector2D{X: 15, Y: 10}, true},
		{"diagonal_inside", Vector2D{X: 13, Y: 13}, true},
		{"diagonal_outside", Vector2D{X: 14, Y: 14}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.point); got != tt.expected {
				t.Errorf("Contains(%v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}

	min, max := c.Bounds()
	if min != (Vector2D{X: 5, Y: 5}) || max != (Vector2D{X: 15, Y: 15}) {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}

func TestRect_ContainsHalfOpen(t *testing.T) {
	r := Rect{Min: Vector2D{X: 0, Y: 0}, Width: 10, Height: 5}
	if !r.Contains(Vector2D{X: 0, Y: 0}) {
		t.Error("Rect should contain its min corner")
	}
	if r.Contains(Vector2D{X: 10, Y: 2}) {
		t.Error("Rect should not contain its max X edge")
	}
	if r.Contains(Vector2D{X: 2, Y: 5}) {
		t.Error("Rect should not contain its max Y edge")
	}
}

func TestRect_Inset(t *testing.T) {
	r := Rect{Min: Vector2D{X: 0, Y: 0}, Width: 100, Height: 50}.Inset(20)
	if r.Min != (Vector2D{X: 20, Y: 20}) || r.Width != 60 || r.Height != 10 {
		t.Errorf("Inset() = %+v", r)
	}

	collapsed := Rect{Width: 10, Height: 10}.Inset(8)
	if collapsed.Width != 0 || collapsed.Height != 0 {
		t.Errorf("Inset() beyond half size = %+v, expected zero size", collapsed)
	}
}

func TestRectBorder_Contains(t *testing.T) {
	border := RectBorder{Outer: Rect{Width: 768, Height: 512}, Margin: 20}
	tests := []struct {
		name     string
		point    Vector2D
		expected bool
	}{
		{"left_wall", Vector2D{X: 10, Y: 200}, true},
		{"right_wall", Vector2D{X: 760, Y: 200}, true},
		{"top_wall", Vector2D{X: 300, Y: 5}, true},
		{"bottom_wall", Vector2D{X: 300, Y: 500}, true},
		{"interior", Vector2D{X: 384, Y: 256}, false},
		{"just_inside_margin", Vector2D{X: 20, Y: 20}, false},
		{"outside_arena", Vector2D{X: -1, Y: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := border.Contains(tt.point); got != tt.expected {
				t.Errorf("Contains(%v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}
}
