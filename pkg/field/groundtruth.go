package field

import (
	"math"

	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// GroundTruth is the binary obstacle map: 1 where a fixed shape covers the
// cell center, 0 elsewhere. It cannot be modified after construction.
type GroundTruth struct {
	f *Field
}

// NewGroundTruth stamps every shape onto a zeroed width×height grid.
func NewGroundTruth(width, height int, shapes ...physics.Shape) (*GroundTruth, error) {
	f, err := New(width, height, 0)
	if err != nil {
		return nil, err
	}
	for _, s := range shapes {
		stamp(f, s)
	}
	return &GroundTruth{f: f}, nil
}

// stamp sets to 1 every cell whose center lies inside s, visiting only the
// cells within the shape's bounds.
func stamp(f *Field, s physics.Shape) {
	min, max := s.Bounds()
	box, ok := f.Clip(BoundingBox(physics.Polygon{min, max}).Inset(-1))
	if !ok {
		return
	}
	for row := box.Min.Y; row < box.Max.Y; row++ {
		cells := f.data.RawRowView(row)
		for col := box.Min.X; col < box.Max.X; col++ {
			center := physics.Vector2D{X: float64(col) + 0.5, Y: float64(row) + 0.5}
			if s.Contains(center) {
				cells[col] = 1
			}
		}
	}
}

// OverlapScore returns the number of obstacle cells under the region.
func (g *GroundTruth) OverlapScore(points physics.Polygon) float64 {
	return g.f.OverlapScore(points)
}

// Width returns the number of columns.
func (g *GroundTruth) Width() int { return g.f.Width() }

// Height returns the number of rows.
func (g *GroundTruth) Height() int { return g.f.Height() }

// At returns 1 when cell (row, col) is an obstacle.
func (g *GroundTruth) At(row, col int) float64 { return g.f.At(row, col) }

// ObstacleCells returns how many cells are occupied.
func (g *GroundTruth) ObstacleCells() int {
	return int(math.Round(g.f.Sum()))
}

// Snapshot returns a mutable copy of the underlying grid.
func (g *GroundTruth) Snapshot() *Field {
	return g.f.Snapshot()
}
