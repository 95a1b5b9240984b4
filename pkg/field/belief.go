package field

import (
	"fmt"

	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// DefaultPrior is the belief assigned to every cell before any evidence.
const DefaultPrior = 0.5

// Belief is the learned probability that each cell is an obstacle. Every
// write is clamped so cells never leave [0, 1].
type Belief struct {
	f *Field
}

// NewBelief creates a width×height belief grid initialized to prior.
func NewBelief(width, height int, prior float64) (*Belief, error) {
	if prior < 0 || prior > 1 {
		return nil, fmt.Errorf("belief prior %v outside [0, 1]", prior)
	}
	f, err := New(width, height, prior)
	if err != nil {
		return nil, err
	}
	return &Belief{f: f}, nil
}

// Increase raises every cell inside the region by amount, saturating at 1.
func (b *Belief) Increase(points physics.Polygon, amount float64) {
	b.f.apply(points, func(v, m float64) float64 {
		return clamp01(v + m*amount)
	})
}

// Decrease lowers every cell inside the region by amount, saturating at 0.
func (b *Belief) Decrease(points physics.Polygon, amount float64) {
	b.f.apply(points, func(v, m float64) float64 {
		return clamp01(v - m*amount)
	})
}

// OverlapScore returns the belief mass under the region.
func (b *Belief) OverlapScore(points physics.Polygon) float64 {
	return b.f.OverlapScore(points)
}

// Width returns the number of columns.
func (b *Belief) Width() int { return b.f.Width() }

// Height returns the number of rows.
func (b *Belief) Height() int { return b.f.Height() }

// At returns the belief for cell (row, col).
func (b *Belief) At(row, col int) float64 { return b.f.At(row, col) }

// Values returns a row-major copy of the grid.
func (b *Belief) Values() []float64 { return b.f.Values() }

// Snapshot returns an independent copy of the grid for rendering.
func (b *Belief) Snapshot() *Field { return b.f.Snapshot() }

// Mean returns the average belief over all cells.
func (b *Belief) Mean() float64 {
	return b.f.Sum() / float64(b.f.Width()*b.f.Height())
}

// CellsAbove counts cells whose belief is strictly greater than threshold.
func (b *Belief) CellsAbove(threshold float64) int {
	n := 0
	for _, v := range b.f.data.RawMatrix().Data {
		if v > threshold {
			n++
		}
	}
	return n
}

// InRange reports whether every cell lies within [0, 1].
func (b *Belief) InRange() bool {
	for _, v := range b.f.data.RawMatrix().Data {
		if v < 0 || v > 1 || v != v {
			return false
		}
	}
	return true
}

// Restore overwrites the grid with row-major values, typically loaded from a
// checkpoint. Values are clamped on the way in.
func (b *Belief) Restore(values []float64) error {
	if want := b.f.Width() * b.f.Height(); len(values) != want {
		return fmt.Errorf("restore belief: got %d values, expected %d", len(values), want)
	}
	data := b.f.data.RawMatrix().Data
	for i, v := range values {
		data[i] = clamp01(v)
	}
	return nil
}

// clamp01 bounds v to [0, 1]; NaN collapses to 0.
func clamp01(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v >= 0:
		return v
	default:
		return 0
	}
}
