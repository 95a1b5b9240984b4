package field

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// ErrInvalidDimensions is returned when a grid is requested with a
// non-positive width or height.
var ErrInvalidDimensions = errors.New("field dimensions must be positive")

// Grid is the read-only view renderers and diagnostics consume.
type Grid interface {
	Width() int
	Height() int
	At(row, col int) float64
}

// Field is a fixed-size 2D grid of scalars.
type Field struct {
	data *mat.Dense
}

// New creates a width×height field with every cell set to fill.
func New(width, height int, fill float64) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	values := make([]float64, width*height)
	if fill != 0 {
		for i := range values {
			values[i] = fill
		}
	}
	return &Field{data: mat.NewDense(height, width, values)}, nil
}

// Width returns the number of columns.
func (f *Field) Width() int {
	_, c := f.data.Dims()
	return c
}

// Height returns the number of rows.
func (f *Field) Height() int {
	r, _ := f.data.Dims()
	return r
}

// Bounds returns the grid extents as a rectangle in cell coordinates.
func (f *Field) Bounds() image.Rectangle {
	r, c := f.data.Dims()
	return image.Rect(0, 0, c, r)
}

// At returns the value of cell (row, col).
func (f *Field) At(row, col int) float64 {
	return f.data.At(row, col)
}

// Sum returns the total of all cells.
func (f *Field) Sum() float64 {
	return mat.Sum(f.data)
}

// Values returns a row-major copy of every cell.
func (f *Field) Values() []float64 {
	r, c := f.data.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, f.data.RawRowView(i)...)
	}
	return out
}

// Snapshot returns an independent copy of the field.
func (f *Field) Snapshot() *Field {
	return &Field{data: mat.DenseCopyOf(f.data)}
}

// BoundingBox returns the smallest integer rectangle covering every point.
func BoundingBox(points physics.Polygon) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	min, max := points.Bounds()
	return image.Rect(
		int(math.Floor(min.X)),
		int(math.Floor(min.Y)),
		int(math.Ceil(max.X)),
		int(math.Ceil(max.Y)),
	)
}

// Clip intersects box with the grid extents. ok is false when nothing of the
// box lies on the grid.
func (f *Field) Clip(box image.Rectangle) (clipped image.Rectangle, ok bool) {
	clipped = box.Intersect(f.Bounds())
	return clipped, !clipped.Empty()
}

// region returns the clipped window for points together with a view of the
// grid cells under it and the rasterized mask. ok is false when the window
// is empty.
func (f *Field) region(points physics.Polygon) (roi, mask *mat.Dense, ok bool) {
	if len(points) < 3 {
		return nil, nil, false
	}
	box, ok := f.Clip(BoundingBox(points))
	if !ok {
		return nil, nil, false
	}
	roi = f.data.Slice(box.Min.Y, box.Max.Y, box.Min.X, box.Max.X).(*mat.Dense)
	mask = Rasterize(points, box)
	return roi, mask, true
}

// OverlapScore returns the sum of cell values under the rasterized region:
// the field mass the region intersects. Regions that fall outside the grid
// or enclose no cell center score 0.
func (f *Field) OverlapScore(points physics.Polygon) float64 {
	roi, mask, ok := f.region(points)
	if !ok {
		return 0
	}
	var product mat.Dense
	product.MulElem(roi, mask)
	return mat.Sum(&product)
}

// apply rewrites every masked cell under the region with fn(old, maskValue).
// Unmasked cells are left untouched.
func (f *Field) apply(points physics.Polygon, fn func(v, m float64) float64) {
	roi, mask, ok := f.region(points)
	if !ok {
		return
	}
	rows, _ := roi.Dims()
	for i := 0; i < rows; i++ {
		cells := roi.RawRowView(i)
		weights := mask.RawRowView(i)
		for j, m := range weights {
			if m == 0 {
				continue
			}
			cells[j] = fn(cells[j], m)
		}
	}
}
