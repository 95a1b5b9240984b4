package field

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// Rasterize fills a mask the size of window with 1 for every cell whose
// center lies inside the polygon and 0 elsewhere. Mask cell (i, j) stands
// for grid cell (window.Min.Y+i, window.Min.X+j).
//
// Cells are filled scanline by scanline using the even-odd rule, so a
// zero-area polygon produces an all-zero mask.
func Rasterize(points physics.Polygon, window image.Rectangle) *mat.Dense {
	w, h := window.Dx(), window.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	mask := mat.NewDense(h, w, nil)
	if len(points) < 3 {
		return mask
	}

	crossings := make([]float64, 0, len(points))
	for i := 0; i < h; i++ {
		y := float64(window.Min.Y+i) + 0.5
		crossings = scanline(points, y, crossings[:0])
		row := mask.RawRowView(i)
		for k := 0; k+1 < len(crossings); k += 2 {
			fillSpan(row, crossings[k], crossings[k+1], float64(window.Min.X))
		}
	}
	return mask
}

// scanline appends the sorted X coordinates where the polygon outline
// crosses the horizontal line at y. Edges use the half-open rule
// (a.Y > y) != (b.Y > y) so horizontal edges never produce a crossing.
func scanline(points physics.Polygon, y float64, dst []float64) []float64 {
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		if (a.Y > y) == (b.Y > y) {
			continue
		}
		dst = append(dst, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
	}
	sort.Float64s(dst)
	return dst
}

// fillSpan sets row cells whose centers x0+j+0.5 fall in [from, to).
func fillSpan(row []float64, from, to, x0 float64) {
	first := int(math.Ceil(from - x0 - 0.5))
	last := int(math.Ceil(to-x0-0.5)) - 1
	if first < 0 {
		first = 0
	}
	if last >= len(row) {
		last = len(row) - 1
	}
	for j := first; j <= last; j++ {
		row[j] = 1
	}
}
