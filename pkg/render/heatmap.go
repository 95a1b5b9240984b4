package render

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/opd-ai/go-bumpmap/pkg/field"
)

// gridXYZ adapts a field.Grid to plotter.GridXYZ with cell centers as
// coordinates.
type gridXYZ struct {
	g field.Grid
}

func (g gridXYZ) Dims() (c, r int)   { return g.g.Width(), g.g.Height() }
func (g gridXYZ) Z(c, r int) float64 { return g.g.At(r, c) }
func (g gridXYZ) X(c int) float64    { return float64(c) + 0.5 }
func (g gridXYZ) Y(r int) float64    { return float64(r) + 0.5 }

// HeatmapOptions controls WriteHeatmap output.
type HeatmapOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Colors int // palette resolution
}

// DefaultHeatmapOptions returns a 6 inch wide plot with a 255 step palette.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		Title:  "Belief",
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
		Colors: 255,
	}
}

// WriteHeatmap renders grid as a heat map spanning [0, 1] and saves it to
// path. The format follows the file extension (png, svg, pdf, ...). Rows
// are drawn top to bottom to match world coordinates.
func WriteHeatmap(path string, grid field.Grid, opts HeatmapOptions) error {
	if grid == nil || grid.Width() == 0 || grid.Height() == 0 {
		return fmt.Errorf("write heatmap %s: empty grid", filepath.Base(path))
	}
	if opts.Colors <= 1 {
		opts.Colors = 255
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	hm := plotter.NewHeatMap(gridXYZ{grid}, cmap.Palette(opts.Colors))
	hm.Min, hm.Max = 0, 1

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	p.Add(hm)

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("write heatmap %s: %w", filepath.Base(path), err)
	}
	return nil
}
