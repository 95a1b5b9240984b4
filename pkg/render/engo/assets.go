// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/EngoEngine/engo/common"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/opd-ai/go-bumpmap/pkg/field"
)

var (
	obstacleColor = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	agentColor    = color.RGBA{R: 0, G: 191, B: 255, A: 255}
	outlineColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// FieldImage is the CPU-side pixel buffer behind the arena texture: one
// pixel per grid cell, belief colored blue (free) to red (occupied) with
// known obstacles drawn dark on top.
type FieldImage struct {
	img  *image.NRGBA
	cmap palette.ColorMap
}

// NewFieldImage creates a transparent width×height buffer.
func NewFieldImage(width, height int) *FieldImage {
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return &FieldImage{img: img, cmap: cmap}
}

// DrawBelief colors every pixel by the belief value of its cell.
func (f *FieldImage) DrawBelief(g field.Grid) {
	b := f.img.Bounds()
	for row := 0; row < min(g.Height(), b.Dy()); row++ {
		for col := 0; col < min(g.Width(), b.Dx()); col++ {
			f.img.Set(col, row, f.beliefColor(g.At(row, col)))
		}
	}
}

// DrawObstacles paints every non-zero cell of g with the obstacle color.
func (f *FieldImage) DrawObstacles(g field.Grid) {
	b := f.img.Bounds()
	for row := 0; row < min(g.Height(), b.Dy()); row++ {
		for col := 0; col < min(g.Width(), b.Dx()); col++ {
			if g.At(row, col) > 0 {
				f.img.SetNRGBA(col, row, obstacleColor)
			}
		}
	}
}

func (f *FieldImage) beliefColor(v float64) color.Color {
	c, err := f.cmap.At(min(max(v, 0), 1))
	if err != nil {
		return obstacleColor
	}
	return c
}

// Image returns the underlying buffer.
func (f *FieldImage) Image() *image.NRGBA {
	return f.img
}

// convertToEngoTexture uploads img as an Engo texture. It needs a live GL
// context.
func convertToEngoTexture(img *image.NRGBA) *common.Texture {
	texture := common.NewTextureSingle(common.NewImageObject(img))
	return &texture
}
