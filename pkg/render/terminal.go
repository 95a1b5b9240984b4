package render

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-bumpmap/pkg/agent"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// shades maps belief from 0 (free) to 1 (occupied).
var shades = []rune(" .:-=+*%@")

// TerminalRenderer draws a downsampled ASCII view of the arena
type TerminalRenderer struct {
	out        io.Writer
	width      int
	height     int
	buffer     [][]rune
	scale      float64 // world units per character
	clearCodes bool
}

// NewTerminalRenderer creates a width×height character view where each
// character covers scale×scale world units.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	return &TerminalRenderer{
		out:    out,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
}

// FitTerminalRenderer sizes a renderer so a gridWidth×gridHeight arena fits
// in at most cols columns. Rows are halved since characters are about twice
// as tall as they are wide.
func FitTerminalRenderer(out io.Writer, gridWidth, gridHeight, cols int) *TerminalRenderer {
	scale := math.Max(1, float64(gridWidth)/float64(cols))
	w := int(math.Ceil(float64(gridWidth) / scale))
	h := int(math.Ceil(float64(gridHeight) / scale / 2))
	r := NewTerminalRenderer(out, w, max(h, 1), scale)
	return r
}

// SetClearScreen controls whether Present emits ANSI codes to clear the
// terminal before each frame.
func (r *TerminalRenderer) SetClearScreen(on bool) {
	r.clearCodes = on
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	return int(pos.X / r.scale), int(pos.Y / r.scale / 2)
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderField implements Renderer. Belief is averaged over each character's
// block; ground truth marks any block holding an obstacle cell with '#'.
func (r *TerminalRenderer) RenderField(layer Layer, grid field.Grid) {
	if grid == nil {
		return
	}
	for sy := 0; sy < r.height; sy++ {
		row0 := int(float64(sy) * r.scale * 2)
		row1 := min(int(float64(sy+1)*r.scale*2), grid.Height())
		for sx := 0; sx < r.width; sx++ {
			col0 := int(float64(sx) * r.scale)
			col1 := min(int(float64(sx+1)*r.scale), grid.Width())
			if row0 >= row1 || col0 >= col1 {
				continue
			}
			sum, peak := 0.0, 0.0
			for row := row0; row < row1; row++ {
				for col := col0; col < col1; col++ {
					v := grid.At(row, col)
					sum += v
					peak = math.Max(peak, v)
				}
			}
			switch layer {
			case GroundTruthLayer:
				if peak > 0 {
					r.buffer[sy][sx] = '#'
				}
			case BeliefLayer:
				if r.buffer[sy][sx] == '#' {
					continue
				}
				r.buffer[sy][sx] = shade(sum / float64((row1-row0)*(col1-col0)))
			}
		}
	}
}

func shade(v float64) rune {
	i := int(v * float64(len(shades)-1))
	return shades[max(0, min(i, len(shades)-1))]
}

// RenderAgent implements Renderer. The agent is drawn as an arrow pointing
// along its heading.
func (r *TerminalRenderer) RenderAgent(a *agent.Agent) {
	if a == nil {
		return
	}
	x, y := r.worldToScreen(a.Position)
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = arrow(a.Heading)
	}
}

// arrow picks one of eight direction glyphs; y grows downwards on screen.
func arrow(heading float64) rune {
	glyphs := []rune{'>', '\\', 'v', '/', '<', '\\', '^', '/'}
	octant := int(math.Round(physics.NormalizeAngle(heading)/(math.Pi/4))) % 8
	return glyphs[octant]
}

// Present implements Renderer
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	if r.clearCodes {
		w.WriteString("\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteRune('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	w.Flush()
}
