// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-bumpmap/pkg/agent"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
)

// Layer identifies which grid is being drawn.
type Layer int

const (
	GroundTruthLayer Layer = iota
	BeliefLayer
)

func (l Layer) String() string {
	switch l {
	case GroundTruthLayer:
		return "ground_truth"
	case BeliefLayer:
		return "belief"
	default:
		return "unknown"
	}
}

// Renderer draws one frame of the simulation. The simulation calls Clear,
// then RenderField for each layer and RenderAgent for each agent, then
// Present. Grids passed in are only valid for the duration of the call.
type Renderer interface {
	Clear()
	RenderField(layer Layer, grid field.Grid)
	RenderAgent(a *agent.Agent)
	Present()
}

// NullRenderer is a Renderer that only logs at debug level.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{
		logger: logger,
	}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderField implements Renderer.
func (d *NullRenderer) RenderField(layer Layer, grid field.Grid) {
	ctx := context.Background()
	if grid == nil {
		d.logger.Debug(ctx, "RenderField called with nil grid", "layer", layer.String())
		return
	}
	d.logger.Debug(ctx, "RenderField called",
		"layer", layer.String(),
		"width", grid.Width(),
		"height", grid.Height(),
	)
}

// RenderAgent implements Renderer.
func (d *NullRenderer) RenderAgent(a *agent.Agent) {
	ctx := context.Background()
	if a == nil {
		d.logger.Debug(ctx, "RenderAgent called with nil agent")
		return
	}
	d.logger.Debug(ctx, "RenderAgent called",
		"agent_id", uint64(a.ID),
		"x", a.Position.X,
		"y", a.Position.Y,
		"heading", a.Heading,
	)
}
