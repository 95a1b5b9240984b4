// pkg/render/engo/renderer.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-bumpmap/pkg/agent"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/render"
)

// sprite bundles the components the render system needs for one entity.
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// EngoRenderer implements render.Renderer on top of an Engo render system.
// The arena is one textured sprite rebuilt every refreshEvery frames;
// agents are outlined rectangles rotated to their heading.
type EngoRenderer struct {
	renderSystem *common.RenderSystem
	width        int
	height       int

	background *sprite
	texture    *common.Texture
	image      *FieldImage
	truth      field.Grid
	belief     field.Grid

	agents map[agent.ID]*sprite

	refreshEvery int
	frame        int
	dirty        bool
}

// NewEngoRenderer creates a renderer for a width×height arena.
func NewEngoRenderer(rs *common.RenderSystem, width, height, refreshEvery int) *EngoRenderer {
	return &EngoRenderer{
		renderSystem: rs,
		width:        width,
		height:       height,
		image:        NewFieldImage(width, height),
		agents:       make(map[agent.ID]*sprite),
		refreshEvery: max(refreshEvery, 1),
	}
}

// Clear implements render.Renderer.
func (r *EngoRenderer) Clear() {
	r.frame++
}

// refreshDue reports whether this frame rebuilds the arena texture.
func (r *EngoRenderer) refreshDue() bool {
	return r.frame == 1 || r.frame%r.refreshEvery == 0
}

// RenderField implements render.Renderer. Grids are painted into the
// arena image on Present so obstacles always land on top of belief.
func (r *EngoRenderer) RenderField(layer render.Layer, grid field.Grid) {
	if grid == nil || !r.refreshDue() {
		return
	}
	switch layer {
	case render.GroundTruthLayer:
		r.truth = grid
	case render.BeliefLayer:
		r.belief = grid
	default:
		return
	}
	r.dirty = true
}

// RenderAgent implements render.Renderer.
func (r *EngoRenderer) RenderAgent(a *agent.Agent) {
	if a == nil {
		return
	}
	s, ok := r.agents[a.ID]
	if !ok {
		s = &sprite{BasicEntity: ecs.NewBasic()}
		s.RenderComponent = common.RenderComponent{
			Drawable: common.Rectangle{BorderWidth: 1, BorderColor: outlineColor},
			Color:    agentColor,
		}
		s.SetZIndex(1)
		r.agents[a.ID] = s
		r.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
	s.SpaceComponent = agentSpace(a)
}

// agentSpace places an unrotated Width×Height rectangle so that, rotated
// about its top-left corner by the heading, it covers the agent's box.
func agentSpace(a *agent.Agent) common.SpaceComponent {
	corner := a.Box().Corners()[0]
	return common.SpaceComponent{
		Position: engo.Point{X: float32(corner.X), Y: float32(corner.Y)},
		Width:    float32(2 * a.HalfHeight),
		Height:   float32(2 * a.HalfWidth),
		Rotation: float32(a.Heading * 180 / math.Pi),
	}
}

// Present implements render.Renderer. It uploads the arena texture when a
// refresh frame changed it.
func (r *EngoRenderer) Present() {
	if !r.dirty {
		return
	}
	r.dirty = false

	if r.belief != nil {
		r.image.DrawBelief(r.belief)
	}
	if r.truth != nil {
		r.image.DrawObstacles(r.truth)
	}
	texture := convertToEngoTexture(r.image.Image())
	if r.background == nil {
		r.background = &sprite{BasicEntity: ecs.NewBasic()}
		r.background.SpaceComponent = common.SpaceComponent{
			Width:  float32(r.width),
			Height: float32(r.height),
		}
		r.background.RenderComponent = common.RenderComponent{Drawable: texture}
		r.renderSystem.Add(&r.background.BasicEntity, &r.background.RenderComponent, &r.background.SpaceComponent)
	} else {
		r.background.Drawable = texture
	}
	if r.texture != nil {
		r.texture.Close()
	}
	r.texture = texture
}

// RemoveAgent removes an agent sprite from rendering.
func (r *EngoRenderer) RemoveAgent(id agent.ID) {
	if s, ok := r.agents[id]; ok {
		r.renderSystem.Remove(s.BasicEntity)
		delete(r.agents, id)
	}
}
