// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-bumpmap/pkg/engine"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
)

// SceneOptions tunes the interactive viewer
type SceneOptions struct {
	Title         string
	StepsPerFrame int
	TickLimit     uint64
	RefreshEvery  int // frames between arena texture uploads
	HeatmapDir    string
	Font          *common.Font
}

// DefaultSceneOptions returns options suitable for a desktop window
func DefaultSceneOptions() SceneOptions {
	return SceneOptions{
		Title:         "bumpmap",
		StepsPerFrame: 1,
		RefreshEvery:  10,
		HeatmapDir:    ".",
	}
}

// SimulationScene shows a running simulation in an Engo window
type SimulationScene struct {
	ctx    context.Context
	sim    *engine.Simulation
	logger *logging.Logger
	opts   SceneOptions

	world    *ecs.World
	renderer *EngoRenderer
	system   *SimulationSystem
	input    *InputSystem
	hud      *HUDSystem
}

// NewSimulationScene creates a scene for sim
func NewSimulationScene(ctx context.Context, sim *engine.Simulation, opts SceneOptions, logger *logging.Logger) *SimulationScene {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SimulationScene{
		ctx:    ctx,
		sim:    sim,
		logger: logger,
		opts:   opts,
	}
}

// Type returns the scene type (required by Engo)
func (scene *SimulationScene) Type() string {
	return "SimulationScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *SimulationScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *SimulationScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	scene.world = world
	common.SetBackground(color.Black)
	SetupInputBindings()

	rs := &common.RenderSystem{}
	world.AddSystem(rs)

	arena := scene.sim.Config.Arena
	scene.renderer = NewEngoRenderer(rs, arena.Width, arena.Height, scene.opts.RefreshEvery)

	scene.system = NewSimulationSystem(scene.ctx, scene.sim, scene.renderer, scene.opts.StepsPerFrame, scene.opts.TickLimit, scene.logger)
	scene.system.OnCancel = engo.Exit
	world.AddSystem(scene.system)

	scene.input = NewInputSystem(scene.system, scene.sim, scene.opts.HeatmapDir, engo.Exit, scene.logger)
	world.AddSystem(scene.input)

	scene.hud = NewHUDSystem(rs, scene.sim.EventBus)
	scene.hud.SetFont(scene.opts.Font)
	world.AddSystem(scene.hud)

	if err := scene.sim.Start(scene.ctx); err != nil {
		scene.logger.Warn(scene.sim.Context(scene.ctx), "simulation already running", "error", err)
	}
	scene.logger.Info(scene.sim.Context(scene.ctx), "viewer started",
		"width", arena.Width,
		"height", arena.Height,
		"steps_per_frame", scene.system.StepsPerFrame(),
	)
}

// Exit is called when the window closes (required by Engo). Stopping the
// simulation saves a final checkpoint when one is configured.
func (scene *SimulationScene) Exit() {
	ctx := context.WithoutCancel(scene.sim.Context(scene.ctx))
	scene.sim.Stop(ctx)
	if scene.hud != nil {
		scene.hud.Close()
	}
	scene.logger.Info(ctx, "viewer closed", "tick", scene.sim.CurrentTick())
	engo.Exit()
}

// Run opens a window sized to the arena and blocks until it is closed.
func Run(ctx context.Context, sim *engine.Simulation, opts SceneOptions, logger *logging.Logger) {
	scene := NewSimulationScene(ctx, sim, opts, logger)
	engo.Run(engo.RunOptions{
		Title:  opts.Title,
		Width:  sim.Config.Arena.Width,
		Height: sim.Config.Arena.Height,
		VSync:  true,
	}, scene)
}
