// pkg/render/engo/input.go
package engo

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-bumpmap/pkg/engine"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
	"github.com/opd-ai/go-bumpmap/pkg/render"
)

// Button names registered with engo.Input.
const (
	ButtonPause      = "pause"
	ButtonStep       = "step"
	ButtonFaster     = "faster"
	ButtonSlower     = "slower"
	ButtonCheckpoint = "checkpoint"
	ButtonHeatmap    = "heatmap"
	ButtonQuit       = "quit"
)

// actionOrder fixes the order in which simultaneous presses are handled.
var actionOrder = []string{
	ButtonPause, ButtonStep, ButtonFaster, ButtonSlower,
	ButtonCheckpoint, ButtonHeatmap, ButtonQuit,
}

// InputSystem maps key presses to simulation controls
type InputSystem struct {
	system     *SimulationSystem
	sim        *engine.Simulation
	logger     *logging.Logger
	heatmapDir string
	quit       func()
}

// NewInputSystem creates a new input system. Heatmaps are written into
// heatmapDir; quit is called on the quit key.
func NewInputSystem(system *SimulationSystem, sim *engine.Simulation, heatmapDir string, quit func(), logger *logging.Logger) *InputSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &InputSystem{
		system:     system,
		sim:        sim,
		logger:     logger,
		heatmapDir: heatmapDir,
		quit:       quit,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update handles the buttons pressed since the last frame.
func (is *InputSystem) Update(dt float32) {
	for _, name := range actionOrder {
		if engo.Input.Button(name).JustPressed() {
			is.apply(name)
		}
	}
}

// apply performs the control bound to a button name.
func (is *InputSystem) apply(name string) {
	ctx := is.system.ctx
	switch name {
	case ButtonPause:
		is.logger.Info(ctx, "pause toggled", "paused", is.system.TogglePause())
	case ButtonStep:
		is.system.StepOnce()
	case ButtonFaster:
		is.logger.Debug(ctx, "speed changed", "steps_per_frame", is.system.Faster())
	case ButtonSlower:
		is.logger.Debug(ctx, "speed changed", "steps_per_frame", is.system.Slower())
	case ButtonCheckpoint:
		if _, err := is.sim.Checkpoint(ctx); errors.Is(err, engine.ErrNoCheckpointer) {
			is.logger.Warn(ctx, "checkpoint requested without a database")
		}
	case ButtonHeatmap:
		is.writeHeatmap()
	case ButtonQuit:
		if is.quit != nil {
			is.quit()
		}
	}
}

func (is *InputSystem) writeHeatmap() {
	ctx := is.system.ctx
	state := is.sim.State()
	path := filepath.Join(is.heatmapDir, fmt.Sprintf("belief-%s-%06d.png", state.RunID, state.Tick))

	opts := render.DefaultHeatmapOptions()
	opts.Title = fmt.Sprintf("belief at tick %d", state.Tick)
	if err := render.WriteHeatmap(path, state.Belief, opts); err != nil {
		is.logger.Error(ctx, "failed to write heatmap", err, "path", path)
		return
	}
	is.logger.Info(ctx, "heatmap written", "path", path)
}

// SetupInputBindings registers the simulation key bindings
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace, engo.KeyP)
	engo.Input.RegisterButton(ButtonStep, engo.KeyN)
	engo.Input.RegisterButton(ButtonFaster, engo.KeyArrowUp, engo.KeyF)
	engo.Input.RegisterButton(ButtonSlower, engo.KeyArrowDown, engo.KeyS)
	engo.Input.RegisterButton(ButtonCheckpoint, engo.KeyC)
	engo.Input.RegisterButton(ButtonHeatmap, engo.KeyH)
	engo.Input.RegisterButton(ButtonQuit, engo.KeyEscape, engo.KeyQ)
}
