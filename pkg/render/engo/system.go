// pkg/render/engo/system.go
package engo

import (
	"context"
	"errors"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-bumpmap/pkg/engine"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
	"github.com/opd-ai/go-bumpmap/pkg/render"
)

const maxStepsPerFrame = 64

// SimulationSystem drives a simulation from the Engo frame loop: each frame
// it advances StepsPerFrame ticks (unless paused) and renders the result.
type SimulationSystem struct {
	ctx      context.Context
	sim      *engine.Simulation
	renderer render.Renderer
	logger   *logging.Logger

	stepsPerFrame int
	tickLimit     uint64
	paused        bool
	pendingStep   bool
	finished      bool
	cancelled     bool

	// OnDone runs once when ctx ends or the tick limit is reached.
	OnDone func()
	// OnCancel runs once on the first frame after ctx ends, whether the
	// simulation is stepping, paused or already finished.
	OnCancel func()
}

// NewSimulationSystem creates a system for sim. A tickLimit of zero runs
// until ctx is cancelled.
func NewSimulationSystem(ctx context.Context, sim *engine.Simulation, r render.Renderer, stepsPerFrame int, tickLimit uint64, logger *logging.Logger) *SimulationSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SimulationSystem{
		ctx:           sim.Context(ctx),
		sim:           sim,
		renderer:      r,
		logger:        logger,
		stepsPerFrame: min(max(stepsPerFrame, 1), maxStepsPerFrame),
		tickLimit:     tickLimit,
	}
}

// Remove satisfies the ecs.System interface
func (s *SimulationSystem) Remove(basic ecs.BasicEntity) {}

// Update advances the simulation and redraws it.
func (s *SimulationSystem) Update(dt float32) {
	if s.ctx.Err() != nil {
		s.cancel()
		return
	}
	if !s.finished {
		steps := s.stepsPerFrame
		if s.paused {
			steps = 0
			if s.pendingStep {
				steps = 1
			}
		}
		s.pendingStep = false
		s.advance(steps)
	}
	if s.renderer != nil {
		s.sim.Render(s.renderer)
	}
}

func (s *SimulationSystem) cancel() {
	if !s.finished {
		s.finish("context done")
	}
	if s.cancelled {
		return
	}
	s.cancelled = true
	if s.OnCancel != nil {
		s.OnCancel()
	}
}

func (s *SimulationSystem) advance(steps int) {
	for i := 0; i < steps; i++ {
		if s.tickLimit > 0 && s.sim.CurrentTick() >= s.tickLimit {
			s.finish("tick limit reached")
			return
		}
		stats, err := s.sim.Step(s.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.finish("context done")
				return
			}
			s.logger.Error(s.ctx, "simulation step failed", err)
			return
		}
		s.sim.CheckpointIfDue(s.ctx, stats.Tick)
	}
}

func (s *SimulationSystem) finish(reason string) {
	s.finished = true
	s.logger.Info(s.ctx, "simulation finished",
		"reason", reason,
		"tick", s.sim.CurrentTick(),
	)
	s.sim.Stop(s.ctx)
	if s.OnDone != nil {
		s.OnDone()
	}
}

// TogglePause pauses or resumes stepping and returns the new state.
func (s *SimulationSystem) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// Paused reports whether stepping is suspended.
func (s *SimulationSystem) Paused() bool {
	return s.paused
}

// StepOnce queues a single tick for the next frame while paused.
func (s *SimulationSystem) StepOnce() {
	s.pendingStep = true
}

// StepsPerFrame returns the current simulation speed.
func (s *SimulationSystem) StepsPerFrame() int {
	return s.stepsPerFrame
}

// Faster doubles the number of ticks per frame.
func (s *SimulationSystem) Faster() int {
	s.stepsPerFrame = min(s.stepsPerFrame*2, maxStepsPerFrame)
	return s.stepsPerFrame
}

// Slower halves the number of ticks per frame.
func (s *SimulationSystem) Slower() int {
	s.stepsPerFrame = max(s.stepsPerFrame/2, 1)
	return s.stepsPerFrame
}

// Finished reports whether the simulation stopped advancing.
func (s *SimulationSystem) Finished() bool {
	return s.finished
}
