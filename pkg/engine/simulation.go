// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/go-bumpmap/pkg/agent"
	"github.com/opd-ai/go-bumpmap/pkg/config"
	"github.com/opd-ai/go-bumpmap/pkg/event"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
	"github.com/opd-ai/go-bumpmap/pkg/physics"
	"github.com/opd-ai/go-bumpmap/pkg/render"
)

// ErrAlreadyRunning is returned when Run is called on a running simulation.
var ErrAlreadyRunning = errors.New("simulation already running")

// ErrNoCheckpointer is returned by Checkpoint when none was configured.
var ErrNoCheckpointer = errors.New("no checkpointer configured")

// ErrGridSize is returned by Restore when a checkpoint's dimensions differ
// from the arena.
var ErrGridSize = errors.New("checkpoint grid size does not match arena")

// Checkpointer persists belief snapshots. The grid is a private copy taken
// after the tick completed; the simulation keeps stepping while it is saved.
type Checkpointer interface {
	Checkpoint(ctx context.Context, runID string, tick uint64, belief *field.Field) (int64, error)
}

// TickStats summarizes one tick.
type TickStats struct {
	Tick       uint64
	Collisions int
	MeanBelief float64
}

// Snapshot is a read-only copy of the simulation state.
type Snapshot struct {
	RunID           string
	Tick            uint64
	Running         bool
	TotalCollisions uint64
	Agents          []physics.OrientedBox
	Belief          *field.Field
}

// Simulation owns the fields and the agent population and steps them one
// tick at a time. Agents are stepped sequentially in ID order so belief
// writes by one agent are visible to the agents after it.
type Simulation struct {
	Config     *config.SimConfig
	Truth      *field.GroundTruth
	Belief     *field.Belief
	Agents     agent.Population
	Controller *Controller
	EventBus   *event.Bus

	mu              sync.RWMutex
	runID           string
	logger          *logging.Logger
	renderer        render.Renderer
	checkpointer    Checkpointer
	checkpointEvery int
	sampler         AngleSampler
	running         bool
	currentTick     uint64
	totalCollisions uint64
	lastUpdate      time.Time
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Simulation) { s.logger = logger }
}

// WithEventBus shares an existing bus instead of creating one.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Simulation) { s.EventBus = bus }
}

// WithRenderer draws a frame after every tick of Run.
func WithRenderer(r render.Renderer) Option {
	return func(s *Simulation) { s.renderer = r }
}

// WithCheckpointer saves belief every n ticks and once more on Stop.
func WithCheckpointer(cp Checkpointer, every int) Option {
	return func(s *Simulation) {
		s.checkpointer = cp
		s.checkpointEvery = every
	}
}

// WithSampler replaces the seeded uniform sampler. When the sampler also
// implements agent.Source it seeds the initial headings too.
func WithSampler(sampler AngleSampler) Option {
	return func(s *Simulation) { s.sampler = sampler }
}

// WithRunID fixes the run identifier, for resuming from a checkpoint.
func WithRunID(id string) Option {
	return func(s *Simulation) { s.runID = id }
}

// NewSimulation builds the ground truth from the configured arena, a belief
// field at the configured prior, and the agent population.
func NewSimulation(cfg *config.SimConfig, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, logging.WrapError(err, "invalid simulation config")
	}

	s := &Simulation{Config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.EventBus == nil {
		s.EventBus = event.NewEventBus()
	}
	if s.runID == "" {
		s.runID = logging.NewRunID()
	}
	if s.sampler == nil {
		s.sampler = NewUniformSampler(cfg.Run.Seed)
	}

	truth, err := field.NewGroundTruth(cfg.Arena.Width, cfg.Arena.Height, BuildShapes(cfg.Arena)...)
	if err != nil {
		return nil, logging.WrapError(err, "build ground truth")
	}
	belief, err := field.NewBelief(cfg.Arena.Width, cfg.Arena.Height, cfg.Belief.Prior)
	if err != nil {
		return nil, logging.WrapError(err, "build belief")
	}

	src, ok := s.sampler.(agent.Source)
	if !ok {
		src = NewUniformSampler(cfg.Run.Seed)
	}
	agents, err := agent.Spawn(agent.Spec{
		Count:      cfg.Agents.Count,
		Origin:     physics.Vector2D{X: cfg.Agents.SpawnX, Y: cfg.Agents.SpawnY},
		Jitter:     cfg.Agents.Jitter,
		Speed:      cfg.Agents.Speed,
		HalfWidth:  cfg.Agents.HalfWidth,
		HalfHeight: cfg.Agents.HalfHeight,
	}, src)
	if err != nil {
		return nil, logging.WrapError(err, "spawn agents")
	}

	s.Truth = truth
	s.Belief = belief
	s.Agents = agents
	s.Controller = NewController(truth, belief, s.sampler, ParamsFromConfig(cfg))
	return s, nil
}

// BuildShapes converts the arena description into obstacle shapes: the
// border wall first, then circles, then rectangles.
func BuildShapes(arena config.ArenaConfig) []physics.Shape {
	shapes := make([]physics.Shape, 0, 1+len(arena.Circles)+len(arena.Rects))
	if arena.BorderMargin > 0 {
		shapes = append(shapes, physics.RectBorder{
			Outer:  physics.Rect{Width: float64(arena.Width), Height: float64(arena.Height)},
			Margin: arena.BorderMargin,
		})
	}
	for _, c := range arena.Circles {
		shapes = append(shapes, physics.Circle{
			Center: physics.Vector2D{X: c.X, Y: c.Y},
			Radius: c.Radius,
		})
	}
	for _, r := range arena.Rects {
		shapes = append(shapes, physics.Rect{
			Min:    physics.Vector2D{X: r.X, Y: r.Y},
			Width:  r.Width,
			Height: r.Height,
		})
	}
	return shapes
}

// seed reports the sampler seed when it is the built-in uniform sampler.
func (s *Simulation) seed() uint64 {
	if u, ok := s.sampler.(*UniformSampler); ok {
		return u.Seed()
	}
	return 0
}

// RunID returns the identifier attached to logs, events and checkpoints.
func (s *Simulation) RunID() string {
	return s.runID
}

// Context returns ctx tagged with the run ID for logging.
func (s *Simulation) Context(ctx context.Context) context.Context {
	return logging.WithRunID(ctx, s.runID)
}

// Step advances every agent by one tick. It only fails when ctx is already
// done; once started a tick always completes.
func (s *Simulation) Step(ctx context.Context) (TickStats, error) {
	if err := ctx.Err(); err != nil {
		return TickStats{}, err
	}

	s.mu.Lock()
	stats, collisions := s.stepLocked()
	s.mu.Unlock()

	for _, ev := range collisions {
		s.EventBus.Publish(ev)
	}
	s.EventBus.Publish(event.NewTickEvent(s, stats.Tick, stats.Collisions, stats.MeanBelief))
	return stats, nil
}

func (s *Simulation) stepLocked() (TickStats, []event.Event) {
	s.currentTick++
	tick := s.currentTick

	var collisions []event.Event
	for _, a := range s.Agents {
		res := s.Controller.Tick(a)
		if res.Outcome == Collision {
			collisions = append(collisions, event.NewCollisionEvent(s, tick, uint64(a.ID), res.Score, res.RetreatSteps, res.Turn))
		}
	}

	s.totalCollisions += uint64(len(collisions))
	s.lastUpdate = time.Now()
	return TickStats{
		Tick:       tick,
		Collisions: len(collisions),
		MeanBelief: s.Belief.Mean(),
	}, collisions
}

// Start marks the simulation as running. Run calls it; frontends that drive
// Step themselves call it before the first tick and Stop after the last.
func (s *Simulation) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info(s.Context(ctx), "simulation started",
		"agents", len(s.Agents),
		"width", s.Config.Arena.Width,
		"height", s.Config.Arena.Height,
		"ticks", s.Config.Run.Ticks,
		"seed", s.seed(),
	)
	s.EventBus.Publish(&event.BaseEvent{EventType: event.SimulationStarted, Source: s})
	return nil
}

// Stop saves a final checkpoint, when one is configured, and marks the
// simulation stopped. It does nothing if the simulation is not running.
func (s *Simulation) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	tick, total := s.currentTick, s.totalCollisions
	s.mu.Unlock()

	ctx = s.Context(ctx)
	if s.checkpointer != nil {
		s.checkpoint(context.WithoutCancel(ctx))
	}

	s.EventBus.Publish(&event.BaseEvent{EventType: event.SimulationStopped, Source: s})
	s.logger.Info(ctx, "simulation stopped", "tick", tick, "collisions", total)
}

// CheckpointIfDue saves a checkpoint when tick falls on the configured
// cadence and reports whether it tried.
func (s *Simulation) CheckpointIfDue(ctx context.Context, tick uint64) bool {
	if s.checkpointer == nil || s.checkpointEvery <= 0 || tick%uint64(s.checkpointEvery) != 0 {
		return false
	}
	s.checkpoint(s.Context(ctx))
	return true
}

// Run steps the simulation until ctx is done or ticks ticks have run; zero
// ticks runs until cancelled. A positive tick interval in the config paces
// the loop. Cancellation is not an error.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	err := s.loop(s.Context(ctx), ticks)
	s.Stop(ctx)
	return err
}

func (s *Simulation) loop(ctx context.Context, ticks int) error {
	var pace <-chan time.Time
	if interval := s.Config.Run.TickInterval.Duration; interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for n := 0; ticks == 0 || n < ticks; n++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-pace:
			}
		}

		stats, err := s.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if stats.Collisions > 0 {
			s.logger.Debug(ctx, "tick completed",
				"tick", stats.Tick,
				"collisions", stats.Collisions,
				"mean_belief", stats.MeanBelief,
			)
		}

		if s.renderer != nil {
			s.Render(s.renderer)
		}
		s.CheckpointIfDue(ctx, stats.Tick)
	}
	return nil
}

// Render draws the current frame: ground truth, belief, then every agent.
func (s *Simulation) Render(r render.Renderer) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r.Clear()
	r.RenderField(render.GroundTruthLayer, s.Truth)
	r.RenderField(render.BeliefLayer, s.Belief)
	for _, a := range s.Agents {
		r.RenderAgent(a)
	}
	r.Present()
}

// Checkpoint saves the current belief through the configured checkpointer.
func (s *Simulation) Checkpoint(ctx context.Context) (int64, error) {
	if s.checkpointer == nil {
		return 0, ErrNoCheckpointer
	}
	return s.checkpoint(s.Context(ctx))
}

func (s *Simulation) checkpoint(ctx context.Context) (int64, error) {
	s.mu.RLock()
	tick := s.currentTick
	grid := s.Belief.Snapshot()
	s.mu.RUnlock()

	id, err := s.checkpointer.Checkpoint(ctx, s.runID, tick, grid)
	if err != nil {
		s.logger.Error(ctx, "checkpoint failed", err, "tick", tick)
	} else {
		s.logger.Debug(ctx, "checkpoint saved", "tick", tick, "snapshot_id", id)
	}
	s.EventBus.Publish(event.NewCheckpointEvent(s, tick, id, err))
	return id, err
}

// Restore loads belief values and the tick counter from a width×height
// checkpoint. The size must match the arena exactly.
func (s *Simulation) Restore(tick uint64, width, height int, values []float64) error {
	if width != s.Belief.Width() || height != s.Belief.Height() {
		return fmt.Errorf("restore run %s: %w: checkpoint %dx%d, arena %dx%d",
			s.runID, ErrGridSize, width, height, s.Belief.Width(), s.Belief.Height())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Belief.Restore(values); err != nil {
		return fmt.Errorf("restore run %s: %w", s.runID, err)
	}
	s.currentTick = tick
	return nil
}

// State returns a deep copy of the current state.
func (s *Simulation) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		RunID:           s.runID,
		Tick:            s.currentTick,
		Running:         s.running,
		TotalCollisions: s.totalCollisions,
		Agents:          s.Agents.Boxes(),
		Belief:          s.Belief.Snapshot(),
	}
}

// View calls fn with the live fields under the read lock. fn must not keep
// references to either field.
func (s *Simulation) View(fn func(truth *field.GroundTruth, belief *field.Belief, agents agent.Population)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.Truth, s.Belief, s.Agents)
}

// IsRunning reports whether the simulation is between Start and Stop.
func (s *Simulation) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// CurrentTick returns the number of completed ticks.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTick
}

// LastUpdate returns when the most recent tick completed.
func (s *Simulation) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}
