// pkg/engine/controller.go
package engine

import (
	"math"

	"github.com/opd-ai/go-bumpmap/pkg/agent"
	"github.com/opd-ai/go-bumpmap/pkg/config"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// Outcome is the result of probing one swept region against ground truth.
type Outcome int

const (
	NoCollision Outcome = iota
	Collision
)

func (o Outcome) String() string {
	if o == Collision {
		return "collision"
	}
	return "no_collision"
}

// Params are the tunable amounts used by the controller. Turn bounds are in
// radians.
type Params struct {
	Increment       float64
	Decrement       float64
	RetreatDistance float64
	TurnMin         float64
	TurnMax         float64
}

// DefaultParams returns the multi-agent defaults: 0.02 belief steps, a 45
// unit retreat and a turn drawn from [3π/4, 5π/4).
func DefaultParams() Params {
	return Params{
		Increment:       0.02,
		Decrement:       0.02,
		RetreatDistance: 45,
		TurnMin:         3 * math.Pi / 4,
		TurnMax:         5 * math.Pi / 4,
	}
}

// ParamsFromConfig converts the belief and recovery sections of cfg.
func ParamsFromConfig(cfg *config.SimConfig) Params {
	return Params{
		Increment:       cfg.Belief.Increment,
		Decrement:       cfg.Belief.Decrement,
		RetreatDistance: cfg.Recovery.RetreatDistance,
		TurnMin:         cfg.Recovery.TurnMinDeg * math.Pi / 180,
		TurnMax:         cfg.Recovery.TurnMaxDeg * math.Pi / 180,
	}
}

// StepResult describes what happened to one agent during one tick.
type StepResult struct {
	Outcome      Outcome
	Score        float64         // obstacle cells under the region
	Region       physics.Polygon // swept region of the leading edge
	RetreatSteps int             // advances taken while backing off
	Turn         float64         // radians applied during recovery
}

// Controller moves agents, probes ground truth with the area their leading
// edge swept, updates belief, and runs the recovery maneuver on contact.
type Controller struct {
	Truth   *field.GroundTruth
	Belief  *field.Belief
	Sampler AngleSampler
	Params  Params
}

// NewController creates a controller over the given fields.
func NewController(truth *field.GroundTruth, belief *field.Belief, sampler AngleSampler, params Params) *Controller {
	return &Controller{
		Truth:   truth,
		Belief:  belief,
		Sampler: sampler,
		Params:  params,
	}
}

// Sweep advances a by one step and returns the quadrilateral traced by its
// front corners.
func (c *Controller) Sweep(a *agent.Agent) physics.Polygon {
	before := a.Box().FrontCorners()
	a.Advance()
	after := a.Box().FrontCorners()
	return physics.SweptRegion(before, after)
}

// Step sweeps a, scores the region against ground truth and applies exactly
// one belief update: an increase on contact, a decrease otherwise. It does
// not run the recovery maneuver.
func (c *Controller) Step(a *agent.Agent) StepResult {
	region := c.Sweep(a)
	score := c.Truth.OverlapScore(region)
	if score > 0 {
		c.Belief.Increase(region, c.Params.Increment)
		return StepResult{Outcome: Collision, Score: score, Region: region}
	}
	c.Belief.Decrease(region, c.Params.Decrement)
	return StepResult{Outcome: NoCollision, Score: score, Region: region}
}

// Recover backs a off an obstacle and turns it around: reverse, retreat
// RetreatDistance at the current speed magnitude, rotate by a sampled
// angle, then reverse again so the agent drives forward on its new heading.
func (c *Controller) Recover(a *agent.Agent) (steps int, turn float64) {
	a.ReverseSpeed()
	steps = a.StepsToCover(c.Params.RetreatDistance)
	for i := 0; i < steps; i++ {
		a.Advance()
	}
	turn = c.Sampler.Sample(c.Params.TurnMin, c.Params.TurnMax)
	a.Rotate(turn)
	a.ReverseSpeed()
	return steps, turn
}

// Tick runs one full controller invocation for a: Step, then Recover when
// the step collided.
func (c *Controller) Tick(a *agent.Agent) StepResult {
	res := c.Step(a)
	if res.Outcome == Collision {
		res.RetreatSteps, res.Turn = c.Recover(a)
	}
	return res
}
