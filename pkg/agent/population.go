// pkg/agent/population.go
package agent

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// ErrInvalidBody is returned for non-positive half-extents.
var ErrInvalidBody = errors.New("agent half-extents must be positive")

// Spec describes how to spawn a population.
type Spec struct {
	Count      int
	Origin     physics.Vector2D
	Jitter     float64 // maximum offset from Origin along each axis
	Speed      float64
	HalfWidth  float64
	HalfHeight float64
}

// Source supplies the random values used while spawning.
type Source interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64
}

// Population is the fixed set of agents, ordered by ID.
type Population []*Agent

// Spawn creates spec.Count agents with IDs 1..Count, random headings in
// [0, 2π) and positions jittered uniformly around the origin.
func Spawn(spec Spec, src Source) (Population, error) {
	if spec.Count < 0 {
		return nil, fmt.Errorf("population size must not be negative, got %d", spec.Count)
	}
	if spec.HalfWidth <= 0 || spec.HalfHeight <= 0 {
		return nil, fmt.Errorf("%w: got %vx%v", ErrInvalidBody, spec.HalfWidth, spec.HalfHeight)
	}

	pop := make(Population, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		pos := spec.Origin
		if spec.Jitter > 0 {
			pos.X += (2*src.Float64() - 1) * spec.Jitter
			pos.Y += (2*src.Float64() - 1) * spec.Jitter
		}
		heading := src.Float64() * 2 * math.Pi
		pop = append(pop, New(ID(i+1), pos, heading, spec.Speed, spec.HalfWidth, spec.HalfHeight))
	}
	return pop, nil
}

// Find returns the agent with the given ID.
func (p Population) Find(id ID) (*Agent, bool) {
	for _, a := range p {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Boxes returns the current outline of every agent.
func (p Population) Boxes() []physics.OrientedBox {
	out := make([]physics.OrientedBox, len(p))
	for i, a := range p {
		out[i] = a.Box()
	}
	return out
}
