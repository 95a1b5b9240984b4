// pkg/agent/agent.go
package agent

import (
	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

// ID is a unique identifier for an agent
type ID uint64

// Agent is a body moving through the arena. It holds no reference to any
// field; the controller passes regions to fields on its behalf.
type Agent struct {
	ID ID
	physics.Kinematics
}

// New creates an agent at pos with the given heading, signed speed and
// half-extents.
func New(id ID, pos physics.Vector2D, heading, speed, halfWidth, halfHeight float64) *Agent {
	return &Agent{
		ID: id,
		Kinematics: physics.Kinematics{
			Position:   pos,
			Heading:    physics.NormalizeAngle(heading),
			Speed:      speed,
			HalfWidth:  halfWidth,
			HalfHeight: halfHeight,
		},
	}
}

// GetID returns the agent's identifier
func (a *Agent) GetID() ID {
	return a.ID
}

// GetPosition returns the agent's position
func (a *Agent) GetPosition() physics.Vector2D {
	return a.Position
}

// Clone returns an independent copy of the agent.
func (a *Agent) Clone() *Agent {
	c := *a
	return &c
}
