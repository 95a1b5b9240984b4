package config

import (
	"fmt"
	"time"
)

// ValidationError reports a configuration field holding an unusable value
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// Validate checks the configuration and returns a *ValidationError for the
// first bad field it finds.
func (c *SimConfig) Validate() error {
	checks := []func() error{
		c.validateArena,
		c.validateAgents,
		c.validateBelief,
		c.validateRecovery,
		c.validateRun,
		c.validateCheckpoint,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *SimConfig) validateArena() error {
	a := c.Arena
	if a.Width <= 0 || a.Width > 16384 {
		return &ValidationError{"Arena.Width", a.Width, "must be between 1 and 16384"}
	}
	if a.Height <= 0 || a.Height > 16384 {
		return &ValidationError{"Arena.Height", a.Height, "must be between 1 and 16384"}
	}
	if a.BorderMargin < 0 || 2*a.BorderMargin > float64(min(a.Width, a.Height)) {
		return &ValidationError{"Arena.BorderMargin", a.BorderMargin, "must be non-negative and leave free space"}
	}
	for i, circle := range a.Circles {
		if circle.Radius <= 0 {
			return &ValidationError{fmt.Sprintf("Arena.Circles[%d].Radius", i), circle.Radius, "must be positive"}
		}
	}
	for i, rect := range a.Rects {
		if rect.Width <= 0 || rect.Height <= 0 {
			return &ValidationError{fmt.Sprintf("Arena.Rects[%d]", i), rect, "must have positive extent"}
		}
	}
	return nil
}

func (c *SimConfig) validateAgents() error {
	a := c.Agents
	if a.Count < 0 {
		return &ValidationError{"Agents.Count", a.Count, "must not be negative"}
	}
	if a.HalfWidth <= 0 {
		return &ValidationError{"Agents.HalfWidth", a.HalfWidth, "must be positive"}
	}
	if a.HalfHeight <= 0 {
		return &ValidationError{"Agents.HalfHeight", a.HalfHeight, "must be positive"}
	}
	if a.Jitter < 0 {
		return &ValidationError{"Agents.Jitter", a.Jitter, "must not be negative"}
	}
	return nil
}

func (c *SimConfig) validateBelief() error {
	b := c.Belief
	if b.Prior < 0 || b.Prior > 1 {
		return &ValidationError{"Belief.Prior", b.Prior, "must lie in [0, 1]"}
	}
	if b.Increment < 0 || b.Increment > 1 {
		return &ValidationError{"Belief.Increment", b.Increment, "must lie in [0, 1]"}
	}
	if b.Decrement < 0 || b.Decrement > 1 {
		return &ValidationError{"Belief.Decrement", b.Decrement, "must lie in [0, 1]"}
	}
	return nil
}

func (c *SimConfig) validateRecovery() error {
	r := c.Recovery
	if r.RetreatDistance < 0 {
		return &ValidationError{"Recovery.RetreatDistance", r.RetreatDistance, "must not be negative"}
	}
	if r.TurnMinDeg > r.TurnMaxDeg {
		return &ValidationError{"Recovery.TurnMinDeg", r.TurnMinDeg, "must not exceed TurnMaxDeg"}
	}
	return nil
}

func (c *SimConfig) validateRun() error {
	if c.Run.Ticks < 0 {
		return &ValidationError{"Run.Ticks", c.Run.Ticks, "must not be negative"}
	}
	if c.Run.TickInterval.Duration < 0 {
		return &ValidationError{"Run.TickInterval", c.Run.TickInterval, "must not be negative"}
	}
	if c.Run.Layout != "" && GetLayoutTemplate(c.Run.Layout) == nil {
		return &ValidationError{"Run.Layout", c.Run.Layout, "unknown layout template"}
	}
	return nil
}

func (c *SimConfig) validateCheckpoint() error {
	cp := c.Checkpoint
	if cp.Path == "" {
		return nil
	}
	if cp.Every <= 0 {
		return &ValidationError{"Checkpoint.Every", cp.Every, "must be positive when checkpointing"}
	}
	if cp.BreakerMaxRequests < 1 {
		return &ValidationError{"Checkpoint.BreakerMaxRequests", cp.BreakerMaxRequests, "must be at least 1"}
	}
	if cp.BreakerInterval.Duration < time.Second {
		return &ValidationError{"Checkpoint.BreakerInterval", cp.BreakerInterval, "must be at least 1s"}
	}
	if cp.BreakerTimeout.Duration < time.Second {
		return &ValidationError{"Checkpoint.BreakerTimeout", cp.BreakerTimeout, "must be at least 1s"}
	}
	if cp.BreakerMaxConsecutiveFails < 1 {
		return &ValidationError{"Checkpoint.BreakerMaxConsecutiveFails", cp.BreakerMaxConsecutiveFails, "must be at least 1"}
	}
	return nil
}
