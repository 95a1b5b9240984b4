// pkg/engine/sampler.go
package engine

import "math/rand/v2"

// AngleSampler supplies the reorientation angle after a collision.
type AngleSampler interface {
	// Sample returns a uniform value in [lo, hi)
	Sample(lo, hi float64) float64
}

// UniformSampler draws from a PCG generator. It also satisfies agent.Source
// so the same stream seeds the initial headings.
type UniformSampler struct {
	rng  *rand.Rand
	seed uint64
}

// NewUniformSampler creates a sampler. A zero seed picks a random one.
func NewUniformSampler(seed uint64) *UniformSampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &UniformSampler{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Seed returns the seed actually in use, so a run can be replayed.
func (s *UniformSampler) Seed() uint64 {
	return s.seed
}

// Sample implements AngleSampler.
func (s *UniformSampler) Sample(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

// Float64 returns a uniform value in [0, 1).
func (s *UniformSampler) Float64() float64 {
	return s.rng.Float64()
}
