// Package kernel provides the force and integrator functions the
// simulation engine treats as opaque collaborators. computeForce and
// updateParticle are pure functions supplied to the driver; this package's
// implementations are the defaults used when no caller-supplied kernel is
// configured.
package kernel

import (
	"github.com/partsim/partsim/internal/geom"
	"github.com/partsim/partsim/internal/particle"
)

// Force computes the force particle b exerts on particle a. Implementations
// must return the zero vector for a self-pair (a.ID == b.ID); Cutoff at
// cullRadius is the implementation's responsibility, not the caller's.
type Force func(a, b particle.Particle, cullRadius float32) geom.Vec2

// Integrate advances a particle's velocity and position by one time step
// given the accumulated force acting on it.
type Integrate func(p particle.Particle, force geom.Vec2, dt float32) particle.Particle

// gravitationalConstant and softening keep DefaultForce well-behaved at
// short range; softening avoids the singularity at d == 0 for coincident
// particles (see the degenerate-clustering scenario).
const (
	gravitationalConstant = 1.0
	softening              = 1e-4
)

// DefaultForce is the reference short-range force: inverse-square
// attraction of magnitude G*ma*mb/(d^2+softening), directed from a toward
// b, zero beyond cullRadius and zero on a self-pair. Self-pairs are
// resolved by id equality rather than by relying on distance being exactly
// zero.
func DefaultForce(a, b particle.Particle, cullRadius float32) geom.Vec2 {
	if a.ID == b.ID {
		return geom.Vec2{}
	}
	delta := b.Position.Sub(a.Position)
	d := delta.Length()
	if d >= cullRadius {
		return geom.Vec2{}
	}
	d2 := delta.Dot(delta)
	magnitude := gravitationalConstant * a.Mass * b.Mass / (d2 + softening)
	if d == 0 {
		return geom.Vec2{}
	}
	return delta.Scale(magnitude / d)
}

// DefaultIntegrate performs semi-implicit (symplectic) Euler integration:
// velocity is updated from the force first, then position is updated from
// the new velocity.
func DefaultIntegrate(p particle.Particle, force geom.Vec2, dt float32) particle.Particle {
	accel := force.Scale(1 / p.Mass)
	newVel := p.Velocity.Add(accel.Scale(dt))
	newPos := p.Position.Add(newVel.Scale(dt))
	return particle.Particle{
		ID:       p.ID,
		Mass:     p.Mass,
		Position: newPos,
		Velocity: newVel,
	}
}

// Zero is a Force implementation that always returns the zero vector,
// useful for the single-worker identity scenario where the driver must
// exercise the full pipeline without perturbing particle state.
func Zero(_, _ particle.Particle, _ float32) geom.Vec2 {
	return geom.Vec2{}
}
