package worker

import (
	"github.com/partsim/partsim/internal/geom"
	"github.com/partsim/partsim/internal/particle"
)

// State is the per-worker mutable state that evolves across iterations:
// the full population mirror, the particles currently owned locally, their
// bounding box, and the per-worker size/displacement bookkeeping that
// redistribution and gather use to move particles between owners.
type State struct {
	// Particles mirrors the full population; it is the rendezvous buffer
	// for redistribution and the final gather. Its length is constant
	// across the whole run.
	Particles []particle.Particle

	// Local holds the particles currently owned by this worker.
	Local []particle.Particle

	BMin, BMax geom.Vec2

	// SizesBytes and Displs describe how Particles is partitioned by
	// owner, valid only between a full redistribution and the next.
	SizesBytes []int
	Displs     []int

	// IDToIndex maps particle ID to its original load-time index, built
	// once at startup and used only for final output reordering.
	IDToIndex map[int32]int
}

// LocalBounds recomputes bounds tightly enclosing particles. The caller
// must not call this with an empty slice. Redistribute and the iteration
// step leave State.BMin/BMax unchanged when the worker owns zero particles;
// the bounds a worker advertises come from boundsOf, which returns a
// degenerate box for an empty set.
func LocalBounds(particles []particle.Particle) geom.Bounds {
	b := geom.Bounds{Min: particles[0].Position, Max: particles[0].Position}
	for _, p := range particles[1:] {
		b = b.Expand(p.Position)
	}
	return b
}

// Prefix computes the exclusive prefix sum of sizes, i.e. displacements.
func Prefix(sizes []int) []int {
	displs := make([]int, len(sizes))
	sum := 0
	for i, s := range sizes {
		displs[i] = sum
		sum += s
	}
	return displs
}
