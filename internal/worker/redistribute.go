package worker

import (
	"context"
	"fmt"

	"github.com/partsim/partsim/internal/geom"
	"github.com/partsim/partsim/internal/particle"
	"github.com/partsim/partsim/internal/partition"
)

// Redistribute reassigns ownership of every particle to the worker whose
// grid cell currently contains it. On the first call (first == true)
// state.Particles is already the full population (loaded directly from
// file) and global bounds are computed from it directly; on every later
// call state.Local is gathered into state.Particles first using the
// sizes/displs from the previous redistribution.
func Redistribute(ctx context.Context, wc *Context, state *State, first bool) error {
	localBounds := boundsOf(state.Local)
	allBounds, err := AdvertiseBounds(ctx, wc, localBounds)
	if err != nil {
		return err
	}

	if !first {
		gathered, err := wc.Handle.AllGather(ctx, particle.EncodeSlice(state.Local), state.SizesBytes)
		if err != nil {
			return fmt.Errorf("worker %d: redistribute allgather: %w", wc.PID(), err)
		}
		particles, err := particle.DecodeSlice(gathered)
		if err != nil {
			return fmt.Errorf("worker %d: decoding gathered particles: %w", wc.PID(), err)
		}
		state.Particles = particles
	}

	globalMin, globalMax := globalBoundsFrom(state.Particles, allBounds, first)

	var newLocal []particle.Particle
	dim := wc.Cfg.Dim
	for _, p := range state.Particles {
		owner := partition.Owner(p.Position, globalMin, globalMax, dim)
		if owner < 0 || owner >= wc.Cfg.WorkerCount {
			return &AssertionError{Msg: fmt.Sprintf("worker %d: owner(%v) = %d out of range [0, %d)", wc.PID(), p.Position, owner, wc.Cfg.WorkerCount)}
		}
		if owner == wc.PID() {
			newLocal = append(newLocal, p)
		}
	}
	state.Local = newLocal

	mySize := len(newLocal) * particle.RecordSize
	rawSizes, err := wc.Handle.AllToAll(ctx, encodeSize(mySize))
	if err != nil {
		return fmt.Errorf("worker %d: redistribute size announce: %w", wc.PID(), err)
	}
	sizes := make([]int, len(rawSizes))
	total := 0
	for i, b := range rawSizes {
		sizes[i] = decodeSize(b)
		total += sizes[i]
	}
	if total != len(state.Particles)*particle.RecordSize {
		return &AssertionError{Msg: fmt.Sprintf("worker %d: redistribute size-sum mismatch: got %d, want %d", wc.PID(), total, len(state.Particles)*particle.RecordSize)}
	}
	state.SizesBytes = sizes
	state.Displs = Prefix(sizes)

	if len(newLocal) > 0 {
		b := LocalBounds(newLocal)
		state.BMin, state.BMax = b.Min, b.Max
	}

	return nil
}

// globalBoundsFrom computes the global bounding box either from the
// already-gathered full population (first redistribution, where no
// all-to-all of bounds has meaning yet because every worker still holds the
// entire file) or from the element-wise min/max of every worker's
// advertised local bounds (every subsequent redistribution).
func globalBoundsFrom(particles []particle.Particle, allBounds []geom.Bounds, first bool) (geom.Vec2, geom.Vec2) {
	if first {
		b := boundsOf(particles)
		return b.Min, b.Max
	}
	b := allBounds[0]
	for _, ab := range allBounds[1:] {
		b = b.Union(ab)
	}
	return b.Min, b.Max
}

// AssertionError marks an invariant violation (size-sum mismatch,
// out-of-range owner index) as distinct from an ordinary transport or I/O
// error, so callers can log a distinguishable diagnostic before aborting.
// It still causes a plain non-zero exit like any other error — there is no
// local recovery.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Msg
}
