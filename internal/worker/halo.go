package worker

import (
	"context"
	"fmt"
	"math"

	"github.com/partsim/partsim/internal/geom"
	"github.com/partsim/partsim/internal/particle"
	"github.com/partsim/partsim/internal/quadtree"
)

// haloTag is the single tag every halo-exchange send/receive shares within
// one iteration; matching is by (sender, receiver, tag) and by posting
// order, since each worker posts at most one send and one receive per
// neighbor per iteration.
const haloTag = 1

// AdvertiseBounds is Stage A: every worker packs its local bounds and
// participates in an all-to-all that leaves every worker with the full
// per-worker bounds array.
func AdvertiseBounds(ctx context.Context, wc *Context, local geom.Bounds) ([]geom.Bounds, error) {
	raw, err := wc.Handle.AllToAll(ctx, encodeBounds(local))
	if err != nil {
		return nil, fmt.Errorf("worker %d: advertise bounds: %w", wc.PID(), err)
	}
	all := make([]geom.Bounds, len(raw))
	for i, b := range raw {
		all[i] = decodeBounds(b)
	}
	return all, nil
}

// SelectNeighbors is Stage B: pid selects every other worker j whose
// advertised bounds are within radius of pid's own bounds. A particle in j
// can influence a particle in pid only if their containing boxes are
// within radius of each other.
func SelectNeighbors(pid int, allBounds []geom.Bounds, radius float32) []int {
	var neighbors []int
	for j, b := range allBounds {
		if j == pid {
			continue
		}
		if geom.RectDistance(b, allBounds[pid]) <= radius {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// ExchangeHalos is Stage C: for every neighbor, post an asynchronous send
// of localBytes and an asynchronous receive sized from sizesBytes[j] (a
// byte count, not a particle count — it must not be multiplied by the
// record size again), then wait for every transfer to complete. It returns
// local's particles concatenated with every neighbor's.
func ExchangeHalos(wc *Context, local []particle.Particle, neighbors []int, sizesBytes []int) ([]particle.Particle, error) {
	localBytes := particle.EncodeSlice(local)

	sends := make([]*sendResult, len(neighbors))
	recvs := make([]*recvResult, len(neighbors))
	for i, j := range neighbors {
		sends[i] = &sendResult{j: j, handle: wc.Handle.ISend(j, haloTag, localBytes)}
		recvs[i] = &recvResult{j: j, handle: wc.Handle.IRecv(j, haloTag, sizesBytes[j])}
	}

	out := make([]particle.Particle, len(local))
	copy(out, local)

	for _, s := range sends {
		if err := s.handle.Wait(); err != nil {
			return nil, fmt.Errorf("worker %d: send to %d: %w", wc.PID(), s.j, err)
		}
	}
	for _, r := range recvs {
		payload, err := r.handle.Wait()
		if err != nil {
			return nil, fmt.Errorf("worker %d: recv from %d: %w", wc.PID(), r.j, err)
		}
		decoded, err := particle.DecodeSlice(payload)
		if err != nil {
			return nil, fmt.Errorf("worker %d: decoding halo from %d: %w", wc.PID(), r.j, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

type sendResult struct {
	j      int
	handle interface{ Wait() error }
}

type recvResult struct {
	j      int
	handle interface{ Wait() ([]byte, error) }
}

// StepLocal is Stage D: build a quadtree over neighbors, radius-query it
// for every owned particle, sum Force over the hits, and integrate. It
// returns the new local particles; bounds must be recomputed by the caller
// from the result (LocalBounds), since a worker that ends this step owning
// zero particles has no meaningful bounds of its own.
func StepLocal(wc *Context, local, neighbors []particle.Particle) []particle.Particle {
	nb := boundsOf(neighbors)
	tree := quadtree.Build(neighbors, nb.Min, nb.Max)

	out := make([]particle.Particle, len(local))
	var buf []particle.Particle
	for i, p := range local {
		buf = tree.Query(p.Position, wc.Cfg.CullRadius, buf)
		var force geom.Vec2
		for _, hit := range buf {
			force = force.Add(wc.Force(p, hit, wc.Cfg.CullRadius))
		}
		out[i] = wc.Integrate(p, force, wc.Cfg.DeltaTime)
	}
	return out
}

// boundsOf returns the tight bounding box of particles, or a degenerate
// [+Inf,-Inf] box if particles is empty. The degenerate box is a Union
// identity (min/max leave any other box unchanged) and an infinite
// RectDistance from every other box, so a worker that currently owns no
// particles is correctly excluded from every neighbor set without special
// casing the halo exchange or redistribution's bounds union.
func boundsOf(particles []particle.Particle) geom.Bounds {
	if len(particles) == 0 {
		inf := float32(math.Inf(1))
		return geom.Bounds{
			Min: geom.Vec2{X: inf, Y: inf},
			Max: geom.Vec2{X: -inf, Y: -inf},
		}
	}
	return LocalBounds(particles)
}
