package worker

import (
	"context"
	"fmt"

	"github.com/partsim/partsim/internal/particle"
)

// RunIterations first assigns every particle to its owning worker (this
// must happen even for a zero-iteration run, since it is what turns the
// full population handed to every worker at startup into the final
// gather's per-worker contributions), then drives state through
// Cfg.IterationCount iterations, composing periodic redistribution with
// per-iteration halo exchange and local compute, bracketing each
// iteration with a barrier.
func RunIterations(ctx context.Context, wc *Context, state *State) error {
	if err := Redistribute(ctx, wc, state, true); err != nil {
		return fmt.Errorf("initial redistribute: %w", err)
	}

	granularity := wc.Cfg.RebuildGranularity
	if granularity <= 0 {
		granularity = 1
	}

	for i := 0; i < wc.Cfg.IterationCount; i++ {
		if i > 0 && i%granularity == 0 {
			if err := Redistribute(ctx, wc, state, false); err != nil {
				return fmt.Errorf("iteration %d: redistribute: %w", i, err)
			}
		}

		if err := runOneIteration(ctx, wc, state); err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}

		wc.Log.WithField("iteration", i).WithField("local", len(state.Local)).Debug("iteration complete")

		if err := wc.Handle.Barrier(ctx); err != nil {
			return fmt.Errorf("iteration %d: barrier: %w", i, err)
		}
	}
	return nil
}

func runOneIteration(ctx context.Context, wc *Context, state *State) error {
	localBounds := boundsOf(state.Local)
	allBounds, err := AdvertiseBounds(ctx, wc, localBounds)
	if err != nil {
		return fmt.Errorf("halo advertise bounds: %w", err)
	}

	neighbors := SelectNeighbors(wc.PID(), allBounds, wc.Cfg.CullRadius)

	neighborParticles, err := ExchangeHalos(wc, state.Local, neighbors, state.SizesBytes)
	if err != nil {
		return fmt.Errorf("halo exchange: %w", err)
	}

	newLocal := StepLocal(wc, state.Local, neighborParticles)
	state.Local = newLocal
	if len(newLocal) > 0 {
		b := LocalBounds(newLocal)
		state.BMin, state.BMax = b.Min, b.Max
	}
	return nil
}

// FinalGather reconstructs the full population from every worker's current
// local particles. The caller (the coordinator, pid 0) is responsible for
// reordering the result by IDToIndex before writing output.
func FinalGather(ctx context.Context, wc *Context, state *State) ([]particle.Particle, error) {
	gathered, err := wc.Handle.AllGather(ctx, particle.EncodeSlice(state.Local), state.SizesBytes)
	if err != nil {
		return nil, fmt.Errorf("worker %d: final gather: %w", wc.PID(), err)
	}
	return particle.DecodeSlice(gathered)
}
