package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/partsim/partsim/internal/config"
	"github.com/partsim/partsim/internal/fileio"
	"github.com/partsim/partsim/internal/kernel"
	"github.com/partsim/partsim/internal/particle"
	"github.com/partsim/partsim/internal/partition"
	"github.com/partsim/partsim/internal/transport"
	"github.com/partsim/partsim/internal/worker"
)

var (
	inputPath  string
	outputPath string
	iterations int
	spaceSize  float64
	workers    int
	logLevel   string
)

// RootCmd is the base command for the partsim CLI. main.go is responsible
// for calling Execute and converting a returned error into a process exit
// code.
var RootCmd = &cobra.Command{
	Use:   "partsim",
	Short: "Distributed short-range particle simulation engine",
	RunE:  runSimulation,
}

func init() {
	RootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input particle file (required)")
	RootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output particle file (required)")
	RootCmd.Flags().IntVarP(&iterations, "iterations", "n", -1, "Number of iterations to run (required, >= 0)")
	RootCmd.Flags().Float64VarP(&spaceSize, "space-size", "s", -1, "Space size, selects benchmark step parameters (required)")
	RootCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of workers (must be a perfect square)")
	RootCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	_ = RootCmd.MarkFlagRequired("input")
	_ = RootCmd.MarkFlagRequired("output")
	_ = RootCmd.MarkFlagRequired("iterations")
	_ = RootCmd.MarkFlagRequired("space-size")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log := logrus.New()
	log.SetLevel(level)

	if iterations < 0 {
		return fmt.Errorf("iterations must be >= 0, got %d", iterations)
	}
	if !partition.IsPerfectSquare(workers) {
		return fmt.Errorf("worker count %d is not a perfect square", workers)
	}

	stepParams, err := config.ResolveStepParams(float32(spaceSize))
	if err != nil {
		return fmt.Errorf("resolving step parameters: %w", err)
	}

	particles, idToIndex, err := fileio.Load(inputPath)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"particles":   len(particles),
		"workers":     workers,
		"iterations":  iterations,
		"cull_radius": stepParams.CullRadius,
		"delta_time":  stepParams.DeltaTime,
	}).Info("starting simulation")

	cfg := config.ClusterConfig{
		WorkerCount:        workers,
		Dim:                partition.Dim(workers),
		CullRadius:         stepParams.CullRadius,
		DeltaTime:          stepParams.DeltaTime,
		RebuildGranularity: config.RebuildGranularity,
		IterationCount:     iterations,
	}

	result, err := runCluster(cfg, log, particles, idToIndex)
	if err != nil {
		return err
	}

	ordered, err := fileio.Reorder(result, idToIndex)
	if err != nil {
		return fmt.Errorf("restoring output order: %w", err)
	}
	if err := fileio.Save(outputPath, ordered); err != nil {
		return err
	}

	log.Info("simulation complete")
	return nil
}

// runCluster runs the full distributed simulation over cfg.WorkerCount
// worker goroutines and returns worker 0's final gathered population. Every
// worker aborts the whole run on its first error, matching the "no local
// recovery" error handling policy: a partial result is worse than a clean
// abort.
func runCluster(cfg config.ClusterConfig, log *logrus.Logger, particles []particle.Particle, idToIndex map[int32]int) ([]particle.Particle, error) {
	cluster := transport.NewCluster(cfg.WorkerCount)

	// A shared, cancelable context: if any worker returns an error, canceling
	// it unblocks every other worker waiting inside a collective (Advertise
	// Bounds, AllGather, Barrier), which would otherwise wait forever for a
	// contribution that will never arrive.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make([][]particle.Particle, cfg.WorkerCount)
	errs := make([]error, cfg.WorkerCount)
	var wg sync.WaitGroup
	for pid := 0; pid < cfg.WorkerCount; pid++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			wc := worker.NewContext(cluster.Handle(pid), cfg, log, kernel.DefaultForce, kernel.DefaultIntegrate)
			state := &worker.State{
				Particles: append([]particle.Particle(nil), particles...),
				IDToIndex: idToIndex,
			}
			if err := worker.RunIterations(ctx, wc, state); err != nil {
				errs[pid] = fmt.Errorf("worker %d: %w", pid, err)
				cancel()
				return
			}
			gathered, err := worker.FinalGather(ctx, wc, state)
			if err != nil {
				errs[pid] = fmt.Errorf("worker %d: %w", pid, err)
				cancel()
				return
			}
			results[pid] = gathered
		}(pid)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results[0], nil
}
