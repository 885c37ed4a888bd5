// Package config resolves CLI-selected benchmark step parameters from the
// embedded benchmark table, and holds the immutable per-run cluster
// configuration threaded explicitly through the worker code instead of
// being read from package-level globals.
package config

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed benchmarks.yaml
var benchmarksYAML []byte

// StepParams are the cutoff radius and integration time step derived from a
// requested benchmark space size.
type StepParams struct {
	CullRadius float32 `yaml:"cull_radius"`
	DeltaTime  float32 `yaml:"delta_time"`
}

type benchmarkEntry struct {
	Size       float32 `yaml:"size"`
	StepParams `yaml:",inline"`
}

type benchmarkTable struct {
	Benchmarks []benchmarkEntry `yaml:"benchmarks"`
}

// ResolveStepParams selects the StepParams for the benchmark entry whose
// size is the closest value >= spaceSize (nearest-rank selection), falling
// back to the largest entry if spaceSize exceeds every preset. It returns
// an error if the embedded benchmark table is missing or malformed, which
// is a startup configuration error per the error taxonomy.
func ResolveStepParams(spaceSize float32) (StepParams, error) {
	var table benchmarkTable
	if err := yaml.Unmarshal(benchmarksYAML, &table); err != nil {
		return StepParams{}, fmt.Errorf("config: parsing embedded benchmark table: %w", err)
	}
	if len(table.Benchmarks) == 0 {
		return StepParams{}, fmt.Errorf("config: embedded benchmark table is empty")
	}

	entries := table.Benchmarks
	sort.Slice(entries, func(i, j int) bool { return entries[i].Size < entries[j].Size })

	for _, e := range entries {
		if spaceSize <= e.Size {
			return e.StepParams, nil
		}
	}
	return entries[len(entries)-1].StepParams, nil
}

// ClusterConfig is the immutable configuration every worker function is
// given explicitly, created once at startup from CLI flags and the
// resolved StepParams.
type ClusterConfig struct {
	WorkerCount        int
	Dim                int
	CullRadius         float32
	DeltaTime          float32
	RebuildGranularity int
	IterationCount     int
}

// RebuildGranularity is the fixed iteration interval between successive
// redistributions.
const RebuildGranularity = 8
