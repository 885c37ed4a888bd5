// Package fileio reads and writes the binary particle file format: a
// little-endian int32 count header followed by that many fixed-size
// particle records, sharing the same codec used for inter-worker transport.
package fileio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/partsim/partsim/internal/particle"
)

// Load reads a particle file, returning the particles in file order and a
// map from particle ID to its original index in that order, built once for
// use by the final output reordering step.
func Load(path string) ([]particle.Particle, map[int32]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("fileio: reading %s: %w", path, err)
	}
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("fileio: %s is too short to contain a header", path)
	}

	count := int(int32(binary.LittleEndian.Uint32(data[0:4])))
	if count < 0 {
		return nil, nil, fmt.Errorf("fileio: %s declares a negative particle count %d", path, count)
	}

	want := 4 + count*particle.RecordSize
	if len(data) != want {
		return nil, nil, fmt.Errorf("fileio: %s has %d bytes, expected %d for %d particles", path, len(data), want, count)
	}

	particles, err := particle.DecodeSlice(data[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("fileio: decoding %s: %w", path, err)
	}

	idToIndex := make(map[int32]int, len(particles))
	for i, p := range particles {
		idToIndex[p.ID] = i
	}
	return particles, idToIndex, nil
}

// Save writes particles to path in file order, using the same little-endian
// header-plus-records layout Load expects.
func Save(path string, particles []particle.Particle) error {
	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(int32(len(particles))))
	body := particle.EncodeSlice(particles)

	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("fileio: writing %s: %w", path, err)
	}
	return nil
}

// Reorder restores particles to their original load-time order using
// idToIndex, so that output files are byte-stable with respect to input
// order regardless of how particles moved between workers during the run.
func Reorder(particles []particle.Particle, idToIndex map[int32]int) ([]particle.Particle, error) {
	out := make([]particle.Particle, len(particles))
	seen := make([]bool, len(particles))
	for _, p := range particles {
		idx, ok := idToIndex[p.ID]
		if !ok || idx < 0 || idx >= len(out) {
			return nil, fmt.Errorf("fileio: particle id %d has no known original index", p.ID)
		}
		if seen[idx] {
			return nil, fmt.Errorf("fileio: duplicate output for original index %d (particle id %d)", idx, p.ID)
		}
		seen[idx] = true
		out[idx] = p
	}
	return out, nil
}
