// Package particle defines the particle record and its binary wire format.
// The record layout is fixed by spec: workers, the input file, and the
// transport layer all agree on the same 24-byte little-endian encoding, so
// there is exactly one codec (this package) rather than one per call site.
package particle

import "github.com/partsim/partsim/internal/geom"

// RecordSize is the on-wire/on-disk size of one Particle in bytes:
// int32 id, float32 mass, float32 pos.x, pos.y, vel.x, vel.y.
const RecordSize = 24

// Particle is a stable-identity point mass. ID is assigned once at load time
// and never changes; it is used for final output reordering and by force
// kernels to recognize a self-pair, never for ownership.
type Particle struct {
	ID       int32
	Mass     float32
	Position geom.Vec2
	Velocity geom.Vec2
}
