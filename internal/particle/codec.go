package particle

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/partsim/partsim/internal/geom"
)

// Encode writes p's 24-byte little-endian representation into dst, which
// must have length RecordSize.
func Encode(p Particle, dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(p.ID))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(p.Mass))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(p.Position.X))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(p.Position.Y))
	binary.LittleEndian.PutUint32(dst[16:20], math.Float32bits(p.Velocity.X))
	binary.LittleEndian.PutUint32(dst[20:24], math.Float32bits(p.Velocity.Y))
}

// Decode reads a Particle from its 24-byte little-endian representation.
func Decode(src []byte) Particle {
	return Particle{
		ID:   int32(binary.LittleEndian.Uint32(src[0:4])),
		Mass: math.Float32frombits(binary.LittleEndian.Uint32(src[4:8])),
		Position: geom.Vec2{
			X: math.Float32frombits(binary.LittleEndian.Uint32(src[8:12])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(src[12:16])),
		},
		Velocity: geom.Vec2{
			X: math.Float32frombits(binary.LittleEndian.Uint32(src[16:20])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(src[20:24])),
		},
	}
}

// EncodeSlice packs particles into a contiguous buffer of
// len(particles)*RecordSize bytes, used for file bodies and every transport
// payload that carries particle data.
func EncodeSlice(particles []Particle) []byte {
	buf := make([]byte, len(particles)*RecordSize)
	for i, p := range particles {
		Encode(p, buf[i*RecordSize:(i+1)*RecordSize])
	}
	return buf
}

// DecodeSlice unpacks a contiguous buffer produced by EncodeSlice. It
// returns an error if buf's length is not a multiple of RecordSize, which
// would indicate a transport or file corruption bug rather than a valid
// empty result.
func DecodeSlice(buf []byte) ([]Particle, error) {
	if len(buf)%RecordSize != 0 {
		return nil, fmt.Errorf("particle: buffer length %d is not a multiple of record size %d", len(buf), RecordSize)
	}
	n := len(buf) / RecordSize
	out := make([]Particle, n)
	for i := 0; i < n; i++ {
		out[i] = Decode(buf[i*RecordSize : (i+1)*RecordSize])
	}
	return out, nil
}
