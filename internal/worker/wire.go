package worker

import (
	"encoding/binary"
	"math"

	"github.com/partsim/partsim/internal/geom"
)

// boundsWireSize is the encoded size of a geom.Bounds: four float32 fields.
const boundsWireSize = 16

// encodeBounds packs b as four little-endian float32 fields (min.x, min.y,
// max.x, max.y), the payload shape used for the Stage A all-to-all.
func encodeBounds(b geom.Bounds) []byte {
	buf := make([]byte, boundsWireSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(b.Min.X))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(b.Min.Y))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(b.Max.X))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(b.Max.Y))
	return buf
}

func decodeBounds(buf []byte) geom.Bounds {
	return geom.Bounds{
		Min: geom.Vec2{
			X: math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		},
		Max: geom.Vec2{
			X: math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		},
	}
}

// encodeSize packs a byte count as a little-endian uint64, the payload
// shape used when workers advertise particle_list_sizes.
func encodeSize(n int) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(n))
	return buf
}

func decodeSize(buf []byte) int {
	return int(binary.LittleEndian.Uint64(buf))
}
