package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsim/partsim/internal/geom"
)

func TestIsPerfectSquare(t *testing.T) {
	assert.True(t, IsPerfectSquare(1))
	assert.True(t, IsPerfectSquare(4))
	assert.True(t, IsPerfectSquare(9))
	assert.True(t, IsPerfectSquare(16))
	assert.False(t, IsPerfectSquare(0))
	assert.False(t, IsPerfectSquare(2))
	assert.False(t, IsPerfectSquare(5))
}

func TestOwnerInRange(t *testing.T) {
	min := geom.Vec2{X: 0, Y: 0}
	max := geom.Vec2{X: 100, Y: 100}
	dim := 4

	for x := float32(0); x <= 100; x += 3.3 {
		for y := float32(0); y <= 100; y += 3.3 {
			owner := Owner(geom.Vec2{X: x, Y: y}, min, max, dim)
			require.GreaterOrEqual(t, owner, 0)
			require.Less(t, owner, dim*dim)
		}
	}
}

func TestOwnerClampsAtGlobalMax(t *testing.T) {
	min := geom.Vec2{X: 0, Y: 0}
	max := geom.Vec2{X: 100, Y: 100}
	dim := 4
	// exactly on max in both axes must land in the last cell, not out of range
	assert.Equal(t, dim*dim-1, Owner(max, min, max, dim))
}

func TestOwnerGridLayout(t *testing.T) {
	min := geom.Vec2{X: 0, Y: 0}
	max := geom.Vec2{X: 4, Y: 4}
	dim := 2

	assert.Equal(t, 0, Owner(geom.Vec2{X: 0, Y: 0}, min, max, dim))
	assert.Equal(t, 1, Owner(geom.Vec2{X: 3, Y: 0}, min, max, dim))
	assert.Equal(t, 2, Owner(geom.Vec2{X: 0, Y: 3}, min, max, dim))
	assert.Equal(t, 3, Owner(geom.Vec2{X: 3, Y: 3}, min, max, dim))
}

// TestOwnershipPartitionsFully checks the "union is everything, intersections
// empty" property by construction: Owner is a function, so every point maps
// to exactly one worker; this verifies coverage across the full grid.
func TestOwnershipPartitionsFully(t *testing.T) {
	min := geom.Vec2{X: 0, Y: 0}
	max := geom.Vec2{X: 9, Y: 9}
	dim := 3
	seen := map[int]bool{}
	for x := float32(0); x <= 9; x++ {
		for y := float32(0); y <= 9; y++ {
			seen[Owner(geom.Vec2{X: x, Y: y}, min, max, dim)] = true
		}
	}
	assert.Len(t, seen, dim*dim)
}
