// Package partition implements the deterministic spatial partitioner: the
// pure function mapping a particle's position to the worker that owns it,
// consistent across every worker because it depends only on inputs every
// worker agrees on (global bounds, grid dimension).
package partition

import "github.com/partsim/partsim/internal/geom"

// Owner returns the worker index in [0, dim*dim) that owns a particle at
// position p, given the world's global bounds and the dim x dim grid tiling
// it. Positions exactly on globalMax are clamped to the last cell so every
// worker agrees on boundary ownership.
func Owner(p geom.Vec2, globalMin, globalMax geom.Vec2, dim int) int {
	bx := (globalMax.X - globalMin.X) / float32(dim)
	by := (globalMax.Y - globalMin.Y) / float32(dim)

	cx := cellIndex(p.X, globalMin.X, bx, dim)
	cy := cellIndex(p.Y, globalMin.Y, by, dim)

	return cy*dim + cx
}

func cellIndex(v, min, blockSize float32, dim int) int {
	if blockSize == 0 {
		return 0
	}
	idx := int((v - min) / blockSize)
	if idx >= dim {
		idx = dim - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Dim returns floor(sqrt(workers)). Callers must validate that workers is a
// perfect square (Dim*Dim == workers) before relying on Owner's contract;
// that validation happens once at startup, not per call.
func Dim(workers int) int {
	d := 0
	for (d+1)*(d+1) <= workers {
		d++
	}
	return d
}

// IsPerfectSquare reports whether workers is positive and
// workers == Dim(workers)^2. Zero workers is not a valid cluster size.
func IsPerfectSquare(workers int) bool {
	if workers <= 0 {
		return false
	}
	d := Dim(workers)
	return d*d == workers
}
