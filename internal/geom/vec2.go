// Package geom provides the 2D geometry primitives shared by every other
// package: vectors, axis-aligned rectangles, and the distance functions the
// quadtree and halo exchange protocol depend on.
package geom

import "math"

// Vec2 is a pair of 32-bit floats. Particles carry positions and velocities
// as Vec2 so their on-wire layout matches the binary particle record exactly.
type Vec2 struct {
	X, Y float32
}

// Add returns the componentwise sum.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns the componentwise difference.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// Length returns the Euclidean length of v.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec2) DistanceTo(o Vec2) float32 {
	return v.Sub(o).Length()
}

// Min returns the componentwise minimum of v and o.
func (v Vec2) Min(o Vec2) Vec2 {
	return Vec2{minF32(v.X, o.X), minF32(v.Y, o.Y)}
}

// Max returns the componentwise maximum of v and o.
func (v Vec2) Max(o Vec2) Vec2 {
	return Vec2{maxF32(v.X, o.X), maxF32(v.Y, o.Y)}
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
