// Package quadtree implements the region quadtree used as the local
// acceleration structure for radius neighbor queries, grounded on the
// bounded-region split-by-midpoint algorithm the halo exchange's Stage D
// requires.
package quadtree

import (
	"github.com/partsim/partsim/internal/geom"
	"github.com/partsim/partsim/internal/particle"
)

// LeafCapacity is the maximum number of particles a leaf holds before it is
// split, unless MaxDepth has already been reached.
const LeafCapacity = 256

// MaxDepth caps the recursion depth of Build. Without a cap, a degenerate
// input of more than LeafCapacity coincident points recurses forever because
// the midpoint split never separates them. At MaxDepth the node becomes an
// oversized leaf instead: a query at that point still returns every
// coincident particle, it just costs a linear scan over that one leaf.
const MaxDepth = 24

// quadrant indices, ordered so bit 0 = east, bit 1 = south, matching the
// NW/NE/SW/SE layout spec'd for children.
const (
	quadNW = 0
	quadNE = 1
	quadSW = 2
	quadSE = 3
)

// Node is either a leaf holding up to LeafCapacity particles, or an internal
// node with exactly four children in NW/NE/SW/SE order. Internal nodes store
// no particles. Bounds are not stored in the node; they are recomputed by
// the caller during descent from the tree's overall bounds.
type Node struct {
	particles []particle.Particle // non-nil only on leaves
	children  [4]*Node            // non-nil only on internal nodes
}

func (n *Node) isLeaf() bool {
	return n.children[0] == nil
}

// Tree is a region quadtree built in one shot from a particle slice and not
// mutated afterward. It owns every Node reachable from root.
type Tree struct {
	root       *Node
	bmin, bmax geom.Vec2
}

// Build constructs a Tree over particles, all of which must lie within
// [bmin, bmax]. Build is a pure function of its inputs: two builds over the
// same particle sequence and bounds produce trees that answer every query
// identically.
func Build(particles []particle.Particle, bmin, bmax geom.Vec2) *Tree {
	return &Tree{
		root: buildNode(particles, bmin, bmax, 0),
		bmin: bmin,
		bmax: bmax,
	}
}

func buildNode(particles []particle.Particle, bmin, bmax geom.Vec2, depth int) *Node {
	if len(particles) <= LeafCapacity || depth >= MaxDepth {
		leaf := make([]particle.Particle, len(particles))
		copy(leaf, particles)
		return &Node{particles: leaf}
	}

	mid := geom.Bounds{Min: bmin, Max: bmax}.Midpoint()
	var buckets [4][]particle.Particle
	for _, p := range particles {
		buckets[quadrantOf(p.Position, mid)] = append(buckets[quadrantOf(p.Position, mid)], p)
	}

	n := &Node{}
	for q := 0; q < 4; q++ {
		qmin, qmax := quadrantBounds(bmin, bmax, mid, q)
		n.children[q] = buildNode(buckets[q], qmin, qmax, depth+1)
	}
	return n
}

// quadrantOf classifies a position against the box midpoint using the
// spec's four disjoint predicates: <= on the low side, > on the high side,
// so no particle is counted twice and none is dropped.
func quadrantOf(p, mid geom.Vec2) int {
	east := p.X > mid.X
	south := p.Y > mid.Y
	switch {
	case !east && !south:
		return quadNW
	case east && !south:
		return quadNE
	case !east && south:
		return quadSW
	default:
		return quadSE
	}
}

func quadrantBounds(bmin, bmax, mid geom.Vec2, q int) (geom.Vec2, geom.Vec2) {
	switch q {
	case quadNW:
		return bmin, mid
	case quadNE:
		return geom.Vec2{X: mid.X, Y: bmin.Y}, geom.Vec2{X: bmax.X, Y: mid.Y}
	case quadSW:
		return geom.Vec2{X: bmin.X, Y: mid.Y}, geom.Vec2{X: mid.X, Y: bmax.Y}
	default: // quadSE
		return mid, bmax
	}
}

// Query appends to out every particle within Euclidean distance < radius of
// position, returning the (possibly reallocated) slice. out is cleared
// before descent; result order is preorder over surviving children, then
// leaf insertion order — a deterministic function of tree structure, not of
// query geometry.
func (t *Tree) Query(position geom.Vec2, radius float32, out []particle.Particle) []particle.Particle {
	out = out[:0]
	return queryNode(t.root, t.bmin, t.bmax, position, radius, out)
}

func queryNode(n *Node, bmin, bmax geom.Vec2, position geom.Vec2, radius float32, out []particle.Particle) []particle.Particle {
	if n.isLeaf() {
		for _, p := range n.particles {
			if p.Position.DistanceTo(position) < radius {
				out = append(out, p)
			}
		}
		return out
	}

	mid := geom.Bounds{Min: bmin, Max: bmax}.Midpoint()
	for q := 0; q < 4; q++ {
		qmin, qmax := quadrantBounds(bmin, bmax, mid, q)
		if (geom.Bounds{Min: qmin, Max: qmax}).DistanceTo(position) <= radius {
			out = queryNode(n.children[q], qmin, qmax, position, radius, out)
		}
	}
	return out
}
