package quadtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsim/partsim/internal/geom"
	"github.com/partsim/partsim/internal/particle"
)

func mkParticle(id int32, x, y float32) particle.Particle {
	return particle.Particle{ID: id, Mass: 1, Position: geom.Vec2{X: x, Y: y}}
}

func bruteForce(particles []particle.Particle, q geom.Vec2, r float32) map[int32]bool {
	got := map[int32]bool{}
	for _, p := range particles {
		if p.Position.DistanceTo(q) < r {
			got[p.ID] = true
		}
	}
	return got
}

func asSet(ps []particle.Particle) map[int32]bool {
	m := map[int32]bool{}
	for _, p := range ps {
		m[p.ID] = true
	}
	return m
}

func TestQueryMatchesBruteForce(t *testing.T) {
	var particles []particle.Particle
	id := int32(0)
	for x := float32(0); x < 20; x++ {
		for y := float32(0); y < 20; y++ {
			particles = append(particles, mkParticle(id, x, y))
			id++
		}
	}

	tree := Build(particles, geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 19, Y: 19})

	cases := []struct {
		q geom.Vec2
		r float32
	}{
		{geom.Vec2{X: 10, Y: 10}, 3.5},
		{geom.Vec2{X: 0, Y: 0}, 1.1},
		{geom.Vec2{X: 19, Y: 19}, 5},
		{geom.Vec2{X: 5, Y: 15}, 0.5},
	}

	var buf []particle.Particle
	for _, c := range cases {
		buf = tree.Query(c.q, c.r, buf)
		assert.Equal(t, bruteForce(particles, c.q, c.r), asSet(buf))
	}
}

func TestQueryBufferIsClearedBeforeDescent(t *testing.T) {
	particles := []particle.Particle{mkParticle(1, 0, 0)}
	tree := Build(particles, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})

	buf := []particle.Particle{mkParticle(99, 5, 5), mkParticle(98, 6, 6)}
	buf = tree.Query(geom.Vec2{X: 0, Y: 0}, 5, buf)

	require.Len(t, buf, 1)
	assert.Equal(t, int32(1), buf[0].ID)
}

func TestBuildDeterministic(t *testing.T) {
	var particles []particle.Particle
	for i := int32(0); i < 1000; i++ {
		particles = append(particles, mkParticle(i, float32(math.Mod(float64(i)*7.3, 50)), float32(math.Mod(float64(i)*3.1, 50))))
	}

	t1 := Build(particles, geom.Vec2{}, geom.Vec2{X: 50, Y: 50})
	t2 := Build(particles, geom.Vec2{}, geom.Vec2{X: 50, Y: 50})

	var b1, b2 []particle.Particle
	b1 = t1.Query(geom.Vec2{X: 25, Y: 25}, 10, b1)
	b2 = t2.Query(geom.Vec2{X: 25, Y: 25}, 10, b2)
	assert.Equal(t, b1, b2)
}

func TestLeafCapacityRespectedWithoutDepthCap(t *testing.T) {
	var particles []particle.Particle
	for i := int32(0); i < LeafCapacity+50; i++ {
		x := float32(i%64) / 64 * 100
		y := float32((i*7)%64) / 64 * 100
		particles = append(particles, mkParticle(i, x, y))
	}
	tree := Build(particles, geom.Vec2{}, geom.Vec2{X: 100, Y: 100})
	assertLeavesRespectCapacity(t, tree.root, 0)
}

func assertLeavesRespectCapacity(t *testing.T, n *Node, depth int) {
	t.Helper()
	if n.isLeaf() {
		if depth < MaxDepth {
			assert.LessOrEqual(t, len(n.particles), LeafCapacity)
		}
		return
	}
	for _, c := range n.children {
		assertLeavesRespectCapacity(t, c, depth+1)
	}
}

func TestDegenerateClusteringTerminatesAndReturnsAllCoincidentPoints(t *testing.T) {
	var particles []particle.Particle
	for i := int32(0); i < 1000; i++ {
		particles = append(particles, mkParticle(i, 5, 5))
	}
	tree := Build(particles, geom.Vec2{}, geom.Vec2{X: 10, Y: 10})

	var buf []particle.Particle
	buf = tree.Query(geom.Vec2{X: 5, Y: 5}, 0.5, buf)
	assert.Len(t, buf, 1000)
}

func TestQuadrantPredicatesPartitionWithoutOverlap(t *testing.T) {
	mid := geom.Vec2{X: 5, Y: 5}
	seen := map[int]int{}
	for x := float32(0); x <= 10; x++ {
		for y := float32(0); y <= 10; y++ {
			seen[quadrantOf(geom.Vec2{X: x, Y: y}, mid)]++
		}
	}
	total := 0
	for _, c := range seen {
		total += c
	}
	assert.Equal(t, 121, total) // every point classified exactly once
}
