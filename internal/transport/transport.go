// Package transport is the message-passing substrate the simulation engine
// runs on: a Cluster of worker goroutines, each addressed only through a
// WorkerHandle, communicating exclusively via channels. It offers the
// collectives (AllToAll, AllGather, Barrier) and asynchronous point-to-point
// primitives (ISend/IRecv) the halo exchange and redistribution protocols
// are specified against, so the protocol code above this layer cannot tell
// whether it is running over goroutines or a real distributed-memory
// cluster.
package transport

import (
	"context"
	"fmt"
)

// Cluster coordinates W logical workers. It owns no worker state beyond the
// channels needed to route messages between them; every collective and
// point-to-point transfer moves payloads as opaque []byte, matching the
// particle wire format used throughout the rest of the system.
type Cluster struct {
	n int

	collectCh chan collectRequest

	// links[from][to] carries at most one in-flight point-to-point message
	// at a time, matching the invariant that each worker posts at most one
	// send and one receive per neighbor per iteration.
	links [][]chan envelope
}

type envelope struct {
	tag     int
	payload []byte
}

type collectRequest struct {
	pid     int
	payload []byte
	reply   chan [][]byte
}

// NewCluster creates a Cluster of n workers and starts its collective
// coordinator goroutine. n must be positive.
func NewCluster(n int) *Cluster {
	if n <= 0 {
		panic("transport: cluster size must be positive")
	}
	c := &Cluster{
		n:         n,
		collectCh: make(chan collectRequest, n),
		links:     make([][]chan envelope, n),
	}
	for i := range c.links {
		c.links[i] = make([]chan envelope, n)
		for j := range c.links[i] {
			c.links[i][j] = make(chan envelope, 1)
		}
	}
	go c.runCoordinator()
	return c
}

// Size returns the number of workers in the cluster.
func (c *Cluster) Size() int {
	return c.n
}

// runCoordinator services collectives one round at a time: it blocks until
// all n workers have posted a contribution for the current round, then
// broadcasts the full set back to every worker. Because every worker in
// this system issues exactly one collective call per logical round and
// waits for the reply before issuing the next, rounds never interleave.
func (c *Cluster) runCoordinator() {
	for {
		contributions := make([][]byte, c.n)
		replies := make([]chan [][]byte, c.n)
		for received := 0; received < c.n; received++ {
			req := <-c.collectCh
			contributions[req.pid] = req.payload
			replies[req.pid] = req.reply
		}
		for i := 0; i < c.n; i++ {
			replies[i] <- contributions
		}
	}
}

// Handle returns the WorkerHandle for worker pid. pid must be in [0, Size()).
func (c *Cluster) Handle(pid int) *WorkerHandle {
	if pid < 0 || pid >= c.n {
		panic(fmt.Sprintf("transport: pid %d out of range [0, %d)", pid, c.n))
	}
	return &WorkerHandle{cluster: c, pid: pid}
}

// allToAll is the shared implementation behind AllToAll, AllGather, and
// Barrier: every participant contributes one payload and every participant
// receives the full [n][]byte array, indexed by contributor pid.
func (c *Cluster) allToAll(ctx context.Context, pid int, payload []byte) ([][]byte, error) {
	reply := make(chan [][]byte, 1)
	select {
	case c.collectCh <- collectRequest{pid: pid, payload: payload, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-reply:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
