package transport

import (
	"context"
	"fmt"
)

// WorkerHandle is one worker's view of the cluster: every message-passing
// operation a worker performs goes through its handle, never through the
// Cluster directly, so a worker can only ever address its own pid.
type WorkerHandle struct {
	cluster *Cluster
	pid     int
}

// PID returns the handle's worker index.
func (h *WorkerHandle) PID() int {
	return h.pid
}

// AllToAll contributes payload and blocks until every worker has
// contributed, returning the full array indexed by contributor pid.
func (h *WorkerHandle) AllToAll(ctx context.Context, payload []byte) ([][]byte, error) {
	return h.cluster.allToAll(ctx, h.pid, payload)
}

// AllGather is AllToAll with the per-worker contributions concatenated in
// rank order into one buffer, mirroring an MPI_Allgatherv over
// non-uniform-length payloads. If sizes is non-nil it is validated against
// the actual contribution lengths and a mismatch is reported as an error
// rather than silently truncating or padding.
func (h *WorkerHandle) AllGather(ctx context.Context, payload []byte, sizes []int) ([]byte, error) {
	parts, err := h.cluster.allToAll(ctx, h.pid, payload)
	if err != nil {
		return nil, err
	}
	total := 0
	for i, p := range parts {
		if sizes != nil && len(p) != sizes[i] {
			return nil, fmt.Errorf("transport: allgather size mismatch for worker %d: announced %d, got %d", i, sizes[i], len(p))
		}
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// Barrier is a collective with no payload: it returns once every worker has
// called Barrier for the current round.
func (h *WorkerHandle) Barrier(ctx context.Context) error {
	_, err := h.cluster.allToAll(ctx, h.pid, nil)
	return err
}

// SendHandle represents an in-flight non-blocking send.
type SendHandle struct {
	done chan error
}

// Wait blocks until the send has been delivered to the receiver's link.
func (s *SendHandle) Wait() error {
	return <-s.done
}

// RecvHandle represents an in-flight non-blocking receive.
type RecvHandle struct {
	done chan recvResult
}

type recvResult struct {
	payload []byte
	err     error
}

// Wait blocks until the matching send arrives and returns its payload.
func (r *RecvHandle) Wait() ([]byte, error) {
	res := <-r.done
	return res.payload, res.err
}

// ISend posts a non-blocking send of payload from this worker to to,
// tagged tag, and returns immediately. Matching is by (sender, receiver,
// tag); this system posts at most one send per neighbor per iteration so
// that alone disambiguates.
func (h *WorkerHandle) ISend(to int, tag int, payload []byte) *SendHandle {
	sh := &SendHandle{done: make(chan error, 1)}
	if to < 0 || to >= h.cluster.n {
		sh.done <- fmt.Errorf("transport: send target %d out of range [0, %d)", to, h.cluster.n)
		return sh
	}
	go func() {
		h.cluster.links[h.pid][to] <- envelope{tag: tag, payload: payload}
		sh.done <- nil
	}()
	return sh
}

// IRecv posts a non-blocking receive of a message from from, tagged tag,
// expected to be exactly size bytes, and returns immediately. size is the
// byte count already known to every worker from the prior redistribution's
// size announcement — callers must not re-derive it by multiplying by a
// record size, since size is already a byte count.
func (h *WorkerHandle) IRecv(from int, tag int, size int) *RecvHandle {
	rh := &RecvHandle{done: make(chan recvResult, 1)}
	if from < 0 || from >= h.cluster.n {
		rh.done <- recvResult{err: fmt.Errorf("transport: recv source %d out of range [0, %d)", from, h.cluster.n)}
		return rh
	}
	go func() {
		env := <-h.cluster.links[from][h.pid]
		if env.tag != tag {
			rh.done <- recvResult{err: fmt.Errorf("transport: tag mismatch on recv from %d: expected %d, got %d", from, tag, env.tag)}
			return
		}
		if len(env.payload) != size {
			rh.done <- recvResult{err: fmt.Errorf("transport: size mismatch on recv from %d: expected %d bytes, got %d", from, size, len(env.payload))}
			return
		}
		rh.done <- recvResult{payload: env.payload}
	}()
	return rh
}
