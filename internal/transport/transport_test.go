package transport

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllToAllDeliversEveryContribution(t *testing.T) {
	const n = 5
	c := NewCluster(n)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make([][][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			h := c.Handle(pid)
			res, err := h.AllToAll(ctx, []byte(strconv.Itoa(pid)))
			require.NoError(t, err)
			results[pid] = res
		}(i)
	}
	wg.Wait()

	for pid := 0; pid < n; pid++ {
		for j := 0; j < n; j++ {
			assert.Equal(t, strconv.Itoa(j), string(results[pid][j]))
		}
	}
}

func TestAllGatherConcatenatesInRankOrder(t *testing.T) {
	const n = 3
	c := NewCluster(n)
	ctx := context.Background()

	payloads := [][]byte{{1}, {2, 2}, {3, 3, 3}}
	sizes := []int{1, 2, 3}

	results := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			h := c.Handle(pid)
			out, err := h.AllGather(ctx, payloads[pid], sizes)
			require.NoError(t, err)
			results[pid] = out
		}(i)
	}
	wg.Wait()

	want := []byte{1, 2, 2, 3, 3, 3}
	for pid := 0; pid < n; pid++ {
		assert.Equal(t, want, results[pid])
	}
}

func TestAllGatherRejectsSizeMismatch(t *testing.T) {
	const n = 2
	c := NewCluster(n)
	ctx := context.Background()

	sizes := []int{1, 99} // worker 1 will actually send 1 byte, not 99

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			h := c.Handle(pid)
			_, err := h.AllGather(ctx, []byte{byte(pid)}, sizes)
			errs[pid] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.Error(t, err)
	}
}

func TestBarrierReleasesAllParticipants(t *testing.T) {
	const n = 4
	c := NewCluster(n)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			require.NoError(t, c.Handle(pid).Barrier(ctx))
		}(i)
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("barrier did not release all workers")
	}
}

func TestPointToPointSendRecv(t *testing.T) {
	c := NewCluster(2)
	sender := c.Handle(0)
	receiver := c.Handle(1)

	payload := []byte("hello neighbor")
	rh := receiver.IRecv(0, 42, len(payload))
	sh := sender.ISend(1, 42, payload)

	require.NoError(t, sh.Wait())
	got, err := rh.Wait()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPointToPointTagMismatch(t *testing.T) {
	c := NewCluster(2)
	sender := c.Handle(0)
	receiver := c.Handle(1)

	rh := receiver.IRecv(0, 1, 3)
	sh := sender.ISend(1, 2, []byte("abc"))

	require.NoError(t, sh.Wait())
	_, err := rh.Wait()
	assert.Error(t, err)
}

func TestPointToPointSizeMismatch(t *testing.T) {
	c := NewCluster(2)
	sender := c.Handle(0)
	receiver := c.Handle(1)

	rh := receiver.IRecv(0, 1, 10)
	sh := sender.ISend(1, 1, []byte("abc"))

	require.NoError(t, sh.Wait())
	_, err := rh.Wait()
	assert.Error(t, err)
}

func TestNeighborFanOutSameBytesToEveryNeighbor(t *testing.T) {
	// Worker 0 sends the same local buffer to workers 1 and 2 (its
	// selected neighbors), one ISend each, matching Stage C: sends are
	// identical to every neighbor, no per-neighbor serialization.
	c := NewCluster(3)
	src := c.Handle(0)
	payload := []byte("local particles")

	r1 := c.Handle(1).IRecv(0, 7, len(payload))
	r2 := c.Handle(2).IRecv(0, 7, len(payload))
	s1 := src.ISend(1, 7, payload)
	s2 := src.ISend(2, 7, payload)

	require.NoError(t, s1.Wait())
	require.NoError(t, s2.Wait())
	got1, err := r1.Wait()
	require.NoError(t, err)
	got2, err := r2.Wait()
	require.NoError(t, err)
	assert.Equal(t, payload, got1)
	assert.Equal(t, payload, got2)
}
