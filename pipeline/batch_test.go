package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, size int) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(size)
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	return pool
}

func TestRunBatchesCheckpointCadence(t *testing.T) {
	pool := newTestPool(t, 2)

	var processed atomic.Int32
	var checkpoints []int32

	items := []int{1, 2, 3, 4, 5, 6, 7}
	err := runBatches(context.Background(), pool, items, 3, func(ctx context.Context, item int) {
		processed.Add(1)
	}, func() error {
		checkpoints = append(checkpoints, processed.Load())
		return nil
	})
	require.NoError(t, err)

	// Three batches of 3, 3, and 1; every batch completes before its checkpoint.
	assert.Equal(t, []int32{3, 6, 7}, checkpoints)
}

func TestRunBatchesItemFailureDoesNotAbortSiblings(t *testing.T) {
	pool := newTestPool(t, 4)

	var succeeded atomic.Int32
	items := []int{0, 1, 2, 3, 4, 5}
	err := runBatches(context.Background(), pool, items, 6, func(ctx context.Context, item int) {
		if item == 3 {
			// Work functions report failures through shared state; a
			// failing item is simply one that records nothing.
			return
		}
		succeeded.Add(1)
	}, func() error { return nil })
	require.NoError(t, err)

	assert.Equal(t, int32(5), succeeded.Load())
}

func TestRunBatchesEmptyItems(t *testing.T) {
	pool := newTestPool(t, 1)

	checkpointed := false
	err := runBatches(context.Background(), pool, nil, 10, func(ctx context.Context, item string) {
		t.Fatal("work should not be called")
	}, func() error {
		checkpointed = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, checkpointed)
}

func TestRunBatchesCancelledBetweenBatches(t *testing.T) {
	pool := newTestPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var processed int
	err := runBatches(ctx, pool, []int{1, 2, 3, 4}, 2, func(ctx context.Context, item int) {
		mu.Lock()
		processed++
		mu.Unlock()
	}, func() error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, processed, "only the first batch runs")
}

func TestRunBatchesBatchSizeFloor(t *testing.T) {
	pool := newTestPool(t, 1)

	var checkpoints int
	err := runBatches(context.Background(), pool, []int{1, 2}, 0, func(ctx context.Context, item int) {
	}, func() error {
		checkpoints++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, checkpoints, "batch size below 1 is treated as 1")
}
