// ABOUTME: Tests for the generation worker pool
// ABOUTME: Result ordering, error propagation, panic recovery and reuse across batches

package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMap_CollectsByIndex tests that results land in submission order
func TestMap_CollectsByIndex(t *testing.T) {
	p := NewWorkerPool(4, 16)
	defer p.Close()

	got, err := Map(context.Background(), p, 50, func(_ context.Context, i int) (int, error) {
		return i * i, nil
	})
	require.NoError(t, err)
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

// TestMap_FirstErrorWins tests that a failing job fails the batch
func TestMap_FirstErrorWins(t *testing.T) {
	p := NewWorkerPool(2, 8)
	defer p.Close()

	boom := errors.New("boom")
	_, err := Map(context.Background(), p, 20, func(_ context.Context, i int) (int, error) {
		if i == 7 {
			return 0, boom
		}
		return i, nil
	})
	assert.ErrorIs(t, err, boom)
}

// TestBatch_PanicBecomesError tests panic recovery inside jobs
func TestBatch_PanicBecomesError(t *testing.T) {
	p := NewWorkerPool(2, 4)
	defer p.Close()

	batch, _ := p.Batch(context.Background())
	batch.Submit(func() error { panic("bad child") })
	batch.Submit(func() error { return nil })

	err := batch.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobPanicked)
	assert.Contains(t, err.Error(), "bad child")
}

// TestWorkerPool_ReusedAcrossBatches tests the per-generation barrier
func TestWorkerPool_ReusedAcrossBatches(t *testing.T) {
	p := NewWorkerPool(0, 0)
	defer p.Close()
	assert.Positive(t, p.Workers())

	var total atomic.Int64
	for gen := range 5 {
		batch, _ := p.Batch(context.Background())
		for range 10 {
			batch.Submit(func() error {
				total.Add(1)
				return nil
			})
		}
		require.NoError(t, batch.Wait())
		assert.Equal(t, int64((gen+1)*10), total.Load(), "barrier must join all jobs")
	}
}
