// ABOUTME: Bounded worker pool for parallel offspring production
// ABOUTME: One task group per generation, joined synchronously, first error wins

package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/alitto/pond"
)

// ErrJobPanicked wraps a panic recovered inside a job
var ErrJobPanicked = errors.New("job panicked")

// WorkerPool runs generation batches on a fixed set of goroutines
type WorkerPool struct {
	workers int
	pool    *pond.WorkerPool
}

// NewWorkerPool creates a pool with the given number of workers
// (0 means one per CPU) and task queue capacity
func NewWorkerPool(workers, bufferSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &WorkerPool{
		workers: workers,
		pool:    pond.New(workers, max(bufferSize, 0)),
	}
}

// Workers returns the pool size
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Batch is one generation's worth of jobs
type Batch struct {
	group *pond.TaskGroupWithContext
}

// Batch starts a new job group. The returned context is cancelled as soon
// as any job fails so the others can bail out early.
func (p *WorkerPool) Batch(ctx context.Context) (*Batch, context.Context) {
	group, gctx := p.pool.GroupContext(ctx)
	return &Batch{group: group}, gctx
}

// Submit queues a job. Panics inside the job are returned as ErrJobPanicked.
// Blocks if the task queue is full.
func (b *Batch) Submit(job func() error) {
	b.group.Submit(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v\n%s", ErrJobPanicked, r, debug.Stack())
			}
		}()
		return job()
	})
}

// Wait blocks until every submitted job has finished and returns the first error
func (b *Batch) Wait() error {
	return b.group.Wait()
}

// Close stops accepting work and waits for running jobs to exit
func (p *WorkerPool) Close() {
	p.pool.StopAndWait()
}

// Map runs n jobs and collects their results by index. It returns the first
// job error; results are only meaningful when err is nil.
func Map[T any](ctx context.Context, p *WorkerPool, n int, job func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	batch, gctx := p.Batch(ctx)
	for i := range n {
		batch.Submit(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := job(gctx, i)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := batch.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
