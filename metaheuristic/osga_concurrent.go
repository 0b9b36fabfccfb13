// ABOUTME: Offspring-selection GA producing children on a worker pool
// ABOUTME: Jobs share an atomic effort counter and a mutex-guarded reject pool

package metaheuristic

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"popsearch/algorithm"
	"popsearch/pool"
	"popsearch/solution"
)

// rejectPool collects children that failed admission. Shared by all jobs.
type rejectPool struct {
	mu       sync.Mutex
	children []*solution.Schedule
}

func (r *rejectPool) add(children ...*solution.Schedule) {
	r.mu.Lock()
	r.children = append(r.children, children...)
	r.mu.Unlock()
}

func (r *rejectPool) drain() []*solution.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.children
	r.children = nil
	return out
}

// ConcurrentOSGA runs ceil(populationSize * successRatio) jobs per
// generation on a fixed worker pool. Each job breeds pairs until the better
// child clears the threshold, or until the shared effort exceeds
// maxSelPressure * populationSize, when it settles for its best effort. The
// generation bookkeeping is the same as OSGA's once every job has finished.
type ConcurrentOSGA struct {
	*OSGA

	workers int
	jobs    int
	pool    *pool.WorkerPool
	effort  atomic.Int64
}

// NewConcurrentOSGA creates the parallel algorithm; workers <= 0 uses one per CPU
func NewConcurrentOSGA(p ScheduleProblem, params OSGAParams, workers int, opts Options) (*ConcurrentOSGA, error) {
	base, err := newOSGA("ConcurrentOSGA", p, params, opts)
	if err != nil {
		return nil, err
	}
	c := &ConcurrentOSGA{
		OSGA:    base,
		workers: workers,
		jobs:    int(math.Ceil(float64(params.PopulationSize) * params.SuccessRatio)),
	}
	base.reproduce = c.reproduceConcurrent
	return c, nil
}

// Run executes the algorithm; the worker pool lives for the duration of the run
func (c *ConcurrentOSGA) Run(ctx context.Context) error {
	return c.Execute(ctx, algorithm.Hooks{
		Start: func(ctx context.Context) error {
			if err := c.start(ctx); err != nil {
				return err
			}
			c.pool = pool.NewWorkerPool(c.workers, c.jobs)
			c.Logf("using %d workers for %d jobs per generation", c.pool.Workers(), c.jobs)
			return nil
		},
		Step: c.step,
		End: func() {
			c.pool.Close()
			c.end()
		},
	})
}

// Effort returns the number of children produced in the last generation
func (c *ConcurrentOSGA) Effort() int64 {
	return c.effort.Load()
}

func (c *ConcurrentOSGA) reproduceConcurrent(ctx context.Context) (generation, error) {
	c.effort.Store(0)
	rejected := &rejectPool{children: make([]*solution.Schedule, 0, c.params.PopulationSize)}

	good, err := pool.Map(ctx, c.pool, c.jobs, func(ctx context.Context, _ int) (*solution.Schedule, error) {
		return c.makeGoodChild(ctx, rejected)
	})
	if err != nil {
		return generation{}, err
	}
	return generation{good: good, bad: rejected.drain()}, nil
}

func (c *ConcurrentOSGA) makeGoodChild(ctx context.Context, rejected *rejectPool) (*solution.Schedule, error) {
	effortCap := c.params.MaxSelPressure * float64(c.params.PopulationSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c1, c2, threshold := c.breed()
		better, worse := orderPair(c1, c2)
		rejected.add(worse)

		effort := c.effort.Add(2)
		if better.Fitness() > threshold || float64(effort) > effortCap {
			return better, nil
		}
		rejected.add(better)
	}
}
