// ABOUTME: Tests for the algorithm runtime and notifier
// ABOUTME: Life-cycle misuse, pause/resume step accounting, stop, cancellation and listeners

package algorithm

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popsearch/solution"
)

var quiet = log.New(io.Discard, "", 0)

// counter is a minimal algorithm: every step evaluates a fresh vector with
// fitness equal to the step number.
type counter struct {
	*Engine[*solution.RealVector]
	best  *solution.RealVector
	delay time.Duration
}

func newCounter(maxSteps int) *counter {
	return &counter{Engine: NewEngine[*solution.RealVector]("counter", maxSteps, quiet)}
}

func (c *counter) Run(ctx context.Context) error {
	return c.Execute(ctx, Hooks{
		Start: func(context.Context) error {
			c.best = solution.NewRealVector([]float64{0})
			c.best.SetFitness(0)
			return nil
		},
		Step: func(context.Context) error {
			time.Sleep(c.delay)
			v := solution.NewRealVector([]float64{float64(c.CurrentStep())})
			v.SetFitness(float64(c.CurrentStep()))
			c.ReportPopulation([]*solution.RealVector{v})
			if solution.Better(v, c.best) {
				c.best = v
				c.ReportBest(v)
			}
			return nil
		},
		End: func() { c.ReportFinal(c.best) },
	})
}

func (c *counter) Best() *solution.RealVector { return c.best }

var _ Algorithm[*solution.RealVector] = (*counter)(nil)

// TestRuntime_MisuseBeforeStart tests that controls before Run are no-ops
func TestRuntime_MisuseBeforeStart(t *testing.T) {
	r := NewRuntime("idle", 10, quiet)

	assert.False(t, r.Pause())
	assert.False(t, r.IsPaused())
	assert.False(t, r.Resume())
	assert.False(t, r.Stop())
	assert.False(t, r.HasStarted())
	assert.False(t, r.HasStopped())
}

// TestRuntime_RunsToMaxSteps tests the bounded loop and event ordering
func TestRuntime_RunsToMaxSteps(t *testing.T) {
	c := newCounter(25)

	var steps []int
	finals := 0
	c.AddListener(ListenerFuncs[*solution.RealVector]{
		OnPopulation: func(_ []*solution.RealVector, step int) { steps = append(steps, step) },
		OnFinal: func(best *solution.RealVector, step int) {
			finals++
			assert.Equal(t, 25, step)
			assert.Equal(t, 25.0, best.Fitness())
		},
	})

	require.NoError(t, c.Run(context.Background()))

	require.Len(t, steps, 25)
	for i, s := range steps {
		assert.Equal(t, i+1, s)
	}
	assert.Equal(t, 1, finals)
	assert.True(t, c.HasStopped())
	assert.Equal(t, 25, c.CurrentStep())
}

// TestRuntime_RunTwice tests that a runtime is single-use
func TestRuntime_RunTwice(t *testing.T) {
	c := newCounter(1)
	require.NoError(t, c.Run(context.Background()))
	assert.ErrorIs(t, c.Run(context.Background()), ErrAlreadyStarted)
}

// TestRuntime_PauseResume tests that pausing blocks stepping and that step
// numbering stays contiguous across pause cycles
func TestRuntime_PauseResume(t *testing.T) {
	c := newCounter(40)
	c.delay = time.Millisecond

	var mu sync.Mutex
	var steps []int
	c.AddListener(ListenerFuncs[*solution.RealVector]{
		OnPopulation: func(_ []*solution.RealVector, step int) {
			mu.Lock()
			steps = append(steps, step)
			mu.Unlock()
			if step == 3 {
				assert.True(t, c.Pause())
			}
		},
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.Eventually(t, func() bool { return c.IsPaused() && c.CurrentStep() == 3 }, 2*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, c.CurrentStep(), "no step may run while paused")
	assert.True(t, c.IsPaused())

	assert.True(t, c.Pause(), "second pause keeps the run paused")
	assert.True(t, c.Resume())
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, steps, 40)
	for i, s := range steps {
		assert.Equal(t, i+1, s)
	}
}

// TestRuntime_StopWhilePaused tests that Stop releases a paused run
func TestRuntime_StopWhilePaused(t *testing.T) {
	c := newCounter(Unbounded)
	c.delay = time.Millisecond

	finals := 0
	c.AddListener(ListenerFuncs[*solution.RealVector]{
		OnPopulation: func(_ []*solution.RealVector, step int) {
			if step == 5 {
				c.Pause()
			}
		},
		OnFinal: func(*solution.RealVector, int) { finals++ },
	})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.Eventually(t, c.IsPaused, 2*time.Second, time.Millisecond)
	assert.True(t, c.Stop())
	require.NoError(t, <-done)

	assert.Equal(t, 5, c.CurrentStep())
	assert.Equal(t, 1, finals)
	assert.True(t, c.HasStopped())
	assert.False(t, c.IsPaused())

	assert.True(t, c.Stop(), "stop is idempotent")
	assert.False(t, c.Resume(), "resume after stop has no effect")
	assert.False(t, c.Pause())
	assert.Equal(t, 5, c.CurrentStep())
}

// TestRuntime_ContextCancel tests that cancellation stops the run
func TestRuntime_ContextCancel(t *testing.T) {
	c := newCounter(Unbounded)
	c.delay = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return c.CurrentStep() > 2 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
	assert.True(t, c.HasStopped())
}

// TestRuntime_StepError tests that a failing step ends the run with End called
func TestRuntime_StepError(t *testing.T) {
	boom := errors.New("boom")
	ended := false

	r := NewRuntime("failing", 10, quiet)
	err := r.Execute(context.Background(), Hooks{
		Step: func(context.Context) error {
			if r.CurrentStep() == 2 {
				return boom
			}
			return nil
		},
		End: func() { ended = true },
	})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step 2")
	assert.True(t, ended)
	assert.True(t, r.HasStopped())
}

// TestRuntime_StartError tests that a failing start skips stepping
func TestRuntime_StartError(t *testing.T) {
	r := NewRuntime("broken", 10, quiet)
	stepped := false
	err := r.Execute(context.Background(), Hooks{
		Start: func(context.Context) error { return errors.New("no population") },
		Step:  func(context.Context) error { stepped = true; return nil },
	})

	assert.Error(t, err)
	assert.False(t, stepped)
	assert.True(t, r.HasStopped())
}

// TestRuntime_Warnings tests that misuse is reported through the logger
func TestRuntime_Warnings(t *testing.T) {
	var lines []string
	r := NewRuntime("noisy", 1, loggerFunc(func(format string, _ ...any) { lines = append(lines, format) }))

	r.Pause()
	r.Resume()
	r.Stop()
	assert.Len(t, lines, 3)
	for _, l := range lines {
		assert.Contains(t, l, "Warning")
	}
}

type loggerFunc func(format string, v ...any)

func (f loggerFunc) Printf(format string, v ...any) { f(format, v...) }

// TestNotifier_AddRemove tests registration order and removal
func TestNotifier_AddRemove(t *testing.T) {
	var n Notifier[*solution.BitVector]
	var order []string

	first := n.AddListener(ListenerFuncs[*solution.BitVector]{
		OnBest: func(*solution.BitVector, int) { order = append(order, "first") },
	})
	n.AddListener(ListenerFuncs[*solution.BitVector]{
		OnBest: func(*solution.BitVector, int) { order = append(order, "second") },
	})

	n.NotifyBestUpdated(solution.NewBitVector(1), 1)
	assert.Equal(t, []string{"first", "second"}, order)

	assert.True(t, n.RemoveListener(first))
	assert.False(t, n.RemoveListener(first))
	assert.Equal(t, 1, n.ListenerCount())

	order = nil
	n.NotifyBestUpdated(solution.NewBitVector(1), 2)
	assert.Equal(t, []string{"second"}, order)
}

// TestNotifier_PopulationIsCopied tests that listeners get their own slice header
func TestNotifier_PopulationIsCopied(t *testing.T) {
	var n Notifier[*solution.BitVector]
	pop := []*solution.BitVector{solution.NewBitVector(1), solution.NewBitVector(2)}

	n.AddListener(ListenerFuncs[*solution.BitVector]{
		OnPopulation: func(view []*solution.BitVector, _ int) {
			view[0], view[1] = view[1], view[0]
		},
	})
	n.NotifyPopulationChanged(pop, 1)
	assert.Equal(t, 1, pop[0].Len())
}

// TestNotifier_ConcurrentRegistration tests registration from other goroutines during dispatch
func TestNotifier_ConcurrentRegistration(t *testing.T) {
	var n Notifier[*solution.BitVector]
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := n.AddListener(ListenerFuncs[*solution.BitVector]{})
				n.RemoveListener(id)
			}
		}()
	}
	for i := range 200 {
		n.NotifyBestUpdated(solution.NewBitVector(1), i)
	}
	wg.Wait()
	assert.Zero(t, n.ListenerCount())
}
