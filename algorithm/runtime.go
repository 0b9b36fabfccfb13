// ABOUTME: Life-cycle runtime shared by every optimisation algorithm
// ABOUTME: Drives start/step/end hooks with pause, resume and stop from any goroutine

package algorithm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
)

// ErrAlreadyStarted is returned when Run is called on a runtime more than once
var ErrAlreadyStarted = errors.New("algorithm already started")

// Unbounded runs until the algorithm stops itself or is stopped
const Unbounded = math.MaxInt

// Logger receives warnings and diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Hooks are the concrete algorithm's phases. Step is required.
type Hooks struct {
	Start func(ctx context.Context) error
	Step  func(ctx context.Context) error
	End   func()
}

// Runtime owns the life-cycle state of one algorithm run:
// Created -> Running <-> Paused -> Stopped.
// Pause takes effect once the in-flight step completes; Stop is terminal.
type Runtime struct {
	name     string
	logger   Logger
	maxSteps int

	mu      sync.Mutex
	resumed *sync.Cond
	step    int
	started bool
	paused  bool
	stopped bool
}

// NewRuntime creates a runtime that performs at most maxSteps steps.
// maxSteps <= 0 means Unbounded; a nil logger uses the standard logger.
func NewRuntime(name string, maxSteps int, logger Logger) *Runtime {
	if maxSteps <= 0 {
		maxSteps = Unbounded
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runtime{name: name, logger: logger, maxSteps: maxSteps}
	r.resumed = sync.NewCond(&r.mu)
	return r
}

// Execute runs the hooks to completion on the calling goroutine.
// Cancelling ctx is equivalent to Stop. A hook error ends the loop;
// End still runs so resources are released, and the error is returned.
func (r *Runtime) Execute(ctx context.Context, h Hooks) (err error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, r.name)
	}
	r.started = true
	r.mu.Unlock()

	stopOnCancel := context.AfterFunc(ctx, func() { r.Stop() })
	defer stopOnCancel()

	defer func() {
		r.mu.Lock()
		r.stopped = true
		r.paused = false
		r.mu.Unlock()
	}()

	if h.Start != nil {
		if err := h.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", r.name, err)
		}
	}

	r.mu.Lock()
	r.step = 0
	r.mu.Unlock()

	for r.advance() {
		if err = h.Step(ctx); err != nil {
			err = fmt.Errorf("%s failed at step %d: %w", r.name, r.CurrentStep(), err)
			break
		}
		r.waitIfPaused()
	}

	if h.End != nil {
		h.End()
	}
	return err
}

// advance counts the next step, or reports that the loop is over
func (r *Runtime) advance() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped || r.step >= r.maxSteps {
		return false
	}
	r.step++
	return true
}

func (r *Runtime) waitIfPaused() {
	r.mu.Lock()
	for r.paused && !r.stopped {
		r.resumed.Wait()
	}
	r.mu.Unlock()
}

// Pause requests a pause after the current step. It returns the resulting
// paused state; misuse (not running, already paused) is logged, not fatal.
func (r *Runtime) Pause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !r.started || r.stopped:
		r.logger.Printf("Warning: cannot pause %s: it is not running", r.name)
	case r.paused:
		r.logger.Printf("Warning: %s is already paused", r.name)
	default:
		r.paused = true
	}
	return r.paused
}

// Resume wakes a paused run and reports whether it was paused
func (r *Runtime) Resume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.paused {
		r.logger.Printf("Warning: cannot resume %s: it is not paused", r.name)
		return false
	}
	r.paused = false
	r.resumed.Broadcast()
	return true
}

// Stop ends the run after the current step, resuming it first if paused.
// It returns whether the runtime is now stopped; repeated calls are no-ops.
func (r *Runtime) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.stopped {
		r.logger.Printf("Warning: cannot stop %s: it is not running", r.name)
		return r.stopped
	}
	r.stopped = true
	if r.paused {
		r.paused = false
		r.resumed.Broadcast()
	}
	return true
}

// HasStarted reports whether Run has been called
func (r *Runtime) HasStarted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// IsPaused reports whether a pause is in effect or pending
func (r *Runtime) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// HasStopped reports whether the run is over or stopping
func (r *Runtime) HasStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// CurrentStep returns the number of the step in flight, or the number of
// completed steps between steps
func (r *Runtime) CurrentStep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

// MaxSteps returns the step bound (Unbounded if none)
func (r *Runtime) MaxSteps() int {
	return r.maxSteps
}

// Name returns the algorithm name used in logs
func (r *Runtime) Name() string {
	return r.name
}

// Logf writes a diagnostic line prefixed with the algorithm name
func (r *Runtime) Logf(format string, v ...any) {
	r.logger.Printf("["+r.name+"] "+format, v...)
}
