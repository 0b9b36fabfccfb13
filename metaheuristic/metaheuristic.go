// ABOUTME: Shared plumbing for the population-based metaheuristics
// ABOUTME: Run options, parameter validation errors and best-so-far tracking

package metaheuristic

import (
	"errors"
	"fmt"

	"popsearch/algorithm"
	"popsearch/solution"
)

// ErrInvalidParameter is returned by constructors for out-of-range parameters
var ErrInvalidParameter = errors.New("invalid parameter")

// Options are the life-cycle settings common to every algorithm
type Options struct {
	// MaxSteps bounds the run; 0 means unbounded
	MaxSteps int
	// Logger receives start/end lines and life-cycle warnings; nil uses the standard logger
	Logger algorithm.Logger
}

// copyable is a solution that can be deep-copied into a value of its own type
type copyable[S any] interface {
	solution.Solution
	Copy() S
	CopyFrom(other S)
}

// bestTracker keeps a private copy of the best solution seen so far
type bestTracker[S copyable[S]] struct {
	best S
	set  bool
}

// offer copies candidate into the tracker on strict improvement
func (b *bestTracker[S]) offer(candidate S) bool {
	if !b.set {
		b.best = candidate.Copy()
		b.set = true
		return true
	}
	if !solution.Better(candidate, b.best) {
		return false
	}
	b.best.CopyFrom(candidate)
	return true
}

func positive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParameter, name, v)
	}
	return nil
}

func positiveFloat(name string, v float64) error {
	if !(v > 0) {
		return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidParameter, name, v)
	}
	return nil
}

func probability(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: %s must be in [0, 1], got %g", ErrInvalidParameter, name, v)
	}
	return nil
}
