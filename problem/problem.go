// ABOUTME: Problem adapter contract consumed by the optimisation algorithms
// ABOUTME: An adapter evaluates candidate solutions and generates random ones

package problem

import (
	"errors"

	"popsearch/solution"
)

// ErrInvalidProblem is returned when a problem instance cannot be built
var ErrInvalidProblem = errors.New("invalid problem")

// Adapter evaluates and generates solutions of one shape.
// Implementations are read-only after construction and safe for concurrent use.
type Adapter[S solution.Solution] interface {
	// Evaluate sets the fitness of s and returns s
	Evaluate(s S) S
	// GenerateRandom returns a new evaluated, domain-valid random solution
	GenerateRandom() S
}

// BitProblem is an adapter over fixed-length bit vectors
type BitProblem interface {
	Adapter[*solution.BitVector]
	NumBits() int
}
