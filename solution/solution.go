// ABOUTME: Solution contract shared by every optimisation algorithm
// ABOUTME: Fitness ordering (higher first), sorting helpers and clone errors

package solution

import (
	"cmp"
	"errors"
	"math"
	"slices"
)

// ErrShapeMismatch is returned when a solution is cloned from a different variant
var ErrShapeMismatch = errors.New("solution shape mismatch")

// Solution is a candidate answer carrying a fitness score.
// Fitness is always maximised; an unevaluated solution reports -Inf.
type Solution interface {
	Fitness() float64
	SetFitness(f float64)
	Clone() Solution
	CloneFrom(other Solution) error
	String() string
}

// Base holds the fitness bookkeeping embedded by every variant.
// The zero value is an unevaluated solution.
type Base struct {
	fitness   float64
	evaluated bool
}

// Fitness returns the last evaluated fitness or -Inf if never evaluated
func (b *Base) Fitness() float64 {
	if !b.evaluated {
		return math.Inf(-1)
	}
	return b.fitness
}

// SetFitness records an evaluation result
func (b *Base) SetFitness(f float64) {
	b.fitness = f
	b.evaluated = true
}

// Evaluated reports whether SetFitness has been called
func (b *Base) Evaluated() bool {
	return b.evaluated
}

// Compare orders solutions best first: it returns a negative number when a
// has the higher fitness. Equal fitness compares as 0 whatever the genotype.
func Compare[S Solution](a, b S) int {
	return cmp.Compare(b.Fitness(), a.Fitness())
}

// Better reports whether a is strictly fitter than b. Ties are not improvements.
func Better[S Solution](a, b S) bool {
	return a.Fitness() > b.Fitness()
}

// Sort orders a population in place, best first. Equal fitness keeps insertion order.
func Sort[S Solution](pop []S) {
	slices.SortStableFunc(pop, Compare[S])
}

// Best returns the fittest member of pop, the first one on ties.
// Panics on an empty population.
func Best[S Solution](pop []S) S {
	best := pop[0]
	for _, s := range pop[1:] {
		if Better(s, best) {
			best = s
		}
	}
	return best
}

// Stats summarises the fitness of a population
type Stats struct {
	Size  int
	Best  float64
	Worst float64
	Mean  float64
}

// Summarise computes population statistics. Unevaluated members are skipped
// in the mean so a single -Inf does not swamp it.
func Summarise[S Solution](pop []S) Stats {
	st := Stats{Size: len(pop), Best: math.Inf(-1), Worst: math.Inf(1)}
	if len(pop) == 0 {
		st.Worst = math.Inf(-1)
		return st
	}

	sum, n := 0.0, 0
	for _, s := range pop {
		f := s.Fitness()
		st.Best = max(st.Best, f)
		st.Worst = min(st.Worst, f)
		if !math.IsInf(f, 0) {
			sum += f
			n++
		}
	}
	if n > 0 {
		st.Mean = sum / float64(n)
	} else {
		st.Mean = math.Inf(-1)
	}
	return st
}
