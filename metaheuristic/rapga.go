// ABOUTME: Relevant-alleles-preserving GA with an adaptive population size
// ABOUTME: Children enter only if they beat a tightening threshold and are new

package metaheuristic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// RAPGAParams configures RAPGA
type RAPGAParams struct {
	MinPopulationSize int     `toml:"min_population_size"`
	MaxPopulationSize int     `toml:"max_population_size"`
	MaxEffort         int     `toml:"max_effort"`
	CompFactor        float64 `toml:"comp_factor"`
	MutationRate      float64 `toml:"mutation_rate"`
}

// DefaultRAPGAParams returns the standard settings
func DefaultRAPGAParams() RAPGAParams {
	return RAPGAParams{MinPopulationSize: 2, MaxPopulationSize: 100, MaxEffort: 10000, CompFactor: 0, MutationRate: 0.03}
}

// Validate checks parameter ranges
func (p RAPGAParams) Validate() error {
	if err := positive("min population size", p.MinPopulationSize); err != nil {
		return err
	}
	if p.MaxPopulationSize < 2 || p.MaxPopulationSize < p.MinPopulationSize {
		return fmt.Errorf("%w: max population size %d must be at least 2 and not below min %d",
			ErrInvalidParameter, p.MaxPopulationSize, p.MinPopulationSize)
	}
	if err := positive("max effort", p.MaxEffort); err != nil {
		return err
	}
	if err := probability("comparison factor", p.CompFactor); err != nil {
		return err
	}
	return probability("mutation rate", p.MutationRate)
}

// RAPGA starts from maxPopulationSize/2 random individuals. Each generation
// keeps the elite and admits children that beat their parents' threshold and
// are not already in the new population, until the population is full or the
// effort budget is spent. The comparison factor grows by 1/maxPopulationSize
// per generation; the run stops once the population shrinks below the minimum.
type RAPGA struct {
	*algorithm.Engine[*solution.BitVector]

	problem    problem.BitProblem
	params     RAPGAParams
	compFactor float64

	population []*solution.BitVector
	best       bestTracker[*solution.BitVector]
}

// NewRAPGA creates the algorithm for a bit-vector problem
func NewRAPGA(p problem.BitProblem, params RAPGAParams, opts Options) (*RAPGA, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if p.NumBits() < 2 {
		return nil, fmt.Errorf("%w: crossover needs at least 2 bits, got %d", ErrInvalidParameter, p.NumBits())
	}
	return &RAPGA{
		Engine:     algorithm.NewEngine[*solution.BitVector]("RAPGA", opts.MaxSteps, opts.Logger),
		problem:    p,
		params:     params,
		compFactor: params.CompFactor,
	}, nil
}

// Run executes the algorithm until stopped, out of steps or out of diversity
func (ga *RAPGA) Run(ctx context.Context) error {
	return ga.Execute(ctx, algorithm.Hooks{Start: ga.start, Step: ga.step, End: ga.end})
}

// Best returns the best solution found
func (ga *RAPGA) Best() *solution.BitVector {
	return ga.best.best
}

// CompFactor returns the current comparison factor
func (ga *RAPGA) CompFactor() float64 {
	return ga.compFactor
}

// PopulationSize returns the current population size
func (ga *RAPGA) PopulationSize() int {
	return len(ga.population)
}

func (ga *RAPGA) start(context.Context) error {
	ga.Logf("started with parameters: maxPopulationSize = %d, minPopulationSize = %d, maxEffort = %d, compFactor = %g, mutationRate = %g",
		ga.params.MaxPopulationSize, ga.params.MinPopulationSize, ga.params.MaxEffort, ga.compFactor, ga.params.MutationRate)

	ga.population = make([]*solution.BitVector, ga.params.MaxPopulationSize/2)
	for i := range ga.population {
		ga.population[i] = ga.problem.GenerateRandom()
	}
	ga.updateBest()
	return nil
}

func (ga *RAPGA) step(context.Context) error {
	next := make([]*solution.BitVector, 0, ga.params.MaxPopulationSize)
	next = append(next, ga.population[0])

	for effort := 0; len(next) < ga.params.MaxPopulationSize && effort < ga.params.MaxEffort; effort += 2 {
		better, worse := randomPair(ga.population)

		var c1, c2 *solution.BitVector
		if rand.IntN(2) == 0 {
			c1, c2 = singlePointCrossover(better, worse)
		} else {
			c1, c2 = uniformCrossover(better, worse)
		}
		flipMutation(c1, ga.params.MutationRate)
		flipMutation(c2, ga.params.MutationRate)
		ga.problem.Evaluate(c1)
		ga.problem.Evaluate(c2)

		threshold := admissionThreshold(better.Fitness(), worse.Fitness(), ga.compFactor)
		for _, child := range []*solution.BitVector{c1, c2} {
			if child.Fitness() > threshold && !contains(next, child) {
				next = append(next, child)
			}
		}
	}
	ga.population = next

	ga.adjustCompFactor()
	ga.updateBest()
	ga.ReportPopulation(ga.population)

	if len(ga.population) < ga.params.MinPopulationSize {
		ga.Logf("population shrank to %d, stopping", len(ga.population))
		ga.Stop()
	}
	return nil
}

func (ga *RAPGA) end() {
	ga.ReportFinal(ga.best.best)
	ga.Logf("ended")
}

// contains reports whether pop already holds b's genotype
func contains(pop []*solution.BitVector, b *solution.BitVector) bool {
	return slices.ContainsFunc(pop, b.Equal)
}

func (ga *RAPGA) adjustCompFactor() {
	if ga.compFactor < 1 {
		ga.compFactor += 1 / float64(ga.params.MaxPopulationSize)
	}
	ga.compFactor = min(ga.compFactor, 1)
}

func (ga *RAPGA) updateBest() {
	solution.Sort(ga.population)
	if ga.best.offer(ga.population[0]) {
		ga.ReportBest(ga.best.best)
	}
}
