// ABOUTME: Generational elitist genetic algorithm over bit vectors
// ABOUTME: Parents and children compete together; the best N survive

package metaheuristic

import (
	"context"
	"fmt"
	"slices"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// ElitistGAParams configures ElitistGA
type ElitistGAParams struct {
	PopulationSize    int     `toml:"population_size"`
	ProcreationFactor float64 `toml:"procreation_factor"`
	MutationRate      float64 `toml:"mutation_rate"`
}

// DefaultElitistGAParams returns the standard settings
func DefaultElitistGAParams() ElitistGAParams {
	return ElitistGAParams{PopulationSize: 50, ProcreationFactor: 2, MutationRate: 0.03}
}

// Validate checks parameter ranges
func (p ElitistGAParams) Validate() error {
	if err := positive("population size", p.PopulationSize); err != nil {
		return err
	}
	if err := positiveFloat("procreation factor", p.ProcreationFactor); err != nil {
		return err
	}
	return probability("mutation rate", p.MutationRate)
}

// ElitistGA breeds int(procreationFactor * N) children per generation with
// 2-tournament selection, single-point crossover and bit-flip mutation, then
// keeps the best N of parents and children together.
type ElitistGA struct {
	*algorithm.Engine[*solution.BitVector]

	problem        problem.BitProblem
	params         ElitistGAParams
	childrenPerGen int

	population []*solution.BitVector
	best       bestTracker[*solution.BitVector]
}

// NewElitistGA creates the algorithm for a bit-vector problem
func NewElitistGA(p problem.BitProblem, params ElitistGAParams, opts Options) (*ElitistGA, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if p.NumBits() < 2 {
		return nil, fmt.Errorf("%w: crossover needs at least 2 bits, got %d", ErrInvalidParameter, p.NumBits())
	}
	return &ElitistGA{
		Engine:         algorithm.NewEngine[*solution.BitVector]("ElitistGA", opts.MaxSteps, opts.Logger),
		problem:        p,
		params:         params,
		childrenPerGen: max(int(params.ProcreationFactor*float64(params.PopulationSize)), 1),
	}, nil
}

// Run executes the algorithm until stopped or out of steps
func (ga *ElitistGA) Run(ctx context.Context) error {
	return ga.Execute(ctx, algorithm.Hooks{Start: ga.start, Step: ga.step, End: ga.end})
}

// Best returns the best solution found
func (ga *ElitistGA) Best() *solution.BitVector {
	return ga.best.best
}

// Population returns the current population. Read-only, algorithm goroutine only.
func (ga *ElitistGA) Population() []*solution.BitVector {
	return ga.population
}

func (ga *ElitistGA) start(context.Context) error {
	ga.Logf("started with parameters: populationSize = %d, procreationFactor = %g, mutationRate = %g",
		ga.params.PopulationSize, ga.params.ProcreationFactor, ga.params.MutationRate)

	ga.population = make([]*solution.BitVector, ga.params.PopulationSize)
	for i := range ga.population {
		ga.population[i] = ga.problem.GenerateRandom()
	}
	ga.updateBest()
	return nil
}

func (ga *ElitistGA) step(context.Context) error {
	children := make([]*solution.BitVector, 0, ga.childrenPerGen+1)
	for len(children) < ga.childrenPerGen {
		c1, c2 := singlePointCrossover(tournament2(ga.population), tournament2(ga.population))
		flipMutation(c1, ga.params.MutationRate)
		flipMutation(c2, ga.params.MutationRate)
		children = append(children, ga.problem.Evaluate(c1), ga.problem.Evaluate(c2))
	}

	merged := slices.Concat(ga.population, children)
	solution.Sort(merged)
	ga.population = slices.Clip(merged[:ga.params.PopulationSize])

	ga.updateBest()
	ga.ReportPopulation(ga.population)
	return nil
}

func (ga *ElitistGA) end() {
	ga.ReportFinal(ga.best.best)
	ga.Logf("ended")
}

// updateBest sorts the population and promotes its head on strict improvement
func (ga *ElitistGA) updateBest() {
	solution.Sort(ga.population)
	if ga.best.offer(ga.population[0]) {
		ga.ReportBest(ga.best.best)
	}
}
