// ABOUTME: Steady-state genetic algorithm over real vectors
// ABOUTME: One child per step replaces the worst of three random individuals

package metaheuristic

import (
	"context"
	"fmt"
	"math/rand/v2"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// SteadyStateParams configures SteadyStateGA
type SteadyStateParams struct {
	PopulationSize int `toml:"population_size"`
	// MutationIntensity divides the domain width to give the Gaussian step scale
	MutationIntensity float64 `toml:"mutation_intensity"`
}

// DefaultSteadyStateParams returns the standard settings
func DefaultSteadyStateParams() SteadyStateParams {
	return SteadyStateParams{PopulationSize: 50, MutationIntensity: 30}
}

// Validate checks parameter ranges
func (p SteadyStateParams) Validate() error {
	if p.PopulationSize < 3 {
		return fmt.Errorf("%w: population size must be at least 3, got %d", ErrInvalidParameter, p.PopulationSize)
	}
	return positiveFloat("mutation intensity", p.MutationIntensity)
}

// SteadyStateGA picks three distinct individuals, averages the best two,
// mutates the child with Gaussian noise and lets it replace the worst one.
type SteadyStateGA struct {
	*algorithm.Engine[*solution.RealVector]

	problem *problem.VectorFunction
	params  SteadyStateParams

	population []*solution.RealVector
	best       bestTracker[*solution.RealVector]
}

// NewSteadyStateGA creates the algorithm for a real-vector problem
func NewSteadyStateGA(p *problem.VectorFunction, params SteadyStateParams, opts Options) (*SteadyStateGA, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &SteadyStateGA{
		Engine:  algorithm.NewEngine[*solution.RealVector]("SteadyStateGA", opts.MaxSteps, opts.Logger),
		problem: p,
		params:  params,
	}, nil
}

// Run executes the algorithm until stopped or out of steps
func (ga *SteadyStateGA) Run(ctx context.Context) error {
	return ga.Execute(ctx, algorithm.Hooks{Start: ga.start, Step: ga.step, End: ga.end})
}

// Best returns the best solution found
func (ga *SteadyStateGA) Best() *solution.RealVector {
	return ga.best.best
}

func (ga *SteadyStateGA) start(context.Context) error {
	ga.Logf("started with parameters: populationSize = %d, mutationIntensity = %g",
		ga.params.PopulationSize, ga.params.MutationIntensity)

	ga.population = make([]*solution.RealVector, ga.params.PopulationSize)
	for i := range ga.population {
		ga.population[i] = ga.problem.GenerateRandom()
	}
	ga.offerBest(solution.Best(ga.population))
	return nil
}

func (ga *SteadyStateGA) step(context.Context) error {
	// indices of three distinct individuals, sorted best first
	picks := rand.Perm(len(ga.population))[:3]
	trio := []int{picks[0], picks[1], picks[2]}
	for i := 1; i < len(trio); i++ {
		for j := i; j > 0 && solution.Better(ga.population[trio[j]], ga.population[trio[j-1]]); j-- {
			trio[j], trio[j-1] = trio[j-1], trio[j]
		}
	}

	child := arithmeticMean(ga.population[trio[0]], ga.population[trio[1]])
	gaussianMutation(child, ga.problem.Bounds(), ga.params.MutationIntensity)
	ga.problem.Evaluate(child)

	ga.population[trio[2]] = child
	ga.offerBest(child)
	ga.ReportPopulation(ga.population)
	return nil
}

func (ga *SteadyStateGA) end() {
	ga.ReportFinal(ga.best.best)
	ga.Logf("ended")
}

func (ga *SteadyStateGA) offerBest(candidate *solution.RealVector) {
	if ga.best.offer(candidate) {
		ga.ReportBest(ga.best.best)
	}
}
