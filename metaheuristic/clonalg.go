// ABOUTME: Clonal selection algorithm (CLONALG) for the travelling-salesman problem
// ABOUTME: Rank-proportional cloning with rank-scaled hypermutation

package metaheuristic

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// ClonAlgParams configures ClonAlg
type ClonAlgParams struct {
	PopulationSize int `toml:"population_size"`
	// SelectFraction of the sorted antibodies get cloned
	SelectFraction float64 `toml:"select_fraction"`
	// BirthFraction of each new population is replaced by random antibodies
	BirthFraction float64 `toml:"birth_fraction"`
	// Beta scales the number of clones: rank i gets int(beta * N / i)
	Beta float64 `toml:"beta"`
	// Rho scales the hypermutation rate
	Rho float64 `toml:"rho"`
}

// DefaultClonAlgParams returns the standard settings
func DefaultClonAlgParams() ClonAlgParams {
	return ClonAlgParams{PopulationSize: 200, SelectFraction: 1, BirthFraction: 0.2, Beta: 10, Rho: 0.4}
}

// Validate checks parameter ranges
func (p ClonAlgParams) Validate() error {
	if p.PopulationSize < 2 {
		return fmt.Errorf("%w: population size must be at least 2, got %d", ErrInvalidParameter, p.PopulationSize)
	}
	if int(p.SelectFraction*float64(p.PopulationSize)) < 1 || p.SelectFraction > 1 {
		return fmt.Errorf("%w: select fraction %g selects no antibodies", ErrInvalidParameter, p.SelectFraction)
	}
	if err := probability("birth fraction", p.BirthFraction); err != nil {
		return err
	}
	if err := positiveFloat("beta", p.Beta); err != nil {
		return err
	}
	if !(p.Rho > 0 && p.Rho < 1) {
		return fmt.Errorf("%w: rho must be in (0, 1), got %g", ErrInvalidParameter, p.Rho)
	}
	return nil
}

// ClonAlg clones the antibody of rank i int(beta * N / i) times. Every clone
// except the very first copy of the best antibody receives
// int(1 + n * rho * (1 - exp(-i / tau))) swap or reversal moves, with
// tau = (1 - N) / ln(1 - rho). The next population takes the best clones and
// a birthFraction share of fresh random tours.
type ClonAlg struct {
	*algorithm.Engine[*solution.Permutation]

	problem     *problem.TSP
	params      ClonAlgParams
	tau         float64
	numSelected int

	antibodies []*solution.Permutation
	clones     []*solution.Permutation
	best       bestTracker[*solution.Permutation]
}

// NewClonAlg creates the algorithm for a TSP instance
func NewClonAlg(p *problem.TSP, params ClonAlgParams, opts Options) (*ClonAlg, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := &ClonAlg{
		Engine:      algorithm.NewEngine[*solution.Permutation]("ClonAlg", opts.MaxSteps, opts.Logger),
		problem:     p,
		params:      params,
		tau:         float64(1-params.PopulationSize) / math.Log(1-params.Rho),
		numSelected: int(params.SelectFraction * float64(params.PopulationSize)),
	}

	numClones := 0
	for rank := 1; rank <= c.numSelected; rank++ {
		numClones += c.clonesFor(rank)
	}
	c.clones = make([]*solution.Permutation, numClones)
	for i := range c.clones {
		c.clones[i] = solution.IdentityPermutation(p.NumTowns())
	}

	c.antibodies = make([]*solution.Permutation, params.PopulationSize)
	c.antibodies[0] = p.GreedyPath()
	for i := 1; i < len(c.antibodies); i++ {
		c.antibodies[i] = p.GenerateRandom()
	}
	return c, nil
}

// Run executes the algorithm until stopped or out of steps
func (c *ClonAlg) Run(ctx context.Context) error {
	return c.Execute(ctx, algorithm.Hooks{Start: c.start, Step: c.step, End: c.end})
}

// Best returns the shortest tour found
func (c *ClonAlg) Best() *solution.Permutation {
	return c.best.best
}

// NumClones returns the size of the clone pool built every step
func (c *ClonAlg) NumClones() int {
	return len(c.clones)
}

func (c *ClonAlg) clonesFor(rank int) int {
	return int(c.params.Beta * float64(c.params.PopulationSize) / float64(rank))
}

func (c *ClonAlg) mutationsFor(rank int) int {
	return int(1 + float64(c.problem.NumTowns())*c.params.Rho*(1-math.Exp(-float64(rank)/c.tau)))
}

func (c *ClonAlg) start(context.Context) error {
	c.Logf("started with parameters: populationSize = %d, selectFraction = %g, birthFraction = %g, beta = %g, rho = %g",
		c.params.PopulationSize, c.params.SelectFraction, c.params.BirthFraction, c.params.Beta, c.params.Rho)
	c.updateBest()
	return nil
}

func (c *ClonAlg) step(context.Context) error {
	c.cloneAndMutate()
	c.renewPopulation()
	c.updateBest()
	c.ReportPopulation(c.antibodies)
	return nil
}

func (c *ClonAlg) end() {
	c.ReportFinal(c.best.best)
	c.Logf("ended")
}

func (c *ClonAlg) cloneAndMutate() {
	solution.Sort(c.antibodies)

	idx := 0
	for i := range c.numSelected {
		rank := i + 1
		original := c.antibodies[i]
		moves := c.mutationsFor(rank)
		for range c.clonesFor(rank) {
			clone := c.clones[idx]
			clone.CopyFrom(original)
			if idx > 0 {
				for range moves {
					permutationMove(clone)
				}
			}
			c.problem.Evaluate(clone)
			idx++
		}
	}
}

// renewPopulation keeps the best clones and injects random antibodies
func (c *ClonAlg) renewPopulation() {
	solution.Sort(c.clones)

	births := int(float64(c.params.PopulationSize) * c.params.BirthFraction)
	kept := min(c.params.PopulationSize-births, len(c.clones))

	for i, antibody := range c.antibodies {
		if i < kept {
			antibody.CopyFrom(c.clones[i])
			continue
		}
		rand.Shuffle(len(antibody.Path), antibody.Swap)
		c.problem.Evaluate(antibody)
	}
}

func (c *ClonAlg) updateBest() {
	if c.best.offer(solution.Best(c.antibodies)) {
		c.ReportBest(c.best.best)
	}
}
