// ABOUTME: Offspring-selection genetic algorithm over timetable schedules
// ABOUTME: Selection pressure adapts until producing good children gets too costly

package metaheuristic

import (
	"context"
	"fmt"
	"math/rand/v2"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// ScheduleProblem is an adapter over schedules that knows its term count
type ScheduleProblem interface {
	problem.Adapter[*solution.Schedule]
	NumTerms() int
}

// OSGAParams configures OSGA and ConcurrentOSGA
type OSGAParams struct {
	PopulationSize int     `toml:"population_size"`
	MaxSelPressure float64 `toml:"max_sel_pressure"`
	CompFactor     float64 `toml:"comp_factor"`
	SuccessRatio   float64 `toml:"success_ratio"`
	TournamentSize int     `toml:"tournament_size"`
	MutationRate   float64 `toml:"mutation_rate"`
}

// DefaultOSGAParams returns the standard settings
func DefaultOSGAParams() OSGAParams {
	return OSGAParams{
		PopulationSize: 100,
		MaxSelPressure: 25,
		CompFactor:     0,
		SuccessRatio:   0.6,
		TournamentSize: 3,
		MutationRate:   0.05,
	}
}

// Validate checks parameter ranges
func (p OSGAParams) Validate() error {
	if err := positive("population size", p.PopulationSize); err != nil {
		return err
	}
	if !(p.MaxSelPressure >= 1) {
		return fmt.Errorf("%w: max selection pressure must be at least 1, got %g", ErrInvalidParameter, p.MaxSelPressure)
	}
	if err := probability("comparison factor", p.CompFactor); err != nil {
		return err
	}
	if !(p.SuccessRatio > 0 && p.SuccessRatio <= 1) {
		return fmt.Errorf("%w: success ratio must be in (0, 1], got %g", ErrInvalidParameter, p.SuccessRatio)
	}
	if err := positive("tournament size", p.TournamentSize); err != nil {
		return err
	}
	return probability("mutation rate", p.MutationRate)
}

// generation is the outcome of one reproduction phase
type generation struct {
	good []*solution.Schedule
	bad  []*solution.Schedule
}

// OSGA breeds children until successRatio of the population has been filled
// with children beating their parents' threshold, or until the effort reaches
// maxSelPressure * populationSize. The ratio of produced to needed children
// is the selection pressure; the run ends once it reaches the maximum.
type OSGA struct {
	*algorithm.Engine[*solution.Schedule]

	problem     ScheduleProblem
	params      OSGAParams
	compFactor  float64
	selPressure float64

	population []*solution.Schedule
	best       bestTracker[*solution.Schedule]

	reproduce func(ctx context.Context) (generation, error)
}

// NewOSGA creates the sequential algorithm for a schedule problem
func NewOSGA(p ScheduleProblem, params OSGAParams, opts Options) (*OSGA, error) {
	o, err := newOSGA("OSGA", p, params, opts)
	if err != nil {
		return nil, err
	}
	o.reproduce = o.reproduceSequential
	return o, nil
}

func newOSGA(name string, p ScheduleProblem, params OSGAParams, opts Options) (*OSGA, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if p.NumTerms() < 1 {
		return nil, fmt.Errorf("%w: schedule problem has no terms", ErrInvalidParameter)
	}
	return &OSGA{
		Engine:      algorithm.NewEngine[*solution.Schedule](name, opts.MaxSteps, opts.Logger),
		problem:     p,
		params:      params,
		compFactor:  params.CompFactor,
		selPressure: 1,
	}, nil
}

// Run executes the algorithm until stopped, out of steps or out of pressure
func (o *OSGA) Run(ctx context.Context) error {
	return o.Execute(ctx, algorithm.Hooks{Start: o.start, Step: o.step, End: o.end})
}

// Best returns the best solution found
func (o *OSGA) Best() *solution.Schedule {
	return o.best.best
}

// SelectionPressure returns the pressure measured in the last generation
func (o *OSGA) SelectionPressure() float64 {
	return o.selPressure
}

// CompFactor returns the current comparison factor
func (o *OSGA) CompFactor() float64 {
	return o.compFactor
}

func (o *OSGA) start(context.Context) error {
	o.Logf("started with parameters: populationSize = %d, maxSelPressure = %g, compFactor = %g, successRatio = %g, kTour = %d, mutationRate = %g",
		o.params.PopulationSize, o.params.MaxSelPressure, o.compFactor, o.params.SuccessRatio, o.params.TournamentSize, o.params.MutationRate)

	o.population = make([]*solution.Schedule, o.params.PopulationSize)
	for i := range o.population {
		o.population[i] = o.problem.GenerateRandom()
	}
	o.selPressure = 1
	o.updateBest()
	return nil
}

func (o *OSGA) step(ctx context.Context) error {
	gen, err := o.reproduce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// cancelled mid-generation: drop the partial generation and wind down
			if !o.HasStopped() {
				o.Stop()
			}
			return nil
		}
		return err
	}

	o.selPressure = float64(len(gen.good)+len(gen.bad)) / float64(o.params.PopulationSize)
	o.adjustCompFactor()

	next := gen.good
	pad := gen.bad
	if len(pad) == 0 {
		pad = gen.good
	}
	for len(next) < o.params.PopulationSize {
		next = append(next, pad[rand.IntN(len(pad))])
	}
	o.population = next

	o.updateBest()
	o.ReportPopulation(o.population)

	if o.selPressure >= o.params.MaxSelPressure {
		o.Logf("selection pressure %.2f reached the maximum, stopping", o.selPressure)
		o.Stop()
	}
	return nil
}

func (o *OSGA) end() {
	o.ReportFinal(o.best.best)
	o.Logf("ended")
}

func (o *OSGA) reproduceSequential(context.Context) (generation, error) {
	var gen generation
	target := float64(len(o.population)) * o.params.SuccessRatio
	effortCap := o.params.MaxSelPressure * float64(o.params.PopulationSize)

	for float64(len(gen.good)) < target && float64(len(gen.good)+len(gen.bad)) < effortCap {
		c1, c2, threshold := o.breed()
		for _, child := range []*solution.Schedule{c1, c2} {
			if child.Fitness() > threshold {
				gen.good = append(gen.good, child)
			} else {
				gen.bad = append(gen.bad, child)
			}
		}
	}
	return gen, nil
}

// breed selects two parents by k-tournament, recombines and mutates them and
// returns both evaluated children with the admission threshold for them.
// Safe to call from several goroutines during a reproduction phase.
func (o *OSGA) breed() (*solution.Schedule, *solution.Schedule, float64) {
	better, worse := orderPair(
		tournamentK(o.population, o.params.TournamentSize),
		tournamentK(o.population, o.params.TournamentSize),
	)

	var c1, c2 *solution.Schedule
	if rand.IntN(2) == 0 {
		c1, c2 = scheduleSinglePointCrossover(better, worse)
	} else {
		c1, c2 = scheduleUniformCrossover(better, worse)
	}
	scheduleMutation(c1, o.params.MutationRate, o.problem.NumTerms())
	scheduleMutation(c2, o.params.MutationRate, o.problem.NumTerms())
	o.problem.Evaluate(c1)
	o.problem.Evaluate(c2)

	return c1, c2, admissionThreshold(better.Fitness(), worse.Fitness(), o.compFactor)
}

func (o *OSGA) adjustCompFactor() {
	if o.compFactor < 1 {
		o.compFactor += 1 / (o.selPressure * float64(o.params.PopulationSize))
	}
	o.compFactor = min(o.compFactor, 1)
}

func (o *OSGA) updateBest() {
	solution.Sort(o.population)
	if o.best.offer(o.population[0]) {
		o.ReportBest(o.best.best)
	}
}
