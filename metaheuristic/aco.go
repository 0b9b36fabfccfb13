// ABOUTME: Ant colony system for the travelling-salesman problem
// ABOUTME: Roulette path construction over a symmetric pheromone matrix

package metaheuristic

import (
	"context"
	"math"
	"math/rand/v2"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// ACOParams configures AntColonySystem
type ACOParams struct {
	ColonySize int     `toml:"colony_size"`
	Alpha      float64 `toml:"alpha"`
	Beta       float64 `toml:"beta"`
	Rho        float64 `toml:"rho"`
}

// DefaultACOParams returns the standard settings
func DefaultACOParams() ACOParams {
	return ACOParams{ColonySize: 50, Alpha: 1, Beta: 2, Rho: 0.5}
}

// Validate checks parameter ranges
func (p ACOParams) Validate() error {
	if err := positive("colony size", p.ColonySize); err != nil {
		return err
	}
	if err := probability("evaporation rate", p.Rho); err != nil {
		return err
	}
	if err := positiveFloat("alpha", p.Alpha); err != nil {
		return err
	}
	return positiveFloat("beta", p.Beta)
}

// AntColonySystem lets every ant build a tour by roulette selection weighted
// by pheromone^alpha * (1/distance)^beta. After each step ants deposit
// 1/length on every edge they used, all trails evaporate by (1 - rho), and
// the edge weights are recomputed for the next step.
type AntColonySystem struct {
	*algorithm.Engine[*solution.Permutation]

	problem *problem.TSP
	params  ACOParams
	n       int

	ants       []*solution.Permutation
	heuristics [][]float64
	pheromones [][]float64
	weights    [][]float64
	available  []int

	best bestTracker[*solution.Permutation]
}

// NewAntColonySystem creates the algorithm for a TSP instance
func NewAntColonySystem(p *problem.TSP, params ACOParams, opts Options) (*AntColonySystem, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := p.NumTowns()
	aco := &AntColonySystem{
		Engine:     algorithm.NewEngine[*solution.Permutation]("AntColonySystem", opts.MaxSteps, opts.Logger),
		problem:    p,
		params:     params,
		n:          n,
		ants:       make([]*solution.Permutation, params.ColonySize),
		heuristics: square(n),
		pheromones: square(n),
		weights:    square(n),
		available:  make([]int, n),
	}
	for i := range aco.ants {
		aco.ants[i] = solution.IdentityPermutation(n)
	}
	for i := range aco.available {
		aco.available[i] = i
	}

	greedy := p.GreedyPath()
	initial := 1 / greedy.Length
	for i := range n {
		for j := i + 1; j < n; j++ {
			h := math.Pow(1/p.Distance(i, j), params.Beta)
			aco.heuristics[i][j], aco.heuristics[j][i] = h, h
			aco.pheromones[i][j], aco.pheromones[j][i] = initial, initial
		}
	}
	aco.updateWeights()
	aco.best.offer(greedy)
	return aco, nil
}

func square(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Run executes the algorithm until stopped or out of steps
func (aco *AntColonySystem) Run(ctx context.Context) error {
	return aco.Execute(ctx, algorithm.Hooks{Start: aco.start, Step: aco.step, End: aco.end})
}

// Best returns the shortest tour found
func (aco *AntColonySystem) Best() *solution.Permutation {
	return aco.best.best
}

// Pheromone returns the trail strength on edge (i, j)
func (aco *AntColonySystem) Pheromone(i, j int) float64 {
	return aco.pheromones[i][j]
}

func (aco *AntColonySystem) start(context.Context) error {
	aco.Logf("started with parameters: colonySize = %d, alpha = %g, beta = %g, rho = %g",
		aco.params.ColonySize, aco.params.Alpha, aco.params.Beta, aco.params.Rho)
	aco.ReportBest(aco.best.best)
	return nil
}

func (aco *AntColonySystem) step(context.Context) error {
	for _, ant := range aco.ants {
		aco.buildTour(ant)
		aco.problem.Evaluate(ant)
	}

	aco.deposit()
	aco.evaporate()
	aco.updateWeights()

	if aco.best.offer(solution.Best(aco.ants)) {
		aco.ReportBest(aco.best.best)
	}
	aco.ReportPopulation(aco.ants)
	return nil
}

func (aco *AntColonySystem) end() {
	aco.ReportFinal(aco.best.best)
	aco.Logf("ended")
}

// buildTour fills ant.Path: a random first town, then a roulette walk over
// the unvisited towns kept in available[step:]
func (aco *AntColonySystem) buildTour(ant *solution.Permutation) {
	avail := aco.available
	rand.Shuffle(len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })
	ant.Path[0] = avail[0]

	for step := 1; step < aco.n-1; step++ {
		row := aco.weights[ant.Path[step-1]]

		total := 0.0
		for _, town := range avail[step:] {
			total += row[town]
		}

		pick := aco.n - 1
		target := rand.Float64() * total
		acc := 0.0
		for i := step; i < aco.n; i++ {
			acc += row[avail[i]]
			if target <= acc {
				pick = i
				break
			}
		}

		ant.Path[step] = avail[pick]
		avail[step], avail[pick] = avail[pick], avail[step]
	}
	ant.Path[aco.n-1] = avail[aco.n-1]
}

// deposit adds 1/length to every edge of every ant's closed tour
func (aco *AntColonySystem) deposit() {
	for _, ant := range aco.ants {
		delta := 1 / ant.Length
		for i := range aco.n {
			from, to := ant.Path[i], ant.Path[(i+1)%aco.n]
			aco.pheromones[from][to] += delta
			aco.pheromones[to][from] = aco.pheromones[from][to]
		}
	}
}

func (aco *AntColonySystem) evaporate() {
	keep := 1 - aco.params.Rho
	for i := range aco.n {
		for j := i + 1; j < aco.n; j++ {
			aco.pheromones[i][j] *= keep
			aco.pheromones[j][i] = aco.pheromones[i][j]
		}
	}
}

func (aco *AntColonySystem) updateWeights() {
	for i := range aco.n {
		for j := i + 1; j < aco.n; j++ {
			w := math.Pow(aco.pheromones[i][j], aco.params.Alpha) * aco.heuristics[i][j]
			aco.weights[i][j], aco.weights[j][i] = w, w
		}
	}
}
