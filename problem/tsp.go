// ABOUTME: Symmetric Euclidean travelling-salesman problem
// ABOUTME: Distance matrix, tour evaluation and the greedy nearest-neighbour tour

package problem

import (
	"fmt"
	"math"
	"math/rand/v2"

	"popsearch/solution"
)

// Town is a named point in the plane
type Town struct {
	Name string
	X    float64
	Y    float64
}

// DistanceTo returns the Euclidean distance between two towns
func (t Town) DistanceTo(o Town) float64 {
	return math.Hypot(t.X-o.X, t.Y-o.Y)
}

// TSP holds a town set and its precomputed distance matrix
type TSP struct {
	towns     []Town
	distances [][]float64
	greedy    *solution.Permutation
}

// NewTSP builds an instance over at least three towns
func NewTSP(towns []Town) (*TSP, error) {
	if len(towns) < 3 {
		return nil, fmt.Errorf("%w: a tour needs at least 3 towns, got %d", ErrInvalidProblem, len(towns))
	}

	n := len(towns)
	p := &TSP{
		towns:     append([]Town(nil), towns...),
		distances: make([][]float64, n),
	}
	for i := range n {
		p.distances[i] = make([]float64, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := towns[i].DistanceTo(towns[j])
			p.distances[i][j] = d
			p.distances[j][i] = d
		}
	}
	p.greedy = p.buildGreedyPath()
	return p, nil
}

// RandomTowns scatters n towns uniformly over a size x size square
func RandomTowns(n int, size float64) []Town {
	towns := make([]Town, n)
	for i := range towns {
		towns[i] = Town{
			Name: fmt.Sprintf("T%d", i+1),
			X:    rand.Float64() * size,
			Y:    rand.Float64() * size,
		}
	}
	return towns
}

// NumTowns returns the number of towns
func (p *TSP) NumTowns() int {
	return len(p.towns)
}

// Towns returns the town list. Read-only.
func (p *TSP) Towns() []Town {
	return p.towns
}

// Distance returns the distance between towns i and j
func (p *TSP) Distance(i, j int) float64 {
	return p.distances[i][j]
}

// PathLength sums the edges of a closed tour
func (p *TSP) PathLength(path []int) float64 {
	length := 0.0
	for i := 1; i < len(path); i++ {
		length += p.distances[path[i-1]][path[i]]
	}
	return length + p.distances[path[len(path)-1]][path[0]]
}

// Evaluate implements Adapter
func (p *TSP) Evaluate(s *solution.Permutation) *solution.Permutation {
	s.SetLength(p.PathLength(s.Path))
	return s
}

// GenerateRandom implements Adapter
func (p *TSP) GenerateRandom() *solution.Permutation {
	s := solution.IdentityPermutation(len(p.towns))
	rand.Shuffle(len(s.Path), s.Swap)
	return p.Evaluate(s)
}

// GreedyPath returns a copy of the nearest-neighbour tour starting at town 0
func (p *TSP) GreedyPath() *solution.Permutation {
	return p.greedy.Copy()
}

func (p *TSP) buildGreedyPath() *solution.Permutation {
	n := len(p.towns)
	visited := make([]bool, n)
	path := make([]int, 0, n)

	current := 0
	visited[current] = true
	path = append(path, current)
	for len(path) < n {
		next, nearest := -1, math.Inf(1)
		for j := range n {
			if !visited[j] && p.distances[current][j] < nearest {
				next, nearest = j, p.distances[current][j]
			}
		}
		visited[next] = true
		path = append(path, next)
		current = next
	}

	return p.Evaluate(solution.NewPermutation(path))
}
