// ABOUTME: Selection, recombination and mutation operators
// ABOUTME: Bit vectors, real vectors, schedules and permutations

package metaheuristic

import (
	"math/rand/v2"

	"popsearch/problem"
	"popsearch/solution"
)

// tournament2 picks two members at random and returns the fitter one,
// the second on ties
func tournament2[S solution.Solution](pop []S) S {
	first := pop[rand.IntN(len(pop))]
	second := pop[rand.IntN(len(pop))]
	if first.Fitness() > second.Fitness() {
		return first
	}
	return second
}

// tournamentK picks k members at random (with replacement) and returns the fittest
func tournamentK[S solution.Solution](pop []S, k int) S {
	best := pop[rand.IntN(len(pop))]
	for range k - 1 {
		if c := pop[rand.IntN(len(pop))]; solution.Better(c, best) {
			best = c
		}
	}
	return best
}

// orderPair returns a and b with the fitter one first
func orderPair[S solution.Solution](a, b S) (S, S) {
	if b.Fitness() > a.Fitness() {
		return b, a
	}
	return a, b
}

// randomPair draws two parents uniformly, fitter first
func randomPair[S solution.Solution](pop []S) (S, S) {
	return orderPair(pop[rand.IntN(len(pop))], pop[rand.IntN(len(pop))])
}

// admissionThreshold interpolates between the worse and the better parent:
// compFactor 0 admits anything beating the worse parent, 1 requires beating both
func admissionThreshold(better, worse, compFactor float64) float64 {
	return worse + (better-worse)*compFactor
}

// singlePointCrossover swaps tails after a cut in [1, n-1]
func singlePointCrossover(p1, p2 *solution.BitVector) (*solution.BitVector, *solution.BitVector) {
	n := p1.Len()
	c1, c2 := solution.NewBitVector(n), solution.NewBitVector(n)
	cut := rand.IntN(n-1) + 1
	copy(c1.Bits[:cut], p1.Bits[:cut])
	copy(c2.Bits[:cut], p2.Bits[:cut])
	copy(c1.Bits[cut:], p2.Bits[cut:])
	copy(c2.Bits[cut:], p1.Bits[cut:])
	return c1, c2
}

// uniformCrossover exchanges each gene on a coin flip
func uniformCrossover(p1, p2 *solution.BitVector) (*solution.BitVector, *solution.BitVector) {
	n := p1.Len()
	c1, c2 := solution.NewBitVector(n), solution.NewBitVector(n)
	for i := range n {
		if rand.IntN(2) == 0 {
			c1.Bits[i], c2.Bits[i] = p1.Bits[i], p2.Bits[i]
		} else {
			c1.Bits[i], c2.Bits[i] = p2.Bits[i], p1.Bits[i]
		}
	}
	return c1, c2
}

// flipMutation flips every bit independently with probability rate
func flipMutation(b *solution.BitVector, rate float64) {
	for i := range b.Bits {
		if rand.Float64() < rate {
			b.Flip(i)
		}
	}
}

// arithmeticMean returns the unevaluated midpoint of two vectors
func arithmeticMean(a, b *solution.RealVector) *solution.RealVector {
	child := solution.NewRealVector(a.Values)
	for i := range child.Values {
		child.Values[i] = (a.Values[i] + b.Values[i]) / 2
	}
	return child
}

// gaussianMutation adds N(0, 1) * interval / intensity to every component,
// wrapping values that leave the bounds
func gaussianMutation(v *solution.RealVector, bounds problem.Bounds, intensity float64) {
	scale := bounds.Interval() / intensity
	for i := range v.Values {
		v.Values[i] = bounds.Wrap(v.Values[i] + rand.NormFloat64()*scale)
	}
}

// scheduleUniformCrossover sends each of p1's entries to a random child,
// then completes both children from p2 so each covers every team once
func scheduleUniformCrossover(p1, p2 *solution.Schedule) (*solution.Schedule, *solution.Schedule) {
	c1 := make(map[string]int, len(p1.Assignment))
	c2 := make(map[string]int, len(p1.Assignment))
	for _, team := range p1.Teams() {
		if rand.IntN(2) == 0 {
			c1[team] = p1.Assignment[team]
		} else {
			c2[team] = p1.Assignment[team]
		}
	}
	completeFrom(p2, c1, c2)
	return &solution.Schedule{Assignment: c1}, &solution.Schedule{Assignment: c2}
}

// scheduleSinglePointCrossover gives the first k teams of p1 to the first child
func scheduleSinglePointCrossover(p1, p2 *solution.Schedule) (*solution.Schedule, *solution.Schedule) {
	c1 := make(map[string]int, len(p1.Assignment))
	c2 := make(map[string]int, len(p1.Assignment))
	k := rand.IntN(len(p1.Assignment))
	for i, team := range p1.Teams() {
		if i < k {
			c1[team] = p1.Assignment[team]
		} else {
			c2[team] = p1.Assignment[team]
		}
	}
	completeFrom(p2, c1, c2)
	return &solution.Schedule{Assignment: c1}, &solution.Schedule{Assignment: c2}
}

func completeFrom(p2 *solution.Schedule, c1, c2 map[string]int) {
	for _, team := range p2.Teams() {
		if _, taken := c1[team]; !taken {
			c1[team] = p2.Assignment[team]
		} else {
			c2[team] = p2.Assignment[team]
		}
	}
}

// scheduleMutation reassigns each team to a random term with probability rate
func scheduleMutation(s *solution.Schedule, rate float64, numTerms int) {
	for _, team := range s.Teams() {
		if rand.Float64() < rate {
			s.Assignment[team] = rand.IntN(numTerms)
		}
	}
}

// distinctOrderedPair draws i < j uniformly from [0, n)
func distinctOrderedPair(n int) (int, int) {
	i := rand.IntN(n)
	j := rand.IntN(n - 1)
	if j >= i {
		j++
	}
	if i > j {
		i, j = j, i
	}
	return i, j
}

// permutationMove applies a swap or a segment reversal with equal odds
func permutationMove(p *solution.Permutation) {
	i, j := distinctOrderedPair(len(p.Path))
	if rand.IntN(2) == 0 {
		p.Swap(i, j)
	} else {
		p.Reverse(i, j)
	}
}
