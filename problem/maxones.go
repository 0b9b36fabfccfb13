// ABOUTME: Max-ones benchmark over bit vectors
// ABOUTME: Deceptive plateau between 80% and 90% ones

package problem

import (
	"fmt"

	"popsearch/solution"
)

// MaxOnes rewards bit vectors with many set bits
type MaxOnes struct {
	numBits int
}

// NewMaxOnes creates a max-ones instance over numBits bits
func NewMaxOnes(numBits int) (*MaxOnes, error) {
	if numBits < 2 {
		return nil, fmt.Errorf("%w: max-ones needs at least 2 bits, got %d", ErrInvalidProblem, numBits)
	}
	return &MaxOnes{numBits: numBits}, nil
}

// NumBits implements BitProblem
func (m *MaxOnes) NumBits() int {
	return m.numBits
}

// Evaluate implements Adapter
func (m *MaxOnes) Evaluate(b *solution.BitVector) *solution.BitVector {
	b.SetFitness(MaxOnesFitness(b.Ones(), m.numBits))
	return b
}

// GenerateRandom implements Adapter
func (m *MaxOnes) GenerateRandom() *solution.BitVector {
	return m.Evaluate(solution.RandomBitVector(m.numBits))
}

// MaxOnesFitness maps k ones out of n bits to fitness: linear up to 0.8n,
// flat at 0.8 up to 0.9n, then rising steeply to 1 at k = n.
func MaxOnesFitness(k, n int) float64 {
	kf, nf := float64(k), float64(n)
	switch {
	case kf <= 0.8*nf:
		return kf / nf
	case kf <= 0.9*nf:
		return 0.8
	default:
		return 2*kf/nf - 1
	}
}
