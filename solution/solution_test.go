// ABOUTME: Tests for the solution contract and its variants
// ABOUTME: Covers fitness ordering, deep clone semantics and shape mismatches

package solution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluated[S Solution](s S, f float64) S {
	s.SetFitness(f)
	return s
}

// TestCompare_HigherFitnessFirst tests the descending order
func TestCompare_HigherFitnessFirst(t *testing.T) {
	a := evaluated(NewBitVector(4), 3)
	b := evaluated(NewBitVector(4), 1)

	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
}

// TestCompare_EqualFitnessIgnoresGenotype tests that ties compare equal
func TestCompare_EqualFitnessIgnoresGenotype(t *testing.T) {
	a := evaluated(&BitVector{Bits: []byte{1, 1, 1}}, 0.5)
	b := evaluated(&BitVector{Bits: []byte{0, 0, 0}}, 0.5)

	assert.Zero(t, Compare(a, b))
	assert.False(t, Better(a, b))
	assert.False(t, a.Equal(b))
}

// TestUnevaluatedIsWorst tests that a fresh solution loses to any evaluated one
func TestUnevaluatedIsWorst(t *testing.T) {
	fresh := NewRealVector([]float64{1, 2})
	bad := evaluated(NewRealVector([]float64{1, 2}), -1e300)

	assert.True(t, math.IsInf(fresh.Fitness(), -1))
	assert.False(t, fresh.Evaluated())
	assert.True(t, Better(bad, fresh))

	var zero BitVector
	assert.True(t, math.IsInf(zero.Fitness(), -1), "zero value must be unevaluated")
}

// TestSort_BestFirst tests population sorting and Best
func TestSort_BestFirst(t *testing.T) {
	pop := []*Permutation{
		evaluated(NewPermutation([]int{0, 1, 2}), -5),
		evaluated(NewPermutation([]int{1, 0, 2}), -1),
		NewPermutation([]int{2, 1, 0}),
		evaluated(NewPermutation([]int{0, 2, 1}), -3),
	}

	assert.Equal(t, -1.0, Best(pop).Fitness())

	Sort(pop)
	assert.Equal(t, -1.0, pop[0].Fitness())
	assert.Equal(t, -3.0, pop[1].Fitness())
	assert.Equal(t, -5.0, pop[2].Fitness())
	assert.True(t, math.IsInf(pop[3].Fitness(), -1))
}

// TestSummarise tests population statistics
func TestSummarise(t *testing.T) {
	pop := []*BitVector{
		evaluated(NewBitVector(1), 1),
		evaluated(NewBitVector(1), 3),
		NewBitVector(1),
	}

	st := Summarise(pop)
	assert.Equal(t, 3, st.Size)
	assert.Equal(t, 3.0, st.Best)
	assert.True(t, math.IsInf(st.Worst, -1))
	assert.Equal(t, 2.0, st.Mean)
}

// TestClone_IsValueCopy tests that mutating a source never leaks into its clone
func TestClone_IsValueCopy(t *testing.T) {
	t.Run("bit vector", func(t *testing.T) {
		src := evaluated(&BitVector{Bits: []byte{0, 1, 0}}, 0.3)
		c := src.Clone().(*BitVector)
		src.Flip(0)
		src.SetFitness(0.9)
		assert.Equal(t, []byte{0, 1, 0}, c.Bits)
		assert.Equal(t, 0.3, c.Fitness())
	})

	t.Run("real vector", func(t *testing.T) {
		src := evaluated(NewRealVector([]float64{1, 2}), 7)
		dst := NewRealVector(nil)
		require.NoError(t, dst.CloneFrom(src))
		src.Values[0] = 99
		assert.Equal(t, []float64{1, 2}, dst.Values)
		assert.Equal(t, 7.0, dst.Fitness())
	})

	t.Run("particle", func(t *testing.T) {
		src := NewParticle([]float64{1, 1}, []float64{0.5, -0.5})
		src.SetFitness(2)
		dst := &Particle{}
		require.NoError(t, dst.CloneFrom(src))
		src.Values[1] = 42
		src.Velocity[0] = 42
		src.SetFitness(10)
		assert.Equal(t, []float64{1, 1}, dst.Values)
		assert.Equal(t, []float64{0.5, -0.5}, dst.Velocity)
		assert.Equal(t, 2.0, dst.Best().Fitness())
	})

	t.Run("permutation", func(t *testing.T) {
		src := NewPermutation([]int{0, 1, 2, 3})
		src.SetLength(12)
		c := src.Copy()
		src.Swap(0, 3)
		assert.Equal(t, []int{0, 1, 2, 3}, c.Path)
		assert.Equal(t, 12.0, c.Length)
		assert.Equal(t, -12.0, c.Fitness())
	})

	t.Run("schedule", func(t *testing.T) {
		src := evaluated(NewSchedule(map[string]int{"a": 1, "b": 2}), -30)
		dst := NewSchedule(nil)
		require.NoError(t, dst.CloneFrom(src))
		src.Assignment["a"] = 5
		assert.Equal(t, 1, dst.Assignment["a"])
		assert.Equal(t, -30.0, dst.Fitness())
	})
}

// TestCloneFrom_ShapeMismatch tests cloning across variants
func TestCloneFrom_ShapeMismatch(t *testing.T) {
	cases := []struct {
		name string
		dst  Solution
		src  Solution
	}{
		{"bits from reals", NewBitVector(2), NewRealVector([]float64{1})},
		{"reals from particle", NewRealVector(nil), NewParticle([]float64{1}, []float64{0})},
		{"particle from reals", &Particle{}, NewRealVector([]float64{1})},
		{"permutation from schedule", NewPermutation(nil), NewSchedule(nil)},
		{"schedule from bits", NewSchedule(nil), NewBitVector(1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.dst.CloneFrom(tc.src), ErrShapeMismatch)
		})
	}
}

// TestParticle_BestOnStrictImprovement tests historical best promotion
func TestParticle_BestOnStrictImprovement(t *testing.T) {
	p := NewParticle([]float64{0, 0}, []float64{0, 0})
	p.SetFitness(5)
	assert.Equal(t, 5.0, p.Best().Fitness())

	p.Values[0] = 1
	p.SetFitness(5)
	assert.Equal(t, []float64{0, 0}, p.Best().Values, "tie must not replace best")

	p.SaveLast()
	p.Values[0] = 2
	p.SetFitness(6)
	assert.Equal(t, []float64{2, 0}, p.Best().Values)
	assert.Equal(t, []float64{1, 0}, p.Last().Values)
}

// TestPermutation_ReverseAndValid tests segment reversal
func TestPermutation_ReverseAndValid(t *testing.T) {
	p := IdentityPermutation(6)
	p.Reverse(1, 4)
	assert.Equal(t, []int{0, 4, 3, 2, 1, 5}, p.Path)
	assert.True(t, p.Valid())

	p.Path[0] = 4
	assert.False(t, p.Valid())
}

// TestSchedule_TeamsSorted tests deterministic key order
func TestSchedule_TeamsSorted(t *testing.T) {
	s := NewSchedule(map[string]int{"t3": 0, "t1": 2, "t2": 1})
	assert.Equal(t, []string{"t1", "t2", "t3"}, s.Teams())
	assert.Equal(t, "t1=2 t2=1 t3=0", s.String())
}

// TestBitVector_String tests genotype rendering
func TestBitVector_String(t *testing.T) {
	b := &BitVector{Bits: []byte{1, 0, 1, 1}}
	assert.Equal(t, "1011", b.String())
	assert.Equal(t, 3, b.Ones())
}
