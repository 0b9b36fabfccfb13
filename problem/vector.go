// ABOUTME: Continuous-domain adapters: binary-encoded and real-vector functions
// ABOUTME: Handles bit decoding, bounds and modular wrap-around

package problem

import (
	"fmt"
	"math"
	"math/rand/v2"

	"popsearch/solution"
)

// DefaultPrecision is the discretisation step of binary-encoded dimensions
const DefaultPrecision = 1e-4

// Bounds is a closed box [Min, Max] applied to every dimension
type Bounds struct {
	Min float64
	Max float64
}

// Interval returns Max - Min
func (b Bounds) Interval() float64 {
	return b.Max - b.Min
}

// Wrap maps v back into [Min, Max) by modular arithmetic
func (b Bounds) Wrap(v float64) float64 {
	if v >= b.Min && v <= b.Max {
		return v
	}
	r := math.Mod(v-b.Min, b.Interval())
	if r < 0 {
		r += b.Interval()
	}
	return b.Min + r
}

func (b Bounds) validate() error {
	if math.IsNaN(b.Min) || math.IsNaN(b.Max) || b.Max <= b.Min {
		return fmt.Errorf("%w: bounds [%g, %g] are empty", ErrInvalidProblem, b.Min, b.Max)
	}
	return nil
}

// BinaryFunction optimises a function over bit strings, each dimension
// decoded from a fixed-width unsigned integer mapped onto the bounds.
type BinaryFunction struct {
	objective   Objective
	dims        int
	bounds      Bounds
	bitsPerDim  int
	decodeScale float64
}

// NewBinaryFunction creates an adapter with the given precision
func NewBinaryFunction(obj Objective, dims int, bounds Bounds, precision float64) (*BinaryFunction, error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidProblem, dims)
	}
	if err := bounds.validate(); err != nil {
		return nil, err
	}
	if precision <= 0 || precision >= bounds.Interval() {
		return nil, fmt.Errorf("%w: precision %g outside (0, %g)", ErrInvalidProblem, precision, bounds.Interval())
	}

	n := int(math.Ceil(math.Log2(bounds.Interval() / precision)))
	return &BinaryFunction{
		objective:   obj,
		dims:        dims,
		bounds:      bounds,
		bitsPerDim:  n,
		decodeScale: math.Pow(2, float64(n)) - 1,
	}, nil
}

// NumBits implements BitProblem
func (f *BinaryFunction) NumBits() int {
	return f.bitsPerDim * f.dims
}

// BitsPerDimension returns the encoding width of one coordinate
func (f *BinaryFunction) BitsPerDimension() int {
	return f.bitsPerDim
}

// Decode maps a genotype to a point in the bounded domain
func (f *BinaryFunction) Decode(b *solution.BitVector) []float64 {
	values := make([]float64, f.dims)
	for i := range values {
		acc := 0.0
		for j := range f.bitsPerDim {
			acc = acc*2 + float64(b.Bits[i*f.bitsPerDim+j])
		}
		values[i] = f.bounds.Min + acc/f.decodeScale*f.bounds.Interval()
	}
	return values
}

// Evaluate implements Adapter
func (f *BinaryFunction) Evaluate(b *solution.BitVector) *solution.BitVector {
	b.SetFitness(f.objective.Fitness(f.Decode(b)))
	return b
}

// GenerateRandom implements Adapter
func (f *BinaryFunction) GenerateRandom() *solution.BitVector {
	return f.Evaluate(solution.RandomBitVector(f.NumBits()))
}

// VectorFunction optimises a function directly over real vectors
type VectorFunction struct {
	objective Objective
	dims      int
	bounds    Bounds
}

// NewVectorFunction creates a real-vector adapter
func NewVectorFunction(obj Objective, dims int, bounds Bounds) (*VectorFunction, error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidProblem, dims)
	}
	if err := bounds.validate(); err != nil {
		return nil, err
	}
	return &VectorFunction{objective: obj, dims: dims, bounds: bounds}, nil
}

// Dimensions returns the vector length
func (f *VectorFunction) Dimensions() int {
	return f.dims
}

// Bounds returns the search box
func (f *VectorFunction) Bounds() Bounds {
	return f.bounds
}

// Fitness scores a raw point
func (f *VectorFunction) Fitness(values []float64) float64 {
	return f.objective.Fitness(values)
}

// RandomPoint draws a uniform point inside the bounds
func (f *VectorFunction) RandomPoint() []float64 {
	values := make([]float64, f.dims)
	for i := range values {
		values[i] = f.bounds.Min + rand.Float64()*f.bounds.Interval()
	}
	return values
}

// Evaluate implements Adapter
func (f *VectorFunction) Evaluate(v *solution.RealVector) *solution.RealVector {
	v.SetFitness(f.Fitness(v.Values))
	return v
}

// GenerateRandom implements Adapter
func (f *VectorFunction) GenerateRandom() *solution.RealVector {
	return f.Evaluate(solution.NewRealVector(f.RandomPoint()))
}

// EvaluateParticle scores a particle's position, updating its own best
func (f *VectorFunction) EvaluateParticle(p *solution.Particle) *solution.Particle {
	p.SetFitness(f.Fitness(p.Values))
	return p
}
