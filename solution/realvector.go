// ABOUTME: Continuous genotypes: plain real vectors and PSO particles
// ABOUTME: Particles keep their own best and previous-position snapshots

package solution

import (
	"fmt"
	"strconv"
	"strings"
)

// RealVector is a fixed-length vector of doubles
type RealVector struct {
	Base
	Values []float64
}

// NewRealVector returns an unevaluated vector holding a copy of values
func NewRealVector(values []float64) *RealVector {
	v := &RealVector{Values: make([]float64, len(values))}
	copy(v.Values, values)
	return v
}

// Dim returns the number of dimensions
func (v *RealVector) Dim() int {
	return len(v.Values)
}

// Copy returns a deep copy including fitness
func (v *RealVector) Copy() *RealVector {
	c := NewRealVector(v.Values)
	c.Base = v.Base
	return c
}

// CopyFrom overwrites v with a deep copy of o
func (v *RealVector) CopyFrom(o *RealVector) {
	if cap(v.Values) < len(o.Values) {
		v.Values = make([]float64, len(o.Values))
	}
	v.Values = v.Values[:len(o.Values)]
	copy(v.Values, o.Values)
	v.Base = o.Base
}

// Clone implements Solution
func (v *RealVector) Clone() Solution {
	return v.Copy()
}

// CloneFrom implements Solution
func (v *RealVector) CloneFrom(other Solution) error {
	o, ok := other.(*RealVector)
	if !ok {
		return fmt.Errorf("%w: %T is not a real vector", ErrShapeMismatch, other)
	}
	v.CopyFrom(o)
	return nil
}

func (v *RealVector) String() string {
	parts := make([]string, len(v.Values))
	for i, x := range v.Values {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Particle is a swarm member: a position with a velocity, the best position
// it has visited and the position it held before its last move.
type Particle struct {
	RealVector
	Velocity []float64

	best RealVector
	last RealVector
}

// NewParticle returns an unevaluated particle at position with the given velocity
func NewParticle(position, velocity []float64) *Particle {
	p := &Particle{
		RealVector: *NewRealVector(position),
		Velocity:   make([]float64, len(velocity)),
	}
	copy(p.Velocity, velocity)
	p.best.CopyFrom(&p.RealVector)
	p.last.CopyFrom(&p.RealVector)
	return p
}

// SetFitness records the evaluation of the current position and promotes
// it to the particle's best on strict improvement.
func (p *Particle) SetFitness(f float64) {
	p.RealVector.SetFitness(f)
	if f > p.best.Fitness() {
		p.best.CopyFrom(&p.RealVector)
	}
}

// Best returns the best position this particle has visited. Read-only.
func (p *Particle) Best() *RealVector {
	return &p.best
}

// Last returns the position saved by the most recent SaveLast. Read-only.
func (p *Particle) Last() *RealVector {
	return &p.last
}

// SaveLast snapshots the current position
func (p *Particle) SaveLast() {
	p.last.CopyFrom(&p.RealVector)
}

// Copy returns a deep copy of position, velocity and both snapshots
func (p *Particle) Copy() *Particle {
	c := &Particle{}
	c.CopyFrom(p)
	return c
}

// CopyFrom overwrites p with a deep copy of o
func (p *Particle) CopyFrom(o *Particle) {
	p.RealVector.CopyFrom(&o.RealVector)
	if cap(p.Velocity) < len(o.Velocity) {
		p.Velocity = make([]float64, len(o.Velocity))
	}
	p.Velocity = p.Velocity[:len(o.Velocity)]
	copy(p.Velocity, o.Velocity)
	p.best.CopyFrom(&o.best)
	p.last.CopyFrom(&o.last)
}

// Clone implements Solution
func (p *Particle) Clone() Solution {
	return p.Copy()
}

// CloneFrom implements Solution
func (p *Particle) CloneFrom(other Solution) error {
	o, ok := other.(*Particle)
	if !ok {
		return fmt.Errorf("%w: %T is not a particle", ErrShapeMismatch, other)
	}
	p.CopyFrom(o)
	return nil
}

func (p *Particle) String() string {
	return p.RealVector.String()
}
