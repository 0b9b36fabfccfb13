// ABOUTME: Tour genotype for travelling-salesman style problems
// ABOUTME: Fitness is the negated path length so shorter tours sort first

package solution

import (
	"fmt"
	"strconv"
	"strings"
)

// Permutation is a tour over towns 0..n-1
type Permutation struct {
	Base
	Path   []int
	Length float64
}

// NewPermutation returns an unevaluated tour holding a copy of path
func NewPermutation(path []int) *Permutation {
	p := &Permutation{Path: make([]int, len(path))}
	copy(p.Path, path)
	return p
}

// IdentityPermutation returns the tour 0, 1, ..., n-1
func IdentityPermutation(n int) *Permutation {
	p := &Permutation{Path: make([]int, n)}
	for i := range p.Path {
		p.Path[i] = i
	}
	return p
}

// SetLength records the tour length and derives fitness from it
func (p *Permutation) SetLength(length float64) {
	p.Length = length
	p.SetFitness(-length)
}

// Swap exchanges the towns at positions i and j
func (p *Permutation) Swap(i, j int) {
	p.Path[i], p.Path[j] = p.Path[j], p.Path[i]
}

// Reverse reverses the segment [i, j] in place
func (p *Permutation) Reverse(i, j int) {
	for i < j {
		p.Path[i], p.Path[j] = p.Path[j], p.Path[i]
		i++
		j--
	}
}

// Valid reports whether the path visits every town exactly once
func (p *Permutation) Valid() bool {
	seen := make([]bool, len(p.Path))
	for _, town := range p.Path {
		if town < 0 || town >= len(p.Path) || seen[town] {
			return false
		}
		seen[town] = true
	}
	return true
}

// Copy returns a deep copy including length and fitness
func (p *Permutation) Copy() *Permutation {
	c := NewPermutation(p.Path)
	c.Base = p.Base
	c.Length = p.Length
	return c
}

// CopyFrom overwrites p with a deep copy of o
func (p *Permutation) CopyFrom(o *Permutation) {
	if cap(p.Path) < len(o.Path) {
		p.Path = make([]int, len(o.Path))
	}
	p.Path = p.Path[:len(o.Path)]
	copy(p.Path, o.Path)
	p.Length = o.Length
	p.Base = o.Base
}

// Clone implements Solution
func (p *Permutation) Clone() Solution {
	return p.Copy()
}

// CloneFrom implements Solution
func (p *Permutation) CloneFrom(other Solution) error {
	o, ok := other.(*Permutation)
	if !ok {
		return fmt.Errorf("%w: %T is not a permutation", ErrShapeMismatch, other)
	}
	p.CopyFrom(o)
	return nil
}

func (p *Permutation) String() string {
	parts := make([]string, len(p.Path))
	for i, town := range p.Path {
		parts[i] = strconv.Itoa(town)
	}
	return strings.Join(parts, "-") + " (" + strconv.FormatFloat(p.Length, 'f', 3, 64) + ")"
}
