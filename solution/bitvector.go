// ABOUTME: Fixed-length binary genotype used by the bit-string GAs
// ABOUTME: Genotype equality, bit flipping and deep copies

package solution

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
)

// BitVector is a genotype of 0/1 bytes
type BitVector struct {
	Base
	Bits []byte
}

// NewBitVector returns an all-zero unevaluated vector of n bits
func NewBitVector(n int) *BitVector {
	return &BitVector{Bits: make([]byte, n)}
}

// RandomBitVector returns an unevaluated vector with uniformly random bits
func RandomBitVector(n int) *BitVector {
	b := NewBitVector(n)
	for i := range b.Bits {
		b.Bits[i] = byte(rand.IntN(2))
	}
	return b
}

// Len returns the number of bits
func (b *BitVector) Len() int {
	return len(b.Bits)
}

// Ones counts the set bits
func (b *BitVector) Ones() int {
	n := 0
	for _, bit := range b.Bits {
		n += int(bit)
	}
	return n
}

// Flip inverts bit i
func (b *BitVector) Flip(i int) {
	b.Bits[i] ^= 1
}

// Equal compares genotypes, ignoring fitness
func (b *BitVector) Equal(o *BitVector) bool {
	return bytes.Equal(b.Bits, o.Bits)
}

// Copy returns a deep copy including fitness
func (b *BitVector) Copy() *BitVector {
	c := &BitVector{Base: b.Base, Bits: make([]byte, len(b.Bits))}
	copy(c.Bits, b.Bits)
	return c
}

// CopyFrom overwrites b with a deep copy of o, reusing b's buffer when possible
func (b *BitVector) CopyFrom(o *BitVector) {
	if cap(b.Bits) < len(o.Bits) {
		b.Bits = make([]byte, len(o.Bits))
	}
	b.Bits = b.Bits[:len(o.Bits)]
	copy(b.Bits, o.Bits)
	b.Base = o.Base
}

// Clone implements Solution
func (b *BitVector) Clone() Solution {
	return b.Copy()
}

// CloneFrom implements Solution
func (b *BitVector) CloneFrom(other Solution) error {
	o, ok := other.(*BitVector)
	if !ok {
		return fmt.Errorf("%w: %T is not a bit vector", ErrShapeMismatch, other)
	}
	b.CopyFrom(o)
	return nil
}

func (b *BitVector) String() string {
	var sb strings.Builder
	sb.Grow(len(b.Bits))
	for _, bit := range b.Bits {
		sb.WriteByte('0' + bit)
	}
	return sb.String()
}
