// ABOUTME: Assignment-map genotype for timetabling problems
// ABOUTME: Maps each team ID to the index of the term it is scheduled in

package solution

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Schedule assigns every team exactly one term
type Schedule struct {
	Base
	Assignment     map[string]int
	OverlapMinutes int
}

// NewSchedule returns an unevaluated schedule holding a copy of assignment
func NewSchedule(assignment map[string]int) *Schedule {
	return &Schedule{Assignment: maps.Clone(assignment)}
}

// Teams returns the assigned team IDs in sorted order
func (s *Schedule) Teams() []string {
	return slices.Sorted(maps.Keys(s.Assignment))
}

// Copy returns a deep copy including fitness
func (s *Schedule) Copy() *Schedule {
	c := NewSchedule(s.Assignment)
	c.Base = s.Base
	c.OverlapMinutes = s.OverlapMinutes
	return c
}

// CopyFrom overwrites s with a deep copy of o
func (s *Schedule) CopyFrom(o *Schedule) {
	s.Assignment = maps.Clone(o.Assignment)
	s.OverlapMinutes = o.OverlapMinutes
	s.Base = o.Base
}

// Clone implements Solution
func (s *Schedule) Clone() Solution {
	return s.Copy()
}

// CloneFrom implements Solution
func (s *Schedule) CloneFrom(other Solution) error {
	o, ok := other.(*Schedule)
	if !ok {
		return fmt.Errorf("%w: %T is not a schedule", ErrShapeMismatch, other)
	}
	s.CopyFrom(o)
	return nil
}

func (s *Schedule) String() string {
	teams := s.Teams()
	parts := make([]string, len(teams))
	for i, team := range teams {
		parts[i] = team + "=" + strconv.Itoa(s.Assignment[team])
	}
	return strings.Join(parts, " ")
}
