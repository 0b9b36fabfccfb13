// ABOUTME: Benchmark objective functions for continuous optimisation
// ABOUTME: Rastrigin and Schwefel with a minimise/maximise direction

package problem

import (
	"fmt"
	"math"
	"strings"
)

// Direction turns a function value into a fitness to maximise
type Direction int

const (
	Minimise Direction = -1
	Maximise Direction = 1
)

func (d Direction) String() string {
	if d == Minimise {
		return "minimise"
	}
	return "maximise"
}

// Function is a real-valued objective over an n-dimensional point
type Function interface {
	Name() string
	Value(x []float64) float64
}

// Objective pairs a function with the direction it is optimised in
type Objective struct {
	Function  Function
	Direction Direction
}

// Fitness returns the direction-adjusted value so higher is always better
func (o Objective) Fitness(x []float64) float64 {
	return float64(o.Direction) * o.Function.Value(x)
}

// Rastrigin is 10d + sum(x^2 - 10cos(2 pi x)), global minimum 0 at the origin
type Rastrigin struct{}

func (Rastrigin) Name() string { return "rastrigin" }

func (Rastrigin) Value(x []float64) float64 {
	v := 10 * float64(len(x))
	for _, xi := range x {
		v += xi*xi - 10*math.Cos(2*math.Pi*xi)
	}
	return v
}

// Schwefel is the mean of -x sin(sqrt|x|), minimum near x = 420.9687 per dimension
type Schwefel struct{}

func (Schwefel) Name() string { return "schwefel" }

func (Schwefel) Value(x []float64) float64 {
	v := 0.0
	for _, xi := range x {
		v += -xi * math.Sin(math.Sqrt(math.Abs(xi)))
	}
	return v / float64(len(x))
}

// FunctionByName looks up a benchmark function
func FunctionByName(name string) (Function, error) {
	switch strings.ToLower(name) {
	case "rastrigin":
		return Rastrigin{}, nil
	case "schwefel":
		return Schwefel{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown function %q", ErrInvalidProblem, name)
	}
}

// ParseDirection parses "min"/"minimise" or "max"/"maximise"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "min", "minimise", "minimize", "":
		return Minimise, nil
	case "max", "maximise", "maximize":
		return Maximise, nil
	default:
		return 0, fmt.Errorf("%w: direction must be min or max, got %q", ErrInvalidProblem, s)
	}
}
