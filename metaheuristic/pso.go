// ABOUTME: Particle swarm optimisation over bounded real vectors
// ABOUTME: Ring neighbourhood, linearly decreasing inertia and velocity clamping

package metaheuristic

import (
	"context"
	"fmt"
	"math/rand/v2"

	"popsearch/algorithm"
	"popsearch/problem"
	"popsearch/solution"
)

// PSOParams configures ParticleSwarm
type PSOParams struct {
	SwarmSize           int     `toml:"swarm_size"`
	NeighbourhoodRadius int     `toml:"neighbourhood_radius"`
	C1                  float64 `toml:"c1"`
	C2                  float64 `toml:"c2"`
	InertiaStart        float64 `toml:"inertia_start"`
	InertiaEnd          float64 `toml:"inertia_end"`
	InertiaSteps        int     `toml:"inertia_steps"`
	// VMaxFraction of the domain width bounds every velocity component
	VMaxFraction float64 `toml:"vmax_fraction"`
}

// DefaultPSOParams returns the standard settings
func DefaultPSOParams() PSOParams {
	return PSOParams{
		SwarmSize:           20,
		NeighbourhoodRadius: 5,
		C1:                  2,
		C2:                  2,
		InertiaStart:        0.9,
		InertiaEnd:          0.4,
		InertiaSteps:        50,
		VMaxFraction:        0.1,
	}
}

// Validate checks parameter ranges
func (p PSOParams) Validate() error {
	if err := positive("swarm size", p.SwarmSize); err != nil {
		return err
	}
	if p.NeighbourhoodRadius < 0 {
		return fmt.Errorf("%w: neighbourhood radius must not be negative, got %d", ErrInvalidParameter, p.NeighbourhoodRadius)
	}
	if err := positive("inertia steps", p.InertiaSteps); err != nil {
		return err
	}
	return positiveFloat("vmax fraction", p.VMaxFraction)
}

// ParticleSwarm moves every particle towards its own best position and the
// best position of its ring neighbourhood (radius r on each side), with
// inertia falling linearly from InertiaStart to InertiaEnd over InertiaSteps.
// Velocities are clamped to +-VMaxFraction of the domain width and positions
// wrap around the domain bounds.
type ParticleSwarm struct {
	*algorithm.Engine[*solution.Particle]

	problem *problem.VectorFunction
	params  PSOParams
	vMax    float64

	particles []*solution.Particle
	best      bestTracker[*solution.RealVector]
}

// NewParticleSwarm creates the algorithm and its initial swarm
func NewParticleSwarm(p *problem.VectorFunction, params PSOParams, opts Options) (*ParticleSwarm, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	pso := &ParticleSwarm{
		Engine:    algorithm.NewEngine[*solution.Particle]("ParticleSwarm", opts.MaxSteps, opts.Logger),
		problem:   p,
		params:    params,
		vMax:      p.Bounds().Interval() * params.VMaxFraction,
		particles: make([]*solution.Particle, params.SwarmSize),
	}
	for i := range pso.particles {
		velocity := make([]float64, p.Dimensions())
		for d := range velocity {
			velocity[d] = (2*rand.Float64() - 1) * pso.vMax
		}
		pso.particles[i] = p.EvaluateParticle(solution.NewParticle(p.RandomPoint(), velocity))
	}
	return pso, nil
}

// Run executes the algorithm until stopped or out of steps
func (pso *ParticleSwarm) Run(ctx context.Context) error {
	return pso.Execute(ctx, algorithm.Hooks{Start: pso.start, Step: pso.step, End: pso.end})
}

// Best returns the best position found, wrapped as a particle at rest
func (pso *ParticleSwarm) Best() *solution.Particle {
	if !pso.best.set {
		return nil
	}
	return pso.bestParticle()
}

// Particles returns the swarm. Read-only, algorithm goroutine only.
func (pso *ParticleSwarm) Particles() []*solution.Particle {
	return pso.particles
}

// VMax returns the velocity bound
func (pso *ParticleSwarm) VMax() float64 {
	return pso.vMax
}

func (pso *ParticleSwarm) bestParticle() *solution.Particle {
	b := solution.NewParticle(pso.best.best.Values, make([]float64, len(pso.best.best.Values)))
	b.SetFitness(pso.best.best.Fitness())
	return b
}

func (pso *ParticleSwarm) start(context.Context) error {
	pso.Logf("started with parameters: swarmSize = %d, radius = %d, c1 = %g, c2 = %g, w = %g..%g over %d steps, vMaxDiff = %g",
		pso.params.SwarmSize, pso.params.NeighbourhoodRadius, pso.params.C1, pso.params.C2,
		pso.params.InertiaStart, pso.params.InertiaEnd, pso.params.InertiaSteps, pso.vMax)
	pso.updateBest()
	return nil
}

func (pso *ParticleSwarm) step(context.Context) error {
	pso.move()
	for _, p := range pso.particles {
		pso.problem.EvaluateParticle(p)
	}
	pso.updateBest()
	pso.ReportPopulation(pso.particles)
	return nil
}

func (pso *ParticleSwarm) end() {
	pso.ReportFinal(pso.Best())
	pso.Logf("ended")
}

// inertia returns the weight for the current step
func (pso *ParticleSwarm) inertia() float64 {
	step := pso.CurrentStep()
	if step > pso.params.InertiaSteps {
		return pso.params.InertiaEnd
	}
	return pso.params.InertiaStart + (pso.params.InertiaEnd-pso.params.InertiaStart)*float64(step-1)/float64(pso.params.InertiaSteps)
}

// move updates every velocity from the positions at the start of the step,
// then applies it once per particle
func (pso *ParticleSwarm) move() {
	w := pso.inertia()
	bounds := pso.problem.Bounds()

	for i, p := range pso.particles {
		p.SaveLast()
		own := p.Best().Values
		local := pso.localBest(i).Values

		for d := range p.Velocity {
			v := w*p.Velocity[d] +
				pso.params.C1*rand.Float64()*(own[d]-p.Values[d]) +
				pso.params.C2*rand.Float64()*(local[d]-p.Values[d])
			p.Velocity[d] = min(max(v, -pso.vMax), pso.vMax)
		}
		for d := range p.Values {
			p.Values[d] = bounds.Wrap(p.Values[d] + p.Velocity[d])
		}
	}
}

// localBest scans the ring [i-r, i+r] for the best personal best
func (pso *ParticleSwarm) localBest(i int) *solution.RealVector {
	n := len(pso.particles)
	r := pso.params.NeighbourhoodRadius
	start := ((i-r)%n + n) % n

	best := pso.particles[start].Best()
	for j := 1; j <= 2*r; j++ {
		if candidate := pso.particles[(start+j)%n].Best(); solution.Better(candidate, best) {
			best = candidate
		}
	}
	return best
}

func (pso *ParticleSwarm) updateBest() {
	improved := false
	for _, p := range pso.particles {
		if pso.best.offer(p.Best()) {
			improved = true
		}
	}
	if improved {
		pso.ReportBest(pso.bestParticle())
	}
}
