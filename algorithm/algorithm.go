// ABOUTME: Engine combining the runtime with a typed notifier
// ABOUTME: Defines the Controller and Algorithm surfaces used by front ends

package algorithm

import (
	"context"

	"popsearch/solution"
)

// Controller is the life-cycle surface every algorithm exposes
type Controller interface {
	Run(ctx context.Context) error
	Pause() bool
	Resume() bool
	Stop() bool
	HasStarted() bool
	IsPaused() bool
	HasStopped() bool
	CurrentStep() int
	MaxSteps() int
	Name() string
}

// Algorithm is a Controller reporting solutions of shape S
type Algorithm[S solution.Solution] interface {
	Controller
	AddListener(l Listener[S]) ListenerID
	RemoveListener(id ListenerID) bool
	// Best returns the best solution found; call it only after Run returns
	Best() S
}

// Engine is embedded by concrete algorithms. Report* helpers stamp events
// with the current step.
type Engine[S solution.Solution] struct {
	*Runtime
	Notifier[S]
}

// NewEngine creates an engine for an algorithm called name
func NewEngine[S solution.Solution](name string, maxSteps int, logger Logger) *Engine[S] {
	return &Engine[S]{Runtime: NewRuntime(name, maxSteps, logger)}
}

// ReportPopulation notifies listeners that the population changed
func (e *Engine[S]) ReportPopulation(pop []S) {
	e.NotifyPopulationChanged(pop, e.CurrentStep())
}

// ReportBest notifies listeners of a new best-so-far solution
func (e *Engine[S]) ReportBest(best S) {
	e.NotifyBestUpdated(best, e.CurrentStep())
}

// ReportFinal notifies listeners of the run's result
func (e *Engine[S]) ReportFinal(best S) {
	e.NotifyFinalSolution(best, e.CurrentStep())
}
