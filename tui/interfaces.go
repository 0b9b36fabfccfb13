// ABOUTME: Interfaces and messages defining the TUI's dependencies
// ABOUTME: The monitor drives a run through Controller and renders Update snapshots

package tui

import (
	"popsearch/solution"
)

// Controller is the part of an algorithm's life-cycle the monitor drives
type Controller interface {
	Pause() bool
	Resume() bool
	Stop() bool
	IsPaused() bool
	HasStopped() bool
}

// Update is a progress snapshot sent from the algorithm goroutine
type Update struct {
	Step        int
	StepsPerSec float64
	Stats       solution.Stats

	BestFitness float64
	Best        string // one-line form of the best solution
	Detail      string // optional multi-line description of the best solution
	Improved    bool   // the best solution changed since the previous update
}
