// ABOUTME: Progress tracking shared by the CLI and TUI front ends
// ABOUTME: Reduces typed algorithm events to display-ready progress events

package main

import (
	"math"
	"sync"
	"time"

	"popsearch/solution"
)

// progressEvent is an algorithm event reduced to what a front end shows
type progressEvent struct {
	Step        int
	StepsPerSec float64
	Stats       solution.Stats // zero unless the population changed

	BestFitness float64
	Best        string
	Detail      string
	Improved    bool
	Final       bool
}

// progressTracker converts typed events into progressEvents and computes
// the step rate between population updates
type progressTracker[S solution.Solution] struct {
	mu       sync.Mutex
	send     func(progressEvent)
	describe func(S) string

	bestFitness float64
	best        string
	detail      string

	lastTime time.Time
	lastStep int
	rate     float64
}

func newProgressTracker[S solution.Solution](describe func(S) string, send func(progressEvent)) *progressTracker[S] {
	return &progressTracker[S]{
		send:        send,
		describe:    describe,
		bestFitness: math.Inf(-1),
		lastTime:    time.Now(),
	}
}

// PopulationChanged emits population statistics with the best so far
func (pt *progressTracker[S]) PopulationChanged(pop []S, step int) {
	stats := solution.Summarise(pop)

	pt.mu.Lock()
	now := time.Now()
	if elapsed := now.Sub(pt.lastTime).Seconds(); elapsed > 0 && step > pt.lastStep {
		pt.rate = float64(step-pt.lastStep) / elapsed
		pt.lastTime = now
		pt.lastStep = step
	}
	ev := pt.event(step)
	ev.Stats = stats
	pt.mu.Unlock()

	pt.send(ev)
}

// BestUpdated emits the improvement
func (pt *progressTracker[S]) BestUpdated(best S, step int) {
	pt.mu.Lock()
	pt.remember(best)
	ev := pt.event(step)
	ev.Improved = true
	pt.mu.Unlock()

	pt.send(ev)
}

// FinalSolution emits the run's result
func (pt *progressTracker[S]) FinalSolution(best S, step int) {
	pt.mu.Lock()
	pt.remember(best)
	ev := pt.event(step)
	ev.Final = true
	pt.mu.Unlock()

	pt.send(ev)
}

func (pt *progressTracker[S]) remember(best S) {
	pt.bestFitness = best.Fitness()
	pt.best = best.String()
	if pt.describe != nil {
		pt.detail = pt.describe(best)
	}
}

func (pt *progressTracker[S]) event(step int) progressEvent {
	return progressEvent{
		Step:        step,
		StepsPerSec: pt.rate,
		BestFitness: pt.bestFitness,
		Best:        pt.best,
		Detail:      pt.detail,
	}
}
