// ABOUTME: Adapter implementations for TUI interfaces
// ABOUTME: Runs the job in the background and feeds the monitor with progress updates

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"

	"popsearch/tui"
)

// tuiUpdateBuffer smooths bursts of population events
const tuiUpdateBuffer = 10

// toTUIUpdate converts a progress event to the monitor's message type
func toTUIUpdate(ev progressEvent) tui.Update {
	return tui.Update{
		Step:        ev.Step,
		StepsPerSec: ev.StepsPerSec,
		Stats:       ev.Stats,
		BestFitness: ev.BestFitness,
		Best:        ev.Best,
		Detail:      ev.Detail,
		Improved:    ev.Improved,
	}
}

// tuiSender returns a progress callback that never blocks the algorithm;
// updates are dropped while the monitor is busy
func tuiSender(updates chan<- tui.Update) func(progressEvent) {
	return func(ev progressEvent) {
		select {
		case updates <- toTUIUpdate(ev):
		default:
			// Channel full, skip update
		}
	}
}

// RunVisual runs the job under the interactive monitor
func RunVisual(opts RunOptions) error {
	if opts.DebugLog {
		if err := InitDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	cfg, err := loadRunConfig(opts)
	if err != nil {
		return err
	}

	// The monitor owns the terminal; library warnings go to the debug log
	log.SetOutput(io.Discard)
	if debugLog != nil {
		log.SetOutput(debugLog.Writer())
	}
	defer log.SetOutput(os.Stderr)

	j, err := buildJob(cfg, debugLogger{})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history := attachOutputs(ctx, j, cfg)

	updates := make(chan tui.Update, tuiUpdateBuffer)
	j.progress(tuiSender(updates))

	finished := make(chan struct{})
	var runErr error
	go func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				debugf("[PANIC] Algorithm goroutine panic: %v\n%s", r, string(debug.Stack()))
				panic(r)
			}
		}()
		runErr = j.Run(ctx)
	}()

	result, tuiErr := tui.Run(j, updates, finished, tui.Options{
		Algorithm: j.Name,
		Problem:   j.Problem,
		MaxSteps:  cfg.Run.MaxSteps,
		Debugf:    debugf,
	})

	// Quitting stops the run; cancel covers a monitor that failed before the
	// algorithm started
	cancel()
	<-finished

	if tuiErr != nil {
		return tuiErr
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}

	if desc, fitness, step, ok := history.Final(); ok {
		fmt.Printf("%s ended at step %d with best fitness %.10g\n", j.Name, step, fitness)
		fmt.Printf("Best solution: %s\n", truncate(desc, 200))
	}
	debugf("[TUI] Monitor exited at step %d (finished: %v)", result.Step, result.Finished)

	return writeOutputs(opts, cfg, history)
}
