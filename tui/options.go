// ABOUTME: TUI mode configuration
// ABOUTME: Defines what the monitor shows and where it logs

package tui

// Options contains configuration for running the TUI
type Options struct {
	Algorithm string // Algorithm name shown in the title
	Problem   string // Problem description shown under the title
	MaxSteps  int    // 0 means unbounded

	Debugf func(format string, args ...any) // Debug logger, nil for none
}

// Result is the monitor's view of the run when the program exits
type Result struct {
	Step        int
	BestFitness float64
	Best        string
	Finished    bool // the run ended before the user quit
}
