// ABOUTME: CLI mode implementation for non-interactive optimisation runs
// ABOUTME: Handles progress display, result output, and signal handling for command-line usage

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"popsearch/config"
	"popsearch/metrics"
	"popsearch/report"
)

const (
	spinnerUpdateInterval = 500 * time.Millisecond
	historyTableRows      = 12
	summaryValueWidth     = 60
)

// RunCLI executes CLI mode optimisation
func RunCLI(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	cfg, err := loadRunConfig(opts)
	if err != nil {
		return err
	}

	j, err := buildJob(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history := attachOutputs(ctx, j, cfg)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			j.Stop()
		case <-ctx.Done():
		}
	}()

	fmt.Printf("Running %s on %s\n", j.Name, j.Problem)
	if cfg.Run.MaxSteps > 0 {
		fmt.Printf("Up to %d steps (press Ctrl+C to stop early)\n\n", cfg.Run.MaxSteps)
	} else {
		fmt.Print("Running until stopped (press Ctrl+C to stop)\n\n")
	}

	start := time.Now()
	final, err := cliRun(ctx, j, os.Stdout, isTTY(os.Stdout))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("\nCompleted %d steps in %v\n\n", j.CurrentStep(), elapsed.Round(time.Millisecond))

	writeSummary(os.Stdout, j, history, elapsed)
	if history.Len() > 0 {
		history.WriteTable(os.Stdout, historyTableRows)
	}
	if detail := finalDetail(final); detail != "" {
		fmt.Println("\nBest solution:")
		fmt.Println(detail)
	}

	return writeOutputs(opts, cfg, history)
}

// attachOutputs registers the history recorder plus the optional snapshot
// writer and metrics endpoint
func attachOutputs(ctx context.Context, j *job, cfg config.Config) *report.History {
	history := report.NewHistory(j.Name)
	j.track(history)

	if cfg.Run.SnapshotFile != "" {
		j.snapshot(cfg.Run.SnapshotFile)
		debugf("[RUN] Writing snapshots to %s", cfg.Run.SnapshotFile)
	}

	if cfg.Run.MetricsAddr != "" {
		collector := metrics.NewCollector()
		j.measure(collector)
		go func() {
			if err := collector.Serve(ctx, cfg.Run.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Warning: metrics endpoint stopped: %v", err)
			}
		}()
		debugf("[RUN] Serving metrics on %s", cfg.Run.MetricsAddr)
	}

	return history
}

// writeOutputs exports the history once the run is over
func writeOutputs(opts RunOptions, cfg config.Config, history *report.History) error {
	if opts.XLSXPath != "" {
		if err := history.WriteXLSX(opts.XLSXPath); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		fmt.Printf("History written to: %s\n", opts.XLSXPath)
	}
	if cfg.Run.SnapshotFile != "" {
		fmt.Printf("Final snapshot written to: %s\n", cfg.Run.SnapshotFile)
	}
	return nil
}

// cliRun runs the job and prints a line on every improvement. On a terminal
// a spinner line shows the current step between improvements. It returns
// the final-solution event.
func cliRun(ctx context.Context, j *job, w io.Writer, isTerminal bool) (progressEvent, error) {
	startTime := time.Now()

	// Improvements and the final event are never dropped; population
	// updates only feed the spinner and may be skipped
	events := make(chan progressEvent, 64)
	j.progress(func(ev progressEvent) {
		if ev.Improved || ev.Final {
			events <- ev
			return
		}
		select {
		case events <- ev:
		default:
		}
	})

	runErr := make(chan error, 1)
	go func() {
		err := j.Run(ctx)
		close(events)
		runErr <- err
	}()

	var statusTicker <-chan time.Time
	if isTerminal {
		ticker := time.NewTicker(spinnerUpdateInterval)
		defer ticker.Stop()
		statusTicker = ticker.C
	}

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerIdx := 0

	previousBestFitness := math.Inf(-1)
	minPrecision := 2 // Increases monotonically as needed (max 10)
	currentStep := 0
	var final progressEvent

loop:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			currentStep = ev.Step
			if ev.Final {
				final = ev
			}

			if !ev.Improved {
				continue
			}
			if isTerminal {
				// Clear status line before printing progress
				fmt.Fprint(w, "\r\033[K")
			}

			var fitnessStr string
			fitnessStr, minPrecision = FormatWithMonotonicPrecision(previousBestFitness, ev.BestFitness, minPrecision)
			fmt.Fprintf(w, "%s Step %7d - fitness: %s\n", formatElapsed(time.Since(startTime)), ev.Step, fitnessStr)
			previousBestFitness = ev.BestFitness

		case <-statusTicker:
			fmt.Fprintf(w, "\r%s Step %d %s     ", formatElapsed(time.Since(startTime)), currentStep, spinnerFrames[spinnerIdx])
			spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
		}
	}

	if isTerminal {
		fmt.Fprint(w, "\r\033[K")
	}

	if err := <-runErr; err != nil {
		return final, fmt.Errorf("run failed: %w", err)
	}
	return final, nil
}

// writeSummary renders the run result as a table
func writeSummary(w io.Writer, j *job, history *report.History, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run summary")
	t.SetStyle(table.StyleRounded)

	rows := []table.Row{
		{"Algorithm", j.Name},
		{"Problem", truncate(j.Problem, summaryValueWidth)},
		{"Steps", j.CurrentStep()},
		{"Elapsed", elapsed.Round(time.Millisecond).String()},
		{"Improvements", history.Improvements()},
	}
	if desc, fitness, step, ok := history.Final(); ok {
		rows = append(rows,
			table.Row{"Best fitness", fmt.Sprintf("%.10g", fitness)},
			table.Row{"Final step", step},
			table.Row{"Best solution", truncate(desc, summaryValueWidth)},
		)
	}
	t.AppendRows(rows)

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})

	t.Render()
}

// finalDetail returns the multi-line view of the final solution, or its
// one-line form when that does not fit in the summary table
func finalDetail(final progressEvent) string {
	if !final.Final {
		return ""
	}
	if final.Detail != "" {
		return final.Detail
	}
	if len([]rune(final.Best)) > summaryValueWidth {
		return final.Best
	}
	return ""
}
