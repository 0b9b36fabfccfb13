// ABOUTME: Entry point for the popsearch optimisation runner
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI, TUI or view modes

// Package main provides the entry point for popsearch, a runner for population-based metaheuristics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"popsearch/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	algo := flag.String("algo", "", "algorithm to run: "+strings.Join(config.Algorithms, ", "))
	steps := flag.Int("steps", -1, "maximum number of steps, 0 runs until stopped (default from config)")
	workers := flag.Int("workers", -1, "worker pool size for osga-concurrent, 0 uses one per CPU (default from config)")
	configPath := flag.String("config", "", "config file (default ./popsearch.toml or ~/.config/popsearch/popsearch.toml)")
	visual := flag.Bool("visual", false, "run with the interactive monitor")
	view := flag.String("view", "", "watch a snapshot file written by another run")
	debug := flag.Bool("debug", false, "enable debug logging to "+debugLogFile)
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9090")
	xlsx := flag.String("xlsx", "", "export the step history to this .xlsx file")
	snapshot := flag.String("snapshot", "", "keep the best solution in this TOML file while running")
	flag.Parse()

	if flag.NArg() != 0 {
		fmt.Println("Usage: popsearch [flags]")
		fmt.Println("Example: popsearch -algo aco -steps 200 -visual")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	if *view != "" {
		if *debug {
			if err := InitDebugLog(debugLogFile); err != nil {
				log.Printf("Failed to setup debug log: %v", err)

				return 1
			}
		}
		if err := RunViewMode(*view); err != nil {
			log.Printf("View error: %v", err)

			return 1
		}

		return 0
	}

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	opts := RunOptions{
		ConfigPath:   *configPath,
		Algorithm:    *algo,
		MaxSteps:     *steps,
		Workers:      *workers,
		SnapshotPath: *snapshot,
		MetricsAddr:  *metricsAddr,
		XLSXPath:     *xlsx,
		DebugLog:     *debug,
	}

	if *visual {
		if err := RunVisual(opts); err != nil {
			log.Printf("TUI error: %v", err)

			return 1
		}

		return 0
	}

	if err := RunCLI(opts); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
