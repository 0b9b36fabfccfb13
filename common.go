// ABOUTME: Shared initialization code for all modes (CLI, TUI, View)
// ABOUTME: Loads configuration and builds the configured algorithm with its listeners

package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"popsearch/algorithm"
	"popsearch/config"
	"popsearch/metaheuristic"
	"popsearch/metrics"
	"popsearch/problem"
	"popsearch/report"
	"popsearch/solution"
)

const (
	debugLogFile     = "popsearch-debug.log"
	envFile          = ".env"
	snapshotInterval = 250 * time.Millisecond
)

var debugLog *log.Logger

// RunOptions contains command-line options for all modes
type RunOptions struct {
	ConfigPath string
	Algorithm  string
	MaxSteps   int // negative keeps the configured value
	Workers    int // negative keeps the configured value

	SnapshotPath string
	MetricsAddr  string
	XLSXPath     string
	DebugLog     bool
}

// loadRunConfig layers the config file, .env, POPSEARCH_* variables and
// command-line flags, in that order of increasing precedence
func loadRunConfig(opts RunOptions) (config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}

	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}

	if opts.Algorithm != "" {
		cfg.Run.Algorithm = opts.Algorithm
	}
	if opts.MaxSteps >= 0 {
		cfg.Run.MaxSteps = opts.MaxSteps
	}
	if opts.Workers >= 0 {
		cfg.Run.Workers = opts.Workers
	}
	if opts.SnapshotPath != "" {
		cfg.Run.SnapshotFile = opts.SnapshotPath
	}
	if opts.MetricsAddr != "" {
		cfg.Run.MetricsAddr = opts.MetricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// job is a configured algorithm with its solution type erased. The
// closures register listeners of the algorithm's own solution type.
type job struct {
	algorithm.Controller

	Name    string
	Problem string

	progress func(send func(progressEvent))
	track    func(h *report.History)
	measure  func(c *metrics.Collector)
	snapshot func(path string)
}

// newJob wraps alg; describe, if not nil, renders a multi-line view of a solution
func newJob[S solution.Solution](name, desc string, alg algorithm.Algorithm[S], describe func(S) string) *job {
	return &job{
		Controller: alg,
		Name:       name,
		Problem:    desc,
		progress: func(send func(progressEvent)) {
			alg.AddListener(newProgressTracker(describe, send))
		},
		track: func(h *report.History) {
			alg.AddListener(report.Track[S](h))
		},
		measure: func(c *metrics.Collector) {
			alg.AddListener(metrics.Listen[S](c, name))
		},
		snapshot: func(path string) {
			alg.AddListener(report.NewSnapshotWriter(path, name, snapshotInterval, describe))
		},
	}
}

// buildJob creates the configured algorithm on its problem instance
func buildJob(cfg config.Config, logger algorithm.Logger) (*job, error) {
	opts := metaheuristic.Options{MaxSteps: cfg.Run.MaxSteps, Logger: logger}
	name := cfg.Run.Algorithm

	switch name {
	case config.ElitistGA, config.RAPGA:
		p, desc, describe, err := buildBitProblem(cfg.Problem)
		if err != nil {
			return nil, err
		}
		if name == config.ElitistGA {
			alg, err := metaheuristic.NewElitistGA(p, cfg.ElitistGA, opts)
			if err != nil {
				return nil, err
			}
			return newJob(name, desc, alg, describe), nil
		}
		alg, err := metaheuristic.NewRAPGA(p, cfg.RAPGA, opts)
		if err != nil {
			return nil, err
		}
		return newJob(name, desc, alg, describe), nil

	case config.SteadyStateGA:
		p, desc, err := buildVectorFunction(cfg.Problem)
		if err != nil {
			return nil, err
		}
		alg, err := metaheuristic.NewSteadyStateGA(p, cfg.SteadyState, opts)
		if err != nil {
			return nil, err
		}
		return newJob(name, desc, alg, func(v *solution.RealVector) string {
			return describePoint(v.Values)
		}), nil

	case config.PSO:
		p, desc, err := buildVectorFunction(cfg.Problem)
		if err != nil {
			return nil, err
		}
		alg, err := metaheuristic.NewParticleSwarm(p, cfg.PSO, opts)
		if err != nil {
			return nil, err
		}
		return newJob(name, desc, alg, func(pt *solution.Particle) string {
			return describePoint(pt.Best().Values)
		}), nil

	case config.ACO, config.ClonAlg:
		p, err := problem.NewTSP(problem.RandomTowns(cfg.Problem.Towns, cfg.Problem.TownArea))
		if err != nil {
			return nil, fmt.Errorf("failed to build TSP instance: %w", err)
		}
		desc := fmt.Sprintf("TSP over %d random towns in a %g x %g square (greedy tour %.2f)",
			p.NumTowns(), cfg.Problem.TownArea, cfg.Problem.TownArea, p.GreedyPath().Length)
		describe := func(tour *solution.Permutation) string { return describeTour(p, tour) }

		if name == config.ACO {
			alg, err := metaheuristic.NewAntColonySystem(p, cfg.ACO, opts)
			if err != nil {
				return nil, err
			}
			return newJob(name, desc, alg, describe), nil
		}
		alg, err := metaheuristic.NewClonAlg(p, cfg.ClonAlg, opts)
		if err != nil {
			return nil, err
		}
		return newJob(name, desc, alg, describe), nil

	case config.OSGA, config.ConcurrentOSGA:
		pc := cfg.Problem
		tt, err := problem.RandomTimetable(pc.Teams, pc.TeamSize, pc.Terms, pc.Assistants)
		if err != nil {
			return nil, fmt.Errorf("failed to build timetable: %w", err)
		}
		desc := fmt.Sprintf("Timetable for %d teams of %d over %d terms with %d assistants",
			pc.Teams, pc.TeamSize, pc.Terms, pc.Assistants)

		if name == config.OSGA {
			alg, err := metaheuristic.NewOSGA(tt, cfg.OSGA, opts)
			if err != nil {
				return nil, err
			}
			return newJob(name, desc, alg, tt.Describe), nil
		}
		alg, err := metaheuristic.NewConcurrentOSGA(tt, cfg.OSGA, cfg.Run.Workers, opts)
		if err != nil {
			return nil, err
		}
		return newJob(name, desc, alg, tt.Describe), nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownAlgorithm, name)
}

func buildObjective(pc config.ProblemConfig) (problem.Objective, error) {
	fn, err := problem.FunctionByName(pc.Function)
	if err != nil {
		return problem.Objective{}, err
	}
	dir, err := problem.ParseDirection(pc.Direction)
	if err != nil {
		return problem.Objective{}, err
	}
	return problem.Objective{Function: fn, Direction: dir}, nil
}

func buildVectorFunction(pc config.ProblemConfig) (*problem.VectorFunction, string, error) {
	obj, err := buildObjective(pc)
	if err != nil {
		return nil, "", err
	}
	p, err := problem.NewVectorFunction(obj, pc.Dimensions, problem.Bounds{Min: pc.Min, Max: pc.Max})
	if err != nil {
		return nil, "", err
	}
	desc := fmt.Sprintf("%s %s in %d dimensions over [%g, %g]",
		obj.Direction, obj.Function.Name(), pc.Dimensions, pc.Min, pc.Max)
	return p, desc, nil
}

func buildBitProblem(pc config.ProblemConfig) (problem.BitProblem, string, func(*solution.BitVector) string, error) {
	switch pc.BitProblem {
	case "max-ones", "":
		p, err := problem.NewMaxOnes(pc.Bits)
		if err != nil {
			return nil, "", nil, err
		}
		return p, fmt.Sprintf("max-ones over %d bits", pc.Bits), nil, nil

	case "function":
		obj, err := buildObjective(pc)
		if err != nil {
			return nil, "", nil, err
		}
		p, err := problem.NewBinaryFunction(obj, pc.Dimensions, problem.Bounds{Min: pc.Min, Max: pc.Max}, pc.Precision)
		if err != nil {
			return nil, "", nil, err
		}
		desc := fmt.Sprintf("%s %s in %d dimensions over [%g, %g], %d bits per dimension",
			obj.Direction, obj.Function.Name(), pc.Dimensions, pc.Min, pc.Max, p.BitsPerDimension())
		return p, desc, func(b *solution.BitVector) string { return describePoint(p.Decode(b)) }, nil
	}

	return nil, "", nil, fmt.Errorf("%w: unknown bit problem %q", problem.ErrInvalidProblem, pc.BitProblem)
}

// describePoint renders one coordinate per line
func describePoint(x []float64) string {
	var sb strings.Builder
	for i, v := range x {
		fmt.Fprintf(&sb, "x%-3d % .6f\n", i+1, v)
	}
	return sb.String()
}

// describeTour renders a closed tour as one leg per line
func describeTour(p *problem.TSP, tour *solution.Permutation) string {
	towns := p.Towns()
	var sb strings.Builder
	for i, from := range tour.Path {
		to := tour.Path[(i+1)%len(tour.Path)]
		fmt.Fprintf(&sb, "%-5s -> %-5s %8.2f\n", towns[from].Name, towns[to].Name, p.Distance(from, to))
	}
	fmt.Fprintf(&sb, "length %.2f", tour.Length)
	return sb.String()
}

// debugLogger routes algorithm log lines to the debug log
type debugLogger struct{}

func (debugLogger) Printf(format string, args ...any) {
	debugf(format, args...)
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	if isTTY(os.Stdout) {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...any) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// truncate shortens s to maxLen runes, adding "..." if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
