// ABOUTME: Configuration management for runs, problems and algorithm parameters
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults plus .env overrides

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"popsearch/metaheuristic"
)

// Algorithm names accepted by Run.Algorithm
const (
	ElitistGA      = "elitist-ga"
	SteadyStateGA  = "steady-state-ga"
	RAPGA          = "rapga"
	OSGA           = "osga"
	ConcurrentOSGA = "osga-concurrent"
	ACO            = "aco"
	ClonAlg        = "clonalg"
	PSO            = "pso"
)

// Algorithms lists every supported algorithm name
var Algorithms = []string{ElitistGA, SteadyStateGA, RAPGA, OSGA, ConcurrentOSGA, ACO, ClonAlg, PSO}

// ErrUnknownAlgorithm is returned for an algorithm name outside Algorithms
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// EnvPrefix prefixes every environment override
const EnvPrefix = "POPSEARCH_"

// Config is the complete file layout
type Config struct {
	Run         RunConfig                       `toml:"run"`
	Problem     ProblemConfig                   `toml:"problem"`
	ElitistGA   metaheuristic.ElitistGAParams   `toml:"elitist_ga"`
	SteadyState metaheuristic.SteadyStateParams `toml:"steady_state_ga"`
	RAPGA       metaheuristic.RAPGAParams       `toml:"rapga"`
	OSGA        metaheuristic.OSGAParams        `toml:"osga"`
	ACO         metaheuristic.ACOParams         `toml:"aco"`
	ClonAlg     metaheuristic.ClonAlgParams     `toml:"clonalg"`
	PSO         metaheuristic.PSOParams         `toml:"pso"`
}

// RunConfig holds the settings that are not algorithm parameters
type RunConfig struct {
	Algorithm string `toml:"algorithm"`
	MaxSteps  int    `toml:"max_steps"` // 0 runs until stopped
	Workers   int    `toml:"workers"`   // ConcurrentOSGA pool size, 0 = one per CPU

	SnapshotFile string `toml:"snapshot_file"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// ProblemConfig describes the instance each algorithm family runs on
type ProblemConfig struct {
	// Bit-string GAs: "max-ones" or "function" (binary-encoded Function)
	BitProblem string `toml:"bit_problem"`
	Bits       int    `toml:"bits"`

	// Real-valued functions for the binary encoding, steady-state GA and PSO
	Function   string  `toml:"function"`
	Direction  string  `toml:"direction"`
	Dimensions int     `toml:"dimensions"`
	Min        float64 `toml:"min"`
	Max        float64 `toml:"max"`
	Precision  float64 `toml:"precision"`

	// Synthetic TSP for ACO and CLONALG
	Towns    int     `toml:"towns"`
	TownArea float64 `toml:"town_area"`

	// Synthetic timetable for the OSGA family
	Teams      int `toml:"teams"`
	TeamSize   int `toml:"team_size"`
	Terms      int `toml:"terms"`
	Assistants int `toml:"assistants"`
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/popsearch/popsearch.toml
func GetConfigPath() string {
	if _, err := os.Stat("./popsearch.toml"); err == nil {
		return "./popsearch.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./popsearch.toml"
	}

	return filepath.Join(home, ".config", "popsearch", "popsearch.toml")
}

// LoadConfig loads configuration from a TOML file on top of the defaults
// If the file doesn't exist, returns default config
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("Warning: ignoring unknown config key %q in %s", key.String(), path)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close config file: %v", err)
		}
	}()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns a config that runs every algorithm on a small instance
func DefaultConfig() Config {
	return Config{
		Run: RunConfig{
			Algorithm: ElitistGA,
			MaxSteps:  500,
		},
		Problem: ProblemConfig{
			BitProblem: "max-ones",
			Bits:       64,
			Function:   "rastrigin",
			Direction:  "min",
			Dimensions: 2,
			Min:        -5.12,
			Max:        5.12,
			Precision:  1e-4,
			Towns:      30,
			TownArea:   100,
			Teams:      20,
			TeamSize:   3,
			Terms:      12,
			Assistants: 4,
		},
		ElitistGA:   metaheuristic.DefaultElitistGAParams(),
		SteadyState: metaheuristic.DefaultSteadyStateParams(),
		RAPGA:       metaheuristic.DefaultRAPGAParams(),
		OSGA:        metaheuristic.DefaultOSGAParams(),
		ACO:         metaheuristic.DefaultACOParams(),
		ClonAlg:     metaheuristic.DefaultClonAlgParams(),
		PSO:         metaheuristic.DefaultPSOParams(),
	}
}

// Validate checks the run settings and the parameters of the selected algorithm
func (c Config) Validate() error {
	if c.Run.MaxSteps < 0 {
		return fmt.Errorf("max steps must not be negative, got %d", c.Run.MaxSteps)
	}

	var err error
	switch c.Run.Algorithm {
	case ElitistGA:
		err = c.ElitistGA.Validate()
	case SteadyStateGA:
		err = c.SteadyState.Validate()
	case RAPGA:
		err = c.RAPGA.Validate()
	case OSGA, ConcurrentOSGA:
		err = c.OSGA.Validate()
	case ACO:
		err = c.ACO.Validate()
	case ClonAlg:
		err = c.ClonAlg.Validate()
	case PSO:
		err = c.PSO.Validate()
	default:
		return fmt.Errorf("%w %q, expected one of %s", ErrUnknownAlgorithm, c.Run.Algorithm, strings.Join(Algorithms, ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid %s parameters: %w", c.Run.Algorithm, err)
	}
	return nil
}

// LoadEnvFile loads variables from a .env file if it exists
func LoadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// ApplyEnv overrides run settings from POPSEARCH_* variables
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvPrefix + "ALGORITHM"); ok {
		if !slices.Contains(Algorithms, v) {
			return fmt.Errorf("%sALGORITHM: %w %q", EnvPrefix, ErrUnknownAlgorithm, v)
		}
		cfg.Run.Algorithm = v
	}
	if err := envInt("MAX_STEPS", &cfg.Run.MaxSteps); err != nil {
		return err
	}
	if err := envInt("WORKERS", &cfg.Run.Workers); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SNAPSHOT_FILE"); ok {
		cfg.Run.SnapshotFile = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "METRICS_ADDR"); ok {
		cfg.Run.MetricsAddr = v
	}
	return nil
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("failed to parse %s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}
