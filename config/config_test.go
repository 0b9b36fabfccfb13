// ABOUTME: Tests for configuration load/save functionality
// ABOUTME: Validates TOML parsing, default fallback, validation and env overrides

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popsearch/metaheuristic"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Run.Algorithm != ElitistGA {
		t.Errorf("Expected algorithm %s, got %s", ElitistGA, cfg.Run.Algorithm)
	}
	assert.Equal(t, metaheuristic.DefaultOSGAParams(), cfg.OSGA)

	// every algorithm validates with the default parameters
	for _, name := range Algorithms {
		cfg.Run.Algorithm = name
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "popsearch.toml")

	cfg := DefaultConfig()
	cfg.Run.Algorithm = ACO
	cfg.ACO.ColonySize = 17
	cfg.PSO.C1 = 1.5
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popsearch.toml")
	data := `
[run]
algorithm = "pso"

[pso]
swarm_size = 40
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, PSO, cfg.Run.Algorithm)
	assert.Equal(t, 40, cfg.PSO.SwarmSize)
	assert.Equal(t, DefaultConfig().PSO.C2, cfg.PSO.C2)
	assert.Equal(t, DefaultConfig().Run.MaxSteps, cfg.Run.MaxSteps)
}

func TestLoadNonExistentConfig(t *testing.T) {
	// Loading non-existent file should return defaults without error
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[run\nalgorithm ="), 0644))

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"unknown algorithm", func(c *Config) { c.Run.Algorithm = "annealing" }, ErrUnknownAlgorithm},
		{"bad osga", func(c *Config) {
			c.Run.Algorithm = ConcurrentOSGA
			c.OSGA.SuccessRatio = 2
		}, metaheuristic.ErrInvalidParameter},
		{"bad clonalg", func(c *Config) {
			c.Run.Algorithm = ClonAlg
			c.ClonAlg.Rho = 0
		}, metaheuristic.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.target)
		})
	}

	cfg := DefaultConfig()
	cfg.Run.MaxSteps = -1
	assert.Error(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("POPSEARCH_ALGORITHM=rapga\nPOPSEARCH_MAX_STEPS=42\n"), 0644))

	// godotenv does not overwrite variables that are already set
	t.Setenv("POPSEARCH_MAX_STEPS", "7")
	t.Setenv("POPSEARCH_METRICS_ADDR", ":9100")
	t.Cleanup(func() { os.Unsetenv("POPSEARCH_ALGORITHM") })

	require.NoError(t, LoadEnvFile(envFile))

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, RAPGA, cfg.Run.Algorithm)
	assert.Equal(t, 7, cfg.Run.MaxSteps)
	assert.Equal(t, ":9100", cfg.Run.MetricsAddr)
	assert.Empty(t, cfg.Run.SnapshotFile)
}

func TestEnvOverrideErrors(t *testing.T) {
	t.Setenv("POPSEARCH_WORKERS", "many")
	cfg := DefaultConfig()
	assert.Error(t, ApplyEnv(&cfg))

	t.Setenv("POPSEARCH_WORKERS", "2")
	t.Setenv("POPSEARCH_ALGORITHM", "hill-climbing")
	assert.ErrorIs(t, ApplyEnv(&cfg), ErrUnknownAlgorithm)
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
