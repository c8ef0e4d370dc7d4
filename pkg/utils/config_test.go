package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))
	assert.Equal(t, 1.0, cfg.Simulation.Speed)
	assert.Equal(t, 1000, cfg.Simulation.TrailLength)
	assert.Equal(t, orbital.DefaultSolver(), cfg.SolverSettings())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Simulation.Speed = 25
	cfg.Simulation.Workers = 4
	cfg.Catalog.Bodies = []string{"Earth", "Mars"}
	cfg.Output.YUp = true
	cfg.Logging.Format = "json"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  speed: 3.5\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.Simulation.Speed)
	assert.Equal(t, 60.0, cfg.Simulation.FPS)
	assert.Equal(t, orbital.DefaultTolerance, cfg.Solver.Tolerance)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  speed: 3.5\n"), 0o644))
	t.Setenv("ORRERY_SIMULATION_SPEED", "12")
	t.Setenv("ORRERY_SOLVER_MAX_ITERATIONS", "42")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.Simulation.Speed)
	assert.Equal(t, 42, cfg.Solver.MaxIterations)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"speed too high": "simulation:\n  speed: 250\n",
		"zero fps":       "simulation:\n  fps: 0\n",
		"bad tolerance":  "solver:\n  tolerance: -1\n",
		"bad level":      "logging:\n  level: loud\n",
		"bad format":     "logging:\n  format: xml\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateCatchesOverrides(t *testing.T) {
	tests := map[string]func(*Config){
		"zero speed":          func(c *Config) { c.Simulation.Speed = 0 },
		"NaN speed":           func(c *Config) { c.Simulation.Speed = math.NaN() },
		"zero snapshot every": func(c *Config) { c.Output.SnapshotEvery = 0 },
		"zero workers":        func(c *Config) { c.Simulation.Workers = 0 },
		"negative fps":        func(c *Config) { c.Simulation.FPS = -30 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.Validate())
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
