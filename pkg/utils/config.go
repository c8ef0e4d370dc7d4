package utils

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
	"github.com/oxygene76/orrery/pkg/simulation"
)

// EnvPrefix is the prefix for configuration overrides from the environment.
const EnvPrefix = "ORRERY"

// Config represents the orrery configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Solver     SolverConfig     `yaml:"solver" mapstructure:"solver"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// SimulationConfig controls the frame loop
type SimulationConfig struct {
	Speed       float64 `yaml:"speed" mapstructure:"speed"`
	FPS         float64 `yaml:"fps" mapstructure:"fps"`
	StartDays   float64 `yaml:"start_days" mapstructure:"start_days"`
	TrailLength int     `yaml:"trail_length" mapstructure:"trail_length"`
	Workers     int     `yaml:"workers" mapstructure:"workers"`
}

// SolverConfig contains Kepler solver parameters
type SolverConfig struct {
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// CatalogConfig selects the body table; an empty path uses the built-in J2000 planets
type CatalogConfig struct {
	Path   string   `yaml:"path" mapstructure:"path"`
	Bodies []string `yaml:"bodies" mapstructure:"bodies"`
}

// OutputConfig controls snapshot output
type OutputConfig struct {
	SnapshotFile  string `yaml:"snapshot_file" mapstructure:"snapshot_file"`
	SnapshotEvery int    `yaml:"snapshot_every" mapstructure:"snapshot_every"`
	YUp           bool   `yaml:"y_up" mapstructure:"y_up"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig contains the prometheus listener address; empty disables it
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Speed:       simulation.DefaultSpeed,
			FPS:         60,
			StartDays:   0,
			TrailLength: simulation.DefaultTrailLength,
			Workers:     1,
		},
		Solver: SolverConfig{
			Tolerance:     orbital.DefaultTolerance,
			MaxIterations: orbital.DefaultMaxIterations,
		},
		Output: OutputConfig{
			SnapshotFile:  "snapshots.jsonl",
			SnapshotEvery: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SolverSettings converts the solver section to an orbital.Solver
func (c *Config) SolverSettings() orbital.Solver {
	return orbital.Solver{Tolerance: c.Solver.Tolerance, MaxIterations: c.Solver.MaxIterations}
}

// LoadConfig loads configuration from path, or from the default search paths when path is
// empty. A missing config file yields DefaultConfig with environment overrides applied.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".orrery"))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes config as YAML to path, creating parent directories
func SaveConfig(config *Config, path string) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the default config file location
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".orrery", "config.yaml"), nil
}

// setDefaults registers every default so AutomaticEnv can override keys absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("simulation.speed", d.Simulation.Speed)
	v.SetDefault("simulation.fps", d.Simulation.FPS)
	v.SetDefault("simulation.start_days", d.Simulation.StartDays)
	v.SetDefault("simulation.trail_length", d.Simulation.TrailLength)
	v.SetDefault("simulation.workers", d.Simulation.Workers)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.bodies", d.Catalog.Bodies)
	v.SetDefault("output.snapshot_file", d.Output.SnapshotFile)
	v.SetDefault("output.snapshot_every", d.Output.SnapshotEvery)
	v.SetDefault("output.y_up", d.Output.YUp)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Validate checks the configuration, e.g. after command-line overrides were applied.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	sim := config.Simulation
	if math.IsNaN(sim.Speed) || sim.Speed < simulation.MinSpeed || sim.Speed > simulation.MaxSpeed {
		return fmt.Errorf("simulation speed must be in [%g, %g], got %g", simulation.MinSpeed, simulation.MaxSpeed, sim.Speed)
	}
	if sim.FPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	if sim.TrailLength <= 0 {
		return fmt.Errorf("trail length must be positive")
	}
	if sim.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if config.Solver.Tolerance <= 0 {
		return fmt.Errorf("solver tolerance must be positive")
	}
	if config.Solver.MaxIterations <= 0 {
		return fmt.Errorf("solver max iterations must be positive")
	}

	if config.Output.SnapshotEvery <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}
