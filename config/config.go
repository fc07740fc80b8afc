// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Material  MaterialConfig  `yaml:"material"`
	Debug     DebugConfig     `yaml:"debug"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	KillMargin float64 `yaml:"kill_margin"` // Distance outside the world before a body is retired
}

// PhysicsConfig holds integration and broad-phase parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	Gravity      float64 `yaml:"gravity"`
	MaxSpeed     float64 `yaml:"max_speed"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// MaterialConfig holds default bounce and friction for new bodies.
type MaterialConfig struct {
	Bounce   float64 `yaml:"bounce"`
	Friction float64 `yaml:"friction"`
}

// DebugConfig holds optional diagnostics passed to the resolver.
type DebugConfig struct {
	LogContacts bool `yaml:"log_contacts"`
	LogSkipped  bool `yaml:"log_skipped"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	StatsWindowTicks int     // Telemetry.StatsWindow in ticks
	Bounce           float64 // Material.Bounce clamped to [0, 1]
	Friction         float64 // Material.Friction clamped to [0, 1]
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %g", c.Physics.DT)
	}
	if c.Physics.GridCellSize <= 0 {
		return fmt.Errorf("physics.grid_cell_size must be positive, got %g", c.Physics.GridCellSize)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.StatsWindowTicks = 1
	if c.Physics.DT > 0 {
		c.Derived.StatsWindowTicks = max(1, int(math.Round(c.Telemetry.StatsWindow/c.Physics.DT)))
	}
	c.Derived.Bounce = clamp01(c.Material.Bounce)
	c.Derived.Friction = clamp01(c.Material.Friction)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
