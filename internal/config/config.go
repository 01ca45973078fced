package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/scenario"
	"github.com/san-kum/nbodysim/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeStep         = 3600.0
	DefaultDuration         = 365 * 24 * 3600.0
	DefaultSnapshotInterval = 24 * 3600.0
	DefaultOutput           = "nbody.out"
	DefaultLogLevel         = "info"

	// InputRandom selects randomly generated bodies.
	InputRandom = "random"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the control file of a run. Times are in seconds.
type Config struct {
	Output string `yaml:"output"`
	// Input is a body table path or "random". Scenario, when set, takes
	// precedence over Input.
	Input    string `yaml:"input"`
	Scenario string `yaml:"scenario,omitempty"`

	Duration              float64 `yaml:"duration"`
	TimeStep              float64 `yaml:"time_step"`
	SnapshotInterval      float64 `yaml:"snapshot_interval"`
	GravitationalConstant float64 `yaml:"gravitational_constant"`
	Workers               int     `yaml:"workers"`

	Seed     int64                 `yaml:"seed"`
	Random   scenario.RandomParams `yaml:"random"`
	LogLevel string                `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Output:                DefaultOutput,
		Input:                 InputRandom,
		Duration:              DefaultDuration,
		TimeStep:              DefaultTimeStep,
		SnapshotInterval:      DefaultSnapshotInterval,
		GravitationalConstant: physics.G,
		Workers:               1,
		Random:                scenario.DefaultRandomParams(),
		LogLevel:              DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Scenario != "" {
		if _, err := scenario.Named(c.Scenario); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.usesRandom() {
		r := c.Random
		if r.Count < 0 || r.Dimension < 0 || r.MaxVelocity < 0 || r.MaxMass < 0 {
			return fmt.Errorf("%w: random parameters must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		G:                c.GravitationalConstant,
		Duration:         c.Duration,
		TimeStep:         c.TimeStep,
		SnapshotInterval: c.SnapshotInterval,
		Workers:          c.Workers,
		ValidateState:    true,
	}
}

func (c *Config) usesRandom() bool {
	return c.Scenario == "" && (c.Input == "" || strings.EqualFold(c.Input, InputRandom))
}

// Bodies builds the initial bodies. A body table that does not exist falls
// back to random bodies.
func (c *Config) Bodies(rng *rand.Rand, logger *zap.Logger) ([]*physics.Body, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if c.Scenario != "" {
		return scenario.Named(c.Scenario)
	}
	if c.usesRandom() {
		return scenario.Random(rng, c.Random), nil
	}

	f, err := os.Open(c.Input)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("input file not found, using random bodies", zap.String("input", c.Input))
		return scenario.Random(rng, c.Random), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bodies, err := scenario.ReadBodies(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Input, err)
	}
	return bodies, nil
}
