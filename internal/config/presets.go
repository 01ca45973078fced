package config

import (
	"sort"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/scenario"
)

const (
	hour = 3600.0
	day  = 24 * hour
	year = 365 * day
)

var Presets = map[string]*Config{
	"earth-sun": {
		Scenario: "earth-sun", Output: "earth-sun.out",
		Duration: year, TimeStep: hour, SnapshotInterval: day,
	},
	"binary": {
		Scenario: "binary", Output: "binary.out",
		Duration: 2 * year, TimeStep: hour, SnapshotInterval: day,
	},
	"cluster": {
		Scenario: "cluster", Output: "cluster.out",
		Duration: 1e6 * year, TimeStep: 100 * year, SnapshotInterval: 1e4 * year,
		Workers: 4,
	},
	"random": {
		Input: InputRandom, Output: "random.out",
		Duration: 1e6 * year, TimeStep: 100 * year, SnapshotInterval: 1e4 * year,
		Workers: 4,
	},
}

// GetPreset returns a copy of the named preset with defaults filled in, or
// nil if there is none.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.GravitationalConstant = physics.G
	cfg.Random = scenario.DefaultRandomParams()
	cfg.LogLevel = DefaultLogLevel
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
