package scenario

import (
	"math/rand"

	"github.com/san-kum/nbodysim/internal/physics"
)

const (
	DefaultCount       = 100
	DefaultDimension   = 4e15 // m
	DefaultMaxVelocity = 1e3  // m/s
	DefaultMaxMass     = 2e31 // kg
)

// RandomParams bounds a random scenario. Positions fall in a cube of side
// Dimension centred on the origin, velocity components in
// [-MaxVelocity/2, MaxVelocity/2) and masses in [0, MaxMass).
type RandomParams struct {
	Count       int     `yaml:"count"`
	Dimension   float64 `yaml:"dimension"`
	MaxVelocity float64 `yaml:"max_velocity"`
	MaxMass     float64 `yaml:"max_mass"`
}

func DefaultRandomParams() RandomParams {
	return RandomParams{
		Count:       DefaultCount,
		Dimension:   DefaultDimension,
		MaxVelocity: DefaultMaxVelocity,
		MaxMass:     DefaultMaxMass,
	}
}

// Random draws p.Count bodies from rng. A body may come out with zero mass.
func Random(rng *rand.Rand, p RandomParams) []*physics.Body {
	centered := func(span float64) float64 {
		return rng.Float64()*span - span/2
	}

	bodies := make([]*physics.Body, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		x, y, z := centered(p.Dimension), centered(p.Dimension), centered(p.Dimension)
		vx, vy, vz := centered(p.MaxVelocity), centered(p.MaxVelocity), centered(p.MaxVelocity)
		m := rng.Float64() * p.MaxMass

		// Inputs are finite and non-negative for sane params.
		b, err := physics.NewBody(x, y, z, vx, vy, vz, m)
		if err != nil {
			continue
		}
		bodies = append(bodies, b)
	}
	return bodies
}
