package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/units"
)

const (
	AU        = 1.496e11 // m
	EarthMass = 5.972e24 // kg
)

var builders = map[string]func() []*physics.Body{
	"earth-sun": EarthSun,
	"binary":    Binary,
	"cluster":   Cluster,
}

// Named returns a fresh copy of the scenario registered under name.
func Named(name string) ([]*physics.Body, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown scenario %q", name)
	}
	return build(), nil
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EarthSun places the Earth on a circular orbit of one AU in the xy plane.
// The Sun carries the opposite momentum so the system does not drift.
func EarthSun() []*physics.Body {
	v := math.Sqrt(physics.G * (units.SolarMass + EarthMass) / AU)
	return []*physics.Body{
		mustBody(0, 0, 0, 0, -v*EarthMass/units.SolarMass, 0, units.SolarMass),
		mustBody(AU, 0, 0, 0, v, 0, EarthMass),
	}
}

// Binary is a pair of solar-mass stars one AU apart on a circular orbit about
// their common centre.
func Binary() []*physics.Body {
	m := units.SolarMass
	v := math.Sqrt(physics.G * m / (2 * AU))
	return []*physics.Body{
		mustBody(-AU/2, 0, 0, 0, -v, 0, m),
		mustBody(AU/2, 0, 0, 0, v, 0, m),
	}
}

// Cluster is a fixed-seed random cluster of 50 bodies in a cube of 1e16 m.
func Cluster() []*physics.Body {
	return Random(rand.New(rand.NewSource(1)), RandomParams{
		Count:       50,
		Dimension:   1e16,
		MaxVelocity: DefaultMaxVelocity,
		MaxMass:     DefaultMaxMass,
	})
}

func mustBody(x, y, z, vx, vy, vz, m float64) *physics.Body {
	b, err := physics.NewBody(x, y, z, vx, vy, vz, m)
	if err != nil {
		panic(err)
	}
	return b
}
