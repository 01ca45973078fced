package physics

import "github.com/go-gl/mathgl/mgl64"

// TotalMomentum sums mass times velocity over all bodies. Absorbed bodies
// have zero mass and contribute nothing.
func TotalMomentum(bodies []Body) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := range bodies {
		p = p.Add(bodies[i].Momentum())
	}
	return p
}

func TotalMass(bodies []Body) float64 {
	m := 0.0
	for i := range bodies {
		m += bodies[i].Mass
	}
	return m
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// for a massless system.
func CenterOfMass(bodies []Body) mgl64.Vec3 {
	var c mgl64.Vec3
	m := TotalMass(bodies)
	if m == 0 {
		return c
	}
	for i := range bodies {
		c = c.Add(bodies[i].Position.Mul(bodies[i].Mass))
	}
	return c.Mul(1 / m)
}

// TotalEnergy returns kinetic plus gravitational potential energy. Pairs at
// zero separation are skipped.
func TotalEnergy(bodies []Body, g float64) float64 {
	ke := 0.0
	pe := 0.0

	for i := range bodies {
		if !bodies[i].Alive() {
			continue
		}
		ke += bodies[i].KineticEnergy()

		for j := i + 1; j < len(bodies); j++ {
			if !bodies[j].Alive() {
				continue
			}
			r := bodies[i].DistanceTo(&bodies[j])
			if r == 0 {
				continue
			}
			pe -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}

	return ke + pe
}

// AngularMomentum returns the total angular momentum about the origin.
func AngularMomentum(bodies []Body) mgl64.Vec3 {
	var l mgl64.Vec3
	for i := range bodies {
		l = l.Add(bodies[i].Position.Cross(bodies[i].Momentum()))
	}
	return l
}
