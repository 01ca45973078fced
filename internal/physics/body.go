package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// G is the gravitational constant in m^3 kg^-1 s^-2.
const G = 6.674e-11

// Body is a point mass. Position is in meters, Velocity in meters per second
// and Mass in kilograms.
type Body struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Mass     float64

	absorbed bool
}

// NewBody creates a live body from position, velocity and mass components.
func NewBody(x, y, z, vx, vy, vz, mass float64) (*Body, error) {
	for _, v := range [...]float64{x, y, z, vx, vy, vz, mass} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
	}
	if mass < 0 {
		return nil, fmt.Errorf("%w: %g", ErrNegativeMass, mass)
	}
	return &Body{
		Position: mgl64.Vec3{x, y, z},
		Velocity: mgl64.Vec3{vx, vy, vz},
		Mass:     mass,
	}, nil
}

// Restore rebuilds a body from recorded state, liveness included. It is
// meant for decoding snapshots, not for building scenarios.
func Restore(position, velocity mgl64.Vec3, mass float64, alive bool) Body {
	return Body{Position: position, Velocity: velocity, Mass: mass, absorbed: !alive}
}

// Alive reports whether the body still takes part in the simulation.
func (b *Body) Alive() bool { return !b.absorbed }

// DistanceTo returns the Euclidean distance between b and other.
func (b *Body) DistanceTo(other *Body) float64 {
	return b.Position.Sub(other.Position).Len()
}

// RelativePositionFrom returns the vector pointing from other toward b.
func (b *Body) RelativePositionFrom(other *Body) mgl64.Vec3 {
	return b.Position.Sub(other.Position)
}

func (b *Body) AddPositionAdjustment(delta mgl64.Vec3) {
	b.Position = b.Position.Add(delta)
}

func (b *Body) AddVelocityAdjustment(delta mgl64.Vec3) {
	b.Velocity = b.Velocity.Add(delta)
}

// Absorb merges other into b conserving linear momentum. b takes the
// combined mass and the mass-weighted mean velocity; other is marked absorbed
// and its mass set to zero while its position and velocity are left as they
// were. Neither body is modified when an error is returned.
func (b *Body) Absorb(other *Body) error {
	if b == other {
		return fmt.Errorf("physics: body cannot absorb itself")
	}
	if b.absorbed || other.absorbed {
		return ErrAbsorbed
	}
	total := b.Mass + other.Mass
	if total <= 0 {
		return ErrMasslessMerge
	}

	for k := 0; k < 3; k++ {
		b.Velocity[k] = (b.Mass*b.Velocity[k] + other.Mass*other.Velocity[k]) / total
	}
	b.Mass = total

	other.Mass = 0
	other.absorbed = true
	return nil
}

// Momentum returns mass times velocity.
func (b *Body) Momentum() mgl64.Vec3 {
	return b.Velocity.Mul(b.Mass)
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.LenSqr()
}

// IsFinite reports whether every component of the body's state is finite.
func (b *Body) IsFinite() bool {
	for k := 0; k < 3; k++ {
		if !finite(b.Position[k]) || !finite(b.Velocity[k]) {
			return false
		}
	}
	return finite(b.Mass)
}

// Clone returns an independent copy, liveness included.
func (b *Body) Clone() *Body {
	c := *b
	return &c
}

func (b Body) String() string {
	state := "alive"
	if b.absorbed {
		state = "absorbed"
	}
	return fmt.Sprintf("body{pos=%v vel=%v mass=%g %s}", b.Position, b.Velocity, b.Mass, state)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
