package metrics

import (
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

// Bound is the fraction of snapshots in which every live body stays within
// radius of the centre of mass. A non-positive radius disables the check.
type Bound struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBound(radius float64) *Bound {
	return &Bound{
		name:   "bound",
		radius: radius,
	}
}

func (b *Bound) Name() string {
	return b.name
}

func (b *Bound) Observe(s sim.Snapshot) {
	b.samples++
	if b.radius <= 0 {
		return
	}

	com := physics.CenterOfMass(s.Bodies)
	for i := range s.Bodies {
		body := &s.Bodies[i]
		if body.Alive() && body.Position.Sub(com).Len() > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Bound) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bound) Reset() {
	b.violations = 0
	b.samples = 0
}
