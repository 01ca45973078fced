package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

// MomentumDrift is the largest change in total momentum, relative to the sum
// of body momentum magnitudes in the first snapshot. With nothing moving at
// the start the drift is absolute.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec3
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s sim.Snapshot) {
	p := physics.TotalMomentum(s.Bodies)

	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for i := range s.Bodies {
			if s.Bodies[i].Alive() {
				m.scale += s.Bodies[i].Momentum().Len()
			}
		}
	}
	m.samples++

	drift := p.Sub(m.initial).Len()
	if m.scale > 0 {
		drift /= m.scale
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec3{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

// LiveBodies counts bodies not yet absorbed in the last snapshot.
type LiveBodies struct {
	name  string
	count int
}

func NewLiveBodies() *LiveBodies {
	return &LiveBodies{name: "live_bodies"}
}

func (l *LiveBodies) Name() string { return l.name }

func (l *LiveBodies) Observe(s sim.Snapshot) {
	l.count = 0
	for i := range s.Bodies {
		if s.Bodies[i].Alive() {
			l.count++
		}
	}
}

func (l *LiveBodies) Value() float64 { return float64(l.count) }

func (l *LiveBodies) Reset() { l.count = 0 }
