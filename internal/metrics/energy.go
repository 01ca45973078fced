package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

// Energy reports the total energy of the last observed snapshot.
type Energy struct {
	name    string
	g       float64
	current float64
	samples int
}

func NewEnergy(g float64) *Energy {
	return &Energy{name: "energy", g: g}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Snapshot) {
	e.current = physics.TotalEnergy(s.Bodies, e.g)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.current
}

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure of total energy from its
// first observed value.
type EnergyDrift struct {
	name          string
	g             float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", g: g}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Snapshot) {
	energy := physics.TotalEnergy(s.Bodies, e.g)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
