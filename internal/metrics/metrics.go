// Package metrics summarizes a run from the snapshots it emits.
package metrics

import (
	"context"

	"github.com/san-kum/nbodysim/internal/sim"
)

type Metric interface {
	Name() string
	Observe(s sim.Snapshot)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run.
func Defaults(g float64, boundRadius float64) []Metric {
	return []Metric{
		NewEnergyDrift(g),
		NewMomentumDrift(),
		NewLiveBodies(),
		NewBound(boundRadius),
	}
}

// Recorder feeds every snapshot to a set of metrics. It is a sim.Sink.
type Recorder struct {
	metrics []Metric
}

func NewRecorder(ms ...Metric) *Recorder {
	return &Recorder{metrics: ms}
}

func (r *Recorder) WriteSnapshot(_ context.Context, s sim.Snapshot) error {
	for _, m := range r.metrics {
		m.Observe(s)
	}
	return nil
}

func (r *Recorder) Values() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
}
