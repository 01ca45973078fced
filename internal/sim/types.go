package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/nbodysim/internal/physics"
)

// Config holds the scalars of a run. Times are in seconds.
type Config struct {
	// G is the gravitational constant; zero selects physics.G.
	G                float64
	Duration         float64
	TimeStep         float64
	SnapshotInterval float64
	// Workers above one splits the force pass across goroutines.
	Workers       int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		G:                physics.G,
		Duration:         365 * 24 * 3600,
		TimeStep:         3600,
		SnapshotInterval: 24 * 3600,
		Workers:          1,
		ValidateState:    true,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0):
		return fmt.Errorf("%w: time step must be positive, got %g", ErrInvalidConfig, c.TimeStep)
	case !(c.Duration >= 0) || math.IsInf(c.Duration, 0):
		return fmt.Errorf("%w: duration must not be negative, got %g", ErrInvalidConfig, c.Duration)
	case !(c.SnapshotInterval > 0) || math.IsInf(c.SnapshotInterval, 0):
		return fmt.Errorf("%w: snapshot interval must be positive, got %g", ErrInvalidConfig, c.SnapshotInterval)
	case c.G < 0 || math.IsNaN(c.G) || math.IsInf(c.G, 0):
		return fmt.Errorf("%w: gravitational constant must be positive, got %g", ErrInvalidConfig, c.G)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// SnapshotEvery returns the snapshot cadence in steps, derived once from the
// interval so that cadence checks never compare accumulated floats.
func (c Config) SnapshotEvery() int64 {
	n := int64(math.Round(c.SnapshotInterval / c.TimeStep))
	if n < 1 {
		n = 1
	}
	return n
}

// Snapshot is the state of every body at a simulated time. Bodies are copies
// in collection order, absorbed ones included.
type Snapshot struct {
	Step   int64          `json:"step"`
	Time   float64        `json:"time"`
	Bodies []physics.Body `json:"bodies"`
}

// Sink consumes snapshots. Implementations must treat the snapshot as
// read-only.
type Sink interface {
	WriteSnapshot(ctx context.Context, s Snapshot) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, s Snapshot) error

func (f SinkFunc) WriteSnapshot(ctx context.Context, s Snapshot) error {
	return f(ctx, s)
}

// CollisionEvent records Survivor absorbing Absorbed at the end of a step.
type CollisionEvent struct {
	Step     int64      `json:"step"`
	Time     float64    `json:"time"`
	Survivor int        `json:"survivor"`
	Absorbed int        `json:"absorbed"`
	Mass     float64    `json:"mass"`
	Position mgl64.Vec3 `json:"position"`
}

// DegenerateEvent records a pair of live bodies at zero separation whose
// contribution was skipped in the force pass.
type DegenerateEvent struct {
	Step int64   `json:"step"`
	Time float64 `json:"time"`
	I    int     `json:"i"`
	J    int     `json:"j"`
}

type EventHandler interface {
	OnCollision(CollisionEvent)
	OnDegenerate(DegenerateEvent)
}

type Result struct {
	Steps           int64
	Snapshots       int
	Collisions      int
	DegeneratePairs int
	SimulatedTime   float64
	WallTime        time.Duration
}
