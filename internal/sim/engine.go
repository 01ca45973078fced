package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap"
)

// Engine owns a collection of bodies and advances it in fixed steps.
type Engine struct {
	bodies        []*physics.Body
	cfg           Config
	snapshotEvery int64
	step          int64

	sinks    []Sink
	handlers []EventHandler
	logger   *zap.Logger

	adj        []mgl64.Vec3
	coincident [][]int

	snapshots  int
	collisions int
	degenerate int
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSink appends a snapshot sink. Sinks are called in the order added.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, s) }
}

func WithEventHandler(h EventHandler) Option {
	return func(e *Engine) { e.handlers = append(e.handlers, h) }
}

// New validates cfg and takes ownership of copies of bodies.
func New(bodies []*physics.Body, cfg Config, opts ...Option) (*Engine, error) {
	if cfg.G == 0 {
		cfg.G = physics.G
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	owned := make([]*physics.Body, len(bodies))
	for i, b := range bodies {
		if b == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilBody, i)
		}
		owned[i] = b.Clone()
	}

	e := &Engine{
		bodies:        owned,
		cfg:           cfg,
		snapshotEvery: cfg.SnapshotEvery(),
		logger:        zap.NewNop(),
		adj:           make([]mgl64.Vec3, len(owned)),
		coincident:    make([][]int, len(owned)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.Debug("engine initialized",
		zap.Int("bodies", len(owned)),
		zap.Float64("time_step", cfg.TimeStep),
		zap.Float64("duration", cfg.Duration),
		zap.Int64("snapshot_every", e.snapshotEvery),
		zap.Int("workers", cfg.Workers),
	)

	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Bodies returns copies of the current bodies in collection order.
func (e *Engine) Bodies() []physics.Body {
	out := make([]physics.Body, len(e.bodies))
	for i, b := range e.bodies {
		out[i] = *b
	}
	return out
}

func (e *Engine) StepIndex() int64 { return e.step }

// Elapsed returns the simulated time, stepIndex times the time step.
func (e *Engine) Elapsed() float64 { return float64(e.step) * e.cfg.TimeStep }

// Done reports whether the simulated time has reached the duration.
func (e *Engine) Done() bool { return e.Elapsed() >= e.cfg.Duration }

// Step advances the system by one time step. A cancelled or failed force
// pass leaves every body unchanged and the step uncounted.
func (e *Engine) Step(ctx context.Context) error {
	t := e.Elapsed()

	if e.step%e.snapshotEvery == 0 {
		if err := e.emit(ctx, t); err != nil {
			return &SimulationError{Step: e.step, Time: t, Body: -1, Wrapped: err}
		}
	}

	if err := e.accelerate(ctx); err != nil {
		return &SimulationError{Step: e.step, Time: t, Body: -1, Wrapped: err}
	}
	e.reportDegenerate(t)
	e.drift()
	e.collide(t + e.cfg.TimeStep)

	e.step++

	if e.cfg.ValidateState {
		for i, b := range e.bodies {
			if b.Alive() && !b.IsFinite() {
				return &SimulationError{Step: e.step - 1, Time: t, Body: i, Wrapped: ErrInvalidState}
			}
		}
	}
	return nil
}

// Run steps until the simulated time reaches the duration. Cancellation is
// checked between steps.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	startStep := e.step

	result := func() *Result {
		return &Result{
			Steps:           e.step - startStep,
			Snapshots:       e.snapshots,
			Collisions:      e.collisions,
			DegeneratePairs: e.degenerate,
			SimulatedTime:   e.Elapsed(),
			WallTime:        time.Since(start),
		}
	}

	for !e.Done() {
		select {
		case <-ctx.Done():
			e.logger.Info("run cancelled", zap.Int64("step", e.step), zap.Float64("time", e.Elapsed()))
			return result(), ctx.Err()
		default:
		}

		if err := e.Step(ctx); err != nil {
			e.logger.Error("step failed", zap.Error(err))
			return result(), err
		}
	}

	r := result()
	e.logger.Info("run complete",
		zap.Int64("steps", r.Steps),
		zap.Int("snapshots", r.Snapshots),
		zap.Int("collisions", r.Collisions),
		zap.Duration("wall_time", r.WallTime),
	)
	return r, nil
}

func (e *Engine) emit(ctx context.Context, t float64) error {
	snap := Snapshot{Step: e.step, Time: t, Bodies: e.Bodies()}
	for _, s := range e.sinks {
		if err := s.WriteSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("snapshot sink: %w", err)
		}
	}
	e.snapshots++
	return nil
}

// accelerate computes every velocity adjustment from start-of-step positions
// and only then applies them.
func (e *Engine) accelerate(ctx context.Context) error {
	err := parallelFor(ctx, len(e.bodies), e.cfg.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			e.adj[i], e.coincident[i] = e.velocityAdjustment(i, e.coincident[i][:0])
		}
	})
	if err != nil {
		return err
	}

	for i, b := range e.bodies {
		if b.Alive() {
			b.AddVelocityAdjustment(e.adj[i])
		}
	}
	return nil
}

// velocityAdjustment sums G*m_j*dt*(p_j - p_i)/|p_j - p_i|^3 over every live,
// massive j != i. Coincident partners are appended to buf instead.
func (e *Engine) velocityAdjustment(i int, buf []int) (mgl64.Vec3, []int) {
	var adj mgl64.Vec3
	bi := e.bodies[i]
	if !bi.Alive() {
		return adj, buf
	}

	scale := e.cfg.G * e.cfg.TimeStep
	for j, bj := range e.bodies {
		if j == i || !bj.Alive() || bj.Mass == 0 {
			continue
		}

		distance := bi.DistanceTo(bj)
		if distance == 0 {
			// j skips a massless i, so only i can see the pair then.
			if i < j || bi.Mass == 0 {
				buf = append(buf, j)
			}
			continue
		}

		factor := scale * bj.Mass / (distance * distance * distance)
		adj = adj.Add(bj.RelativePositionFrom(bi).Mul(factor))
	}

	return adj, buf
}

func (e *Engine) reportDegenerate(t float64) {
	for i, partners := range e.coincident {
		for _, j := range partners {
			ev := DegenerateEvent{Step: e.step, Time: t, I: min(i, j), J: max(i, j)}
			e.degenerate++
			e.logger.Warn("coincident bodies skipped in force pass",
				zap.Int64("step", ev.Step),
				zap.Float64("time", ev.Time),
				zap.Int("i", ev.I),
				zap.Int("j", ev.J),
			)
			for _, h := range e.handlers {
				h.OnDegenerate(ev)
			}
		}
	}
}

func (e *Engine) drift() {
	dt := e.cfg.TimeStep
	for _, b := range e.bodies {
		if b.Alive() {
			b.AddPositionAdjustment(b.Velocity.Mul(dt))
		}
	}
}

// collide merges bodies at identical positions. Each unordered pair is tested
// once; the lower index survives.
func (e *Engine) collide(t float64) {
	n := len(e.bodies)
	for i := 0; i < n; i++ {
		bi := e.bodies[i]
		if !bi.Alive() {
			continue
		}

		for j := i + 1; j < n; j++ {
			bj := e.bodies[j]
			if !bj.Alive() || bi.Position != bj.Position {
				continue
			}
			if bi.Mass+bj.Mass <= 0 {
				continue
			}

			if err := bi.Absorb(bj); err != nil {
				e.logger.Error("merge failed", zap.Int("survivor", i), zap.Int("absorbed", j), zap.Error(err))
				continue
			}

			ev := CollisionEvent{
				Step:     e.step,
				Time:     t,
				Survivor: i,
				Absorbed: j,
				Mass:     bi.Mass,
				Position: bi.Position,
			}
			e.collisions++
			e.logger.Info("bodies merged",
				zap.Int64("step", ev.Step),
				zap.Int("survivor", i),
				zap.Int("absorbed", j),
				zap.Float64("mass", ev.Mass),
			)
			for _, h := range e.handlers {
				h.OnCollision(ev)
			}
		}
	}
}
