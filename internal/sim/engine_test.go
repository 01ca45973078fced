package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/nbodysim/internal/physics"
)

func body(t testing.TB, x, y, z, vx, vy, vz, m float64) *physics.Body {
	t.Helper()
	b, err := physics.NewBody(x, y, z, vx, vy, vz, m)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return b
}

func testConfig() Config {
	return Config{
		G:                physics.G,
		Duration:         10,
		TimeStep:         1,
		SnapshotInterval: 1,
		ValidateState:    true,
	}
}

type recorder struct {
	snapshots  []Snapshot
	collisions []CollisionEvent
	degenerate []DegenerateEvent
}

func (r *recorder) WriteSnapshot(_ context.Context, s Snapshot) error {
	r.snapshots = append(r.snapshots, s)
	return nil
}

func (r *recorder) OnCollision(ev CollisionEvent)   { r.collisions = append(r.collisions, ev) }
func (r *recorder) OnDegenerate(ev DegenerateEvent) { r.degenerate = append(r.degenerate, ev) }

func randomBodies(t testing.TB, n int, seed int64) []*physics.Body {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*physics.Body, n)
	for i := range bodies {
		bodies[i] = body(t,
			(rng.Float64()-0.5)*1e12, (rng.Float64()-0.5)*1e12, (rng.Float64()-0.5)*1e12,
			(rng.Float64()-0.5)*1e3, (rng.Float64()-0.5)*1e3, (rng.Float64()-0.5)*1e3,
			rng.Float64()*1e30,
		)
	}
	return bodies
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero time step", func(c *Config) { c.TimeStep = 0 }},
		{"negative time step", func(c *Config) { c.TimeStep = -1 }},
		{"NaN time step", func(c *Config) { c.TimeStep = math.NaN() }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"zero snapshot interval", func(c *Config) { c.SnapshotInterval = 0 }},
		{"negative G", func(c *Config) { c.G = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mod(&cfg)
			_, err := New(nil, cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewNilBody(t *testing.T) {
	_, err := New([]*physics.Body{body(t, 0, 0, 0, 0, 0, 0, 1), nil}, testConfig())
	if !errors.Is(err, ErrNilBody) {
		t.Errorf("expected ErrNilBody, got %v", err)
	}
}

func TestNewDefaultsG(t *testing.T) {
	cfg := testConfig()
	cfg.G = 0
	e, err := New(nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if e.Config().G != physics.G {
		t.Errorf("G = %v, want %v", e.Config().G, physics.G)
	}
}

func TestNewCopiesBodies(t *testing.T) {
	b := body(t, 1, 2, 3, 0, 0, 0, 1)
	e, err := New([]*physics.Body{b}, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	b.Position[0] = 99
	if e.Bodies()[0].Position[0] != 1 {
		t.Error("engine shares caller's body")
	}
}

func TestSnapshotEvery(t *testing.T) {
	tests := []struct {
		dt, interval float64
		expected     int64
	}{
		{1, 2, 2},
		{0.1, 0.3, 3},
		{3600, 86400, 24},
		{2, 1, 1},
		{1, 2.4, 2},
	}

	for _, tt := range tests {
		cfg := Config{TimeStep: tt.dt, SnapshotInterval: tt.interval}
		if got := cfg.SnapshotEvery(); got != tt.expected {
			t.Errorf("SnapshotEvery(dt=%v, interval=%v) = %d, want %d", tt.dt, tt.interval, got, tt.expected)
		}
	}
}

func TestRunStepCount(t *testing.T) {
	tests := []struct {
		dt, duration float64
		steps        int64
	}{
		{1, 10, 10},
		{0.1, 1, 10},
		{3, 10, 4},
		{1, 0, 0},
	}

	for _, tt := range tests {
		cfg := testConfig()
		cfg.TimeStep = tt.dt
		cfg.Duration = tt.duration
		cfg.SnapshotInterval = tt.dt

		e, err := New([]*physics.Body{body(t, 0, 0, 0, 1, 0, 0, 1)}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		res, err := e.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if res.Steps != tt.steps {
			t.Errorf("dt=%v duration=%v: expected %d steps, got %d", tt.dt, tt.duration, tt.steps, res.Steps)
		}
		if !e.Done() {
			t.Error("engine not done after run")
		}
	}
}

func TestStepOrder_SemiImplicit(t *testing.T) {
	// Position must move with the velocity updated in the same step.
	cfg := testConfig()
	cfg.TimeStep = 10
	a := body(t, 0, 0, 0, 0, 0, 0, 1e20)
	b := body(t, 1e6, 0, 0, 0, 0, 0, 1)

	e, err := New([]*physics.Body{a, b}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Step(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := e.Bodies()[1]
	if got.Velocity[0] >= 0 {
		t.Fatalf("light body should fall toward heavy one, v=%v", got.Velocity)
	}
	wantX := 1e6 + got.Velocity[0]*cfg.TimeStep
	if got.Position[0] != wantX {
		t.Errorf("position %v, want %v from updated velocity", got.Position[0], wantX)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	bodies := randomBodies(t, 80, 7)

	run := func(workers int) []physics.Body {
		cfg := testConfig()
		cfg.TimeStep = 3600
		cfg.Duration = 3600 * 5
		cfg.SnapshotInterval = 3600
		cfg.Workers = workers
		e, err := New(bodies, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return e.Bodies()
	}

	seq := run(1)
	par := run(4)
	for i := range seq {
		if seq[i].Position != par[i].Position || seq[i].Velocity != par[i].Velocity {
			t.Fatalf("body %d differs: %v vs %v", i, seq[i], par[i])
		}
	}
}

func TestRunCancelled(t *testing.T) {
	e, err := New([]*physics.Body{body(t, 0, 0, 0, 0, 0, 0, 1)}, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Steps != 0 {
		t.Errorf("expected 0 steps, got %d", res.Steps)
	}
}

func TestRunCancelledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	sink := SinkFunc(func(context.Context, Snapshot) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	})

	e, err := New([]*physics.Body{body(t, 0, 0, 0, 1, 0, 0, 1)}, testConfig(), WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Steps != 3 {
		t.Errorf("expected 3 completed steps, got %d", res.Steps)
	}
	if got := e.Bodies()[0].Position[0]; got != 3 {
		t.Errorf("position after 3 steps = %v, want 3", got)
	}
}

func TestSinkErrorAbortsStep(t *testing.T) {
	errDisk := errors.New("disk full")
	sink := SinkFunc(func(context.Context, Snapshot) error { return errDisk })

	e, err := New([]*physics.Body{body(t, 0, 0, 0, 1, 0, 0, 1)}, testConfig(), WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Run(context.Background())
	if !errors.Is(err, errDisk) {
		t.Fatalf("expected sink error, got %v", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %v", err)
	}
	if e.StepIndex() != 0 {
		t.Errorf("step counted despite sink failure")
	}
}

func TestValidateStateReportsNonFinite(t *testing.T) {
	cfg := testConfig()
	cfg.TimeStep = 10
	e, err := New([]*physics.Body{body(t, 1e308, 0, 0, 1e308, 0, 0, 1)}, cfg)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Run(context.Background())
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) || simErr.Body != 0 {
		t.Errorf("expected body index 0, got %v", err)
	}
}

func TestCoincidentPairIsSkipped(t *testing.T) {
	rec := &recorder{}
	a := body(t, 5, 5, 5, 0, 1, 0, 2)
	b := body(t, 5, 5, 5, 0, 1, 0, 3)
	c := body(t, 1e3, 0, 0, 0, 0, 0, 1)

	e, err := New([]*physics.Body{a, b, c}, testConfig(), WithEventHandler(rec))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Step(context.Background()); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	if len(rec.degenerate) != 1 {
		t.Fatalf("expected 1 degenerate event, got %d", len(rec.degenerate))
	}
	if ev := rec.degenerate[0]; ev.I != 0 || ev.J != 1 || ev.Step != 0 {
		t.Errorf("unexpected degenerate event %+v", ev)
	}
	for i, bd := range e.Bodies() {
		if !bd.IsFinite() {
			t.Errorf("body %d is not finite: %v", i, bd)
		}
	}
}

func TestMassiveBodyCoincidentWithTestParticle(t *testing.T) {
	rec := &recorder{}
	heavy := body(t, 0, 0, 0, 0, 0, 0, 1e24)
	probe := body(t, 0, 0, 0, 0, 0, 0, 0)

	e, err := New([]*physics.Body{probe, heavy}, testConfig(), WithEventHandler(rec))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Step(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(rec.degenerate) != 1 || rec.degenerate[0].I != 0 || rec.degenerate[0].J != 1 {
		t.Errorf("expected one degenerate event (0,1), got %+v", rec.degenerate)
	}
	if len(rec.collisions) != 1 || rec.collisions[0].Survivor != 0 {
		t.Fatalf("expected probe to absorb heavy body, got %+v", rec.collisions)
	}
	bodies := e.Bodies()
	if bodies[0].Mass != 1e24 || bodies[1].Alive() {
		t.Errorf("unexpected merge result %v %v", bodies[0], bodies[1])
	}
}

func TestTwoMasslessBodiesPassThrough(t *testing.T) {
	rec := &recorder{}
	a := body(t, 0, 0, 0, 1, 0, 0, 0)
	b := body(t, 0, 0, 0, 1, 0, 0, 0)

	e, err := New([]*physics.Body{a, b}, testConfig(), WithEventHandler(rec))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rec.collisions) != 0 {
		t.Errorf("massless pair merged: %+v", rec.collisions)
	}
	if len(rec.degenerate) != 0 {
		t.Errorf("massless pair reported degenerate: %+v", rec.degenerate)
	}
}

func TestSnapshotBodiesAreCopies(t *testing.T) {
	rec := &recorder{}
	e, err := New([]*physics.Body{body(t, 0, 0, 0, 1, 0, 0, 1)}, testConfig(), WithSink(rec))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Step(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec.snapshots[0].Bodies[0].Position = mgl64.Vec3{42, 42, 42}
	if e.Bodies()[0].Position[0] != 1 {
		t.Error("sink mutation leaked into engine state")
	}
}

func BenchmarkStep_100(b *testing.B) {
	e, err := New(randomBodies(b, 100, 1), Config{TimeStep: 3600, Duration: math.MaxFloat64, SnapshotInterval: 1e12})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Step(ctx)
	}
}

func BenchmarkStep_1000_Parallel(b *testing.B) {
	e, err := New(randomBodies(b, 1000, 1), Config{TimeStep: 3600, Duration: math.MaxFloat64, SnapshotInterval: 1e12, Workers: 8})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Step(ctx)
	}
}
