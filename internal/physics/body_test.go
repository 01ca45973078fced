package physics

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func mustBody(t *testing.T, x, y, z, vx, vy, vz, m float64) *Body {
	t.Helper()
	b, err := NewBody(x, y, z, vx, vy, vz, m)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return b
}

func TestNewBody_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vals [7]float64
		err  error
	}{
		{"negative mass", [7]float64{0, 0, 0, 0, 0, 0, -1}, ErrNegativeMass},
		{"NaN position", [7]float64{math.NaN(), 0, 0, 0, 0, 0, 1}, ErrNonFinite},
		{"Inf velocity", [7]float64{0, 0, 0, 0, math.Inf(1), 0, 1}, ErrNonFinite},
		{"Inf mass", [7]float64{0, 0, 0, 0, 0, 0, math.Inf(1)}, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.vals
			_, err := NewBody(v[0], v[1], v[2], v[3], v[4], v[5], v[6])
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestNewBody_ZeroMassIsAlive(t *testing.T) {
	b := mustBody(t, 0, 0, 0, 0, 0, 0, 0)
	if !b.Alive() {
		t.Error("zero-mass body should start alive")
	}
}

func TestDistanceTo(t *testing.T) {
	tests := []struct {
		a, b     mgl64.Vec3
		expected float64
	}{
		{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 4, 0}, 5},
		{mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, 0},
		{mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}, 2},
		{mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, 4, 5}, 3},
	}

	for _, tt := range tests {
		a := &Body{Position: tt.a}
		b := &Body{Position: tt.b}
		if got := a.DistanceTo(b); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("DistanceTo(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
		if a.DistanceTo(b) != b.DistanceTo(a) {
			t.Errorf("DistanceTo not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}

func TestRelativePositionFrom(t *testing.T) {
	a := &Body{Position: mgl64.Vec3{1, 2, 3}}
	b := &Body{Position: mgl64.Vec3{4, 6, 8}}

	got := b.RelativePositionFrom(a)
	if got != (mgl64.Vec3{3, 4, 5}) {
		t.Errorf("expected vector from a toward b, got %v", got)
	}
	if a.RelativePositionFrom(b) != got.Mul(-1) {
		t.Error("reverse relative position should be negated")
	}
}

func TestAdjustments(t *testing.T) {
	b := mustBody(t, 1, 1, 1, 2, 2, 2, 5)

	b.AddPositionAdjustment(mgl64.Vec3{0.5, -1, 2})
	b.AddVelocityAdjustment(mgl64.Vec3{-2, 0, 1})

	if b.Position != (mgl64.Vec3{1.5, 0, 3}) {
		t.Errorf("position = %v", b.Position)
	}
	if b.Velocity != (mgl64.Vec3{0, 2, 3}) {
		t.Errorf("velocity = %v", b.Velocity)
	}
	if b.Mass != 5 {
		t.Errorf("mass changed to %v", b.Mass)
	}
}

func TestAbsorb_ConservesMomentum(t *testing.T) {
	m1, m2 := 3.0, 5.0
	v1 := mgl64.Vec3{1, -2, 4}
	v2 := mgl64.Vec3{-3, 6, 0.5}

	a := &Body{Position: mgl64.Vec3{7, 7, 7}, Velocity: v1, Mass: m1}
	b := &Body{Position: mgl64.Vec3{7, 7, 7}, Velocity: v2, Mass: m2}
	before := a.Momentum().Add(b.Momentum())

	if err := a.Absorb(b); err != nil {
		t.Fatalf("Absorb: %v", err)
	}

	if a.Mass != m1+m2 {
		t.Errorf("merged mass = %v, want %v", a.Mass, m1+m2)
	}
	for k := 0; k < 3; k++ {
		want := (m1*v1[k] + m2*v2[k]) / (m1 + m2)
		if a.Velocity[k] != want {
			t.Errorf("velocity[%d] = %v, want %v", k, a.Velocity[k], want)
		}
	}
	if b.Mass != 0 {
		t.Errorf("absorbed mass = %v, want 0", b.Mass)
	}
	if b.Alive() {
		t.Error("absorbed body still alive")
	}
	if b.Velocity != v2 || b.Position != (mgl64.Vec3{7, 7, 7}) {
		t.Error("absorbed body position/velocity should be untouched")
	}

	after := a.Momentum().Add(b.Momentum())
	if !after.ApproxEqualThreshold(before, 1e-12) {
		t.Errorf("momentum %v != %v", after, before)
	}
}

func TestAbsorb_Errors(t *testing.T) {
	t.Run("massless", func(t *testing.T) {
		a := &Body{Velocity: mgl64.Vec3{1, 0, 0}}
		b := &Body{Velocity: mgl64.Vec3{0, 1, 0}}
		if err := a.Absorb(b); !errors.Is(err, ErrMasslessMerge) {
			t.Errorf("expected ErrMasslessMerge, got %v", err)
		}
		if !b.Alive() || a.Velocity != (mgl64.Vec3{1, 0, 0}) {
			t.Error("bodies modified on failed merge")
		}
	})

	t.Run("already absorbed", func(t *testing.T) {
		a := &Body{Mass: 1}
		b := &Body{Mass: 1}
		c := &Body{Mass: 1}
		if err := a.Absorb(b); err != nil {
			t.Fatal(err)
		}
		if err := c.Absorb(b); !errors.Is(err, ErrAbsorbed) {
			t.Errorf("expected ErrAbsorbed, got %v", err)
		}
		if err := b.Absorb(c); !errors.Is(err, ErrAbsorbed) {
			t.Errorf("expected ErrAbsorbed, got %v", err)
		}
		if c.Mass != 1 {
			t.Errorf("c mass = %v", c.Mass)
		}
	})

	t.Run("self", func(t *testing.T) {
		a := &Body{Mass: 1}
		if err := a.Absorb(a); err == nil {
			t.Error("expected error absorbing self")
		}
	})
}

func TestIsFinite(t *testing.T) {
	b := &Body{Mass: 1}
	if !b.IsFinite() {
		t.Error("zero body should be finite")
	}
	b.Velocity[1] = math.NaN()
	if b.IsFinite() {
		t.Error("NaN velocity should not be finite")
	}
}

func TestCloneAndRestore(t *testing.T) {
	a := &Body{Mass: 2}
	b := &Body{Mass: 1}
	_ = a.Absorb(b)

	c := b.Clone()
	if c.Alive() {
		t.Error("clone lost absorbed tag")
	}
	c.Position[0] = 42
	if b.Position[0] == 42 {
		t.Error("clone shares state")
	}

	r := Restore(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6}, 0, false)
	if r.Alive() {
		t.Error("restored absorbed body is alive")
	}
}

func TestBodyJSON(t *testing.T) {
	a := mustBody(t, 1, 2, 3, 4, 5, 6, 7)
	b := mustBody(t, 1, 2, 3, 0, 0, 0, 1)
	if err := a.Absorb(b); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal([]Body{*a, *b})
	if err != nil {
		t.Fatal(err)
	}

	var got []Body
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !got[0].Alive() || got[1].Alive() {
		t.Errorf("liveness lost: %v", got)
	}
	if got[0].Position != a.Position || got[0].Mass != 8 {
		t.Errorf("got %v, want %v", got[0], *a)
	}

	var legacy Body
	if err := json.Unmarshal([]byte(`{"position":[1,0,0],"velocity":[0,0,0],"mass":2}`), &legacy); err != nil {
		t.Fatal(err)
	}
	if !legacy.Alive() || legacy.Position[0] != 1 {
		t.Errorf("unexpected decode %v", legacy)
	}
}
