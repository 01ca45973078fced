package sim

import (
	"context"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/physics"
)

func newBody(x, y, z, vx, vy, vz, m float64) *physics.Body {
	b, err := physics.NewBody(x, y, z, vx, vy, vz, m)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func totalMomentum(bodies []physics.Body) mgl64.Vec3 {
	return physics.TotalMomentum(bodies)
}

var _ = Describe("Engine", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("two bodies at rest", func() {
		const (
			m1 = 3e24
			m2 = 7e25
			r  = 4e8
			dt = 60.0
		)

		It("pulls each body directly toward the other by G*m*dt/r^2", func() {
			e, err := New([]*physics.Body{
				newBody(0, 0, 0, 0, 0, 0, m1),
				newBody(0, r, 0, 0, 0, 0, m2),
			}, Config{G: physics.G, Duration: dt, TimeStep: dt, SnapshotInterval: dt})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Step(ctx)).To(Succeed())

			bodies := e.Bodies()
			want1 := physics.G * m2 * dt / (r * r)
			want2 := physics.G * m1 * dt / (r * r)

			Expect(bodies[0].Velocity[0]).To(BeZero())
			Expect(bodies[0].Velocity[2]).To(BeZero())
			Expect(bodies[0].Velocity[1]).To(BeNumerically("~", want1, want1*1e-12))

			Expect(bodies[1].Velocity[0]).To(BeZero())
			Expect(bodies[1].Velocity[2]).To(BeZero())
			Expect(bodies[1].Velocity[1]).To(BeNumerically("~", -want2, want2*1e-12))
		})
	})

	Describe("momentum", func() {
		It("is conserved over steps without collisions", func() {
			rng := rand.New(rand.NewSource(42))
			bodies := make([]*physics.Body, 12)
			for i := range bodies {
				bodies[i] = newBody(
					(rng.Float64()-0.5)*1e12, (rng.Float64()-0.5)*1e12, (rng.Float64()-0.5)*1e12,
					0, 0, 0, rng.Float64()*1e30)
			}

			e, err := New(bodies, Config{G: physics.G, Duration: 50 * 3600, TimeStep: 3600, SnapshotInterval: 3600})
			Expect(err).NotTo(HaveOccurred())

			before := e.Bodies()
			p0 := totalMomentum(before)

			res, err := e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Collisions).To(BeZero())

			after := e.Bodies()
			scale := 0.0
			for i := range after {
				scale += after[i].Mass * after[i].Velocity.Sub(before[i].Velocity).Len()
			}
			Expect(scale).To(BeNumerically(">", 0))
			Expect(totalMomentum(after).Sub(p0).Len()).To(BeNumerically("<", scale*1e-9))
		})
	})

	Describe("massless bodies", func() {
		It("contribute nothing to other bodies regardless of position", func() {
			a := newBody(0, 0, 0, 0, 0, 0, 5e24)
			b := newBody(1e7, 0, 0, 0, 100, 0, 2e22)
			ghost := newBody(1, 0, 0, 0, 0, 0, 0)

			cfg := Config{G: physics.G, Duration: 100, TimeStep: 10, SnapshotInterval: 10}

			with, err := New([]*physics.Body{a, b, ghost}, cfg)
			Expect(err).NotTo(HaveOccurred())
			without, err := New([]*physics.Body{a, b}, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = with.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = without.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(with.Bodies()[0].Velocity).To(Equal(without.Bodies()[0].Velocity))
			Expect(with.Bodies()[1].Velocity).To(Equal(without.Bodies()[1].Velocity))
			Expect(with.Bodies()[2].Velocity[0]).To(BeNumerically("<", 0))
		})
	})

	Describe("collisions", func() {
		var rec *recorder

		BeforeEach(func() {
			rec = &recorder{}
		})

		It("merges coincident bodies once and keeps the absorbed slot", func() {
			e, err := New([]*physics.Body{
				newBody(1, 2, 3, 4, 0, 0, 2),
				newBody(1, 2, 3, 4, 0, 0, 3),
			}, Config{G: physics.G, Duration: 5, TimeStep: 1, SnapshotInterval: 1}, WithEventHandler(rec))
			Expect(err).NotTo(HaveOccurred())

			res, err := e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Collisions).To(Equal(1))
			Expect(rec.collisions).To(HaveLen(1))
			Expect(rec.collisions[0].Survivor).To(Equal(0))
			Expect(rec.collisions[0].Absorbed).To(Equal(1))
			Expect(rec.collisions[0].Step).To(BeEquivalentTo(0))

			bodies := e.Bodies()
			Expect(bodies).To(HaveLen(2))
			Expect(bodies[0].Mass).To(Equal(5.0))
			Expect(bodies[0].Alive()).To(BeTrue())
			Expect(bodies[1].Mass).To(BeZero())
			Expect(bodies[1].Alive()).To(BeFalse())
			Expect(bodies[1].Position).To(Equal(mgl64.Vec3{5, 2, 3}))
			Expect(bodies[0].Position).To(Equal(mgl64.Vec3{21, 2, 3}))
		})

		It("folds several coincident bodies into the lowest index", func() {
			e, err := New([]*physics.Body{
				newBody(0, 0, 0, 0, 0, 0, 1),
				newBody(0, 0, 0, 0, 0, 0, 1),
				newBody(0, 0, 0, 0, 0, 0, 1),
			}, Config{G: physics.G, Duration: 1, TimeStep: 1, SnapshotInterval: 1}, WithEventHandler(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.collisions).To(HaveLen(2))
			Expect(rec.degenerate).To(HaveLen(3))

			bodies := e.Bodies()
			Expect(bodies[0].Mass).To(Equal(3.0))
			Expect(physics.TotalMass(bodies)).To(Equal(3.0))
		})
	})

	Describe("snapshot cadence", func() {
		It("emits at 0, 2, 4, 6 and 8 for duration 10, step 1, interval 2", func() {
			rec := &recorder{}
			e, err := New([]*physics.Body{newBody(0, 0, 0, 1, 0, 0, 1)},
				Config{G: physics.G, Duration: 10, TimeStep: 1, SnapshotInterval: 2}, WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			res, err := e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Snapshots).To(Equal(5))

			times := make([]float64, 0, len(rec.snapshots))
			for _, s := range rec.snapshots {
				times = append(times, s.Time)
				Expect(s.Bodies).To(HaveLen(1))
				Expect(s.Bodies[0].Position[0]).To(Equal(s.Time))
			}
			Expect(times).To(Equal([]float64{0, 2, 4, 6, 8}))
		})

		It("does not drift for time steps that are not exact in binary", func() {
			rec := &recorder{}
			e, err := New([]*physics.Body{newBody(0, 0, 0, 0, 0, 0, 1)},
				Config{G: physics.G, Duration: 10, TimeStep: 0.1, SnapshotInterval: 0.5}, WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.snapshots).To(HaveLen(20))
			for i, s := range rec.snapshots {
				Expect(s.Step).To(BeEquivalentTo(i * 5))
			}
		})
	})

	Describe("Earth-Sun system", func() {
		It("returns the Earth near its start after one year", func() {
			const (
				sunMass   = 1.989e30
				earthMass = 5.972e24
				au        = 1.496e11
				year      = 31536000.0
			)
			v := math.Sqrt(physics.G * (sunMass + earthMass) / au)

			rec := &recorder{}
			e, err := New([]*physics.Body{
				newBody(0, 0, 0, 0, -v*earthMass/sunMass, 0, sunMass),
				newBody(au, 0, 0, 0, v, 0, earthMass),
			}, Config{G: physics.G, Duration: year, TimeStep: 3600, SnapshotInterval: 86400, ValidateState: true}, WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			res, err := e.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(BeEquivalentTo(8760))
			Expect(res.Collisions).To(BeZero())

			minX := au
			for _, s := range rec.snapshots {
				earth := s.Bodies[1].Position
				sun := s.Bodies[0].Position
				r := earth.Sub(sun).Len()
				Expect(math.Abs(r-au) / au).To(BeNumerically("<", 0.01))
				minX = math.Min(minX, earth[0])
			}
			Expect(minX).To(BeNumerically("<", -0.99*au))

			earth := e.Bodies()[1]
			Expect(earth.Position.Sub(mgl64.Vec3{au, 0, 0}).Len()).To(BeNumerically("<", 0.01*au))
		})
	})
})
