package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/physics"
	"github.com/san-kum/tearsim/internal/sim"
)

const frameMs = 1000.0 / 60

func smallParams() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Cols, p.Rows = 12, 8
	p.Width, p.Height, p.Padding = 240, 160, 10
	return p
}

type countingObserver struct{ frames int }

func (o *countingObserver) OnFrame(*dynamo.Snapshot) { o.frames++ }

var _ = Describe("Simulation", func() {
	Describe("construction", func() {
		It("builds the full lattice", func() {
			s, err := sim.New(smallParams(), 1)
			Expect(err).NotTo(HaveOccurred())

			snap := s.Snapshot()
			Expect(snap.Particles).To(Equal(96))
			Expect(snap.Constraints).To(Equal(physics.EdgeCount(12, 8)))
			Expect(snap.Initial).To(Equal(snap.Constraints))
			Expect(snap.MeanStrain).To(BeNumerically("~", 1, 1e-9))
		})

		It("rejects invalid parameters", func() {
			p := smallParams()
			p.Rows = 1
			_, err := sim.New(p, 1)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Describe("RebuildLattice", func() {
		var s *sim.Simulation

		BeforeEach(func() {
			var err error
			s, err = sim.New(smallParams(), 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("replaces the lattice wholesale", func() {
			Expect(s.RebuildLattice(5, 4, 100, 80, 5)).To(Succeed())
			snap := s.Snapshot()
			Expect(snap.Particles).To(Equal(20))
			Expect(snap.Constraints).To(Equal(physics.EdgeCount(5, 4)))
			Expect(snap.Width).To(Equal(100.0))
		})

		It("fails fast and keeps the old lattice on bad geometry", func() {
			err := s.RebuildLattice(0, 4, 100, 80, 5)
			Expect(errors.Is(err, dynamo.ErrInvalidLattice)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())

			var cfgErr *dynamo.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("cols"))
			Expect(s.Snapshot().Particles).To(Equal(96))
		})

		It("drops queued requests", func() {
			s.InjectPulse(50, 50, 1000)
			s.WeakenNear(50, 50, true)
			Expect(s.RebuildLattice(5, 4, 100, 80, 5)).To(Succeed())
			Expect(s.Pending()).To(BeZero())
		})
	})

	Describe("Tick", func() {
		It("keeps requests queued until a step runs", func() {
			s, _ := sim.New(smallParams(), 1)
			s.InjectPulse(120, 80, 5000)

			Expect(s.Tick(1)).To(Equal(0))
			Expect(s.Pending()).To(Equal(1))
			Expect(s.Snapshot().Pulses).To(BeZero())

			Expect(s.Tick(frameMs)).To(Equal(1))
			Expect(s.Pending()).To(BeZero())
			Expect(s.Snapshot().Pulses).To(Equal(1))
		})

		It("advances simulation time by whole steps", func() {
			s, _ := sim.New(smallParams(), 1)
			for i := 0; i < 30; i++ {
				s.Tick(frameMs)
			}
			Expect(s.Steps()).To(Equal(30))
			Expect(s.Time()).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("notifies observers once per productive tick", func() {
			s, _ := sim.New(smallParams(), 1)
			obs := &countingObserver{}
			s.AddObserver(obs)

			s.Tick(2 * frameMs)
			s.Tick(1)
			s.Tick(frameMs)
			Expect(obs.frames).To(Equal(2))
		})

		It("is deterministic for a given seed", func() {
			run := func() *dynamo.Snapshot {
				s, _ := sim.New(smallParams(), 42)
				s.InjectPulse(100, 70, 9000)
				s.WeakenNear(120, 80, true)
				for i := 0; i < 90; i++ {
					s.Tick(frameMs)
				}
				return s.Snapshot()
			}
			a, b := run(), run()
			Expect(a.Positions).To(Equal(b.Positions))
			Expect(a.Pairs()).To(Equal(b.Pairs()))
		})

		It("never moves pinned particles", func() {
			s, _ := sim.New(smallParams(), 7)
			before := s.Snapshot()
			for i := 0; i < 60; i++ {
				if i%5 == 0 {
					s.InjectPulse(30+float64(i)*3, 40, 20000)
					s.WeakenNear(30+float64(i)*3, 40, true)
				}
				s.Tick(frameMs)
			}
			after := s.Snapshot()
			for i, pinned := range before.Pinned {
				if pinned {
					Expect(after.Positions[i]).To(Equal(before.Positions[i]), "pinned particle %d", i)
				}
			}
			Expect(after.IsValid()).To(BeTrue())
		})
	})

	Describe("pulses", func() {
		threeByThree := func() dynamo.Params {
			p := dynamo.DefaultParams()
			p.Cols, p.Rows = 3, 3
			p.Width, p.Height, p.Padding = 200, 200, 0
			p.StructuralStiffness = 0.1
			p.ShearStiffness = 0.05
			return p
		}

		It("pushes a particle sitting on the pulse origin outward", func() {
			p := threeByThree()
			plain, err := sim.New(p, 3)
			Expect(err).NotTo(HaveOccurred())
			pushed, err := sim.New(p, 3)
			Expect(err).NotTo(HaveOccurred())

			center := pushed.Lattice().Index(1, 1)
			origin := pushed.Snapshot().Positions[center]
			pushed.InjectPulse(origin.X, origin.Y, p.PulseStrength)

			Expect(plain.Tick(frameMs)).To(Equal(1))
			Expect(pushed.Tick(frameMs)).To(Equal(1))

			base := plain.Snapshot().Positions[center]
			moved := pushed.Snapshot().Positions[center]
			dx := moved.X - base.X
			Expect(dx).To(BeNumerically(">", 0.1))
			Expect(math.Abs(moved.Y - base.Y)).To(BeNumerically("<", dx))
		})

		It("pushes neighbours away from an offset origin", func() {
			p := threeByThree()
			plain, _ := sim.New(p, 3)
			pushed, _ := sim.New(p, 3)

			pushed.InjectPulse(100, 60, p.PulseStrength)
			plain.Tick(frameMs)
			pushed.Tick(frameMs)

			center := pushed.Lattice().Index(1, 1)
			dy := pushed.Snapshot().Positions[center].Y - plain.Snapshot().Positions[center].Y
			Expect(dy).To(BeNumerically(">", 0))
		})

		It("expires old pulses", func() {
			p := threeByThree()
			s, _ := sim.New(p, 3)
			s.InjectPulse(100, 100, p.PulseStrength)
			s.Tick(frameMs)
			Expect(s.Snapshot().Pulses).To(Equal(1))

			lifetime := p.PulseLifetime * p.PulseHalfLife
			for s.Time() <= lifetime+2*p.Dt {
				s.Tick(frameMs)
			}
			Expect(s.Snapshot().Pulses).To(BeZero())
		})
	})

	Describe("tearing", func() {
		It("tears under an aggressive weaken held in place", func() {
			s, _ := sim.New(smallParams(), 11)
			for i := 0; i < 30; i++ {
				s.InjectPulse(120, 80, 20000)
				s.WeakenNear(120, 80, true)
				s.Tick(frameMs)
			}
			snap := s.Snapshot()
			Expect(snap.Broken).To(BeNumerically(">", 0))
			Expect(snap.Constraints).To(Equal(snap.Initial - snap.Broken))
		})

		It("leaves the lattice intact with no input", func() {
			s, _ := sim.New(smallParams(), 11)
			for i := 0; i < 120; i++ {
				s.Tick(frameMs)
			}
			Expect(s.Snapshot().Broken).To(BeZero())
		})
	})

	Describe("SetParam", func() {
		It("rebuilds on geometry changes", func() {
			s, _ := sim.New(smallParams(), 1)
			Expect(s.SetParam("cols", 6)).To(Succeed())
			Expect(s.Snapshot().Particles).To(Equal(48))
		})

		It("updates material in place", func() {
			s, _ := sim.New(smallParams(), 1)
			Expect(s.SetParam("shear_stiffness", 0.2)).To(Succeed())
			for _, c := range s.Lattice().Graph.Constraints {
				if c.Kind == physics.Shear {
					Expect(c.Stiffness).To(Equal(0.2))
				}
			}
		})

		It("rejects values that fail validation", func() {
			s, _ := sim.New(smallParams(), 1)
			err := s.SetParam("damping", 1.5)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(s.Params().Damping).To(Equal(smallParams().Damping))
		})

		It("rejects unknown names", func() {
			s, _ := sim.New(smallParams(), 1)
			Expect(errors.Is(s.SetParam("gravity", 1), dynamo.ErrUnknownParam)).To(BeTrue())
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every seed and averages metrics", func() {
		e := sim.NewEnsemble(smallParams(), 4, 100)
		results, err := e.Run(context.Background(), func(ctx context.Context, s *sim.Simulation) (*dynamo.Result, error) {
			for i := 0; i < 10; i++ {
				s.Tick(frameMs)
			}
			return &dynamo.Result{
				StepsTaken: s.Steps(),
				Metrics:    map[string]float64{"seed": float64(s.Seed())},
			}, nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(10))
		}
		Expect(sim.Summary(results)["seed"]).To(BeNumerically("~", 101.5, 1e-9))
	})

	It("reports a failing run", func() {
		boom := errors.New("boom")
		e := sim.NewEnsemble(smallParams(), 2, 0)
		_, err := e.Run(context.Background(), func(context.Context, *sim.Simulation) (*dynamo.Result, error) {
			return nil, boom
		})
		Expect(err).To(MatchError(boom))
	})
})
