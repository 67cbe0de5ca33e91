package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/integrators"
	"github.com/san-kum/tearsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type requestKind uint8

const (
	pulseRequest requestKind = iota
	weakenRequest
)

type request struct {
	kind       requestKind
	at         r2.Vec
	strength   float64
	aggressive bool
}

// Simulation owns one tearing lattice and everything that mutates it. It is
// not safe for concurrent use: callers enqueue requests between ticks and read
// snapshots between ticks.
type Simulation struct {
	params     dynamo.Params
	seed       int64
	rng        *rand.Rand
	lattice    *physics.Lattice
	pulses     *physics.PulseField
	solver     *physics.Solver
	weakener   *physics.Weakener
	integrator integrators.Integrator
	scheduler  *Scheduler

	pending []request
	time    float64
	steps   int
	broken  int

	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

// New validates p and builds the initial lattice.
func New(p dynamo.Params, seed int64) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		params:     p,
		seed:       seed,
		rng:        rand.New(rand.NewSource(seed)),
		pulses:     physics.NewPulseField(p),
		integrator: integrators.NewVerlet(),
		scheduler:  NewScheduler(p.Dt, p.MaxFrameMs),
	}
	s.configure()
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// configure pushes the current params into every component that caches them.
func (s *Simulation) configure() {
	s.solver = physics.NewSolver(s.params)
	s.weakener = physics.NewWeakener(s.params)
	s.pulses.Sigma = s.params.PulseSigma
	s.pulses.HalfLife = s.params.PulseHalfLife
	s.pulses.Lifetime = s.params.PulseLifetime
	s.scheduler.Dt = s.params.Dt
	s.scheduler.MaxFrameMs = s.params.MaxFrameMs
}

func (s *Simulation) rebuild() error {
	lat, err := physics.BuildLattice(physics.SpecFromParams(s.params), physics.MaterialFromParams(s.params))
	if err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidLattice, err)
	}
	s.lattice = lat
	s.pulses.Clear()
	s.pending = s.pending[:0]
	s.broken = 0
	return nil
}

// SetIntegrator swaps the integration scheme.
func (s *Simulation) SetIntegrator(i integrators.Integrator) { s.integrator = i }

func (s *Simulation) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Params() dynamo.Params { return s.params }
func (s *Simulation) Seed() int64           { return s.seed }
func (s *Simulation) Time() float64         { return s.time }
func (s *Simulation) Steps() int            { return s.steps }
func (s *Simulation) Pending() int          { return len(s.pending) }

// Lattice exposes the live lattice for read-only inspection between ticks.
func (s *Simulation) Lattice() *physics.Lattice { return s.lattice }

// Scheduler exposes the accumulator, mainly for render interpolation.
func (s *Simulation) Scheduler() *Scheduler { return s.scheduler }

// InjectPulse queues a radial push at (x, y). It takes effect on the next step.
func (s *Simulation) InjectPulse(x, y, strength float64) {
	s.pending = append(s.pending, request{kind: pulseRequest, at: r2.Vec{X: x, Y: y}, strength: strength})
}

// WeakenNear queues a weakening around (x, y). Aggressive requests may tear.
func (s *Simulation) WeakenNear(x, y float64, aggressive bool) {
	s.pending = append(s.pending, request{kind: weakenRequest, at: r2.Vec{X: x, Y: y}, aggressive: aggressive})
}

// RebuildLattice replaces the lattice with a fresh cols x rows grid. Invalid
// geometry leaves the current lattice untouched.
func (s *Simulation) RebuildLattice(cols, rows int, width, height, padding float64) error {
	if err := dynamo.ValidateGeometry(cols, rows, width, height, padding); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidLattice, err)
	}
	s.params.Cols, s.params.Rows = cols, rows
	s.params.Width, s.params.Height, s.params.Padding = width, height, padding
	return s.rebuild()
}

// Reset rebuilds the lattice with the current parameters.
func (s *Simulation) Reset() error {
	return s.rebuild()
}

// GetParams implements dynamo.Configurable.
func (s *Simulation) GetParams() map[string]float64 {
	return s.params.GetParams()
}

// SetParam implements dynamo.Configurable. Geometry changes rebuild the
// lattice; material changes are applied to the live constraints in place.
func (s *Simulation) SetParam(name string, value float64) error {
	next := s.params
	if err := next.SetParam(name, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.params = next
	s.configure()

	switch name {
	case "cols", "rows", "width", "height", "padding":
		return s.rebuild()
	case "structural_stiffness", "shear_stiffness", "break_threshold":
		s.applyMaterial()
	}
	return nil
}

func (s *Simulation) applyMaterial() {
	mat := physics.MaterialFromParams(s.params)
	for i := range s.lattice.Graph.Constraints {
		c := &s.lattice.Graph.Constraints[i]
		c.Stiffness = mat.StructuralStiffness
		if c.Kind == physics.Shear {
			c.Stiffness = mat.ShearStiffness
		}
		c.BaseBreak = mat.BreakThreshold
		if c.Weak != nil && c.Weak.Threshold > c.BaseBreak {
			c.Weak.Threshold = c.BaseBreak
		}
	}
}

// Tick feeds elapsedMs of wall time to the scheduler, runs every step that
// became due and returns how many ran. Metrics and observers see one snapshot
// per tick that ran at least one step.
func (s *Simulation) Tick(elapsedMs float64) int {
	n := s.scheduler.Advance(elapsedMs)
	for i := 0; i < n; i++ {
		s.Step()
	}
	if n > 0 && (len(s.metrics) > 0 || len(s.observers) > 0) {
		snap := s.Snapshot()
		for _, m := range s.metrics {
			m.Observe(snap)
		}
		for _, o := range s.observers {
			o.OnFrame(snap)
		}
	}
	return n
}

// Step runs exactly one fixed step: queued requests, force accumulation,
// integration, then relaxation.
func (s *Simulation) Step() {
	now := s.time
	f, g := s.lattice.Field, s.lattice.Graph

	for _, r := range s.pending {
		switch r.kind {
		case pulseRequest:
			s.pulses.Add(r.at, r.strength, now)
		case weakenRequest:
			st := s.weakener.Near(f, g, s.solver, r.at, r.aggressive, now, s.rng.Float64)
			s.broken += st.Broken
		}
	}
	s.pending = s.pending[:0]

	f.Jitter(s.rng.Float64, s.params.Jitter)
	s.pulses.Apply(f, now)
	s.integrator.Step(f, s.params.Dt, s.params.Damping)

	st := s.solver.Relax(f, g, s.params.Iterations, now)
	s.broken += st.Broken

	s.time += s.params.Dt
	s.steps++
}

// Snapshot copies the state a renderer or recorder needs.
func (s *Simulation) Snapshot() *dynamo.Snapshot {
	f, g := s.lattice.Field, s.lattice.Graph
	snap := &dynamo.Snapshot{
		Positions: make([]r2.Vec, f.Len()),
		Pinned:    make([]bool, f.Len()),
		Links:     make([]dynamo.Link, 0, g.Len()),
		Width:     s.lattice.Spec.Width,
		Height:    s.lattice.Spec.Height,
		Initial:   s.lattice.Initial,
	}
	for i, p := range f.Particles {
		snap.Positions[i] = p.Pos
		snap.Pinned[i] = p.Pinned
	}

	sum, peak := 0.0, 0.0
	for _, c := range g.Constraints {
		if c.Broken {
			continue
		}
		d := r2.Norm(r2.Sub(f.Particles[c.B].Pos, f.Particles[c.A].Pos))
		strain := d / c.Rest
		snap.Links = append(snap.Links, dynamo.Link{A: c.A, B: c.B, Shear: c.Kind == physics.Shear, Strain: strain})
		sum += strain
		peak = math.Max(peak, strain)
	}

	snap.Stats = dynamo.Stats{
		Time:        s.time,
		Steps:       s.steps,
		Particles:   f.Len(),
		Constraints: len(snap.Links),
		Broken:      s.broken,
		Pulses:      s.pulses.Len(),
		PeakStrain:  peak,
		Motion:      f.Motion(),
	}
	if len(snap.Links) > 0 {
		snap.MeanStrain = sum / float64(len(snap.Links))
	}
	return snap
}

// Metrics returns the current value of every registered metric.
func (s *Simulation) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// ResetMetrics clears every registered metric.
func (s *Simulation) ResetMetrics() {
	for _, m := range s.metrics {
		m.Reset()
	}
}
