package integrators

import (
	"github.com/san-kum/tearsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Integrator advances a particle field by one fixed step using whatever
// acceleration has been accumulated on it.
type Integrator interface {
	Step(f *physics.ParticleField, dt, damping float64)
}

// Verlet is damped position Verlet. Velocity is implicit in Pos - Prev.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(f *physics.ParticleField, dt, damping float64) {
	dt2 := dt * dt
	keep := 1 - damping

	for i := range f.Particles {
		p := &f.Particles[i]
		if p.Pinned {
			p.Prev = p.Pos
			p.Acc = r2.Vec{}
			continue
		}
		vel := r2.Sub(p.Pos, p.Prev)
		next := r2.Add(p.Pos, r2.Add(r2.Scale(keep, vel), r2.Scale(dt2, p.Acc)))
		p.Prev = p.Pos
		p.Pos = next
		p.Acc = r2.Vec{}
	}

	f.Clamp()
}
