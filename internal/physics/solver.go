package physics

import (
	"math"

	"github.com/san-kum/tearsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon floors distances so coincident particles never divide by zero.
const Epsilon = 1e-6

// Solver relaxes distance constraints Gauss-Seidel style in array order and
// snaps the ones stretched past their break threshold.
type Solver struct {
	MinThreshold float64
	BreakCap     int
	TearImpulse  float64
}

func NewSolver(p dynamo.Params) *Solver {
	return &Solver{
		MinThreshold: p.MinBreakThreshold,
		BreakCap:     p.BreakCap,
		TearImpulse:  p.TearImpulse,
	}
}

// RelaxStats reports what one Relax call did.
type RelaxStats struct {
	Broken   int
	Capped   int // passes cut short by the break cap
	Removed  int
	Corrects int
}

// Relax runs the given number of passes over the live constraints at time now,
// then removes every constraint that broke.
func (s *Solver) Relax(f *ParticleField, g *ConstraintGraph, iterations int, now float64) RelaxStats {
	var st RelaxStats
	for it := 0; it < iterations; it++ {
		breaks := 0
		for i := range g.Constraints {
			c := &g.Constraints[i]
			if c.Broken {
				continue
			}
			if s.BreakCap > 0 && breaks >= s.BreakCap {
				st.Capped++
				break
			}

			pa, pb := f.Particles[c.A].Pos, f.Particles[c.B].Pos
			delta := r2.Sub(pb, pa)
			d := math.Max(r2.Norm(delta), Epsilon)

			if d > c.Rest*c.Threshold(now, s.MinThreshold) {
				c.Broken = true
				breaks++
				s.separate(f, c, delta, d)
				continue
			}

			if f.Particles[c.A].Pinned && f.Particles[c.B].Pinned {
				continue
			}
			diff := c.Stiffness * (d - c.Rest) / d
			f.displace(c.A, c.B, r2.Scale(-diff, delta))
			st.Corrects++
		}
		st.Broken += breaks
	}
	st.Removed = g.Compact()
	return st
}

// Break snaps c immediately, applying the same separation as a stretched
// break. It reports false if c was already broken.
func (s *Solver) Break(f *ParticleField, c *Constraint) bool {
	if c.Broken {
		return false
	}
	delta := r2.Sub(f.Particles[c.B].Pos, f.Particles[c.A].Pos)
	c.Broken = true
	s.separate(f, c, delta, math.Max(r2.Norm(delta), Epsilon))
	return true
}

// separate pushes the endpoints of a freshly torn link apart so the tear
// opens instead of freezing at the breaking length.
func (s *Solver) separate(f *ParticleField, c *Constraint, delta r2.Vec, d float64) {
	if s.TearImpulse == 0 {
		return
	}
	n := r2.Scale(1/d, delta)
	f.displace(c.A, c.B, r2.Scale(s.TearImpulse, n))
}
