package physics

import (
	"math"

	"github.com/san-kum/tearsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Weakener lowers cohesion around a pointer and, when pressed hard enough,
// tears constraints outright.
type Weakener struct {
	Factor          float64
	Duration        float64
	Radius          float64
	TearRadius      float64
	ForceBreakRatio float64
	TearChance      float64
}

func NewWeakener(p dynamo.Params) *Weakener {
	return &Weakener{
		Factor:          p.WeakenFactor,
		Duration:        p.WeakenDuration,
		Radius:          p.WeakenRadius,
		TearRadius:      p.TearRadius,
		ForceBreakRatio: p.ForceBreakRatio,
		TearChance:      p.TearChance,
	}
}

// WeakenStats counts the constraints a Near call touched.
type WeakenStats struct {
	Weakened int
	Broken   int
}

// Near weakens every live constraint whose midpoint lies within Radius of at.
// The reduction fades linearly to nothing at the rim and is halved for gentle
// (non-aggressive) contact. Aggressive contact inside TearRadius breaks links
// already stretched past ForceBreakRatio and otherwise breaks with a chance
// that grows toward the center.
func (w *Weakener) Near(f *ParticleField, g *ConstraintGraph, s *Solver, at r2.Vec, aggressive bool, now float64, rnd func() float64) WeakenStats {
	var st WeakenStats
	if w.Radius <= 0 {
		return st
	}
	for i := range g.Constraints {
		c := &g.Constraints[i]
		if c.Broken {
			continue
		}
		pa, pb := f.Particles[c.A].Pos, f.Particles[c.B].Pos
		mid := r2.Scale(0.5, r2.Add(pa, pb))
		dist := r2.Norm(r2.Sub(mid, at))
		if dist > w.Radius {
			continue
		}

		reduction := (1 - w.Factor) * (1 - dist/w.Radius)
		if !aggressive {
			reduction *= 0.5
		}
		c.MarkWeak(c.BaseBreak*(1-reduction), now+w.Duration, now, s.MinThreshold)
		st.Weakened++

		if !aggressive || dist >= w.TearRadius {
			continue
		}
		ratio := math.Max(r2.Norm(r2.Sub(pb, pa)), Epsilon) / c.Rest
		if ratio >= w.ForceBreakRatio || rnd() < w.TearChance*(1-dist/w.TearRadius) {
			if s.Break(f, c) {
				st.Broken++
			}
		}
	}
	return st
}
