package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a point mass with implicit velocity (Pos - Prev).
type Particle struct {
	Pos    r2.Vec
	Prev   r2.Vec
	Acc    r2.Vec
	Pinned bool
}

// ParticleField owns every particle of a lattice and the inset rectangle they
// are confined to.
type ParticleField struct {
	Particles []Particle
	Min, Max  r2.Vec
}

func NewParticleField(n int, lo, hi r2.Vec) *ParticleField {
	return &ParticleField{
		Particles: make([]Particle, 0, n),
		Min:       lo,
		Max:       hi,
	}
}

func (f *ParticleField) Len() int { return len(f.Particles) }

// Add appends a particle at rest and returns its index. The position is
// clamped first so clamping it again later is a no-op.
func (f *ParticleField) Add(pos r2.Vec, pinned bool) int {
	pos = f.clamp(pos)
	f.Particles = append(f.Particles, Particle{Pos: pos, Prev: pos, Pinned: pinned})
	return len(f.Particles) - 1
}

// Accelerate adds to the pending acceleration of a free particle.
func (f *ParticleField) Accelerate(i int, a r2.Vec) {
	p := &f.Particles[i]
	if p.Pinned {
		return
	}
	p.Acc = r2.Add(p.Acc, a)
}

// Jitter adds a uniform random acceleration in [-amp, amp] per axis to every
// free particle.
func (f *ParticleField) Jitter(rnd func() float64, amp float64) {
	if amp == 0 {
		return
	}
	for i := range f.Particles {
		p := &f.Particles[i]
		if p.Pinned {
			continue
		}
		p.Acc.X += (rnd()*2 - 1) * amp
		p.Acc.Y += (rnd()*2 - 1) * amp
	}
}

// Clamp confines every particle to the inset rectangle.
func (f *ParticleField) Clamp() {
	for i := range f.Particles {
		f.Particles[i].Pos = f.clamp(f.Particles[i].Pos)
	}
}

func (f *ParticleField) clamp(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: math.Min(math.Max(p.X, f.Min.X), f.Max.X),
		Y: math.Min(math.Max(p.Y, f.Min.Y), f.Max.Y),
	}
}

// Center is the middle of the inset rectangle.
func (f *ParticleField) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(f.Min, f.Max))
}

// Motion is the summed squared per-step displacement of free particles.
func (f *ParticleField) Motion() float64 {
	sum := 0.0
	for i := range f.Particles {
		p := &f.Particles[i]
		if p.Pinned {
			continue
		}
		sum += r2.Norm2(r2.Sub(p.Pos, p.Prev))
	}
	return sum
}

// displace moves the endpoints of a link by +d on b and -d on a, splitting
// the move when both are free and giving all of it to the free one otherwise.
func (f *ParticleField) displace(a, b int, d r2.Vec) {
	pa, pb := &f.Particles[a], &f.Particles[b]
	switch {
	case pa.Pinned && pb.Pinned:
	case pa.Pinned:
		pb.Pos = r2.Add(pb.Pos, d)
	case pb.Pinned:
		pa.Pos = r2.Sub(pa.Pos, d)
	default:
		half := r2.Scale(0.5, d)
		pa.Pos = r2.Sub(pa.Pos, half)
		pb.Pos = r2.Add(pb.Pos, half)
	}
}
