package physics

import (
	"math"

	"github.com/san-kum/tearsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pulse is a transient outward force source.
type Pulse struct {
	Origin    r2.Vec
	Strength  float64
	Sigma     float64
	CreatedAt float64
}

// PulseField holds the live pulses and their shared decay constants.
type PulseField struct {
	Sigma    float64
	HalfLife float64
	Lifetime float64 // in half-lives
	pulses   []Pulse
}

func NewPulseField(p dynamo.Params) *PulseField {
	return &PulseField{
		Sigma:    p.PulseSigma,
		HalfLife: p.PulseHalfLife,
		Lifetime: p.PulseLifetime,
	}
}

// Add registers a pulse created at now.
func (pf *PulseField) Add(origin r2.Vec, strength, now float64) {
	pf.pulses = append(pf.pulses, Pulse{Origin: origin, Strength: strength, Sigma: pf.Sigma, CreatedAt: now})
}

func (pf *PulseField) Len() int { return len(pf.pulses) }

// Pulses returns a copy of the live pulses.
func (pf *PulseField) Pulses() []Pulse {
	out := make([]Pulse, len(pf.pulses))
	copy(out, pf.pulses)
	return out
}

func (pf *PulseField) Clear() { pf.pulses = pf.pulses[:0] }

// Decay is the temporal attenuation of a pulse of the given age.
func (pf *PulseField) Decay(age float64) float64 {
	return math.Exp(-math.Ln2 / pf.HalfLife * age)
}

// Cull drops pulses older than Lifetime half-lives and returns how many went.
func (pf *PulseField) Cull(now float64) int {
	limit := pf.Lifetime * pf.HalfLife
	kept := pf.pulses[:0]
	for _, p := range pf.pulses {
		if now-p.CreatedAt <= limit {
			kept = append(kept, p)
		}
	}
	removed := len(pf.pulses) - len(kept)
	pf.pulses = kept
	return removed
}

// Apply culls stale pulses, then adds every live pulse's radial push to the
// pending acceleration of each free particle. A particle sitting exactly on a
// pulse origin is pushed away from the field center, or along +X when it sits
// there too.
func (pf *PulseField) Apply(f *ParticleField, now float64) {
	pf.Cull(now)
	if len(pf.pulses) == 0 {
		return
	}
	center := f.Center()
	for _, p := range pf.pulses {
		decay := pf.Decay(math.Max(now-p.CreatedAt, 0))
		twoSigma2 := 2 * p.Sigma * p.Sigma
		for i := range f.Particles {
			pt := &f.Particles[i]
			if pt.Pinned {
				continue
			}
			dir := r2.Sub(pt.Pos, p.Origin)
			r2sq := r2.Norm2(dir)
			falloff := math.Exp(-r2sq / twoSigma2)
			mag := p.Strength * decay * falloff
			if mag == 0 {
				continue
			}
			if r2sq < Epsilon*Epsilon {
				dir = fallbackDirection(pt.Pos, center)
			} else {
				dir = r2.Scale(1/math.Sqrt(r2sq), dir)
			}
			pt.Acc = r2.Add(pt.Acc, r2.Scale(mag, dir))
		}
	}
}

func fallbackDirection(pos, center r2.Vec) r2.Vec {
	out := r2.Sub(pos, center)
	n := r2.Norm(out)
	if n < Epsilon {
		return r2.Vec{X: 1}
	}
	return r2.Scale(1/n, out)
}
