package physics

import "math"

type Kind uint8

const (
	Structural Kind = iota
	Shear
)

func (k Kind) String() string {
	if k == Shear {
		return "shear"
	}
	return "structural"
}

// Weakening is a temporary override of a constraint's break threshold.
type Weakening struct {
	Threshold float64
	ExpiresAt float64
}

// Constraint keeps particles A and B near Rest apart until it snaps.
type Constraint struct {
	A, B      int
	Rest      float64
	Stiffness float64
	BaseBreak float64
	Weak      *Weakening
	Broken    bool
	Kind      Kind
}

// Threshold returns the break ratio in effect at now, never below floor.
func (c *Constraint) Threshold(now, floor float64) float64 {
	t := c.BaseBreak
	if c.Weak != nil && now < c.Weak.ExpiresAt {
		t = c.Weak.Threshold
	}
	return math.Max(t, floor)
}

// MarkWeak lowers the break threshold until expiresAt. Overlapping calls keep
// the lowest threshold and the latest expiry; a weakening that already
// expired at now is replaced rather than merged. The stored threshold stays
// within [floor, BaseBreak].
func (c *Constraint) MarkWeak(threshold, expiresAt, now, floor float64) {
	threshold = math.Min(math.Max(threshold, floor), c.BaseBreak)
	if c.Weak == nil || now >= c.Weak.ExpiresAt {
		c.Weak = &Weakening{Threshold: threshold, ExpiresAt: expiresAt}
		return
	}
	c.Weak.Threshold = math.Min(c.Weak.Threshold, threshold)
	c.Weak.ExpiresAt = math.Max(c.Weak.ExpiresAt, expiresAt)
}

// ConstraintGraph owns the distance constraints of a lattice.
type ConstraintGraph struct {
	Constraints []Constraint
}

func NewConstraintGraph(n int) *ConstraintGraph {
	return &ConstraintGraph{Constraints: make([]Constraint, 0, n)}
}

func (g *ConstraintGraph) Len() int { return len(g.Constraints) }

func (g *ConstraintGraph) Add(c Constraint) {
	g.Constraints = append(g.Constraints, c)
}

// Compact drops broken constraints in place, preserving order, and returns
// how many were removed.
func (g *ConstraintGraph) Compact() int {
	kept := g.Constraints[:0]
	for _, c := range g.Constraints {
		if !c.Broken {
			kept = append(kept, c)
		}
	}
	removed := len(g.Constraints) - len(kept)
	for i := len(kept); i < len(g.Constraints); i++ {
		g.Constraints[i] = Constraint{}
	}
	g.Constraints = kept
	return removed
}

// Live counts constraints that are not broken.
func (g *ConstraintGraph) Live() int {
	n := 0
	for i := range g.Constraints {
		if !g.Constraints[i].Broken {
			n++
		}
	}
	return n
}
