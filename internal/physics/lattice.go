package physics

import (
	"math"

	"github.com/san-kum/tearsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// LatticeSpec is the geometry of a rows x cols grid inside a padded domain.
type LatticeSpec struct {
	Cols, Rows    int
	Width, Height float64
	Padding       float64
}

func SpecFromParams(p dynamo.Params) LatticeSpec {
	return LatticeSpec{Cols: p.Cols, Rows: p.Rows, Width: p.Width, Height: p.Height, Padding: p.Padding}
}

// Material carries the per-constraint constants a lattice is built with.
type Material struct {
	StructuralStiffness float64
	ShearStiffness      float64
	BreakThreshold      float64
}

func MaterialFromParams(p dynamo.Params) Material {
	return Material{
		StructuralStiffness: p.StructuralStiffness,
		ShearStiffness:      p.ShearStiffness,
		BreakThreshold:      p.BreakThreshold,
	}
}

// Lattice pairs a particle field with the constraint graph over it.
type Lattice struct {
	Spec    LatticeSpec
	Field   *ParticleField
	Graph   *ConstraintGraph
	Spacing r2.Vec
	Initial int
}

// EdgeCount is the number of constraints a full lattice of this size holds.
func EdgeCount(cols, rows int) int {
	return 2*(cols-1)*(rows-1) + (cols-1)*rows + (rows-1)*cols
}

// BuildLattice lays particles out evenly inside the padded domain, pins the
// outer ring and links every cell with structural and shear constraints.
func BuildLattice(spec LatticeSpec, mat Material) (*Lattice, error) {
	if err := dynamo.ValidateGeometry(spec.Cols, spec.Rows, spec.Width, spec.Height, spec.Padding); err != nil {
		return nil, err
	}

	lo := r2.Vec{X: spec.Padding, Y: spec.Padding}
	hi := r2.Vec{X: spec.Width - spec.Padding, Y: spec.Height - spec.Padding}
	spacing := r2.Vec{
		X: (hi.X - lo.X) / float64(spec.Cols-1),
		Y: (hi.Y - lo.Y) / float64(spec.Rows-1),
	}

	field := NewParticleField(spec.Cols*spec.Rows, lo, hi)
	for y := 0; y < spec.Rows; y++ {
		for x := 0; x < spec.Cols; x++ {
			pos := r2.Vec{X: lo.X + float64(x)*spacing.X, Y: lo.Y + float64(y)*spacing.Y}
			edge := x == 0 || y == 0 || x == spec.Cols-1 || y == spec.Rows-1
			field.Add(pos, edge)
		}
	}

	diagonal := math.Hypot(spacing.X, spacing.Y)
	graph := NewConstraintGraph(EdgeCount(spec.Cols, spec.Rows))
	idx := func(x, y int) int { return y*spec.Cols + x }
	link := func(a, b int, rest, stiffness float64, kind Kind) {
		graph.Add(Constraint{A: a, B: b, Rest: rest, Stiffness: stiffness, BaseBreak: mat.BreakThreshold, Kind: kind})
	}

	for y := 0; y < spec.Rows; y++ {
		for x := 0; x < spec.Cols; x++ {
			if x < spec.Cols-1 {
				link(idx(x, y), idx(x+1, y), spacing.X, mat.StructuralStiffness, Structural)
			}
			if y < spec.Rows-1 {
				link(idx(x, y), idx(x, y+1), spacing.Y, mat.StructuralStiffness, Structural)
			}
			if x < spec.Cols-1 && y < spec.Rows-1 {
				link(idx(x, y), idx(x+1, y+1), diagonal, mat.ShearStiffness, Shear)
				link(idx(x+1, y), idx(x, y+1), diagonal, mat.ShearStiffness, Shear)
			}
		}
	}

	return &Lattice{
		Spec:    spec,
		Field:   field,
		Graph:   graph,
		Spacing: spacing,
		Initial: graph.Len(),
	}, nil
}

// Index returns the particle index of grid cell (x, y).
func (l *Lattice) Index(x, y int) int { return y*l.Spec.Cols + x }
