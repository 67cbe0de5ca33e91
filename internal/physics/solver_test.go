package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

type testParticle struct {
	x, y   float64
	pinned bool
}

func newTestField(ps ...testParticle) *ParticleField {
	f := NewParticleField(len(ps), r2.Vec{X: -1000, Y: -1000}, r2.Vec{X: 1000, Y: 1000})
	for _, p := range ps {
		f.Add(r2.Vec{X: p.x, Y: p.y}, p.pinned)
	}
	return f
}

func link(a, b int, rest, stiffness, base float64) Constraint {
	return Constraint{A: a, B: b, Rest: rest, Stiffness: stiffness, BaseBreak: base}
}

func dist(f *ParticleField, a, b int) float64 {
	return r2.Norm(r2.Sub(f.Particles[b].Pos, f.Particles[a].Pos))
}

func TestRelax_FractureBoundary(t *testing.T) {
	tests := []struct {
		name   string
		length float64
		broken bool
	}{
		{"at threshold", 15, false},
		{"just past threshold", 15.01, true},
		{"well inside", 12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestField(testParticle{0, 0, true}, testParticle{tt.length, 0, true})
			g := NewConstraintGraph(1)
			g.Add(link(0, 1, 10, 0.9, 1.5))
			s := &Solver{MinThreshold: 1.15, BreakCap: 10}

			st := s.Relax(f, g, 1, 0)

			if got := st.Broken == 1; got != tt.broken {
				t.Errorf("expected broken=%v, got %d breaks", tt.broken, st.Broken)
			}
			if tt.broken && g.Len() != 0 {
				t.Errorf("broken constraint not compacted, %d left", g.Len())
			}
		})
	}
}

func TestRelax_ThresholdFloor(t *testing.T) {
	f := newTestField(testParticle{0, 0, true}, testParticle{11, 0, true})
	g := NewConstraintGraph(1)
	c := link(0, 1, 10, 0.9, 1.8)
	c.Weak = &Weakening{Threshold: 1.0, ExpiresAt: 100}
	g.Add(c)
	s := &Solver{MinThreshold: 1.15}

	if st := s.Relax(f, g, 1, 0); st.Broken != 0 {
		t.Fatalf("link at 1.1x rest broke under a 1.15 floor")
	}

	f.Particles[1].Pos.X = 12
	if st := s.Relax(f, g, 1, 0); st.Broken != 1 {
		t.Errorf("link at 1.2x rest survived a 1.15 floor")
	}
}

func TestRelax_WeakeningExpires(t *testing.T) {
	tests := []struct {
		now    float64
		broken bool
	}{
		{0.5, true},
		{1.0, false},
		{2.0, false},
	}

	for _, tt := range tests {
		f := newTestField(testParticle{0, 0, true}, testParticle{15, 0, true})
		g := NewConstraintGraph(1)
		c := link(0, 1, 10, 0.9, 1.8)
		c.Weak = &Weakening{Threshold: 1.2, ExpiresAt: 1.0}
		g.Add(c)
		s := &Solver{MinThreshold: 1.15}

		st := s.Relax(f, g, 1, tt.now)
		if got := st.Broken == 1; got != tt.broken {
			t.Errorf("now=%.1f: expected broken=%v, got %d", tt.now, tt.broken, st.Broken)
		}
	}
}

func TestRelax_Convergence(t *testing.T) {
	tests := []struct {
		name   string
		pinned bool
	}{
		{"free pair", false},
		{"anchored pair", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestField(testParticle{0, 0, tt.pinned}, testParticle{14, 0, false})
			g := NewConstraintGraph(1)
			g.Add(link(0, 1, 10, 0.5, 1.8))
			s := &Solver{MinThreshold: 1.15}

			prev := math.Abs(dist(f, 0, 1) - 10)
			for i := 0; i < 20; i++ {
				s.Relax(f, g, 1, 0)
				cur := math.Abs(dist(f, 0, 1) - 10)
				if cur > prev {
					t.Fatalf("iteration %d: error grew from %.6f to %.6f", i, prev, cur)
				}
				prev = cur
			}
			if prev > 1e-4 {
				t.Errorf("expected convergence to rest length, residual %.6f", prev)
			}
		})
	}
}

func TestRelax_PinnedInvariance(t *testing.T) {
	lat, err := BuildLattice(LatticeSpec{Cols: 8, Rows: 6, Width: 200, Height: 150, Padding: 10}, testMaterial)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	pinned := make(map[int]r2.Vec)
	for i, p := range lat.Field.Particles {
		if p.Pinned {
			pinned[i] = p.Pos
			continue
		}
		lat.Field.Particles[i].Pos.X += float64(i%5) * 9
		lat.Field.Particles[i].Pos.Y -= float64(i%3) * 11
	}

	s := &Solver{MinThreshold: 1.15, BreakCap: 100, TearImpulse: 2}
	for step := 0; step < 10; step++ {
		s.Relax(lat.Field, lat.Graph, 4, float64(step))
	}

	for i, pos := range pinned {
		if lat.Field.Particles[i].Pos != pos {
			t.Errorf("pinned particle %d moved: %v -> %v", i, pos, lat.Field.Particles[i].Pos)
		}
	}
}

func TestRelax_BreakCap(t *testing.T) {
	var ps []testParticle
	for i := 0; i < 5; i++ {
		y := float64(i) * 100
		ps = append(ps, testParticle{0, y, false}, testParticle{30, y, false})
	}
	f := newTestField(ps...)
	g := NewConstraintGraph(5)
	for i := 0; i < 5; i++ {
		g.Add(link(2*i, 2*i+1, 10, 0.9, 1.8))
	}
	s := &Solver{MinThreshold: 1.15, BreakCap: 2, TearImpulse: 1}

	expected := []int{3, 1, 0}
	for round, left := range expected {
		st := s.Relax(f, g, 1, 0)
		if g.Len() != left {
			t.Fatalf("round %d: expected %d constraints left, got %d", round, left, g.Len())
		}
		if st.Broken > s.BreakCap {
			t.Errorf("round %d: %d breaks exceeds cap %d", round, st.Broken, s.BreakCap)
		}
	}
}

func TestRelax_BreakCapSkipsRestOfPass(t *testing.T) {
	f := newTestField(
		testParticle{0, 0, true}, testParticle{30, 0, true},
		testParticle{0, 50, false}, testParticle{14, 50, false},
	)
	g := NewConstraintGraph(2)
	g.Add(link(0, 1, 10, 0.9, 1.8))
	g.Add(link(2, 3, 10, 0.9, 1.8))
	s := &Solver{MinThreshold: 1.15, BreakCap: 1}

	st := s.Relax(f, g, 1, 0)

	if st.Capped != 1 {
		t.Errorf("expected one capped pass, got %d", st.Capped)
	}
	if got := dist(f, 2, 3); got != 14 {
		t.Errorf("constraint after the cap was corrected, distance now %.4f", got)
	}
}

func TestRelax_ThreeByThreeTear(t *testing.T) {
	lat, err := BuildLattice(
		LatticeSpec{Cols: 3, Rows: 3, Width: 20, Height: 20},
		Material{StructuralStiffness: 0.05, ShearStiffness: 0.05, BreakThreshold: 1.8},
	)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if lat.Graph.Len() != 20 {
		t.Fatalf("expected 20 constraints, got %d", lat.Graph.Len())
	}

	center := lat.Index(1, 1)
	left := lat.Index(0, 1)
	lat.Field.Particles[center].Pos = r2.Vec{X: 1.9 * lat.Spacing.X, Y: lat.Spacing.Y}

	s := &Solver{MinThreshold: 1.15, BreakCap: 10, TearImpulse: 1}
	st := s.Relax(lat.Field, lat.Graph, 1, 0)

	if st.Broken != 1 {
		t.Fatalf("expected exactly one break, got %d", st.Broken)
	}
	if lat.Graph.Len() != 19 {
		t.Fatalf("expected 19 live constraints, got %d", lat.Graph.Len())
	}
	for _, c := range lat.Graph.Constraints {
		if (c.A == left && c.B == center) || (c.A == center && c.B == left) {
			t.Fatalf("left-center link survived")
		}
	}
}

func TestSolverBreak(t *testing.T) {
	f := newTestField(testParticle{0, 0, true}, testParticle{10, 0, false})
	c := link(0, 1, 10, 0.9, 1.8)
	s := &Solver{TearImpulse: 2}

	if !s.Break(f, &c) {
		t.Fatal("expected first break to succeed")
	}
	if f.Particles[1].Pos.X != 12 {
		t.Errorf("expected free end pushed to 12, got %.4f", f.Particles[1].Pos.X)
	}
	if s.Break(f, &c) {
		t.Error("breaking twice should report false")
	}
}

func TestMarkWeak(t *testing.T) {
	const floor = 1.15

	c := link(0, 1, 10, 0.9, 1.8)
	c.MarkWeak(1.5, 2, 0, floor)
	c.MarkWeak(1.6, 3, 0, floor)
	if c.Weak.Threshold != 1.5 || c.Weak.ExpiresAt != 3 {
		t.Errorf("expected {1.5 3}, got %+v", *c.Weak)
	}

	c.MarkWeak(0.5, 1, 0.5, floor)
	if c.Weak.Threshold != floor {
		t.Errorf("expected threshold floored to %.2f, got %.4f", floor, c.Weak.Threshold)
	}
	if c.Weak.ExpiresAt != 3 {
		t.Errorf("expiry shrank to %.2f", c.Weak.ExpiresAt)
	}

	c.MarkWeak(1.7, 9, 5, floor)
	if c.Weak.Threshold != 1.7 || c.Weak.ExpiresAt != 9 {
		t.Errorf("expired weakening not replaced: %+v", *c.Weak)
	}

	d := link(0, 1, 10, 0.9, 1.8)
	d.MarkWeak(2.5, 1, 0, floor)
	if d.Weak.Threshold != 1.8 {
		t.Errorf("threshold above base not clamped: %.4f", d.Weak.Threshold)
	}
	if got := d.Threshold(0, floor); got != 1.8 {
		t.Errorf("effective threshold %.4f, want 1.8", got)
	}
}

func TestConstraintGraphCompact(t *testing.T) {
	g := NewConstraintGraph(5)
	for i := 0; i < 5; i++ {
		g.Add(link(i, i+1, 1, 1, 1.8))
	}
	g.Constraints[1].Broken = true
	g.Constraints[3].Broken = true

	if removed := g.Compact(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	want := []int{0, 2, 4}
	for i, c := range g.Constraints {
		if c.A != want[i] {
			t.Errorf("position %d: expected A=%d, got %d", i, want[i], c.A)
		}
	}
	if g.Live() != 3 {
		t.Errorf("expected 3 live, got %d", g.Live())
	}
}
