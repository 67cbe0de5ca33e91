package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(p *Params)
		field string
	}{
		{"zero cols", func(p *Params) { p.Cols = 0 }, "cols"},
		{"negative rows", func(p *Params) { p.Rows = -3 }, "rows"},
		{"padding eats width", func(p *Params) { p.Width = 2 * p.Padding }, "width"},
		{"zero dt", func(p *Params) { p.Dt = 0 }, "dt"},
		{"stiffness above one", func(p *Params) { p.StructuralStiffness = 1.5 }, "structural_stiffness"},
		{"zero shear stiffness", func(p *Params) { p.ShearStiffness = 0 }, "shear_stiffness"},
		{"threshold under floor", func(p *Params) { p.BreakThreshold = 1.1 }, "break_threshold"},
		{"no break cap", func(p *Params) { p.BreakCap = 0 }, "break_cap"},
		{"tear radius wider than weaken radius", func(p *Params) { p.TearRadius = p.WeakenRadius + 1 }, "weaken_radius"},
		{"tear chance above one", func(p *Params) { p.TearChance = 2 }, "tear_chance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestGetSetParam(t *testing.T) {
	p := DefaultParams()

	if err := p.SetParam("break_threshold", 2.5); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if p.BreakThreshold != 2.5 {
		t.Errorf("BreakThreshold = %v, want 2.5", p.BreakThreshold)
	}

	if err := p.SetParam("cols", 12.9); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if p.Cols != 12 {
		t.Errorf("Cols = %d, want 12", p.Cols)
	}

	got := p.GetParams()
	if got["cols"] != 12 || got["break_threshold"] != 2.5 {
		t.Errorf("GetParams mismatch: %v", got)
	}
	if len(got) != len(ParamNames()) {
		t.Errorf("GetParams has %d names, ParamNames has %d", len(got), len(ParamNames()))
	}

	if err := p.SetParam("gravity", 9.81); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestStatsRoundTripByColumn(t *testing.T) {
	s := Stats{Time: 1.5, Steps: 90, Particles: 9, Constraints: 19, Broken: 1, Pulses: 2, MeanStrain: 1.02, PeakStrain: 1.9, Motion: 0.4}
	back := StatsFromValues(s.Values())
	if back != s {
		t.Errorf("round trip mismatch: got %+v, want %+v", back, s)
	}
	if !math.IsNaN(s.Field("nope")) {
		t.Error("unknown column should be NaN")
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrUnstable) {
		t.Error("SimError should unwrap to ErrUnstable")
	}
}
