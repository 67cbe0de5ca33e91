package dynamo

import (
	"fmt"
	"sort"
)

// Params is the static set of named numeric parameters a simulation is built
// from. Distances are in domain units (pixels), times in seconds.
type Params struct {
	Cols    int     `yaml:"cols"`
	Rows    int     `yaml:"rows"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Padding float64 `yaml:"padding"`

	Dt         float64 `yaml:"dt"`
	MaxFrameMs float64 `yaml:"max_frame_ms"`
	Iterations int     `yaml:"iterations"`
	Damping    float64 `yaml:"damping"`
	Jitter     float64 `yaml:"jitter"`

	StructuralStiffness float64 `yaml:"structural_stiffness"`
	ShearStiffness      float64 `yaml:"shear_stiffness"`

	BreakThreshold    float64 `yaml:"break_threshold"`
	MinBreakThreshold float64 `yaml:"min_break_threshold"`
	BreakCap          int     `yaml:"break_cap"`
	TearImpulse       float64 `yaml:"tear_impulse"`

	WeakenFactor    float64 `yaml:"weaken_factor"`
	WeakenDuration  float64 `yaml:"weaken_duration"`
	WeakenRadius    float64 `yaml:"weaken_radius"`
	TearRadius      float64 `yaml:"tear_radius"`
	ForceBreakRatio float64 `yaml:"force_break_ratio"`
	TearChance      float64 `yaml:"tear_chance"`

	PulseStrength float64 `yaml:"pulse_strength"`
	PulseSigma    float64 `yaml:"pulse_sigma"`
	PulseHalfLife float64 `yaml:"pulse_half_life"`
	PulseLifetime float64 `yaml:"pulse_lifetime"`
	DragStrength  float64 `yaml:"drag_strength"`
}

// DefaultParams returns a lattice that tears under a firm click but survives
// gentle dragging.
func DefaultParams() Params {
	return Params{
		Cols:    48,
		Rows:    32,
		Width:   960,
		Height:  640,
		Padding: 24,

		Dt:         1.0 / 60.0,
		MaxFrameMs: 250,
		Iterations: 3,
		Damping:    0.015,
		Jitter:     12,

		StructuralStiffness: 0.9,
		ShearStiffness:      0.35,

		BreakThreshold:    1.8,
		MinBreakThreshold: 1.15,
		BreakCap:          48,
		TearImpulse:       1.5,

		WeakenFactor:    0.7,
		WeakenDuration:  0.8,
		WeakenRadius:    64,
		TearRadius:      22,
		ForceBreakRatio: 1.35,
		TearChance:      0.3,

		PulseStrength: 9000,
		PulseSigma:    36,
		PulseHalfLife: 0.18,
		PulseLifetime: 6,
		DragStrength:  0.35,
	}
}

// Validate checks every parameter and reports the first offending field.
func (p Params) Validate() error {
	if err := p.ValidateLattice(); err != nil {
		return err
	}
	switch {
	case p.Dt <= 0:
		return &ConfigError{Field: "dt", Value: p.Dt, Reason: "must be positive"}
	case p.MaxFrameMs < p.Dt*1000:
		return &ConfigError{Field: "max_frame_ms", Value: p.MaxFrameMs, Reason: "must hold at least one step"}
	case p.Iterations < 1:
		return &ConfigError{Field: "iterations", Value: p.Iterations, Reason: "must be at least 1"}
	case p.Damping < 0 || p.Damping >= 1:
		return &ConfigError{Field: "damping", Value: p.Damping, Reason: "must be in [0,1)"}
	case p.Jitter < 0:
		return &ConfigError{Field: "jitter", Value: p.Jitter, Reason: "must not be negative"}
	case p.StructuralStiffness <= 0 || p.StructuralStiffness > 1:
		return &ConfigError{Field: "structural_stiffness", Value: p.StructuralStiffness, Reason: "must be in (0,1]"}
	case p.ShearStiffness <= 0 || p.ShearStiffness > 1:
		return &ConfigError{Field: "shear_stiffness", Value: p.ShearStiffness, Reason: "must be in (0,1]"}
	case p.MinBreakThreshold < 1:
		return &ConfigError{Field: "min_break_threshold", Value: p.MinBreakThreshold, Reason: "must be at least 1"}
	case p.BreakThreshold < p.MinBreakThreshold:
		return &ConfigError{Field: "break_threshold", Value: p.BreakThreshold, Reason: "must not be below min_break_threshold"}
	case p.BreakCap < 1:
		return &ConfigError{Field: "break_cap", Value: p.BreakCap, Reason: "must be at least 1"}
	case p.TearImpulse < 0:
		return &ConfigError{Field: "tear_impulse", Value: p.TearImpulse, Reason: "must not be negative"}
	case p.WeakenFactor <= 0 || p.WeakenFactor > 1:
		return &ConfigError{Field: "weaken_factor", Value: p.WeakenFactor, Reason: "must be in (0,1]"}
	case p.WeakenDuration < 0:
		return &ConfigError{Field: "weaken_duration", Value: p.WeakenDuration, Reason: "must not be negative"}
	case p.TearRadius < 0 || p.WeakenRadius < p.TearRadius:
		return &ConfigError{Field: "weaken_radius", Value: p.WeakenRadius, Reason: "must be at least tear_radius"}
	case p.ForceBreakRatio < 1:
		return &ConfigError{Field: "force_break_ratio", Value: p.ForceBreakRatio, Reason: "must be at least 1"}
	case p.TearChance < 0 || p.TearChance > 1:
		return &ConfigError{Field: "tear_chance", Value: p.TearChance, Reason: "must be in [0,1]"}
	case p.PulseSigma <= 0:
		return &ConfigError{Field: "pulse_sigma", Value: p.PulseSigma, Reason: "must be positive"}
	case p.PulseHalfLife <= 0:
		return &ConfigError{Field: "pulse_half_life", Value: p.PulseHalfLife, Reason: "must be positive"}
	case p.PulseLifetime <= 0:
		return &ConfigError{Field: "pulse_lifetime", Value: p.PulseLifetime, Reason: "must be positive"}
	case p.DragStrength < 0:
		return &ConfigError{Field: "drag_strength", Value: p.DragStrength, Reason: "must not be negative"}
	}
	return nil
}

// ValidateLattice checks only the grid and domain geometry.
func (p Params) ValidateLattice() error {
	return ValidateGeometry(p.Cols, p.Rows, p.Width, p.Height, p.Padding)
}

// ValidateGeometry rejects grids that cannot produce a lattice with spacing.
func ValidateGeometry(cols, rows int, width, height, padding float64) error {
	switch {
	case cols < 2:
		return &ConfigError{Field: "cols", Value: cols, Reason: "must be at least 2"}
	case rows < 2:
		return &ConfigError{Field: "rows", Value: rows, Reason: "must be at least 2"}
	case padding < 0:
		return &ConfigError{Field: "padding", Value: padding, Reason: "must not be negative"}
	case width <= 2*padding:
		return &ConfigError{Field: "width", Value: width, Reason: "must exceed twice the padding"}
	case height <= 2*padding:
		return &ConfigError{Field: "height", Value: height, Reason: "must exceed twice the padding"}
	}
	return nil
}

// fields maps parameter names to their storage. Integer fields are exposed as
// float64 and truncated on write.
func (p *Params) fields() map[string]any {
	return map[string]any{
		"cols":                 &p.Cols,
		"rows":                 &p.Rows,
		"width":                &p.Width,
		"height":               &p.Height,
		"padding":              &p.Padding,
		"dt":                   &p.Dt,
		"max_frame_ms":         &p.MaxFrameMs,
		"iterations":           &p.Iterations,
		"damping":              &p.Damping,
		"jitter":               &p.Jitter,
		"structural_stiffness": &p.StructuralStiffness,
		"shear_stiffness":      &p.ShearStiffness,
		"break_threshold":      &p.BreakThreshold,
		"min_break_threshold":  &p.MinBreakThreshold,
		"break_cap":            &p.BreakCap,
		"tear_impulse":         &p.TearImpulse,
		"weaken_factor":        &p.WeakenFactor,
		"weaken_duration":      &p.WeakenDuration,
		"weaken_radius":        &p.WeakenRadius,
		"tear_radius":          &p.TearRadius,
		"force_break_ratio":    &p.ForceBreakRatio,
		"tear_chance":          &p.TearChance,
		"pulse_strength":       &p.PulseStrength,
		"pulse_sigma":          &p.PulseSigma,
		"pulse_half_life":      &p.PulseHalfLife,
		"pulse_lifetime":       &p.PulseLifetime,
		"drag_strength":        &p.DragStrength,
	}
}

// GetParams implements Configurable.
func (p *Params) GetParams() map[string]float64 {
	out := make(map[string]float64)
	for name, ptr := range p.fields() {
		switch v := ptr.(type) {
		case *float64:
			out[name] = *v
		case *int:
			out[name] = float64(*v)
		}
	}
	return out
}

// SetParam implements Configurable.
func (p *Params) SetParam(name string, value float64) error {
	ptr, ok := p.fields()[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	switch v := ptr.(type) {
	case *float64:
		*v = value
	case *int:
		*v = int(value)
	}
	return nil
}

// ParamNames lists every settable name in sorted order.
func ParamNames() []string {
	var p Params
	names := make([]string, 0, 32)
	for name := range p.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
