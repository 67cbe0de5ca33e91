package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/tearsim/internal/dynamo"
)

// Presets are named material overrides on top of the default params.
var Presets = map[string]map[string]float64{
	"silk": {
		"structural_stiffness": 0.95,
		"shear_stiffness":      0.5,
		"break_threshold":      2.4,
		"tear_chance":          0.1,
		"damping":              0.01,
	},
	"jelly": {
		"structural_stiffness": 0.35,
		"shear_stiffness":      0.15,
		"break_threshold":      2.8,
		"damping":              0.04,
		"jitter":               20,
		"pulse_strength":       6000,
	},
	"paper": {
		"structural_stiffness": 1.0,
		"shear_stiffness":      0.6,
		"break_threshold":      1.35,
		"min_break_threshold":  1.1,
		"tear_chance":          0.6,
		"tear_impulse":         2.5,
	},
	"glass": {
		"structural_stiffness": 1.0,
		"shear_stiffness":      0.8,
		"break_threshold":      1.2,
		"min_break_threshold":  1.05,
		"force_break_ratio":    1.1,
		"tear_chance":          0.9,
		"break_cap":            200,
	},
}

func GetPreset(name string) map[string]float64 {
	preset, ok := Presets[name]
	if !ok {
		return nil
	}
	return preset
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset writes a preset's overrides into p.
func ApplyPreset(p *dynamo.Params, name string) error {
	preset := GetPreset(name)
	if preset == nil {
		return &dynamo.ConfigError{Field: "preset", Value: name, Reason: "unknown preset"}
	}
	for param, value := range preset {
		if err := p.SetParam(param, value); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return nil
}
