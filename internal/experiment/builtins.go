package experiment

import (
	"math"

	"github.com/san-kum/tearsim/internal/automation"
)

const frameMs = 1000.0 / 60

func builtins() []*automation.Scenario {
	return []*automation.Scenario{poke(), drag(), rip(), storm()}
}

func poke() *automation.Scenario {
	return &automation.Scenario{
		Name:        "poke",
		Description: "single firm press in the middle, then let the lattice ring",
		Frames:      150,
		FrameMs:     frameMs,
		Events: []automation.Event{
			{Frame: 10, Action: automation.ActionDown, X: 0.5, Y: 0.5},
			{Frame: 14, Action: automation.ActionUp},
		},
	}
}

func drag() *automation.Scenario {
	sc := &automation.Scenario{
		Name:        "drag",
		Description: "press left of centre and drag slowly to the right",
		Frames:      200,
		FrameMs:     frameMs,
		Events: []automation.Event{
			{Frame: 10, Action: automation.ActionDown, X: 0.3, Y: 0.5},
		},
	}
	for f := 12; f <= 90; f += 2 {
		x := 0.3 + 0.4*float64(f-12)/78
		sc.Events = append(sc.Events, automation.Event{Frame: f, Action: automation.ActionMove, X: x, Y: 0.5})
	}
	sc.Events = append(sc.Events, automation.Event{Frame: 92, Action: automation.ActionUp})
	return sc
}

func rip() *automation.Scenario {
	sc := &automation.Scenario{
		Name:        "rip",
		Description: "repeated hard presses along a diagonal until the cloth opens",
		Frames:      240,
		FrameMs:     frameMs,
		Params:      map[string]float64{"tear_chance": 0.6},
	}
	for i := 0; i < 8; i++ {
		f := 10 + i*20
		x := 0.35 + 0.04*float64(i)
		y := 0.35 + 0.04*float64(i)
		sc.Events = append(sc.Events,
			automation.Event{Frame: f, Action: automation.ActionDown, X: x, Y: y},
			automation.Event{Frame: f + 4, Action: automation.ActionMove, X: x + 0.02, Y: y + 0.02},
			automation.Event{Frame: f + 8, Action: automation.ActionUp},
		)
	}
	return sc
}

// storm scatters pulses over the lattice on an uneven frame clock.
func storm() *automation.Scenario {
	sc := &automation.Scenario{
		Name:        "storm",
		Description: "pulses scattered across the lattice with jittered frame times",
		Frames:      300,
		FrameMs:     frameMs,
		Jitter:      8,
	}
	for i := 0; i < 45; i++ {
		a := float64(i) * 2.399963 // golden angle
		r := 0.35 * math.Sqrt(float64(i)/45)
		sc.Events = append(sc.Events, automation.Event{
			Frame:  5 + i*6,
			Action: automation.ActionPulse,
			X:      0.5 + r*math.Cos(a),
			Y:      0.5 + r*math.Sin(a),
		})
	}
	return sc
}
