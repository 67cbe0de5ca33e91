package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/san-kum/tearsim/internal/control"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Pointer actions a scenario can script.
const (
	ActionDown  = "down"
	ActionMove  = "move"
	ActionUp    = "up"
	ActionPulse = "pulse"
	ActionReset = "reset"
)

// Scenario is a scripted headless session: a number of rendered frames with
// pointer events pinned to frame indices.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Frames      int                `yaml:"frames"`
	FrameMs     float64            `yaml:"frame_ms"`
	Jitter      float64            `yaml:"jitter"` // +/- ms added to each frame
	Params      map[string]float64 `yaml:"params,omitempty"`
	Events      []Event            `yaml:"events"`
}

// Event is one pointer action. X and Y are normalized to the domain.
type Event struct {
	Frame    int     `yaml:"frame"`
	Action   string  `yaml:"action"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Strength float64 `yaml:"strength,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (sc *Scenario) Save(path string) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (sc *Scenario) Validate() error {
	switch {
	case sc.Frames < 1:
		return &dynamo.ConfigError{Field: "frames", Value: sc.Frames, Reason: "must be at least 1"}
	case sc.FrameMs <= 0:
		return &dynamo.ConfigError{Field: "frame_ms", Value: sc.FrameMs, Reason: "must be positive"}
	case sc.Jitter < 0 || sc.Jitter >= sc.FrameMs:
		return &dynamo.ConfigError{Field: "jitter", Value: sc.Jitter, Reason: "must be in [0, frame_ms)"}
	}
	for i, ev := range sc.Events {
		field := fmt.Sprintf("events[%d]", i)
		switch ev.Action {
		case ActionDown, ActionMove, ActionUp, ActionPulse, ActionReset:
		default:
			return &dynamo.ConfigError{Field: field + ".action", Value: ev.Action, Reason: "unknown action"}
		}
		if ev.Frame < 0 || ev.Frame >= sc.Frames {
			return &dynamo.ConfigError{Field: field + ".frame", Value: ev.Frame, Reason: "outside the scenario"}
		}
		if ev.X < 0 || ev.X > 1 || ev.Y < 0 || ev.Y > 1 {
			return &dynamo.ConfigError{Field: field, Value: [2]float64{ev.X, ev.Y}, Reason: "coordinates must be normalized"}
		}
		if ev.Strength < 0 {
			return &dynamo.ConfigError{Field: field + ".strength", Value: ev.Strength, Reason: "must not be negative"}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (sc *Scenario) Clone() *Scenario {
	c := *sc
	c.Events = append([]Event(nil), sc.Events...)
	if sc.Params != nil {
		c.Params = make(map[string]float64, len(sc.Params))
		for k, v := range sc.Params {
			c.Params[k] = v
		}
	}
	return &c
}

// Run drives s through the scenario one frame at a time and records the
// stats of every frame. It stops early on cancellation, returning what was
// recorded so far, or on divergence, recording a SimError.
func Run(ctx context.Context, sc *Scenario, s *sim.Simulation) (*dynamo.Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	for name, value := range sc.Params {
		if err := s.SetParam(name, value); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	events := append([]Event(nil), sc.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })

	s.ResetMetrics()
	pointer := control.NewPointer(s.Params())
	rng := rand.New(rand.NewSource(s.Seed()))
	result := &dynamo.Result{
		Frames:  make([]dynamo.Stats, 0, sc.Frames),
		Metrics: make(map[string]float64),
	}

	next := 0
	for frame := 0; frame < sc.Frames; frame++ {
		select {
		case <-ctx.Done():
			finish(result, s)
			return result, ctx.Err()
		default:
		}

		for ; next < len(events) && events[next].Frame == frame; next++ {
			if err := apply(events[next], s, pointer); err != nil {
				return result, err
			}
		}

		elapsed := sc.FrameMs
		if sc.Jitter > 0 {
			elapsed += (rng.Float64()*2 - 1) * sc.Jitter
		}
		s.Tick(elapsed)

		snap := s.Snapshot()
		result.Frames = append(result.Frames, snap.Stats)
		if !snap.IsValid() {
			result.Errors = append(result.Errors, dynamo.SimError{Step: s.Steps(), Time: s.Time(), Message: "non-finite particle position"})
			break
		}
	}

	finish(result, s)
	return result, nil
}

func finish(result *dynamo.Result, s *sim.Simulation) {
	result.Final = s.Snapshot()
	result.StepsTaken = s.Steps()
	for name, v := range s.Metrics() {
		result.Metrics[name] = v
	}
}

func apply(ev Event, s *sim.Simulation, pointer *control.Pointer) error {
	p := s.Params()
	x, y := control.Scale(ev.X, ev.Y, p.Width, p.Height)

	switch ev.Action {
	case ActionDown:
		pointer.Down(s, x, y)
	case ActionMove:
		pointer.Move(s, x, y)
	case ActionUp:
		pointer.Up()
	case ActionPulse:
		strength := ev.Strength
		if strength == 0 {
			strength = p.PulseStrength
		}
		s.InjectPulse(x, y, strength)
	case ActionReset:
		pointer.Up()
		return s.Reset()
	}
	return nil
}
