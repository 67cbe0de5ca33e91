package automation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/sim"
)

func newSim(t *testing.T, seed int64) *sim.Simulation {
	t.Helper()
	p := dynamo.DefaultParams()
	p.Cols, p.Rows = 16, 12
	p.Width, p.Height, p.Padding = 320, 240, 10
	s, err := sim.New(p, seed)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return s
}

func TestParseScenario(t *testing.T) {
	doc := `
name: tap
frames: 30
frame_ms: 16.6667
jitter: 2
params:
  tear_chance: 0.5
events:
  - {frame: 3, action: down, x: 0.5, y: 0.5}
  - {frame: 6, action: up}
  - {frame: 9, action: pulse, x: 0.25, y: 0.75, strength: 4000}
`
	sc, err := ParseScenario([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sc.Name != "tap" || sc.Frames != 30 || len(sc.Events) != 3 {
		t.Errorf("unexpected scenario %+v", sc)
	}
	if sc.Events[2].Strength != 4000 || sc.Params["tear_chance"] != 0.5 {
		t.Errorf("fields not decoded: %+v", sc)
	}
}

func TestScenarioValidate(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{Name: "x", Frames: 10, FrameMs: 16, Events: []Event{{Frame: 1, Action: ActionDown, X: 0.5, Y: 0.5}}}
	}
	tests := []struct {
		name   string
		mutate func(*Scenario)
		field  string
	}{
		{"no frames", func(s *Scenario) { s.Frames = 0 }, "frames"},
		{"zero frame time", func(s *Scenario) { s.FrameMs = 0 }, "frame_ms"},
		{"jitter too large", func(s *Scenario) { s.Jitter = 16 }, "jitter"},
		{"unknown action", func(s *Scenario) { s.Events[0].Action = "wiggle" }, "events[0].action"},
		{"late event", func(s *Scenario) { s.Events[0].Frame = 10 }, "events[0].frame"},
		{"off domain", func(s *Scenario) { s.Events[0].X = 1.5 }, "events[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := base()
			tt.mutate(sc)
			err := sc.Validate()
			var cfgErr *dynamo.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid scenario rejected: %v", err)
	}
}

func TestRunRecordsEveryFrame(t *testing.T) {
	sc := &Scenario{
		Name:    "tap",
		Frames:  60,
		FrameMs: 1000.0 / 60,
		Events: []Event{
			{Frame: 5, Action: ActionDown, X: 0.5, Y: 0.5},
			{Frame: 8, Action: ActionUp},
		},
	}
	s := newSim(t, 1)

	result, err := Run(context.Background(), sc, s)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Frames) != 60 {
		t.Errorf("expected 60 frames, got %d", len(result.Frames))
	}
	if result.StepsTaken != 60 {
		t.Errorf("expected 60 steps, got %d", result.StepsTaken)
	}
	if result.Final == nil || result.Final.Steps != 60 {
		t.Errorf("final snapshot missing or stale")
	}
	if result.Frames[4].Pulses != 0 || result.Frames[5].Pulses == 0 {
		t.Errorf("press did not land on frame 5: %d then %d pulses", result.Frames[4].Pulses, result.Frames[5].Pulses)
	}
}

func TestRunJitterKeepsPace(t *testing.T) {
	sc := &Scenario{Name: "shaky", Frames: 120, FrameMs: 1000.0 / 60, Jitter: 6}
	s := newSim(t, 9)

	result, err := Run(context.Background(), sc, s)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if math.Abs(float64(result.StepsTaken-120)) > 8 {
		t.Errorf("jittered run drifted to %d steps", result.StepsTaken)
	}
}

func TestRunAppliesParams(t *testing.T) {
	sc := &Scenario{Name: "p", Frames: 1, FrameMs: 16, Params: map[string]float64{"tear_chance": 0.9}}
	s := newSim(t, 1)

	if _, err := Run(context.Background(), sc, s); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if s.Params().TearChance != 0.9 {
		t.Errorf("param override not applied: %v", s.Params().TearChance)
	}

	sc.Params = map[string]float64{"gravity": 9.81}
	if _, err := Run(context.Background(), sc, s); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestRunReset(t *testing.T) {
	sc := &Scenario{Name: "reset", Frames: 40, FrameMs: 1000.0 / 60}
	for f := 0; f < 20; f++ {
		sc.Events = append(sc.Events,
			Event{Frame: f, Action: ActionPulse, X: 0.5, Y: 0.5, Strength: 40000},
			Event{Frame: f, Action: ActionDown, X: 0.5, Y: 0.5},
		)
	}
	sc.Events = append(sc.Events, Event{Frame: 30, Action: ActionReset})
	s := newSim(t, 5)

	result, err := Run(context.Background(), sc, s)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Frames[29].Broken == 0 {
		t.Fatal("expected tears before the reset")
	}
	if result.Frames[30].Broken != 0 || result.Final.Constraints != result.Final.Initial {
		t.Errorf("reset did not restore the lattice: %+v", result.Frames[30])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, &Scenario{Name: "c", Frames: 100, FrameMs: 16}, newSim(t, 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Frames) != 0 || result.Final == nil {
		t.Errorf("expected no frames and a final snapshot, got %d frames", len(result.Frames))
	}
}
