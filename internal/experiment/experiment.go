package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/tearsim/internal/automation"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/sim"
)

type Config struct {
	Scenario string
	Preset   string
	Seed     int64
	Params   dynamo.Params
	Metrics  []dynamo.Metric
}

// Experiment binds a scenario to a freshly built simulation.
type Experiment struct {
	cfg       Config
	scenario  *automation.Scenario
	simulator *sim.Simulation
}

func New(cfg Config, scenario *automation.Scenario) *Experiment {
	return &Experiment{cfg: cfg, scenario: scenario}
}

func (e *Experiment) Setup() error {
	s, err := sim.New(e.cfg.Params, e.cfg.Seed)
	if err != nil {
		return err
	}
	for _, m := range e.cfg.Metrics {
		s.AddMetric(m)
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return automation.Run(ctx, e.scenario, e.simulator)
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) Scenario() *automation.Scenario { return e.scenario }

// Simulation returns the underlying simulation for adding observers
func (e *Experiment) Simulation() *sim.Simulation {
	return e.simulator
}
