package experiment

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/tearsim/internal/automation"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/metrics"
)

type Registry struct {
	scenarios map[string]*automation.Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]*automation.Scenario)}
	for _, sc := range builtins() {
		r.scenarios[sc.Name] = sc
	}
	return r
}

// Register adds or replaces a scenario.
func (r *Registry) Register(sc *automation.Scenario) error {
	if sc.Name == "" {
		return &dynamo.ConfigError{Field: "name", Value: sc.Name, Reason: "scenario needs a name"}
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	r.scenarios[sc.Name] = sc.Clone()
	return nil
}

// GetScenario returns a copy of a registered scenario.
func (r *Registry) GetScenario(name string) (*automation.Scenario, error) {
	sc, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, name)
	}
	return sc.Clone(), nil
}

// Resolve treats arg as a registered name first and a YAML path second.
func (r *Registry) Resolve(arg string) (*automation.Scenario, error) {
	if sc, err := r.GetScenario(arg); err == nil {
		return sc, nil
	}
	if _, err := os.Stat(arg); err != nil {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownScenario, arg)
	}
	return automation.LoadScenario(arg)
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Default()
}

// Build resolves a scenario and returns an experiment ready to run, with the
// default metrics attached when cfg carries none.
func (r *Registry) Build(cfg Config) (*Experiment, error) {
	sc, err := r.Resolve(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics == nil {
		cfg.Metrics = r.DefaultMetrics()
	}
	exp := New(cfg, sc)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}
