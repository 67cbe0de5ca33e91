package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a parameter set that cannot drive a simulation.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidLattice indicates lattice geometry that cannot be built.
	ErrInvalidLattice = errors.New("dynamo: invalid lattice geometry")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrUnknownScenario indicates a scenario name with no registered script.
	ErrUnknownScenario = errors.New("dynamo: unknown scenario")

	// ErrUnknownParam indicates a parameter name outside the named set.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrNoData indicates a stored run without samples.
	ErrNoData = errors.New("dynamo: no data")
)

// ConfigError describes which configuration field was rejected and why.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SimError wraps a runtime failure with the step it happened on.
type SimError struct {
	Step    int
	Time    float64
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error {
	return ErrUnstable
}
