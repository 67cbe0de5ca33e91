package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/tearsim/internal/experiment"
)

// GridSearch evaluates every combination of the given parameter values and
// keeps the one that minimizes a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type searchState struct {
	metric string
	build  func(map[string]float64) (*experiment.Experiment, error)
	best   float64
	params map[string]float64
	trials []Trial
}

// Search runs the grid. It returns the best parameters, their metric value and
// every trial in evaluation order. Failed trials are recorded, not fatal,
// unless every trial fails.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	st := &searchState{metric: metricName, build: buildExperiment, best: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), st); err != nil {
		return st.params, st.best, st.trials, err
	}

	if st.params == nil {
		var errs []error
		for _, t := range st.trials {
			errs = append(errs, t.Err)
		}
		return nil, 0, st.trials, fmt.Errorf("grid search: no trial succeeded: %w", errors.Join(errs...))
	}
	return st.params, st.best, st.trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, st *searchState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := evaluate(ctx, current, st)
		st.trials = append(st.trials, Trial{Params: current, Value: val, Err: err})
		if err == nil && val < st.best {
			st.best = val
			st.params = copyParams(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := copyParams(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, st); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, params map[string]float64, st *searchState) (float64, error) {
	exp, err := st.build(params)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[st.metric]
	if !ok {
		return 0, fmt.Errorf("metric %s not recorded", st.metric)
	}
	return val, nil
}

func copyParams(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
