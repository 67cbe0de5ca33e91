package sim

import (
	"context"
	"sync"

	"github.com/san-kum/tearsim/internal/dynamo"
)

// Runner drives one simulation to completion.
type Runner func(ctx context.Context, s *Simulation) (*dynamo.Result, error)

// Ensemble runs independent simulations that differ only in seed. Each
// simulation stays single-threaded; only whole runs execute concurrently.
type Ensemble struct {
	params    dynamo.Params
	numRuns   int
	seedStart int64
	metrics   func() []dynamo.Metric
}

func NewEnsemble(p dynamo.Params, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{params: p, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics registers a factory called once per run, so runs never share
// metric state.
func (e *Ensemble) WithMetrics(factory func() []dynamo.Metric) *Ensemble {
	e.metrics = factory
	return e
}

func (e *Ensemble) Run(ctx context.Context, run Runner) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := New(e.params, e.seedStart+int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			results[idx], errs[idx] = run(ctx, s)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Summary averages each metric over a set of results.
func Summary(results []*dynamo.Result) map[string]float64 {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out
	}
	for _, r := range results {
		for name, v := range r.Metrics {
			out[name] += v
		}
	}
	for name := range out {
		out[name] /= float64(len(results))
	}
	return out
}
