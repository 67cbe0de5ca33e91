package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/tearsim/internal/dynamo"
)

// DefaultStabilityStrain is the strain above which a frame counts as unstable.
const DefaultStabilityStrain = 2.5

var factories = map[string]func() dynamo.Metric{
	"tears":       func() dynamo.Metric { return NewTears() },
	"integrity":   func() dynamo.Metric { return NewIntegrity() },
	"mean_strain": func() dynamo.Metric { return NewMeanStrain() },
	"peak_strain": func() dynamo.Metric { return NewPeakStrain() },
	"motion":      func() dynamo.Metric { return NewMotion() },
	"stability":   func() dynamo.Metric { return NewStability(DefaultStabilityStrain) },
}

// New returns a fresh metric by name.
func New(name string) (dynamo.Metric, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return f(), nil
}

// Names lists the registered metrics in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns one fresh instance of every registered metric.
func Default() []dynamo.Metric {
	out := make([]dynamo.Metric, 0, len(factories))
	for _, name := range Names() {
		out = append(out, factories[name]())
	}
	return out
}
