package metrics

import "github.com/san-kum/tearsim/internal/dynamo"

// Tears counts constraints broken across every observed frame. A rebuild
// resets the simulation's own counter, so drops are treated as a new run.
type Tears struct {
	name  string
	total int
	last  int
}

func NewTears() *Tears {
	return &Tears{name: "tears"}
}

func (t *Tears) Name() string { return t.name }

func (t *Tears) Observe(s *dynamo.Snapshot) {
	if s.Broken < t.last {
		t.last = 0
	}
	t.total += s.Broken - t.last
	t.last = s.Broken
}

func (t *Tears) Value() float64 { return float64(t.total) }

func (t *Tears) Reset() {
	t.total = 0
	t.last = 0
}

// Integrity is the fraction of the lattice's constraints still live in the
// latest frame.
type Integrity struct {
	name  string
	value float64
}

func NewIntegrity() *Integrity {
	return &Integrity{name: "integrity", value: 1}
}

func (i *Integrity) Name() string { return i.name }

func (i *Integrity) Observe(s *dynamo.Snapshot) {
	if s.Initial == 0 {
		i.value = 0
		return
	}
	i.value = float64(s.Constraints) / float64(s.Initial)
}

func (i *Integrity) Value() float64 { return i.value }

func (i *Integrity) Reset() { i.value = 1 }
