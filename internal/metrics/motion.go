package metrics

import "github.com/san-kum/tearsim/internal/dynamo"

// Motion averages the summed squared step displacement of free particles,
// a kinetic energy proxy for a Verlet lattice.
type Motion struct {
	name    string
	sum     float64
	samples int
}

func NewMotion() *Motion {
	return &Motion{name: "motion"}
}

func (m *Motion) Name() string {
	return m.name
}

func (m *Motion) Observe(s *dynamo.Snapshot) {
	m.sum += s.Motion
	m.samples++
}

func (m *Motion) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Motion) Reset() {
	m.sum = 0
	m.samples = 0
}
