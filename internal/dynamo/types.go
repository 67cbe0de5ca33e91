package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Link is a live constraint as the renderer sees it.
type Link struct {
	A, B   int
	Shear  bool
	Strain float64 // current length over rest length
}

// Stats summarizes one snapshot for readouts and run storage.
type Stats struct {
	Time        float64
	Steps       int
	Particles   int
	Constraints int
	Broken      int
	Pulses      int
	MeanStrain  float64
	PeakStrain  float64
	Motion      float64
}

// Snapshot is a read-only copy of the core state taken between ticks.
type Snapshot struct {
	Positions []r2.Vec
	Pinned    []bool
	Links     []Link
	Width     float64
	Height    float64
	Initial   int // constraint count right after the last rebuild
	Stats
}

// IsValid reports whether every position is finite.
func (s *Snapshot) IsValid() bool {
	for _, p := range s.Positions {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Pairs returns the endpoint index pairs of every live constraint in order.
func (s *Snapshot) Pairs() [][2]int {
	out := make([][2]int, len(s.Links))
	for i, l := range s.Links {
		out[i] = [2]int{l.A, l.B}
	}
	return out
}

type Metric interface {
	Name() string
	Observe(s *Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(s *Snapshot)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Result is what a headless run produces.
type Result struct {
	Frames     []Stats
	Metrics    map[string]float64
	Final      *Snapshot
	StepsTaken int
	Errors     []error
}

// Column extracts one named stats column from the frames.
func (r *Result) Column(name string) []float64 {
	return StatsColumn(r.Frames, name)
}

// StatsColumns lists the names accepted by StatsColumn in storage order.
var StatsColumns = []string{"time", "steps", "particles", "constraints", "broken", "pulses", "mean_strain", "peak_strain", "motion"}

func StatsColumn(frames []Stats, name string) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Field(name)
	}
	return out
}

// Field returns a stats value by column name, or NaN for an unknown name.
func (s Stats) Field(name string) float64 {
	switch name {
	case "time":
		return s.Time
	case "steps":
		return float64(s.Steps)
	case "particles":
		return float64(s.Particles)
	case "constraints":
		return float64(s.Constraints)
	case "broken":
		return float64(s.Broken)
	case "pulses":
		return float64(s.Pulses)
	case "mean_strain":
		return s.MeanStrain
	case "peak_strain":
		return s.PeakStrain
	case "motion":
		return s.Motion
	}
	return math.NaN()
}

// Values returns the stats in StatsColumns order.
func (s Stats) Values() []float64 {
	out := make([]float64, len(StatsColumns))
	for i, name := range StatsColumns {
		out[i] = s.Field(name)
	}
	return out
}

// StatsFromValues is the inverse of Values.
func StatsFromValues(v []float64) Stats {
	get := func(i int) float64 {
		if i < len(v) {
			return v[i]
		}
		return 0
	}
	return Stats{
		Time:        get(0),
		Steps:       int(get(1)),
		Particles:   int(get(2)),
		Constraints: int(get(3)),
		Broken:      int(get(4)),
		Pulses:      int(get(5)),
		MeanStrain:  get(6),
		PeakStrain:  get(7),
		Motion:      get(8),
	}
}
