package sim

import "math"

// stepTolerance absorbs float error when the accumulator lands a hair below a
// whole step, e.g. after adding 1000/60 ms to a 1/60 s step.
const stepTolerance = 1e-9

// Scheduler is a fixed-step accumulator. Elapsed wall time is clamped to
// MaxFrameMs per frame, consumed in whole Dt steps, and the remainder carries
// over to the next frame.
type Scheduler struct {
	Dt         float64 // seconds
	MaxFrameMs float64
	acc        float64 // milliseconds
}

func NewScheduler(dt, maxFrameMs float64) *Scheduler {
	return &Scheduler{Dt: dt, MaxFrameMs: maxFrameMs}
}

func (s *Scheduler) stepMs() float64 { return s.Dt * 1000 }

// Advance adds elapsedMs and returns how many whole steps are now due.
func (s *Scheduler) Advance(elapsedMs float64) int {
	if math.IsNaN(elapsedMs) || elapsedMs < 0 {
		elapsedMs = 0
	}
	if s.MaxFrameMs > 0 && elapsedMs > s.MaxFrameMs {
		elapsedMs = s.MaxFrameMs
	}
	s.acc += elapsedMs

	step := s.stepMs()
	if step <= 0 {
		return 0
	}
	n := 0
	for s.acc+stepTolerance >= step {
		s.acc -= step
		n++
	}
	if s.acc < 0 {
		s.acc = 0
	}
	return n
}

// Remainder is the carried time in milliseconds.
func (s *Scheduler) Remainder() float64 { return s.acc }

// Alpha is the carried fraction of a step, for render interpolation.
func (s *Scheduler) Alpha() float64 {
	step := s.stepMs()
	if step <= 0 {
		return 0
	}
	return s.acc / step
}

func (s *Scheduler) Reset() { s.acc = 0 }
