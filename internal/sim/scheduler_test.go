package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tearsim/internal/sim"
)

var _ = Describe("Scheduler", func() {
	var s *sim.Scheduler

	BeforeEach(func() {
		s = sim.NewScheduler(0.010, 250)
	})

	It("runs whole steps and carries the remainder", func() {
		Expect(s.Advance(25)).To(Equal(2))
		Expect(s.Remainder()).To(BeNumerically("~", 5, 1e-9))
		Expect(s.Advance(5)).To(Equal(1))
		Expect(s.Remainder()).To(BeNumerically("~", 0, 1e-9))
	})

	It("runs nothing for a short frame", func() {
		Expect(s.Advance(4)).To(Equal(0))
		Expect(s.Alpha()).To(BeNumerically("~", 0.4, 1e-9))
	})

	It("clamps a stalled frame to the frame budget", func() {
		Expect(s.Advance(10000)).To(Equal(25))
	})

	It("ignores negative elapsed time", func() {
		Expect(s.Advance(-50)).To(Equal(0))
		Expect(s.Remainder()).To(BeZero())
	})

	It("treats a frame of exactly one step as one step", func() {
		s = sim.NewScheduler(1.0/60, 250)
		for i := 0; i < 120; i++ {
			Expect(s.Advance(1000.0 / 60)).To(Equal(1))
		}
	})

	It("forgets carried time on reset", func() {
		s.Advance(7)
		s.Reset()
		Expect(s.Remainder()).To(BeZero())
	})
})
