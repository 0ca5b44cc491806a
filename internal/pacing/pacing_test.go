package pacing_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cosmorain/internal/pacing"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var _ = Describe("Controller", func() {
	var c *pacing.Controller

	BeforeEach(func() {
		c = pacing.New(50, t0)
	})

	It("derives the period from the frame rate", func() {
		Expect(c.Period()).To(Equal(20 * time.Millisecond))
		Expect(pacing.PeriodFor(0)).To(Equal(time.Second))
	})

	It("is due immediately after creation", func() {
		Expect(c.Due(t0)).To(BeTrue())
		Expect(c.Until(t0)).To(BeZero())
	})

	Describe("Advance", func() {
		It("steps the deadline by one period", func() {
			Expect(c.Advance(t0.Add(5 * time.Millisecond))).To(Equal(t0.Add(20 * time.Millisecond)))
			Expect(c.Until(t0.Add(15 * time.Millisecond))).To(Equal(5 * time.Millisecond))
		})

		It("restarts from now when behind instead of catching up", func() {
			late := t0.Add(time.Second)
			Expect(c.Advance(late)).To(Equal(late.Add(20 * time.Millisecond)))
		})

		It("uses the paused period while paused", func() {
			c.SetPaused(true)
			Expect(c.Period()).To(Equal(pacing.PausedPeriod))
			Expect(c.Advance(t0)).To(Equal(t0.Add(250 * time.Millisecond)))
			Expect(c.TargetPeriod()).To(Equal(20 * time.Millisecond))
		})
	})

	Describe("Observe", func() {
		It("raises pressure in proportion to overshoot", func() {
			Expect(c.Observe(30 * time.Millisecond)).To(BeNumerically("~", 0.5, 1e-9))
			Expect(c.Pressure()).To(BeNumerically("~", 0.125, 1e-9))
		})

		It("clamps overshoot and pressure", func() {
			Expect(c.Observe(time.Second)).To(Equal(2.0))
			Expect(c.Pressure()).To(BeNumerically("~", 0.5, 1e-9))
			c.Observe(time.Second)
			c.Observe(time.Second)
			Expect(c.Pressure()).To(Equal(1.0))
		})

		It("decays pressure when work fits the period", func() {
			c.Observe(40 * time.Millisecond)
			Expect(c.Observe(time.Millisecond)).To(BeZero())
			Expect(c.Pressure()).To(BeNumerically("~", 0.23, 1e-9))
		})

		It("never decays below zero", func() {
			for range 10 {
				c.Observe(0)
			}
			Expect(c.Pressure()).To(BeZero())
		})
	})

	Describe("SimCap", func() {
		period := time.Second / 60

		It("is three periods at zero pressure", func() {
			Expect(pacing.SimCap(period, 0)).To(Equal(3 * period))
		})

		It("is half a period at full pressure", func() {
			Expect(pacing.SimCap(period, 1)).To(Equal(period / 2))
		})

		It("is bounded by 500ms and 1ms", func() {
			Expect(pacing.SimCap(time.Second, 0)).To(Equal(500 * time.Millisecond))
			Expect(pacing.SimCap(time.Millisecond, 1)).To(Equal(time.Millisecond))
		})

		It("shrinks monotonically with pressure", func() {
			prev := pacing.SimCap(period, 0)
			for p := 0.1; p <= 1; p += 0.1 {
				cur := pacing.SimCap(period, p)
				Expect(cur).To(BeNumerically("<=", prev))
				prev = cur
			}
		})

		It("follows the controller pressure", func() {
			c.Observe(time.Second)
			c.Observe(time.Second)
			Expect(c.SimCap()).To(Equal(10 * time.Millisecond))
		})
	})
})

var _ = Describe("Recorder", func() {
	It("summarises recorded ticks", func() {
		r := pacing.NewRecorder(60, t0)
		r.Record(10*time.Millisecond, true, 0, 0)
		r.Record(30*time.Millisecond, false, 0.8, 0.2)

		s := r.Summary(t0.Add(2 * time.Second))
		Expect(s.Frames).To(Equal(uint64(2)))
		Expect(s.AvgFPS).To(BeNumerically("~", 1, 1e-9))
		Expect(s.DrawnPct()).To(BeNumerically("~", 50, 1e-9))
		Expect(s.OvershootPct()).To(BeNumerically("~", 50, 1e-9))
		Expect(s.AvgWork).To(Equal(20 * time.Millisecond))
		Expect(s.MaxWork).To(Equal(30 * time.Millisecond))
		Expect(s.MaxPressure).To(Equal(0.2))
	})

	It("reports the summary and a plot", func() {
		r := pacing.NewRecorder(60, t0)
		for i := range 20 {
			r.Record(time.Duration(i)*time.Millisecond, true, 0, 0)
		}

		var buf bytes.Buffer
		Expect(r.Report(&buf, t0.Add(time.Second))).To(Succeed())
		Expect(buf.String()).To(HavePrefix("PERF STATS:\n"))
		Expect(buf.String()).To(ContainSubstring("  frames: 20\n"))
		Expect(buf.String()).To(ContainSubstring("  drawn_frames: 20 (100.0%)\n"))
		Expect(buf.String()).To(ContainSubstring("work ms per tick"))
	})

	It("skips the plot without samples", func() {
		r := pacing.NewRecorder(60, t0)
		Expect(r.Plot()).To(BeEmpty())

		var buf bytes.Buffer
		Expect(r.Report(&buf, t0)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("  frames: 0\n"))
	})
})
