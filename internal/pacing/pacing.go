// Package pacing schedules ticks on a fixed period and turns tick overruns
// into a perf-pressure signal that throttles the simulation.
package pacing

import (
	"math"
	"time"
)

// PausedPeriod is the tick period used while the rain is paused.
const PausedPeriod = 250 * time.Millisecond

const (
	pressureGain  = 0.25
	pressureDecay = 0.02
	maxOvershoot  = 2.0
)

// Controller tracks the next tick deadline and the perf pressure.
type Controller struct {
	period   time.Duration
	paused   bool
	next     time.Time
	pressure float64
}

// New creates a controller ticking at fps starting at now.
func New(fps float64, now time.Time) *Controller {
	return &Controller{period: PeriodFor(fps), next: now}
}

// PeriodFor converts a frame rate to a tick period.
func PeriodFor(fps float64) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Duration(float64(time.Second) / fps)
}

// Period returns the current tick period.
func (c *Controller) Period() time.Duration {
	if c.paused {
		return PausedPeriod
	}
	return c.period
}

// TargetPeriod returns the unpaused tick period.
func (c *Controller) TargetPeriod() time.Duration { return c.period }

// SetPaused switches between the target and the paused period.
func (c *Controller) SetPaused(p bool) { c.paused = p }

// Pressure returns the current perf pressure in [0, 1].
func (c *Controller) Pressure() float64 { return c.pressure }

// Next returns the deadline of the next tick.
func (c *Controller) Next() time.Time { return c.next }

// Due reports whether the next tick is due at now.
func (c *Controller) Due(now time.Time) bool { return !now.Before(c.next) }

// Until returns the wait before the next tick, zero when due.
func (c *Controller) Until(now time.Time) time.Duration {
	return max(c.next.Sub(now), 0)
}

// Reset makes the next tick due at now.
func (c *Controller) Reset(now time.Time) { c.next = now }

// Observe feeds the duration of one tick's work into the pressure loop and
// returns the overshoot ratio: work beyond the period as a fraction of it,
// clamped to [0, 2].
func (c *Controller) Observe(work time.Duration) float64 {
	period := max(c.Period(), time.Microsecond)
	overshoot := math.Min(math.Max(float64(work)/float64(period)-1, 0), maxOvershoot)
	if overshoot > 0 {
		c.pressure = math.Min(c.pressure+pressureGain*overshoot, 1)
	} else {
		c.pressure = math.Max(c.pressure-pressureDecay, 0)
	}
	return overshoot
}

// Advance moves the deadline one period on. A deadline already behind now
// restarts from now instead of bursting to catch up.
func (c *Controller) Advance(now time.Time) time.Time {
	p := c.Period()
	c.next = c.next.Add(p)
	if now.After(c.next) {
		c.next = now.Add(p)
	}
	return c.next
}

// SimCap returns the most simulated time a single tick may cover. It runs
// linearly from min(3 periods, 500ms) at zero pressure down to
// max(period/2, 1ms) at full pressure.
func (c *Controller) SimCap() time.Duration {
	return SimCap(c.Period(), c.pressure)
}

// SimCap computes the sim-delta cap for period at pressure.
func SimCap(period time.Duration, pressure float64) time.Duration {
	hi := min(3*period, 500*time.Millisecond)
	lo := max(period/2, time.Millisecond)
	if lo > hi {
		lo = hi
	}
	p := math.Min(math.Max(pressure, 0), 1)
	return hi - time.Duration(p*float64(hi-lo))
}
