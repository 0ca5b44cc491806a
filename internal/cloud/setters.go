package cloud

import (
	"time"

	"cosmorain/internal/palette"
)

// Speed returns the global characters-per-second.
func (c *Cloud) Speed() float64 { return c.charsPerSec }

// SetSpeed sets characters-per-second and rescales live droplets.
func (c *Cloud) SetSpeed(cps float64) {
	c.charsPerSec = cps
	c.recalcDropletsPerSec()
	c.setColumnSpeeds()
	c.updateDropletSpeeds()
}

// Density returns the droplet density.
func (c *Cloud) Density() float64 { return c.density }

// SetDensity sets the droplet density.
func (c *Cloud) SetDensity(d float64) {
	c.density = d
	c.recalcDropletsPerSec()
}

// DropletsPerSec returns the derived spawn rate.
func (c *Cloud) DropletsPerSec() float64 { return c.dropletsPerSec }

// GlitchPct returns the glitch probability in [0, 1].
func (c *Cloud) GlitchPct() float64 { return c.glitchPct }

// SetGlitchPct sets the glitch probability and rerolls the glitch map.
func (c *Cloud) SetGlitchPct(p float64) {
	c.glitchPct = p
	c.fillGlitchMap()
}

// SetGlitchTimes sets the glitch window range. Bounds may be given in
// either order.
func (c *Cloud) SetGlitchTimes(lo, hi time.Duration) {
	c.glitchLow, c.glitchHigh = lo, hi
}

// SetLingerTimes sets the linger range. Bounds may be given in either
// order.
func (c *Cloud) SetLingerTimes(lo, hi time.Duration) {
	c.lingerLow, c.lingerHigh = lo, hi
}

// SetShortPct sets the probability of a short droplet.
func (c *Cloud) SetShortPct(p float64) { c.shortPct = p }

// SetDieEarlyPct sets the probability of a droplet stopping above the
// bottom row.
func (c *Cloud) SetDieEarlyPct(p float64) { c.dieEarlyPct = p }

// SetMaxPerColumn caps live droplets per column.
func (c *Cloud) SetMaxPerColumn(n int) { c.maxPerColumn = max(n, 1) }

// Glitchy reports whether glitches are enabled.
func (c *Cloud) Glitchy() bool { return c.glitchy }

// SetGlitchy enables or disables glitches.
func (c *Cloud) SetGlitchy(on bool) {
	c.glitchy = on
	c.fillGlitchMap()
	c.forceDraw = true
}

// Async reports whether columns fall at individual speeds.
func (c *Cloud) Async() bool { return c.opts.Async }

// SetAsync switches per-column speeds on or off.
func (c *Cloud) SetAsync(on bool) {
	c.opts.Async = on
	c.setColumnSpeeds()
	c.updateDropletSpeeds()
}

// Shading returns the shading mode.
func (c *Cloud) Shading() Shading { return c.opts.Shading }

// SetShading sets the shading mode.
func (c *Cloud) SetShading(s Shading) {
	c.opts.Shading = s
	c.forceDraw = true
}

// SetBold sets the bold mode.
func (c *Cloud) SetBold(b BoldMode) {
	c.opts.Bold = b
	c.forceDraw = true
}

// Scheme returns the active color scheme.
func (c *Cloud) Scheme() palette.Scheme { return c.opts.Scheme }

// SetScheme rebuilds the palette for s and rerolls the color map.
func (c *Cloud) SetScheme(s palette.Scheme) {
	c.opts.Scheme = s
	c.palette = palette.Build(s, c.opts.Mode, c.opts.DefaultBG)
	c.fillColorMap()
	c.forceDraw = true
}

// Pressure returns the perf pressure last pushed in.
func (c *Cloud) Pressure() float64 { return c.pressure }

// SetPerfPressure sets the perf pressure, clamped to [0, 1]. It scales the
// spawn budget down and suppresses glitch passes at 0.35 and above.
func (c *Cloud) SetPerfPressure(p float64) { c.pressure = clamp(p, 0, 1) }

// MaxSimDelta returns the per-tick simulated time cap.
func (c *Cloud) MaxSimDelta() time.Duration { return c.maxSimDelta }

// SetMaxSimDelta caps the time a single tick may simulate. Zero disables
// the cap.
func (c *Cloud) SetMaxSimDelta(d time.Duration) { c.maxSimDelta = max(d, 0) }
