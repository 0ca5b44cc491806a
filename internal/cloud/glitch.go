package cloud

import (
	"time"

	"cosmorain/internal/droplet"
)

// Phase is the brightness state of glitched cells within a glitch window.
type Phase uint8

const (
	PhaseNeutral Phase = iota
	PhaseBright
	PhaseDim
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBright:
		return "bright"
	case PhaseDim:
		return "dim"
	}
	return "neutral"
}

// envelope is a glitch window. Cells are bright through the first quarter
// of the window and dim from the last quarter on, including after it ends.
type envelope struct {
	last, next time.Time
}

func (e envelope) phase(now time.Time) Phase {
	if now.Before(e.last) {
		return PhaseNeutral
	}
	if now.After(e.next) {
		return PhaseDim
	}
	between := e.next.Sub(e.last)
	if between <= 0 {
		return PhaseDim
	}
	frac := float64(now.Sub(e.last)) / float64(between)
	switch {
	case frac <= 0.25:
		return PhaseBright
	case frac >= 0.75:
		return PhaseDim
	}
	return PhaseNeutral
}

// GlitchPhase returns the envelope phase at now for the current window.
func (c *Cloud) GlitchPhase(now time.Time) Phase {
	return envelope{c.lastGlitch, c.nextGlitch}.phase(now)
}

// GlitchWindow returns the current glitch window bounds.
func (c *Cloud) GlitchWindow() (last, next time.Time) {
	return c.lastGlitch, c.nextGlitch
}

// Glitched reports whether the cell at (row, col) takes part in glitches.
// Stale coordinates read as not glitched.
func (c *Cloud) Glitched(row, col int) bool {
	if !c.glitchy {
		return false
	}
	return lookup(c.glitchMap, c.cols, row, col)
}

func lookup(m []bool, cols, row, col int) bool {
	if row < 0 || col < 0 || col >= cols {
		return false
	}
	i := row*cols + col
	if i >= len(m) {
		return false
	}
	return m[i]
}

// fillGlitchMap sizes the map to the grid. With glitches off every cell
// is cleared and no random numbers are drawn.
func (c *Cloud) fillGlitchMap() {
	size := c.cols * c.lines
	if cap(c.glitchMap) >= size {
		c.glitchMap = c.glitchMap[:size]
	} else {
		c.glitchMap = make([]bool, size)
	}
	for i := range c.glitchMap {
		c.glitchMap[i] = c.glitchy && c.rng.Float64() <= c.glitchPct
	}
}

func (c *Cloud) rollGlitch() time.Duration {
	return c.uniformDuration(c.glitchLow, c.glitchHigh)
}

// glitchSpan swaps the pool glyph behind every glitched cell of the
// droplet's visible rows for the next glyph of the glitch pool.
func (c *Cloud) glitchSpan(d *droplet.Droplet, top, bottom int) {
	if len(c.charPool) == 0 || len(c.glitchPool) == 0 {
		return
	}
	for row := top; row <= bottom && row < c.lines; row++ {
		if !c.Glitched(row, d.Col) {
			continue
		}
		i := (d.PoolOffset + row) % len(c.charPool)
		c.charPool[i] = c.glitchPool[c.glitchPoolIdx]
		c.glitchPoolIdx = (c.glitchPoolIdx + 1) % len(c.glitchPool)
	}
}
