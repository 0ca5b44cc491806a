// Package cloud drives the rain: it owns the droplet pool, spawns droplets
// under a rate budget, schedules glitches, shades cells and overlays the
// optional message box.
package cloud

import (
	"math"
	"math/rand"
	"time"

	"cosmorain/internal/droplet"
	"cosmorain/internal/frame"
	"cosmorain/internal/palette"
)

// DefaultSeed seeds the generator when no seed is configured.
const DefaultSeed = 0x1234567

const (
	charPoolSize   = 2048
	glitchPoolSize = 1024

	minSpeedPct = 0.3333333
)

// BoldMode selects how bold attributes are assigned.
type BoldMode uint8

const (
	BoldOff BoldMode = iota
	BoldRandom
	BoldAll
)

// Shading selects how the base color of a cell is chosen.
type Shading uint8

const (
	ShadeRandom   Shading = iota // Per-cell random index from the color map
	ShadeDistance                // Darker with distance behind the head
)

// Options are the construction-time settings of a cloud.
type Options struct {
	Mode      palette.Mode
	Scheme    palette.Scheme
	DefaultBG bool
	FullWidth bool
	Shading   Shading
	Bold      BoldMode
	Async     bool
}

// Stats counts spawn activity since the last Reset.
type Stats struct {
	Attempts uint64 // Spawn budget units consumed
	Spawned  uint64 // Droplets actually activated
}

type columnStatus struct {
	speedPct float64
	live     int
	canSpawn bool
}

type msgCell struct {
	row, col int
	glyph    rune
}

// Cloud is the simulation aggregate. It is not safe for concurrent use.
type Cloud struct {
	lines, cols int

	opts    Options
	palette palette.Palette

	density        float64
	dropletsPerSec float64
	charsPerSec    float64

	glitchy               bool
	glitchPct             float64
	glitchLow, glitchHigh time.Duration
	shortPct, dieEarlyPct float64
	lingerLow, lingerHigh time.Duration
	maxPerColumn          int

	droplets []droplet.Droplet
	columns  []columnStatus

	chars         []rune
	charPool      []rune
	glitchPool    []rune
	glitchPoolIdx int

	glitchMap []bool
	colorMap  []uint8

	rng *rand.Rand

	lastGlitch, nextGlitch time.Time
	lastSpawn              time.Time
	spawnRemainder         float64
	stats                  Stats

	paused   bool
	pausedAt time.Time

	forceDraw   bool
	pressure    float64
	maxSimDelta time.Duration

	message       []msgCell
	messageText   string
	hasMessage    bool
	messageBorder bool
}

// New creates a cloud with the stock tuning. Call InitChars and Reset
// before the first Rain.
func New(opts Options, rng *rand.Rand, now time.Time) *Cloud {
	if rng == nil {
		rng = rand.New(rand.NewSource(DefaultSeed))
	}
	return &Cloud{
		opts:          opts,
		palette:       palette.Build(opts.Scheme, opts.Mode, opts.DefaultBG),
		density:       1,
		charsPerSec:   8,
		glitchy:       true,
		glitchPct:     0.1,
		glitchLow:     300 * time.Millisecond,
		glitchHigh:    400 * time.Millisecond,
		shortPct:      0.5,
		dieEarlyPct:   0.3333333,
		lingerLow:     time.Millisecond,
		lingerHigh:    3000 * time.Millisecond,
		maxPerColumn:  3,
		rng:           rng,
		lastGlitch:    now,
		nextGlitch:    now.Add(300 * time.Millisecond),
		lastSpawn:     now,
		messageBorder: true,
	}
}

// Cols returns the grid width.
func (c *Cloud) Cols() int { return c.cols }

// Lines returns the grid height.
func (c *Cloud) Lines() int { return c.lines }

// Palette returns the active palette.
func (c *Cloud) Palette() palette.Palette { return c.palette }

// Stats returns spawn counters.
func (c *Cloud) Stats() Stats { return c.stats }

// Droplets exposes the pool for inspection.
func (c *Cloud) Droplets() []droplet.Droplet { return c.droplets }

// LiveInColumn returns the number of live droplets bound to col.
func (c *Cloud) LiveInColumn(col int) int {
	if col < 0 || col >= len(c.columns) {
		return 0
	}
	return c.columns[col].live
}

// CanSpawn reports whether col accepts a new droplet.
func (c *Cloud) CanSpawn(col int) bool {
	if col < 0 || col >= len(c.columns) {
		return false
	}
	return c.columns[col].canSpawn
}

// InitChars fills the shared glyph pools from chars. An empty list falls
// back to binary digits.
func (c *Cloud) InitChars(chars []rune) {
	c.chars = append(c.chars[:0], chars...)
	if len(c.chars) == 0 {
		c.chars = append(c.chars, '0', '1')
	}
	if len(c.charPool) != charPoolSize {
		c.charPool = make([]rune, charPoolSize)
	}
	if len(c.glitchPool) != glitchPoolSize {
		c.glitchPool = make([]rune, glitchPoolSize)
	}
	c.glitchPoolIdx = 0
	for i := range c.charPool {
		c.charPool[i] = c.chars[c.rng.Intn(len(c.chars))]
	}
	for i := range c.glitchPool {
		c.glitchPool[i] = c.chars[c.rng.Intn(len(c.chars))]
	}
	c.forceDraw = true
}

// Reset resizes the grid and re-derives everything sized by it: the
// droplet pool, column stats and both overlays. All droplets are dropped.
func (c *Cloud) Reset(cols, lines int, now time.Time) {
	c.cols, c.lines = max(cols, 0), max(lines, 0)

	n := 0
	if c.cols > 0 && c.lines > 0 {
		n = int(math.Round(1.5 * float64(c.cols)))
	}
	if cap(c.droplets) < n {
		c.droplets = make([]droplet.Droplet, n)
	} else {
		c.droplets = c.droplets[:n]
		for i := range c.droplets {
			c.droplets[i].Recycle()
		}
	}

	if cap(c.columns) < c.cols {
		c.columns = make([]columnStatus, c.cols)
	} else {
		c.columns = c.columns[:c.cols]
	}
	for i := range c.columns {
		c.columns[i] = columnStatus{speedPct: 1, canSpawn: true}
	}

	c.recalcDropletsPerSec()
	c.fillGlitchMap()
	c.fillColorMap()
	c.setColumnSpeeds()

	if c.hasMessage {
		c.layoutMessage()
	}

	c.lastGlitch = now
	c.nextGlitch = now.Add(c.rollGlitch())
	c.lastSpawn = now
	c.spawnRemainder = 0
	c.stats = Stats{}
	c.forceDraw = true
}

// TogglePause pauses or resumes the rain. Time spent paused is skipped by
// shifting every live droplet forward.
func (c *Cloud) TogglePause(now time.Time) {
	c.paused = !c.paused
	if c.paused {
		c.pausedAt = now
		return
	}
	elapsed := now.Sub(c.pausedAt)
	if elapsed <= 0 {
		return
	}
	c.lastSpawn = c.lastSpawn.Add(elapsed)
	for i := range c.droplets {
		if c.droplets[i].Alive() {
			c.droplets[i].Shift(elapsed)
		}
	}
}

// Paused reports whether the rain is paused.
func (c *Cloud) Paused() bool { return c.paused }

// ForceRedraw clears the frame on the next Rain and repaints everything.
func (c *Cloud) ForceRedraw() { c.forceDraw = true }

// Rain advances the simulation to now and draws the result into f.
//
// A tick runs in two phases. The update phase advances droplets, releases
// columns and mutates the glyph pool for due glitches. The draw phase only
// reads that state and writes cells.
func (c *Cloud) Rain(f *frame.Frame, now time.Time) {
	if c.paused || c.cols == 0 || c.lines == 0 {
		return
	}

	spawnScale := clamp(1-0.75*c.pressure, 0.25, 1)
	c.spawn(now, spawnScale)

	if c.forceDraw {
		f.Clear(c.palette.BG)
		for i := range c.droplets {
			c.droplets[i].ForgetDrawn()
		}
	}

	glitchDue := c.glitchy && !now.Before(c.nextGlitch)
	allowGlitch := glitchDue && c.pressure < 0.35

	c.update(now, allowGlitch)

	ctx := c.shadeContext()
	everything := c.forceDraw || allowGlitch
	for i := range c.droplets {
		d := &c.droplets[i]
		if d.State() == droplet.Inactive {
			continue
		}
		c.drawDroplet(f, d, &ctx, now, everything)
		if d.State() == droplet.Dead {
			d.Recycle()
		}
	}

	if len(c.message) > 0 {
		c.drawMessage(f)
	}

	if glitchDue {
		c.lastGlitch = now
		c.nextGlitch = now.Add(c.rollGlitch())
	}
	c.forceDraw = false
}

// update advances every live droplet. The sim-delta cap bounds how far a
// single droplet moves in one tick.
func (c *Cloud) update(now time.Time, glitch bool) {
	for i := range c.droplets {
		d := &c.droplets[i]
		if !d.Alive() {
			continue
		}

		advNow := now
		if c.maxSimDelta > 0 {
			if limit := d.LastUpdate().Add(c.maxSimDelta); now.After(limit) {
				advNow = limit
			}
		}
		freeCol := d.Advance(advNow)

		if !d.Alive() {
			if cs := c.column(d.Col); cs != nil {
				cs.live = max(cs.live-1, 0)
				cs.canSpawn = true
			}
			continue
		}
		if freeCol {
			if cs := c.column(d.Col); cs != nil {
				cs.canSpawn = true
			}
		}
		if glitch {
			if top, bottom, ok := d.Span(); ok {
				c.glitchSpan(d, top, bottom)
			}
		}
	}
}

func (c *Cloud) column(col int) *columnStatus {
	if col < 0 || col >= len(c.columns) {
		return nil
	}
	return &c.columns[col]
}

func (c *Cloud) recalcDropletsPerSec() {
	if c.lines == 0 {
		c.dropletsPerSec = 0
		return
	}
	dropletSeconds := float64(c.lines) / math.Max(c.charsPerSec, 0.001)
	c.dropletsPerSec = float64(c.cols) * c.density / dropletSeconds
}

func (c *Cloud) fillColorMap() {
	size := c.cols * c.lines
	if cap(c.colorMap) >= size {
		c.colorMap = c.colorMap[:size]
	} else {
		c.colorMap = make([]uint8, size)
	}

	lo, hi := colorRange(len(c.palette.Colors))
	for i := range c.colorMap {
		c.colorMap[i] = uint8(lo + c.rng.Intn(hi-lo+1))
	}
}

// colorRange returns the inclusive index range middle cells may pick from.
// The first and last entries are left to tail and head.
func colorRange(n int) (lo, hi int) {
	switch {
	case n <= 2:
		return 0, 0
	case n == 3:
		return 1, 1
	}
	return 1, n - 2
}

func (c *Cloud) setColumnSpeeds() {
	for i := range c.columns {
		if c.opts.Async {
			c.columns[i].speedPct = minSpeedPct + c.rng.Float64()*(1-minSpeedPct)
		} else {
			c.columns[i].speedPct = 1
		}
	}
}

func (c *Cloud) updateDropletSpeeds() {
	for i := range c.droplets {
		d := &c.droplets[i]
		if !d.Alive() {
			continue
		}
		if cs := c.column(d.Col); cs != nil {
			d.CharsPerSec = cs.speedPct * c.charsPerSec
		}
	}
}

// uniformDuration draws a whole number of milliseconds in [lo, hi].
func (c *Cloud) uniformDuration(lo, hi time.Duration) time.Duration {
	if hi < lo {
		lo, hi = hi, lo
	}
	loMs, hiMs := lo.Milliseconds(), hi.Milliseconds()
	return time.Duration(loMs+c.rng.Int63n(hiMs-loMs+1)) * time.Millisecond
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
