package cloud

import (
	"math"
	"time"

	"cosmorain/internal/droplet"
)

// spawn converts the time since the previous spawn into a droplet budget.
// The fractional part of the budget carries over to the next tick. Every
// budget unit is one attempt; attempts on ineligible or full columns are
// spent without spawning.
func (c *Cloud) spawn(now time.Time, scale float64) {
	elapsed := now.Sub(c.lastSpawn)
	if elapsed < 0 {
		elapsed = 0
	}
	if c.maxSimDelta > 0 && elapsed > c.maxSimDelta {
		elapsed = c.maxSimDelta
	}
	c.lastSpawn = now

	budget := math.Max(elapsed.Seconds()*c.dropletsPerSec*scale, 0) + c.spawnRemainder
	toSpawn := min(int(math.Floor(budget)), len(c.droplets))
	c.spawnRemainder = budget - float64(toSpawn)
	if toSpawn <= 0 || c.cols == 0 {
		return
	}
	c.stats.Attempts += uint64(toSpawn)

	slot := 0
	for range toSpawn {
		col := c.rng.Intn(c.cols)
		if c.opts.FullWidth {
			col &^= 1
		}
		cs := c.column(col)
		if cs == nil || !cs.canSpawn || cs.live >= c.maxPerColumn {
			continue
		}

		for slot < len(c.droplets) && c.droplets[slot].State() != droplet.Inactive {
			slot++
		}
		if slot == len(c.droplets) {
			break
		}

		d := &c.droplets[slot]
		c.fill(d, col)
		d.Activate(now)

		cs.canSpawn = false
		cs.live++
		c.stats.Spawned++
	}
}

// fill rolls the lifecycle parameters of a droplet bound to col.
func (c *Cloud) fill(d *droplet.Droplet, col int) {
	maxLine := max(c.lines-2, 0)

	stop := c.lines - 1
	if c.rng.Float64() <= c.dieEarlyPct {
		stop = c.rng.Intn(maxLine + 1)
	}
	offset := c.rng.Intn(charPoolSize)

	length := c.lines
	if c.rng.Float64() <= c.shortPct {
		length = 1 + c.rng.Intn(max(maxLine, 1))
	}

	// Lingering only makes sense while the tail still trails above the
	// stop row.
	linger := time.Millisecond
	if stop <= length {
		linger = c.uniformDuration(c.lingerLow, c.lingerHigh)
	}

	speed := c.charsPerSec
	if cs := c.column(col); cs != nil {
		speed *= cs.speedPct
	}

	*d = droplet.Droplet{
		Col:         col,
		StopRow:     stop,
		Length:      length,
		CharsPerSec: speed,
		Linger:      linger,
		PoolOffset:  offset,
	}
}
