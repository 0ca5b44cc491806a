// Package droplet implements a single falling character stream.
package droplet

import (
	"math"
	"time"
)

// State is the lifecycle stage of a droplet.
type State uint8

const (
	Inactive State = iota
	Falling
	Lingering
	Dead
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Falling:
		return "falling"
	case Lingering:
		return "lingering"
	case Dead:
		return "dead"
	}
	return "unknown"
}

// Droplet is one column-bound stream. The exported parameters are rolled
// by the owner before Activate and treated as read-only afterwards, except
// CharsPerSec which follows column speed changes.
type Droplet struct {
	Col         int           // Bound column
	StopRow     int           // Row where the head halts
	Length      int           // Streak length in rows
	CharsPerSec float64       // Rows advanced per second
	Linger      time.Duration // Head hold time before the tail may finish
	PoolOffset  int           // Offset into the shared glyph pool

	state      State
	activated  time.Time
	lastUpdate time.Time

	headTravel float64 // Rows travelled by the head, clamped to StopRow
	tailTravel float64 // headTravel - Length while falling, then frozen or advancing
	lingerLeft time.Duration
	topCleared bool

	drawn              bool
	drawnTop, drawnBot int
}

// State returns the current lifecycle stage.
func (d *Droplet) State() State { return d.state }

// Alive reports whether the droplet is Falling or Lingering.
func (d *Droplet) Alive() bool {
	return d.state == Falling || d.state == Lingering
}

// Activate starts the droplet at row 0.
func (d *Droplet) Activate(now time.Time) {
	d.state = Falling
	d.activated = now
	d.lastUpdate = now
	d.headTravel = 0
	d.tailTravel = -float64(d.Length)
	d.lingerLeft = 0
	d.topCleared = false
	d.drawn = false
	if d.StopRow < 0 {
		d.StopRow = 0
	}
	if d.Length < 1 {
		d.Length = 1
		d.tailTravel = -1
	}
}

// Recycle returns a dead droplet to the inactive pool.
func (d *Droplet) Recycle() {
	*d = Droplet{}
}

// Activated returns the activation timestamp.
func (d *Droplet) Activated() time.Time { return d.activated }

// LastUpdate returns the timestamp of the last Advance.
func (d *Droplet) LastUpdate() time.Time { return d.lastUpdate }

// Shift moves the droplet's timestamps forward by dt, used to skip time
// spent paused.
func (d *Droplet) Shift(dt time.Duration) {
	d.activated = d.activated.Add(dt)
	d.lastUpdate = d.lastUpdate.Add(dt)
}

// Advance moves the droplet to now. It reports whether the droplet's
// column became free to spawn into: on the step the tail first clears the
// top row, and on the step the droplet dies. A now earlier than the last
// update is a zero step.
func (d *Droplet) Advance(now time.Time) (freeCol bool) {
	if !d.Alive() {
		return false
	}
	dt := now.Sub(d.lastUpdate)
	if dt <= 0 {
		return false
	}
	d.lastUpdate = now

	stop := float64(d.StopRow)
	remaining := dt
	if d.state == Falling {
		d.headTravel += dt.Seconds() * d.CharsPerSec
		d.tailTravel = d.headTravel - float64(d.Length)
		remaining = 0
		if d.headTravel >= stop {
			excess := d.headTravel - stop
			d.headTravel = stop
			d.tailTravel = stop - float64(d.Length)
			d.state = Lingering
			d.lingerLeft = d.Linger
			if d.CharsPerSec > 0 {
				remaining = time.Duration(excess / d.CharsPerSec * float64(time.Second))
			}
		}
	}

	if d.state == Lingering && remaining > 0 {
		if d.lingerLeft > 0 {
			used := min(d.lingerLeft, remaining)
			d.lingerLeft -= used
			remaining -= used
		}
		if d.lingerLeft <= 0 {
			d.tailTravel += remaining.Seconds() * d.CharsPerSec
		}
	}

	if d.tailTravel >= 0 && !d.topCleared {
		d.topCleared = true
		freeCol = true
	}
	if d.state == Lingering && d.lingerLeft <= 0 && d.tailTravel >= stop {
		d.tailTravel = stop
		d.state = Dead
		freeCol = true
	}
	return freeCol
}

// Head returns the current head row.
func (d *Droplet) Head() int {
	return clampRow(d.headTravel, d.StopRow)
}

// Tail returns the current tail row, clamped to zero before the tail has
// entered the grid. The tail never passes the head.
func (d *Droplet) Tail() int {
	if d.tailTravel < 0 {
		return 0
	}
	return clampRow(d.tailTravel, d.Head())
}

// TailEntered reports whether the tail has entered the grid, making the
// top visible row the tail cell.
func (d *Droplet) TailEntered() bool { return d.tailTravel >= 0 }

// Span returns the rows currently visible, inclusive. ok is false when
// nothing is visible.
func (d *Droplet) Span() (top, bottom int, ok bool) {
	if !d.Alive() {
		return 0, 0, false
	}
	top = 0
	if d.tailTravel >= 0 {
		top = d.Tail() + 1
	}
	bottom = d.Head()
	if top > bottom {
		return 0, 0, false
	}
	return top, bottom, true
}

// Glyph returns the glyph shown at row, drawn from pool.
func (d *Droplet) Glyph(pool []rune, row int) rune {
	if len(pool) == 0 {
		return ' '
	}
	i := (d.PoolOffset + row) % len(pool)
	if i < 0 {
		i += len(pool)
	}
	return pool[i]
}

// Drawn returns the span last painted onto the frame.
func (d *Droplet) Drawn() (top, bottom int, ok bool) {
	return d.drawnTop, d.drawnBot, d.drawn
}

// MarkDrawn records the span now painted onto the frame.
func (d *Droplet) MarkDrawn(top, bottom int) {
	d.drawn = true
	d.drawnTop, d.drawnBot = top, bottom
}

// ForgetDrawn drops draw bookkeeping, used after the frame was cleared.
func (d *Droplet) ForgetDrawn() {
	d.drawn = false
}

func clampRow(travel float64, limit int) int {
	r := int(math.Floor(travel))
	if r < 0 {
		return 0
	}
	if r > limit {
		return limit
	}
	return r
}
