package app

import (
	"math"
	"time"

	"cosmorain/internal/charset"
	"cosmorain/internal/cloud"
	"cosmorain/internal/palette"
	"cosmorain/internal/term"
)

const (
	densityStep   = 0.25
	glitchPctStep = 0.05
	minSpeed      = 0.001
	maxSpeed      = 1000
)

// schemeKeys selects a scheme directly.
var schemeKeys = map[rune]palette.Scheme{
	'1': palette.Green,
	'2': palette.Green2,
	'3': palette.Green3,
	'4': palette.Gold,
	'5': palette.Neon,
	'6': palette.Red,
	'7': palette.Blue,
	'8': palette.Cyan,
	'9': palette.Purple,
	'0': palette.Gray,
	'!': palette.Rainbow,
	'@': palette.Yellow,
	'#': palette.Orange,
	'$': palette.Fire,
	'%': palette.Vaporwave,
}

// handleKey applies one keypress. In screensaver mode every key quits.
func (a *App) handleKey(ev term.Event, now time.Time) {
	if a.cfg.Screensaver {
		a.quit = true
		return
	}

	c := a.cloud
	switch ev.Key {
	case term.KeyEscape, term.KeyCtrlC:
		a.quit = true
	case term.KeyCtrlZ:
		a.log.Printf("suspend")
		a.term.Suspend()
	case term.KeyUp:
		s := c.Speed()
		if s <= 0.5 {
			s *= 2
		} else {
			s++
		}
		c.SetSpeed(math.Min(s, maxSpeed))
	case term.KeyDown:
		s := c.Speed()
		if s <= 1 {
			s /= 2
		} else {
			s--
		}
		c.SetSpeed(math.Max(s, minSpeed))
	case term.KeyLeft:
		if c.Glitchy() {
			c.SetGlitchPct(math.Max(c.GlitchPct()-glitchPctStep, 0))
		}
	case term.KeyRight:
		if c.Glitchy() {
			c.SetGlitchPct(math.Min(c.GlitchPct()+glitchPctStep, 1))
		}
	case term.KeyTab:
		if c.Shading() == cloud.ShadeDistance {
			c.SetShading(cloud.ShadeRandom)
		} else {
			c.SetShading(cloud.ShadeDistance)
		}
	case term.KeyRune:
		a.handleRune(ev.Rune, now)
	}
}

func (a *App) handleRune(r rune, now time.Time) {
	c := a.cloud
	if s, ok := schemeKeys[r]; ok {
		c.SetScheme(s)
		return
	}

	switch r {
	case 'q':
		a.quit = true
	case ' ':
		c.Reset(a.cols, a.lines, now)
		c.ForceRedraw()
		a.log.Printf("reset")
	case 'c':
		c.SetScheme(palette.Cycle(c.Scheme(), 1))
	case 'C':
		c.SetScheme(palette.Cycle(c.Scheme(), -1))
	case 's':
		a.cycleCharset(1)
	case 'S':
		a.cycleCharset(-1)
	case 'a':
		c.SetAsync(!c.Async())
	case 'g':
		c.SetGlitchy(!c.Glitchy())
	case 'p':
		c.TogglePause(now)
		a.pacer.SetPaused(c.Paused())
		a.pacer.Reset(now)
	case '-', '[', '_':
		a.adjustDensity(-densityStep)
	case '+', '=', ']':
		a.adjustDensity(densityStep)
	}
}

// adjustDensity steps the current density. A manual change ends auto
// density.
func (a *App) adjustDensity(delta float64) {
	d := clamp(a.cloud.Density()+delta, minDensity, maxDensity)
	a.cloud.SetDensity(d)
	a.baseDensity = d
	a.densityAuto = false
}

// cycleCharset switches to the neighbouring preset. Custom ranges are
// dropped so the preset shows on its own.
func (a *App) cycleCharset(dir int) {
	a.chars.name = charset.Cycle(a.chars.name, dir)
	a.chars.ranges = nil
	glyphs, err := a.chars.glyphs()
	if err != nil {
		a.log.Printf("charset %s: %v", a.chars.name, err)
		return
	}
	a.cloud.InitChars(glyphs)
	a.cloud.ForceRedraw()
}
