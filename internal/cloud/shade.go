package cloud

import (
	"math"
	"time"

	"github.com/muesli/termenv"

	"cosmorain/internal/droplet"
	"cosmorain/internal/frame"
	"cosmorain/internal/palette"
)

type cellLoc uint8

const (
	locMiddle cellLoc = iota
	locTail
	locHead
)

// shadeContext is the read-only view the draw phase works from.
type shadeContext struct {
	cols     int
	mono     bool
	distance bool
	bold     BoldMode
	glitchy  bool
	window   envelope

	colors    []termenv.Color
	bg        termenv.Color
	colorMap  []uint8
	glitchMap []bool
	pool      []rune
}

func (c *Cloud) shadeContext() shadeContext {
	return shadeContext{
		cols:      c.cols,
		mono:      c.opts.Mode == palette.Mono,
		distance:  c.opts.Shading == ShadeDistance,
		bold:      c.opts.Bold,
		glitchy:   c.glitchy,
		window:    envelope{c.lastGlitch, c.nextGlitch},
		colors:    c.palette.Colors,
		bg:        c.palette.BG,
		colorMap:  c.colorMap,
		glitchMap: c.glitchMap,
		pool:      c.charPool,
	}
}

func (s *shadeContext) glitched(row, col int) bool {
	return s.glitchy && lookup(s.glitchMap, s.cols, row, col)
}

func (s *shadeContext) baseIndex(row, col int) int {
	if row < 0 || col < 0 || col >= s.cols {
		return 0
	}
	i := row*s.cols + col
	if i >= len(s.colorMap) {
		return 0
	}
	return int(s.colorMap[i])
}

// attr picks the foreground and bold flag of one droplet cell.
func (s *shadeContext) attr(row, col int, glyph rune, loc cellLoc, now time.Time, head, length int) (termenv.Color, bool) {
	bold := false
	if s.bold == BoldRandom {
		bold = (uint32(row)^uint32(glyph))%2 == 1
	}

	idx := s.baseIndex(row, col)
	n := max(len(s.colors), 1)
	if s.distance {
		dist := float64(max(head-row, 0))
		span := float64(max(length, 1))
		top := float64(n - 1)
		idx = int(math.Round(top - dist/span*top))
	}

	if s.glitched(row, col) {
		switch s.window.phase(now) {
		case PhaseBright:
			idx++
			bold = true
		case PhaseDim:
			idx--
			bold = false
		}
	}

	last := max(len(s.colors)-1, 0)
	switch loc {
	case locTail:
		idx, bold = 0, false
	case locHead:
		idx, bold = last, true
	default:
		idx = min(max(idx, 0), last)
	}

	switch s.bold {
	case BoldOff:
		bold = false
	case BoldAll:
		bold = true
	}

	if s.mono || len(s.colors) == 0 {
		return nil, bold
	}
	return s.colors[idx], bold
}

// drawDroplet paints the droplet's visible span and blanks the rows it
// left behind. Without everything set only the rows whose look can change
// are repainted: the new tail row, the old head onwards and glitched cells.
func (c *Cloud) drawDroplet(f *frame.Frame, d *droplet.Droplet, s *shadeContext, now time.Time, everything bool) {
	blank := frame.Blank(s.bg)
	oldTop, oldBottom, drawn := d.Drawn()

	top, bottom, visible := d.Span()
	if !visible {
		if drawn {
			for row := oldTop; row <= oldBottom; row++ {
				f.Set(d.Col, row, blank)
			}
		}
		d.ForgetDrawn()
		return
	}

	if drawn {
		for row := oldTop; row <= min(oldBottom, top-1); row++ {
			f.Set(d.Col, row, blank)
		}
		for row := max(oldTop, bottom+1); row <= oldBottom; row++ {
			f.Set(d.Col, row, blank)
		}
	}

	full := everything || s.distance || !drawn
	tailEntered := d.TailEntered()
	for row := top; row <= bottom; row++ {
		loc := locMiddle
		switch {
		case row == bottom:
			loc = locHead
		case row == top && tailEntered:
			loc = locTail
		}
		if !full && loc == locMiddle && row < oldBottom && !s.glitched(row, d.Col) {
			continue
		}

		glyph := d.Glyph(s.pool, row)
		fg, bold := s.attr(row, d.Col, glyph, loc, now, bottom, d.Length)
		f.Set(d.Col, row, frame.Cell{Glyph: glyph, Fg: fg, Bg: s.bg, Bold: bold})
	}
	d.MarkDrawn(top, bottom)
}
