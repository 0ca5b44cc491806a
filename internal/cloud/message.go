package cloud

import (
	"strings"

	"github.com/rivo/uniseg"

	"cosmorain/internal/frame"
	"cosmorain/internal/palette"
)

const (
	messagePadX = 2
	messagePadY = 1
)

// SetMessage sets the overlay text. Lines split on '\n'.
func (c *Cloud) SetMessage(text string) {
	c.messageText = text
	c.hasMessage = true
	c.layoutMessage()
	c.forceDraw = true
}

// ClearMessage removes the overlay.
func (c *Cloud) ClearMessage() {
	c.messageText = ""
	c.hasMessage = false
	c.message = c.message[:0]
	c.forceDraw = true
}

// SetMessageBorder toggles the +-| border around the message box.
func (c *Cloud) SetMessageBorder(on bool) {
	c.messageBorder = on
	if c.hasMessage {
		c.layoutMessage()
		c.forceDraw = true
	}
}

// MessageCells returns the number of cells the overlay covers. Zero means
// the box is suppressed or unset.
func (c *Cloud) MessageCells() int { return len(c.message) }

// glyphs splits a line into one rune per grapheme cluster so combining
// sequences take a single cell.
func glyphs(line string) []rune {
	var out []rune
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		if rs := g.Runes(); len(rs) > 0 {
			out = append(out, rs[0])
		}
	}
	return out
}

// layoutMessage computes the cells of the centered message box. Content is
// hard wrapped to the available width and clipped to the available height.
// A grid smaller than an empty box suppresses the overlay.
func (c *Cloud) layoutMessage() {
	c.message = c.message[:0]
	if !c.hasMessage {
		return
	}

	border := 0
	if c.messageBorder {
		border = 1
	}
	minW := max(2*border+2*messagePadX, 1)
	minH := max(2*border+2*messagePadY, 1)
	if c.cols < minW || c.lines < minH {
		return
	}
	maxW := max(c.cols-2*border-2*messagePadX, 1)
	maxH := max(c.lines-2*border-2*messagePadY, 1)

	var content [][]rune
	for _, raw := range strings.Split(c.messageText, "\n") {
		if len(content) >= maxH {
			break
		}
		line := glyphs(raw)
		if len(line) == 0 {
			content = append(content, nil)
			continue
		}
		for len(line) > 0 && len(content) < maxH {
			n := min(len(line), maxW)
			content = append(content, line[:n])
			line = line[n:]
		}
	}
	if len(content) == 0 {
		content = append(content, nil)
	}

	contentW := 1
	for _, l := range content {
		contentW = max(contentW, len(l))
	}
	contentH := len(content)

	boxW := contentW + 2*border + 2*messagePadX
	boxH := contentH + 2*border + 2*messagePadY
	startCol := c.cols/2 - boxW/2
	startRow := c.lines/2 - boxH/2
	innerX := border + messagePadX
	innerY := border + messagePadY

	for y := range boxH {
		row := startRow + y
		if row < 0 || row >= c.lines {
			continue
		}
		for x := range boxW {
			col := startCol + x
			if col < 0 || col >= c.cols {
				continue
			}

			ch := ' '
			if border == 1 {
				edgeY := y == 0 || y == boxH-1
				edgeX := x == 0 || x == boxW-1
				switch {
				case edgeY && edgeX:
					ch = '+'
				case edgeY:
					ch = '-'
				case edgeX:
					ch = '|'
				}
			}

			if y >= innerY && y < innerY+contentH && x >= innerX && x < innerX+contentW {
				line := content[y-innerY]
				pad := (contentW - len(line)) / 2
				if ix := x - innerX; ix >= pad && ix < pad+len(line) {
					ch = line[ix-pad]
				}
			}

			c.message = append(c.message, msgCell{row: row, col: col, glyph: ch})
		}
	}
}

// drawMessage blits the overlay over the rain.
func (c *Cloud) drawMessage(f *frame.Frame) {
	fg := c.palette.Last()
	if c.opts.Mode == palette.Mono {
		fg = nil
	}
	for _, m := range c.message {
		cell := frame.Cell{Glyph: m.glyph, Bg: c.palette.BG}
		if m.glyph != ' ' {
			cell.Fg = fg
			cell.Bold = c.opts.Bold != BoldOff
		}
		f.Set(m.col, m.row, cell)
	}
}
