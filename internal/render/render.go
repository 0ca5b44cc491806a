// Package render writes frames to a terminal, sending only what changed
// since the previous draw.
package render

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"cosmorain/internal/frame"
)

const bufferSize = 64 * 1024

var (
	sgrReset    = []byte("\x1b[0m")
	clearScreen = []byte("\x1b[2J")
)

// wideTail marks the snapshot column under the right half of a wide glyph.
// It never equals a frame cell.
var wideTail = frame.Cell{Glyph: -1}

// Stats counts draws by kind.
type Stats struct {
	Full  uint64
	Delta uint64
	Skip  uint64
}

// Renderer keeps a snapshot of what the terminal shows and diffs each frame
// against it. It is not safe for concurrent use.
type Renderer struct {
	w *bufio.Writer

	front         []frame.Cell
	width, height int
	valid         bool

	cursorX, cursorY int
	cursorValid      bool

	lastFg, lastBg termenv.Color
	lastBold       bool
	styleValid     bool

	rows  [][]int
	seq   []byte
	stats Stats
}

// New creates a renderer writing to out.
func New(out io.Writer) *Renderer {
	return &Renderer{w: bufio.NewWriterSize(out, bufferSize)}
}

// Stats returns draw counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Invalidate drops the snapshot so the next draw repaints everything.
func (r *Renderer) Invalidate() {
	r.valid = false
}

// Draw sends f to the terminal. It does not reset the frame's dirty state.
func (r *Renderer) Draw(f *frame.Frame) error {
	w, h := f.Width(), f.Height()
	resized := !r.valid || w != r.width || h != r.height
	total := f.Len()

	switch {
	case resized:
		r.resize(w, h)
		r.w.Write(clearScreen)
		r.fullRender(f)
		r.stats.Full++
	case f.DirtyAll() || len(f.Dirty())*3 >= total && total > 0:
		r.fullRender(f)
		r.stats.Full++
	case len(f.Dirty()) > 0:
		r.deltaRender(f)
		r.stats.Delta++
	default:
		r.stats.Skip++
		return nil
	}

	r.w.Write(sgrReset)
	r.styleValid = false
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (r *Renderer) resize(w, h int) {
	size := w * h
	if cap(r.front) < size {
		r.front = make([]frame.Cell, size)
	} else {
		r.front = r.front[:size]
	}
	r.width, r.height = w, h
	r.valid = true
	r.cursorValid = false
	r.styleValid = false

	if cap(r.rows) < h {
		r.rows = make([][]int, h)
	} else {
		r.rows = r.rows[:h]
	}
}

// fullRender repaints the whole frame row by row.
func (r *Renderer) fullRender(f *frame.Frame) {
	for y := range r.height {
		r.moveTo(0, y)
		for x := 0; x < r.width; {
			x += r.put(f, y*r.width+x, x)
		}
	}
}

// deltaRender repaints the dirty cells that differ from the snapshot.
// Adjacent changed cells on a row share one cursor move, and the style is
// only re-sent when it differs from the previous cell.
func (r *Renderer) deltaRender(f *frame.Frame) {
	for y := range r.rows {
		r.rows[y] = r.rows[y][:0]
	}
	for _, i := range f.Dirty() {
		if i < 0 || i >= len(r.front) {
			continue
		}
		y := i / r.width
		r.rows[y] = append(r.rows[y], i)
	}

	for y, row := range r.rows {
		if len(row) == 0 {
			continue
		}
		slices.Sort(row)
		rowStart := y * r.width
		covered := -1
		for _, i := range row {
			// The wide glyph to the left still owns this column.
			if i <= covered || r.front[i] == wideTail || f.At(i) == r.front[i] {
				continue
			}
			x := i - rowStart
			r.moveTo(x, y)
			n := r.put(f, i, x)
			// A narrow glyph over a wide one erases its right half too.
			if n == 1 && x+1 < r.width && r.front[i+1] == wideTail {
				n += r.put(f, i+1, x+1)
			}
			covered = i + n - 1
		}
	}
}

// put writes the cell at index i (column x) and updates the snapshot. It
// returns the number of columns consumed.
func (r *Renderer) put(f *frame.Frame, i, x int) int {
	c := f.At(i)
	r.style(c)

	g := c.Glyph
	if g == 0 {
		g = ' '
	}
	if g < 0x80 {
		r.w.WriteByte(byte(g))
	} else {
		r.w.WriteRune(g)
	}
	r.front[i] = c
	r.cursorX++

	// A wide glyph covers the next column too.
	if x+1 < r.width && runewidth.RuneWidth(g) == 2 {
		r.front[i+1] = wideTail
		r.cursorX++
		return 2
	}
	return 1
}

func (r *Renderer) moveTo(x, y int) {
	if r.cursorValid && r.cursorX == x && r.cursorY == y {
		return
	}
	r.seq = append(r.seq[:0], "\x1b["...)
	r.seq = strconv.AppendInt(r.seq, int64(y+1), 10)
	r.seq = append(r.seq, ';')
	r.seq = strconv.AppendInt(r.seq, int64(x+1), 10)
	r.seq = append(r.seq, 'H')
	r.w.Write(r.seq)
	r.cursorX, r.cursorY = x, y
	r.cursorValid = true
}

// style emits one combined SGR sequence when the cell style differs from
// the last one written.
func (r *Renderer) style(c frame.Cell) {
	if r.styleValid && c.Fg == r.lastFg && c.Bg == r.lastBg && c.Bold == r.lastBold {
		return
	}
	r.seq = append(r.seq[:0], "\x1b["...)
	if c.Bold {
		r.seq = append(r.seq, '1')
	} else {
		r.seq = append(r.seq, "22"...)
	}
	r.seq = append(r.seq, ';')
	r.seq = appendColor(r.seq, c.Fg, false)
	r.seq = append(r.seq, ';')
	r.seq = appendColor(r.seq, c.Bg, true)
	r.seq = append(r.seq, 'm')
	r.w.Write(r.seq)

	r.lastFg, r.lastBg, r.lastBold = c.Fg, c.Bg, c.Bold
	r.styleValid = true
}

func appendColor(b []byte, c termenv.Color, bg bool) []byte {
	if c != nil {
		if s := c.Sequence(bg); s != "" {
			return append(b, s...)
		}
	}
	if bg {
		return append(b, "49"...)
	}
	return append(b, "39"...)
}
