// Package frame holds the in-memory screen state the simulation draws into
// and the renderer drains.
package frame

import "github.com/muesli/termenv"

// Cell is a single character cell. A nil color means the terminal default.
type Cell struct {
	Glyph rune
	Fg    termenv.Color
	Bg    termenv.Color
	Bold  bool
}

// Blank returns an empty cell on the given background.
func Blank(bg termenv.Color) Cell {
	return Cell{Glyph: ' ', Bg: bg}
}

// Frame is a width x height grid of cells with dirty tracking.
//
// Cells carry a generation stamp; a cell whose stamp is older than the
// frame's generation reads back as the blank cell. Clear therefore never
// touches cell memory.
type Frame struct {
	width, height int

	cells   []Cell
	cellGen []uint32
	gen     uint32
	blank   Cell

	dirtyAll bool
	dirtyMap []bool
	dirty    []int
}

// New creates a frame with every cell blank on bg. A new frame is
// entirely dirty.
func New(width, height int, bg termenv.Color) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	size := width * height
	f := &Frame{
		width:    width,
		height:   height,
		cells:    make([]Cell, size),
		cellGen:  make([]uint32, size),
		gen:      1,
		blank:    Blank(bg),
		dirtyAll: true,
		dirtyMap: make([]bool, size),
	}
	return f
}

// Width returns the number of columns.
func (f *Frame) Width() int { return f.width }

// Height returns the number of rows.
func (f *Frame) Height() int { return f.height }

// Len returns the number of cells.
func (f *Frame) Len() int { return f.width * f.height }

// BlankCell returns the cell unset positions read back as.
func (f *Frame) BlankCell() Cell { return f.blank }

// Clear makes every cell read back as blank on bg and marks the whole
// frame dirty.
func (f *Frame) Clear(bg termenv.Color) {
	f.blank = Blank(bg)
	f.gen++
	if f.gen == 0 {
		// Wrapped: old stamps could alias the new generation.
		for i := range f.cellGen {
			f.cellGen[i] = 0
		}
		f.gen = 1
	}
	f.dirtyAll = true
	f.dirty = f.dirty[:0]
}

// Index converts a position to a row-major cell index.
func (f *Frame) Index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, false
	}
	return y*f.width + x, true
}

// At returns the effective cell at index i. Out of range indexes read as
// blank.
func (f *Frame) At(i int) Cell {
	if i < 0 || i >= len(f.cells) || f.cellGen[i] != f.gen {
		return f.blank
	}
	return f.cells[i]
}

// Get returns the effective cell at (x, y).
func (f *Frame) Get(x, y int) (Cell, bool) {
	i, ok := f.Index(x, y)
	if !ok {
		return Cell{}, false
	}
	return f.At(i), true
}

// Set stores c at (x, y). Writing the value a cell already holds is a
// no-op and does not mark it dirty.
func (f *Frame) Set(x, y int, c Cell) {
	i, ok := f.Index(x, y)
	if !ok {
		return
	}
	if f.At(i) == c {
		return
	}
	f.cells[i] = c
	f.cellGen[i] = f.gen
	if !f.dirtyAll && !f.dirtyMap[i] {
		f.dirtyMap[i] = true
		f.dirty = append(f.dirty, i)
	}
}

// DirtyAll reports whether the whole frame must be redrawn.
func (f *Frame) DirtyAll() bool { return f.dirtyAll }

// Dirty returns the indexes written since the last ClearDirty. The slice
// is owned by the frame and only valid until the next mutation.
func (f *Frame) Dirty() []int { return f.dirty }

// HasChanges reports whether anything needs to be drawn.
func (f *Frame) HasChanges() bool {
	return f.dirtyAll || len(f.dirty) > 0
}

// ClearDirty resets dirty tracking after a draw.
func (f *Frame) ClearDirty() {
	if f.dirtyAll {
		f.dirtyAll = false
		for i := range f.dirtyMap {
			f.dirtyMap[i] = false
		}
		f.dirty = f.dirty[:0]
		return
	}
	for _, i := range f.dirty {
		f.dirtyMap[i] = false
	}
	f.dirty = f.dirty[:0]
}
