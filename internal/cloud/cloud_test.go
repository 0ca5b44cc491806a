package cloud

import (
	"math/rand"
	"testing"
	"time"

	"github.com/muesli/termenv"
	. "github.com/onsi/gomega"

	"cosmorain/internal/droplet"
	"cosmorain/internal/frame"
	"cosmorain/internal/palette"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestCloud(cols, lines int, seed int64) (*Cloud, *frame.Frame) {
	c := New(Options{Mode: palette.TrueColor, Scheme: palette.Green, Bold: BoldRandom}, rand.New(rand.NewSource(seed)), epoch)
	c.InitChars([]rune("01"))
	c.Reset(cols, lines, epoch)
	return c, frame.New(cols, lines, c.Palette().BG)
}

func ms(n int) time.Time { return epoch.Add(time.Duration(n) * time.Millisecond) }

func TestRainIsDeterministicForEqualSeed(t *testing.T) {
	g := NewWithT(t)
	a, fa := newTestCloud(30, 12, 42)
	b, fb := newTestCloud(30, 12, 42)

	for i := 1; i <= 90; i++ {
		now := ms(i * 16)
		a.Rain(fa, now)
		b.Rain(fb, now)
	}

	g.Expect(a.Stats()).To(Equal(b.Stats()))
	g.Expect(a.Stats().Spawned).To(BeNumerically(">", 0))
	for i := 0; i < fa.Len(); i++ {
		g.Expect(fa.At(i)).To(Equal(fb.At(i)), "cell %d", i)
	}
}

func TestSpawnAttemptsMatchBudget(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(40, 20, 7)
	// 40 cols * density 1 / (20 lines / 8 cps) = 16 droplets per second.
	g.Expect(c.DropletsPerSec()).To(BeNumerically("~", 16, 1e-9))

	for i := 1; i <= 40; i++ {
		c.Rain(f, ms(i*50))
	}

	expected := 2.0 * 16
	g.Expect(float64(c.Stats().Attempts)).To(BeNumerically("~", expected, 1))
	g.Expect(c.Stats().Spawned).To(BeNumerically("<=", c.Stats().Attempts))
}

func TestTinyGridDoesNotFail(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(1, 1, 1)
	c.SetMessage("hello")

	g.Expect(c.Droplets()).To(HaveLen(2))
	g.Expect(c.MessageCells()).To(BeZero())
	for i := 1; i <= 200; i++ {
		c.Rain(f, ms(i*20))
	}
	cell, ok := f.Get(0, 0)
	g.Expect(ok).To(BeTrue())
	g.Expect(cell.Bg).To(Equal(c.Palette().BG))
}

func TestZeroAreaTickIsNoop(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(0, 0, 1)
	f.ClearDirty()

	c.Rain(f, ms(500))

	g.Expect(c.Droplets()).To(BeEmpty())
	g.Expect(c.DropletsPerSec()).To(BeZero())
	g.Expect(f.HasChanges()).To(BeFalse())
}

func TestTailNeverPassesHeadWhileRaining(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(20, 15, 3)
	c.SetDensity(5)
	c.SetSpeed(30)

	for i := 1; i <= 300; i++ {
		c.Rain(f, ms(i*16))
		for _, d := range c.Droplets() {
			if !d.Alive() {
				g.Expect(d.State()).To(Equal(droplet.Inactive))
				continue
			}
			g.Expect(d.Tail()).To(BeNumerically("<=", d.Head()))
		}
	}
}

func TestMaxPerColumnIsRespected(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(3, 30, 9)
	c.SetDensity(5)
	c.SetSpeed(40)
	c.SetMaxPerColumn(1)

	for i := 1; i <= 200; i++ {
		c.Rain(f, ms(i*16))
		perCol := make(map[int]int)
		for _, d := range c.Droplets() {
			if d.Alive() {
				perCol[d.Col]++
			}
		}
		for col := range 3 {
			g.Expect(perCol[col]).To(BeNumerically("<=", 1))
			g.Expect(c.LiveInColumn(col)).To(Equal(perCol[col]))
		}
	}
}

func TestSimDeltaCapBoundsHeadAdvance(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(4, 20, 11)
	c.SetDensity(5)
	c.SetGlitchy(false)
	c.Rain(f, ms(500))

	heads := make(map[int]int)
	for i, d := range c.Droplets() {
		if d.Alive() {
			heads[i] = d.Head()
		}
	}
	g.Expect(heads).NotTo(BeEmpty())

	// Pressure pinned at 1 with a 60 fps period.
	limit := 8333 * time.Microsecond
	c.SetPerfPressure(1)
	c.SetMaxSimDelta(limit)
	c.Rain(f, ms(1500))

	maxAdvance := limit.Seconds()*c.Speed() + 1
	for i, before := range heads {
		d := c.Droplets()[i]
		g.Expect(float64(d.Head() - before)).To(BeNumerically("<=", maxAdvance))
	}
}

func TestPressureClamps(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(4, 4, 1)

	c.SetPerfPressure(3)
	g.Expect(c.Pressure()).To(Equal(1.0))
	c.SetPerfPressure(-1)
	g.Expect(c.Pressure()).To(BeZero())
}

func TestGlitchEnvelopeOnSingleCell(t *testing.T) {
	g := NewWithT(t)
	c := New(Options{Mode: palette.TrueColor, Scheme: palette.Green}, rand.New(rand.NewSource(5)), epoch)
	c.InitChars([]rune("01"))
	c.SetGlitchPct(1)
	c.SetGlitchTimes(400*time.Millisecond, 400*time.Millisecond)
	c.Reset(1, 1, epoch)

	last, next := c.GlitchWindow()
	g.Expect(last).To(Equal(epoch))
	g.Expect(next).To(Equal(ms(400)))
	g.Expect(c.Glitched(0, 0)).To(BeTrue())
	g.Expect(c.Glitched(1, 0)).To(BeFalse())
	g.Expect(c.Glitched(0, 5)).To(BeFalse())

	g.Expect(c.GlitchPhase(ms(50))).To(Equal(PhaseBright))
	g.Expect(c.GlitchPhase(ms(200))).To(Equal(PhaseNeutral))
	g.Expect(c.GlitchPhase(ms(350))).To(Equal(PhaseDim))
	g.Expect(c.GlitchPhase(ms(450))).To(Equal(PhaseDim))
	g.Expect(c.GlitchPhase(epoch.Add(-time.Millisecond))).To(Equal(PhaseNeutral))
}

func TestGlitchWindowRerollsWhenDue(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(8, 8, 2)
	c.SetGlitchTimes(300*time.Millisecond, 300*time.Millisecond)
	c.Reset(8, 8, epoch)

	c.Rain(f, ms(100))
	_, next := c.GlitchWindow()
	g.Expect(next).To(Equal(ms(300)))

	c.Rain(f, ms(300))
	last, next := c.GlitchWindow()
	g.Expect(last).To(Equal(ms(300)))
	g.Expect(next).To(Equal(ms(600)))
}

func TestDisabledGlitchesClearMap(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(4, 4, 1)
	c.SetGlitchPct(1)
	g.Expect(c.Glitched(0, 0)).To(BeTrue())

	c.SetGlitchy(false)
	g.Expect(c.Glitchy()).To(BeFalse())
	g.Expect(c.Glitched(0, 0)).To(BeFalse())
}

func TestPausedTickLeavesFrameUntouched(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(20, 10, 4)
	c.SetDensity(5)
	c.Rain(f, ms(500))
	f.ClearDirty()

	c.TogglePause(ms(500))
	g.Expect(c.Paused()).To(BeTrue())
	c.Rain(f, ms(900))
	g.Expect(f.HasChanges()).To(BeFalse())
}

func TestResumeShiftsDroplets(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(20, 10, 4)
	c.SetDensity(5)
	c.Rain(f, ms(500))

	updates := make(map[int]time.Time)
	for i, d := range c.Droplets() {
		if d.Alive() {
			updates[i] = d.LastUpdate()
		}
	}
	g.Expect(updates).NotTo(BeEmpty())

	c.TogglePause(ms(500))
	c.TogglePause(ms(2500))
	g.Expect(c.Paused()).To(BeFalse())
	for i, before := range updates {
		g.Expect(c.Droplets()[i].LastUpdate()).To(Equal(before.Add(2 * time.Second)))
	}
}

func TestMessageBoxLayout(t *testing.T) {
	tests := []struct {
		name     string
		border   bool
		cells    int
		corner   [2]int
		cornerCh rune
	}{
		{name: "bordered", border: true, cells: 8 * 5, corner: [2]int{16, 3}, cornerCh: '+'},
		{name: "plain", border: false, cells: 6 * 3, corner: [2]int{17, 4}, cornerCh: ' '},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			c, f := newTestCloud(40, 10, 1)
			c.SetDensity(0)
			c.SetMessageBorder(tt.border)
			c.SetMessage("hi")
			g.Expect(c.MessageCells()).To(Equal(tt.cells))

			c.Rain(f, ms(16))

			corner, _ := f.Get(tt.corner[0], tt.corner[1])
			g.Expect(corner.Glyph).To(Equal(tt.cornerCh))
			h, _ := f.Get(19, 5)
			i, _ := f.Get(20, 5)
			g.Expect(h.Glyph).To(Equal('h'))
			g.Expect(i.Glyph).To(Equal('i'))
			g.Expect(h.Fg).To(Equal(c.Palette().Last()))
			g.Expect(h.Bold).To(BeTrue())
		})
	}
}

func TestMessageSuppressedOnSmallGrid(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(5, 3, 1)
	c.SetMessage("hello")
	g.Expect(c.MessageCells()).To(BeZero())

	c.Reset(40, 10, epoch)
	g.Expect(c.MessageCells()).To(BeNumerically(">", 0))

	c.ClearMessage()
	g.Expect(c.MessageCells()).To(BeZero())
}

func TestMessageWrapsAndClips(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(12, 7, 1)
	// 12 - 2 - 4 = 6 glyphs per line, 7 - 2 - 2 = 3 lines.
	c.SetMessage("abcdefghijklmnop\nq\nr\ns")

	g.Expect(c.MessageCells()).To(Equal(12 * 7))
}

func TestEmptyCharsFallBackToBinary(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(4, 4, 1)
	c.InitChars(nil)

	for _, r := range c.charPool {
		g.Expect(r).To(BeElementOf('0', '1'))
	}
}

func TestSetSpeedRescalesLiveDroplets(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(10, 20, 6)
	c.SetDensity(5)
	c.Rain(f, ms(500))

	c.SetSpeed(20)
	for _, d := range c.Droplets() {
		if d.Alive() {
			g.Expect(d.CharsPerSec).To(Equal(20.0))
		}
	}

	c.SetAsync(true)
	for _, d := range c.Droplets() {
		if d.Alive() {
			g.Expect(d.CharsPerSec).To(BeNumerically(">=", minSpeedPct*20))
			g.Expect(d.CharsPerSec).To(BeNumerically("<=", 20))
		}
	}
}

func TestSetSchemeRebuildsPalette(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(4, 4, 1)
	before := c.Palette().Last()

	c.SetScheme(palette.Red)
	g.Expect(c.Scheme()).To(Equal(palette.Red))
	g.Expect(c.Palette().Last()).NotTo(Equal(before))
}

func TestColorRange(t *testing.T) {
	tests := []struct {
		n      int
		lo, hi int
	}{
		{0, 0, 0},
		{2, 0, 0},
		{3, 1, 1},
		{7, 1, 5},
	}
	for _, tt := range tests {
		lo, hi := colorRange(tt.n)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("colorRange(%d) = (%d, %d), want (%d, %d)", tt.n, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestAttr(t *testing.T) {
	colors := []termenv.Color{
		termenv.ANSI256Color(1), termenv.ANSI256Color(2), termenv.ANSI256Color(3),
		termenv.ANSI256Color(4), termenv.ANSI256Color(5),
	}
	base := shadeContext{
		cols:     4,
		bold:     BoldRandom,
		colors:   colors,
		colorMap: []uint8{2, 2, 2, 2},
	}

	tests := []struct {
		name   string
		mutate func(s *shadeContext)
		row    int
		loc    cellLoc
		fg     termenv.Color
		bold   bool
	}{
		{name: "head", loc: locHead, fg: colors[4], bold: true},
		{name: "tail", loc: locTail, fg: colors[0], bold: false},
		{name: "middle uses color map", loc: locMiddle, fg: colors[2], bold: false},
		{name: "distance", mutate: func(s *shadeContext) { s.distance = true }, row: 5, loc: locMiddle, fg: colors[2], bold: true},
		{name: "bold off", mutate: func(s *shadeContext) { s.bold = BoldOff }, loc: locHead, fg: colors[4], bold: false},
		{name: "bold all", mutate: func(s *shadeContext) { s.bold = BoldAll }, loc: locTail, fg: colors[0], bold: true},
		{name: "mono", mutate: func(s *shadeContext) { s.mono = true }, loc: locHead, fg: nil, bold: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			s := base
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			// Glyph '0' is even, so random bold only fires on odd rows.
			fg, bold := s.attr(tt.row, 0, '0', tt.loc, epoch, 10, 10)
			if tt.fg == nil {
				g.Expect(fg).To(BeNil())
			} else {
				g.Expect(fg).To(Equal(tt.fg))
			}
			g.Expect(bold).To(Equal(tt.bold))
		})
	}
}

func TestAttrGlitchPhases(t *testing.T) {
	g := NewWithT(t)
	s := shadeContext{
		cols:      1,
		bold:      BoldRandom,
		glitchy:   true,
		window:    envelope{epoch, ms(400)},
		colors:    []termenv.Color{termenv.ANSI256Color(1), termenv.ANSI256Color(2), termenv.ANSI256Color(3), termenv.ANSI256Color(4)},
		colorMap:  []uint8{1},
		glitchMap: []bool{true},
	}

	fg, bold := s.attr(0, 0, '0', locMiddle, ms(50), 3, 3)
	g.Expect(fg).To(Equal(s.colors[2]))
	g.Expect(bold).To(BeTrue())

	fg, bold = s.attr(0, 0, '0', locMiddle, ms(350), 3, 3)
	g.Expect(fg).To(Equal(s.colors[0]))
	g.Expect(bold).To(BeFalse())
}

func TestSetBoldOverridesDrawnCells(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(20, 10, 3)
	c.SetDensity(5)
	c.SetBold(BoldAll)
	for i := 1; i <= 30; i++ {
		c.Rain(f, ms(i*33))
	}

	boldCells := func(want bool) int {
		n := 0
		for i := 0; i < f.Len(); i++ {
			cell := f.At(i)
			if cell.Glyph == ' ' {
				continue
			}
			g.Expect(cell.Bold).To(Equal(want), "cell %d", i)
			n++
		}
		return n
	}
	g.Expect(boldCells(true)).To(BeNumerically(">", 0))

	c.SetBold(BoldOff)
	c.Rain(f, ms(31*33))
	g.Expect(boldCells(false)).To(BeNumerically(">", 0))
}

func TestSpawnedColumnWaitsForTopToClear(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(1, 10, 1)
	c.SetDensity(5)
	g.Expect(c.CanSpawn(0)).To(BeTrue())
	g.Expect(c.CanSpawn(-1)).To(BeFalse())

	c.Rain(f, ms(1000))
	g.Expect(c.Stats().Spawned).To(Equal(uint64(1)))
	g.Expect(c.LiveInColumn(0)).To(Equal(1))
	g.Expect(c.CanSpawn(0)).To(BeFalse())
}

func TestResetRecyclesDropletPool(t *testing.T) {
	g := NewWithT(t)
	c, f := newTestCloud(20, 10, 3)
	for i := 1; i <= 30; i++ {
		c.Rain(f, ms(i*16))
	}
	first := &c.droplets[0]

	c.Reset(20, 10, ms(600))
	g.Expect(&c.droplets[0]).To(BeIdenticalTo(first))
	for i := range c.droplets {
		g.Expect(c.droplets[i].Alive()).To(BeFalse())
	}

	c.Reset(10, 10, ms(700))
	g.Expect(c.droplets).To(HaveLen(15))
	g.Expect(&c.droplets[0]).To(BeIdenticalTo(first))
}

func TestGlitchMapKeepsGridSizeWhenOff(t *testing.T) {
	g := NewWithT(t)
	c, _ := newTestCloud(8, 5, 1)

	c.SetGlitchy(false)
	g.Expect(c.glitchMap).To(HaveLen(40))
	g.Expect(c.glitchMap).NotTo(ContainElement(true))

	c.SetGlitchPct(1)
	c.SetGlitchy(true)
	g.Expect(c.glitchMap).To(HaveLen(40))
	g.Expect(c.glitchMap).NotTo(ContainElement(false))
}
