package droplet

import (
	"math"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return epoch.Add(time.Duration(math.Round(sec * float64(time.Second))))
}

func TestScenarioFullColumnDroplet(t *testing.T) {
	g := NewWithT(t)
	d := &Droplet{Col: 0, StopRow: 9, Length: 10, CharsPerSec: 8}
	d.Activate(epoch)

	d.Advance(at(1.0))
	g.Expect(d.State()).To(Equal(Falling))
	g.Expect(d.Head()).To(Equal(8))

	free := d.Advance(at(9.0 / 8.0))
	g.Expect(free).To(BeFalse())
	g.Expect(d.Head()).To(Equal(9))
	g.Expect(d.State()).To(Equal(Lingering))

	// Head holds at the stop row.
	d.Advance(at(2.0))
	g.Expect(d.Head()).To(Equal(9))
	g.Expect(d.Alive()).To(BeTrue())

	free = d.Advance(at(19.0 / 8.0))
	g.Expect(free).To(BeTrue())
	g.Expect(d.State()).To(Equal(Dead))
	g.Expect(d.Alive()).To(BeFalse())
}

func TestTailNeverPassesHead(t *testing.T) {
	cases := []struct {
		name   string
		stop   int
		length int
		cps    float64
		linger time.Duration
	}{
		{"short streak", 20, 3, 10, 0},
		{"long streak", 5, 30, 7, 50 * time.Millisecond},
		{"single row", 0, 1, 3, 0},
		{"fast", 40, 12, 200, time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewWithT(t)
			d := &Droplet{StopRow: tc.stop, Length: tc.length, CharsPerSec: tc.cps, Linger: tc.linger}
			d.Activate(epoch)

			prevTail := d.Tail()
			for step := 1; step < 2000 && d.Alive(); step++ {
				d.Advance(epoch.Add(time.Duration(step) * 7 * time.Millisecond))
				if !d.Alive() {
					break
				}
				g.Expect(d.Tail()).To(BeNumerically("<=", d.Head()))
				g.Expect(d.Tail()).To(BeNumerically(">=", prevTail))
				prevTail = d.Tail()
			}
			g.Expect(d.State()).To(Equal(Dead))
		})
	}
}

func TestAdvanceIgnoresTimeGoingBackwards(t *testing.T) {
	g := NewWithT(t)
	d := &Droplet{StopRow: 9, Length: 4, CharsPerSec: 8}
	d.Activate(epoch)
	d.Advance(at(0.5))
	head := d.Head()

	g.Expect(d.Advance(at(0.25))).To(BeFalse())
	g.Expect(d.Head()).To(Equal(head))
	g.Expect(d.LastUpdate()).To(Equal(at(0.5)))
}

func TestFreeColumnWhenTailClearsTopRow(t *testing.T) {
	g := NewWithT(t)
	d := &Droplet{StopRow: 30, Length: 4, CharsPerSec: 10}
	d.Activate(epoch)

	g.Expect(d.Advance(at(0.3))).To(BeFalse())
	g.Expect(d.Advance(at(0.45))).To(BeTrue())
	g.Expect(d.Advance(at(0.6))).To(BeFalse())
	g.Expect(d.Alive()).To(BeTrue())
}

func TestLingerHoldsTail(t *testing.T) {
	g := NewWithT(t)
	d := &Droplet{StopRow: 4, Length: 10, CharsPerSec: 10, Linger: time.Second}
	d.Activate(epoch)

	d.Advance(at(0.4))
	g.Expect(d.State()).To(Equal(Lingering))
	top, bottom, ok := d.Span()
	g.Expect(ok).To(BeTrue())
	g.Expect(top).To(Equal(0))
	g.Expect(bottom).To(Equal(4))

	d.Advance(at(1.3))
	top, _, _ = d.Span()
	g.Expect(top).To(Equal(0))

	// Linger ends at 1.4s; tail starts at -6 and needs 1s to reach row 4.
	d.Advance(at(2.3))
	g.Expect(d.Alive()).To(BeTrue())
	g.Expect(d.Advance(at(2.45))).To(BeTrue())
	g.Expect(d.State()).To(Equal(Dead))
}

func TestShiftSkipsPausedTime(t *testing.T) {
	g := NewWithT(t)
	d := &Droplet{StopRow: 20, Length: 5, CharsPerSec: 10}
	d.Activate(epoch)
	d.Advance(at(0.5))

	d.Shift(10 * time.Second)
	d.Advance(at(10.6))

	g.Expect(d.Head()).To(Equal(6))
	g.Expect(d.Activated()).To(Equal(at(10)))
}

func TestGlyphWrapsPool(t *testing.T) {
	g := NewWithT(t)
	pool := []rune("abc")
	d := &Droplet{PoolOffset: 2}

	g.Expect(d.Glyph(pool, 0)).To(Equal('c'))
	g.Expect(d.Glyph(pool, 1)).To(Equal('a'))
	g.Expect(d.Glyph(nil, 1)).To(Equal(' '))
}

func TestDrawnBookkeeping(t *testing.T) {
	g := NewWithT(t)
	d := &Droplet{}

	_, _, ok := d.Drawn()
	g.Expect(ok).To(BeFalse())

	d.MarkDrawn(2, 5)
	top, bottom, ok := d.Drawn()
	g.Expect(ok).To(BeTrue())
	g.Expect([]int{top, bottom}).To(Equal([]int{2, 5}))

	d.ForgetDrawn()
	_, _, ok = d.Drawn()
	g.Expect(ok).To(BeFalse())

	d.Recycle()
	g.Expect(d.State()).To(Equal(Inactive))
}
