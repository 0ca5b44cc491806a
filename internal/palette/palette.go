// Package palette builds the ordered color ramps the rain is shaded with.
package palette

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

var (
	ErrUnknownScheme = errors.New("unknown color scheme")
	ErrUnknownMode   = errors.New("unknown color mode")
)

// === COLOR MODE ===

// Mode is the color depth the terminal is driven with.
type Mode uint8

const (
	Mono Mode = iota
	Color16
	Color256
	TrueColor
)

// String returns a human readable label for the mode.
func (m Mode) String() string {
	switch m {
	case TrueColor:
		return "24-bit truecolor"
	case Color256:
		return "8-bit (256-color)"
	case Color16:
		return "16-color"
	}
	return "mono"
}

// Profile maps the mode to the matching termenv profile.
func (m Mode) Profile() termenv.Profile {
	switch m {
	case TrueColor:
		return termenv.TrueColor
	case Color256:
		return termenv.ANSI256
	case Color16:
		return termenv.ANSI
	}
	return termenv.Ascii
}

// ParseMode converts a --colormode value. 8 is an alias for 256 and 32 for 24.
func ParseMode(n int) (Mode, error) {
	switch n {
	case 0:
		return Mono, nil
	case 16:
		return Color16, nil
	case 8, 256:
		return Color256, nil
	case 24, 32:
		return TrueColor, nil
	}
	return Mono, fmt.Errorf("%w: %d (allowed: 0,16,8/256,24/32)", ErrUnknownMode, n)
}

// Detect picks a mode from the environment. COLORTERM and TERM are checked
// first; termenv's profile detection covers the rest.
func Detect() Mode {
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		return TrueColor
	}
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case term == "dumb":
		return Mono
	case strings.Contains(term, "-truecolor"):
		return TrueColor
	case strings.Contains(term, "256color"):
		return Color256
	}
	switch termenv.EnvColorProfile() {
	case termenv.TrueColor:
		return TrueColor
	case termenv.ANSI256:
		return Color256
	}
	return Color16
}

// === PALETTE ===

// Palette is an ordered dark to bright color ramp plus the background.
// A nil color means the terminal default.
type Palette struct {
	Colors []termenv.Color
	BG     termenv.Color
}

// Last returns the brightest color, or nil for an empty palette.
func (p Palette) Last() termenv.Color {
	if len(p.Colors) == 0 {
		return nil
	}
	return p.Colors[len(p.Colors)-1]
}

// Build resolves scheme into a palette for mode. defaultBG leaves the
// background to the terminal.
func Build(scheme Scheme, mode Mode, defaultBG bool) Palette {
	p := Palette{Colors: schemeColors(scheme, mode)}
	if len(p.Colors) == 0 {
		p.Colors = []termenv.Color{termenv.ANSIBrightWhite}
	}
	if !defaultBG {
		switch mode {
		case Color16:
			p.BG = termenv.ANSIBlack
		case TrueColor:
			p.BG = termenv.RGBColor("#000000")
		default:
			p.BG = termenv.ANSI256Color(16)
		}
	}
	return p
}

func schemeColors(scheme Scheme, mode Mode) []termenv.Color {
	if mode == Mono {
		return []termenv.Color{termenv.ANSIBrightWhite}
	}
	def, ok := schemes[scheme]
	if !ok {
		def = schemes[Green]
	}
	if len(def.stops) > 0 {
		return convert(mode, gradient(def.stops, def.steps))
	}
	if mode == Color16 {
		out := make([]termenv.Color, len(def.ansi16))
		for i, c := range def.ansi16 {
			out[i] = c
		}
		return out
	}
	if mode == TrueColor && len(def.rgb) > 0 {
		return convert(mode, def.rgb)
	}
	out := make([]termenv.Color, len(def.ansi256))
	for i, c := range def.ansi256 {
		out[i] = termenv.ANSI256Color(c)
	}
	return out
}

// gradient interpolates steps colors evenly across the stops.
func gradient(stops []string, steps int) []string {
	if steps <= 0 || len(stops) == 0 {
		return nil
	}
	cs := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			c = colorful.Color{}
		}
		cs[i] = c
	}
	if len(cs) == 1 || steps == 1 {
		out := make([]string, steps)
		for i := range out {
			out[i] = cs[0].Hex()
		}
		return out
	}

	segs := len(cs) - 1
	out := make([]string, steps)
	for i := range out {
		pos := float64(i) / float64(steps-1) * float64(segs)
		seg := int(pos)
		if seg >= segs {
			seg = segs - 1
		}
		out[i] = cs[seg].BlendRgb(cs[seg+1], pos-float64(seg)).Clamped().Hex()
	}
	return out
}

// convert maps hex colors onto the nearest color mode supports.
func convert(mode Mode, hex []string) []termenv.Color {
	profile := mode.Profile()
	out := make([]termenv.Color, len(hex))
	for i, h := range hex {
		out[i] = profile.Convert(termenv.RGBColor(h))
	}
	return out
}
