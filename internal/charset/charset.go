// Package charset resolves glyph presets and custom codepoint ranges into
// the rune list droplets draw from.
package charset

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

var (
	ErrUnknownCharset = errors.New("unsupported charset")
	ErrInvalidChars   = errors.New("invalid custom chars")
)

// Set is a bitmask of glyph groups.
type Set uint32

const (
	None        Set = 0
	Letters     Set = 0x1
	Digits      Set = 0x2
	Punctuation Set = 0x4
	Katakana    Set = 0x8
	Greek       Set = 0x10
	Cyrillic    Set = 0x20
	Hebrew      Set = 0x80
	Binary      Set = 0x100
	Hex         Set = 0x200
	Braille     Set = 0x800
	Runic       Set = 0x1000
	Symbols     Set = 0x2000
	Arrows      Set = 0x4000
	Blocks      Set = 0x8000
	BoxDraw     Set = 0x10000
	Minimal     Set = 0x20000
	DNA         Set = 0x40000

	Default         = Letters | Digits | Punctuation
	ExtendedDefault = Digits | Punctuation | Katakana
	ASCIISafe       = Letters | Digits
	Matrix          = Letters | Digits | Katakana
)

// Has reports whether any group of o is in s.
func (s Set) Has(o Set) bool { return s&o != 0 }

// Unicode reports whether s contains groups outside plain ASCII.
func (s Set) Unicode() bool {
	return s.Has(Katakana | Greek | Cyrillic | Hebrew | Braille | Runic | Symbols | Arrows | Blocks | BoxDraw | Minimal)
}

// Range is an inclusive codepoint range.
type Range struct {
	Lo, Hi rune
}

// Preset pairs a preset name with its listing description.
type Preset struct {
	Name string
	Desc string
}

// Presets lists every preset in cycling order.
var Presets = []Preset{
	{"auto", "Auto-select (ASCII_SAFE when non-UTF, otherwise matrix)"},
	{"matrix", "Letters + digits + katakana (no punctuation)"},
	{"ascii", "Letters + digits + punctuation"},
	{"extended", "Digits + punctuation + katakana"},
	{"english", "Letters only"},
	{"digits", "Digits only (aliases: dec, decimal)"},
	{"punc", "Punctuation only"},
	{"binary", "0 and 1 (aliases: bin, 01)"},
	{"hex", "0-9 and A-F (alias: hexadecimal)"},
	{"katakana", "Katakana"},
	{"greek", "Greek"},
	{"cyrillic", "Cyrillic"},
	{"hebrew", "Hebrew"},
	{"blocks", "Block elements (shading blocks)"},
	{"symbols", "Math/technical symbols"},
	{"arrows", "Arrow symbols"},
	{"retro", "Box-drawing characters"},
	{"cyberpunk", "Katakana + hex + symbols (combo)"},
	{"hacker", "Letters + hex + punc + symbols (combo)"},
	{"minimal", "Dots and simple shapes"},
	{"code", "Letters + digits + punc + symbols (combo)"},
	{"dna", "DNA bases (ACGT)"},
	{"braille", "Braille"},
	{"runic", "Runic"},
}

var presetSets = map[string]Set{
	"matrix":    Matrix,
	"ascii":     Default,
	"extended":  ExtendedDefault,
	"english":   Letters,
	"digits":    Digits,
	"punc":      Punctuation,
	"binary":    Binary,
	"hex":       Hex,
	"katakana":  Katakana,
	"greek":     Greek,
	"cyrillic":  Cyrillic,
	"hebrew":    Hebrew,
	"blocks":    Blocks,
	"symbols":   Symbols,
	"arrows":    Arrows,
	"retro":     BoxDraw,
	"cyberpunk": Letters | Hex | Katakana | Symbols,
	"hacker":    Letters | Hex | Punctuation | Symbols,
	"minimal":   Minimal,
	"code":      Letters | Digits | Punctuation | Symbols,
	"dna":       DNA,
	"braille":   Braille,
	"runic":     Runic,
}

// Normalize lower-cases a preset name and folds aliases.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "bin", "01":
		return "binary"
	case "dec", "decimal":
		return "digits"
	case "hexadecimal":
		return "hex"
	}
	return n
}

// FromName resolves a preset name. auto picks ASCIISafe when the locale is
// not UTF-8.
func FromName(name string, defaultASCII bool) (Set, error) {
	n := Normalize(name)
	if n == "auto" {
		if defaultASCII {
			return ASCIISafe, nil
		}
		return Matrix, nil
	}
	if s, ok := presetSets[n]; ok {
		return s, nil
	}
	return None, fmt.Errorf("%w: %s (see list-charsets)", ErrUnknownCharset, n)
}

// Cycle returns the preset name dir steps from current. Unknown names fall
// back to binary.
func Cycle(current string, dir int) string {
	pos := -1
	for i, p := range Presets {
		if p.Name == current {
			pos = i
			break
		}
	}
	if pos < 0 {
		return "binary"
	}
	n := len(Presets)
	return Presets[((pos+dir)%n+n)%n].Name
}

// ParseHexRanges parses comma separated hex codepoints, taken pairwise as
// inclusive ranges: "30,39,41,46" is 0-9 and A-F.
func ParseHexRanges(list string) ([]Range, error) {
	var cps []rune
	for i, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex char at index %d", ErrInvalidChars, i+1)
		}
		r := rune(v)
		if !utf8.ValidRune(r) {
			return nil, fmt.Errorf("%w: invalid unicode scalar at index %d", ErrInvalidChars, i+1)
		}
		cps = append(cps, r)
	}
	if len(cps)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of codepoints given (must be even)", ErrInvalidChars)
	}
	out := make([]Range, 0, len(cps)/2)
	for i := 0; i < len(cps); i += 2 {
		out = append(out, Range{Lo: cps[i], Hi: cps[i+1]})
	}
	return out, nil
}

// DefaultToASCII reports whether the locale looks non UTF-8.
func DefaultToASCII() bool {
	return !strings.Contains(strings.ToUpper(os.Getenv("LANG")), "UTF")
}

// LocaleUTF8 reports whether any of LC_ALL, LC_CTYPE or LANG names UTF-8.
func LocaleUTF8() bool {
	blob := os.Getenv("LC_ALL") + os.Getenv("LC_CTYPE") + os.Getenv("LANG")
	return strings.Contains(strings.ToUpper(blob), "UTF")
}

// Build expands set and the custom ranges into a glyph list. Glyphs that
// occupy no cell are dropped, as are double-width glyphs unless fullWidth
// leaves them two cells. The result is never empty.
func Build(set Set, ranges []Range, defaultASCII, fullWidth bool) []rune {
	if set == None && len(ranges) == 0 {
		if defaultASCII {
			set = Default
		} else {
			set = ExtendedDefault
		}
	}

	var out []rune
	add := func(lo, hi rune) {
		for r := lo; r <= hi; r++ {
			if keep(r, fullWidth) {
				out = append(out, r)
			}
		}
	}
	addString := func(s string) {
		for _, r := range s {
			if keep(r, fullWidth) {
				out = append(out, r)
			}
		}
	}

	if set.Has(Binary) {
		add('0', '1')
	}
	if set.Has(Hex) {
		add('0', '9')
		add('A', 'F')
	}
	if set.Has(Letters) {
		add('A', 'Z')
		add('a', 'z')
	}
	if set.Has(Digits) {
		add('0', '9')
	}
	if set.Has(Punctuation) {
		add(0x21, 0x2F)
		add(0x3A, 0x40)
		add(0x5B, 0x60)
		add(0x7B, 0x7E)
	}
	if set.Has(Katakana) {
		add(0xFF66, 0xFF9D)
	}
	if set.Has(Greek) {
		add(0x0370, 0x03FF)
	}
	if set.Has(Cyrillic) {
		add(0x0410, 0x044F)
	}
	if set.Has(Hebrew) {
		add(0x0590, 0x05FF)
		add(0xFB1D, 0xFB4F)
	}
	if set.Has(Braille) {
		add(0x2800, 0x28FF)
	}
	if set.Has(Runic) {
		add(0x16A0, 0x16FF)
	}
	if set.Has(Symbols) {
		addString("∞∑∫√π∆Ωµλ≈≠≤≥×÷±∂∇∈∉∩∪⊂⊃⊆⊇⊕⊗")
	}
	if set.Has(Arrows) {
		addString("←→↑↓↔↕⇐⇒⇑⇓⇔↖↗↘↙")
	}
	if set.Has(Blocks) {
		add(0x2580, 0x259F)
	}
	if set.Has(BoxDraw) {
		add(0x2500, 0x257F)
	}
	if set.Has(Minimal) {
		addString(".:-=+*·•○●◦◌◍◉◎◇◆□■")
	}
	if set.Has(DNA) {
		addString("ACGTacgt")
	}
	for _, rg := range ranges {
		add(rg.Lo, rg.Hi)
	}

	if len(out) == 0 {
		out = []rune{'0', '1'}
	}
	return out
}

func keep(r rune, fullWidth bool) bool {
	if !utf8.ValidRune(r) {
		return false
	}
	switch runewidth.RuneWidth(r) {
	case 0:
		return false
	case 2:
		return fullWidth
	}
	return true
}
