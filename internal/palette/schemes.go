package palette

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// Scheme names a color theme.
type Scheme string

const (
	Green        Scheme = "green"
	Green2       Scheme = "green2"
	Green3       Scheme = "green3"
	Yellow       Scheme = "yellow"
	Orange       Scheme = "orange"
	Red          Scheme = "red"
	Blue         Scheme = "blue"
	Cyan         Scheme = "cyan"
	Gold         Scheme = "gold"
	Rainbow      Scheme = "rainbow"
	Purple       Scheme = "purple"
	Neon         Scheme = "neon"
	Fire         Scheme = "fire"
	Ocean        Scheme = "ocean"
	Forest       Scheme = "forest"
	Vaporwave    Scheme = "vaporwave"
	Gray         Scheme = "gray"
	Snow         Scheme = "snow"
	Aurora       Scheme = "aurora"
	FancyDiamond Scheme = "fancy-diamond"
	Cosmos       Scheme = "cosmos"
	Nebula       Scheme = "nebula"
	Spectrum20   Scheme = "spectrum20"
	Stars        Scheme = "stars"
	Mars         Scheme = "mars"
	Venus        Scheme = "venus"
	Mercury      Scheme = "mercury"
	Jupiter      Scheme = "jupiter"
	Saturn       Scheme = "saturn"
	Uranus       Scheme = "uranus"
	Neptune      Scheme = "neptune"
	Pluto        Scheme = "pluto"
	Moon         Scheme = "moon"
	Sun          Scheme = "sun"
	Comet        Scheme = "comet"
	Galaxy       Scheme = "galaxy"
	Supernova    Scheme = "supernova"
	BlackHole    Scheme = "blackhole"
	Andromeda    Scheme = "andromeda"
	Stardust     Scheme = "stardust"
	Meteor       Scheme = "meteor"
	Eclipse      Scheme = "eclipse"
	DeepSpace    Scheme = "deepspace"
)

// All lists every scheme in cycling order.
var All = []Scheme{
	Green, Green2, Green3, Yellow, Orange, Red, Blue, Cyan, Gold, Rainbow,
	Purple, Neon, Fire, Ocean, Forest, Vaporwave, Gray, Snow, Aurora,
	FancyDiamond, Cosmos, Nebula, Spectrum20, Stars, Mars, Venus, Mercury,
	Jupiter, Saturn, Uranus, Neptune, Pluto, Moon, Sun, Comet, Galaxy,
	Supernova, BlackHole, Andromeda, Stardust, Meteor, Eclipse, DeepSpace,
}

var aliases = map[string]Scheme{
	"synthwave":    Neon,
	"inferno":      Fire,
	"deep-sea":     Ocean,
	"deepsea":      Ocean,
	"jungle":       Forest,
	"grey":         Gray,
	"fancydiamond": FancyDiamond,
	"spectrum-20":  Spectrum20,
	"theme20":      Spectrum20,
	"theme-20":     Spectrum20,
	"star":         Stars,
	"super-nova":   Supernova,
	"black-hole":   BlackHole,
	"star-dust":    Stardust,
	"deep-space":   DeepSpace,
}

// Parse resolves a scheme name or alias. Underscores read as dashes.
func Parse(name string) (Scheme, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if s, ok := aliases[key]; ok {
		return s, nil
	}
	if _, ok := schemes[Scheme(key)]; ok {
		return Scheme(key), nil
	}
	return Green, fmt.Errorf("%w: %s", ErrUnknownScheme, name)
}

// Cycle returns the scheme dir steps away from s, wrapping. Unknown
// schemes cycle back to Green.
func Cycle(s Scheme, dir int) Scheme {
	pos := -1
	for i, v := range All {
		if v == s {
			pos = i
			break
		}
	}
	if pos < 0 {
		return Green
	}
	n := len(All)
	return All[((pos+dir)%n+n)%n]
}

// Description returns a one-line summary for listings.
func (s Scheme) Description() string {
	if d, ok := schemes[s]; ok {
		return d.desc
	}
	return ""
}

type schemeDef struct {
	desc    string
	ansi16  []termenv.ANSIColor
	ansi256 []uint8
	rgb     []string // Used in truecolor mode when set
	stops   []string // Gradient stops, replaces the fixed lists
	steps   int
}

func stops(desc string, hex ...string) schemeDef {
	return schemeDef{desc: desc, stops: hex, steps: 9}
}

var schemes = map[Scheme]schemeDef{
	Green: {
		desc:    "Green theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIGreen, termenv.ANSIBrightGreen},
		ansi256: []uint8{234, 22, 28, 35, 78, 84, 159},
	},
	Green2: {
		desc:    "Green variant",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightBlack, termenv.ANSIGreen, termenv.ANSIBrightGreen, termenv.ANSIBrightWhite},
		ansi256: []uint8{28, 34, 76, 84, 120, 157, 231},
	},
	Green3: {
		desc:    "Green variant",
		ansi16:  []termenv.ANSIColor{termenv.ANSIGreen, termenv.ANSIBrightWhite},
		ansi256: []uint8{22, 28, 34, 70, 76, 82, 157},
	},
	Yellow: {
		desc:    "Yellow theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightBlack, termenv.ANSIBrightYellow, termenv.ANSIBrightWhite},
		ansi256: []uint8{100, 142, 184, 226, 227, 229, 230},
	},
	Orange: {
		desc:    "Orange theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightRed, termenv.ANSIWhite},
		ansi256: []uint8{52, 94, 130, 166, 202, 208, 231},
	},
	Red: {
		desc:    "Red theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIRed, termenv.ANSIBrightRed, termenv.ANSIBrightWhite},
		ansi256: []uint8{234, 52, 88, 124, 160, 196, 217},
	},
	Blue: {
		desc:    "Blue theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBlue, termenv.ANSIBrightBlue, termenv.ANSIBrightWhite},
		ansi256: []uint8{234, 17, 18, 19, 20, 21, 75, 159},
	},
	Cyan: {
		desc:    "Cyan theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSICyan, termenv.ANSIBrightCyan, termenv.ANSIBrightWhite},
		ansi256: []uint8{24, 25, 31, 32, 38, 45, 159},
	},
	Gold: {
		desc:    "Gold theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightBlack, termenv.ANSIYellow, termenv.ANSIBrightYellow, termenv.ANSIBrightWhite},
		ansi256: []uint8{58, 94, 172, 178, 228, 230, 231},
	},
	Rainbow: {
		desc:    "Rainbow theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightRed, termenv.ANSIBrightBlue, termenv.ANSIBrightYellow, termenv.ANSIBrightGreen, termenv.ANSIBrightCyan, termenv.ANSIBrightMagenta},
		ansi256: []uint8{196, 208, 226, 46, 21, 93, 201},
	},
	Purple: {
		desc:    "Purple theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightMagenta, termenv.ANSIWhite},
		ansi256: []uint8{60, 61, 62, 63, 69, 111, 225},
	},
	Neon: {
		desc:    "Neon theme (alias: synthwave)",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightBlue, termenv.ANSIBrightMagenta, termenv.ANSIBrightCyan, termenv.ANSIBrightWhite},
		ansi256: []uint8{17, 18, 19, 54, 93, 129, 201, 51, 231},
	},
	Fire: {
		desc:    "Fire theme (alias: inferno)",
		ansi16:  []termenv.ANSIColor{termenv.ANSIRed, termenv.ANSIBrightRed, termenv.ANSIYellow, termenv.ANSIBrightYellow, termenv.ANSIBrightWhite},
		ansi256: []uint8{52, 88, 124, 160, 196, 202, 208, 214, 226, 231},
	},
	Ocean: {
		desc:    "Ocean theme (alias: deep-sea)",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBlue, termenv.ANSIBrightBlue, termenv.ANSICyan, termenv.ANSIBrightCyan, termenv.ANSIBrightWhite},
		ansi256: []uint8{17, 18, 19, 24, 30, 37, 44, 51, 87, 159, 231},
	},
	Forest: {
		desc:    "Forest theme (alias: jungle)",
		ansi16:  []termenv.ANSIColor{termenv.ANSIGreen, termenv.ANSIBrightGreen, termenv.ANSIBrightYellow, termenv.ANSIBrightWhite},
		ansi256: []uint8{22, 28, 34, 40, 46, 82, 118, 154, 190, 229, 231},
	},
	Vaporwave: {
		desc:    "Vaporwave theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightMagenta, termenv.ANSIBrightMagenta, termenv.ANSIBrightYellow, termenv.ANSIBrightCyan, termenv.ANSIBrightWhite},
		ansi256: []uint8{53, 54, 55, 134, 177, 219, 214, 220, 227, 229, 87, 123, 159, 195, 231},
	},
	Gray: {
		desc:    "Gray theme (alias: grey)",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightBlack, termenv.ANSIWhite, termenv.ANSIBrightWhite},
		ansi256: []uint8{234, 237, 240, 243, 246, 249, 251, 252, 231},
	},
	Snow: {
		desc:    "Snow / ice theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightBlack, termenv.ANSIWhite, termenv.ANSIBrightWhite, termenv.ANSIBrightCyan},
		ansi256: []uint8{234, 240, 250, 252, 231, 117, 159},
	},
	Aurora: {
		desc:    "Aurora theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIGreen, termenv.ANSIBrightGreen, termenv.ANSIBrightCyan, termenv.ANSIBrightMagenta},
		ansi256: []uint8{22, 28, 34, 40, 45, 51, 93, 129, 159},
	},
	FancyDiamond: {
		desc:    "Fancy diamond theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightCyan, termenv.ANSIBrightWhite, termenv.ANSIBrightMagenta},
		ansi256: []uint8{45, 51, 87, 123, 159, 195, 231, 225},
	},
	Cosmos: {
		desc:    "Cosmos theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBlue, termenv.ANSIBrightBlue, termenv.ANSIBrightMagenta, termenv.ANSIBrightWhite},
		ansi256: []uint8{17, 18, 19, 54, 55, 56, 57, 93, 129, 189, 225},
	},
	Nebula: {
		desc:    "Nebula theme",
		ansi16:  []termenv.ANSIColor{termenv.ANSIBrightMagenta, termenv.ANSIBrightRed, termenv.ANSIBrightBlue, termenv.ANSIBrightWhite},
		ansi256: []uint8{53, 54, 90, 126, 162, 198, 201, 207, 213, 219, 225},
	},
	Spectrum20: {
		desc: "Spectrum 20-color theme (aliases: theme20, spectrum-20)",
		ansi16: []termenv.ANSIColor{
			termenv.ANSIBrightBlack, termenv.ANSIRed, termenv.ANSIBrightRed, termenv.ANSIYellow,
			termenv.ANSIBrightYellow, termenv.ANSIGreen, termenv.ANSIBrightGreen, termenv.ANSICyan,
			termenv.ANSIBrightCyan, termenv.ANSIBlue, termenv.ANSIBrightBlue, termenv.ANSIMagenta,
			termenv.ANSIBrightMagenta, termenv.ANSIBrightBlack, termenv.ANSIWhite, termenv.ANSIBrightWhite,
			termenv.ANSIBrightCyan, termenv.ANSIBrightYellow, termenv.ANSIBrightMagenta, termenv.ANSIBrightWhite,
		},
		ansi256: []uint8{234, 52, 88, 124, 160, 196, 202, 208, 214, 226, 190, 154, 118, 82, 51, 39, 27, 93, 201, 231},
		rgb: []string{
			"#000000", "#800000", "#ff0000", "#ff4000", "#ff8000",
			"#ffbf00", "#ffff00", "#bfff00", "#80ff00", "#00ff00",
			"#00ff80", "#00ffbf", "#00ffff", "#00bfff", "#0080ff",
			"#0000ff", "#8000ff", "#bf00ff", "#ff00ff", "#ffffff",
		},
	},
	Stars:     stops("Stars theme", "#000000", "#0a0a28", "#50a0ff", "#ffffff"),
	Mars:      stops("Mars theme", "#140000", "#780a0a", "#dc3c14", "#ffebdc"),
	Venus:     stops("Venus theme", "#0a0a00", "#785a1e", "#ffdc78", "#ffffff"),
	Mercury:   stops("Mercury theme", "#000000", "#404040", "#a0a0a0", "#ffffff"),
	Jupiter:   stops("Jupiter theme", "#140a00", "#783c14", "#c88c5a", "#ffffff"),
	Saturn:    stops("Saturn theme", "#14140a", "#8c783c", "#e6d296", "#ffffff"),
	Uranus:    stops("Uranus theme", "#000a0a", "#007882", "#78ffff", "#ffffff"),
	Neptune:   stops("Neptune theme", "#000014", "#00288c", "#008cff", "#f0ffff"),
	Pluto:     stops("Pluto theme", "#0a0500", "#5a3c28", "#b4bed2", "#ffffff"),
	Moon:      stops("Moon theme", "#000000", "#5a6478", "#c8d2dc", "#ffffff"),
	Sun:       stops("Sun theme", "#280000", "#c83c00", "#ffc800", "#ffffff"),
	Comet:     stops("Comet theme", "#000014", "#0064a0", "#b4ffff", "#ffffff"),
	Galaxy:    stops("Galaxy theme", "#0a0014", "#3c0078", "#b43cff", "#ffffff"),
	Supernova: stops("Supernova theme", "#140028", "#b4003c", "#ff7800", "#ffffff"),
	BlackHole: stops("Black hole theme", "#000000", "#140028", "#280050", "#c878ff"),
	Andromeda: stops("Andromeda theme", "#000014", "#320078", "#ff50c8", "#ffffff"),
	Stardust:  stops("Stardust theme", "#0a0014", "#783cc8", "#50c8ff", "#ffffff"),
	Meteor:    stops("Meteor theme", "#140a00", "#b43c00", "#ffaa00", "#ffffff"),
	Eclipse:   stops("Eclipse theme", "#000000", "#28003c", "#ff7800", "#ffffff"),
	DeepSpace: stops("Deep space theme", "#000000", "#000a28", "#0050a0", "#c878ff"),
}
