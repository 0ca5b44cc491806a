package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"cosmorain/internal/charset"
	"cosmorain/internal/config"
	"cosmorain/internal/palette"
)

// sampleGlyphs are printed by the doctor so the user can judge font
// coverage.
var sampleGlyphs = []struct{ name, glyphs string }{
	{"ascii", "01 ABC abc !@#"},
	{"katakana", "ｱｲｳｴｵｶｷｸｹｺ"},
	{"greek", "ΩλπΔ"},
	{"cyrillic", "ЯЖЮШ"},
	{"hebrew", "אבגד"},
	{"braille", "⣿⣷⣯⣟"},
	{"runic", "ᚠᚢᚦᚨ"},
	{"symbols", "∞∑∫√π"},
	{"arrows", "←→↑↓"},
	{"blocks", "░▒▓█"},
	{"boxdraw", "┌┐└┘─│"},
	{"minimal", "·•○●◇◆"},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func envOrUnset(name string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return "(unset)"
}

// colorReport resolves the detected, forced and effective color modes.
type colorReport struct {
	detected  palette.Mode
	forced    bool
	effective palette.Mode
}

func resolveColor(cfg *config.Config) colorReport {
	r := colorReport{detected: palette.Detect()}
	r.effective = r.detected
	if mode, forced, err := cfg.Mode(); err == nil && forced {
		r.forced = true
		r.effective = mode
	}
	return r
}

// Doctor writes a report on the terminal, locale, color support and
// charset, followed by glyph samples and advice.
func Doctor(w io.Writer, cfg *config.Config) error {
	var b strings.Builder
	stdinTTY := isatty.IsTerminal(os.Stdin.Fd())
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd())
	utf8 := charset.LocaleUTF8()
	defaultASCII := charset.DefaultToASCII()
	color := resolveColor(cfg)

	b.WriteString("DOCTOR REPORT:\n")
	fmt.Fprintf(&b, "  stdin_is_tty: %s\n", yesNo(stdinTTY))
	fmt.Fprintf(&b, "  stdout_is_tty: %s\n", yesNo(stdoutTTY))
	for _, name := range []string{"LANG", "LC_ALL", "LC_CTYPE"} {
		fmt.Fprintf(&b, "  %s: %s\n", name, envOrUnset(name))
	}
	fmt.Fprintf(&b, "  locale_utf8: %s\n", yesNo(utf8))
	for _, name := range []string{"TERM", "COLORTERM"} {
		fmt.Fprintf(&b, "  %s: %s\n", name, envOrUnset(name))
	}
	fmt.Fprintf(&b, "  color_auto_detected: %s\n", color.detected)
	if color.forced {
		fmt.Fprintf(&b, "  color_forced: %s\n", color.effective)
	}
	fmt.Fprintf(&b, "  color_effective: %s\n", color.effective)
	fmt.Fprintf(&b, "  default_to_ascii: %s\n", yesNo(defaultASCII))

	name := strings.TrimSpace(cfg.Charset)
	if name == "" {
		b.WriteString("  charset: (empty)\n")
	} else {
		fmt.Fprintf(&b, "  charset: %s\n", name)
	}
	norm := charset.Normalize(name)
	if norm != name {
		fmt.Fprintf(&b, "  charset_normalized: %s\n", norm)
	}
	fmt.Fprintf(&b, "  chars_override: %s\n", yesNo(strings.TrimSpace(cfg.Chars) != ""))
	set, setErr := charset.FromName(name, defaultASCII)
	if setErr != nil {
		fmt.Fprintf(&b, "  charset_parse_error: %v\n", setErr)
	}

	if utf8 {
		b.WriteString("\nSAMPLE GLYPHS:\n")
		for _, s := range sampleGlyphs {
			fmt.Fprintf(&b, "  %s: %s\n", s.name, s.glyphs)
		}
	}

	var advice []string
	if !stdinTTY || !stdoutTTY {
		advice = append(advice, "run cosmorain directly in a terminal (avoid piping/redirect)")
	}
	if !utf8 {
		advice = append(advice,
			"locale is not UTF-8; unicode charsets will fall back to ASCII",
			"try: export LANG=en_US.UTF-8")
	}
	if color.effective != palette.TrueColor {
		advice = append(advice, "for best colors use a truecolor terminal (COLORTERM=truecolor)")
	}
	if setErr == nil && set.Unicode() {
		if set.Has(charset.Katakana) {
			advice = append(advice, "katakana needs a font with CJK coverage (e.g. Noto Sans CJK)")
		} else {
			advice = append(advice, "if glyphs show as boxes, use a font with wide Unicode coverage")
		}
	}
	if len(advice) == 0 {
		advice = append(advice, "no issues detected")
	}
	b.WriteString("\nADVICE:\n")
	for _, line := range advice {
		fmt.Fprintf(&b, "  - %s\n", line)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write doctor report: %w", err)
	}
	return nil
}

// CheckBitColor writes how the color mode was resolved.
func CheckBitColor(w io.Writer, cfg *config.Config) error {
	color := resolveColor(cfg)
	var b strings.Builder
	b.WriteString("BITCOLOR CHECK:\n")
	fmt.Fprintf(&b, "  COLORTERM: %s\n", envOrUnset("COLORTERM"))
	fmt.Fprintf(&b, "  TERM: %s\n", envOrUnset("TERM"))
	fmt.Fprintf(&b, "  auto_detected: %s\n", color.detected)
	if color.forced {
		fmt.Fprintf(&b, "  forced: %s\n", color.effective)
	}
	fmt.Fprintf(&b, "  effective: %s\n", color.effective)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write color check: %w", err)
	}
	return nil
}
