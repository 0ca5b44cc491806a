package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"cosmorain/internal/charset"
	"cosmorain/internal/palette"
)

const swatchWidth = 12

func listColors(w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	name := r.NewStyle().Width(16)

	var b strings.Builder
	b.WriteString(heading.Render("Available color schemes:") + "\n")
	for _, s := range palette.All {
		p := palette.Build(s, palette.TrueColor, false)
		var swatch strings.Builder
		for _, c := range sample(p.Colors, swatchWidth) {
			swatch.WriteString(r.NewStyle().Foreground(lipgloss.Color(colorString(c))).Render("█"))
		}
		fmt.Fprintf(&b, "  %s %s  %s\n", name.Render(string(s)), swatch.String(), s.Description())
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write color list: %w", err)
	}
	return nil
}

func listCharsets(w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	name := r.NewStyle().Width(12)

	var b strings.Builder
	b.WriteString(heading.Render("Available charsets:") + "\n")
	for _, p := range charset.Presets {
		fmt.Fprintf(&b, "  %s %s\n", name.Render(p.Name), p.Desc)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write charset list: %w", err)
	}
	return nil
}

// sample picks up to n evenly spaced colors.
func sample(colors []termenv.Color, n int) []termenv.Color {
	if len(colors) <= n {
		return colors
	}
	out := make([]termenv.Color, n)
	for i := range out {
		out[i] = colors[i*(len(colors)-1)/(n-1)]
	}
	return out
}

func colorString(c termenv.Color) string {
	switch v := c.(type) {
	case termenv.RGBColor:
		return string(v)
	case termenv.ANSI256Color:
		return strconv.Itoa(int(v))
	case termenv.ANSIColor:
		return strconv.Itoa(int(v))
	}
	return ""
}
