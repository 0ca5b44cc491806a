package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// BindFlags registers every setting on fs. Flag defaults are the current
// values of c, so binding a loaded config keeps its values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.Float64VarP(&c.FPS, "fps", "f", c.FPS, "Target FPS (min 1 max 240)")
	fs.Float64VarP(&c.Speed, "speed", "S", c.Speed, "Characters per second (min 0.001 max 1000)")
	fs.Float64VarP(&c.Density, "density", "d", c.Density, "Droplet density (min 0.01 max 5.0)")
	fs.IntVar(&c.MaxPerColumn, "maxdpc", c.MaxPerColumn, "Max droplets per column (min 1 max 3)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed, 0 picks one from the clock")

	fs.StringVarP(&c.Color, "color", "c", c.Color, "Color theme (see list-colors)")
	fs.Var(&c.ColorBg, "color-bg", "Background mode (black, default-background, transparent)")
	fs.StringVar(&c.ColorMode, "colormode", c.ColorMode, "Force color mode (allowed: auto,0,16,8/256,24/32)")
	fs.IntVarP(&c.Bold, "bold", "b", c.Bold, "Bold mode (min 0 max 2): 0=off, 1=random, 2=all")
	fs.IntVarP(&c.ShadingMode, "shadingmode", "M", c.ShadingMode, "Shading mode (min 0 max 1): 0=random, 1=distance-from-head")

	fs.StringVar(&c.Charset, "charset", c.Charset, "Charset preset (see list-charsets)")
	fs.StringVar(&c.Chars, "chars", c.Chars, "Custom characters as comma separated hex codepoint pairs")

	fs.BoolVar(&c.NoGlitch, "noglitch", c.NoGlitch, "Disable glitch effects")
	fs.Float64VarP(&c.GlitchPct, "glitchpct", "G", c.GlitchPct, "Glitch chance in percent (min 0 max 100)")
	fs.VarP(&c.GlitchMs, "glitchms", "g", "Glitch duration range in ms: LOW,HIGH (min 1 max 5000)")
	fs.VarP(&c.LingerMs, "lingerms", "l", "Linger time range in ms: LOW,HIGH (min 1 max 60000)")
	fs.Float64Var(&c.ShortPct, "shortpct", c.ShortPct, "Chance for short droplets in percent (min 0 max 100)")
	fs.Float64VarP(&c.RipPct, "rippct", "r", c.RipPct, "Die-early chance in percent (min 0 max 100)")

	fs.BoolVarP(&c.Async, "async", "a", c.Async, "Columns fall at individual speeds")
	fs.BoolVarP(&c.FullWidth, "fullwidth", "F", c.FullWidth, "Use two cells per glyph")
	fs.BoolVarP(&c.Screensaver, "screensaver", "s", c.Screensaver, "Screensaver mode (exit on keypress)")
	fs.StringVarP(&c.Message, "message", "m", c.Message, "Overlay message")
	fs.BoolVar(&c.MessageNoBorder, "message-no-border", c.MessageNoBorder, "Draw message box without border (shorthand: -mB)")
	fs.Float64Var(&c.Duration, "duration", c.Duration, "Stop after N seconds (min 0.1 max 86400; <=0 disables)")
	fs.BoolVar(&c.PerfStats, "perf-stats", c.PerfStats, "Print performance statistics summary on exit")

	fs.BoolVar(&c.Debug, "debug", c.Debug, "Write debug logs to --log-file")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Debug log destination")
}

// Overlay re-applies every flag changed on fs onto c, so explicit flags win
// over file values. An explicit density turns auto density off.
func (c *Config) Overlay(fs *pflag.FlagSet) error {
	target := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	c.BindFlags(target)

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil || target.Lookup(f.Name) == nil {
			return
		}
		if e := target.Set(f.Name, f.Value.String()); e != nil {
			err = fmt.Errorf("failed to apply --%s: %w", f.Name, e)
		}
	})
	if fs.Changed("density") {
		c.DensityAuto = false
	}
	return err
}
