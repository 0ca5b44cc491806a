// Package config holds the tunable settings of the rain, their defaults,
// YAML persistence and range validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cosmorain/internal/charset"
	"cosmorain/internal/palette"
)

var (
	ErrOutOfRange = errors.New("value out of range")
	ErrInvalid    = errors.New("invalid configuration")
)

const (
	DefaultFPS       = 60.0
	DefaultSpeed     = 8.0
	DefaultDensity   = 1.0
	DefaultMaxDPC    = 3
	DefaultGlitchPct = 10.0
	DefaultShortPct  = 50.0
	DefaultRipPct    = 33.33333
	DefaultBold      = 1
	DefaultCharset   = "binary"
	DefaultColor     = "green"
	AutoColorMode    = "auto"
)

// RangeError reports a numeric setting outside its allowed range.
type RangeError struct {
	Name     string
	Value    float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("failed to apply %s %s (min %s max %s)", e.Name, num(e.Value), num(e.Min), num(e.Max))
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ColorBg selects how the background is painted.
type ColorBg string

const (
	BgBlack       ColorBg = "black"
	BgDefault     ColorBg = "default-background"
	BgTransparent ColorBg = "transparent"
)

func (b *ColorBg) String() string { return string(*b) }

func (b *ColorBg) Set(s string) error {
	switch v := ColorBg(strings.ToLower(strings.TrimSpace(s))); v {
	case BgBlack, BgDefault, BgTransparent:
		*b = v
		return nil
	}
	return fmt.Errorf("%w: color-bg %q (allowed: black, default-background, transparent)", ErrInvalid, s)
}

func (b *ColorBg) Type() string { return "mode" }

// Config is the full set of rain settings.
type Config struct {
	FPS          float64 `yaml:"fps"`
	Speed        float64 `yaml:"speed"`
	Density      float64 `yaml:"density"`
	MaxPerColumn int     `yaml:"maxdpc"`
	Seed         int64   `yaml:"seed"`

	Color       string  `yaml:"color"`
	ColorBg     ColorBg `yaml:"color_bg"`
	ColorMode   string  `yaml:"colormode"`
	Bold        int     `yaml:"bold"`
	ShadingMode int     `yaml:"shadingmode"`

	Charset string `yaml:"charset"`
	Chars   string `yaml:"chars,omitempty"`

	NoGlitch  bool    `yaml:"noglitch"`
	GlitchPct float64 `yaml:"glitchpct"`
	GlitchMs  MsRange `yaml:"glitchms"`
	LingerMs  MsRange `yaml:"lingerms"`
	ShortPct  float64 `yaml:"shortpct"`
	RipPct    float64 `yaml:"rippct"`

	Async           bool    `yaml:"async"`
	FullWidth       bool    `yaml:"fullwidth"`
	Screensaver     bool    `yaml:"screensaver"`
	Message         string  `yaml:"message,omitempty"`
	MessageNoBorder bool    `yaml:"message_no_border"`
	Duration        float64 `yaml:"duration"`
	PerfStats       bool    `yaml:"perf_stats"`

	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file,omitempty"`

	// DensityAuto scales density with the grid area. It holds until a
	// density is given explicitly.
	DensityAuto bool `yaml:"-"`
}

// Default returns the stock settings.
func Default() *Config {
	return &Config{
		FPS:          DefaultFPS,
		Speed:        DefaultSpeed,
		Density:      DefaultDensity,
		MaxPerColumn: DefaultMaxDPC,
		Color:        DefaultColor,
		ColorBg:      BgBlack,
		ColorMode:    AutoColorMode,
		Bold:         DefaultBold,
		Charset:      DefaultCharset,
		GlitchPct:    DefaultGlitchPct,
		GlitchMs:     MsRange{Low: 300, High: 400},
		LingerMs:     MsRange{Low: 1, High: 3000},
		ShortPct:     DefaultShortPct,
		RipPct:       DefaultRipPct,
		DensityAuto:  true,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	var keys struct {
		Density *float64 `yaml:"density"`
	}
	if err := yaml.Unmarshal(data, &keys); err == nil && keys.Density != nil {
		cfg.DensityAuto = false
	}
	return cfg, nil
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

type check struct {
	name     string
	value    float64
	min, max float64
}

// Validate checks every setting and returns the first violation.
func (c *Config) Validate() error {
	if math.IsNaN(c.Duration) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: failed to apply --duration %v (must be a finite number)", ErrInvalid, c.Duration)
	}

	checks := []check{
		{"--shadingmode", float64(c.ShadingMode), 0, 1},
		{"--bold", float64(c.Bold), 0, 2},
		{"--fps", c.FPS, 1, 240},
		{"--glitchpct", c.GlitchPct, 0, 100},
		{"--glitchms low", float64(c.GlitchMs.Low), 1, 5000},
		{"--glitchms high", float64(c.GlitchMs.High), 1, 5000},
		{"--lingerms low", float64(c.LingerMs.Low), 1, 60000},
		{"--lingerms high", float64(c.LingerMs.High), 1, 60000},
		{"--shortpct", c.ShortPct, 0, 100},
		{"--rippct", c.RipPct, 0, 100},
		{"--maxdpc", float64(c.MaxPerColumn), 1, 3},
		{"--speed", c.Speed, 0.001, 1000},
		{"--density", c.Density, 0.01, 5},
	}
	if c.Duration > 0 {
		checks = append(checks, check{"--duration", c.Duration, 0.1, 86400})
	}
	for _, ck := range checks {
		if math.IsNaN(ck.value) || ck.value < ck.min || ck.value > ck.max {
			return &RangeError{Name: ck.name, Value: ck.value, Min: ck.min, Max: ck.max}
		}
	}

	if c.GlitchMs.Low > c.GlitchMs.High || c.LingerMs.Low > c.LingerMs.High {
		return fmt.Errorf("%w: range must be >0 and low <= high", ErrInvalid)
	}
	if err := (&c.ColorBg).Set(string(c.ColorBg)); err != nil {
		return err
	}
	if _, err := palette.Parse(c.Color); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, _, err := c.Mode(); err != nil {
		return err
	}
	if _, err := charset.FromName(c.Charset, false); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Ranges(); err != nil {
		return err
	}
	return nil
}

// Scheme returns the parsed color scheme, Green when unknown.
func (c *Config) Scheme() palette.Scheme {
	s, _ := palette.Parse(c.Color)
	return s
}

// Mode resolves the color mode. forced reports whether it was set
// explicitly rather than detected.
func (c *Config) Mode() (mode palette.Mode, forced bool, err error) {
	v := strings.ToLower(strings.TrimSpace(c.ColorMode))
	if v == "" || v == AutoColorMode {
		return palette.Detect(), false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return palette.Mono, true, fmt.Errorf("%w: invalid --colormode: %s (allowed: 0,16,8/256,24/32)", ErrInvalid, c.ColorMode)
	}
	mode, err = palette.ParseMode(n)
	if err != nil {
		return palette.Mono, true, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return mode, true, nil
}

// Ranges parses the custom chars into codepoint ranges.
func (c *Config) Ranges() ([]charset.Range, error) {
	if strings.TrimSpace(c.Chars) == "" {
		return nil, nil
	}
	r, err := charset.ParseHexRanges(c.Chars)
	if err != nil {
		return nil, fmt.Errorf("%w: --chars: %w", ErrInvalid, err)
	}
	return r, nil
}

// DefaultBG reports whether the terminal's own background is kept.
func (c *Config) DefaultBG() bool { return c.ColorBg != BgBlack }

// Deadline returns the run duration, zero when unlimited.
func (c *Config) Deadline() time.Duration {
	if c.Duration <= 0 {
		return 0
	}
	return time.Duration(c.Duration * float64(time.Second))
}
