package app

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"cosmorain/internal/charset"
	"cosmorain/internal/cloud"
	"cosmorain/internal/config"
)

const (
	minDensity = 0.01
	maxDensity = 5.0

	// Grid area at which auto density leaves the base density unscaled.
	referenceArea = 80 * 25
)

// newRand seeds a generator from seed, or from the clock when seed is zero.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// chooser tracks the glyph source so presets can be cycled at runtime.
type chooser struct {
	name         string
	ranges       []charset.Range
	defaultASCII bool
	fullWidth    bool
}

func (ch *chooser) glyphs() ([]rune, error) {
	set, err := charset.FromName(ch.name, ch.defaultASCII)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve charset: %w", err)
	}
	return charset.Build(set, ch.ranges, ch.defaultASCII, ch.fullWidth), nil
}

// buildCloud creates a cloud tuned from cfg. The grid is empty until Reset.
func buildCloud(cfg *config.Config, rng *rand.Rand, now time.Time) (*cloud.Cloud, *chooser, error) {
	mode, _, err := cfg.Mode()
	if err != nil {
		return nil, nil, err
	}
	ranges, err := cfg.Ranges()
	if err != nil {
		return nil, nil, err
	}

	c := cloud.New(cloud.Options{
		Mode:      mode,
		Scheme:    cfg.Scheme(),
		DefaultBG: cfg.DefaultBG(),
		FullWidth: cfg.FullWidth,
		Shading:   cloud.Shading(cfg.ShadingMode),
		Bold:      cloud.BoldMode(cfg.Bold),
		Async:     cfg.Async,
	}, rng, now)

	c.SetSpeed(cfg.Speed)
	c.SetDensity(cfg.Density)
	c.SetMaxPerColumn(cfg.MaxPerColumn)
	c.SetGlitchy(!cfg.NoGlitch)
	c.SetGlitchPct(cfg.GlitchPct / 100)
	c.SetGlitchTimes(cfg.GlitchMs.Durations())
	c.SetLingerTimes(cfg.LingerMs.Durations())
	c.SetShortPct(cfg.ShortPct / 100)
	c.SetDieEarlyPct(cfg.RipPct / 100)
	c.SetMessageBorder(!cfg.MessageNoBorder)
	if cfg.Message != "" {
		c.SetMessage(cfg.Message)
	}

	ch := &chooser{
		name:         charset.Normalize(cfg.Charset),
		ranges:       ranges,
		defaultASCII: charset.DefaultToASCII(),
		fullWidth:    cfg.FullWidth,
	}
	glyphs, err := ch.glyphs()
	if err != nil {
		return nil, nil, err
	}
	c.InitChars(glyphs)
	return c, ch, nil
}

// AutoDensity scales base by the grid area relative to an 80x25 terminal.
// The factor is sqrt(area/2000) held to [0.5, 2]; full width halves the
// usable columns.
func AutoDensity(base float64, cols, lines int, fullWidth bool) float64 {
	effCols := max(cols, 1)
	if fullWidth {
		effCols = max(cols/2, 1)
	}
	effLines := max(lines, 1)

	factor := clamp(math.Sqrt(float64(effCols*effLines)/referenceArea), 0.5, 2)
	return clamp(clamp(base, minDensity, maxDensity)*factor, minDensity, maxDensity)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
