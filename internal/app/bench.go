package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"cosmorain/internal/cloud"
	"cosmorain/internal/config"
	"cosmorain/internal/frame"
	"cosmorain/internal/pacing"
)

// Environment overrides for the bench grid.
const (
	BenchColsEnv  = "COSMORAIN_BENCH_COLS"
	BenchLinesEnv = "COSMORAIN_BENCH_LINES"

	defaultBenchCols  = 120
	defaultBenchLines = 40
)

// BenchResult is the outcome of a bench run.
type BenchResult struct {
	Cols, Lines int
	Frames      int
	Elapsed     time.Duration
}

// FramesPerSec returns the simulated frame throughput.
func (r BenchResult) FramesPerSec() float64 {
	return float64(r.Frames) / max(r.Elapsed.Seconds(), 1e-9)
}

// Bench runs frames ticks of the simulation off screen with synthetic time
// advancing one period per tick, and writes the throughput to w.
func Bench(cfg *config.Config, frames int, w io.Writer, logger *log.Logger) (BenchResult, error) {
	if frames <= 0 {
		return BenchResult{}, fmt.Errorf("%w: failed to apply --frames %d (must be > 0)", config.ErrInvalid, frames)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	cols := envInt(BenchColsEnv, defaultBenchCols)
	lines := envInt(BenchLinesEnv, defaultBenchLines)

	seed := cfg.Seed
	if seed == 0 {
		seed = cloud.DefaultSeed
	}
	simNow := time.Now()
	c, _, err := buildCloud(cfg, newRand(seed), simNow)
	if err != nil {
		return BenchResult{}, fmt.Errorf("failed to create cloud: %w", err)
	}
	c.Reset(cols, lines, simNow)
	if cfg.DensityAuto {
		c.SetDensity(AutoDensity(cfg.Density, cols, lines, cfg.FullWidth))
	}
	period := pacing.PeriodFor(cfg.FPS)
	c.SetMaxSimDelta(period)
	f := frame.New(cols, lines, c.Palette().BG)

	warmup := min(max(frames/10, 10), 200)
	for range warmup {
		simNow = simNow.Add(period)
		c.Rain(f, simNow)
		f.ClearDirty()
	}

	start := time.Now()
	rec := pacing.NewRecorder(cfg.FPS, start)
	for range frames {
		simNow = simNow.Add(period)
		t0 := time.Now()
		c.Rain(f, simNow)
		drawn := f.HasChanges()
		f.ClearDirty()
		rec.Record(time.Since(t0), drawn, 0, 0)
	}
	res := BenchResult{Cols: cols, Lines: lines, Frames: frames, Elapsed: time.Since(start)}
	logger.Printf("bench %dx%d %d frames in %s", cols, lines, frames, res.Elapsed)

	_, err = fmt.Fprintf(w, "BENCH:\n  cols: %d\n  lines: %d\n  frames: %d\n  elapsed_s: %.6f\n  frames_per_s: %.3f\n",
		res.Cols, res.Lines, res.Frames, res.Elapsed.Seconds(), res.FramesPerSec())
	if err != nil {
		return res, fmt.Errorf("failed to write bench result: %w", err)
	}
	if plot := rec.Plot(); plot != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", plot); err != nil {
			return res, fmt.Errorf("failed to write bench plot: %w", err)
		}
	}
	return res, nil
}

func envInt(name string, def int) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
