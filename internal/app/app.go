// Package app runs the rain against a terminal: the tick loop, key
// bindings, resize handling and the offline bench and doctor reports.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"cosmorain/internal/cloud"
	"cosmorain/internal/config"
	"cosmorain/internal/frame"
	"cosmorain/internal/pacing"
	"cosmorain/internal/render"
	"cosmorain/internal/term"
)

// Pressure at which the cloud stops running glitch passes.
const glitchPressure = 0.35

// === TERMINAL ===

// Terminal is the screen transport the loop drives.
type Terminal interface {
	Size() (cols, lines int, err error)
	Poll(timeout time.Duration) ([]term.Event, error)
	Writer() io.Writer
	Resized() bool
	NeedsReinit() bool
	Reinit() error
	Suspend()
	Close() error
}

// === APP ===

// App holds the components of a running rain.
type App struct {
	cfg  *config.Config
	term Terminal
	log  *log.Logger
	now  func() time.Time

	cloud    *cloud.Cloud
	chars    *chooser
	frame    *frame.Frame
	renderer *render.Renderer
	pacer    *pacing.Controller
	stats    *pacing.Recorder

	baseDensity float64
	densityAuto bool

	cols, lines   int
	resizePending bool
	quit          bool
	stressed      bool
}

// New creates the rain for cfg on t. A nil rng is seeded from cfg.Seed.
func New(cfg *config.Config, t Terminal, logger *log.Logger, rng *rand.Rand) (*App, error) {
	if rng == nil {
		rng = newRand(cfg.Seed)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := time.Now()

	c, ch, err := buildCloud(cfg, rng, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud: %w", err)
	}

	return &App{
		cfg:           cfg,
		term:          t,
		log:           logger,
		now:           time.Now,
		cloud:         c,
		chars:         ch,
		frame:         frame.New(0, 0, nil),
		renderer:      render.New(t.Writer()),
		pacer:         pacing.New(cfg.FPS, now),
		stats:         pacing.NewRecorder(cfg.FPS, now),
		baseDensity:   cfg.Density,
		densityAuto:   cfg.DensityAuto,
		resizePending: true,
	}, nil
}

// Run drives the rain until quit, the configured duration or ctx ends it.
// The terminal is left to the caller to close; a panic closes it before
// propagating.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			a.term.Close()
			panic(r)
		}
	}()

	start := a.now()
	a.pacer.Reset(start)
	a.stats = pacing.NewRecorder(a.cfg.FPS, start)

	var deadline time.Time
	if d := a.cfg.Deadline(); d > 0 {
		deadline = start.Add(d)
	}

	for ctx.Err() == nil {
		now := a.now()
		if !deadline.IsZero() && !now.Before(deadline) {
			a.log.Printf("duration reached after %s", now.Sub(start))
			return nil
		}

		if a.term.NeedsReinit() {
			if err := a.term.Reinit(); err != nil {
				return err
			}
			a.log.Printf("terminal reinit")
			a.renderer.Invalidate()
			a.resizePending = true
			a.cloud.ForceRedraw()
			a.pacer.Reset(now)
		}
		if a.term.Resized() {
			a.resizePending = true
		}

		var wait time.Duration
		if !a.resizePending && !a.pacer.Due(now) {
			wait = a.pacer.Until(now)
			if !deadline.IsZero() {
				wait = min(wait, deadline.Sub(now))
			}
		}

		events, err := a.term.Poll(wait)
		if err != nil {
			return err
		}
		for _, ev := range events {
			a.handleKey(ev, a.now())
		}
		if a.quit {
			return nil
		}
		if wait > 0 {
			continue
		}

		if a.resizePending {
			if err := a.applyResize(now); err != nil {
				return err
			}
		}
		if err := a.tick(now); err != nil {
			return err
		}
	}
	return nil
}

// applyResize rebuilds everything sized by the grid.
func (a *App) applyResize(now time.Time) error {
	a.resizePending = false
	cols, lines, err := a.term.Size()
	if err != nil {
		return err
	}
	a.cols, a.lines = cols, lines
	a.cloud.Reset(cols, lines, now)
	a.frame = frame.New(cols, lines, a.cloud.Palette().BG)
	if a.densityAuto {
		a.cloud.SetDensity(AutoDensity(a.baseDensity, cols, lines, a.cfg.FullWidth))
	}
	a.cloud.ForceRedraw()
	a.log.Printf("resize %dx%d density %.3f", cols, lines, a.cloud.Density())
	return nil
}

// tick advances the simulation to now, draws when anything changed and
// feeds the work time back into the pacer.
func (a *App) tick(now time.Time) error {
	a.cloud.SetPerfPressure(a.pacer.Pressure())
	a.cloud.SetMaxSimDelta(a.pacer.SimCap())

	begin := a.now()
	a.cloud.Rain(a.frame, now)
	drawn := false
	if a.frame.HasChanges() {
		if err := a.renderer.Draw(a.frame); err != nil {
			return err
		}
		a.frame.ClearDirty()
		drawn = true
	}
	end := a.now()
	work := end.Sub(begin)

	overshoot := a.pacer.Observe(work)
	pressure := a.pacer.Pressure()
	a.stats.Record(work, drawn, overshoot, pressure)
	if stressed := pressure >= glitchPressure; stressed != a.stressed {
		a.stressed = stressed
		a.log.Printf("perf pressure %.2f (work %s)", pressure, work)
	}
	a.pacer.Advance(end)
	return nil
}

// Report writes the perf summary when it was requested.
func (a *App) Report(w io.Writer) error {
	if !a.cfg.PerfStats {
		return nil
	}
	return a.stats.Report(w, a.now())
}

// Cloud returns the simulation.
func (a *App) Cloud() *cloud.Cloud { return a.cloud }
