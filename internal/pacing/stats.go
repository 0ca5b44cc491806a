package pacing

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 4096

// Recorder accumulates per-tick timings for the perf summary.
type Recorder struct {
	start     time.Time
	targetFPS float64

	frames     uint64
	drawn      uint64
	overshoots uint64

	workSum time.Duration
	workMax time.Duration

	pressureSum float64
	pressureMax float64

	history []float64
}

// NewRecorder starts recording at start.
func NewRecorder(targetFPS float64, start time.Time) *Recorder {
	return &Recorder{start: start, targetFPS: targetFPS}
}

// Record adds one tick.
func (r *Recorder) Record(work time.Duration, drawn bool, overshoot, pressure float64) {
	r.frames++
	if drawn {
		r.drawn++
	}
	if overshoot > 0 {
		r.overshoots++
	}
	r.workSum += work
	r.workMax = max(r.workMax, work)
	r.pressureSum += pressure
	r.pressureMax = math.Max(r.pressureMax, pressure)

	if len(r.history) == historyCapacity {
		copy(r.history, r.history[1:])
		r.history = r.history[:historyCapacity-1]
	}
	r.history = append(r.history, float64(work)/float64(time.Millisecond))
}

// Frames returns the number of recorded ticks.
func (r *Recorder) Frames() uint64 { return r.frames }

// Summary is the aggregate of a recording.
type Summary struct {
	Elapsed        time.Duration
	TargetFPS      float64
	AvgFPS         float64
	Frames         uint64
	DrawnFrames    uint64
	OvershootCount uint64
	AvgWork        time.Duration
	MaxWork        time.Duration
	AvgPressure    float64
	MaxPressure    float64
}

// DrawnPct returns the share of ticks that drew, in percent.
func (s Summary) DrawnPct() float64 { return pct(s.DrawnFrames, s.Frames) }

// OvershootPct returns the share of ticks that overran, in percent.
func (s Summary) OvershootPct() float64 { return pct(s.OvershootCount, s.Frames) }

func pct(n, total uint64) float64 {
	return float64(n) / math.Max(float64(total), 1) * 100
}

// Summary aggregates the recording up to end.
func (r *Recorder) Summary(end time.Time) Summary {
	elapsed := max(end.Sub(r.start), time.Microsecond)
	frames := max(r.frames, 1)
	return Summary{
		Elapsed:        elapsed,
		TargetFPS:      r.targetFPS,
		AvgFPS:         float64(r.frames) / elapsed.Seconds(),
		Frames:         r.frames,
		DrawnFrames:    r.drawn,
		OvershootCount: r.overshoots,
		AvgWork:        r.workSum / time.Duration(frames),
		MaxWork:        r.workMax,
		AvgPressure:    r.pressureSum / float64(frames),
		MaxPressure:    r.pressureMax,
	}
}

// Plot renders the recorded work times as an ASCII chart. It returns an
// empty string with fewer than two samples.
func (r *Recorder) Plot() string {
	if len(r.history) < 2 {
		return ""
	}
	return asciigraph.Plot(r.history,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(2),
		asciigraph.Caption("work ms per tick"))
}

// Report writes the perf summary followed by the work time chart.
func (r *Recorder) Report(w io.Writer, end time.Time) error {
	s := r.Summary(end)
	_, err := fmt.Fprintf(w, `PERF STATS:
  elapsed_s: %.3f
  target_fps: %.3f
  avg_fps: %.3f
  frames: %d
  drawn_frames: %d (%.1f%%)
  avg_work_ms: %.3f
  max_work_ms: %.3f
  overshoot_frames: %d (%.1f%%)
  avg_perf_pressure: %.3f
  max_perf_pressure: %.3f
`,
		s.Elapsed.Seconds(), s.TargetFPS, s.AvgFPS, s.Frames,
		s.DrawnFrames, s.DrawnPct(),
		ms(s.AvgWork), ms(s.MaxWork),
		s.OvershootCount, s.OvershootPct(),
		s.AvgPressure, s.MaxPressure)
	if err != nil {
		return fmt.Errorf("failed to write perf stats: %w", err)
	}
	if plot := r.Plot(); plot != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", plot); err != nil {
			return fmt.Errorf("failed to write perf plot: %w", err)
		}
	}
	return nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
