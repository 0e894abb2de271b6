package bench

import (
	"math"
	"sync"
	"time"

	"github.com/gogpu/overlay/internal/logging"
	"github.com/gogpu/overlay/profile"
)

// State is the benchmark phase.
type State uint8

const (
	// StateIdle means no run is in progress.
	StateIdle State = iota
	// StateZooming waits for the settle time and for the caller to reach
	// the target level.
	StateZooming
	// StateWarmingUp renders and discards frames.
	StateWarmingUp
	// StateSampling records frame times.
	StateSampling
	// StateComplete means every level has a result.
	StateComplete
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateZooming:
		return "zooming"
	case StateWarmingUp:
		return "warming up"
	case StateSampling:
		return "sampling"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Running reports whether s is an in-progress phase.
func (s State) Running() bool {
	return s == StateZooming || s == StateWarmingUp || s == StateSampling
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the clock used for settle time, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOnComplete registers a callback invoked with the report when the last
// level finishes. It runs on the goroutine calling Update.
func WithOnComplete(fn func(Report)) Option {
	return func(r *Runner) {
		r.onComplete = fn
	}
}

// Runner drives an automated multi-level stress test.
//
// The runner does not control rendering. The caller reports every rendered
// frame through Update and renders at the level Update returns:
//
//	Idle -> Zooming(i) -> WarmingUp -> Sampling -> Zooming(i+1) ... -> Complete
//
// Runner is safe for concurrent use; Cancel takes effect between frames.
type Runner struct {
	cfg        Config
	prof       *profile.Profiler
	now        func() time.Time
	onComplete func(Report)

	mu         sync.Mutex
	state      State
	index      int
	phaseStart time.Time
	runStart   time.Time
	frames     int
	samples    []float64
	results    []LevelResult
	exportErr  error
}

// NewRunner creates a runner. prof may be nil, in which case results carry
// no section breakdown.
func NewRunner(cfg Config, prof *profile.Profiler, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Levels = append([]Level(nil), cfg.Levels...)
	r := &Runner{
		cfg:  cfg,
		prof: prof,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the runner configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Start begins a run at the first level. It is a no-op returning false if a
// run is already in progress.
func (r *Runner) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Running() {
		logging.Logger().Info("bench: start ignored, run in progress", "state", r.state.String())
		return false
	}
	r.results = r.results[:0]
	r.samples = make([]float64, 0, min(r.cfg.SampleFrames, 1<<14))
	r.exportErr = nil
	r.runStart = r.now()
	r.enterZoomLocked(0)
	logging.Logger().Info("bench: started", "levels", len(r.cfg.Levels))
	return true
}

// Cancel abandons the current run and returns to Idle. Completed level
// results are kept.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Running() {
		logging.Logger().Info("bench: canceled", "level", r.cfg.Levels[r.index].String())
	}
	r.state = StateIdle
	r.frames = 0
	r.samples = r.samples[:0]
}

// Update reports one rendered frame and the level it was rendered at. It
// returns the level the caller should render next, or false when no run is
// in progress.
func (r *Runner) Update(frameTimeMs float64, current Level) (Level, bool) {
	r.mu.Lock()

	switch r.state {
	case StateZooming:
		target := r.cfg.Levels[r.index]
		if r.now().Sub(r.phaseStart) >= r.cfg.SettleTime && current.ID == target.ID {
			r.enterWarmupLocked()
		}

	case StateWarmingUp:
		r.frames++
		if r.frames >= r.cfg.WarmupFrames {
			r.enterSamplingLocked()
		}

	case StateSampling:
		if math.IsNaN(frameTimeMs) || math.IsInf(frameTimeMs, 0) || frameTimeMs < 0 {
			logging.Logger().Debug("bench: invalid frame time ignored", "ms", frameTimeMs)
			break
		}
		r.samples = append(r.samples, frameTimeMs)
		if len(r.samples) >= r.cfg.SampleFrames {
			r.finishLevelLocked()
		}

	default:
		r.mu.Unlock()
		return Level{}, false
	}

	if r.state == StateComplete {
		report := r.reportLocked()
		cb := r.onComplete
		r.mu.Unlock()
		r.export(report)
		if cb != nil {
			cb(report)
		}
		return Level{}, false
	}
	level := r.cfg.Levels[r.index]
	r.mu.Unlock()
	return level, true
}

// State returns the current phase.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Level returns the target level of a run in progress.
func (r *Runner) Level() (Level, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.Running() {
		return Level{}, false
	}
	return r.cfg.Levels[r.index], true
}

// Progress returns the completed fraction of the run in [0, 1], counting
// warmup and sample frames.
func (r *Runner) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StateIdle:
		return 0
	case StateComplete:
		return 1
	}
	perLevel := r.cfg.WarmupFrames + r.cfg.SampleFrames
	done := r.index * perLevel
	switch r.state {
	case StateWarmingUp:
		done += r.frames
	case StateSampling:
		done += r.cfg.WarmupFrames + len(r.samples)
	}
	return float64(done) / float64(perLevel*len(r.cfg.Levels))
}

// Results returns a copy of the per-level results collected so far.
func (r *Runner) Results() []LevelResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LevelResult(nil), r.results...)
}

// Report returns the results as an exportable document.
func (r *Runner) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reportLocked()
}

// ExportErr returns the error of the last automatic export, if any.
func (r *Runner) ExportErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exportErr
}

func (r *Runner) enterZoomLocked(i int) {
	r.index = i
	r.state = StateZooming
	r.phaseStart = r.now()
	r.frames = 0
	logging.Logger().Debug("bench: zooming", "level", r.cfg.Levels[i].String())
}

func (r *Runner) enterWarmupLocked() {
	r.state = StateWarmingUp
	r.frames = 0
	if r.cfg.WarmupFrames == 0 {
		r.enterSamplingLocked()
	}
}

func (r *Runner) enterSamplingLocked() {
	r.state = StateSampling
	r.frames = 0
	r.samples = r.samples[:0]
	r.prof.Reset()
}

func (r *Runner) finishLevelLocked() {
	level := r.cfg.Levels[r.index]
	res := computeResult(level, r.samples, r.prof.Stats())
	r.results = append(r.results, res)
	logging.Logger().Info("bench: level complete",
		"level", level.String(), "avg_ms", res.AvgMs, "low1_ms", res.Low1Ms)

	if r.index+1 < len(r.cfg.Levels) {
		r.enterZoomLocked(r.index + 1)
		return
	}
	r.state = StateComplete
}

func (r *Runner) reportLocked() Report {
	return Report{
		Started:  r.runStart,
		Duration: r.now().Sub(r.runStart),
		Warmup:   r.cfg.WarmupFrames,
		Samples:  r.cfg.SampleFrames,
		Levels:   append([]LevelResult(nil), r.results...),
	}
}

// export writes the report to ExportPath. Failures are logged and recorded;
// the in-memory results are never discarded.
func (r *Runner) export(report Report) {
	if r.cfg.ExportPath == "" {
		return
	}
	err := report.Export(r.cfg.ExportPath)
	if err != nil {
		logging.Logger().Warn("bench: export failed", "path", r.cfg.ExportPath, "err", err)
	} else {
		logging.Logger().Info("bench: report exported", "path", r.cfg.ExportPath)
	}
	r.mu.Lock()
	r.exportErr = err
	r.mu.Unlock()
}
