package profile

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWindow is the number of recent samples behind RecentAvg.
const DefaultWindow = 60

// Option configures a Profiler.
type Option func(*Profiler)

// WithEnabled sets the initial enabled state. Profilers start enabled.
func WithEnabled(enabled bool) Option {
	return func(p *Profiler) {
		p.enabled.Store(enabled)
	}
}

// WithWindow sets the rolling window size used for recent averages.
func WithWindow(n int) Option {
	return func(p *Profiler) {
		if n > 0 {
			p.window = n
		}
	}
}

// WithClock replaces the monotonic clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// Profiler records timings of named code sections and of whole frames.
//
// A nil or disabled Profiler is inert: every method is a cheap no-op, so call
// sites never need restructuring to turn profiling off.
//
//	defer prof.BeginSection("cull").End()
//
// Profiler is safe for concurrent use. Sections may be recorded from any
// goroutine; each section accumulates under its own lock and the registry
// supports concurrent insert-if-absent.
type Profiler struct {
	enabled atomic.Bool
	window  int
	now     func() time.Time

	sections sync.Map // string -> *accumulator

	frameMu   sync.Mutex
	frame     *accumulator
	lastFrame time.Time
}

// New creates a profiler.
func New(opts ...Option) *Profiler {
	p := &Profiler{
		window: DefaultWindow,
		now:    time.Now,
	}
	p.enabled.Store(true)
	for _, opt := range opts {
		opt(p)
	}
	p.frame = newAccumulator("frame", p.window)
	return p
}

// SetEnabled turns recording on or off. Collected statistics are kept.
func (p *Profiler) SetEnabled(enabled bool) {
	if p == nil {
		return
	}
	p.enabled.Store(enabled)
	if !enabled {
		p.frameMu.Lock()
		p.lastFrame = time.Time{}
		p.frameMu.Unlock()
	}
}

// Enabled reports whether the profiler records.
func (p *Profiler) Enabled() bool {
	return p != nil && p.enabled.Load()
}

// Window returns the rolling window size.
func (p *Profiler) Window() int {
	if p == nil {
		return 0
	}
	return p.window
}

// BeginFrame marks a frame boundary. The time since the previous boundary is
// recorded as the frame time.
func (p *Profiler) BeginFrame() {
	if !p.Enabled() {
		return
	}
	now := p.now()
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	if !p.lastFrame.IsZero() {
		p.frame.add(now.Sub(p.lastFrame))
	}
	p.lastFrame = now
}

// Section is a running timing token. The zero Section is a no-op.
type Section struct {
	p     *Profiler
	name  string
	start time.Time
}

// BeginSection starts timing name. Call End on the returned token.
func (p *Profiler) BeginSection(name string) Section {
	if !p.Enabled() {
		return Section{}
	}
	return Section{p: p, name: name, start: p.now()}
}

// End records the time elapsed since BeginSection.
func (s Section) End() {
	if s.p == nil {
		return
	}
	s.p.Record(s.name, s.p.now().Sub(s.start))
}

// Record adds one sample for name.
func (p *Profiler) Record(name string, d time.Duration) {
	if !p.Enabled() {
		return
	}
	if d < 0 {
		d = 0
	}
	p.section(name).add(d)
}

func (p *Profiler) section(name string) *accumulator {
	if v, ok := p.sections.Load(name); ok {
		return v.(*accumulator)
	}
	v, _ := p.sections.LoadOrStore(name, newAccumulator(name, p.window))
	return v.(*accumulator)
}

// Stats returns a snapshot of every section, most expensive average first.
func (p *Profiler) Stats() []SectionStats {
	if p == nil {
		return nil
	}
	var out []SectionStats
	p.sections.Range(func(_, v any) bool {
		out = append(out, v.(*accumulator).snapshot())
		return true
	})
	slices.SortFunc(out, func(a, b SectionStats) int {
		if c := cmp.Compare(b.Avg, a.Avg); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Section returns the statistics of one section.
func (p *Profiler) Section(name string) (SectionStats, bool) {
	if p == nil {
		return SectionStats{}, false
	}
	v, ok := p.sections.Load(name)
	if !ok {
		return SectionStats{}, false
	}
	return v.(*accumulator).snapshot(), true
}

// Frame returns frame-time statistics.
func (p *Profiler) Frame() FrameStats {
	if p == nil {
		return FrameStats{}
	}
	s := p.frame.snapshot()
	fs := FrameStats{
		Frames:    s.Count,
		Last:      s.Last,
		Avg:       s.Avg,
		Min:       s.Min,
		Max:       s.Max,
		RecentAvg: s.RecentAvg,
	}
	if s.RecentAvg > 0 {
		fs.FPS = float64(time.Second) / float64(s.RecentAvg)
	}
	return fs
}

// Reset discards every section and the frame history.
func (p *Profiler) Reset() {
	if p == nil {
		return
	}
	p.sections.Clear()
	p.frameMu.Lock()
	p.frame.reset()
	p.lastFrame = time.Time{}
	p.frameMu.Unlock()
}
