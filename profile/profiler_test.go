package profile

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	ns atomic.Int64
}

func (c *fakeClock) now() time.Time          { return time.Unix(0, c.ns.Load()) }
func (c *fakeClock) advance(d time.Duration) { c.ns.Add(int64(d)) }

func TestSectionTiming(t *testing.T) {
	clk := &fakeClock{}
	p := New(WithClock(clk.now), WithWindow(2))

	for _, d := range []time.Duration{1, 3, 8} {
		s := p.BeginSection("cull")
		clk.advance(d * time.Millisecond)
		s.End()
	}

	st, ok := p.Section("cull")
	if !ok {
		t.Fatal("section not recorded")
	}
	want := SectionStats{
		Name:      "cull",
		Count:     3,
		Total:     12 * time.Millisecond,
		Min:       time.Millisecond,
		Max:       8 * time.Millisecond,
		Last:      8 * time.Millisecond,
		Avg:       4 * time.Millisecond,
		RecentAvg: 5500 * time.Microsecond,
	}
	if st != want {
		t.Errorf("stats = %+v\nwant    %+v", st, want)
	}
}

func TestStatsSortedByAverage(t *testing.T) {
	p := New()
	p.Record("cheap", time.Millisecond)
	p.Record("expensive", 10*time.Millisecond)
	p.Record("medium", 5*time.Millisecond)

	got := p.Stats()
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
	}
	want := []string{"expensive", "medium", "cheap"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestDisabledIsInert(t *testing.T) {
	p := New(WithEnabled(false))
	p.BeginFrame()
	p.BeginSection("x").End()
	p.Record("y", time.Second)
	if len(p.Stats()) != 0 || p.Frame().Frames != 0 {
		t.Error("disabled profiler recorded data")
	}

	allocs := testing.AllocsPerRun(100, func() {
		p.BeginSection("hot").End()
	})
	if allocs != 0 {
		t.Errorf("disabled section allocates %v times", allocs)
	}

	var nilProf *Profiler
	nilProf.BeginFrame()
	nilProf.BeginSection("x").End()
	nilProf.Record("x", 1)
	nilProf.Reset()
	if nilProf.Enabled() || nilProf.Stats() != nil {
		t.Error("nil profiler must be a no-op")
	}
}

func TestToggle(t *testing.T) {
	p := New()
	p.Record("a", time.Millisecond)
	p.SetEnabled(false)
	p.Record("a", time.Millisecond)
	p.SetEnabled(true)
	if st, _ := p.Section("a"); st.Count != 1 {
		t.Errorf("Count = %d, want 1", st.Count)
	}
}

func TestFrameStats(t *testing.T) {
	clk := &fakeClock{}
	p := New(WithClock(clk.now))
	for i := 0; i < 5; i++ {
		p.BeginFrame()
		clk.advance(16 * time.Millisecond)
	}
	f := p.Frame()
	if f.Frames != 4 {
		t.Errorf("Frames = %d, want 4 intervals", f.Frames)
	}
	if f.Avg != 16*time.Millisecond || f.RecentAvg != 16*time.Millisecond {
		t.Errorf("Avg = %v RecentAvg = %v, want 16ms", f.Avg, f.RecentAvg)
	}
	if f.FPS < 62 || f.FPS > 63 {
		t.Errorf("FPS = %v, want 62.5", f.FPS)
	}
}

func TestReset(t *testing.T) {
	p := New()
	p.Record("a", time.Millisecond)
	p.BeginFrame()
	p.BeginFrame()
	p.Reset()
	if len(p.Stats()) != 0 || p.Frame().Frames != 0 {
		t.Error("Reset left data behind")
	}
}

func TestConcurrentRecording(t *testing.T) {
	const (
		workers = 8
		iters   = 1000
	)
	p := New()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				p.Record("shared", time.Microsecond)
				p.Record("worker"+strconv.Itoa(w%2), time.Microsecond)
				if i%100 == 0 {
					_ = p.Stats()
				}
			}
		}(w)
	}
	wg.Wait()

	st, _ := p.Section("shared")
	if st.Count != workers*iters {
		t.Errorf("shared Count = %d, want %d", st.Count, workers*iters)
	}
	if len(p.Stats()) != 3 {
		t.Errorf("got %d sections, want 3", len(p.Stats()))
	}
}

func BenchmarkSection(b *testing.B) {
	p := New()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.BeginSection("bench").End()
	}
}

func BenchmarkSectionDisabled(b *testing.B) {
	p := New(WithEnabled(false))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.BeginSection("bench").End()
	}
}
