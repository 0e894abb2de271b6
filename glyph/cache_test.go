package glyph

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
	"github.com/gogpu/overlay/surface"
)

// countingShaper wraps the real shaper and counts Shape calls.
type countingShaper struct {
	inner Shaper
	calls atomic.Int64
}

func (s *countingShaper) Shape(text string, attrs Attributes) (*Run, error) {
	s.calls.Add(1)
	return s.inner.Shape(text, attrs)
}

func newCountingShaper(t testing.TB) *countingShaper {
	t.Helper()
	book, err := DefaultFontBook()
	if err != nil {
		t.Fatalf("DefaultFontBook: %v", err)
	}
	return &countingShaper{inner: NewGoTextShaper(book)}
}

func textPaint(c color.RGBA) *paint.Paint {
	p := paint.New(paint.CategoryText)
	p.Color = c
	return p
}

func masks(rec *surface.Recorder) []surface.Command {
	var out []surface.Command
	for _, c := range rec.Commands() {
		if c.Kind == surface.CmdMask {
			out = append(out, c)
		}
	}
	return out
}

func TestRepeatedLookupShapesOnce(t *testing.T) {
	shaper := newCountingShaper(t)
	cache := New(nil, NewShapedCache(shaper, DefaultShapedConfig()))
	rec := surface.NewRecorder()
	p := textPaint(color.RGBA{R: 255, A: 255})

	for i := 0; i < 10; i++ {
		tier := cache.Draw(rec, "Hello, overlay", geom.Pt(10, 20), p)
		if tier != TierShaped {
			t.Fatalf("draw %d served by %v, want shaped", i, tier)
		}
	}
	if n := shaper.calls.Load(); n != 1 {
		t.Errorf("shaper called %d times, want 1", n)
	}
	ms := masks(rec)
	if len(ms) != 10 {
		t.Fatalf("got %d mask draws, want 10", len(ms))
	}
	for _, m := range ms[1:] {
		if m.Mask != ms[0].Mask {
			t.Fatal("repeated draws must reuse the same cached mask")
		}
	}
	st := cache.Stats()
	if st.ShapedHits != 10 || st.Shaped.Shaped != 1 || st.Shaped.Misses != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestColorOnlyDifferenceReusesGlyph(t *testing.T) {
	shaper := newCountingShaper(t)
	cache := New(nil, NewShapedCache(shaper, DefaultShapedConfig()))
	rec := surface.NewRecorder()

	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	pr, pb := textPaint(red), textPaint(blue)
	pb.Blend = paint.BlendAdd

	cache.Draw(rec, "Target", geom.Pt(0, 20), pr)
	cache.Draw(rec, "Target", geom.Pt(0, 40), pb)

	ms := masks(rec)
	if len(ms) != 2 {
		t.Fatalf("got %d mask draws, want 2", len(ms))
	}
	if ms[0].Mask != ms[1].Mask {
		t.Error("color-only difference must reuse the same glyph")
	}
	if ms[0].Color != red || ms[1].Color != blue {
		t.Errorf("colors = %v, %v; want per-draw colors", ms[0].Color, ms[1].Color)
	}
	if ms[1].Blend != paint.BlendAdd {
		t.Errorf("blend = %v, want BlendAdd applied at draw time", ms[1].Blend)
	}
	if n := shaper.calls.Load(); n != 1 {
		t.Errorf("shaper called %d times, want 1", n)
	}
}

func TestShapeAffectingAttributesAreDistinct(t *testing.T) {
	shaper := newCountingShaper(t)
	cache := New(nil, NewShapedCache(shaper, DefaultShapedConfig()))
	rec := surface.NewRecorder()

	mutate := []func(p *paint.Paint){
		func(p *paint.Paint) {},
		func(p *paint.Paint) { p.TextSize = 20 },
		func(p *paint.Paint) { p.Weight = paint.WeightBold },
		func(p *paint.Paint) { p.Slant = paint.SlantItalic },
		func(p *paint.Paint) { p.ScaleX = 1.5 },
		func(p *paint.Paint) { p.SkewX = 0.2 },
		func(p *paint.Paint) { p.Family = MonoFamily },
	}
	for _, m := range mutate {
		p := textPaint(color.RGBA{A: 255})
		m(p)
		cache.Draw(rec, "Label", geom.Point{}, p)
	}
	if n := shaper.calls.Load(); n != int64(len(mutate)) {
		t.Errorf("shaper called %d times, want %d (one per attribute set)", n, len(mutate))
	}
	if l := cache.Shaped().Len(); l != len(mutate) {
		t.Errorf("Len = %d, want %d", l, len(mutate))
	}
}

func TestAtlasHitSkipsShaper(t *testing.T) {
	shaper := newCountingShaper(t)
	style := AttributesOf(paint.New(paint.CategoryText))
	atlas, err := BuildAtlas(context.Background(), AtlasConfig{
		Styles:      []Attributes{style},
		MaxDistance: 20,
		MaxHeight:   5,
		Items:       []string{"Medkit"},
		Workers:     2,
	}, shaper)
	if err != nil {
		t.Fatalf("BuildAtlas: %v", err)
	}
	// "0m" is both a distance and a height label.
	if want := 21 + 10 + 1; atlas.Len() != want {
		t.Fatalf("atlas Len = %d, want %d", atlas.Len(), want)
	}
	built := shaper.calls.Load()

	cache := New(atlas, NewShapedCache(shaper, DefaultShapedConfig()))
	rec := surface.NewRecorder()
	p := textPaint(color.RGBA{G: 255, A: 255})
	for _, text := range []string{DistanceLabel(7), HeightLabel(-3), HeightLabel(5), "Medkit"} {
		if tier := cache.Draw(rec, text, geom.Pt(5, 5), p); tier != TierAtlas {
			t.Errorf("%q served by %v, want atlas", text, tier)
		}
	}
	if shaper.calls.Load() != built {
		t.Error("atlas hits must not invoke the shaper")
	}
	if len(masks(rec)) != 4 {
		t.Errorf("got %d mask draws, want 4", len(masks(rec)))
	}
	if !cache.Contains(DistanceLabel(20), p) || cache.Contains(DistanceLabel(21), p) {
		t.Error("Contains disagrees with the atlas vocabulary")
	}
}

func TestBuildAtlasCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	atlas, err := BuildAtlas(ctx, AtlasConfig{
		Styles:      []Attributes{{Size: 12}},
		MaxDistance: 100,
	}, newCountingShaper(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if atlas == nil {
		t.Fatal("canceled build must still return the partial atlas")
	}
}

func TestInvalidTextFallsBack(t *testing.T) {
	shaper := newCountingShaper(t)
	cache := New(nil, NewShapedCache(shaper, DefaultShapedConfig()))
	rec := surface.NewRecorder()

	if tier := cache.Draw(rec, "bad\xff", geom.Pt(1, 1), textPaint(color.RGBA{A: 255})); tier != TierFallback {
		t.Fatalf("tier = %v, want fallback", tier)
	}
	if rec.Calls(surface.CmdText) != 1 {
		t.Errorf("fallback text calls = %d, want 1", rec.Calls(surface.CmdText))
	}
	if cache.Shaped().Len() != 0 || shaper.calls.Load() != 0 {
		t.Error("invalid text must not reach the shaper or the cache")
	}
	if m := cache.Measure("bad\xff", nil); m.Width <= 0 {
		t.Errorf("fallback Measure width = %v, want > 0", m.Width)
	}
}

func TestShaperFailureFallsThrough(t *testing.T) {
	errBroken := errors.New("broken shaper")
	shaped := NewShapedCache(ShaperFunc(func(string, Attributes) (*Run, error) {
		return nil, errBroken
	}), DefaultShapedConfig())
	cache := New(nil, shaped)
	rec := surface.NewRecorder()

	if tier := cache.Draw(rec, "x", geom.Point{}, nil); tier != TierFallback {
		t.Errorf("tier = %v, want fallback", tier)
	}
	if shaped.Len() != 0 || shaped.Stats().Failures != 1 {
		t.Errorf("failure left Len=%d Failures=%d", shaped.Len(), shaped.Stats().Failures)
	}
}

func TestEmptyTextDrawsNothing(t *testing.T) {
	cache := New(nil, nil)
	rec := surface.NewRecorder()
	if tier := cache.Draw(rec, "", geom.Point{}, nil); tier != TierNone {
		t.Errorf("tier = %v, want none", tier)
	}
	if rec.TotalCalls() != 0 {
		t.Error("empty text must not draw")
	}
}

func TestShapedEvictsLeastRecentlyUsed(t *testing.T) {
	shaped := NewShapedCache(newCountingShaper(t), ShapedConfig{Capacity: 2})
	key := func(s string) Key {
		k, err := NewKey(s, Attributes{Size: 12})
		if err != nil {
			t.Fatal(err)
		}
		return k
	}
	for _, s := range []string{"a", "b"} {
		if _, err := shaped.Get(key(s)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := shaped.Get(key("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := shaped.Get(key("c")); err != nil {
		t.Fatal(err)
	}
	if _, ok := shaped.Lookup(key("b")); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if _, ok := shaped.Lookup(key("a")); !ok {
		t.Error("touched entry a was evicted")
	}
	if shaped.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", shaped.Stats().Evictions)
	}
}

func TestBeginFrameSweepsStaleEntries(t *testing.T) {
	shaped := NewShapedCache(newCountingShaper(t), ShapedConfig{
		Capacity:      16,
		SweepInterval: 10,
		StaleFrames:   5,
	})
	cache := New(nil, shaped)
	rec := surface.NewCountingRecorder()
	p := textPaint(color.RGBA{A: 255})

	cache.Draw(rec, "stale", geom.Point{}, p)
	swept := 0
	for f := 1; f <= 10; f++ {
		swept += cache.BeginFrame()
		cache.Draw(rec, "hot", geom.Point{}, p)
	}
	if swept != 1 {
		t.Errorf("swept %d entries, want 1", swept)
	}
	if cache.Contains("stale", p) {
		t.Error("stale entry survived the sweep")
	}
	if !cache.Contains("hot", p) {
		t.Error("entry used every frame was swept")
	}
}

func TestConcurrentMissesShapeOnce(t *testing.T) {
	shaper := newCountingShaper(t)
	shaped := NewShapedCache(shaper, DefaultShapedConfig())
	key, err := NewKey("concurrent", Attributes{Size: 16})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*Glyph, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := shaped.Get(key)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = g
		}(i)
	}
	wg.Wait()

	if n := shaper.calls.Load(); n != 1 {
		t.Errorf("shaper called %d times, want 1", n)
	}
	for _, g := range results[1:] {
		if g != results[0] {
			t.Fatal("concurrent callers received different glyphs")
		}
	}
}

func TestAlignedAndCenteredPlacement(t *testing.T) {
	cache := New(nil, NewShapedCache(newCountingShaper(t), DefaultShapedConfig()))
	p := textPaint(color.RGBA{A: 255})
	w := float64(cache.Measure("Aligned", p).Width)
	if w <= 0 {
		t.Fatalf("Measure width = %v", w)
	}

	at := geom.Pt(100, 50)
	xs := map[paint.Align]float64{}
	for _, a := range []paint.Align{paint.AlignLeft, paint.AlignCenter, paint.AlignRight} {
		rec := surface.NewRecorder()
		cache.DrawAligned(rec, "Aligned", at, a, p)
		xs[a] = masks(rec)[0].At.X
	}
	if d := xs[paint.AlignLeft] - xs[paint.AlignRight]; abs(d-w) > 1e-3 {
		t.Errorf("left-right shift = %v, want width %v", d, w)
	}
	if d := xs[paint.AlignLeft] - xs[paint.AlignCenter]; abs(d-w/2) > 1e-3 {
		t.Errorf("left-center shift = %v, want %v", d, w/2)
	}

	rec := surface.NewRecorder()
	cache.DrawCentered(rec, "Aligned", at, p)
	if x := masks(rec)[0].At.X; abs(x-xs[paint.AlignCenter]) > 1e-3 {
		t.Errorf("DrawCentered x = %v, want %v", x, xs[paint.AlignCenter])
	}
}

func TestDrawOutlined(t *testing.T) {
	cache := New(nil, NewShapedCache(newCountingShaper(t), DefaultShapedConfig()))
	rec := surface.NewRecorder()
	fill := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outline := color.RGBA{A: 255}

	cache.DrawOutlined(rec, "Boss", geom.Pt(10, 30), nil, fill, outline, 1)
	ms := masks(rec)
	if len(ms) != 9 {
		t.Fatalf("got %d mask draws, want 8 outline + 1 fill", len(ms))
	}
	for _, m := range ms[:8] {
		if m.Color != outline {
			t.Errorf("outline pass color = %v", m.Color)
		}
	}
	if last := ms[8]; last.Color != fill {
		t.Errorf("fill must be drawn last, got %v", last.Color)
	}
}

func TestDrawIconNearestSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	atlas, err := BuildAtlas(context.Background(), AtlasConfig{
		MaxDistance: -1,
		MaxHeight:   -1,
		Icons:       map[string]image.Image{"skull": src},
		IconSizes:   []int{16, 32},
	}, newCountingShaper(t))
	if err != nil {
		t.Fatal(err)
	}
	if atlas.Icons() != 2 {
		t.Fatalf("Icons = %d, want 2", atlas.Icons())
	}
	cache := New(atlas, nil)
	rec := surface.NewRecorder()

	if !cache.DrawIcon(rec, "skull", 30, geom.Pt(1, 2), nil) {
		t.Fatal("DrawIcon failed for a known icon")
	}
	img := rec.Commands()[0].Image
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("icon size = %v, want 32x16 (nearest size, aspect kept)", b.Size())
	}
	if cache.DrawIcon(rec, "unknown", 16, geom.Point{}, nil) {
		t.Error("DrawIcon succeeded for an unknown icon")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func BenchmarkDrawShapedHit(b *testing.B) {
	cache := New(nil, NewShapedCache(newCountingShaper(b), DefaultShapedConfig()))
	rec := surface.NewCountingRecorder()
	p := textPaint(color.RGBA{A: 255})
	cache.Draw(rec, "benchmark label", geom.Point{}, p)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Draw(rec, "benchmark label", geom.Point{}, p)
	}
}
