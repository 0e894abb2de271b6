package main

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/bench"
	"github.com/gogpu/overlay/surface"
)

func TestLODControllerConverges(t *testing.T) {
	levels := []bench.Level{{ID: 0, Name: "near"}, {ID: 1, Name: "far"}}
	c := newLODController(levels, []float64{1, 0.125})
	c.setTarget(levels[1])

	frames := 0
	for ; c.current != levels[1] && frames < 1000; frames++ {
		c.step()
	}
	if c.current != levels[1] {
		t.Fatal("controller never reached the target level")
	}
	if frames < 2 {
		t.Errorf("reached target in %d frames; zoom should ease", frames)
	}
	if c.zoom != 0.125 {
		t.Errorf("zoom = %v, want 0.125", c.zoom)
	}
}

func TestWorldStaysBounded(t *testing.T) {
	w := newWorld(200, 4, 9, []string{"crate"})
	for i := 0; i < 5000; i++ {
		w.step()
	}
	limit := worldSize + 4
	for i, e := range w.entities {
		if e.pos.X < -limit || e.pos.X > limit || e.pos.Y < -limit || e.pos.Y > limit {
			t.Fatalf("entity %d escaped to %v", i, e.pos)
		}
	}
	if w.entities[0].label != "crate" {
		t.Errorf("label = %q, want crate", w.entities[0].label)
	}
}

func TestWorldZeroTeams(t *testing.T) {
	w := newWorld(10, 0, 1, nil)
	for i, e := range w.entities {
		if e.team != 0 {
			t.Errorf("entity %d team = %d, want 0", i, e.team)
		}
	}
}

func TestLabelStyleDistance(t *testing.T) {
	tests := []struct {
		name string
		max  int
		d    float64
		want int
	}{
		{"in range", 500, 42.7, 42},
		{"clamped", 500, 565.2, 500},
		{"negative", 500, -3, 0},
		{"no atlas range", -1, 565.2, 565},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := labelStyle{maxDistance: tt.max}
			if got := st.distance(tt.d); got != tt.want {
				t.Errorf("distance(%v) = %d, want %d", tt.d, got, tt.want)
			}
		})
	}
}

func TestRenderFrameLabelsHitAtlas(t *testing.T) {
	cfg := overlay.DefaultConfig()
	p, err := overlay.New[int](context.Background(), cfg,
		overlay.WithIcons(map[string]image.Image{"marker": markerIcon()}))
	if err != nil {
		t.Fatal(err)
	}
	w := newWorld(2000, 4, 7, cfg.Atlas.Items)
	cam := camera{zoom: 1, width: float64(cfg.View.Width), height: float64(cfg.View.Height)}
	rec := surface.NewCountingRecorder()

	if err := renderFrame(p, w, cam, newLabelStyle(cfg), rec); err != nil {
		t.Fatal(err)
	}
	st := p.Stats()
	if st.Visible == 0 {
		t.Fatal("no visible entities")
	}
	// Every visible entity draws a distance label; icons alone cover
	// at most one in 25.
	if st.Glyphs.AtlasHits < uint64(st.Visible) {
		t.Errorf("atlas hits = %d for %d visible entities; labels missed the atlas",
			st.Glyphs.AtlasHits, st.Visible)
	}
}

func TestTeamPaletteDistinct(t *testing.T) {
	p := teamPalette(6)
	seen := make(map[[3]uint8]bool)
	for _, c := range p {
		k := [3]uint8{c.R, c.G, c.B}
		if seen[k] {
			t.Errorf("duplicate color %v", c)
		}
		seen[k] = true
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, summary{
		report: bench.Report{Levels: []bench.LevelResult{{
			Level: bench.Level{Name: "near"}, AvgMs: 8, AvgFPS: 125,
			Sections: []bench.SectionResult{{Name: "cull", Count: 1200, AvgMs: 0.4}},
		}}},
		frames:  1234,
		elapsed: 3 * time.Second,
	})
	out := buf.String()
	for _, want := range []string{"near", "1,234 frames", "cull", "1,200 calls"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
