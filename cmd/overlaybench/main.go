// Command overlaybench runs the automated multi-level stress benchmark
// against a synthetic world of moving entities.
//
// Usage:
//
//	overlaybench [-config overlay.toml] [-entities 5000] [-export report.yaml] [-snapshot frame.png]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/bench"
	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/glyph"
	"github.com/gogpu/overlay/surface"
)

var background = color.RGBA{R: 16, G: 20, B: 28, A: 255}

type options struct {
	configPath string
	entities   int
	teams      int
	seed       uint64
	export     string
	snapshot   string
	record     bool
	maxFrames  int
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML configuration file")
	flag.IntVar(&opts.entities, "entities", 5000, "number of simulated entities")
	flag.IntVar(&opts.teams, "teams", 6, "number of entity colors")
	flag.Uint64Var(&opts.seed, "seed", 1, "world random seed")
	flag.StringVar(&opts.export, "export", "", "report file (.json, .yaml); overrides the config")
	flag.StringVar(&opts.snapshot, "snapshot", "", "write the last frame to this PNG file")
	flag.BoolVar(&opts.record, "record", false, "count draw calls instead of rasterizing")
	flag.IntVar(&opts.maxFrames, "max-frames", 200000, "abort the run after this many frames")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("overlaybench: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.verbose {
		overlay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := overlay.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = overlay.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.export != "" {
		cfg.Bench.ExportPath = opts.export
	}
	if len(cfg.Bench.Levels) == 0 {
		return errors.New("no benchmark levels configured")
	}

	setupStart := time.Now()
	p, err := overlay.New[int](ctx, cfg, overlay.WithIcons(map[string]image.Image{"marker": markerIcon()}))
	if err != nil {
		return err
	}
	setup := time.Since(setupStart)

	bcfg := cfg.BenchConfig()
	runner, err := bench.NewRunner(bcfg, p.Profiler())
	if err != nil {
		return err
	}

	zooms := make([]float64, len(cfg.Bench.Levels))
	for i, l := range cfg.Bench.Levels {
		zooms[i] = l.Zoom
	}
	w := newWorld(opts.entities, opts.teams, opts.seed, cfg.Atlas.Items)
	style := newLabelStyle(cfg)
	lod := newLODController(bcfg.Levels, zooms)
	cam := camera{width: float64(cfg.View.Width), height: float64(cfg.View.Height)}

	var surf surface.Surface
	img := surface.NewImageSurface(cfg.View.Width, cfg.View.Height)
	if opts.record {
		surf = surface.NewCountingRecorder()
	} else {
		surf = img
	}

	runner.Start()
	if l, ok := runner.Level(); ok {
		lod.setTarget(l)
	}
	runStart := time.Now()
	frames := 0
	for ; ; frames++ {
		if err := ctx.Err(); err != nil {
			runner.Cancel()
			return fmt.Errorf("interrupted after %d frames: %w", frames, err)
		}
		if frames >= opts.maxFrames {
			runner.Cancel()
			return fmt.Errorf("run did not complete within %d frames", opts.maxFrames)
		}

		start := time.Now()
		lod.step()
		cam.zoom = lod.zoom
		if err := renderFrame(p, w, cam, style, surf); err != nil {
			return err
		}
		ms := float64(time.Since(start)) / float64(time.Millisecond)

		next, ok := runner.Update(ms, lod.current)
		if !ok {
			frames++
			break
		}
		lod.setTarget(next)
	}

	printReport(os.Stdout, summary{
		report:   runner.Report(),
		stats:    p.Stats(),
		frames:   frames,
		setup:    setup,
		elapsed:  time.Since(runStart),
		exported: cfg.Bench.ExportPath,
		export:   runner.ExportErr(),
	})

	if opts.snapshot != "" {
		if opts.record {
			if err := renderFrame(p, w, cam, style, img); err != nil {
				return err
			}
		}
		if err := img.SavePNG(opts.snapshot); err != nil {
			return err
		}
		fmt.Printf("snapshot written to %s\n", opts.snapshot)
	}
	return nil
}

// renderFrame draws one overlay frame: markers, headings and objective
// rings through the batcher, labels and icons through the glyph cache.
func renderFrame(p *overlay.Pipeline[int], w *world, cam camera, style labelStyle, s surface.Surface) error {
	tr := cam.transform()
	p.Rebuild(w.step(), tr)
	p.BeginFrame()
	if img, ok := s.(*surface.ImageSurface); ok {
		img.Clear(background)
	}

	paints := p.Paints()
	b := p.Batcher()
	glyphs := p.Glyphs()
	center := geom.Pt(cam.width/2, cam.height/2)
	labels := cam.zoom >= 0.5

	for _, id := range p.CullView() {
		e := &w.entities[id]
		pos := tr(e.pos)
		team := w.palette[e.team]

		marker := paints.GetStroke()
		marker.Color = team
		marker.StrokeWidth = 4
		b.AddPointPaint(pos, marker)
		paints.ReturnStroke(marker)

		heading := paints.GetStroke()
		heading.Color = color.RGBA{R: team.R, G: team.G, B: team.B, A: 160}
		tip := geom.Pt(pos.X+e.vel.X*6*cam.zoom, pos.Y+e.vel.Y*6*cam.zoom)
		b.AddLinePaint(geom.Segment{A: pos, B: tip}, heading)
		paints.ReturnStroke(heading)

		if id%50 == 0 {
			ring := paints.GetStroke()
			ring.StrokeWidth = 2
			b.AddCirclePaint(geom.Circle{Center: pos, Radius: 12}, ring)
			paints.ReturnStroke(ring)
		}

		if !labels {
			continue
		}
		text := paints.GetText()
		text.TextSize = style.size
		dist := style.distance(e.pos.Distance(geom.Point{}) / 10)
		glyphs.DrawCentered(s, glyph.DistanceLabel(dist), geom.Pt(pos.X, pos.Y+14), text)
		if id%3 == 0 {
			glyphs.Draw(s, glyph.HeightLabel(e.height), geom.Pt(pos.X+8, pos.Y-6), text)
		}
		if e.label != "" {
			glyphs.DrawOutlined(s, e.label, geom.Pt(pos.X+8, pos.Y+4), text, team, background, 1)
		}
		if id%25 == 0 {
			glyphs.DrawIcon(s, "marker", 16, geom.Pt(pos.X-8, pos.Y-28), text)
		}
		paints.ReturnText(text)
	}

	text := paints.GetText()
	glyphs.Draw(s, fmt.Sprintf("zoom %.2f", cam.zoom), geom.Pt(center.X-40, 20), text)
	paints.ReturnText(text)

	return p.EndFrame(s)
}
