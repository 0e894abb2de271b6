package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/muesli/termenv"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/bench"
	"github.com/gogpu/overlay/glyph"
)

// maxSections is how many of the costliest sections are listed per level.
const maxSections = 3

type summary struct {
	report   bench.Report
	stats    overlay.Stats
	frames   int
	setup    time.Duration
	elapsed  time.Duration
	exported string
	export   error
}

func printReport(w io.Writer, s summary) {
	out := termenv.NewOutput(w)
	bold := func(v string) string { return out.String(v).Bold().String() }

	fmt.Fprintln(w, bold("overlay benchmark"))
	fmt.Fprintf(w, "  %s frames in %s (setup %s)\n\n",
		humanize.Comma(int64(s.frames)),
		durafmt.Parse(s.elapsed).LimitFirstN(2),
		durafmt.Parse(s.setup).LimitFirstN(2))

	fmt.Fprintf(w, "  %-10s %9s %9s %9s %9s %9s\n", "level", "avg ms", "avg fps", "1% low", "0.1% low", "max ms")
	for _, l := range s.report.Levels {
		fmt.Fprintf(w, "  %-10s %9.2f %s %s %s %9.2f\n",
			l.Level.String(), l.AvgMs,
			fpsCell(out, l.AvgFPS), fpsCell(out, l.Low1FPS), fpsCell(out, l.Low01FPS),
			l.MaxMs)
		for i, sec := range l.Sections {
			if i == maxSections {
				break
			}
			fmt.Fprintf(w, "  %-10s   %-8s %7.3f ms avg over %s calls\n",
				"", sec.Name, sec.AvgMs, humanize.Comma(int64(sec.Count)))
		}
	}

	st := s.stats
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("services"))
	fmt.Fprintf(w, "  entities   %s indexed, %s visible in the last frame\n",
		humanize.Comma(int64(st.Indexed)), humanize.Comma(int64(st.Visible)))
	fmt.Fprintf(w, "  batching   %s primitives in %s calls, %s style switches\n",
		humanize.Comma(int64(st.Batch.Drawn)), humanize.Comma(int64(st.Batch.Calls)),
		humanize.Comma(int64(st.Batch.StyleSwitches)))
	fmt.Fprintf(w, "  text       %s\n", glyphLine(st.Glyphs))
	fmt.Fprintf(w, "  paints     %s allocated for %s categories\n",
		humanize.Comma(int64(totalAllocated(st))), humanize.Comma(int64(len(st.Paints))))

	switch {
	case s.exported == "":
	case s.export != nil:
		fmt.Fprintf(w, "\n%s %v\n", out.String("export failed:").Foreground(out.Color("1")).String(), s.export)
	default:
		fmt.Fprintf(w, "\nreport written to %s\n", s.exported)
	}
}

// fpsCell colors a frame rate: green at 60 and above, yellow at 30, red below.
func fpsCell(out *termenv.Output, fps float64) string {
	c := "1"
	switch {
	case fps >= 60:
		c = "2"
	case fps >= 30:
		c = "3"
	}
	return out.String(fmt.Sprintf("%9.1f", fps)).Foreground(out.Color(c)).String()
}

func glyphLine(g glyph.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "atlas %s entries (%s), ", humanize.Comma(int64(g.AtlasEntries)), humanize.Bytes(uint64(g.AtlasBytes)))
	fmt.Fprintf(&b, "hits atlas %s / shaped %s / fallback %s, ",
		humanize.Comma(int64(g.AtlasHits)), humanize.Comma(int64(g.ShapedHits)), humanize.Comma(int64(g.Fallbacks)))
	fmt.Fprintf(&b, "shaped %s, evicted %s", humanize.Comma(int64(g.Shaped.Shaped)),
		humanize.Comma(int64(g.Shaped.Evictions+g.Shaped.Swept)))
	return b.String()
}

func totalAllocated(st overlay.Stats) int {
	n := 0
	for _, c := range st.Paints {
		n += int(c.Allocated)
	}
	return n
}
