package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
)

var _ Surface = (*Recorder)(nil)

func TestRecorderCopiesBuffers(t *testing.T) {
	r := NewRecorder()
	buf := []geom.Point{geom.Pt(1, 2), geom.Pt(3, 4)}
	key := paint.StyleKey{Color: color.RGBA{R: 255, A: 255}}

	r.DrawPoints(buf, key)
	buf[0] = geom.Pt(100, 100)

	cmds := r.Commands()
	if len(cmds) != 1 {
		t.Fatalf("len(Commands) = %d, want 1", len(cmds))
	}
	if cmds[0].Points[0] != geom.Pt(1, 2) {
		t.Errorf("recorded point = %v, recorder must copy the caller's buffer", cmds[0].Points[0])
	}
	if cmds[0].Style != key {
		t.Errorf("Style = %+v, want %+v", cmds[0].Style, key)
	}
}

func TestRecorderCounts(t *testing.T) {
	for _, tt := range []struct {
		name string
		r    *Recorder
	}{
		{"keeping", NewRecorder()},
		{"counting", NewCountingRecorder()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.r
			r.DrawPoints(make([]geom.Point, 3), paint.StyleKey{})
			r.DrawLines(make([]geom.Segment, 5), paint.StyleKey{})
			r.DrawLines(make([]geom.Segment, 2), paint.StyleKey{})
			r.DrawCircle(geom.Circle{Radius: 4}, paint.StyleKey{})
			r.DrawMask(image.NewAlpha(image.Rect(0, 0, 2, 2)), geom.Point{}, color.RGBA{}, paint.BlendSourceOver)
			r.DrawText("hi", geom.Point{}, paint.TextStyle{})

			checks := []struct {
				kind         CommandKind
				calls, prims int
			}{
				{CmdPoints, 1, 3},
				{CmdLines, 2, 7},
				{CmdCircle, 1, 1},
				{CmdMask, 1, 1},
				{CmdImage, 0, 0},
				{CmdText, 1, 1},
			}
			for _, c := range checks {
				if got := r.Calls(c.kind); got != c.calls {
					t.Errorf("Calls(%v) = %d, want %d", c.kind, got, c.calls)
				}
				if got := r.Primitives(c.kind); got != c.prims {
					t.Errorf("Primitives(%v) = %d, want %d", c.kind, got, c.prims)
				}
			}
			if got := r.TotalCalls(); got != 6 {
				t.Errorf("TotalCalls = %d, want 6", got)
			}

			r.Reset()
			if r.TotalCalls() != 0 || len(r.Commands()) != 0 {
				t.Error("Reset did not clear the recorder")
			}
		})
	}
}

func TestCountingRecorderKeepsNothing(t *testing.T) {
	r := NewCountingRecorder()
	r.DrawCircle(geom.Circle{Radius: 1}, paint.StyleKey{})
	if len(r.Commands()) != 0 {
		t.Errorf("counting recorder kept %d commands", len(r.Commands()))
	}
}

func TestCommandKindString(t *testing.T) {
	if CmdLines.String() != "lines" {
		t.Errorf("CmdLines.String() = %q", CmdLines.String())
	}
	if CommandKind(200).String() != "unknown" {
		t.Errorf("out-of-range kind = %q", CommandKind(200).String())
	}
	if NewRecorder().Calls(CommandKind(200)) != 0 {
		t.Error("Calls on an out-of-range kind must be 0")
	}
}
