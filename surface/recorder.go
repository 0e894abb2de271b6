// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/gogpu/overlay/geom"
	"github.com/gogpu/overlay/paint"
)

// CommandKind identifies the primitive a recorded command drew.
type CommandKind uint8

const (
	// CmdPoints is a DrawPoints call.
	CmdPoints CommandKind = iota
	// CmdLines is a DrawLines call.
	CmdLines
	// CmdCircle is a DrawCircle call.
	CmdCircle
	// CmdMask is a DrawMask call.
	CmdMask
	// CmdImage is a DrawImage call.
	CmdImage
	// CmdText is a DrawText call.
	CmdText

	numCommandKinds
)

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case CmdPoints:
		return "points"
	case CmdLines:
		return "lines"
	case CmdCircle:
		return "circle"
	case CmdMask:
		return "mask"
	case CmdImage:
		return "image"
	case CmdText:
		return "text"
	default:
		return "unknown"
	}
}

// Command is one recorded draw call. Only the fields relevant to Kind are set.
type Command struct {
	Kind  CommandKind
	Style paint.StyleKey

	Points []geom.Point
	Lines  []geom.Segment
	Circle geom.Circle

	At    geom.Point
	Mask  *image.Alpha
	Image image.Image
	Color color.RGBA
	Blend paint.BlendMode

	Text      string
	TextStyle paint.TextStyle
}

// Primitives returns how many primitives the command drew.
func (c *Command) Primitives() int {
	switch c.Kind {
	case CmdPoints:
		return len(c.Points)
	case CmdLines:
		return len(c.Lines)
	default:
		return 1
	}
}

// Recorder is a Surface that records every call instead of drawing.
// It is used by tests and by the benchmark tool to count submissions.
//
// Recorder copies point and segment slices, so callers may reuse buffers.
// Recorder is not safe for concurrent use.
type Recorder struct {
	commands []Command
	counts   [numCommandKinds]int
	prims    [numCommandKinds]int

	// keep controls whether command payloads are retained. Counting-only
	// recorders avoid copying buffers every frame.
	keep bool
}

// NewRecorder creates a recorder that keeps every command.
func NewRecorder() *Recorder {
	return &Recorder{
		commands: make([]Command, 0, 64),
		keep:     true,
	}
}

// NewCountingRecorder creates a recorder that only counts calls and primitives.
func NewCountingRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(cmd Command) {
	r.counts[cmd.Kind]++
	r.prims[cmd.Kind] += cmd.Primitives()
	if r.keep {
		r.commands = append(r.commands, cmd)
	}
}

// DrawPoints implements Surface.
func (r *Recorder) DrawPoints(pts []geom.Point, style paint.StyleKey) {
	if !r.keep {
		r.counts[CmdPoints]++
		r.prims[CmdPoints] += len(pts)
		return
	}
	r.record(Command{Kind: CmdPoints, Style: style, Points: append([]geom.Point(nil), pts...)})
}

// DrawLines implements Surface.
func (r *Recorder) DrawLines(segs []geom.Segment, style paint.StyleKey) {
	if !r.keep {
		r.counts[CmdLines]++
		r.prims[CmdLines] += len(segs)
		return
	}
	r.record(Command{Kind: CmdLines, Style: style, Lines: append([]geom.Segment(nil), segs...)})
}

// DrawCircle implements Surface.
func (r *Recorder) DrawCircle(c geom.Circle, style paint.StyleKey) {
	r.record(Command{Kind: CmdCircle, Style: style, Circle: c})
}

// DrawMask implements Surface.
func (r *Recorder) DrawMask(mask *image.Alpha, at geom.Point, c color.RGBA, blend paint.BlendMode) {
	r.record(Command{Kind: CmdMask, Mask: mask, At: at, Color: c, Blend: blend})
}

// DrawImage implements Surface.
func (r *Recorder) DrawImage(img image.Image, at geom.Point, blend paint.BlendMode) {
	r.record(Command{Kind: CmdImage, Image: img, At: at, Blend: blend})
}

// DrawText implements Surface.
func (r *Recorder) DrawText(text string, at geom.Point, style paint.TextStyle) {
	r.record(Command{Kind: CmdText, Text: text, At: at, TextStyle: style, Color: style.Color})
}

// Commands returns the recorded commands in call order.
// The slice is owned by the recorder until the next Reset.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Calls returns how many calls of kind k were recorded.
func (r *Recorder) Calls(k CommandKind) int {
	if k >= numCommandKinds {
		return 0
	}
	return r.counts[k]
}

// Primitives returns how many primitives of kind k were drawn.
func (r *Recorder) Primitives(k CommandKind) int {
	if k >= numCommandKinds {
		return 0
	}
	return r.prims[k]
}

// TotalCalls returns the number of recorded calls of every kind.
func (r *Recorder) TotalCalls() int {
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

// Reset discards all recorded commands and counters.
func (r *Recorder) Reset() {
	clear(r.commands)
	r.commands = r.commands[:0]
	r.counts = [numCommandKinds]int{}
	r.prims = [numCommandKinds]int{}
}
