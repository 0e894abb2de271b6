// Package paint provides the pooled style objects used while drawing a frame.
//
// A Paint is mutable scratch state in one of three categories (stroke, fill,
// text). Paints are borrowed from a Pool, configured, used for one or more
// draw calls, and returned. Returning resets every field, including any
// attached Effect, to the category default.
//
// Draw calls never keep a *Paint: batchers take a StyleKey and surfaces take a
// TextStyle, both plain values, so a paint can be returned immediately after
// the call that used it.
//
//	err := pool.WithText(func(p *paint.Paint) error {
//	    p.Color = paint.HSV(120, 0.8, 1)
//	    p.TextSize = 13
//	    glyphs.Draw(s, "Crate", at, p)
//	    return nil
//	})
package paint
