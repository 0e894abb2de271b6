// Package batch groups same-style draw primitives into batched surface calls.
//
// Style changes typically force backend state transitions, so the Batcher
// keeps one buffer per primitive kind and only emits when the StyleKey of
// that kind changes or when the frame is flushed:
//
//	b := batch.New()
//	b.Begin(surf)
//	for _, e := range visible {
//		b.AddPoint(e.Pos, key)
//	}
//	if err := b.Flush(nil); err != nil {
//		return err
//	}
//
// Two styles are batch-equal iff their paint.StyleKey values are equal.
package batch
