// Package bench runs an automated multi-level rendering stress test.
//
// A Runner visits each configured level in turn: it waits for the caller to
// settle at the level, discards warmup frames, then samples frame times.
// Each level produces a LevelResult with average, extreme and "X% low"
// frame times plus the profiler's section breakdown. The full Report can be
// written as JSON or YAML.
//
//	r, _ := bench.NewRunner(bench.DefaultConfig(), prof)
//	r.Start()
//	for {
//		ms := renderFrame(level)
//		next, ok := r.Update(ms, level)
//		if !ok {
//			break
//		}
//		level = next
//	}
package bench
