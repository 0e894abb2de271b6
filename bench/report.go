package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/overlay/profile"
)

// SectionResult is the average cost of one profiled section while sampling.
type SectionResult struct {
	Name  string  `json:"name" yaml:"name"`
	Count uint64  `json:"count" yaml:"count"`
	AvgMs float64 `json:"avg_ms" yaml:"avg_ms"`
	MaxMs float64 `json:"max_ms" yaml:"max_ms"`
}

// LevelResult holds the statistics of one level.
type LevelResult struct {
	Level   Level `json:"level" yaml:"level"`
	Samples int   `json:"samples" yaml:"samples"`

	AvgMs   float64 `json:"avg_ms" yaml:"avg_ms"`
	MinMs   float64 `json:"min_ms" yaml:"min_ms"`
	MaxMs   float64 `json:"max_ms" yaml:"max_ms"`
	Low1Ms  float64 `json:"low1_ms" yaml:"low1_ms"`
	Low01Ms float64 `json:"low01_ms" yaml:"low01_ms"`

	AvgFPS   float64 `json:"avg_fps" yaml:"avg_fps"`
	MinFPS   float64 `json:"min_fps" yaml:"min_fps"`
	MaxFPS   float64 `json:"max_fps" yaml:"max_fps"`
	Low1FPS  float64 `json:"low1_fps" yaml:"low1_fps"`
	Low01FPS float64 `json:"low01_fps" yaml:"low01_fps"`

	Sections []SectionResult `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Report is the exportable result of a run.
type Report struct {
	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration_ns" yaml:"duration"`
	Warmup   int           `json:"warmup_frames" yaml:"warmup_frames"`
	Samples  int           `json:"sample_frames" yaml:"sample_frames"`
	Levels   []LevelResult `json:"levels" yaml:"levels"`
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("bench: encode json: %w", err)
	}
	return nil
}

// WriteYAML writes the report as YAML.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("bench: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("bench: encode yaml: %w", err)
	}
	return nil
}

// Export writes the report to path. Files ending in .yaml or .yml are
// written as YAML, everything else as JSON.
func (r Report) Export(path string) error {
	// #nosec G304 -- output path is provided by the user
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: create %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = r.WriteYAML(f)
	default:
		err = r.WriteJSON(f)
	}
	if err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// computeResult derives level statistics from the recorded frame times.
// samples is sorted in place.
func computeResult(level Level, samples []float64, sections []profile.SectionStats) LevelResult {
	res := LevelResult{Level: level, Samples: len(samples)}
	if len(samples) == 0 {
		return res
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	slices.Sort(samples)

	res.AvgMs = sum / float64(len(samples))
	res.MinMs = samples[0]
	res.MaxMs = samples[len(samples)-1]
	res.Low1Ms = lowMean(samples, 0.01)
	res.Low01Ms = lowMean(samples, 0.001)

	res.AvgFPS = fps(res.AvgMs)
	// The fastest frame gives the highest rate.
	res.MinFPS = fps(res.MaxMs)
	res.MaxFPS = fps(res.MinMs)
	res.Low1FPS = fps(res.Low1Ms)
	res.Low01FPS = fps(res.Low01Ms)

	if len(sections) > 0 {
		res.Sections = make([]SectionResult, 0, len(sections))
		for _, s := range sections {
			res.Sections = append(res.Sections, SectionResult{
				Name:  s.Name,
				Count: s.Count,
				AvgMs: ms(s.Avg),
				MaxMs: ms(s.Max),
			})
		}
	}
	return res
}

// lowMean returns the mean of the slowest ceil(frac*n) samples, at least
// one. sorted must be in ascending order.
func lowMean(sorted []float64, frac float64) float64 {
	n := int(math.Ceil(frac * float64(len(sorted))))
	n = max(n, 1)
	var sum float64
	for _, s := range sorted[len(sorted)-n:] {
		sum += s
	}
	return sum / float64(n)
}

func fps(frameMs float64) float64 {
	if frameMs <= 0 {
		return 0
	}
	return 1000 / frameMs
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
