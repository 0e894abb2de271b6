package bench

import (
	"errors"
	"fmt"
	"time"
)

// Level is one level-of-detail tier the benchmark sweeps.
type Level struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// String returns the level name, or its ID when unnamed.
func (l Level) String() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("level-%d", l.ID)
}

// Config describes a benchmark run.
type Config struct {
	// Levels are visited in order.
	Levels []Level

	// SettleTime is the minimum time spent zooming to a level before warmup
	// may begin. Default: 2s
	SettleTime time.Duration

	// WarmupFrames are rendered and discarded at each level. Default: 60
	WarmupFrames int

	// SampleFrames are recorded at each level. Default: 600
	SampleFrames int

	// ExportPath, when set, receives the report on completion. The format
	// follows the extension: .yaml or .yml for YAML, anything else JSON.
	ExportPath string
}

// DefaultConfig returns a three-level configuration.
func DefaultConfig() Config {
	return Config{
		Levels: []Level{
			{ID: 0, Name: "near"},
			{ID: 1, Name: "mid"},
			{ID: 2, Name: "far"},
		},
		SettleTime:   2 * time.Second,
		WarmupFrames: 60,
		SampleFrames: 600,
	}
}

// Errors returned by Validate.
var (
	ErrNoLevels         = errors.New("bench: no levels configured")
	ErrInvalidFrames    = errors.New("bench: sample frames must be positive and warmup frames non-negative")
	ErrInvalidSettle    = errors.New("bench: settle time must not be negative")
	ErrDuplicateLevelID = errors.New("bench: duplicate level id")
)

// Validate reports the first configuration problem.
func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return ErrNoLevels
	}
	if c.SampleFrames <= 0 || c.WarmupFrames < 0 {
		return ErrInvalidFrames
	}
	if c.SettleTime < 0 {
		return ErrInvalidSettle
	}
	seen := make(map[int]bool, len(c.Levels))
	for _, l := range c.Levels {
		if seen[l.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateLevelID, l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}
