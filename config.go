package overlay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/overlay/batch"
	"github.com/gogpu/overlay/bench"
	"github.com/gogpu/overlay/glyph"
	"github.com/gogpu/overlay/paint"
	"github.com/gogpu/overlay/profile"
	"github.com/gogpu/overlay/spatial"
)

// Duration is a time.Duration that decodes from strings such as "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ViewConfig describes the screen the overlay draws on.
type ViewConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Margin expands the viewport when culling so entities entering the
	// screen are already drawn.
	Margin float64 `toml:"margin"`
}

// SpatialConfig configures the entity index.
type SpatialConfig struct {
	PointRadius float64 `toml:"point_radius"`
}

// BatchConfig configures the draw batcher.
type BatchConfig struct {
	InitialCapacity int `toml:"initial_capacity"`
}

// PaintConfig configures the paint pool.
type PaintConfig struct {
	MaxIdle int `toml:"max_idle"`
	Warmup  int `toml:"warmup"`
}

// GlyphConfig configures the shaped-text cache and the fallback tier.
type GlyphConfig struct {
	Capacity      int `toml:"capacity"`
	SweepInterval int `toml:"sweep_interval"`
	StaleFrames   int `toml:"stale_frames"`

	// FallbackWarnInterval throttles fallback-tier warnings.
	FallbackWarnInterval Duration `toml:"fallback_warn_interval"`
}

// AtlasConfig configures the prerendered vocabulary.
type AtlasConfig struct {
	Enabled bool `toml:"enabled"`

	// Sizes are the text sizes every entry is rendered at in the default
	// family.
	Sizes []float32 `toml:"sizes"`

	MaxDistance int      `toml:"max_distance"`
	MaxHeight   int      `toml:"max_height"`
	Items       []string `toml:"items"`
	IconSizes   []int    `toml:"icon_sizes"`
	Workers     int      `toml:"workers"`

	// BuildTimeout bounds BuildAtlas. Zero means no limit.
	BuildTimeout Duration `toml:"build_timeout"`
}

// ProfileConfig configures the profiler.
type ProfileConfig struct {
	Enabled bool `toml:"enabled"`
	Window  int  `toml:"window"`
}

// LevelConfig is one benchmark level.
type LevelConfig struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`

	// Zoom is the world-to-screen scale the benchmark tool uses at this
	// level.
	Zoom float64 `toml:"zoom"`
}

// BenchConfig configures the benchmark runner.
type BenchConfig struct {
	Levels       []LevelConfig `toml:"levels"`
	SettleTime   Duration      `toml:"settle_time"`
	WarmupFrames int           `toml:"warmup_frames"`
	SampleFrames int           `toml:"sample_frames"`
	ExportPath   string        `toml:"export_path"`
}

// Config is the complete pipeline configuration. The zero value is not
// valid; start from DefaultConfig or LoadConfig.
type Config struct {
	View    ViewConfig    `toml:"view"`
	Spatial SpatialConfig `toml:"spatial"`
	Batch   BatchConfig   `toml:"batch"`
	Paint   PaintConfig   `toml:"paint"`
	Glyph   GlyphConfig   `toml:"glyph"`
	Atlas   AtlasConfig   `toml:"atlas"`
	Profile ProfileConfig `toml:"profile"`
	Bench   BenchConfig   `toml:"bench"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	shaped := glyph.DefaultShapedConfig()
	bc := bench.DefaultConfig()
	levels := make([]LevelConfig, len(bc.Levels))
	for i, l := range bc.Levels {
		levels[i] = LevelConfig{ID: l.ID, Name: l.Name, Zoom: 1 / float64(int(1)<<i)}
	}
	return Config{
		View: ViewConfig{Width: 1920, Height: 1080, Margin: 50},
		Spatial: SpatialConfig{
			PointRadius: spatial.DefaultPointRadius,
		},
		Batch: BatchConfig{InitialCapacity: batch.DefaultInitialCapacity},
		Paint: PaintConfig{MaxIdle: paint.DefaultMaxIdle, Warmup: 8},
		Glyph: GlyphConfig{
			Capacity:             shaped.Capacity,
			SweepInterval:        shaped.SweepInterval,
			StaleFrames:          shaped.StaleFrames,
			FallbackWarnInterval: Duration(time.Second),
		},
		Atlas: AtlasConfig{
			Enabled:      true,
			Sizes:        []float32{paint.Default(paint.CategoryText).TextSize},
			MaxDistance:  500,
			MaxHeight:    100,
			IconSizes:    []int{16, 24, 32},
			BuildTimeout: Duration(30 * time.Second),
		},
		Profile: ProfileConfig{Enabled: true, Window: profile.DefaultWindow},
		Bench: BenchConfig{
			Levels:       levels,
			SettleTime:   Duration(bc.SettleTime),
			WarmupFrames: bc.WarmupFrames,
			SampleFrames: bc.SampleFrames,
		},
	}
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("overlay: config %s: %s", e.Field, e.Reason)
}

// Validate reports the first invalid field as a *ConfigError.
func (c *Config) Validate() error {
	switch {
	case c.View.Width <= 0 || c.View.Height <= 0:
		return &ConfigError{"view", "width and height must be positive"}
	case c.View.Margin < 0:
		return &ConfigError{"view.margin", "must not be negative"}
	case c.Spatial.PointRadius < 0:
		return &ConfigError{"spatial.point_radius", "must not be negative"}
	case c.Batch.InitialCapacity < 0:
		return &ConfigError{"batch.initial_capacity", "must not be negative"}
	case c.Paint.MaxIdle < 0 || c.Paint.Warmup < 0:
		return &ConfigError{"paint", "max_idle and warmup must not be negative"}
	case c.Glyph.Capacity <= 0:
		return &ConfigError{"glyph.capacity", "must be positive"}
	case c.Glyph.SweepInterval <= 0 || c.Glyph.StaleFrames <= 0:
		return &ConfigError{"glyph", "sweep_interval and stale_frames must be positive"}
	case c.Glyph.FallbackWarnInterval < 0:
		return &ConfigError{"glyph.fallback_warn_interval", "must not be negative"}
	case c.Atlas.Workers < 0:
		return &ConfigError{"atlas.workers", "must not be negative"}
	case c.Atlas.BuildTimeout < 0:
		return &ConfigError{"atlas.build_timeout", "must not be negative"}
	case c.Profile.Window < 0:
		return &ConfigError{"profile.window", "must not be negative"}
	}
	for _, s := range c.Atlas.Sizes {
		if !(s > 0) {
			return &ConfigError{"atlas.sizes", fmt.Sprintf("invalid size %v", s)}
		}
	}
	for _, s := range c.Atlas.IconSizes {
		if s <= 0 {
			return &ConfigError{"atlas.icon_sizes", fmt.Sprintf("invalid size %d", s)}
		}
	}
	if len(c.Bench.Levels) > 0 {
		if err := c.BenchConfig().Validate(); err != nil {
			return &ConfigError{"bench", strings.TrimPrefix(err.Error(), "bench: ")}
		}
		for _, l := range c.Bench.Levels {
			if !(l.Zoom > 0) {
				return &ConfigError{"bench.levels", fmt.Sprintf("level %d: zoom must be positive", l.ID)}
			}
		}
	}
	return nil
}

// BenchConfig converts the bench section for bench.NewRunner.
func (c *Config) BenchConfig() bench.Config {
	levels := make([]bench.Level, len(c.Bench.Levels))
	for i, l := range c.Bench.Levels {
		levels[i] = bench.Level{ID: l.ID, Name: l.Name}
	}
	return bench.Config{
		Levels:       levels,
		SettleTime:   c.Bench.SettleTime.Std(),
		WarmupFrames: c.Bench.WarmupFrames,
		SampleFrames: c.Bench.SampleFrames,
		ExportPath:   c.Bench.ExportPath,
	}
}

// ShapedConfig converts the glyph section for glyph.NewShapedCache.
func (c *Config) ShapedConfig() glyph.ShapedConfig {
	return glyph.ShapedConfig{
		Capacity:      c.Glyph.Capacity,
		SweepInterval: c.Glyph.SweepInterval,
		StaleFrames:   c.Glyph.StaleFrames,
	}
}

// AtlasConfig converts the atlas section for glyph.BuildAtlas. Icons are
// supplied by the caller.
func (c *Config) AtlasConfig() glyph.AtlasConfig {
	styles := make([]glyph.Attributes, len(c.Atlas.Sizes))
	for i, s := range c.Atlas.Sizes {
		styles[i] = glyph.Attributes{Size: s}
	}
	return glyph.AtlasConfig{
		Styles:      styles,
		MaxDistance: c.Atlas.MaxDistance,
		MaxHeight:   c.Atlas.MaxHeight,
		Items:       append([]string(nil), c.Atlas.Items...),
		IconSizes:   append([]int(nil), c.Atlas.IconSizes...),
		Workers:     c.Atlas.Workers,
	}
}

// DecodeConfig reads TOML from r on top of DefaultConfig. Unknown keys are
// an error.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("overlay: decode config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("overlay: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	// #nosec G304 -- config path is provided by the user
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("overlay: open config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}
