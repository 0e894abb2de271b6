package overlay

import (
	"log/slog"

	"github.com/gogpu/overlay/internal/logging"
)

// SetLogger configures the logger for overlay and all its sub-packages.
// By default, overlay produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by overlay:
//   - [slog.LevelDebug]: internal diagnostics (skipped entities, cache sweeps)
//   - [slog.LevelInfo]: lifecycle events (atlas built, benchmark progress)
//   - [slog.LevelWarn]: degraded paths (fallback text, export failures)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	overlay.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	overlay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by overlay. It is never nil.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
