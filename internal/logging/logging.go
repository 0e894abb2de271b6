// Package logging holds the slog logger shared by every overlay package.
//
// The root package exposes overlay.SetLogger; sub-packages read the logger
// through Logger so they never import the root package.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
// Enabled reports false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(Nop())
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// Logger returns the current shared logger. It is never nil.
func Logger() *slog.Logger { return loggerPtr.Load() }

// Set replaces the shared logger. A nil logger restores silent output.
func Set(l *slog.Logger) {
	if l == nil {
		l = Nop()
	}
	loggerPtr.Store(l)
}
