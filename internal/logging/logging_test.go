package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestSet(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { Set(orig) })

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Info("hello", "k", 1)

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("log output = %q, want it to contain %q", buf.String(), "hello")
	}
}

func TestSetNilRestoresNop(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { Set(orig) })

	Set(slog.Default())
	Set(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("Set(nil) should restore the silent logger")
	}
}
