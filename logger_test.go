package overlay

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/overlay/internal/logging"
)

func TestLoggerDefaultSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	logging.Logger().Info("from sub-package", "k", "v")
	if !strings.Contains(buf.String(), "from sub-package") {
		t.Errorf("sub-package log not captured: %q", buf.String())
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	SetLogger(slog.Default())
	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		}()
		go func() {
			defer wg.Done()
			Logger().Debug("concurrent")
		}()
	}
	wg.Wait()
}
