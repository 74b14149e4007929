package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newWatcher(t *testing.T, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := New(WithDebounce(debounce))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWatcherDetectsReportChanges(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverageReport.json")
	if err := os.WriteFile(report, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	w := newWatcher(t, 50*time.Millisecond)
	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events := w.Events(ctx)

	if err := os.WriteFile(report, []byte(`{"Children":[]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-events:
	case <-ctx.Done():
		t.Fatal("timeout waiting for report change event")
	}
}

func TestWatcherDetectsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverageReport.json")

	w := newWatcher(t, 50*time.Millisecond)
	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events := w.Events(ctx)

	tmp := filepath.Join(dir, "report.tmp")
	if err := os.WriteFile(tmp, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Rename(tmp, report); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case <-events:
	case <-ctx.Done():
		t.Fatal("timeout waiting for rename event")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverageReport.json")

	w := newWatcher(t, 50*time.Millisecond)
	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	events := w.Events(ctx)

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-events:
		t.Fatal("should not receive event for an unrelated file")
	case <-ctx.Done():
	}
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverageReport.json")

	w := newWatcher(t, 100*time.Millisecond)
	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events := w.Events(ctx)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(report, []byte{'{', byte('a' + i), '}'}, 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(400 * time.Millisecond)
loop:
	for {
		select {
		case <-events:
			eventCount++
		case <-timeout:
			break loop
		}
	}

	if eventCount != 1 {
		t.Fatalf("expected 1 debounced event, got %d", eventCount)
	}
}

func TestEventsClosesOnCancel(t *testing.T) {
	w := newWatcher(t, 10*time.Millisecond)
	if err := w.WatchFile(filepath.Join(t.TempDir(), "r.json")); err != nil {
		t.Fatalf("watch file: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	events := w.Events(ctx)
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel was not closed")
	}
}

func TestIsTarget(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{target: filepath.Join(dir, "report.json")}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "report.json"), true},
		{filepath.Join(dir, "report.json.tmp"), false},
		{filepath.Join(dir, "sub", "report.json"), false},
	}
	for _, tt := range tests {
		if got := w.isTarget(tt.path); got != tt.want {
			t.Errorf("isTarget(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if (&Watcher{}).isTarget("report.json") {
		t.Error("watcher without a target should match nothing")
	}
}

func TestWatcherLogsThroughLogger(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverageReport.json")
	if err := os.WriteFile(report, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	w, err := New(WithDebounce(20*time.Millisecond), WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events := w.Events(ctx)

	if err := os.WriteFile(report, []byte(`{"Children":[]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	select {
	case <-events:
	case <-ctx.Done():
		t.Fatal("timeout waiting for report change event")
	}

	if logs.FilterMessage("report changed").Len() == 0 {
		t.Fatalf("expected change to be logged, got %v", logs.All())
	}
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	w, err := New(WithLogger(nil))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	if w.logger == nil {
		t.Fatal("expected a no-op logger to remain")
	}
}
