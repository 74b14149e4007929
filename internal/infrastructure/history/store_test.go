package history

import (
	"os"
	"strings"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/covergate/internal/domain"
)

func TestFileStoreLoad(t *testing.T) {
	t.Run("returns empty history for non-existent file", func(t *testing.T) {
		store := FileStore{Path: filepath.Join(t.TempDir(), "missing.json")}
		h, err := store.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(h.Entries) != 0 {
			t.Fatalf("expected empty history, got %d entries", len(h.Entries))
		}
	})

	t.Run("loads existing history", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		content := `{"entries":[{"id":"a","timestamp":"2026-01-15T10:00:00Z","target":90,"passed":false,"mean":75.5,"units":{"Test2":{"percent":50,"status":"FAIL"}},"failing":["Test2"]}]}`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write test file: %v", err)
		}

		store := FileStore{Path: path}
		h, err := store.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(h.Entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(h.Entries))
		}
		if h.Entries[0].Mean != 75.5 || h.Entries[0].Units["Test2"].Status != domain.StatusFail {
			t.Fatalf("unexpected entry: %+v", h.Entries[0])
		}
	})

	t.Run("returns error for invalid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.json")
		if err := os.WriteFile(path, []byte("not valid json"), 0o644); err != nil {
			t.Fatalf("write test file: %v", err)
		}
		store := FileStore{Path: path}
		if _, err := store.Load(); err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})
}

func TestFileStoreSave(t *testing.T) {
	t.Run("creates directory and leaves no temp files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "dir")
		path := filepath.Join(dir, "history.json")
		store := FileStore{Path: path}

		h := domain.History{Entries: []domain.HistoryEntry{{
			ID:        "run",
			Timestamp: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
			Mean:      80.0,
		}}}
		if err := store.Save(h); err != nil {
			t.Fatalf("save: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "history.json" {
			t.Fatalf("expected only history.json, got %v", entries)
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if len(loaded.Entries) != 1 || loaded.Entries[0].ID != "run" {
			t.Fatalf("unexpected reload: %+v", loaded)
		}
	})
}

func TestFileStoreAppend(t *testing.T) {
	t.Run("appends to existing history", func(t *testing.T) {
		store := FileStore{Path: filepath.Join(t.TempDir(), "history.json")}
		if err := store.Append(domain.HistoryEntry{Mean: 70.0}); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := store.Append(domain.HistoryEntry{Mean: 75.0}); err != nil {
			t.Fatalf("append: %v", err)
		}
		h, _ := store.Load()
		if len(h.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(h.Entries))
		}
	})

	t.Run("limits history size", func(t *testing.T) {
		store := FileStore{Path: filepath.Join(t.TempDir(), "history.json"), MaxEntries: 3}
		for i := 0; i < 5; i++ {
			if err := store.Append(domain.HistoryEntry{Mean: float64(70 + i)}); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		h, _ := store.Load()
		if len(h.Entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(h.Entries))
		}
		if h.Entries[0].Mean != 72.0 {
			t.Fatalf("expected oldest entry 72.0, got %f", h.Entries[0].Mean)
		}
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				store := FileStore{Path: path}
				if err := store.Append(domain.HistoryEntry{Mean: float64(i)}); err != nil {
					t.Errorf("append: %v", err)
				}
			}(i)
		}
		wg.Wait()
		h, err := (&FileStore{Path: path}).Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(h.Entries) != 8 {
			t.Fatalf("expected 8 entries, got %d", len(h.Entries))
		}
	})
}

func TestLockPathIsHiddenSibling(t *testing.T) {
	got := lockPathFor(filepath.Join("ci", "history.json"))
	if want := filepath.Join("ci", ".history.json.lock"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestAppendLeavesHiddenLockFile(t *testing.T) {
	dir := t.TempDir()
	store := FileStore{Path: filepath.Join(dir, "history.json")}
	if err := store.Append(domain.HistoryEntry{Mean: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".history.json.lock")); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}

func TestAppendLockErrorNamesHistory(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := FileStore{Path: filepath.Join(parent, "history.json")}
	err := store.Append(domain.HistoryEntry{})
	if err == nil || !strings.Contains(err.Error(), "lock history") {
		t.Fatalf("expected wrapped lock error, got %v", err)
	}
}
