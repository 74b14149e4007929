package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/covergate/internal/domain"
)

const (
	// DefaultPath is where gating runs are recorded when no path is given.
	DefaultPath = ".covergate/history.json"
	// DefaultMaxEntries is the default number of runs kept.
	DefaultMaxEntries = 100
)

// FileStore keeps gating history in a JSON file.
type FileStore struct {
	Path       string
	MaxEntries int
}

// Load reads the history file. A missing file is an empty history.
func (s *FileStore) Load() (domain.History, error) {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.History{}, nil
		}
		return domain.History{}, err
	}

	var h domain.History
	if err := json.Unmarshal(data, &h); err != nil {
		return domain.History{}, fmt.Errorf("decode history %s: %w", s.Path, err)
	}
	return h, nil
}

// Save replaces the history file, writing through a temporary file so a
// crash never leaves a truncated history behind.
func (s *FileStore) Save(h domain.History) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Append records entry, dropping the oldest runs beyond MaxEntries.
// Concurrent gate processes are serialised with an exclusive file lock.
func (s *FileStore) Append(entry domain.HistoryEntry) (err error) {
	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.unlock(); err == nil {
			err = unlockErr
		}
	}()

	h, err := s.Load()
	if err != nil {
		return err
	}

	h.Entries = append(h.Entries, entry)

	limit := s.MaxEntries
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	if len(h.Entries) > limit {
		h.Entries = h.Entries[len(h.Entries)-limit:]
	}

	return s.Save(h)
}
