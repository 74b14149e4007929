package history

import (
	"fmt"
	"os"
	"path/filepath"
)

// historyLock serialises writers of one history file across processes.
// The lock lives in a hidden sibling so it never shows up next to reports.
type historyLock struct {
	file *os.File
	path string
}

func lockPathFor(historyPath string) string {
	dir, base := filepath.Split(historyPath)
	return filepath.Join(dir, "."+base+".lock")
}

func (s *FileStore) lock() (*historyLock, error) {
	path := lockPathFor(s.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("lock history %s: %w", s.Path, err)
	}
	// #nosec G304 -- derived from the operator's history path
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("lock history %s: %w", s.Path, err)
	}
	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("lock history %s: %w", s.Path, err)
	}
	return &historyLock{file: file, path: s.Path}, nil
}

func (l *historyLock) unlock() error {
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return fmt.Errorf("unlock history %s: %w", l.path, unlockErr)
	}
	return closeErr
}
