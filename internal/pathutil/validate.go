// Package pathutil checks operator-supplied paths before files are read.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath = errors.New("path is empty")
	ErrNullBytes = errors.New("path contains null bytes")
	ErrDirectory = errors.New("path is a directory")
)

// InputFile cleans path, resolves symlinks and confirms it names a regular
// file. Stat errors are returned wrapped so os.ErrNotExist still matches.
func InputFile(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(path, "\x00") {
		return "", ErrNullBytes
	}

	resolved, err := filepath.EvalSymlinks(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrDirectory
	}
	return resolved, nil
}
