package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestInputFile(t *testing.T) {
	tmpDir := t.TempDir()
	realFile := filepath.Join(tmpDir, "coverageReport.json")
	if err := os.WriteFile(realFile, []byte("{}"), 0o600); err != nil {
		t.Fatalf("create test file: %v", err)
	}
	symlinkPath := filepath.Join(tmpDir, "latest.json")
	if err := os.Symlink(realFile, symlinkPath); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	wantReal, err := filepath.EvalSymlinks(realFile)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	sep := string(filepath.Separator)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "empty path", path: "", wantErr: ErrEmptyPath},
		{name: "null byte", path: "report\x00.json", wantErr: ErrNullBytes},
		{name: "missing file", path: filepath.Join(tmpDir, "missing.json"), wantErr: os.ErrNotExist},
		{name: "directory", path: tmpDir, wantErr: ErrDirectory},
		{name: "regular file", path: realFile, want: wantReal},
		{name: "symlink resolves to target", path: symlinkPath, want: wantReal},
		{name: "dot segments are cleaned", path: tmpDir + sep + "sub" + sep + ".." + sep + "coverageReport.json", want: wantReal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InputFile(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
