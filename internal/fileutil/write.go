// Package fileutil holds the filesystem helpers shared by the loaders and the
// code generator.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteIfChanged writes content to path unless the file already holds exactly
// the same bytes. It returns the absolute path of the target and whether the
// file was written.
//
// The content is written to a temporary file next to the target and renamed
// over it, so readers see either the previous or the new content.
func WriteIfChanged(path string, content []byte) (string, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return abs, false, fmt.Errorf("create directory for %s: %w", abs, err)
	}
	existing, err := os.ReadFile(abs)
	switch {
	case err == nil:
		if bytes.Equal(existing, content) {
			return abs, false, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return abs, false, fmt.Errorf("read %s: %w", abs, err)
	}
	if err := writeAtomic(abs, content); err != nil {
		return abs, false, err
	}
	return abs, true, nil
}

// WriteStringIfChanged is WriteIfChanged for string content.
func WriteStringIfChanged(path, content string) (string, bool, error) {
	return WriteIfChanged(path, []byte(content))
}

func writeAtomic(path string, content []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	// Removing a renamed temp file fails with ErrNotExist, which is fine.
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
