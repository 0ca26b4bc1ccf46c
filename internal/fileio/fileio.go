// Package fileio provides the file operations used to materialize artifacts.
package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// dirPerm is the mode used for created output directories.
const dirPerm = 0o755

// filePerm is the mode of written artifacts.
const filePerm = 0o644

// EnsureDir creates dir and any missing parents. Existing directories are fine.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// IsRegular reports whether path exists and is a regular file.
// Symlinks are followed.
func IsRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CopyFile copies the bytes of src to dst, replacing dst atomically.
// Returns the number of bytes copied.
func CopyFile(src, dst string) (int64, error) {
	//nolint:gosec // G304: src is a build artifact chosen by the caller
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	n, err := WriteAtomic(dst, in)
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	return n, nil
}

// WriteAtomic writes everything read from r to path.
// Uses write-to-temp + fsync + rename so a failed write never leaves a
// truncated artifact at path.
func WriteAtomic(path string, r io.Reader) (int64, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return n, fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return n, fmt.Errorf("sync %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Chmod(tmpPath, filePerm); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("chmod %s: %w", path, err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("rename %s: %w", path, err)
	}

	return n, nil
}
