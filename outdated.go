package artisign

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// OutOfDate returns the sources whose output in outputDir is missing or
// older than the source. Order is preserved.
func OutOfDate(sources []string, outputDir string) ([]string, error) {
	var stale []string
	for _, source := range sources {
		srcInfo, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", source, err)
		}
		target := filepath.Join(outputDir, filepath.Base(source))
		dstInfo, err := os.Stat(target)
		switch {
		case os.IsNotExist(err):
			stale = append(stale, source)
		case err != nil:
			return nil, fmt.Errorf("stat %s: %w", target, err)
		case dstInfo.ModTime().Before(srcInfo.ModTime()):
			stale = append(stale, source)
		}
	}
	return stale, nil
}

// ListFiles returns the regular files directly inside dir, sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
