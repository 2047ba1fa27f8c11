// Package discovery finds dataset files under a directory tree.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// datasetExts are the extensions dataset.Load understands.
var datasetExts = []string{".csv", ".jsonl", ".ndjson"}

// DatasetFile is a dataset found during directory traversal.
type DatasetFile struct {
	Name string // file name without directory
	Path string // absolute path
}

// IsDataset reports whether path has a dataset file extension.
func IsDataset(path string) bool {
	return slices.Contains(datasetExts, strings.ToLower(filepath.Ext(path)))
}

// Discover walks root and returns every dataset file, sorted by path.
// Hidden directories and node_modules/vendor are skipped. pattern, when
// not empty, is a filepath.Match glob applied to file names.
func Discover(root, pattern string) ([]DatasetFile, error) {
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}

	var files []DatasetFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}

		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return fs.SkipDir
			}
			return nil
		}

		if !IsDataset(path) {
			return nil
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
		}
		files = append(files, DatasetFile{Name: d.Name(), Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", absRoot, err)
	}

	slices.SortFunc(files, func(a, b DatasetFile) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

// ExpandPaths replaces every directory in paths with the dataset files
// under it. Plain files are kept as given, in order.
func ExpandPaths(paths []string, pattern string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := Discover(p, pattern)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no dataset files found in %s", p)
		}
		for _, f := range files {
			out = append(out, f.Path)
		}
	}
	return out, nil
}
