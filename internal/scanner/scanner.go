// Package scanner enumerates the documents eligible for indexing
// inside a user-chosen directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

var supportedExtensions = map[string]struct{}{
	".pdf": {},
	".md":  {},
	".txt": {},
}

// Scan recursively collects files under dir whose extension is in the
// supported set, case-insensitive, in traversal order. Unreadable
// entries are skipped rather than failing the walk.
func Scan(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// IsSupported reports whether the file extension is indexable.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := supportedExtensions[ext]
	return ok
}
