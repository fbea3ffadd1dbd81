// Package project resolves which project a file belongs to and loads that
// project's compilation scope and options.
package project

import (
	"path/filepath"

	"typegate/src/internal/common"
)

// rootMarkers are checked in order within each directory while walking up.
// A project-config marker wins over a bare package manifest in the same
// directory, which only matters for reporting; either one stops the walk.
var rootMarkers = []string{
	"tsconfig.json",
	"jsconfig.json",
	"package.json",
}

// ResolveRoot maps a file path to its owning project root: the nearest
// ancestor directory containing a recognized marker, or the file's own
// directory when none is found (a degenerate single-file project).
//
// The walk reads the filesystem at call time and is deliberately uncached;
// markers can appear or disappear between calls.
func ResolveRoot(filePath string) string {
	dir := filepath.Dir(filePath)

	for current := dir; ; {
		for _, marker := range rootMarkers {
			if common.FileExists(filepath.Join(current, marker)) {
				return current
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// ConfigFilePath returns the project-config file for root, or "" when the
// project has none and default options apply.
func ConfigFilePath(root string) string {
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		path := filepath.Join(root, name)
		if common.FileExists(path) {
			return path
		}
	}
	return ""
}
