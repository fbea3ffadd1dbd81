package utils

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// URIToFilePath converts a file:// URI to a file system path
func URIToFilePath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}

	path := strings.TrimPrefix(uri, "file://")

	// Decode URL-encoded characters
	decoded, err := url.PathUnescape(path)
	if err == nil {
		path = decoded
	}

	// On Windows, file URIs look like file:///C:/path/to/file. After
	// removing file://, the leading slash before the drive letter has to go.
	if runtime.GOOS == "windows" && len(path) > 2 {
		if path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}

	return path
}

// FilePathToURI converts a file system path to a file:// URI
func FilePathToURI(path string) string {
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)

	// Windows absolute paths like C:/Users/... become file:///C:/Users/...
	if runtime.GOOS == "windows" && filepath.IsAbs(path) {
		return "file:///" + path
	}

	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}

	// Relative paths shouldn't happen in practice but handle gracefully
	return "file://" + path
}
