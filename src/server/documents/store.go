// Package documents holds the in-memory overlay store: unsaved content that
// supersedes on-disk bytes for analysis purposes, with a monotonic version
// per file driving the engine's staleness checks.
package documents

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"typegate/src/internal/errors"
)

type overlay struct {
	content string
	version int
}

// Store keeps overlays keyed by absolute file path. Entries never expire on
// their own; they are superseded by later writes or dropped by Clear.
type Store struct {
	mu       sync.RWMutex
	overlays map[string]overlay
}

// NewStore creates an empty overlay store
func NewStore() *Store {
	return &Store{overlays: make(map[string]overlay)}
}

// SetOverlay stores content for path and bumps its version. A path that was
// never overlaid is at version 0, so the first write makes it 1.
func (s *Store) SetOverlay(path, content string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.overlays[path]
	entry.content = content
	entry.version++
	s.overlays[path] = entry
	return entry.version
}

// Content returns the overlay for path if present, else the disk content at
// call time. Missing files wrap errors.ErrNotFound.
func (s *Store) Content(path string) (string, error) {
	s.mu.RLock()
	entry, ok := s.overlays[path]
	s.mu.RUnlock()
	if ok {
		return entry.content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, errors.ErrNotFound)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// Version returns the staleness token for path. Any two unequal tokens mean
// the content may have changed.
func (s *Store) Version(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.Itoa(s.overlays[path].version)
}

// HasOverlay reports whether path currently has in-memory content
func (s *Store) HasOverlay(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overlays[path]
	return ok
}

// OverlaidPaths returns every path with a live overlay
func (s *Store) OverlaidPaths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.overlays))
	for path := range s.overlays {
		paths = append(paths, path)
	}
	return paths
}

// Clear drops every overlay. Only the full cache clear calls this; there is
// no per-file eviction.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = make(map[string]overlay)
}
