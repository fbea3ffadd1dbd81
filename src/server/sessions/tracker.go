package sessions

import (
	"sort"
	"sync"
)

// Tracker records, per project root, the files referenced by any operation.
// These must stay in the compilation scope even though the project config
// never enumerates them. Sets only grow; the full cache clear drops them.
type Tracker struct {
	mu    sync.Mutex
	files map[string]map[string]bool
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{files: make(map[string]map[string]bool)}
}

// Register adds path to root's accessed set and reports whether it was newly
// added. Callers invalidate the root's session on true; re-registration of a
// known file is a no-op and skips the rebuild.
func (t *Tracker) Register(root, path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.files[root]
	if !ok {
		set = make(map[string]bool)
		t.files[root] = set
	}
	if set[path] {
		return false
	}
	set[path] = true
	return true
}

// Files returns the sorted accessed set for root
func (t *Tracker) Files(root string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.files[root]
	files := make([]string, 0, len(set))
	for path := range set {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Clear drops every root's accessed set
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]map[string]bool)
}
