package sessions

import (
	"os"
	"path/filepath"
	"sync"

	"typegate/src/internal/common"
	"typegate/src/internal/errors"
	"typegate/src/utils"
)

// Workspace is the process-wide active-workspace pointer. It exists only to
// resolve relative paths; switching it resets every session and engine
// binding because a workspace change is a context change the engine cannot
// safely straddle.
type Workspace struct {
	mu    sync.Mutex
	cache *Cache
	root  string
}

// NewWorkspace creates a workspace manager bound to the session cache
func NewWorkspace(cache *Cache) *Workspace {
	return &Workspace{cache: cache}
}

// Switch validates path as an existing directory, resets all sessions and
// bindings, then makes it the active workspace. Returns the canonical path.
// In-flight queries on the old workspace are not aborted; only subsequent
// queries see the fresh state.
func (w *Workspace) Switch(path string) (string, error) {
	canonical, err := common.CanonicalPath(path)
	if err != nil {
		return "", errors.NewInvalidPathError(path, err.Error())
	}
	if !common.IsDirectory(canonical) {
		return "", errors.NewInvalidPathError(path, "not an existing directory")
	}

	w.cache.ResetAll()

	w.mu.Lock()
	w.root = canonical
	w.mu.Unlock()

	common.ServerLogger.Info("active workspace switched to %s", canonical)
	return canonical, nil
}

// Active returns the current workspace root, or "" when none was set
func (w *Workspace) Active() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.root
}

// ResolvePath resolves input to an absolute path: file:// URIs are unwrapped
// first, absolute input passes through, relative input joins the active
// workspace when set, else the process working directory. With mustExist, a
// missing result is an InvalidPathError.
func (w *Workspace) ResolvePath(input string, mustExist bool) (string, error) {
	resolved := utils.URIToFilePath(input)
	if !filepath.IsAbs(resolved) {
		base := w.Active()
		if base == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return "", errors.NewInvalidPathError(input, "no active workspace and no working directory")
			}
			base = cwd
		}
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)

	if mustExist {
		if _, err := os.Stat(resolved); err != nil {
			return "", errors.NewInvalidPathError(input, "does not exist")
		}
	}
	return resolved, nil
}
