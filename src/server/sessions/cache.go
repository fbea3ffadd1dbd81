// Package sessions owns the live analysis sessions: one per project root,
// lazily built, conservatively invalidated. This is where the core lifecycle
// invariants live.
package sessions

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"typegate/src/internal/common"
	"typegate/src/internal/engine"
	"typegate/src/internal/project"
	"typegate/src/server/documents"
)

// Entry is a live session together with the snapshot it was built from
type Entry struct {
	Session engine.Session
	Binding *engine.Binding
	Config  *project.Loaded
}

// Cache owns at most one analysis session per project root. The engine's
// incremental state cannot be forked, so two concurrent sessions for the
// same root must never exist; every get-or-build and every invalidation runs
// under one cache-wide lock.
type Cache struct {
	mu       sync.Mutex
	docs     *documents.Store
	tracker  *Tracker
	resolver *engine.Resolver
	loader   *project.ConfigLoader
	entries  map[string]*Entry
}

// NewCache wires the session cache to its collaborators
func NewCache(docs *documents.Store, tracker *Tracker, resolver *engine.Resolver, loader *project.ConfigLoader) *Cache {
	return &Cache{
		docs:     docs,
		tracker:  tracker,
		resolver: resolver,
		loader:   loader,
		entries:  make(map[string]*Entry),
	}
}

// Get returns the live entry for root, building one if needed
func (c *Cache) Get(ctx context.Context, root string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[root]; ok {
		return entry, nil
	}

	binding, err := c.resolver.Resolve(root)
	if err != nil {
		return nil, err
	}

	loaded := c.loader.Load(ctx, root, binding.Engine)

	provider := &scopeProvider{
		docs:    c.docs,
		tracker: c.tracker,
		root:    root,
		config:  loaded,
	}
	session, err := binding.Engine.NewSession(provider)
	if err != nil {
		return nil, err
	}

	common.ServerLogger.Info("built session for %s (engine %s/%s, config %x)",
		root, binding.Version, binding.Source, loaded.Fingerprint())

	entry := &Entry{Session: session, Binding: binding, Config: loaded}
	c.entries[root] = entry
	return entry, nil
}

// Invalidate drops the cached session for root, and only that root's. The
// next query rebuilds it lazily with the updated scope and versions.
func (c *Cache) Invalidate(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(root)
}

// ResetAll drops every cached session and every engine binding. Used on
// workspace switch, which implies a context change no session may straddle.
func (c *Cache) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for root := range c.entries {
		c.dropLocked(root)
	}
	c.resolver.Reset()
}

// ClearAll is the full reset: sessions, engine bindings, accessed files and
// document overlays.
func (c *Cache) ClearAll() {
	c.ResetAll()
	c.tracker.Clear()
	c.docs.Clear()
}

// CachedRoots returns the roots with a live session, for status output
func (c *Cache) CachedRoots() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	roots := make([]string, 0, len(c.entries))
	for root := range c.entries {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

func (c *Cache) dropLocked(root string) {
	if entry, ok := c.entries[root]; ok {
		entry.Session.Dispose()
		delete(c.entries, root)
	}
}

// scopeProvider answers the engine's scope callbacks from current state.
// A session is reused across many queries between invalidations, so every
// answer consults the overlay store and tracker live instead of a snapshot
// taken at build time.
type scopeProvider struct {
	docs    *documents.Store
	tracker *Tracker
	root    string
	config  *project.Loaded
}

// RootFiles is the union of project-declared root files, currently-overlaid
// files under this root, and the root's accessed files.
func (p *scopeProvider) RootFiles() []string {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, f := range p.config.RootFiles {
		add(f)
	}
	prefix := p.root + string(filepath.Separator)
	for _, f := range p.docs.OverlaidPaths() {
		if strings.HasPrefix(f, prefix) {
			add(f)
		}
	}
	for _, f := range p.tracker.Files(p.root) {
		add(f)
	}

	sort.Strings(files)
	return files
}

func (p *scopeProvider) Content(path string) (string, error) {
	return p.docs.Content(path)
}

func (p *scopeProvider) ContentVersion(path string) string {
	return p.docs.Version(path)
}

func (p *scopeProvider) CompilerOptions() map[string]interface{} {
	return p.config.CompilerOptions
}
