package sessions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typegate/src/internal/engine"
	"typegate/src/internal/project"
	"typegate/src/server/documents"
)

type fakeSession struct {
	provider engine.ScopeProvider
	disposed bool
}

func (s *fakeSession) Hover(ctx context.Context, file string, offset int) (*engine.HoverInfo, error) {
	content, err := s.provider.Content(file)
	if err != nil {
		return nil, err
	}
	return &engine.HoverInfo{Contents: content, Start: offset, End: offset}, nil
}

func (s *fakeSession) Definition(ctx context.Context, file string, offset int) ([]engine.Location, error) {
	return nil, nil
}

func (s *fakeSession) References(ctx context.Context, file string, offset int) ([]engine.Location, error) {
	return nil, nil
}

func (s *fakeSession) Completions(ctx context.Context, file string, offset int) ([]engine.CompletionItem, error) {
	return nil, nil
}

func (s *fakeSession) SignatureHelp(ctx context.Context, file string, offset int) (*engine.SignatureHelp, error) {
	return nil, nil
}

func (s *fakeSession) RenameLocations(ctx context.Context, file string, offset int) ([]engine.Location, error) {
	return nil, nil
}

func (s *fakeSession) ApplicableRefactors(ctx context.Context, file string, start, end int) ([]engine.Refactor, error) {
	return nil, nil
}

func (s *fakeSession) RefactorEdits(ctx context.Context, file string, start, end int, refactor, action string) ([]engine.FileEdit, error) {
	return nil, nil
}

func (s *fakeSession) NavigationTree(ctx context.Context, file string) (*engine.NavigationItem, error) {
	return nil, nil
}

func (s *fakeSession) InlayHints(ctx context.Context, file string, start, end int) ([]engine.InlayHint, error) {
	return nil, nil
}

func (s *fakeSession) Diagnostics(ctx context.Context, file string) (*engine.DiagnosticBundle, error) {
	return &engine.DiagnosticBundle{}, nil
}

func (s *fakeSession) Dispose() { s.disposed = true }

type fakeEngine struct {
	sessions []*fakeSession
}

func (e *fakeEngine) Version() string { return "5.4.2" }

func (e *fakeEngine) NewSession(provider engine.ScopeProvider) (engine.Session, error) {
	session := &fakeSession{provider: provider}
	e.sessions = append(e.sessions, session)
	return session, nil
}

func (e *fakeEngine) ParseProjectConfig(ctx context.Context, configPath string) (*engine.ParsedConfig, error) {
	return &engine.ParsedConfig{}, nil
}

type fakeLoader struct {
	engine *fakeEngine
	loads  int
}

func (l *fakeLoader) Load(installPath string) (engine.Engine, error) {
	l.loads++
	return l.engine, nil
}

func newTestCache() (*Cache, *documents.Store, *Tracker, *fakeLoader) {
	docs := documents.NewStore()
	tracker := NewTracker()
	loader := &fakeLoader{engine: &fakeEngine{}}
	resolver := engine.NewResolver(loader, "/opt/typegate/engine")
	cache := NewCache(docs, tracker, resolver, project.NewConfigLoader(0))
	return cache, docs, tracker, loader
}

func TestGetReusesLiveSession(t *testing.T) {
	cache, _, _, _ := newTestCache()
	root := t.TempDir()

	first, err := cache.Get(context.Background(), root)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), root)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestInvalidateDropsOnlyThatRoot(t *testing.T) {
	cache, _, _, _ := newTestCache()
	root1 := t.TempDir()
	root2 := t.TempDir()

	entry1, err := cache.Get(context.Background(), root1)
	require.NoError(t, err)
	entry2, err := cache.Get(context.Background(), root2)
	require.NoError(t, err)

	cache.Invalidate(root1)

	assert.True(t, entry1.Session.(*fakeSession).disposed)
	assert.False(t, entry2.Session.(*fakeSession).disposed)

	rebuilt, err := cache.Get(context.Background(), root1)
	require.NoError(t, err)
	assert.NotSame(t, entry1, rebuilt)

	kept, err := cache.Get(context.Background(), root2)
	require.NoError(t, err)
	assert.Same(t, entry2, kept)
}

func TestResetAllDropsEverySessionAndBinding(t *testing.T) {
	cache, _, _, loader := newTestCache()
	root1 := t.TempDir()
	root2 := t.TempDir()

	entry1, err := cache.Get(context.Background(), root1)
	require.NoError(t, err)
	entry2, err := cache.Get(context.Background(), root2)
	require.NoError(t, err)
	loadsBefore := loader.loads

	cache.ResetAll()

	assert.True(t, entry1.Session.(*fakeSession).disposed)
	assert.True(t, entry2.Session.(*fakeSession).disposed)
	assert.Empty(t, cache.CachedRoots())

	// Bindings were dropped too, so rebuilding redoes installation discovery.
	_, err = cache.Get(context.Background(), root1)
	require.NoError(t, err)
	assert.Greater(t, loader.loads, loadsBefore)
}

func TestScopeProviderIsLive(t *testing.T) {
	cache, docs, tracker, _ := newTestCache()
	root := t.TempDir()

	entry, err := cache.Get(context.Background(), root)
	require.NoError(t, err)
	provider := entry.Session.(*fakeSession).provider

	overlaid := root + "/src/new.ts"
	assert.NotContains(t, provider.RootFiles(), overlaid)
	assert.Equal(t, "0", provider.ContentVersion(overlaid))

	// Mutations after session build must be visible through the provider
	// without a rebuild.
	docs.SetOverlay(overlaid, "export const fresh = true;")
	tracker.Register(root, root+"/src/other.ts")

	files := provider.RootFiles()
	assert.Contains(t, files, overlaid)
	assert.Contains(t, files, root+"/src/other.ts")
	assert.Equal(t, "1", provider.ContentVersion(overlaid))

	content, err := provider.Content(overlaid)
	require.NoError(t, err)
	assert.Equal(t, "export const fresh = true;", content)
}

func TestScopeProviderDeduplicates(t *testing.T) {
	cache, docs, tracker, _ := newTestCache()
	root := t.TempDir()
	path := root + "/a.ts"

	docs.SetOverlay(path, "")
	tracker.Register(root, path)

	entry, err := cache.Get(context.Background(), root)
	require.NoError(t, err)

	files := entry.Session.(*fakeSession).provider.RootFiles()
	count := 0
	for _, f := range files {
		if f == path {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestScopeProviderIgnoresForeignOverlays(t *testing.T) {
	cache, docs, _, _ := newTestCache()
	root := t.TempDir()
	other := t.TempDir()

	docs.SetOverlay(other+"/b.ts", "")

	entry, err := cache.Get(context.Background(), root)
	require.NoError(t, err)
	assert.NotContains(t, entry.Session.(*fakeSession).provider.RootFiles(), other+"/b.ts")
}

func TestClearAllDropsOverlaysAndAccessedFiles(t *testing.T) {
	cache, docs, tracker, _ := newTestCache()
	root := t.TempDir()

	docs.SetOverlay(root+"/a.ts", "x")
	tracker.Register(root, root+"/a.ts")
	_, err := cache.Get(context.Background(), root)
	require.NoError(t, err)

	cache.ClearAll()

	assert.Empty(t, cache.CachedRoots())
	assert.False(t, docs.HasOverlay(root+"/a.ts"))
	assert.Empty(t, tracker.Files(root))
}

func TestTrackerRegisterReportsNewness(t *testing.T) {
	tracker := NewTracker()

	assert.True(t, tracker.Register("/p", "/p/a.ts"))
	assert.False(t, tracker.Register("/p", "/p/a.ts"))
	assert.True(t, tracker.Register("/p", "/p/b.ts"))
	assert.True(t, tracker.Register("/q", "/p/a.ts"))

	assert.Equal(t, []string{"/p/a.ts", "/p/b.ts"}, tracker.Files("/p"))
}
