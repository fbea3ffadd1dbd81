package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"

	"typegate/src/internal/common"
	"typegate/src/internal/errors"
)

// Source identifies where an engine binding came from
type Source string

const (
	// SourceProject means the project's own dependency directory supplied the engine
	SourceProject Source = "project"
	// SourceBundled means the server fell back to its bundled installation
	SourceBundled Source = "bundled"
)

// Binding is the resolved engine installation for one project root
type Binding struct {
	Engine      Engine
	Version     string
	Source      Source
	InstallPath string
}

// Resolver picks the engine installation backing a project root. Projects pin
// their own compiler versions, so diagnostics are only trustworthy when the
// project-local installation is used where one exists. Bindings are cached
// per root until Reset so that rebuilding a session does not redo discovery.
type Resolver struct {
	mu          sync.Mutex
	loader      Loader
	bundledPath string
	bindings    map[string]*Binding
}

// NewResolver creates a resolver that loads installations through loader and
// falls back to the bundled installation at bundledPath.
func NewResolver(loader Loader, bundledPath string) *Resolver {
	return &Resolver{
		loader:      loader,
		bundledPath: bundledPath,
		bindings:    make(map[string]*Binding),
	}
}

// Resolve returns the engine binding for root, creating and caching it on
// first use. A project-local installation that fails to load is logged and
// degrades to the bundled installation; only a bundled load failure is fatal.
func (r *Resolver) Resolve(root string) (*Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if binding, ok := r.bindings[root]; ok {
		return binding, nil
	}

	binding, err := r.resolveLocked(root)
	if err != nil {
		return nil, err
	}

	r.bindings[root] = binding
	return binding, nil
}

func (r *Resolver) resolveLocked(root string) (*Binding, error) {
	installPath := filepath.Join(root, "node_modules", "typescript")
	if common.IsDirectory(installPath) {
		eng, err := r.loader.Load(installPath)
		if err != nil {
			loadErr := errors.NewEngineLoadError(installPath, err)
			common.EngineLogger.Warn("%v, falling back to bundled engine", loadErr)
		} else {
			binding := &Binding{
				Engine:      eng,
				Version:     installedVersion(installPath, eng),
				Source:      SourceProject,
				InstallPath: installPath,
			}
			common.EngineLogger.Info("using project engine %s for %s", binding.Version, root)
			return binding, nil
		}
	}

	eng, err := r.loader.Load(r.bundledPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load bundled engine at %s: %w", r.bundledPath, err)
	}

	return &Binding{
		Engine:      eng,
		Version:     installedVersion(r.bundledPath, eng),
		Source:      SourceBundled,
		InstallPath: r.bundledPath,
	}, nil
}

// Reset drops every cached binding, stopping engines that hold external
// resources. Used on workspace switch.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, binding := range r.bindings {
		if closer, ok := binding.Engine.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				common.EngineLogger.Warn("failed to stop engine at %s: %v", binding.InstallPath, err)
			}
		}
	}
	r.bindings = make(map[string]*Binding)
}

// installedVersion prefers the engine's self-reported version and falls back
// to the installation's package manifest.
func installedVersion(installPath string, eng Engine) string {
	if v := eng.Version(); v != "" {
		return v
	}

	data, err := os.ReadFile(filepath.Join(installPath, "package.json"))
	if err != nil {
		return "unknown"
	}
	if v := gjson.GetBytes(data, "version"); v.Exists() {
		return v.String()
	}
	return "unknown"
}
