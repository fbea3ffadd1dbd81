package project

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/gjson"

	"typegate/src/internal/common"
	"typegate/src/internal/engine"
)

// DefaultScanDepth bounds the declaration/source scan below a project root
const DefaultScanDepth = 5

// Directories never entered during the project tree scan
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
}

var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
	".js":  true,
	".jsx": true,
}

// Loaded is the resolved compilation scope and options for one project root
type Loaded struct {
	Root             string                 `json:"root"`
	ConfigPath       string                 `json:"configPath,omitempty"`
	CompilerOptions  map[string]interface{} `json:"compilerOptions"`
	RootFiles        []string               `json:"rootFiles"`
	Errors           []string               `json:"errors,omitempty"`
	DeclarationFiles []string               `json:"declarationFiles,omitempty"`
	Frameworks       []string               `json:"detectedFrameworks,omitempty"`
}

// Fingerprint returns a stable hash of the loaded options and root files,
// used for status reporting and rebuild logging.
func (l *Loaded) Fingerprint() uint64 {
	files := append([]string(nil), l.RootFiles...)
	sort.Strings(files)

	h := xxhash.New()
	if data, err := json.Marshal(l.CompilerOptions); err == nil {
		_, _ = h.Write(data)
	}
	for _, f := range files {
		_, _ = h.WriteString(f)
		_, _ = h.WriteString("\n")
	}
	return h.Sum64()
}

// DefaultCompilerOptions is the fixed option set applied when a project has
// no config file: permissive enough to analyze arbitrary scripts with a
// modern target, bundler-style resolution and mixed JS/TS, strict checking
// on, declaration output off.
func DefaultCompilerOptions() map[string]interface{} {
	return map[string]interface{}{
		"target":           "esnext",
		"module":           "esnext",
		"moduleResolution": "bundler",
		"allowJs":          true,
		"strict":           true,
		"declaration":      false,
		"skipLibCheck":     true,
		"esModuleInterop":  true,
		"jsx":              "preserve",
	}
}

// ConfigLoader resolves compilation scope and options for project roots
type ConfigLoader struct {
	scanDepth int
}

// NewConfigLoader creates a loader scanning at most scanDepth directory
// levels below the root; non-positive depth selects the default.
func NewConfigLoader(scanDepth int) *ConfigLoader {
	if scanDepth <= 0 {
		scanDepth = DefaultScanDepth
	}
	return &ConfigLoader{scanDepth: scanDepth}
}

// Load resolves the scope for root. Config parsing is delegated to the
// engine's own reader; parse errors are collected into Errors, never fatal.
func (cl *ConfigLoader) Load(ctx context.Context, root string, eng engine.Engine) *Loaded {
	loaded := &Loaded{
		Root:            root,
		CompilerOptions: DefaultCompilerOptions(),
	}

	var excludes []string
	if configPath := ConfigFilePath(root); configPath != "" {
		loaded.ConfigPath = configPath
		excludes = readExcludeGlobs(configPath)

		parsed, err := eng.ParseProjectConfig(ctx, configPath)
		if err != nil {
			common.EngineLogger.Warn("config reader failed for %s: %v", configPath, err)
			loaded.Errors = append(loaded.Errors, err.Error())
		} else {
			loaded.Errors = append(loaded.Errors, parsed.Errors...)
			if len(parsed.Options) > 0 {
				loaded.CompilerOptions = parsed.Options
			}
			loaded.RootFiles = append(loaded.RootFiles, parsed.RootFiles...)
		}
	}

	declarations, sources := cl.scanTree(root, excludes)
	loaded.DeclarationFiles = declarations

	// A project without declared root files (no config, or a config the
	// reader could not make sense of) falls back to the scanned sources.
	if len(loaded.RootFiles) == 0 {
		loaded.RootFiles = sources
	}

	declared := make(map[string]bool, len(loaded.RootFiles))
	for _, f := range loaded.RootFiles {
		declared[f] = true
	}
	for _, decl := range declarations {
		if !declared[decl] {
			loaded.RootFiles = append(loaded.RootFiles, decl)
		}
	}

	loaded.Frameworks = DetectFrameworks(root)
	cl.applyViteClientTypes(root, loaded)

	return loaded
}

// scanTree walks the project tree up to the configured depth, returning
// declaration files and regular source files separately. Dependency, build
// and VCS directories are skipped, as is anything matching the config's
// exclude globs.
func (cl *ConfigLoader) scanTree(root string, excludes []string) (declarations, sources []string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if strings.Count(rel, "/") >= cl.scanDepth {
				return fs.SkipDir
			}
			if matchesAny(excludes, rel) {
				return fs.SkipDir
			}
			return nil
		}

		if matchesAny(excludes, rel) {
			return nil
		}

		if strings.HasSuffix(path, ".d.ts") {
			declarations = append(declarations, path)
			return nil
		}
		if sourceExtensions[filepath.Ext(path)] {
			sources = append(sources, path)
		}
		return nil
	})

	sort.Strings(declarations)
	sort.Strings(sources)
	return declarations, sources
}

func matchesAny(globs []string, rel string) bool {
	for _, glob := range globs {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// readExcludeGlobs pulls the raw exclude patterns out of the config file
// without waiting for the engine's reader, so the scan can honor them even
// when the config is otherwise malformed for the engine.
func readExcludeGlobs(configPath string) []string {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil
	}

	var globs []string
	gjson.GetBytes(data, "exclude").ForEach(func(_, value gjson.Result) bool {
		if g := value.String(); g != "" {
			globs = append(globs, filepath.ToSlash(g))
		}
		return true
	})
	return globs
}

// applyViteClientTypes is the one place framework detection affects scope:
// a vite project whose client declaration exists on disk gets "vite/client"
// added to compilerOptions.types unless already listed.
func (cl *ConfigLoader) applyViteClientTypes(root string, loaded *Loaded) {
	hasVite := false
	for _, fw := range loaded.Frameworks {
		if fw == "vite" {
			hasVite = true
			break
		}
	}
	if !hasVite {
		return
	}
	if !common.FileExists(filepath.Join(root, "node_modules", "vite", "client.d.ts")) {
		return
	}

	var types []interface{}
	if existing, ok := loaded.CompilerOptions["types"].([]interface{}); ok {
		for _, t := range existing {
			if s, ok := t.(string); ok && s == "vite/client" {
				return
			}
		}
		types = existing
	}
	loaded.CompilerOptions["types"] = append(types, "vite/client")
}
