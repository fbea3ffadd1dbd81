// Package engine defines the capability surface of the external type-analysis
// engine. The engine itself is consumed, never reimplemented: everything here
// is an interface or a plain data shape for its answers. Positions on this
// boundary are 0-based character offsets; mapping to line/column happens in
// the layers above.
package engine

import "context"

// ScopeProvider is the live compilation-scope callback surface handed to a
// session. The engine consults it on every incremental pass, so answers must
// reflect the current overlay and accessed-file state, not a snapshot.
type ScopeProvider interface {
	// RootFiles returns every file currently in the compilation scope.
	RootFiles() []string

	// Content returns the analyzable content of path (overlay before disk).
	Content(path string) (string, error)

	// ContentVersion returns an opaque staleness token for path. Two unequal
	// tokens mean the content may have changed.
	ContentVersion(path string) string

	// CompilerOptions returns the option bag the scope was resolved with.
	CompilerOptions() map[string]interface{}
}

// Location is a file span in 0-based character offsets
type Location struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// HoverInfo is the quick-info answer at a position
type HoverInfo struct {
	Contents      string `json:"contents"`
	Documentation string `json:"documentation,omitempty"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
}

// CompletionItem is a single completion entry
type CompletionItem struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail,omitempty"`
	SortText string `json:"sortText,omitempty"`
}

// SignatureHelp describes the active signature at a call site
type SignatureHelp struct {
	Signatures      []string `json:"signatures"`
	ActiveSignature int      `json:"activeSignature"`
	ActiveParameter int      `json:"activeParameter"`
}

// RefactorAction is one concrete action offered by a refactoring
type RefactorAction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Refactor is a refactoring applicable at a span
type Refactor struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Actions     []RefactorAction `json:"actions"`
}

// FileEdit is a single text replacement produced by a refactoring
type FileEdit struct {
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"newText"`
}

// NavigationItem is one node of a file's navigation tree
type NavigationItem struct {
	Text     string            `json:"text"`
	Kind     string            `json:"kind"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Children []*NavigationItem `json:"children,omitempty"`
}

// InlayHint is an inline annotation at an offset
type InlayHint struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Kind   string `json:"kind,omitempty"`
}

// Diagnostic is a single engine diagnostic over an offset span
type Diagnostic struct {
	Message  string `json:"message"`
	Category string `json:"category"`
	Code     int    `json:"code"`
	Start    int    `json:"start"`
	Length   int    `json:"length"`
}

// DiagnosticBundle groups the three diagnostic passes the engine runs
type DiagnosticBundle struct {
	Syntactic  []Diagnostic `json:"syntactic"`
	Semantic   []Diagnostic `json:"semantic"`
	Suggestion []Diagnostic `json:"suggestion"`
}

// ParsedConfig is the engine's normalized reading of a project config file.
// Parse problems land in Errors and are never fatal.
type ParsedConfig struct {
	Options   map[string]interface{} `json:"options"`
	RootFiles []string               `json:"rootFiles"`
	Errors    []string               `json:"errors"`
}

// Session is one live analysis session over a fixed scope provider. At most
// one session exists per project root; its internal incremental state is not
// safe to fork.
type Session interface {
	Hover(ctx context.Context, file string, offset int) (*HoverInfo, error)
	Definition(ctx context.Context, file string, offset int) ([]Location, error)
	References(ctx context.Context, file string, offset int) ([]Location, error)
	Completions(ctx context.Context, file string, offset int) ([]CompletionItem, error)
	SignatureHelp(ctx context.Context, file string, offset int) (*SignatureHelp, error)
	RenameLocations(ctx context.Context, file string, offset int) ([]Location, error)
	ApplicableRefactors(ctx context.Context, file string, start, end int) ([]Refactor, error)
	RefactorEdits(ctx context.Context, file string, start, end int, refactor, action string) ([]FileEdit, error)
	NavigationTree(ctx context.Context, file string) (*NavigationItem, error)
	InlayHints(ctx context.Context, file string, start, end int) ([]InlayHint, error)
	Diagnostics(ctx context.Context, file string) (*DiagnosticBundle, error)

	// Dispose releases the session. Further calls are undefined.
	Dispose()
}

// Engine is one loaded installation of the analysis engine
type Engine interface {
	// Version reports the installation's own version string
	Version() string

	// NewSession binds a live scope provider to a fresh analysis session
	NewSession(provider ScopeProvider) (Session, error)

	// ParseProjectConfig delegates config-file reading to the engine's own
	// normalizer. Returned Errors are collected, not fatal.
	ParseProjectConfig(ctx context.Context, configPath string) (*ParsedConfig, error)
}

// Loader turns an installation directory into a usable Engine
type Loader interface {
	Load(installPath string) (Engine, error)
}
