// Package server exposes the code-intelligence operations consumed by the
// protocol/CLI layer. Every operation resolves the owning project, registers
// the file, gets-or-rebuilds that project's analysis session and formats the
// engine's answer; engine failures are caught at this boundary and surfaced
// as structured errors, never a crash.
package server

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"typegate/src/config"
	"typegate/src/internal/common"
	"typegate/src/internal/engine"
	"typegate/src/internal/errors"
	"typegate/src/internal/project"
	"typegate/src/internal/textpos"
	"typegate/src/server/documents"
	"typegate/src/server/sessions"
)

// Manager owns the per-project session lifecycle and the operation surface
type Manager struct {
	docs      *documents.Store
	tracker   *sessions.Tracker
	cache     *sessions.Cache
	workspace *sessions.Workspace
}

// NewManager wires a manager from the server config and an engine loader
func NewManager(cfg *config.Config, loader engine.Loader) *Manager {
	docs := documents.NewStore()
	tracker := sessions.NewTracker()
	resolver := engine.NewResolver(loader, cfg.Engine.BundledPath)
	cache := sessions.NewCache(docs, tracker, resolver, project.NewConfigLoader(cfg.ScanDepth))

	return &Manager{
		docs:      docs,
		tracker:   tracker,
		cache:     cache,
		workspace: sessions.NewWorkspace(cache),
	}
}

// sessionFor resolves the owning root for path, registers the access and
// returns the live session entry. Registration of a previously-unseen file
// invalidates the root's session before the get, so the rebuild picks up the
// widened scope.
func (m *Manager) sessionFor(ctx context.Context, path string) (*sessions.Entry, string, error) {
	root := project.ResolveRoot(path)
	if m.tracker.Register(root, path) {
		m.cache.Invalidate(root)
	}
	entry, err := m.cache.Get(ctx, root)
	return entry, root, err
}

// guard runs fn and converts whatever escapes it into the operation's error
// taxonomy: path errors pass through, anything else from the engine becomes
// a QueryError, including panics.
func (m *Manager) guard(operation, file string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			common.ServerLogger.Error("engine panicked during %s for %s: %v", operation, file, r)
			err = errors.NewQueryError(operation, file, fmt.Errorf("engine panic: %v", r))
		}
	}()

	if e := fn(); e != nil {
		if errors.IsNotFound(e) || errors.IsInvalidPath(e) {
			return e
		}
		return errors.NewQueryError(operation, file, e)
	}
	return nil
}

// positionQuery is the shared body of every offset-based operation
func (m *Manager) positionQuery(ctx context.Context, operation, path string, line, column int,
	query func(session engine.Session, file, content string, offset int) error) error {

	resolved, err := m.workspace.ResolvePath(path, false)
	if err != nil {
		return err
	}

	return m.guard(operation, resolved, func() error {
		entry, _, err := m.sessionFor(ctx, resolved)
		if err != nil {
			return err
		}
		content, err := m.docs.Content(resolved)
		if err != nil {
			return err
		}
		offset := textpos.PositionToOffset(content, line, column)
		return query(entry.Session, resolved, content, offset)
	})
}

// Hover returns quick info at a 1-based line/column. A position with nothing
// under it yields Found=false, which is a normal outcome, not an error.
func (m *Manager) Hover(ctx context.Context, path string, line, column int) (*HoverResult, error) {
	result := &HoverResult{}
	err := m.positionQuery(ctx, "hover", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			info, err := session.Hover(ctx, file, offset)
			if err != nil {
				return err
			}
			if info == nil {
				return nil
			}
			result.Found = true
			result.Contents = info.Contents
			result.Documentation = info.Documentation
			result.Range = offsetRange(content, info.Start, info.End)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Definition returns the definition sites for the symbol at the position
func (m *Manager) Definition(ctx context.Context, path string, line, column int) ([]protocol.Location, error) {
	var result []protocol.Location
	err := m.positionQuery(ctx, "definition", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			locs, err := session.Definition(ctx, file, offset)
			if err != nil {
				return err
			}
			result = m.formatLocations(locs)
			return nil
		})
	return result, err
}

// References returns every reference to the symbol at the position
func (m *Manager) References(ctx context.Context, path string, line, column int) ([]protocol.Location, error) {
	var result []protocol.Location
	err := m.positionQuery(ctx, "references", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			locs, err := session.References(ctx, file, offset)
			if err != nil {
				return err
			}
			result = m.formatLocations(locs)
			return nil
		})
	return result, err
}

// Completion returns completion entries at the position
func (m *Manager) Completion(ctx context.Context, path string, line, column int) ([]protocol.CompletionItem, error) {
	var result []protocol.CompletionItem
	err := m.positionQuery(ctx, "completion", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			items, err := session.Completions(ctx, file, offset)
			if err != nil {
				return err
			}
			result = formatCompletions(items)
			return nil
		})
	return result, err
}

// SignatureHelp returns the active signature at a call site, or nil
func (m *Manager) SignatureHelp(ctx context.Context, path string, line, column int) (*protocol.SignatureHelp, error) {
	var result *protocol.SignatureHelp
	err := m.positionQuery(ctx, "signatureHelp", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			help, err := session.SignatureHelp(ctx, file, offset)
			if err != nil {
				return err
			}
			result = formatSignatureHelp(help)
			return nil
		})
	return result, err
}

// RenameLocations returns every location a rename at the position must edit
func (m *Manager) RenameLocations(ctx context.Context, path string, line, column int) ([]protocol.Location, error) {
	var result []protocol.Location
	err := m.positionQuery(ctx, "rename", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			locs, err := session.RenameLocations(ctx, file, offset)
			if err != nil {
				return err
			}
			result = m.formatLocations(locs)
			return nil
		})
	return result, err
}

// ApplicableRefactors lists the refactorings the engine offers over a span
func (m *Manager) ApplicableRefactors(ctx context.Context, path string, line, column, endLine, endColumn int) ([]engine.Refactor, error) {
	var result []engine.Refactor
	err := m.positionQuery(ctx, "applicableRefactors", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			end := textpos.PositionToOffset(content, endLine, endColumn)
			refactors, err := session.ApplicableRefactors(ctx, file, offset, end)
			if err != nil {
				return err
			}
			result = refactors
			return nil
		})
	return result, err
}

// RefactorEdits returns the workspace edit for one refactoring action
func (m *Manager) RefactorEdits(ctx context.Context, path string, line, column, endLine, endColumn int, refactor, action string) (*protocol.WorkspaceEdit, error) {
	var result *protocol.WorkspaceEdit
	err := m.positionQuery(ctx, "refactorEdits", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			end := textpos.PositionToOffset(content, endLine, endColumn)
			edits, err := session.RefactorEdits(ctx, file, offset, end, refactor, action)
			if err != nil {
				return err
			}
			result = m.formatWorkspaceEdit(edits)
			return nil
		})
	return result, err
}

// NavigationTree returns the file's symbol outline
func (m *Manager) NavigationTree(ctx context.Context, path string) (*NavigationNode, error) {
	resolved, err := m.workspace.ResolvePath(path, false)
	if err != nil {
		return nil, err
	}

	var result *NavigationNode
	err = m.guard("navigationTree", resolved, func() error {
		entry, _, err := m.sessionFor(ctx, resolved)
		if err != nil {
			return err
		}
		content, err := m.docs.Content(resolved)
		if err != nil {
			return err
		}
		tree, err := entry.Session.NavigationTree(ctx, resolved)
		if err != nil {
			return err
		}
		result = formatNavigation(content, tree)
		return nil
	})
	return result, err
}

// InlayHints returns inline annotations over a span
func (m *Manager) InlayHints(ctx context.Context, path string, line, column, endLine, endColumn int) ([]InlayHintItem, error) {
	var result []InlayHintItem
	err := m.positionQuery(ctx, "inlayHints", path, line, column,
		func(session engine.Session, file, content string, offset int) error {
			end := textpos.PositionToOffset(content, endLine, endColumn)
			hints, err := session.InlayHints(ctx, file, offset, end)
			if err != nil {
				return err
			}
			result = formatInlayHints(content, hints)
			return nil
		})
	return result, err
}

// Diagnostics runs the engine's three diagnostic passes over one file
func (m *Manager) Diagnostics(ctx context.Context, path string) (*DiagnosticsResult, error) {
	resolved, err := m.workspace.ResolvePath(path, false)
	if err != nil {
		return nil, err
	}

	var result *DiagnosticsResult
	err = m.guard("diagnostics", resolved, func() error {
		entry, _, err := m.sessionFor(ctx, resolved)
		if err != nil {
			return err
		}
		content, err := m.docs.Content(resolved)
		if err != nil {
			return err
		}
		bundle, err := entry.Session.Diagnostics(ctx, resolved)
		if err != nil {
			return err
		}
		result = &DiagnosticsResult{
			Syntactic:  formatDiagnostics(content, bundle.Syntactic),
			Semantic:   formatDiagnostics(content, bundle.Semantic),
			Suggestion: formatDiagnostics(content, bundle.Suggestion),
		}
		return nil
	})
	return result, err
}

// UpdateOverlay stores unsaved content for path and invalidates the owning
// project's session so the next query re-analyzes with the new version.
func (m *Manager) UpdateOverlay(path, content string) (int, error) {
	resolved, err := m.workspace.ResolvePath(path, false)
	if err != nil {
		return 0, err
	}

	version := m.docs.SetOverlay(resolved, content)
	root := project.ResolveRoot(resolved)
	m.cache.Invalidate(root)

	common.ServerLogger.Debug("overlay %s now at version %d", resolved, version)
	return version, nil
}

// SwitchWorkspace makes path the active workspace after a full session and
// binding reset. Overlays survive a switch; only ClearAllCaches drops them.
func (m *Manager) SwitchWorkspace(path string) (string, error) {
	return m.workspace.Switch(path)
}

// ResolvePath resolves input against the active workspace
func (m *Manager) ResolvePath(input string, mustExist bool) (string, error) {
	return m.workspace.ResolvePath(input, mustExist)
}

// ActiveWorkspace returns the current workspace root, or ""
func (m *Manager) ActiveWorkspace() string {
	return m.workspace.Active()
}

// ClearAllCaches drops sessions, engine bindings, accessed files and
// overlays. The next query per project rebuilds everything from disk.
func (m *Manager) ClearAllCaches() {
	m.cache.ClearAll()
	common.ServerLogger.Info("all caches cleared")
}

// Status reports the resolved configuration and engine binding for the
// project owning path, plus advisory tips.
func (m *Manager) Status(ctx context.Context, path string) (*StatusResult, error) {
	resolved, err := m.workspace.ResolvePath(path, true)
	if err != nil {
		return nil, err
	}

	var result *StatusResult
	err = m.guard("status", resolved, func() error {
		root := project.ResolveRoot(resolved)
		entry, err := m.cache.Get(ctx, root)
		if err != nil {
			return err
		}

		result = &StatusResult{
			Root:              root,
			ActiveWorkspace:   m.workspace.Active(),
			EngineVersion:     entry.Binding.Version,
			EngineSource:      string(entry.Binding.Source),
			EngineInstallPath: entry.Binding.InstallPath,
			ConfigPath:        entry.Config.ConfigPath,
			ConfigErrors:      entry.Config.Errors,
			ConfigFingerprint: fmt.Sprintf("%016x", entry.Config.Fingerprint()),
			Frameworks:        entry.Config.Frameworks,
			RootFileCount:     len(entry.Config.RootFiles),
			CachedRoots:       m.cache.CachedRoots(),
			Tips:              statusTips(entry),
		}
		return nil
	})
	return result, err
}

func statusTips(entry *sessions.Entry) []string {
	var tips []string
	if entry.Config.ConfigPath == "" {
		tips = append(tips, "no tsconfig.json or jsconfig.json found; analyzing with default compiler options")
	}
	if len(entry.Config.Errors) > 0 {
		tips = append(tips, fmt.Sprintf("project config has %d problem(s); analysis continues with best-effort options", len(entry.Config.Errors)))
	}
	if entry.Binding.Source == engine.SourceBundled {
		tips = append(tips, "project does not provide its own typescript installation; using the bundled engine")
	}
	return tips
}
