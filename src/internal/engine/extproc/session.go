package extproc

import (
	"context"

	"typegate/src/internal/engine"
)

// hostSession is one analysis session living inside a Host process
type hostSession struct {
	host *Host
	id   string
}

// queryParams covers every per-session request shape; zero-valued fields are
// omitted from the wire.
type queryParams struct {
	Session  string `json:"session"`
	File     string `json:"file,omitempty"`
	Offset   int    `json:"offset"`
	End      int    `json:"end,omitempty"`
	Refactor string `json:"refactor,omitempty"`
	Action   string `json:"action,omitempty"`
}

func (s *hostSession) Hover(ctx context.Context, file string, offset int) (*engine.HoverInfo, error) {
	var info *engine.HoverInfo
	err := s.host.call(ctx, "session/hover", queryParams{Session: s.id, File: file, Offset: offset}, &info)
	return info, err
}

func (s *hostSession) Definition(ctx context.Context, file string, offset int) ([]engine.Location, error) {
	var locs []engine.Location
	err := s.host.call(ctx, "session/definition", queryParams{Session: s.id, File: file, Offset: offset}, &locs)
	return locs, err
}

func (s *hostSession) References(ctx context.Context, file string, offset int) ([]engine.Location, error) {
	var locs []engine.Location
	err := s.host.call(ctx, "session/references", queryParams{Session: s.id, File: file, Offset: offset}, &locs)
	return locs, err
}

func (s *hostSession) Completions(ctx context.Context, file string, offset int) ([]engine.CompletionItem, error) {
	var items []engine.CompletionItem
	err := s.host.call(ctx, "session/completions", queryParams{Session: s.id, File: file, Offset: offset}, &items)
	return items, err
}

func (s *hostSession) SignatureHelp(ctx context.Context, file string, offset int) (*engine.SignatureHelp, error) {
	var help *engine.SignatureHelp
	err := s.host.call(ctx, "session/signatureHelp", queryParams{Session: s.id, File: file, Offset: offset}, &help)
	return help, err
}

func (s *hostSession) RenameLocations(ctx context.Context, file string, offset int) ([]engine.Location, error) {
	var locs []engine.Location
	err := s.host.call(ctx, "session/renameLocations", queryParams{Session: s.id, File: file, Offset: offset}, &locs)
	return locs, err
}

func (s *hostSession) ApplicableRefactors(ctx context.Context, file string, start, end int) ([]engine.Refactor, error) {
	var refactors []engine.Refactor
	err := s.host.call(ctx, "session/applicableRefactors",
		queryParams{Session: s.id, File: file, Offset: start, End: end}, &refactors)
	return refactors, err
}

func (s *hostSession) RefactorEdits(ctx context.Context, file string, start, end int, refactor, action string) ([]engine.FileEdit, error) {
	var edits []engine.FileEdit
	err := s.host.call(ctx, "session/refactorEdits",
		queryParams{Session: s.id, File: file, Offset: start, End: end, Refactor: refactor, Action: action}, &edits)
	return edits, err
}

func (s *hostSession) NavigationTree(ctx context.Context, file string) (*engine.NavigationItem, error) {
	var tree *engine.NavigationItem
	err := s.host.call(ctx, "session/navigationTree", queryParams{Session: s.id, File: file}, &tree)
	return tree, err
}

func (s *hostSession) InlayHints(ctx context.Context, file string, start, end int) ([]engine.InlayHint, error) {
	var hints []engine.InlayHint
	err := s.host.call(ctx, "session/inlayHints",
		queryParams{Session: s.id, File: file, Offset: start, End: end}, &hints)
	return hints, err
}

func (s *hostSession) Diagnostics(ctx context.Context, file string) (*engine.DiagnosticBundle, error) {
	var bundle engine.DiagnosticBundle
	err := s.host.call(ctx, "session/diagnostics", queryParams{Session: s.id, File: file}, &bundle)
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

// Dispose tells the host to drop the session and stops answering its scope
// requests. Best-effort; a dead host process already has no session to drop.
func (s *hostSession) Dispose() {
	s.host.notify("session/dispose", queryParams{Session: s.id})

	s.host.providerMu.Lock()
	delete(s.host.providers, s.id)
	s.host.providerMu.Unlock()
}
