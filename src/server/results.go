package server

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"typegate/src/internal/common"
	"typegate/src/internal/engine"
	"typegate/src/internal/textpos"
)

// HoverResult is the formatted quick-info answer. Found=false is the normal
// "nothing at this position" outcome.
type HoverResult struct {
	Found         bool           `json:"found"`
	Contents      string         `json:"contents,omitempty"`
	Documentation string         `json:"documentation,omitempty"`
	Range         protocol.Range `json:"range,omitempty"`
}

// NavigationNode is one node of a formatted navigation tree
type NavigationNode struct {
	Text     string            `json:"text"`
	Kind     string            `json:"kind"`
	Range    protocol.Range    `json:"range"`
	Children []*NavigationNode `json:"children,omitempty"`
}

// InlayHintItem is a formatted inline annotation
type InlayHintItem struct {
	Label    string            `json:"label"`
	Kind     string            `json:"kind,omitempty"`
	Position protocol.Position `json:"position"`
}

// DiagnosticsResult groups the engine's three diagnostic passes
type DiagnosticsResult struct {
	Syntactic  []protocol.Diagnostic `json:"syntactic"`
	Semantic   []protocol.Diagnostic `json:"semantic"`
	Suggestion []protocol.Diagnostic `json:"suggestion"`
}

// StatusResult describes a project's resolved analysis setup
type StatusResult struct {
	Root              string   `json:"root"`
	ActiveWorkspace   string   `json:"activeWorkspace,omitempty"`
	EngineVersion     string   `json:"engineVersion"`
	EngineSource      string   `json:"engineSource"`
	EngineInstallPath string   `json:"engineInstallPath"`
	ConfigPath        string   `json:"configPath,omitempty"`
	ConfigErrors      []string `json:"configErrors,omitempty"`
	ConfigFingerprint string   `json:"configFingerprint"`
	Frameworks        []string `json:"detectedFrameworks,omitempty"`
	RootFileCount     int      `json:"rootFileCount"`
	CachedRoots       []string `json:"cachedRoots,omitempty"`
	Tips              []string `json:"tips,omitempty"`
}

// offsetPosition converts a 0-based engine offset into a 0-based protocol
// position via the coordinate mapper.
func offsetPosition(content string, offset int) protocol.Position {
	p := textpos.OffsetToPosition(content, offset)
	return protocol.Position{Line: uint32(p.Line - 1), Character: uint32(p.Column - 1)}
}

// offsetRange converts an engine offset span into a protocol range
func offsetRange(content string, start, end int) protocol.Range {
	return protocol.Range{
		Start: offsetPosition(content, start),
		End:   offsetPosition(content, end),
	}
}

// formatLocations maps engine offset spans to protocol locations. Files
// whose content cannot be read any more are skipped, not fatal.
func (m *Manager) formatLocations(locs []engine.Location) []protocol.Location {
	result := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		content, err := m.docs.Content(loc.File)
		if err != nil {
			common.ServerLogger.Debug("skipping unreadable location %s: %v", loc.File, err)
			continue
		}
		result = append(result, protocol.Location{
			URI:   uri.File(loc.File),
			Range: offsetRange(content, loc.Start, loc.End),
		})
	}
	return result
}

// formatWorkspaceEdit groups file edits into a protocol workspace edit
func (m *Manager) formatWorkspaceEdit(edits []engine.FileEdit) *protocol.WorkspaceEdit {
	changes := make(map[uri.URI][]protocol.TextEdit)
	for _, edit := range edits {
		content, err := m.docs.Content(edit.File)
		if err != nil {
			common.ServerLogger.Debug("skipping edit for unreadable file %s: %v", edit.File, err)
			continue
		}
		key := uri.File(edit.File)
		changes[key] = append(changes[key], protocol.TextEdit{
			Range:   offsetRange(content, edit.Start, edit.End),
			NewText: edit.NewText,
		})
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}

var completionKinds = map[string]protocol.CompletionItemKind{
	"function":    protocol.CompletionItemKindFunction,
	"method":      protocol.CompletionItemKindMethod,
	"var":         protocol.CompletionItemKindVariable,
	"let":         protocol.CompletionItemKindVariable,
	"const":       protocol.CompletionItemKindConstant,
	"class":       protocol.CompletionItemKindClass,
	"interface":   protocol.CompletionItemKindInterface,
	"enum":        protocol.CompletionItemKindEnum,
	"enum member": protocol.CompletionItemKindEnumMember,
	"module":      protocol.CompletionItemKindModule,
	"property":    protocol.CompletionItemKindProperty,
	"getter":      protocol.CompletionItemKindProperty,
	"setter":      protocol.CompletionItemKindProperty,
	"keyword":     protocol.CompletionItemKindKeyword,
	"type":        protocol.CompletionItemKindClass,
	"alias":       protocol.CompletionItemKindReference,
	"parameter":   protocol.CompletionItemKindVariable,
}

func formatCompletions(items []engine.CompletionItem) []protocol.CompletionItem {
	result := make([]protocol.CompletionItem, 0, len(items))
	for _, item := range items {
		kind, ok := completionKinds[item.Kind]
		if !ok {
			kind = protocol.CompletionItemKindText
		}
		result = append(result, protocol.CompletionItem{
			Label:    item.Name,
			Kind:     kind,
			Detail:   item.Detail,
			SortText: item.SortText,
		})
	}
	return result
}

func formatSignatureHelp(help *engine.SignatureHelp) *protocol.SignatureHelp {
	if help == nil || len(help.Signatures) == 0 {
		return nil
	}

	signatures := make([]protocol.SignatureInformation, 0, len(help.Signatures))
	for _, label := range help.Signatures {
		signatures = append(signatures, protocol.SignatureInformation{Label: label})
	}
	return &protocol.SignatureHelp{
		Signatures:      signatures,
		ActiveSignature: uint32(help.ActiveSignature),
		ActiveParameter: uint32(help.ActiveParameter),
	}
}

func formatNavigation(content string, item *engine.NavigationItem) *NavigationNode {
	if item == nil {
		return nil
	}

	node := &NavigationNode{
		Text:  item.Text,
		Kind:  item.Kind,
		Range: offsetRange(content, item.Start, item.End),
	}
	for _, child := range item.Children {
		node.Children = append(node.Children, formatNavigation(content, child))
	}
	return node
}

func formatInlayHints(content string, hints []engine.InlayHint) []InlayHintItem {
	result := make([]InlayHintItem, 0, len(hints))
	for _, hint := range hints {
		result = append(result, InlayHintItem{
			Label:    hint.Text,
			Kind:     hint.Kind,
			Position: offsetPosition(content, hint.Offset),
		})
	}
	return result
}

var diagnosticSeverities = map[string]protocol.DiagnosticSeverity{
	"error":      protocol.DiagnosticSeverityError,
	"warning":    protocol.DiagnosticSeverityWarning,
	"suggestion": protocol.DiagnosticSeverityHint,
	"message":    protocol.DiagnosticSeverityInformation,
}

func formatDiagnostics(content string, diags []engine.Diagnostic) []protocol.Diagnostic {
	result := make([]protocol.Diagnostic, 0, len(diags))
	for _, diag := range diags {
		severity, ok := diagnosticSeverities[diag.Category]
		if !ok {
			severity = protocol.DiagnosticSeverityInformation
		}
		result = append(result, protocol.Diagnostic{
			Range:    offsetRange(content, diag.Start, diag.Start+diag.Length),
			Severity: severity,
			Code:     diag.Code,
			Source:   "typegate",
			Message:  diag.Message,
		})
	}
	return result
}
