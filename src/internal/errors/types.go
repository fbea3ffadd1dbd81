package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the sentinel wrapped by content lookups for files that are
// neither overlaid nor present on disk.
var ErrNotFound = errors.New("file not found")

// InvalidPathError reports a path that does not exist or cannot be resolved
// against the active workspace.
type InvalidPathError struct {
	Path   string `json:"path"`
	Reason string `json:"reason,omitempty"`
}

func (e *InvalidPathError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid path %s", e.Path)
}

// NewInvalidPathError creates a new InvalidPathError
func NewInvalidPathError(path, reason string) *InvalidPathError {
	return &InvalidPathError{Path: path, Reason: reason}
}

// ConfigParseError carries the non-fatal messages collected while reading a
// project configuration file. Analysis proceeds with best-effort defaults.
type ConfigParseError struct {
	ConfigPath string   `json:"configPath"`
	Messages   []string `json:"messages"`
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.ConfigPath, strings.Join(e.Messages, "; "))
}

// NewConfigParseError creates a new ConfigParseError
func NewConfigParseError(configPath string, messages []string) *ConfigParseError {
	return &ConfigParseError{ConfigPath: configPath, Messages: messages}
}

// EngineLoadError reports a project-local engine installation that exists
// but could not be loaded. Callers fall back to the bundled installation.
type EngineLoadError struct {
	InstallPath string `json:"installPath"`
	Cause       error  `json:"cause,omitempty"`
}

func (e *EngineLoadError) Error() string {
	return fmt.Sprintf("failed to load engine at %s: %v", e.InstallPath, e.Cause)
}

func (e *EngineLoadError) Unwrap() error {
	return e.Cause
}

// NewEngineLoadError creates a new EngineLoadError
func NewEngineLoadError(installPath string, cause error) *EngineLoadError {
	return &EngineLoadError{InstallPath: installPath, Cause: cause}
}

// QueryError wraps a failure raised by the engine while answering a single
// operation. It is caught at the operation boundary and surfaced as a
// structured payload; it never crashes the process.
type QueryError struct {
	Operation string `json:"operation"`
	File      string `json:"file,omitempty"`
	Cause     error  `json:"cause,omitempty"`
}

func (e *QueryError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("engine query %s failed for %s: %v", e.Operation, e.File, e.Cause)
	}
	return fmt.Sprintf("engine query %s failed: %v", e.Operation, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a new QueryError
func NewQueryError(operation, file string, cause error) *QueryError {
	return &QueryError{Operation: operation, File: file, Cause: cause}
}

// Error classification helpers

// IsNotFound checks whether err wraps the missing-file sentinel
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidPath checks if the error is a path resolution error
func IsInvalidPath(err error) bool {
	var target *InvalidPathError
	return errors.As(err, &target)
}

// IsConfigParse checks if the error is a project config parse error
func IsConfigParse(err error) bool {
	var target *ConfigParseError
	return errors.As(err, &target)
}

// IsEngineLoad checks if the error is an engine installation load failure
func IsEngineLoad(err error) bool {
	var target *EngineLoadError
	return errors.As(err, &target)
}

// IsQuery checks if the error is an engine query failure
func IsQuery(err error) bool {
	var target *QueryError
	return errors.As(err, &target)
}

// WrapWithContext wraps an error with operation context
func WrapWithContext(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}
