package errors

import (
	"fmt"
	"testing"
)

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matches func(error) bool
	}{
		{"invalid path", NewInvalidPathError("/missing", "does not exist"), IsInvalidPath},
		{"config parse", NewConfigParseError("/p/tsconfig.json", []string{"unexpected token"}), IsConfigParse},
		{"engine load", NewEngineLoadError("/p/node_modules/typescript", fmt.Errorf("boom")), IsEngineLoad},
		{"query", NewQueryError("hover", "/p/a.ts", fmt.Errorf("boom")), IsQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.matches(tt.err) {
				t.Errorf("classifier did not match %v", tt.err)
			}
			if tt.matches(fmt.Errorf("unrelated")) {
				t.Errorf("classifier matched unrelated error")
			}
		})
	}
}

func TestClassifiersSeeThroughWrapping(t *testing.T) {
	wrapped := WrapWithContext("load config", NewConfigParseError("/p/tsconfig.json", []string{"bad"}))
	if !IsConfigParse(wrapped) {
		t.Errorf("IsConfigParse should match wrapped error")
	}

	notFound := fmt.Errorf("read /p/a.ts: %w", ErrNotFound)
	if !IsNotFound(notFound) {
		t.Errorf("IsNotFound should match wrapped sentinel")
	}
}

func TestQueryErrorMessage(t *testing.T) {
	err := NewQueryError("references", "/p/a.ts", fmt.Errorf("engine exploded"))
	want := "engine query references failed for /p/a.ts: engine exploded"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
