// Package textpos converts between 1-based (line, column) pairs and 0-based
// character offsets into a text buffer. It is the single source of truth for
// coordinate arithmetic: both engine queries and formatted results go through
// it, so round-trips are exact.
//
// Lines are split on '\n' only; '\r' counts as an ordinary character.
// Columns are measured in storage units of the Go string (bytes), matching
// the one-unit-per-character assumption of the engine wire format.
package textpos

import "strings"

// Position is a 1-based line/column pair
type Position struct {
	Line   int
	Column int
}

// OffsetToPosition converts a 0-based offset into a 1-based position.
// Offsets past the end of content clamp to column 1 of the last line.
func OffsetToPosition(content string, offset int) Position {
	if offset < 0 {
		offset = 0
	}

	lines := strings.Split(content, "\n")
	current := 0
	for i, line := range lines {
		// Each consumed line contributes its length plus the newline.
		next := current + len(line) + 1
		if offset < next {
			return Position{Line: i + 1, Column: offset - current + 1}
		}
		current = next
	}

	return Position{Line: len(lines), Column: 1}
}

// PositionToOffset converts a 1-based position into a 0-based offset.
// Out-of-range input is not validated here; the resulting offset is handed
// to the engine, which rejects it or returns no result.
func PositionToOffset(content string, line, column int) int {
	lines := strings.Split(content, "\n")

	offset := 0
	for i := 0; i < line-1 && i < len(lines); i++ {
		offset += len(lines[i]) + 1
	}
	return offset + column - 1
}
