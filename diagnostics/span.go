// Package diagnostics centralises the structured error reporting used by
// every phase of the Orus pipeline: lexer, parser, type inferencer,
// optimizer, code generator and VM.
package diagnostics

import "fmt"

// Span marks a primary or secondary source location attached to a
// Diagnostic. Columns are 1-based, per the lexer's column bookkeeping.
type Span struct {
	File   string
	Line   int32
	Column int
}

// String renders a span as "file:line:column", omitting the file when empty.
func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("line:%d, column:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}
