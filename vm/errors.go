package vm

import "orus/diagnostics"

// RuntimeError wraps a diagnostics.Diagnostic raised while executing
// bytecode, generalizing the teacher's per-package emoji-prefixed
// RuntimeError types into the shared diagnostic format so a `try` handler
// and the top-level error reporter render it identically.
type RuntimeError struct {
	Diagnostic diagnostics.Diagnostic
}

func (e *RuntimeError) Error() string { return e.Diagnostic.Error() }

func newRuntimeError(code diagnostics.Code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Diagnostic: diagnostics.New(code, diagnostics.PhaseVM, diagnostics.Span{}, format, args...)}
}
