package diagnostics

import (
	"fmt"
	"strings"
)

// Phase identifies which pipeline stage raised a Diagnostic.
type Phase string

const (
	PhaseLexer     Phase = "lexer"
	PhaseParser    Phase = "parser"
	PhaseTypes     Phase = "types"
	PhaseOptimizer Phase = "optimizer"
	PhaseCodegen   Phase = "codegen"
	PhaseVM        Phase = "vm"
	PhaseModule    Phase = "module"
)

// Diagnostic is the single structured error type produced by every phase.
// It satisfies error so it can be returned and panicked/recovered exactly
// the way the teacher's per-package error structs (SyntaxError,
// SemanticError, RuntimeError) were, but carries the richer span/help/note
// payload the error taxonomy requires.
type Diagnostic struct {
	Code      Code
	Phase     Phase
	Message   string
	Primary   Span
	Secondary []Span
	Help      string
	Notes     []string
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "💥 Orus %s error [%s]: %s\n  --> %s", d.Phase, d.Code, d.Message, d.Primary)
	for _, s := range d.Secondary {
		fmt.Fprintf(&b, "\n  --> %s", s)
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "\n  help: %s", d.Help)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s", n)
	}
	return b.String()
}

// New builds a Diagnostic with no secondary spans, help or notes; the
// With* methods attach those incrementally.
func New(code Code, phase Phase, primary Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
		Primary: primary,
	}
}

func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

func (d Diagnostic) WithSecondary(span Span) Diagnostic {
	d.Secondary = append(d.Secondary, span)
	return d
}
