package types_test

import (
	"testing"

	"orus/lexer"
	"orus/parser"
	"orus/types"
)

func checkSource(t *testing.T, source string) *types.Checker {
	t.Helper()
	lex := lexer.New(source)
	tokens, errs := lex.ScanAll()
	if len(errs) > 0 {
		t.Fatalf("lexing failed: %v", errs)
	}
	p := parser.Make(tokens)
	program, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parsing failed: %v", parseErrs)
	}
	c := types.NewChecker()
	sink := c.Check(program)
	t.Logf("diagnostics: %v", sink.Diagnostics())
	return c
}

func hasErrors(t *testing.T, source string) bool {
	t.Helper()
	lex := lexer.New(source)
	tokens, errs := lex.ScanAll()
	if len(errs) > 0 {
		t.Fatalf("lexing failed: %v", errs)
	}
	p := parser.Make(tokens)
	program, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parsing failed: %v", parseErrs)
	}
	c := types.NewChecker()
	return c.Check(program).HasErrors()
}

func TestCheckerAcceptsWellTypedProgram(t *testing.T) {
	source := "var x: i32 = 1\nvar y = x + 2\nprint y\n"
	if hasErrors(t, source) {
		t.Fatalf("expected no type errors for a well-typed program")
	}
}

func TestCheckerRejectsMixedNumericArithmetic(t *testing.T) {
	source := "var x: i32 = 1\nvar y: i64 = 2\nvar z = x + y\n"
	if !hasErrors(t, source) {
		t.Fatalf("expected a type error mixing i32 and i64 without a cast")
	}
}

func TestCheckerAllowsExplicitCast(t *testing.T) {
	source := "var x: i32 = 1\nvar y: i64 = 2\nvar z = (x as i64) + y\n"
	if hasErrors(t, source) {
		t.Fatalf("expected the explicit cast to satisfy the checker")
	}
}

func TestCheckerRejectsImmutableAssignment(t *testing.T) {
	source := "var x: i32 = 1\nx = 2\n"
	if !hasErrors(t, source) {
		t.Fatalf("expected assignment to an immutable binding to be rejected")
	}
}

func TestCheckerAllowsMutableAssignment(t *testing.T) {
	source := "mut x: i32 = 1\nx = 2\n"
	if hasErrors(t, source) {
		t.Fatalf("expected assignment to a mutable binding to succeed")
	}
}

func TestCheckerRejectsUndefinedVariable(t *testing.T) {
	if !hasErrors(t, "print missing\n") {
		t.Fatalf("expected an undefined-variable error")
	}
}

func TestCheckerRejectsBreakOutsideLoop(t *testing.T) {
	if !hasErrors(t, "break\n") {
		t.Fatalf("expected 'break' outside a loop to be rejected")
	}
}

func TestCheckerAllowsBreakInsideLoop(t *testing.T) {
	source := "while true:\n    break\n"
	if hasErrors(t, source) {
		t.Fatalf("expected 'break' inside a loop to be accepted")
	}
}

func TestCheckerForRangeBindsLoopVariable(t *testing.T) {
	source := "for i in 0..10:\n    print i\n"
	if hasErrors(t, source) {
		t.Fatalf("expected a well-typed arithmetic range loop to succeed")
	}
}

func TestCheckerFunctionCallArityMismatch(t *testing.T) {
	source := "fn add(a: i32, b: i32) -> i32:\n    return a + b\n\nvar z = add(1)\n"
	if !hasErrors(t, source) {
		t.Fatalf("expected an arity mismatch to be reported")
	}
}

func TestCheckerFunctionForwardReference(t *testing.T) {
	source := "var z = helper(1)\n\nfn helper(a: i32) -> i32:\n    return a\n"
	if hasErrors(t, source) {
		t.Fatalf("expected a call to a later-declared function to resolve via hoisting")
	}
}

func TestCheckerStructFieldAccess(t *testing.T) {
	source := "struct Point:\n    x: i32\n    y: i32\n\nvar p = Point{x: 1, y: 2}\nvar sum = p.x + p.y\n"
	if hasErrors(t, source) {
		t.Fatalf("expected struct field access to type-check")
	}
}

func TestCheckerStructMissingField(t *testing.T) {
	source := "struct Point:\n    x: i32\n    y: i32\n\nvar p = Point{x: 1}\n"
	if !hasErrors(t, source) {
		t.Fatalf("expected a missing struct field to be reported")
	}
}
