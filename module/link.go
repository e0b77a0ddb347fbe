// link.go resolves the imports of a single top-level program and merges
// the referenced modules into it as an ordinary AST splice: by the time
// types.Checker and compiler.Compiler see the result, every name an
// import introduced is just another top-level declaration in the same
// slice they already know how to walk. This is what keeps module free of
// any dependency on types or compiler - the merge happens one layer
// upstream of both, over plain ast.Stmt values.
package module

import (
	"orus/ast"
	"orus/diagnostics"
	"orus/token"
)

// Link resolves every top-level ImportStmt in program, splices the
// referenced modules' declarations ahead of program's own statements, and
// returns the merged statement list with the ImportStmt nodes themselves
// removed (their effect is now physically present as declarations).
//
// A module already spliced once in a given Link call is not spliced again,
// so a diamond dependency (A and B both importing C) still contributes C's
// declarations to the output exactly once.
func Link(program []ast.Stmt, mgr *Manager) ([]ast.Stmt, *diagnostics.Sink) {
	sink := &diagnostics.Sink{}
	spliced := map[string]bool{}
	var prelude []ast.Stmt
	var rest []ast.Stmt

	for _, stmt := range program {
		imp, ok := stmt.(*ast.ImportStmt)
		if !ok {
			rest = append(rest, stmt)
			continue
		}

		mod, loadSink := mgr.Load(imp.Module)
		for _, d := range loadSink.Diagnostics() {
			sink.Report(d)
		}
		if loadSink.IsFatal() {
			sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, imp.Meta.Span,
				"failed to import %q", imp.Module))
			continue
		}

		if !spliced[mod.Path] {
			prelude = append(prelude, mod.Program...)
			spliced[mod.Path] = true
		}

		prelude = append(prelude, bindImport(imp, mod, sink)...)
	}

	return append(prelude, rest...), sink
}

// bindImport produces the forwarding declarations needed for one
// ImportStmt: a whole-module import ("import foo") binds every export
// under "foo_<name>"; a selective import ("from foo import bar as b")
// binds only the requested names, under their alias when given. A
// forwarding declaration is skipped when the requested bind name already
// equals the export's own declared name, since the module's own
// declaration (already in prelude) already serves that name directly.
func bindImport(imp *ast.ImportStmt, mod *Module, sink *diagnostics.Sink) []ast.Stmt {
	var out []ast.Stmt

	bind := func(alias string, record ExportRecord) {
		if alias == record.Name {
			return
		}
		switch record.Kind {
		case ExportFunction:
			original := findFunction(mod.Program, record.Name)
			if original == nil {
				sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, imp.Meta.Span,
					"module %q export %q lost its declaration", imp.Module, record.Name))
				return
			}
			out = append(out, forwardFunction(alias, original))
		case ExportType:
			original := findStruct(mod.Program, record.Name)
			if original == nil {
				sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, imp.Meta.Span,
					"module %q export %q lost its declaration", imp.Module, record.Name))
				return
			}
			out = append(out, forwardStruct(alias, original))
		default:
			out = append(out, forwardValue(alias, record))
		}
	}

	if len(imp.Names) == 0 {
		prefix := localName(imp.Module)
		for _, record := range mod.Exports {
			bind(prefix+"_"+record.Name, record)
		}
		return out
	}

	for i, want := range imp.Names {
		alias := ""
		if i < len(imp.Aliases) {
			alias = imp.Aliases[i]
		}
		if alias == "" {
			alias = want
		}
		record, ok := mod.Exports[want]
		if !ok {
			sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, imp.Meta.Span,
				"module %q has no export named %q", imp.Module, want))
			continue
		}
		bind(alias, record)
	}
	return out
}

func ident(name string) token.Token {
	return token.Token{TokenType: token.IDENTIFIER, Lexeme: name}
}

func findFunction(program []ast.Stmt, name string) *ast.FunctionDecl {
	for _, stmt := range program {
		if fn, ok := stmt.(*ast.FunctionDecl); ok && fn.Name.Lexeme == name {
			return fn
		}
	}
	return nil
}

func findStruct(program []ast.Stmt, name string) *ast.StructDecl {
	for _, stmt := range program {
		if st, ok := stmt.(*ast.StructDecl); ok && st.Name.Lexeme == name {
			return st
		}
	}
	return nil
}

// forwardValue binds alias to an existing top-level value declaration via
// a plain initializer reference: "let alias: Type = name".
func forwardValue(alias string, record ExportRecord) *ast.VarStmt {
	return &ast.VarStmt{
		Name:        ident(alias),
		TypeName:    record.TypeName,
		Mutable:     false,
		Initializer: &ast.Variable{Name: ident(record.Name)},
	}
}

// forwardFunction binds alias to an existing function via a thin wrapper
// that forwards every parameter positionally, since Orus functions are
// addressed by function-table index rather than as first-class register
// values and so cannot be aliased with a plain variable reference.
func forwardFunction(alias string, original *ast.FunctionDecl) *ast.FunctionDecl {
	params := make([]ast.Param, len(original.Params))
	args := make([]ast.Expression, len(original.Params))
	for i, p := range original.Params {
		params[i] = ast.Param{Name: ident(p.Name.Lexeme), TypeName: p.TypeName}
		args[i] = &ast.Variable{Name: ident(p.Name.Lexeme)}
	}
	call := &ast.Call{Callee: &ast.Variable{Name: ident(original.Name.Lexeme)}, Arguments: args}
	body := &ast.BlockStmt{Statements: []ast.Stmt{&ast.ReturnStmt{Value: call}}}
	return &ast.FunctionDecl{
		Name:       ident(alias),
		Params:     params,
		ReturnType: original.ReturnType,
		Body:       body,
	}
}

// forwardStruct binds alias to an existing struct type by cloning its
// declaration under the new name; struct fields only carry type-name
// strings, never identifier references, so a shallow top-level clone is
// enough - no recursive rename is needed the way it is for functions.
func forwardStruct(alias string, original *ast.StructDecl) *ast.StructDecl {
	fields := make([]ast.FieldDecl, len(original.Fields))
	copy(fields, original.Fields)
	return &ast.StructDecl{
		Name:   ident(alias),
		Fields: fields,
	}
}
