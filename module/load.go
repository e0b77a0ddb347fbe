package module

import (
	"os"

	"orus/ast"
	"orus/diagnostics"
	"orus/lexer"
	"orus/parser"
)

// Load resolves, reads, lexes, parses and links dottedName, returning a
// cached Module on repeat requests. The returned sink is fatal if the
// module could not be found, read, lexed, parsed, or if it participates in
// an import cycle; Program and Exports are nil in that case.
func (m *Manager) Load(dottedName string) (*Module, *diagnostics.Sink) {
	sink := &diagnostics.Sink{}

	path, err := m.Resolve(dottedName)
	if err != nil {
		sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, diagnostics.Span{}, "%s", err))
		return nil, sink
	}

	if cached, ok := m.cache[path]; ok {
		return cached, sink
	}
	if m.loading[path] {
		sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, diagnostics.Span{File: path},
			"cyclic import: module %q is already being loaded", dottedName))
		return nil, sink
	}
	m.loading[path] = true
	defer delete(m.loading, path)

	data, err := os.ReadFile(path)
	if err != nil {
		sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, diagnostics.Span{File: path},
			"failed to read module %q: %s", dottedName, err))
		return nil, sink
	}

	lex := lexer.CreateLexer(string(data))
	tokens, err := lex.Scan()
	if err != nil {
		sink.Fatal(diagnostics.New(diagnostics.ParseError, diagnostics.PhaseLexer, diagnostics.Span{File: path},
			"%s", err))
		return nil, sink
	}

	p := parser.Make(tokens)
	program, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			sink.Fatal(diagnostics.New(diagnostics.ParseError, diagnostics.PhaseParser, diagnostics.Span{File: path},
				"%s", e))
		}
		return nil, sink
	}

	exports := exportsOf(program)
	qualifier := m.qualifier()

	// Qualify this module's own private names before splicing anything
	// else in, so the rename pass never reaches into a nested import's
	// declarations - those were already qualified, under their own
	// module's qualifier, when that module was loaded.
	privateSubst := privateSubstitution(program, exports, qualifier)
	ownProgram := rename(program, privateSubst)

	linked, linkSink := Link(ownProgram, m)
	for _, d := range linkSink.Diagnostics() {
		sink.Report(d)
	}
	if linkSink.IsFatal() {
		sink.Fatal(diagnostics.New(diagnostics.ModuleError, diagnostics.PhaseModule, diagnostics.Span{File: path},
			"module %q failed to link its own imports", dottedName))
		return nil, sink
	}

	mod := &Module{
		Path:       path,
		DottedName: dottedName,
		Qualifier:  qualifier,
		Program:    linked,
		Exports:    exports,
	}

	m.cache[path] = mod
	return mod, sink
}

// exportsOf scans a module's own top-level statements for exported names,
// before any qualification is applied. FunctionDecl/StructDecl carry their
// own Exported flag; a following ExportStmt marks a preceding VarStmt by
// name, matching the parser's documented "folds into Exported / retained
// for already-declared names" split.
func exportsOf(program []ast.Stmt) map[string]ExportRecord {
	exported := map[string]bool{}
	for _, stmt := range program {
		if ex, ok := stmt.(*ast.ExportStmt); ok {
			for _, name := range ex.Names {
				exported[name] = true
			}
		}
	}

	records := map[string]ExportRecord{}
	for _, stmt := range program {
		switch n := stmt.(type) {
		case *ast.FunctionDecl:
			if n.Exported || exported[n.Name.Lexeme] {
				records[n.Name.Lexeme] = ExportRecord{Name: n.Name.Lexeme, Kind: ExportFunction, TypeName: n.ReturnType, Binding: n.Name.Lexeme}
			}
		case *ast.StructDecl:
			if n.Exported || exported[n.Name.Lexeme] {
				records[n.Name.Lexeme] = ExportRecord{Name: n.Name.Lexeme, Kind: ExportType, TypeName: n.Name.Lexeme, Binding: n.Name.Lexeme}
			}
		case *ast.VarStmt:
			if exported[n.Name.Lexeme] {
				records[n.Name.Lexeme] = ExportRecord{Name: n.Name.Lexeme, Kind: ExportValue, TypeName: n.TypeName, Binding: n.Name.Lexeme}
			}
		}
	}
	return records
}
