package main

import (
	"fmt"
	"os"

	"orus/compiler"
	"orus/lexer"
	"orus/module"
	"orus/optimizer"
	"orus/parser"
	"orus/types"
	"orus/vm"
)

// moduleManager is shared across every command so a module imported from
// more than one source file (or more than one REPL line) within the same
// process is resolved, parsed and linked exactly once.
var moduleManager = module.NewManager(os.Getenv("ORUSPATH"))

// compileSource runs the full lexer -> parser -> module -> types ->
// optimizer -> compiler -> optimizer pipeline over source, reporting every
// diagnostic it collects along the way to os.Stderr. path is not read:
// diagnostics carry line/column spans only and imports resolve through
// moduleManager's search path, so an empty path is fine for REPL input.
func compileSource(source, path string) (*compiler.Program, bool) {
	lex := lexer.CreateLexer(source)
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, false
	}

	p := parser.Make(tokens)
	program, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, false
	}

	linked, linkSink := module.Link(program, moduleManager)
	for _, d := range linkSink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}
	if linkSink.HasErrors() {
		return nil, false
	}

	checker := types.NewChecker()
	typeSink := checker.Check(linked)
	for _, d := range typeSink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}
	if typeSink.HasErrors() {
		return nil, false
	}

	optimized, optCtx := optimizer.Run(linked, optimizer.DefaultOptions(), typeSink)

	bytecode, compileSink := compiler.Compile(optimized)
	for _, d := range compileSink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}
	if compileSink.HasErrors() {
		return nil, false
	}

	optimizer.OptimizeBytecode(bytecode, optimizer.DefaultOptions(), optCtx, compileSink)
	for _, d := range compileSink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}

	return bytecode, true
}

// runProgram executes a compiled Program on a fresh VM instance, printing
// any runtime error to os.Stderr.
func runProgram(program *compiler.Program) bool {
	machine := vm.New()
	if err := machine.Run(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	return true
}
