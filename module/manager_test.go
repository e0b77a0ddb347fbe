package module_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orus/ast"
	"orus/lexer"
	"orus/module"
	"orus/parser"
)

func writeModule(t *testing.T, dir, relPath, source string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(source), 0o644))
}

func declName(stmt ast.Stmt) string {
	switch n := stmt.(type) {
	case *ast.FunctionDecl:
		return n.Name.Lexeme
	case *ast.StructDecl:
		return n.Name.Lexeme
	case *ast.VarStmt:
		return n.Name.Lexeme
	default:
		return ""
	}
}

func TestManagerResolveFindsFileOnSearchPath(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathlib.orus", "export fn add(a: i32, b: i32) -> i32:\n    return a + b\n")

	mgr := module.NewManager("")
	mgr.SearchPath = []string{dir}

	path, err := mgr.Resolve("mathlib")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mathlib.orus"), path)
}

func TestManagerResolveMissingModuleReportsSearchPath(t *testing.T) {
	mgr := module.NewManager("")
	mgr.SearchPath = []string{t.TempDir()}

	_, err := mgr.Resolve("doesnotexist")
	require.Error(t, err)
}

func TestManagerLoadSplicesSelectiveImportUnderRequestedName(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathlib.orus",
		"export fn add(a: i32, b: i32) -> i32:\n    return a + b\n\nfn helper(a: i32) -> i32:\n    return a\n")

	mgr := module.NewManager("")
	mgr.SearchPath = []string{dir}

	source := "from mathlib import add as plus\n\nvar z = plus(1, 2)\n"
	lex := lexer.CreateLexer(source)
	tokens, err := lex.Scan()
	require.NoError(t, err)
	p := parser.Make(tokens)
	program, errs := p.Parse()
	require.Empty(t, errs)

	linked, sink := module.Link(program, mgr)
	require.False(t, sink.IsFatal(), "diagnostics: %v", sink.Diagnostics())

	names := map[string]bool{}
	for _, stmt := range linked {
		if n := declName(stmt); n != "" {
			names[n] = true
		}
	}
	assert.True(t, names["add"], "the module's own add declaration must still be spliced in")
	assert.True(t, names["plus"], "the alias 'plus' must be bound as a forwarding function")
	assert.False(t, names["helper"], "a non-exported helper must not be reachable under its bare name")
}

func TestManagerLoadWholeModuleImportPrefixesExports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathlib.orus", "export fn add(a: i32, b: i32) -> i32:\n    return a + b\n")

	mgr := module.NewManager("")
	mgr.SearchPath = []string{dir}

	source := "import mathlib\n\nvar z = mathlib_add(1, 2)\n"
	lex := lexer.CreateLexer(source)
	tokens, err := lex.Scan()
	require.NoError(t, err)
	p := parser.Make(tokens)
	program, errs := p.Parse()
	require.Empty(t, errs)

	linked, sink := module.Link(program, mgr)
	require.False(t, sink.IsFatal(), "diagnostics: %v", sink.Diagnostics())

	names := map[string]bool{}
	for _, stmt := range linked {
		if n := declName(stmt); n != "" {
			names[n] = true
		}
	}
	assert.True(t, names["mathlib_add"], "whole-module import must bind exports under '<module>_<name>'")
}

func TestManagerLoadDetectsCyclicImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.orus", "import b\n\nexport fn fromA() -> i32:\n    return 1\n")
	writeModule(t, dir, "b.orus", "import a\n\nexport fn fromB() -> i32:\n    return 2\n")

	mgr := module.NewManager("")
	mgr.SearchPath = []string{dir}

	_, sink := mgr.Load("a")
	require.True(t, sink.IsFatal(), "a cycle through a -> b -> a must be reported as fatal")
}

func TestManagerLoadCachesByResolvedPath(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathlib.orus", "export fn add(a: i32, b: i32) -> i32:\n    return a + b\n")

	mgr := module.NewManager("")
	mgr.SearchPath = []string{dir}

	first, sink1 := mgr.Load("mathlib")
	require.False(t, sink1.IsFatal())
	second, sink2 := mgr.Load("mathlib")
	require.False(t, sink2.IsFatal())
	assert.Same(t, first, second, "repeat loads of the same module must return the cached instance")
}
