// rename.go implements a flat identifier-substitution pass over a module's
// own AST, the same Accept-dispatch shape optimizer's folder uses except it
// rewrites token.Token.Lexeme in place instead of replacing nodes. It is
// deliberately not scope-aware: subst only ever contains a module's own
// top-level declaration names, chosen so they can never collide with
// ordinary user identifiers (private names are qualified with a "$modN$"
// prefix the lexer never produces on its own), so the one correctness risk
// - a local parameter or variable shadowing one of those names - can only
// happen if user source itself uses the "$mod" naming convention, which it
// has no reason to.
package module

import (
	"orus/ast"
)

// privateSubstitution maps every top-level declaration name in program
// that is NOT in exports to "qualifier$name", leaving exported names
// untouched so Link can bind them directly under the names the importer
// requested.
func privateSubstitution(program []ast.Stmt, exports map[string]ExportRecord, qualifier string) map[string]string {
	subst := map[string]string{}
	for _, stmt := range program {
		var name string
		switch n := stmt.(type) {
		case *ast.FunctionDecl:
			name = n.Name.Lexeme
		case *ast.StructDecl:
			name = n.Name.Lexeme
		case *ast.VarStmt:
			name = n.Name.Lexeme
		default:
			continue
		}
		if _, ok := exports[name]; ok {
			continue
		}
		subst[name] = qualifier + "$" + name
	}
	return subst
}

// rename rewrites every declaration and reference in program that appears
// as a key in subst, returning program (mutated in place) for convenience.
func rename(program []ast.Stmt, subst map[string]string) []ast.Stmt {
	if len(subst) == 0 {
		return program
	}
	r := &renamer{subst: subst}
	for _, stmt := range program {
		r.stmt(stmt)
	}
	return program
}

type renamer struct {
	subst map[string]string
}

func (r *renamer) apply(tok *string) {
	if repl, ok := r.subst[*tok]; ok {
		*tok = repl
	}
}

func (r *renamer) stmt(s ast.Stmt) {
	if s == nil {
		return
	}
	s.Accept(r)
}

func (r *renamer) expr(e ast.Expression) {
	if e == nil {
		return
	}
	e.Accept(r)
}

func (r *renamer) block(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		r.stmt(stmt)
	}
}

func (r *renamer) VisitBinary(n *ast.Binary) any    { r.expr(n.Left); r.expr(n.Right); return nil }
func (r *renamer) VisitUnary(n *ast.Unary) any       { r.expr(n.Right); return nil }
func (r *renamer) VisitLiteral(n *ast.Literal) any   { return nil }
func (r *renamer) VisitGrouping(n *ast.Grouping) any { r.expr(n.Expression); return nil }
func (r *renamer) VisitVariableExpression(n *ast.Variable) any {
	r.apply(&n.Name.Lexeme)
	return nil
}
func (r *renamer) VisitAssignExpression(n *ast.Assign) any {
	r.apply(&n.Name.Lexeme)
	r.expr(n.Value)
	return nil
}
func (r *renamer) VisitLogicalExpression(n *ast.Logical) any {
	r.expr(n.Left)
	r.expr(n.Right)
	return nil
}
func (r *renamer) VisitCall(n *ast.Call) any {
	r.expr(n.Callee)
	for _, arg := range n.Arguments {
		r.expr(arg)
	}
	return nil
}
func (r *renamer) VisitFieldAccess(n *ast.FieldAccess) any { r.expr(n.Target); return nil }
func (r *renamer) VisitIndex(n *ast.Index) any {
	r.expr(n.Target)
	r.expr(n.Index)
	return nil
}
func (r *renamer) VisitCast(n *ast.Cast) any { r.expr(n.Value); return nil }
func (r *renamer) VisitTernary(n *ast.Ternary) any {
	r.expr(n.Condition)
	r.expr(n.Then)
	r.expr(n.Else)
	return nil
}
func (r *renamer) VisitArrayLiteral(n *ast.ArrayLiteral) any {
	for _, elem := range n.Elements {
		r.expr(elem)
	}
	return nil
}
func (r *renamer) VisitStructLiteral(n *ast.StructLiteral) any {
	for _, v := range n.Values {
		r.expr(v)
	}
	return nil
}

func (r *renamer) VisitExpressionStmt(n *ast.ExpressionStmt) any { r.expr(n.Expression); return nil }
func (r *renamer) VisitPrintStmt(n *ast.PrintStmt) any           { r.expr(n.Expression); return nil }
func (r *renamer) VisitVarStmt(n *ast.VarStmt) any {
	r.apply(&n.Name.Lexeme)
	r.expr(n.Initializer)
	return nil
}
func (r *renamer) VisitBlockStmt(n *ast.BlockStmt) any { r.block(n); return nil }
func (r *renamer) VisitIfStmt(n *ast.IfStmt) any {
	r.expr(n.Condition)
	r.block(n.Then)
	r.stmt(n.Else)
	return nil
}
func (r *renamer) VisitWhileStmt(n *ast.WhileStmt) any {
	r.expr(n.Condition)
	r.block(n.Body)
	return nil
}
func (r *renamer) VisitForRangeStmt(n *ast.ForRangeStmt) any {
	r.expr(n.Start)
	r.expr(n.End)
	r.expr(n.Step)
	r.block(n.Body)
	return nil
}
func (r *renamer) VisitForIterStmt(n *ast.ForIterStmt) any {
	r.expr(n.Iterable)
	r.block(n.Body)
	return nil
}
func (r *renamer) VisitBreakStmt(n *ast.BreakStmt) any       { return nil }
func (r *renamer) VisitContinueStmt(n *ast.ContinueStmt) any { return nil }
func (r *renamer) VisitReturnStmt(n *ast.ReturnStmt) any     { r.expr(n.Value); return nil }
func (r *renamer) VisitFunctionDecl(n *ast.FunctionDecl) any {
	r.apply(&n.Name.Lexeme)
	r.block(n.Body)
	return nil
}
func (r *renamer) VisitStructDecl(n *ast.StructDecl) any {
	r.apply(&n.Name.Lexeme)
	return nil
}
func (r *renamer) VisitImportStmt(n *ast.ImportStmt) any { return nil }
func (r *renamer) VisitExportStmt(n *ast.ExportStmt) any { return nil }
func (r *renamer) VisitTryStmt(n *ast.TryStmt) any {
	r.block(n.Body)
	r.block(n.Handler)
	return nil
}
