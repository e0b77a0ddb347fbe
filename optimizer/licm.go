// licm.go hoists loop-invariant subexpressions out of while-loop
// conditions. compiler.go's VisitWhileStmt recompiles the condition fresh
// on every iteration (compiler/compiler.go's loopStart/compileExpr call),
// so a subexpression proven never to change across the loop body is pure
// waste recomputed every pass; this pass lifts it into a synthetic
// preheader local evaluated once, ahead of the loop.
//
// for/range and for/iter loops need none of this: their bounds are already
// compiled once, before the loop's own loopStart marker, by construction.
package optimizer

import (
	"orus/ast"
	"orus/diagnostics"
	"orus/token"
)

type licmPass struct {
	ctx  *Context
	sink *diagnostics.Sink
	next int
}

// licmProgram rewrites program in place, replacing each WhileStmt whose
// condition contains a hoistable subexpression with the preheader
// declarations followed by the (rewritten) loop.
func licmProgram(program []ast.Stmt, ctx *Context, sink *diagnostics.Sink) []ast.Stmt {
	p := &licmPass{ctx: ctx, sink: sink}
	return p.hoistStmts(program)
}

func (p *licmPass) hoistStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, p.hoistStmt(s)...)
	}
	return out
}

func (p *licmPass) hoistBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	b.Statements = p.hoistStmts(b.Statements)
}

// hoistStmt recurses into s's nested statement lists and, for a WhileStmt,
// expands it into preheader-statements-plus-loop. Every other statement
// kind is returned as a single-element slice after its children are
// recursed into in place.
func (p *licmPass) hoistStmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case nil:
		return nil
	case *ast.BlockStmt:
		p.hoistBlock(n)
	case *ast.IfStmt:
		p.hoistBlock(n.Then)
		if n.Else != nil {
			replaced := p.hoistStmt(n.Else)
			if len(replaced) == 1 {
				n.Else = replaced[0]
			} else {
				n.Else = &ast.BlockStmt{Statements: replaced}
			}
		}
	case *ast.WhileStmt:
		return p.hoistWhile(n)
	case *ast.ForRangeStmt:
		p.hoistBlock(n.Body)
	case *ast.ForIterStmt:
		p.hoistBlock(n.Body)
	case *ast.FunctionDecl:
		p.hoistBlock(n.Body)
	case *ast.TryStmt:
		p.hoistBlock(n.Body)
		p.hoistBlock(n.Handler)
	}
	return []ast.Stmt{s}
}

func (p *licmPass) hoistWhile(n *ast.WhileStmt) []ast.Stmt {
	p.hoistBlock(n.Body)

	assigned := map[string]bool{}
	collectAssignedBlock(n.Body, assigned)

	var preheader []ast.Stmt
	n.Condition = p.hoistInvariants(n.Condition, assigned, &preheader)

	if len(preheader) == 0 {
		return []ast.Stmt{n}
	}
	p.ctx.Hoisted += len(preheader)
	return append(preheader, n)
}

// hoistInvariants walks e top-down: as soon as it finds a subexpression
// that is both invariant and worth hoisting, it extracts that whole
// subexpression rather than recursing further into it (hoisting a parent
// already hoists every invariant child).
func (p *licmPass) hoistInvariants(e ast.Expression, assigned map[string]bool, preheader *[]ast.Stmt) ast.Expression {
	if e == nil {
		return nil
	}
	if worthHoisting(e) && invariant(e, assigned) {
		return p.hoistExpr(e, preheader)
	}
	switch n := e.(type) {
	case *ast.Binary:
		n.Left = p.hoistInvariants(n.Left, assigned, preheader)
		n.Right = p.hoistInvariants(n.Right, assigned, preheader)
	case *ast.Logical:
		n.Left = p.hoistInvariants(n.Left, assigned, preheader)
		n.Right = p.hoistInvariants(n.Right, assigned, preheader)
	case *ast.Unary:
		n.Right = p.hoistInvariants(n.Right, assigned, preheader)
	case *ast.Grouping:
		n.Expression = p.hoistInvariants(n.Expression, assigned, preheader)
	case *ast.Cast:
		n.Value = p.hoistInvariants(n.Value, assigned, preheader)
	}
	return e
}

// hoistExpr introduces a synthetic preheader local holding e's value and
// replaces e with a reference to it. The synthetic Variable resolves at
// compile time purely by matching Lexeme against the VarStmt's Name.Lexeme
// (compiler.go's VisitVariableExpression/VisitAssignExpression both resolve
// names as strings through c.scope/c.globals, entirely independent of the
// type checker's symbol table), so no re-check pass is needed.
func (p *licmPass) hoistExpr(e ast.Expression, preheader *[]ast.Stmt) ast.Expression {
	span := ast.MetaOf(e).Span
	name := licmTempName(p.nextID())
	tok := token.Token{TokenType: token.IDENTIFIER, Lexeme: name, Line: span.Line, Column: span.Column}

	decl := &ast.VarStmt{
		Name:        tok,
		TypeName:    ast.MetaOf(e).Type,
		Mutable:     false,
		Initializer: e,
	}
	decl.Meta.Span = span
	decl.Meta.Type = ast.MetaOf(e).Type
	*preheader = append(*preheader, decl)

	ref := &ast.Variable{Name: tok}
	ref.Meta.Span = span
	ref.Meta.Type = ast.MetaOf(e).Type
	ref.Meta.Stable = true
	if _, isIndex := e.(*ast.Index); isIndex {
		ref.Meta.GuardWitness = true
	}
	if _, isField := e.(*ast.FieldAccess); isField {
		ref.Meta.GuardWitness = true
	}
	return ref
}

func (p *licmPass) nextID() int {
	p.next++
	return p.next
}

func licmTempName(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "$licm0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "$licm" + string(buf)
}

// worthHoisting restricts hoisting to subexpressions with real recompute
// cost; a bare literal or variable reference is already as cheap as the
// reference hoistExpr would replace it with.
func worthHoisting(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Binary, *ast.Unary, *ast.Cast, *ast.Index, *ast.FieldAccess:
		return true
	}
	return false
}

// invariant reports whether e can be proven never to change across a loop
// iteration, conservatively: any construct not explicitly known to be safe
// (calls, assignments, ternaries, literals that construct new arrays or
// structs) is treated as variant rather than risk miscompiling a loop whose
// body has a side effect this pass did not anticipate.
func invariant(e ast.Expression, assigned map[string]bool) bool {
	switch n := e.(type) {
	case *ast.Literal:
		return true
	case *ast.Variable:
		return !assigned[n.Name.Lexeme]
	case *ast.Grouping:
		return invariant(n.Expression, assigned)
	case *ast.Binary:
		return invariant(n.Left, assigned) && invariant(n.Right, assigned)
	case *ast.Unary:
		return invariant(n.Right, assigned)
	case *ast.Cast:
		return invariant(n.Value, assigned)
	case *ast.Index:
		return invariant(n.Target, assigned) && invariant(n.Index, assigned)
	case *ast.FieldAccess:
		return invariant(n.Target, assigned)
	default:
		return false
	}
}

// collectAssignedBlock records every variable name the loop body could
// rebind: plain assignments anywhere in an expression, and shadowing
// declarations (a nested VarStmt or inner loop's induction variable),
// which are treated as "assigned" purely to keep the conservative
// approximation simple - shadowed names are rare inside hot loop bodies
// and excluding them entirely from hoisting candidacy never miscompiles,
// it only forgoes a hoist.
func collectAssignedBlock(b *ast.BlockStmt, out map[string]bool) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		collectAssignedStmt(s, out)
	}
}

func collectAssignedStmt(s ast.Stmt, out map[string]bool) {
	switch n := s.(type) {
	case nil:
		return
	case *ast.ExpressionStmt:
		collectAssignedExpr(n.Expression, out)
	case *ast.PrintStmt:
		collectAssignedExpr(n.Expression, out)
	case *ast.VarStmt:
		out[n.Name.Lexeme] = true
		collectAssignedExpr(n.Initializer, out)
	case *ast.BlockStmt:
		collectAssignedBlock(n, out)
	case *ast.IfStmt:
		collectAssignedExpr(n.Condition, out)
		collectAssignedBlock(n.Then, out)
		collectAssignedStmt(n.Else, out)
	case *ast.WhileStmt:
		collectAssignedExpr(n.Condition, out)
		collectAssignedBlock(n.Body, out)
	case *ast.ForRangeStmt:
		out[n.Name.Lexeme] = true
		collectAssignedExpr(n.Start, out)
		collectAssignedExpr(n.End, out)
		collectAssignedExpr(n.Step, out)
		collectAssignedBlock(n.Body, out)
	case *ast.ForIterStmt:
		out[n.Name.Lexeme] = true
		collectAssignedExpr(n.Iterable, out)
		collectAssignedBlock(n.Body, out)
	case *ast.ReturnStmt:
		collectAssignedExpr(n.Value, out)
	case *ast.TryStmt:
		collectAssignedBlock(n.Body, out)
		collectAssignedBlock(n.Handler, out)
	case *ast.FunctionDecl:
		// a nested function has its own scope; it cannot assign an
		// enclosing loop's variables without an upvalue capture, and a
		// captured mutable upvalue is represented as a ByRef cell the
		// compiler resolves independently of this pass's register
		// allocation, so it is out of scope for conservative tracking here.
	}
}

func collectAssignedExpr(e ast.Expression, out map[string]bool) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.Assign:
		out[n.Name.Lexeme] = true
		collectAssignedExpr(n.Value, out)
	case *ast.Binary:
		collectAssignedExpr(n.Left, out)
		collectAssignedExpr(n.Right, out)
	case *ast.Logical:
		collectAssignedExpr(n.Left, out)
		collectAssignedExpr(n.Right, out)
	case *ast.Unary:
		collectAssignedExpr(n.Right, out)
	case *ast.Grouping:
		collectAssignedExpr(n.Expression, out)
	case *ast.Cast:
		collectAssignedExpr(n.Value, out)
	case *ast.Ternary:
		collectAssignedExpr(n.Condition, out)
		collectAssignedExpr(n.Then, out)
		collectAssignedExpr(n.Else, out)
	case *ast.Call:
		collectAssignedExpr(n.Callee, out)
		for _, a := range n.Arguments {
			collectAssignedExpr(a, out)
		}
	case *ast.FieldAccess:
		collectAssignedExpr(n.Target, out)
	case *ast.Index:
		collectAssignedExpr(n.Target, out)
		collectAssignedExpr(n.Index, out)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			collectAssignedExpr(el, out)
		}
	case *ast.StructLiteral:
		for _, v := range n.Values {
			collectAssignedExpr(v, out)
		}
	}
}
