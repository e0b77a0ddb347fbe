// fold.go implements constant folding: a tree-rewriting visitor, the same
// Accept-dispatch shape types.Checker and compiler.Compiler already use,
// except an ExpressionVisitor's Visit methods here return the (possibly
// replaced) node rather than a *types.Type. A parent writes whatever its
// child's Accept call returns back into that child's field, so a folded
// subexpression permanently replaces the original node the rest of the
// pipeline (including later optimizer passes and compiler) ever sees.
package optimizer

import (
	"orus/ast"
	"orus/token"
)

type folder struct {
	count int
}

// foldProgram runs the folder over every top-level statement, reporting
// how many subexpressions it collapsed into a literal through ctx.
func foldProgram(program []ast.Stmt, ctx *Context) []ast.Stmt {
	f := &folder{}
	for _, stmt := range program {
		f.foldStmt(stmt)
	}
	ctx.Folded += f.count
	return program
}

func (f *folder) foldStmt(s ast.Stmt) {
	if s == nil {
		return
	}
	s.Accept(f)
}

func (f *folder) foldExpr(e ast.Expression) ast.Expression {
	if e == nil {
		return nil
	}
	result, _ := e.Accept(f).(ast.Expression)
	if result == nil {
		return e
	}
	return result
}

func litOf(e ast.Expression) (*ast.Literal, bool) {
	lit, ok := e.(*ast.Literal)
	return lit, ok
}

func newConstLiteral(like ast.Expression, value any) *ast.Literal {
	meta := ast.MetaOf(like)
	lit := &ast.Literal{Value: value}
	lit.Meta.Span = meta.Span
	lit.Meta.Type = meta.Type
	lit.Meta.Const = value
	return lit
}

// --- expressions ---

func (f *folder) VisitLiteral(n *ast.Literal) any {
	n.Meta.Const = n.Value
	return n
}

func (f *folder) VisitGrouping(n *ast.Grouping) any {
	n.Expression = f.foldExpr(n.Expression)
	if lit, ok := litOf(n.Expression); ok {
		return lit
	}
	return n
}

func (f *folder) VisitUnary(n *ast.Unary) any {
	n.Right = f.foldExpr(n.Right)
	lit, ok := litOf(n.Right)
	if !ok {
		return n
	}
	switch n.Operator.TokenType {
	case token.BANG:
		if v, ok := lit.Value.(bool); ok {
			f.count++
			return newConstLiteral(n, !v)
		}
	default: // "-"
		switch v := lit.Value.(type) {
		case int64:
			f.count++
			return newConstLiteral(n, -v)
		case float64:
			f.count++
			return newConstLiteral(n, -v)
			// unsigned constants are left alone: negating one wraps, and
			// that wrap is the vm's job (vm/arith.go), not the folder's.
		}
	}
	return n
}

func (f *folder) VisitBinary(n *ast.Binary) any {
	n.Left = f.foldExpr(n.Left)
	n.Right = f.foldExpr(n.Right)
	left, lok := litOf(n.Left)
	right, rok := litOf(n.Right)
	if !lok || !rok {
		return n
	}
	operandType := ast.MetaOf(n.Left).Type
	if operandType == "" {
		operandType = ast.MetaOf(n.Right).Type
	}
	if v, ok := foldBinaryConst(string(n.Operator.TokenType), operandType, left.Value, right.Value); ok {
		f.count++
		return newConstLiteral(n, v)
	}
	return n
}

func (f *folder) VisitVariableExpression(n *ast.Variable) any { return n }

func (f *folder) VisitAssignExpression(n *ast.Assign) any {
	n.Value = f.foldExpr(n.Value)
	return n
}

func (f *folder) VisitLogicalExpression(n *ast.Logical) any {
	n.Left = f.foldExpr(n.Left)
	n.Right = f.foldExpr(n.Right)
	left, ok := litOf(n.Left)
	if !ok {
		return n
	}
	lv, ok := left.Value.(bool)
	if !ok {
		return n
	}
	switch n.Operator.TokenType {
	case token.AND:
		if !lv {
			f.count++
			return newConstLiteral(n, false)
		}
		f.count++
		return n.Right
	case token.OR:
		if lv {
			f.count++
			return newConstLiteral(n, true)
		}
		f.count++
		return n.Right
	}
	return n
}

func (f *folder) VisitCall(n *ast.Call) any {
	for i, arg := range n.Arguments {
		n.Arguments[i] = f.foldExpr(arg)
	}
	return n
}

func (f *folder) VisitFieldAccess(n *ast.FieldAccess) any {
	n.Target = f.foldExpr(n.Target)
	return n
}

func (f *folder) VisitIndex(n *ast.Index) any {
	n.Target = f.foldExpr(n.Target)
	n.Index = f.foldExpr(n.Index)
	return n
}

func (f *folder) VisitCast(n *ast.Cast) any {
	n.Value = f.foldExpr(n.Value)
	lit, ok := litOf(n.Value)
	if !ok {
		return n
	}
	if v, ok := foldCastConst(lit.Value, n.TypeName); ok {
		f.count++
		return newConstLiteral(n, v)
	}
	return n
}

func (f *folder) VisitTernary(n *ast.Ternary) any {
	n.Condition = f.foldExpr(n.Condition)
	n.Then = f.foldExpr(n.Then)
	n.Else = f.foldExpr(n.Else)
	lit, ok := litOf(n.Condition)
	if !ok {
		return n
	}
	cond, ok := lit.Value.(bool)
	if !ok {
		return n
	}
	f.count++
	if cond {
		return n.Then
	}
	return n.Else
}

func (f *folder) VisitArrayLiteral(n *ast.ArrayLiteral) any {
	for i, e := range n.Elements {
		n.Elements[i] = f.foldExpr(e)
	}
	return n
}

func (f *folder) VisitStructLiteral(n *ast.StructLiteral) any {
	for i, v := range n.Values {
		n.Values[i] = f.foldExpr(v)
	}
	return n
}

// --- statements: mutate children in place, nothing meaningful to return ---

func (f *folder) VisitExpressionStmt(n *ast.ExpressionStmt) any {
	n.Expression = f.foldExpr(n.Expression)
	return nil
}

func (f *folder) VisitPrintStmt(n *ast.PrintStmt) any {
	n.Expression = f.foldExpr(n.Expression)
	return nil
}

func (f *folder) VisitVarStmt(n *ast.VarStmt) any {
	if n.Initializer != nil {
		n.Initializer = f.foldExpr(n.Initializer)
	}
	return nil
}

func (f *folder) VisitBlockStmt(n *ast.BlockStmt) any {
	for _, stmt := range n.Statements {
		f.foldStmt(stmt)
	}
	return nil
}

func (f *folder) VisitIfStmt(n *ast.IfStmt) any {
	n.Condition = f.foldExpr(n.Condition)
	f.foldStmt(n.Then)
	if n.Else != nil {
		f.foldStmt(n.Else)
	}
	return nil
}

func (f *folder) VisitWhileStmt(n *ast.WhileStmt) any {
	n.Condition = f.foldExpr(n.Condition)
	f.foldStmt(n.Body)
	return nil
}

func (f *folder) VisitForRangeStmt(n *ast.ForRangeStmt) any {
	n.Start = f.foldExpr(n.Start)
	n.End = f.foldExpr(n.End)
	if n.Step != nil {
		n.Step = f.foldExpr(n.Step)
	}
	f.foldStmt(n.Body)
	return nil
}

func (f *folder) VisitForIterStmt(n *ast.ForIterStmt) any {
	n.Iterable = f.foldExpr(n.Iterable)
	f.foldStmt(n.Body)
	return nil
}

func (f *folder) VisitBreakStmt(n *ast.BreakStmt) any       { return nil }
func (f *folder) VisitContinueStmt(n *ast.ContinueStmt) any { return nil }

func (f *folder) VisitReturnStmt(n *ast.ReturnStmt) any {
	if n.Value != nil {
		n.Value = f.foldExpr(n.Value)
	}
	return nil
}

func (f *folder) VisitFunctionDecl(n *ast.FunctionDecl) any {
	f.foldStmt(n.Body)
	return nil
}

func (f *folder) VisitStructDecl(n *ast.StructDecl) any { return nil }

func (f *folder) VisitImportStmt(n *ast.ImportStmt) any { return nil }
func (f *folder) VisitExportStmt(n *ast.ExportStmt) any { return nil }

func (f *folder) VisitTryStmt(n *ast.TryStmt) any {
	f.foldStmt(n.Body)
	f.foldStmt(n.Handler)
	return nil
}
