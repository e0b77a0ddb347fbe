// interfaces.go contains all visitor interfaces that any code traversing
// expression and statement AST nodes must implement, plus the Meta struct
// every node embeds to carry the results of later compiler phases.

package ast

import "orus/diagnostics"

// Meta is embedded by value in every expression and statement node. It
// starts zero-valued after parsing and is filled in place by later phases:
// the type checker sets Type, the optimizer's constant-folding pass sets
// Const, and the loop-invariant pass sets Escapes/Stable/GuardWitness.
// Nodes are always handled through pointers so these in-place writes are
// visible to every later pass without rebuilding the tree.
type Meta struct {
	Span diagnostics.Span

	// Type is the resolved type name assigned by the type checker
	// ("i32", "f64", "bool", "string", a struct name, ...).
	Type string

	// Const holds the folded compile-time value of this node, or nil if
	// the optimizer could not fold it.
	Const any

	// Escapes is set when escape analysis determines this node's value
	// may be observed outside the loop it was hoisted from, blocking
	// guard fusion.
	Escapes bool

	// Stable is set by loop type affinity analysis once a node is proven
	// to evaluate to the same value on every iteration of its enclosing
	// loop, making it eligible for loop-invariant code motion.
	Stable bool

	// GuardWitness marks the node as the fused bounds/type guard
	// representing a group of hoisted checks.
	GuardWitness bool
}

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. Any type that wants to perform an operation on expressions (e.g.
// the type checker, optimizer, or code generator) must implement this
// interface. Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	VisitBinary(*Binary) any
	VisitUnary(*Unary) any
	VisitLiteral(*Literal) any
	VisitGrouping(*Grouping) any
	VisitVariableExpression(*Variable) any
	VisitAssignExpression(*Assign) any
	VisitLogicalExpression(*Logical) any
	VisitCall(*Call) any
	VisitFieldAccess(*FieldAccess) any
	VisitIndex(*Index) any
	VisitCast(*Cast) any
	VisitTernary(*Ternary) any
	VisitArrayLiteral(*ArrayLiteral) any
	VisitStructLiteral(*StructLiteral) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
type StmtVisitor interface {
	VisitExpressionStmt(*ExpressionStmt) any
	VisitPrintStmt(*PrintStmt) any
	VisitVarStmt(*VarStmt) any
	VisitBlockStmt(*BlockStmt) any
	VisitIfStmt(*IfStmt) any
	VisitWhileStmt(*WhileStmt) any
	VisitForRangeStmt(*ForRangeStmt) any
	VisitForIterStmt(*ForIterStmt) any
	VisitBreakStmt(*BreakStmt) any
	VisitContinueStmt(*ContinueStmt) any
	VisitReturnStmt(*ReturnStmt) any
	VisitFunctionDecl(*FunctionDecl) any
	VisitStructDecl(*StructDecl) any
	VisitImportStmt(*ImportStmt) any
	VisitExportStmt(*ExportStmt) any
	VisitTryStmt(*TryStmt) any
}

// Stmt is the base interface for all statement nodes in the AST. A
// statement represents an action in a program; unlike expressions,
// statements do not themselves produce a value.
type Stmt interface {
	Accept(v StmtVisitor) any
	meta() *Meta
}

// Expression is the core interface for all expression nodes in the AST.
// The Accept method enables the visitor pattern so that operations can be
// performed on expressions without the node types knowing the details of
// those operations.
type Expression interface {
	Accept(v ExpressionVisitor) any
	meta() *Meta
}

// MetaOf exposes a node's Meta for phases that want to read or write it
// without going through the visitor dispatch (the optimizer, mainly).
func MetaOf(n interface{ meta() *Meta }) *Meta {
	return n.meta()
}
