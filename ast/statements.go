// statements.go contains all the statement AST nodes. A statement node
// does not itself produce a value.

package ast

import "orus/token"

// ExpressionStmt represents a statement that consists of a single
// expression, evaluated for its side effects and discarded.
type ExpressionStmt struct {
	Meta
	Expression Expression
}

func (n *ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(n) }
func (n *ExpressionStmt) meta() *Meta              { return &n.Meta }

// PrintStmt represents "print expr".
type PrintStmt struct {
	Meta
	Expression Expression
}

func (n *PrintStmt) Accept(v StmtVisitor) any { return v.VisitPrintStmt(n) }
func (n *PrintStmt) meta() *Meta              { return &n.Meta }

// VarStmt represents a variable declaration, optionally annotated with an
// explicit type and a mutability marker ("mut").
type VarStmt struct {
	Meta
	Name        token.Token
	TypeName    string // empty when the type must be inferred
	Mutable     bool
	Initializer Expression
}

func (n *VarStmt) Accept(v StmtVisitor) any { return v.VisitVarStmt(n) }
func (n *VarStmt) meta() *Meta              { return &n.Meta }

// BlockStmt represents an indented suite of statements.
type BlockStmt struct {
	Meta
	Statements []Stmt
}

func (n *BlockStmt) Accept(v StmtVisitor) any { return v.VisitBlockStmt(n) }
func (n *BlockStmt) meta() *Meta              { return &n.Meta }

// IfStmt represents "if cond: then [elif cond: ...] [else: ...]". Elif
// chains are lowered by the parser into nested Else blocks.
type IfStmt struct {
	Meta
	Condition Expression
	Then      *BlockStmt
	Else      Stmt // *BlockStmt, *IfStmt, or nil
}

func (n *IfStmt) Accept(v StmtVisitor) any { return v.VisitIfStmt(n) }
func (n *IfStmt) meta() *Meta              { return &n.Meta }

// WhileStmt represents "while cond: body".
type WhileStmt struct {
	Meta
	Condition Expression
	Body      *BlockStmt
}

func (n *WhileStmt) Accept(v StmtVisitor) any { return v.VisitWhileStmt(n) }
func (n *WhileStmt) meta() *Meta              { return &n.Meta }

// ForRangeStmt represents "for name in start..end: body", the arithmetic
// progression form of for.
type ForRangeStmt struct {
	Meta
	Name      token.Token
	Start     Expression
	End       Expression
	Step      Expression // nil defaults to 1
	Inclusive bool       // true for "..=" ranges
	Body      *BlockStmt
}

func (n *ForRangeStmt) Accept(v StmtVisitor) any { return v.VisitForRangeStmt(n) }
func (n *ForRangeStmt) meta() *Meta              { return &n.Meta }

// ForIterStmt represents "for name in iterable: body", iterating an array
// or other iterable value.
type ForIterStmt struct {
	Meta
	Name     token.Token
	Iterable Expression
	Body     *BlockStmt
}

func (n *ForIterStmt) Accept(v StmtVisitor) any { return v.VisitForIterStmt(n) }
func (n *ForIterStmt) meta() *Meta              { return &n.Meta }

// BreakStmt represents "break".
type BreakStmt struct{ Meta }

func (n *BreakStmt) Accept(v StmtVisitor) any { return v.VisitBreakStmt(n) }
func (n *BreakStmt) meta() *Meta              { return &n.Meta }

// ContinueStmt represents "continue".
type ContinueStmt struct{ Meta }

func (n *ContinueStmt) Accept(v StmtVisitor) any { return v.VisitContinueStmt(n) }
func (n *ContinueStmt) meta() *Meta              { return &n.Meta }

// ReturnStmt represents "return [expr]".
type ReturnStmt struct {
	Meta
	Value Expression // nil for a bare return
}

func (n *ReturnStmt) Accept(v StmtVisitor) any { return v.VisitReturnStmt(n) }
func (n *ReturnStmt) meta() *Meta              { return &n.Meta }

// Param is a single function parameter: a name and its declared type.
type Param struct {
	Name     token.Token
	TypeName string
}

// FunctionDecl represents "fn name(params) -> ReturnType: body".
type FunctionDecl struct {
	Meta
	Name       token.Token
	Params     []Param
	ReturnType string // empty means inferred / unit
	Body       *BlockStmt
	Exported   bool
}

func (n *FunctionDecl) Accept(v StmtVisitor) any { return v.VisitFunctionDecl(n) }
func (n *FunctionDecl) meta() *Meta              { return &n.Meta }

// FieldDecl is a single struct field declaration.
type FieldDecl struct {
	Name     token.Token
	TypeName string
}

// StructDecl represents "struct Name: field: Type ...".
type StructDecl struct {
	Meta
	Name     token.Token
	Fields   []FieldDecl
	Exported bool
}

func (n *StructDecl) Accept(v StmtVisitor) any { return v.VisitStructDecl(n) }
func (n *StructDecl) meta() *Meta              { return &n.Meta }

// ImportStmt represents "import module" or "from module import a, b as c".
type ImportStmt struct {
	Meta
	Module  string
	Names   []string // empty means import the whole module under its own name
	Aliases []string // parallel to Names; "" means no alias
}

func (n *ImportStmt) Accept(v StmtVisitor) any { return v.VisitImportStmt(n) }
func (n *ImportStmt) meta() *Meta              { return &n.Meta }

// ExportStmt marks a following declaration as part of a module's public
// surface; the parser folds this into FunctionDecl.Exported /
// StructDecl.Exported and this node is retained only for statements that
// export an already-declared name.
type ExportStmt struct {
	Meta
	Names []string
}

func (n *ExportStmt) Accept(v StmtVisitor) any { return v.VisitExportStmt(n) }
func (n *ExportStmt) meta() *Meta              { return &n.Meta }

// TryStmt represents "try: body catch name: handler", converting a runtime
// error raised within body into a caught error value bound to name.
type TryStmt struct {
	Meta
	Body      *BlockStmt
	ErrorName token.Token
	Handler   *BlockStmt
}

func (n *TryStmt) Accept(v StmtVisitor) any { return v.VisitTryStmt(n) }
func (n *TryStmt) meta() *Meta              { return &n.Meta }
