package types

import (
	"orus/ast"
	"orus/diagnostics"
)

// Checker implements ast.ExpressionVisitor and ast.StmtVisitor, walking a
// parsed program once to hoist struct/function signatures (so forward
// references resolve) and once more to compute every expression's type and
// write the result into its Meta.Type. Types flow bottom-up from operands,
// annotations and the hoisted tables: an unannotated binding takes its
// initializer's type, and no inference variable is created or unified.
type Checker struct {
	sink    diagnostics.Sink
	scope   *SymbolTable
	structs map[string]*Type
	funcs   map[string]*Type

	returnStack []*Type
	loopDepth   int
}

func NewChecker() *Checker {
	return &Checker{
		scope:   NewSymbolTable(),
		structs: make(map[string]*Type),
		funcs:   make(map[string]*Type),
	}
}

// Check runs both passes over the program and returns the diagnostic sink,
// populated with every type error encountered; callers inspect
// sink.HasErrors() the same way parser.Parse callers inspect the returned
// []error slice.
func (c *Checker) Check(program []ast.Stmt) *diagnostics.Sink {
	c.hoist(program)
	for _, stmt := range program {
		c.checkStmt(stmt)
	}
	return &c.sink
}

// hoist registers every top-level struct and function signature before any
// body is checked, so a function may call another declared later in the
// file and a struct may reference a struct declared after it.
func (c *Checker) hoist(program []ast.Stmt) {
	for _, stmt := range program {
		if sd, ok := stmt.(*ast.StructDecl); ok {
			fields := make([]string, len(sd.Fields))
			for i, f := range sd.Fields {
				fields[i] = f.Name.Lexeme
			}
			c.structs[sd.Name.Lexeme] = Struct(sd.Name.Lexeme, fields, make([]*Type, len(sd.Fields)))
		}
	}
	for _, stmt := range program {
		if sd, ok := stmt.(*ast.StructDecl); ok {
			st := c.structs[sd.Name.Lexeme]
			for i, f := range sd.Fields {
				st.FieldTypes[i] = c.resolveAnnotation(f.TypeName, ast.MetaOf(sd).Span)
			}
		}
	}
	for _, stmt := range program {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			params := make([]*Type, len(fd.Params))
			for i, p := range fd.Params {
				params[i] = c.resolveAnnotation(p.TypeName, ast.MetaOf(fd).Span)
			}
			result := TypeVoid
			if fd.ReturnType != "" {
				result = c.resolveAnnotation(fd.ReturnType, ast.MetaOf(fd).Span)
			}
			c.funcs[fd.Name.Lexeme] = Function(params, result)
		}
	}
}

// resolveAnnotation maps a parsed type annotation spelling to a *Type,
// checking primitives, struct names and the "[elem]" array spelling.
// parser.typeAnnotation reads a single identifier, so annotations parsed
// from source never use the bracketed form.
func (c *Checker) resolveAnnotation(name string, span diagnostics.Span) *Type {
	if name == "" {
		return TypeVoid
	}
	if t, ok := Lookup(name); ok {
		return t
	}
	if st, ok := c.structs[name]; ok {
		return st
	}
	if len(name) >= 2 && name[0] == '[' && name[len(name)-1] == ']' {
		return Array(c.resolveAnnotation(name[1:len(name)-1], span))
	}
	c.sink.Report(diagnostics.New(diagnostics.TypeFeatureError, diagnostics.PhaseTypes, span,
		"unknown type '%s'", name))
	return TypeVoid
}

func (c *Checker) errorf(span diagnostics.Span, code diagnostics.Code, format string, args ...any) {
	c.sink.Report(diagnostics.New(code, diagnostics.PhaseTypes, span, format, args...))
}

func (c *Checker) pushScope() { c.scope = c.scope.Child() }
func (c *Checker) popScope()  { c.scope = c.scope.parent }

// checkStmt dispatches through the visitor pattern; every Visit* method
// returns nothing meaningful (any(nil)) and instead mutates node.Meta in
// place, matching the optimizer's later in-place-mutation convention.
func (c *Checker) checkStmt(s ast.Stmt) { s.Accept(c) }

func (c *Checker) checkExpr(e ast.Expression) *Type {
	if e == nil {
		return TypeVoid
	}
	result, _ := e.Accept(c).(*Type)
	if result == nil {
		result = TypeVoid
	}
	ast.MetaOf(e).Type = result.String()
	return result
}

func (c *Checker) VisitExpressionStmt(n *ast.ExpressionStmt) any {
	c.checkExpr(n.Expression)
	return nil
}

func (c *Checker) VisitPrintStmt(n *ast.PrintStmt) any {
	c.checkExpr(n.Expression)
	return nil
}

func (c *Checker) VisitVarStmt(n *ast.VarStmt) any {
	var declared *Type
	if n.TypeName != "" {
		declared = c.resolveAnnotation(n.TypeName, n.Span)
	}
	var actual *Type
	if n.Initializer != nil {
		actual = c.checkExpr(n.Initializer)
	}
	switch {
	case declared == nil && actual == nil:
		c.errorf(n.Span, diagnostics.VariableError, "variable '%s' needs either a type annotation or an initializer", n.Name.Lexeme)
		declared = TypeVoid
	case declared == nil:
		declared = actual
	case actual != nil && !Equal(declared, actual) && !c.literalFitsAnnotation(n.Initializer, declared):
		c.errorf(n.Span, diagnostics.TypeMismatch, "cannot assign a value of type '%s' to '%s' declared as '%s'",
			actual.String(), n.Name.Lexeme, declared.String())
	}
	n.Meta.Type = declared.String()
	c.scope.Define(n.Name.Lexeme, declared, n.Mutable)
	return nil
}

// literalFitsAnnotation allows an untyped numeric literal initializer to
// adopt a wider or differently-signed annotation without an explicit cast,
// mirroring literal-defaulting: "var x: u64 = 10" should not require
// "10 as u64".
func (c *Checker) literalFitsAnnotation(init ast.Expression, declared *Type) bool {
	lit, ok := init.(*ast.Literal)
	if !ok || declared == nil || !declared.IsNumeric() {
		return false
	}
	switch lit.Value.(type) {
	case int64, uint64:
		return true
	case float64:
		return declared.IsFloat()
	}
	return false
}

func (c *Checker) VisitBlockStmt(n *ast.BlockStmt) any {
	c.pushScope()
	for _, stmt := range n.Statements {
		c.checkStmt(stmt)
	}
	c.popScope()
	return nil
}

func (c *Checker) VisitIfStmt(n *ast.IfStmt) any {
	cond := c.checkExpr(n.Condition)
	if !Equal(cond, TypeBool) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "if condition must be 'bool', got '%s'", cond.String())
	}
	c.checkStmt(n.Then)
	if n.Else != nil {
		c.checkStmt(n.Else)
	}
	return nil
}

func (c *Checker) VisitWhileStmt(n *ast.WhileStmt) any {
	cond := c.checkExpr(n.Condition)
	if !Equal(cond, TypeBool) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "while condition must be 'bool', got '%s'", cond.String())
	}
	c.loopDepth++
	c.checkStmt(n.Body)
	c.loopDepth--
	return nil
}

func (c *Checker) VisitForRangeStmt(n *ast.ForRangeStmt) any {
	start := c.checkExpr(n.Start)
	end := c.checkExpr(n.End)
	loopType := start
	if !start.IsNumeric() {
		c.errorf(n.Span, diagnostics.TypeMismatch, "for-range start must be numeric, got '%s'", start.String())
		loopType = TypeI32
	} else if !Equal(start, end) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "for-range start/end types differ: '%s' vs '%s'", start.String(), end.String())
	}
	if n.Step != nil {
		step := c.checkExpr(n.Step)
		if !Equal(step, loopType) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "for-range step type '%s' does not match loop type '%s'", step.String(), loopType.String())
		}
	}
	c.pushScope()
	c.scope.Define(n.Name.Lexeme, loopType, false)
	c.loopDepth++
	c.checkStmt(n.Body)
	c.loopDepth--
	c.popScope()
	n.Meta.Type = loopType.String()
	return nil
}

func (c *Checker) VisitForIterStmt(n *ast.ForIterStmt) any {
	iterable := c.checkExpr(n.Iterable)
	elem := TypeVoid
	if iterable.Kind == KindArray {
		elem = iterable.Elem
	} else if iterable.Kind != KindVar {
		c.errorf(n.Span, diagnostics.TypeMismatch, "cannot iterate a value of type '%s'", iterable.String())
	}
	c.pushScope()
	c.scope.Define(n.Name.Lexeme, elem, false)
	c.loopDepth++
	c.checkStmt(n.Body)
	c.loopDepth--
	c.popScope()
	return nil
}

func (c *Checker) VisitBreakStmt(n *ast.BreakStmt) any {
	if c.loopDepth == 0 {
		c.errorf(n.Span, diagnostics.ControlFlowError, "'break' used outside of a loop")
	}
	return nil
}

func (c *Checker) VisitContinueStmt(n *ast.ContinueStmt) any {
	if c.loopDepth == 0 {
		c.errorf(n.Span, diagnostics.ControlFlowError, "'continue' used outside of a loop")
	}
	return nil
}

func (c *Checker) VisitReturnStmt(n *ast.ReturnStmt) any {
	want := TypeVoid
	if len(c.returnStack) > 0 {
		want = c.returnStack[len(c.returnStack)-1]
	}
	got := TypeVoid
	if n.Value != nil {
		got = c.checkExpr(n.Value)
	}
	if !Equal(want, got) && !c.literalFitsAnnotation(n.Value, want) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "return type mismatch: expected '%s', got '%s'", want.String(), got.String())
	}
	return nil
}

func (c *Checker) VisitFunctionDecl(n *ast.FunctionDecl) any {
	sig := c.funcs[n.Name.Lexeme]
	if sig == nil {
		// Nested/locally-scoped function declarations are not hoisted;
		// resolve the signature now.
		params := make([]*Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = c.resolveAnnotation(p.TypeName, n.Span)
		}
		result := TypeVoid
		if n.ReturnType != "" {
			result = c.resolveAnnotation(n.ReturnType, n.Span)
		}
		sig = Function(params, result)
		c.funcs[n.Name.Lexeme] = sig
	}
	c.pushScope()
	for i, p := range n.Params {
		c.scope.Define(p.Name.Lexeme, sig.Params[i], false)
	}
	c.returnStack = append(c.returnStack, sig.Result)
	for _, stmt := range n.Body.Statements {
		c.checkStmt(stmt)
	}
	c.returnStack = c.returnStack[:len(c.returnStack)-1]
	c.popScope()
	n.Meta.Type = sig.String()
	return nil
}

func (c *Checker) VisitStructDecl(n *ast.StructDecl) any {
	if _, ok := c.structs[n.Name.Lexeme]; !ok {
		fields := make([]string, len(n.Fields))
		fieldTypes := make([]*Type, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Name.Lexeme
			fieldTypes[i] = c.resolveAnnotation(f.TypeName, n.Span)
		}
		c.structs[n.Name.Lexeme] = Struct(n.Name.Lexeme, fields, fieldTypes)
	}
	return nil
}

func (c *Checker) VisitImportStmt(n *ast.ImportStmt) any { return nil }
func (c *Checker) VisitExportStmt(n *ast.ExportStmt) any { return nil }

func (c *Checker) VisitTryStmt(n *ast.TryStmt) any {
	c.checkStmt(n.Body)
	c.pushScope()
	c.scope.Define(n.ErrorName.Lexeme, TypeString, false)
	c.checkStmt(n.Handler)
	c.popScope()
	return nil
}

// --- expressions ---

func (c *Checker) VisitBinary(n *ast.Binary) any {
	left := c.checkExpr(n.Left)
	right := c.checkExpr(n.Right)
	switch n.Operator.TokenType {
	case "==", "!=":
		if !Equal(left, right) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "cannot compare '%s' and '%s'", left.String(), right.String())
		}
		return TypeBool
	case "<", "<=", ">", ">=":
		if !left.IsNumeric() || !Equal(left, right) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "comparison requires matching numeric operands, got '%s' and '%s'", left.String(), right.String())
		}
		return TypeBool
	case "+":
		if Equal(left, TypeString) && Equal(right, TypeString) {
			return TypeString
		}
		fallthrough
	default:
		if !left.IsNumeric() || !right.IsNumeric() {
			c.errorf(n.Span, diagnostics.TypeMismatch, "arithmetic requires numeric operands, got '%s' and '%s'", left.String(), right.String())
			return TypeI32
		}
		if !Equal(left, right) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "arithmetic requires matching numeric types, got '%s' and '%s' (use 'as' to cast)", left.String(), right.String())
		}
		return left
	}
}

func (c *Checker) VisitUnary(n *ast.Unary) any {
	operand := c.checkExpr(n.Right)
	switch n.Operator.TokenType {
	case "!":
		if !Equal(operand, TypeBool) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "'!' requires a 'bool' operand, got '%s'", operand.String())
		}
		return TypeBool
	default: // "-"
		if !operand.IsNumeric() {
			c.errorf(n.Span, diagnostics.TypeMismatch, "unary '-' requires a numeric operand, got '%s'", operand.String())
		}
		return operand
	}
}

func (c *Checker) VisitLiteral(n *ast.Literal) any {
	switch v := n.Value.(type) {
	case nil:
		return TypeNil
	case bool:
		return TypeBool
	case string:
		return TypeString
	case int64:
		return TypeI32 // untyped int literal defaults to i32
	case uint64:
		return TypeU32 // untyped unsigned literal defaults to u32
	case float64:
		return TypeF64
	default:
		c.errorf(n.Span, diagnostics.CompilerInvariant, "literal of unrecognised Go type %T reached the type checker", v)
		return TypeVoid
	}
}

func (c *Checker) VisitGrouping(n *ast.Grouping) any {
	return c.checkExpr(n.Expression)
}

func (c *Checker) VisitVariableExpression(n *ast.Variable) any {
	sym, ok := c.scope.Resolve(n.Name.Lexeme)
	if !ok {
		c.errorf(n.Span, diagnostics.UndefinedVariable, "undefined variable '%s'", n.Name.Lexeme)
		return TypeVoid
	}
	return sym.Type
}

func (c *Checker) VisitAssignExpression(n *ast.Assign) any {
	sym, ok := c.scope.Resolve(n.Name.Lexeme)
	if !ok {
		c.errorf(n.Span, diagnostics.UndefinedVariable, "undefined variable '%s'", n.Name.Lexeme)
		return TypeVoid
	}
	if !sym.Mutable {
		c.errorf(n.Span, diagnostics.ImmutableAssignment, "cannot assign to immutable variable '%s' (declare it with 'mut')", n.Name.Lexeme)
	}
	value := c.checkExpr(n.Value)
	if n.Op != "=" {
		if !sym.Type.IsNumeric() {
			c.errorf(n.Span, diagnostics.TypeMismatch, "compound assignment '%s' requires a numeric target", n.Op)
		}
	}
	if !Equal(sym.Type, value) && !c.literalFitsAnnotation(n.Value, sym.Type) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "cannot assign '%s' to '%s' of type '%s'", value.String(), n.Name.Lexeme, sym.Type.String())
	}
	return sym.Type
}

func (c *Checker) VisitLogicalExpression(n *ast.Logical) any {
	left := c.checkExpr(n.Left)
	right := c.checkExpr(n.Right)
	if !Equal(left, TypeBool) || !Equal(right, TypeBool) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "'%s' requires 'bool' operands, got '%s' and '%s'", n.Operator.Lexeme, left.String(), right.String())
	}
	return TypeBool
}

// checkBuiltinCall special-cases the four built-in functions spec.md
// names, since none of them has a single fixed signature a normal
// funcs-table entry could express (len accepts arrays or strings,
// is_type accepts any value).
func (c *Checker) checkBuiltinCall(name string, n *ast.Call) (*Type, bool) {
	switch name {
	case "input":
		if len(n.Arguments) != 0 {
			c.errorf(n.Span, diagnostics.FunctionCallError, "'input' expects no arguments, got %d", len(n.Arguments))
		}
		return TypeString, true
	case "len":
		if len(n.Arguments) != 1 {
			c.errorf(n.Span, diagnostics.FunctionCallError, "'len' expects 1 argument, got %d", len(n.Arguments))
		}
		for _, arg := range n.Arguments {
			c.checkExpr(arg)
		}
		return TypeI32, true
	case "is_type":
		if len(n.Arguments) != 2 {
			c.errorf(n.Span, diagnostics.FunctionCallError, "'is_type' expects 2 arguments, got %d", len(n.Arguments))
		}
		for _, arg := range n.Arguments {
			c.checkExpr(arg)
		}
		return TypeBool, true
	case "time_stamp":
		if len(n.Arguments) != 0 {
			c.errorf(n.Span, diagnostics.FunctionCallError, "'time_stamp' expects no arguments, got %d", len(n.Arguments))
		}
		return TypeF64, true
	default:
		return nil, false
	}
}

func (c *Checker) VisitCall(n *ast.Call) any {
	variable, ok := n.Callee.(*ast.Variable)
	if !ok {
		c.errorf(n.Span, diagnostics.TypeFeatureError, "only direct function calls are supported")
		for _, arg := range n.Arguments {
			c.checkExpr(arg)
		}
		return TypeVoid
	}
	if result, ok := c.checkBuiltinCall(variable.Name.Lexeme, n); ok {
		return result
	}
	sig, ok := c.funcs[variable.Name.Lexeme]
	if !ok {
		c.errorf(n.Span, diagnostics.UndefinedVariable, "call to undefined function '%s'", variable.Name.Lexeme)
		for _, arg := range n.Arguments {
			c.checkExpr(arg)
		}
		return TypeVoid
	}
	ast.MetaOf(variable).Type = sig.String()
	if len(n.Arguments) != len(sig.Params) {
		c.errorf(n.Span, diagnostics.FunctionCallError, "'%s' expects %d argument(s), got %d", variable.Name.Lexeme, len(sig.Params), len(n.Arguments))
	}
	for i, arg := range n.Arguments {
		got := c.checkExpr(arg)
		if i < len(sig.Params) && !Equal(got, sig.Params[i]) && !c.literalFitsAnnotation(arg, sig.Params[i]) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "argument %d to '%s': expected '%s', got '%s'",
				i+1, variable.Name.Lexeme, sig.Params[i].String(), got.String())
		}
	}
	return sig.Result
}

func (c *Checker) VisitFieldAccess(n *ast.FieldAccess) any {
	target := c.checkExpr(n.Target)
	if target.Kind != KindStruct {
		c.errorf(n.Span, diagnostics.TypeFeatureError, "'.%s' requires a struct value, got '%s'", n.Field.Lexeme, target.String())
		return TypeVoid
	}
	for i, name := range target.Fields {
		if name == n.Field.Lexeme {
			return target.FieldTypes[i]
		}
	}
	c.errorf(n.Span, diagnostics.TypeFeatureError, "struct '%s' has no field '%s'", target.Name, n.Field.Lexeme)
	return TypeVoid
}

func (c *Checker) VisitIndex(n *ast.Index) any {
	target := c.checkExpr(n.Target)
	idx := c.checkExpr(n.Index)
	if !idx.IsNumeric() {
		c.errorf(n.Span, diagnostics.TypeMismatch, "array index must be numeric, got '%s'", idx.String())
	}
	if target.Kind != KindArray {
		c.errorf(n.Span, diagnostics.TypeFeatureError, "cannot index a value of type '%s'", target.String())
		return TypeVoid
	}
	return target.Elem
}

func (c *Checker) VisitCast(n *ast.Cast) any {
	from := c.checkExpr(n.Value)
	to := c.resolveAnnotation(n.TypeName, n.Span)
	if !from.IsNumeric() || !to.IsNumeric() {
		c.errorf(n.Span, diagnostics.TypeFeatureError, "'as' only converts between numeric types, got '%s' as '%s'", from.String(), to.String())
	}
	return to
}

func (c *Checker) VisitTernary(n *ast.Ternary) any {
	cond := c.checkExpr(n.Condition)
	if !Equal(cond, TypeBool) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "ternary condition must be 'bool', got '%s'", cond.String())
	}
	then := c.checkExpr(n.Then)
	els := c.checkExpr(n.Else)
	if !Equal(then, els) {
		c.errorf(n.Span, diagnostics.TypeMismatch, "ternary branches differ: '%s' vs '%s'", then.String(), els.String())
	}
	return then
}

func (c *Checker) VisitArrayLiteral(n *ast.ArrayLiteral) any {
	if len(n.Elements) == 0 {
		return Array(TypeVoid)
	}
	elem := c.checkExpr(n.Elements[0])
	for _, e := range n.Elements[1:] {
		got := c.checkExpr(e)
		if !Equal(got, elem) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "array literal elements must share a type: '%s' vs '%s'", elem.String(), got.String())
		}
	}
	return Array(elem)
}

func (c *Checker) VisitStructLiteral(n *ast.StructLiteral) any {
	st, ok := c.structs[n.TypeName]
	if !ok {
		c.errorf(n.Span, diagnostics.UndefinedVariable, "undefined struct type '%s'", n.TypeName)
		for _, v := range n.Values {
			c.checkExpr(v)
		}
		return TypeVoid
	}
	seen := make(map[string]bool, len(n.Fields))
	for i, name := range n.Fields {
		seen[name] = true
		got := c.checkExpr(n.Values[i])
		idx := -1
		for j, fname := range st.Fields {
			if fname == name {
				idx = j
				break
			}
		}
		if idx == -1 {
			c.errorf(n.Span, diagnostics.TypeFeatureError, "struct '%s' has no field '%s'", n.TypeName, name)
			continue
		}
		if !Equal(got, st.FieldTypes[idx]) && !c.literalFitsAnnotation(n.Values[i], st.FieldTypes[idx]) {
			c.errorf(n.Span, diagnostics.TypeMismatch, "field '%s' of '%s': expected '%s', got '%s'",
				name, n.TypeName, st.FieldTypes[idx].String(), got.String())
		}
	}
	for _, fname := range st.Fields {
		if !seen[fname] {
			c.errorf(n.Span, diagnostics.TypeFeatureError, "missing field '%s' in '%s' literal", fname, n.TypeName)
		}
	}
	return st
}
