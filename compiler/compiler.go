// compiler.go implements the register-targeting code generator: a visitor
// over the (already type-checked) AST that emits compiler.Chunk bytecode,
// generalizing the teacher's stack-machine ASTCompiler
// (nilan/compiler/ast_compiler.go) to the 256-register file of spec.md
// §4.5-4.6. Every expression compiles to "the register holding its
// value"; statements consume and discard those registers as they go.
package compiler

import (
	"encoding/binary"

	"orus/ast"
	"orus/diagnostics"
	"orus/token"
	"orus/value"
)

type loopCtx struct {
	breakJumps    []int // positions of the 2-byte operand to patch to loop-end
	continueTo    int   // absolute ip a 'continue' jumps back to
}

// Compiler walks a parsed (and type-checked) program once and produces a
// Program of register bytecode. It implements ast.ExpressionVisitor and
// ast.StmtVisitor the same way the teacher's ASTCompiler did, but every
// Visit method now returns the register (an int) holding its result
// instead of pushing onto an implicit VM stack.
type Compiler struct {
	sink diagnostics.Sink

	program   *Program
	chunk     *Chunk
	scope     *funcScope
	mainScope *funcScope

	globals     map[string]int
	globalTypes map[string]string
	nextGlobal  int

	structIndex map[string]int
	fieldIndex  map[string]map[string]int

	funcIndex map[string]int

	loops []loopCtx
}

// Compile lowers program, which the caller is expected to have already
// run through types.Checker, to a Program; it does no type checking of
// its own. Callers should refuse to compile if the checker's sink
// reported any errors.
func Compile(program []ast.Stmt) (*Program, *diagnostics.Sink) {
	c := &Compiler{
		globals:     make(map[string]int),
		globalTypes: make(map[string]string),
		structIndex: make(map[string]int),
		fieldIndex:  make(map[string]map[string]int),
		funcIndex:   make(map[string]int),
	}
	c.program = &Program{Main: &Chunk{Name: "main"}}
	c.mainScope = newFuncScope(nil)
	c.scope = c.mainScope
	c.chunk = c.program.Main

	c.hoist(program)

	for _, stmt := range program {
		c.compileStmt(stmt)
	}
	c.chunk.emit(OP_HALT)
	c.chunk.NumRegisters = c.scope.maxTemp

	c.program.GlobalCount = c.nextGlobal
	return c.program, &c.sink
}

// hoist registers every top-level struct layout and function signature
// before any body is compiled, exactly mirroring types.Checker.hoist so a
// function can call one declared later in the file.
func (c *Compiler) hoist(program []ast.Stmt) {
	for _, stmt := range program {
		if sd, ok := stmt.(*ast.StructDecl); ok {
			fields := make([]string, len(sd.Fields))
			idx := make(map[string]int, len(sd.Fields))
			for i, f := range sd.Fields {
				fields[i] = f.Name.Lexeme
				idx[f.Name.Lexeme] = i
			}
			c.structIndex[sd.Name.Lexeme] = len(c.program.Structs)
			c.fieldIndex[sd.Name.Lexeme] = idx
			c.program.Structs = append(c.program.Structs, &StructProto{Name: sd.Name.Lexeme, Fields: fields})
		}
	}
	for _, stmt := range program {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			c.funcIndex[fd.Name.Lexeme] = len(c.program.Functions)
			c.program.Functions = append(c.program.Functions, &FunctionProto{
				Name:  fd.Name.Lexeme,
				Arity: len(fd.Params),
				Chunk: &Chunk{Name: fd.Name.Lexeme},
			})
		}
	}
}

func (c *Compiler) errorf(span diagnostics.Span, code diagnostics.Code, format string, args ...any) {
	c.sink.Report(diagnostics.New(code, diagnostics.PhaseCodegen, span, format, args...))
}

// compileStmt dispatches a statement and resets the temp-register
// high-water mark afterward: every value a statement computes is either
// consumed (assigned, printed, returned) or dead by the statement's end,
// so no temp needs to survive across a statement boundary.
func (c *Compiler) compileStmt(s ast.Stmt) {
	mark := c.scope.nextTemp
	s.Accept(c)
	c.scope.freeTemp(mark)
}

func (c *Compiler) compileExpr(e ast.Expression) int {
	reg, _ := e.Accept(c).(int)
	return reg
}

func (c *Compiler) typeOf(e ast.Expression) string { return ast.MetaOf(e).Type }

// --- constant helpers ---

func (c *Compiler) loadLiteral(dst int, lit *ast.Literal) {
	switch v := lit.Value.(type) {
	case nil:
		c.chunk.emit(OP_LOAD_NIL, dst)
	case bool:
		if v {
			c.chunk.emit(OP_LOAD_TRUE, dst)
		} else {
			c.chunk.emit(OP_LOAD_FALSE, dst)
		}
	case int64:
		c.loadTypedInt(dst, lit, v)
	case uint64:
		c.loadTypedUint(dst, lit, v)
	case float64:
		idx := c.chunk.addConstant(value.F64(v))
		c.chunk.emit(OP_LOAD_CONST, dst, idx)
	case string:
		idx := c.chunk.addConstant(value.FromObject(value.NewString(v)))
		c.chunk.emit(OP_LOAD_CONST, dst, idx)
	default:
		c.errorf(lit.Span, diagnostics.CompilerInvariant, "literal of unrecognised Go type %T reached codegen", v)
	}
}

func (c *Compiler) loadTypedInt(dst int, lit *ast.Literal, v int64) {
	var idx int
	switch lit.Meta.Type {
	case "i64":
		idx = c.chunk.addConstant(value.I64(v))
	default:
		idx = c.chunk.addConstant(value.I32(int32(v)))
	}
	c.chunk.emit(OP_LOAD_CONST, dst, idx)
}

func (c *Compiler) loadTypedUint(dst int, lit *ast.Literal, v uint64) {
	var idx int
	switch lit.Meta.Type {
	case "u64":
		idx = c.chunk.addConstant(value.U64(v))
	default:
		idx = c.chunk.addConstant(value.U32(uint32(v)))
	}
	c.chunk.emit(OP_LOAD_CONST, dst, idx)
}

// --- statements ---

func (c *Compiler) VisitExpressionStmt(n *ast.ExpressionStmt) any {
	c.compileExpr(n.Expression)
	return nil
}

func (c *Compiler) VisitPrintStmt(n *ast.PrintStmt) any {
	reg := c.compileExpr(n.Expression)
	c.chunk.emit(OP_PRINT, reg)
	return nil
}

func (c *Compiler) VisitVarStmt(n *ast.VarStmt) any {
	var dst int
	if n.Initializer != nil {
		dst = c.compileExpr(n.Initializer)
	}
	if c.scope == c.mainScope && c.scope.depth == 0 {
		reg := c.nextGlobal
		c.nextGlobal++
		c.globals[n.Name.Lexeme] = reg
		c.globalTypes[n.Name.Lexeme] = n.Meta.Type
		if n.Initializer != nil {
			c.chunk.emit(OP_MOVE, reg, dst)
		} else {
			c.chunk.emit(OP_LOAD_NIL, reg)
		}
		return nil
	}
	reg, ok := c.scope.declareLocal(n.Name.Lexeme, n.Mutable)
	if !ok {
		c.errorf(n.Span, diagnostics.VariableError, "cannot declare '%s': out of registers or already declared in this scope", n.Name.Lexeme)
		return nil
	}
	if n.Initializer != nil {
		c.chunk.emit(OP_MOVE, reg, dst)
	} else {
		c.chunk.emit(OP_LOAD_NIL, reg)
	}
	return nil
}

func (c *Compiler) VisitBlockStmt(n *ast.BlockStmt) any {
	c.scope.beginScope()
	for _, stmt := range n.Statements {
		c.compileStmt(stmt)
	}
	c.scope.endScope()
	return nil
}

func (c *Compiler) VisitIfStmt(n *ast.IfStmt) any {
	cond := c.compileExpr(n.Condition)
	elseJump := c.emitCondJump(OP_JUMP_IF_FALSE, cond)
	c.compileStmt(n.Then)
	if n.Else == nil {
		c.patchJump(elseJump)
		return nil
	}
	endJump := c.emitJump(OP_JUMP)
	c.patchJump(elseJump)
	c.compileStmt(n.Else)
	c.patchJump(endJump)
	return nil
}

func (c *Compiler) VisitWhileStmt(n *ast.WhileStmt) any {
	loopStart := len(c.chunk.Instructions)
	cond := c.compileExpr(n.Condition)
	exitJump := c.emitCondJump(OP_JUMP_IF_FALSE, cond)

	c.loops = append(c.loops, loopCtx{continueTo: loopStart})
	c.compileStmt(n.Body)
	c.chunk.emit(OP_JUMP)
	c.patchJumpTo(len(c.chunk.Instructions)-2, loopStart)
	c.closeLoop(exitJump)
	return nil
}

// closeLoop patches every break jump in the innermost loop to land just
// past exitJump (the loop's natural exit point), then pops the loop's
// bookkeeping frame.
func (c *Compiler) closeLoop(exitJump int) {
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	c.patchJump(exitJump)
	end := len(c.chunk.Instructions)
	for _, pos := range loop.breakJumps {
		c.patchJumpTo(pos, end)
	}
}

func (c *Compiler) VisitForRangeStmt(n *ast.ForRangeStmt) any {
	loopType := ast.MetaOf(n).Type
	startReg := c.compileExpr(n.Start)
	endReg := c.compileExpr(n.End)
	var stepReg int
	hasStep := n.Step != nil
	if hasStep {
		stepReg = c.compileExpr(n.Step)
	}

	c.scope.beginScope()
	counter, _ := c.scope.declareLocal(n.Name.Lexeme, false)
	c.chunk.emit(OP_MOVE, counter, startReg)

	loopStart := len(c.chunk.Instructions)
	cmpOp, cmpInclusiveOp := cmpOpcodesFor(loopType)
	cond := c.scope.allocTemp()
	if n.Inclusive {
		c.chunk.emit(cmpInclusiveOp, cond, counter, endReg)
	} else {
		c.chunk.emit(cmpOp, cond, counter, endReg)
	}
	exitJump := c.emitCondJump(OP_JUMP_IF_FALSE, cond)
	c.scope.freeTemp(cond)

	c.loops = append(c.loops, loopCtx{})
	c.compileStmt(n.Body)

	step := c.scope.allocTemp()
	if hasStep {
		c.chunk.emit(OP_MOVE, step, stepReg)
	} else {
		c.loadLiteral(step, &ast.Literal{Value: int64(1), Meta: ast.Meta{Type: loopType}})
	}
	addOp := addOpcodeFor(loopType)
	c.chunk.emit(addOp, counter, counter, step)
	c.scope.freeTemp(step)

	c.chunk.emit(OP_JUMP)
	c.patchJumpTo(len(c.chunk.Instructions)-2, loopStart)
	c.closeLoop(exitJump)
	c.scope.endScope()
	return nil
}

func (c *Compiler) VisitForIterStmt(n *ast.ForIterStmt) any {
	arr := c.compileExpr(n.Iterable)

	c.scope.beginScope()
	idxReg, _ := c.scope.declareLocal("$idx_"+n.Name.Lexeme, true)
	c.loadLiteral(idxReg, &ast.Literal{Value: int64(0), Meta: ast.Meta{Type: "i32"}})
	lenReg, _ := c.scope.declareLocal("$len_"+n.Name.Lexeme, false)
	c.chunk.emit(OP_ARRAY_LEN, lenReg, arr)
	elemReg, _ := c.scope.declareLocal(n.Name.Lexeme, false)

	loopStart := len(c.chunk.Instructions)
	cond := c.scope.allocTemp()
	c.chunk.emit(OP_LT_I32, cond, idxReg, lenReg)
	exitJump := c.emitCondJump(OP_JUMP_IF_FALSE, cond)
	c.scope.freeTemp(cond)

	c.chunk.emit(OP_INDEX_GET, elemReg, arr, idxReg)

	c.loops = append(c.loops, loopCtx{})
	c.compileStmt(n.Body)

	one := c.scope.allocTemp()
	c.loadLiteral(one, &ast.Literal{Value: int64(1), Meta: ast.Meta{Type: "i32"}})
	c.chunk.emit(OP_ADD_I32, idxReg, idxReg, one)
	c.scope.freeTemp(one)

	c.chunk.emit(OP_JUMP)
	c.patchJumpTo(len(c.chunk.Instructions)-2, loopStart)
	c.closeLoop(exitJump)
	c.scope.endScope()
	return nil
}

func (c *Compiler) VisitBreakStmt(n *ast.BreakStmt) any {
	if len(c.loops) == 0 {
		c.errorf(n.Span, diagnostics.ControlFlowError, "'break' used outside of a loop")
		return nil
	}
	pos := c.emitJump(OP_JUMP)
	top := len(c.loops) - 1
	c.loops[top].breakJumps = append(c.loops[top].breakJumps, pos)
	return nil
}

func (c *Compiler) VisitContinueStmt(n *ast.ContinueStmt) any {
	if len(c.loops) == 0 {
		c.errorf(n.Span, diagnostics.ControlFlowError, "'continue' used outside of a loop")
		return nil
	}
	target := c.loops[len(c.loops)-1].continueTo
	c.chunk.emit(OP_JUMP)
	c.patchJumpTo(len(c.chunk.Instructions)-2, target)
	return nil
}

func (c *Compiler) VisitReturnStmt(n *ast.ReturnStmt) any {
	if n.Value == nil {
		c.chunk.emit(OP_RETURN_VOID)
		return nil
	}
	reg := c.compileExpr(n.Value)
	c.chunk.emit(OP_RETURN, reg)
	return nil
}

func (c *Compiler) VisitFunctionDecl(n *ast.FunctionDecl) any {
	idx, ok := c.funcIndex[n.Name.Lexeme]
	if !ok {
		idx = len(c.program.Functions)
		c.funcIndex[n.Name.Lexeme] = idx
		c.program.Functions = append(c.program.Functions, &FunctionProto{Name: n.Name.Lexeme, Arity: len(n.Params), Chunk: &Chunk{Name: n.Name.Lexeme}})
	}
	proto := c.program.Functions[idx]

	outerChunk, outerScope := c.chunk, c.scope
	c.chunk = proto.Chunk
	c.scope = newFuncScope(outerScope)

	for _, p := range n.Params {
		c.scope.declareLocal(p.Name.Lexeme, false)
	}
	for _, stmt := range n.Body.Statements {
		c.compileStmt(stmt)
	}
	c.chunk.emit(OP_RETURN_VOID)
	c.chunk.NumRegisters = c.scope.maxTemp
	proto.Upvalues = c.scope.upvalues

	c.chunk, c.scope = outerChunk, outerScope

	// A nested (non-top-level) declaration also needs a closure value
	// bound in its enclosing scope so it can be called by name.
	if !(c.scope == c.mainScope && c.scope.depth == 0) {
		dst, ok := c.scope.declareLocal(n.Name.Lexeme, false)
		if ok {
			c.emitClosure(dst, idx, proto.Upvalues)
		}
	}
	return nil
}

func (c *Compiler) emitClosure(dst, funcIdx int, upvalues []UpvalueDesc) {
	c.chunk.emit(OP_CLOSURE, dst, funcIdx, len(upvalues))
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.IsLocal {
			isLocal = 1
		}
		c.chunk.Instructions = append(c.chunk.Instructions, isLocal, byte(uv.Index))
	}
}

func (c *Compiler) VisitStructDecl(n *ast.StructDecl) any {
	if _, ok := c.structIndex[n.Name.Lexeme]; !ok {
		fields := make([]string, len(n.Fields))
		idx := make(map[string]int, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Name.Lexeme
			idx[f.Name.Lexeme] = i
		}
		c.structIndex[n.Name.Lexeme] = len(c.program.Structs)
		c.fieldIndex[n.Name.Lexeme] = idx
		c.program.Structs = append(c.program.Structs, &StructProto{Name: n.Name.Lexeme, Fields: fields})
	}
	return nil
}

func (c *Compiler) VisitImportStmt(n *ast.ImportStmt) any { return nil }
func (c *Compiler) VisitExportStmt(n *ast.ExportStmt) any { return nil }

func (c *Compiler) VisitTryStmt(n *ast.TryStmt) any {
	// Runtime-error recovery is a vm-level concern (the frame stack
	// unwinds to the nearest try handler); the compiler only needs to
	// bind the error name within the handler's scope.
	c.compileStmt(n.Body)
	c.scope.beginScope()
	c.scope.declareLocal(n.ErrorName.Lexeme, false)
	c.compileStmt(n.Handler)
	c.scope.endScope()
	return nil
}

// --- expressions ---

func (c *Compiler) VisitBinary(n *ast.Binary) any {
	mark := c.scope.nextTemp
	l := c.compileExpr(n.Left)
	r := c.compileExpr(n.Right)
	c.scope.freeTemp(mark)
	dst := c.scope.allocTemp()

	resultType := c.typeOf(n)
	operandType := c.typeOf(n.Left)
	switch n.Operator.TokenType {
	case token.EQUAL_EQUAL:
		c.chunk.emit(OP_EQ, dst, l, r)
	case token.NOT_EQUAL:
		c.chunk.emit(OP_NEQ, dst, l, r)
	case token.LESS:
		c.chunk.emit(cmpOpcode("lt", operandType), dst, l, r)
	case token.LESS_EQUAL:
		c.chunk.emit(cmpOpcode("le", operandType), dst, l, r)
	case token.LARGER:
		c.chunk.emit(cmpOpcode("gt", operandType), dst, l, r)
	case token.LARGER_EQUAL:
		c.chunk.emit(cmpOpcode("ge", operandType), dst, l, r)
	case token.ADD:
		if resultType == "string" {
			c.chunk.emit(OP_CONCAT_STR, dst, l, r)
		} else {
			c.chunk.emit(arithOpcode("add", operandType), dst, l, r)
		}
	case token.SUB:
		c.chunk.emit(arithOpcode("sub", operandType), dst, l, r)
	case token.MULT:
		c.chunk.emit(arithOpcode("mul", operandType), dst, l, r)
	case token.DIV:
		c.chunk.emit(arithOpcode("div", operandType), dst, l, r)
	case token.MOD:
		c.chunk.emit(arithOpcode("mod", operandType), dst, l, r)
	}
	return dst
}

func (c *Compiler) VisitUnary(n *ast.Unary) any {
	src := c.compileExpr(n.Right)
	dst := c.scope.allocTemp()
	if n.Operator.TokenType == token.BANG {
		c.chunk.emit(OP_NOT, dst, src)
		return dst
	}
	switch c.typeOf(n.Right) {
	case "i32":
		c.chunk.emit(OP_NEG_I32, dst, src)
	case "i64":
		c.chunk.emit(OP_NEG_I64, dst, src)
	case "u32":
		c.chunk.emit(OP_NEG_U32, dst, src)
	case "u64":
		c.chunk.emit(OP_NEG_U64, dst, src)
	case "f64":
		c.chunk.emit(OP_NEG_F64, dst, src)
	default:
		c.chunk.emit(OP_NEG, dst, src)
	}
	return dst
}

func (c *Compiler) VisitLiteral(n *ast.Literal) any {
	dst := c.scope.allocTemp()
	c.loadLiteral(dst, n)
	return dst
}

func (c *Compiler) VisitGrouping(n *ast.Grouping) any {
	return c.compileExpr(n.Expression)
}

func (c *Compiler) VisitVariableExpression(n *ast.Variable) any {
	if local, ok := c.scope.resolveLocal(n.Name.Lexeme); ok {
		return local.reg
	}
	if idx, ok := c.scope.resolveUpvalue(n.Name.Lexeme); ok {
		dst := c.scope.allocTemp()
		c.chunk.emit(OP_GET_UPVALUE, dst, idx)
		return dst
	}
	if reg, ok := c.globals[n.Name.Lexeme]; ok {
		return reg
	}
	c.errorf(n.Span, diagnostics.UndefinedVariable, "undefined variable '%s'", n.Name.Lexeme)
	return c.scope.allocTemp()
}

func (c *Compiler) VisitAssignExpression(n *ast.Assign) any {
	valueReg := c.compileExpr(n.Value)

	if local, ok := c.scope.resolveLocal(n.Name.Lexeme); ok {
		c.emitAssignOp(n.Op, local.reg, local.reg, valueReg, ast.MetaOf(n).Type)
		return local.reg
	}
	if idx, ok := c.scope.resolveUpvalue(n.Name.Lexeme); ok {
		cur := c.scope.allocTemp()
		c.chunk.emit(OP_GET_UPVALUE, cur, idx)
		c.emitAssignOp(n.Op, cur, cur, valueReg, ast.MetaOf(n).Type)
		c.chunk.emit(OP_SET_UPVALUE, idx, cur)
		return cur
	}
	if reg, ok := c.globals[n.Name.Lexeme]; ok {
		opType := c.globalTypes[n.Name.Lexeme]
		c.emitAssignOp(n.Op, reg, reg, valueReg, opType)
		return reg
	}
	c.errorf(n.Span, diagnostics.UndefinedVariable, "undefined variable '%s'", n.Name.Lexeme)
	return c.scope.allocTemp()
}

// emitAssignOp writes valueReg into dst directly for plain '=', or folds
// a compound assignment ('+=' etc.) into one typed arithmetic op reading
// dst's current value (held in cur, usually == dst) and valueReg.
func (c *Compiler) emitAssignOp(op token.TokenType, dst, cur, valueReg int, typ string) {
	if op == token.ASSIGN {
		c.chunk.emit(OP_MOVE, dst, valueReg)
		return
	}
	c.chunk.emit(compoundArith(op, typ), dst, cur, valueReg)
}

func (c *Compiler) VisitLogicalExpression(n *ast.Logical) any {
	l := c.compileExpr(n.Left)
	dst := c.scope.allocTemp()
	c.chunk.emit(OP_MOVE, dst, l)

	var shortCircuit int
	if n.Operator.TokenType == token.OR {
		shortCircuit = c.emitCondJump(OP_JUMP_IF_TRUE, dst)
	} else {
		shortCircuit = c.emitCondJump(OP_JUMP_IF_FALSE, dst)
	}
	r := c.compileExpr(n.Right)
	c.chunk.emit(OP_MOVE, dst, r)
	c.patchJump(shortCircuit)
	return dst
}

func (c *Compiler) VisitCall(n *ast.Call) any {
	variable, ok := n.Callee.(*ast.Variable)
	if !ok {
		c.errorf(n.Span, diagnostics.TypeFeatureError, "only direct function calls are supported")
		return c.scope.allocTemp()
	}

	if builtinID, ok := Builtins[variable.Name.Lexeme]; ok {
		return c.compileBuiltinCall(builtinID, n.Arguments)
	}

	// A name resolving to a local or upvalue is a closure value captured
	// by a nested function declaration; call through its runtime value
	// rather than the flat function table, so its upvalues travel with it.
	if _, ok := c.scope.resolveLocal(variable.Name.Lexeme); ok {
		return c.compileCall(n, func(base int) { c.chunk.emit(OP_MOVE, base, c.compileExpr(variable)) })
	}
	if _, ok := c.scope.resolveUpvalue(variable.Name.Lexeme); ok {
		return c.compileCall(n, func(base int) { c.chunk.emit(OP_MOVE, base, c.compileExpr(variable)) })
	}

	idx, ok := c.funcIndex[variable.Name.Lexeme]
	if !ok {
		c.errorf(n.Span, diagnostics.UndefinedVariable, "call to undefined function '%s'", variable.Name.Lexeme)
		return c.scope.allocTemp()
	}
	return c.compileCall(n, func(base int) {
		c.chunk.emit(OP_LOAD_CONST, base, c.chunk.addConstant(value.I32(int32(idx))))
	})
}

// compileCall allocates a fresh temp for the callee, fills it via
// loadCallee, then lays out the call arguments in the contiguous
// registers immediately following it before emitting OP_CALL -
// generalizing both the direct function-table-index call and the
// indirect call-through-a-closure-value path to the same register
// layout the vm's OP_CALL handler expects.
func (c *Compiler) compileCall(n *ast.Call, loadCallee func(base int)) int {
	mark := c.scope.nextTemp
	base := c.scope.allocTemp()
	loadCallee(base)
	// loadCallee may have used scratch temps above base to get its value
	// there (e.g. OP_GET_UPVALUE's destination); reclaim them so the
	// argument registers start immediately after base with no gap.
	c.scope.freeTemp(base + 1)
	for _, arg := range n.Arguments {
		argReg := c.scope.allocTemp()
		val := c.compileExpr(arg)
		c.chunk.emit(OP_MOVE, argReg, val)
		c.scope.freeTemp(argReg + 1) // keep argument registers contiguous
	}
	// OP_CALL overwrites base in place with the return value; only the
	// argument registers above it are scratch that can be reclaimed.
	c.chunk.emit(OP_CALL, base, base, len(n.Arguments))
	c.scope.freeTemp(mark + 1)
	return base
}

func (c *Compiler) compileBuiltinCall(builtinID int, args []ast.Expression) int {
	mark := c.scope.nextTemp
	start := -1
	for _, arg := range args {
		reg := c.scope.allocTemp()
		if start == -1 {
			start = reg
		}
		val := c.compileExpr(arg)
		c.chunk.emit(OP_MOVE, reg, val)
		c.scope.freeTemp(reg + 1) // keep element registers contiguous
	}
	c.scope.freeTemp(mark)
	dst := c.scope.allocTemp()
	if start == -1 {
		start = dst
	}
	c.chunk.emit(OP_BUILTIN, dst, builtinID, start, len(args))
	return dst
}

func (c *Compiler) VisitFieldAccess(n *ast.FieldAccess) any {
	obj := c.compileExpr(n.Target)
	dst := c.scope.allocTemp()
	targetType := c.typeOf(n.Target)
	fieldIdx := c.fieldIndex[targetType][n.Field.Lexeme]
	c.chunk.emit(OP_FIELD_GET, dst, obj, fieldIdx)
	return dst
}

func (c *Compiler) VisitIndex(n *ast.Index) any {
	arr := c.compileExpr(n.Target)
	idx := c.compileExpr(n.Index)
	dst := c.scope.allocTemp()
	c.chunk.emit(OP_INDEX_GET, dst, arr, idx)
	return dst
}

func (c *Compiler) VisitCast(n *ast.Cast) any {
	src := c.compileExpr(n.Value)
	dst := c.scope.allocTemp()
	c.chunk.emit(OP_CAST, dst, src, int(kindOf(n.TypeName)))
	return dst
}

func (c *Compiler) VisitTernary(n *ast.Ternary) any {
	cond := c.compileExpr(n.Condition)
	dst := c.scope.allocTemp()
	elseJump := c.emitCondJump(OP_JUMP_IF_FALSE, cond)
	thenVal := c.compileExpr(n.Then)
	c.chunk.emit(OP_MOVE, dst, thenVal)
	endJump := c.emitJump(OP_JUMP)
	c.patchJump(elseJump)
	elseVal := c.compileExpr(n.Else)
	c.chunk.emit(OP_MOVE, dst, elseVal)
	c.patchJump(endJump)
	return dst
}

func (c *Compiler) VisitArrayLiteral(n *ast.ArrayLiteral) any {
	mark := c.scope.nextTemp
	start := -1
	for _, el := range n.Elements {
		reg := c.scope.allocTemp()
		if start == -1 {
			start = reg
		}
		val := c.compileExpr(el)
		c.chunk.emit(OP_MOVE, reg, val)
		c.scope.freeTemp(reg + 1) // keep element registers contiguous
	}
	c.scope.freeTemp(mark)
	dst := c.scope.allocTemp()
	if start == -1 {
		start = dst
	}
	c.chunk.emit(OP_NEW_ARRAY, dst, start, len(n.Elements))
	return dst
}

func (c *Compiler) VisitStructLiteral(n *ast.StructLiteral) any {
	idx := c.structIndex[n.TypeName]
	layout := c.fieldIndex[n.TypeName]
	ordered := make([]ast.Expression, len(layout))
	for i, fieldName := range n.Fields {
		if pos, ok := layout[fieldName]; ok {
			ordered[pos] = n.Values[i]
		}
	}

	mark := c.scope.nextTemp
	start := -1
	for _, val := range ordered {
		reg := c.scope.allocTemp()
		if start == -1 {
			start = reg
		}
		v := c.compileExpr(val)
		c.chunk.emit(OP_MOVE, reg, v)
		c.scope.freeTemp(reg + 1) // keep field registers contiguous
	}
	c.scope.freeTemp(mark)
	dst := c.scope.allocTemp()
	if start == -1 {
		start = dst
	}
	c.chunk.emit(OP_NEW_STRUCT, dst, idx, start, len(ordered))
	return dst
}

// --- jump helpers ---

func (c *Compiler) emitJump(op Opcode) int {
	pos := c.chunk.emit(op, 0)
	return pos + 1
}

func (c *Compiler) emitCondJump(op Opcode, reg int) int {
	pos := c.chunk.emit(op, reg, 0)
	return pos + 2
}

func (c *Compiler) patchJump(operandPos int) {
	c.patchJumpTo(operandPos, len(c.chunk.Instructions))
}

func (c *Compiler) patchJumpTo(operandPos, target int) {
	binary.BigEndian.PutUint16(c.chunk.Instructions[operandPos:], uint16(target))
}
