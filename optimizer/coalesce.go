// coalesce.go folds a "compute into a scratch temp, then move it into the
// final destination" pair into one instruction that writes the final
// destination directly, eliminating the scratch register entirely. This is
// exactly the pattern compiler.go's compileExpr leaves behind: a
// subexpression is always compiled into a fresh temp first, and only the
// statement that consumes it decides the real destination with a trailing
// OP_MOVE.
//
// Restricted to producer opcodes proven (vm/arith.go) to read every source
// register before writing their single destination register, so
// redirecting that destination to overlap a source is always safe - see
// producesRegisterDst. Restricted to temp registers (compiler.TempBase..
// compiler.TempLimit), and only applied when the temp is never referenced
// again anywhere later in the chunk, including implicitly through a
// contiguous-register-range opcode (OP_CALL, OP_NEW_ARRAY, OP_NEW_STRUCT,
// OP_BUILTIN) - see registerUsedAfter/rangeUsesRegister.
//
// Disabled for a whole chunk containing any OP_CLOSURE: its trailing
// upvalue descriptors reference local register numbers directly, outside
// the normal operand-decode path, so this pass has no way to see whether
// renaming a register would break a capture.
package optimizer

import "orus/compiler"

func coalesceChunk(chunk *compiler.Chunk) (int, bool) {
	instrs, ok := decodeChunk(chunk.Instructions)
	if !ok {
		return 0, false
	}
	for _, ins := range instrs {
		if ins.op == compiler.OP_CLOSURE {
			return 0, true
		}
	}

	drop := map[int]bool{}
	coalesced := 0
	for i := 0; i+1 < len(instrs); i++ {
		producer := instrs[i]
		mover := instrs[i+1]
		if drop[producer.pos] {
			continue
		}
		dstIdx, ok := producesRegisterDst(producer.op)
		if !ok {
			continue
		}
		if mover.op != compiler.OP_MOVE {
			continue
		}
		temp := producer.operands[dstIdx]
		if mover.operands[1] != temp {
			continue
		}
		if !isTempRegister(temp) {
			continue
		}
		final := mover.operands[0]
		if registerUsedAfter(instrs, i+2, temp) {
			continue
		}
		producer.operands[dstIdx] = final
		instrs[i] = producer
		drop[mover.pos] = true
		coalesced++
	}
	if coalesced == 0 {
		return 0, true
	}
	rebuildChunk(chunk, instrs, drop)
	return coalesced, true
}

func isTempRegister(reg int) bool {
	return reg >= compiler.TempBase && reg < compiler.TempLimit
}

// producesRegisterDst reports whether op writes exactly one register
// destination (at the returned operand index) after reading every source
// register it needs - the "atomic read-then-write" shape that makes
// redirecting its destination always safe.
func producesRegisterDst(op compiler.Opcode) (int, bool) {
	switch op {
	case compiler.OP_LOAD_CONST, compiler.OP_LOAD_NIL, compiler.OP_LOAD_TRUE, compiler.OP_LOAD_FALSE:
		return 0, true
	case compiler.OP_ADD_I32, compiler.OP_SUB_I32, compiler.OP_MUL_I32, compiler.OP_DIV_I32, compiler.OP_MOD_I32,
		compiler.OP_ADD_I64, compiler.OP_SUB_I64, compiler.OP_MUL_I64, compiler.OP_DIV_I64, compiler.OP_MOD_I64,
		compiler.OP_ADD_U32, compiler.OP_SUB_U32, compiler.OP_MUL_U32, compiler.OP_DIV_U32, compiler.OP_MOD_U32,
		compiler.OP_ADD_U64, compiler.OP_SUB_U64, compiler.OP_MUL_U64, compiler.OP_DIV_U64, compiler.OP_MOD_U64,
		compiler.OP_ADD_F64, compiler.OP_SUB_F64, compiler.OP_MUL_F64, compiler.OP_DIV_F64, compiler.OP_CONCAT_STR,
		compiler.OP_ADD, compiler.OP_SUB, compiler.OP_MUL, compiler.OP_DIV, compiler.OP_MOD:
		return 0, true
	case compiler.OP_LT_I32, compiler.OP_LE_I32, compiler.OP_GT_I32, compiler.OP_GE_I32,
		compiler.OP_LT_I64, compiler.OP_LE_I64, compiler.OP_GT_I64, compiler.OP_GE_I64,
		compiler.OP_LT_U32, compiler.OP_LE_U32, compiler.OP_GT_U32, compiler.OP_GE_U32,
		compiler.OP_LT_U64, compiler.OP_LE_U64, compiler.OP_GT_U64, compiler.OP_GE_U64,
		compiler.OP_LT_F64, compiler.OP_LE_F64, compiler.OP_GT_F64, compiler.OP_GE_F64,
		compiler.OP_LT, compiler.OP_LE, compiler.OP_GT, compiler.OP_GE, compiler.OP_EQ, compiler.OP_NEQ:
		return 0, true
	case compiler.OP_NEG_I32, compiler.OP_NEG_I64, compiler.OP_NEG_U32, compiler.OP_NEG_U64, compiler.OP_NEG_F64,
		compiler.OP_NEG, compiler.OP_NOT:
		return 0, true
	case compiler.OP_CAST:
		return 0, true
	case compiler.OP_INDEX_GET, compiler.OP_ARRAY_LEN, compiler.OP_FIELD_GET, compiler.OP_GET_UPVALUE:
		return 0, true
	}
	return 0, false
}

// registerUsedAfter reports whether reg appears, as an explicit operand or
// as part of an implicit contiguous register range, in any instruction at
// or after index start.
func registerUsedAfter(instrs []decodedInstr, start int, reg int) bool {
	for i := start; i < len(instrs); i++ {
		ins := instrs[i]
		for _, operand := range ins.operands {
			if operand == reg {
				return true
			}
		}
		if rangeUsesRegister(ins, reg) {
			return true
		}
	}
	return false
}

// rangeUsesRegister covers the opcodes that reference a run of registers
// through a (start, count) operand pair rather than naming every register
// individually, so a temp sitting inside the range but not literally equal
// to the decoded start operand is still counted as used.
func rangeUsesRegister(ins decodedInstr, reg int) bool {
	switch ins.op {
	case compiler.OP_CALL:
		// operands: dst, calleeStart, argCount - the callee itself
		// occupies calleeStart, arguments follow contiguously after it.
		start := ins.operands[1]
		count := ins.operands[2]
		return reg >= start && reg < start+count+1
	case compiler.OP_NEW_ARRAY:
		// operands: dst, elemStart, count
		start := ins.operands[1]
		count := ins.operands[2]
		return reg >= start && reg < start+count
	case compiler.OP_NEW_STRUCT:
		// operands: dst, structIdx, fieldStart, fieldCount
		start := ins.operands[2]
		count := ins.operands[3]
		return reg >= start && reg < start+count
	case compiler.OP_BUILTIN:
		// operands: dst, builtinId, argStart, argCount
		start := ins.operands[2]
		count := ins.operands[3]
		return reg >= start && reg < start+count
	}
	return false
}
