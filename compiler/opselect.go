package compiler

import (
	"orus/token"
	"orus/value"
)

// arithOpcode picks the type-specialized arithmetic opcode for a concrete
// numeric type, falling back to the generic tagged-value op for anything
// the checker left unresolved (struct/array operands never reach here;
// the checker rejects arithmetic on them before codegen runs).
func arithOpcode(kind, typ string) Opcode {
	switch typ {
	case "i32":
		return map[string]Opcode{"add": OP_ADD_I32, "sub": OP_SUB_I32, "mul": OP_MUL_I32, "div": OP_DIV_I32, "mod": OP_MOD_I32}[kind]
	case "i64":
		return map[string]Opcode{"add": OP_ADD_I64, "sub": OP_SUB_I64, "mul": OP_MUL_I64, "div": OP_DIV_I64, "mod": OP_MOD_I64}[kind]
	case "u32":
		return map[string]Opcode{"add": OP_ADD_U32, "sub": OP_SUB_U32, "mul": OP_MUL_U32, "div": OP_DIV_U32, "mod": OP_MOD_U32}[kind]
	case "u64":
		return map[string]Opcode{"add": OP_ADD_U64, "sub": OP_SUB_U64, "mul": OP_MUL_U64, "div": OP_DIV_U64, "mod": OP_MOD_U64}[kind]
	case "f64":
		return map[string]Opcode{"add": OP_ADD_F64, "sub": OP_SUB_F64, "mul": OP_MUL_F64, "div": OP_DIV_F64}[kind]
	default:
		return map[string]Opcode{"add": OP_ADD, "sub": OP_SUB, "mul": OP_MUL, "div": OP_DIV, "mod": OP_MOD}[kind]
	}
}

func cmpOpcode(kind, typ string) Opcode {
	switch typ {
	case "i32":
		return map[string]Opcode{"lt": OP_LT_I32, "le": OP_LE_I32, "gt": OP_GT_I32, "ge": OP_GE_I32}[kind]
	case "i64":
		return map[string]Opcode{"lt": OP_LT_I64, "le": OP_LE_I64, "gt": OP_GT_I64, "ge": OP_GE_I64}[kind]
	case "u32":
		return map[string]Opcode{"lt": OP_LT_U32, "le": OP_LE_U32, "gt": OP_GT_U32, "ge": OP_GE_U32}[kind]
	case "u64":
		return map[string]Opcode{"lt": OP_LT_U64, "le": OP_LE_U64, "gt": OP_GT_U64, "ge": OP_GE_U64}[kind]
	case "f64":
		return map[string]Opcode{"lt": OP_LT_F64, "le": OP_LE_F64, "gt": OP_GT_F64, "ge": OP_GE_F64}[kind]
	default:
		return map[string]Opcode{"lt": OP_LT, "le": OP_LE, "gt": OP_GT, "ge": OP_GE}[kind]
	}
}

// cmpOpcodesFor returns the (exclusive, inclusive) "still iterating" test
// for a for-range loop over typ: counter < end, or counter <= end.
func cmpOpcodesFor(typ string) (Opcode, Opcode) {
	return cmpOpcode("lt", typ), cmpOpcode("le", typ)
}

func addOpcodeFor(typ string) Opcode {
	return arithOpcode("add", typ)
}

// compoundArith maps a compound-assignment token ("+=" etc.) to the typed
// arithmetic opcode that implements it.
func compoundArith(op token.TokenType, typ string) Opcode {
	switch op {
	case token.PLUS_EQUAL:
		return arithOpcode("add", typ)
	case token.MINUS_EQUAL:
		return arithOpcode("sub", typ)
	case token.STAR_EQUAL:
		return arithOpcode("mul", typ)
	case token.SLASH_EQUAL:
		return arithOpcode("div", typ)
	default:
		return arithOpcode("add", typ)
	}
}

func kindOf(typeName string) value.Kind {
	switch typeName {
	case "i32":
		return value.KindI32
	case "i64":
		return value.KindI64
	case "u32":
		return value.KindU32
	case "u64":
		return value.KindU64
	case "f64":
		return value.KindF64
	case "bool":
		return value.KindBool
	default:
		return value.KindObj
	}
}
