// Package compiler lowers a type-checked Orus AST into register-based
// bytecode chunks the vm package executes. It generalizes the teacher's
// stack-machine Opcode/OpCodeDefinition/MakeInstruction idiom
// (nilan/compiler/code.go) to a fixed 256-slot register file: every
// operand that used to be an implicit stack position is now an explicit
// one-byte register id, and type-specialized opcode variants sit
// alongside a generic tagged-value fallback for operations the checker
// could not pin to one concrete numeric type.
package compiler

import (
	"encoding/binary"
	"fmt"
)

type Opcode byte

type Instructions []byte

const (
	// Constant loads. dst register, then a 2-byte constants-pool index.
	OP_LOAD_CONST Opcode = iota
	OP_LOAD_NIL
	OP_LOAD_TRUE
	OP_LOAD_FALSE

	OP_MOVE // dst, src

	// Type-specialized arithmetic: dst, lhs, rhs, all register ids.
	OP_ADD_I32
	OP_SUB_I32
	OP_MUL_I32
	OP_DIV_I32
	OP_MOD_I32
	OP_ADD_I64
	OP_SUB_I64
	OP_MUL_I64
	OP_DIV_I64
	OP_MOD_I64
	OP_ADD_U32
	OP_SUB_U32
	OP_MUL_U32
	OP_DIV_U32
	OP_MOD_U32
	OP_ADD_U64
	OP_SUB_U64
	OP_MUL_U64
	OP_DIV_U64
	OP_MOD_U64
	OP_ADD_F64
	OP_SUB_F64
	OP_MUL_F64
	OP_DIV_F64
	OP_CONCAT_STR // dst, lhs, rhs - string '+'

	// Generic tagged-value fallback, used when the checker could not
	// prove both operands share a concrete numeric type.
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD

	// Comparisons, typed and generic. Result is always a bool register.
	OP_LT_I32
	OP_LE_I32
	OP_GT_I32
	OP_GE_I32
	OP_LT_I64
	OP_LE_I64
	OP_GT_I64
	OP_GE_I64
	OP_LT_U32
	OP_LE_U32
	OP_GT_U32
	OP_GE_U32
	OP_LT_U64
	OP_LE_U64
	OP_GT_U64
	OP_GE_U64
	OP_LT_F64
	OP_LE_F64
	OP_GT_F64
	OP_GE_F64
	OP_LT
	OP_LE
	OP_GT
	OP_GE
	OP_EQ
	OP_NEQ

	OP_NEG_I32
	OP_NEG_I64
	OP_NEG_U32
	OP_NEG_U64
	OP_NEG_F64
	OP_NEG
	OP_NOT // dst, src - boolean negation

	OP_CAST // dst, src, target-kind byte (value.Kind)

	OP_JUMP          // 2-byte absolute jump target (byte position in the chunk)
	OP_JUMP_IF_FALSE // cond register, 2-byte absolute jump target
	OP_JUMP_IF_TRUE  // cond register, 2-byte absolute jump target

	OP_NEW_ARRAY  // dst, elemStart register, count (1 byte)
	OP_INDEX_GET  // dst, arr, idx
	OP_INDEX_SET  // arr, idx, val
	OP_ARRAY_LEN  // dst, arr

	OP_NEW_STRUCT // dst, 2-byte Program.Structs index, fieldStart register, fieldCount (1 byte)
	OP_FIELD_GET  // dst, obj, fieldIndex (1 byte)
	OP_FIELD_SET  // obj, fieldIndex (1 byte), val

	// Globals (R0-63) and module slots (R240-255) are addressed by plain
	// register number like any other operand, since the vm's register
	// resolution dispatches on numeric range across all four classes.
	// Upvalues are not part of that flat array - they live in the
	// running closure's own upvalue list - so they need dedicated
	// move-in/move-out opcodes.
	OP_GET_UPVALUE // dst, 1-byte upvalue index
	OP_SET_UPVALUE // 1-byte upvalue index, src

	OP_CLOSURE // dst, 2-byte function-table index, 1-byte upvalue count, then upvalue count * (isLocal byte, index byte)
	OP_CALL    // dst, calleeStart register (callee + args laid out contiguously), argCount (1 byte)
	OP_RETURN  // src register holding the return value
	OP_RETURN_VOID

	OP_PRINT // src

	OP_BUILTIN // dst, 1-byte builtin id, argStart register, argCount (1 byte)

	OP_HALT
)

// OpCodeDefinition names an opcode and the byte-width of each of its fixed
// operands, mirroring the teacher's `OperandWidths` table; OP_CLOSURE's
// trailing upvalue descriptors are variable-length and handled specially
// by the emitter/disassembler rather than through this table.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_LOAD_CONST:   {"OP_LOAD_CONST", []int{1, 2}},
	OP_LOAD_NIL:     {"OP_LOAD_NIL", []int{1}},
	OP_LOAD_TRUE:    {"OP_LOAD_TRUE", []int{1}},
	OP_LOAD_FALSE:   {"OP_LOAD_FALSE", []int{1}},
	OP_MOVE:         {"OP_MOVE", []int{1, 1}},

	OP_ADD_I32: {"OP_ADD_I32", []int{1, 1, 1}}, OP_SUB_I32: {"OP_SUB_I32", []int{1, 1, 1}},
	OP_MUL_I32: {"OP_MUL_I32", []int{1, 1, 1}}, OP_DIV_I32: {"OP_DIV_I32", []int{1, 1, 1}},
	OP_MOD_I32: {"OP_MOD_I32", []int{1, 1, 1}},
	OP_ADD_I64: {"OP_ADD_I64", []int{1, 1, 1}}, OP_SUB_I64: {"OP_SUB_I64", []int{1, 1, 1}},
	OP_MUL_I64: {"OP_MUL_I64", []int{1, 1, 1}}, OP_DIV_I64: {"OP_DIV_I64", []int{1, 1, 1}},
	OP_MOD_I64: {"OP_MOD_I64", []int{1, 1, 1}},
	OP_ADD_U32: {"OP_ADD_U32", []int{1, 1, 1}}, OP_SUB_U32: {"OP_SUB_U32", []int{1, 1, 1}},
	OP_MUL_U32: {"OP_MUL_U32", []int{1, 1, 1}}, OP_DIV_U32: {"OP_DIV_U32", []int{1, 1, 1}},
	OP_MOD_U32: {"OP_MOD_U32", []int{1, 1, 1}},
	OP_ADD_U64: {"OP_ADD_U64", []int{1, 1, 1}}, OP_SUB_U64: {"OP_SUB_U64", []int{1, 1, 1}},
	OP_MUL_U64: {"OP_MUL_U64", []int{1, 1, 1}}, OP_DIV_U64: {"OP_DIV_U64", []int{1, 1, 1}},
	OP_MOD_U64:    {"OP_MOD_U64", []int{1, 1, 1}},
	OP_ADD_F64:    {"OP_ADD_F64", []int{1, 1, 1}}, OP_SUB_F64: {"OP_SUB_F64", []int{1, 1, 1}},
	OP_MUL_F64:    {"OP_MUL_F64", []int{1, 1, 1}}, OP_DIV_F64: {"OP_DIV_F64", []int{1, 1, 1}},
	OP_CONCAT_STR: {"OP_CONCAT_STR", []int{1, 1, 1}},

	OP_ADD: {"OP_ADD", []int{1, 1, 1}}, OP_SUB: {"OP_SUB", []int{1, 1, 1}},
	OP_MUL: {"OP_MUL", []int{1, 1, 1}}, OP_DIV: {"OP_DIV", []int{1, 1, 1}},
	OP_MOD: {"OP_MOD", []int{1, 1, 1}},

	OP_LT_I32: {"OP_LT_I32", []int{1, 1, 1}}, OP_LE_I32: {"OP_LE_I32", []int{1, 1, 1}},
	OP_GT_I32: {"OP_GT_I32", []int{1, 1, 1}}, OP_GE_I32: {"OP_GE_I32", []int{1, 1, 1}},
	OP_LT_I64: {"OP_LT_I64", []int{1, 1, 1}}, OP_LE_I64: {"OP_LE_I64", []int{1, 1, 1}},
	OP_GT_I64: {"OP_GT_I64", []int{1, 1, 1}}, OP_GE_I64: {"OP_GE_I64", []int{1, 1, 1}},
	OP_LT_U32: {"OP_LT_U32", []int{1, 1, 1}}, OP_LE_U32: {"OP_LE_U32", []int{1, 1, 1}},
	OP_GT_U32: {"OP_GT_U32", []int{1, 1, 1}}, OP_GE_U32: {"OP_GE_U32", []int{1, 1, 1}},
	OP_LT_U64: {"OP_LT_U64", []int{1, 1, 1}}, OP_LE_U64: {"OP_LE_U64", []int{1, 1, 1}},
	OP_GT_U64: {"OP_GT_U64", []int{1, 1, 1}}, OP_GE_U64: {"OP_GE_U64", []int{1, 1, 1}},
	OP_LT_F64: {"OP_LT_F64", []int{1, 1, 1}}, OP_LE_F64: {"OP_LE_F64", []int{1, 1, 1}},
	OP_GT_F64: {"OP_GT_F64", []int{1, 1, 1}}, OP_GE_F64: {"OP_GE_F64", []int{1, 1, 1}},
	OP_LT: {"OP_LT", []int{1, 1, 1}}, OP_LE: {"OP_LE", []int{1, 1, 1}},
	OP_GT: {"OP_GT", []int{1, 1, 1}}, OP_GE: {"OP_GE", []int{1, 1, 1}},
	OP_EQ: {"OP_EQ", []int{1, 1, 1}}, OP_NEQ: {"OP_NEQ", []int{1, 1, 1}},

	OP_NEG_I32: {"OP_NEG_I32", []int{1, 1}}, OP_NEG_I64: {"OP_NEG_I64", []int{1, 1}},
	OP_NEG_U32: {"OP_NEG_U32", []int{1, 1}}, OP_NEG_U64: {"OP_NEG_U64", []int{1, 1}},
	OP_NEG_F64: {"OP_NEG_F64", []int{1, 1}}, OP_NEG: {"OP_NEG", []int{1, 1}},
	OP_NOT: {"OP_NOT", []int{1, 1}},

	OP_CAST: {"OP_CAST", []int{1, 1, 1}},

	OP_JUMP:          {"OP_JUMP", []int{2}},
	OP_JUMP_IF_FALSE: {"OP_JUMP_IF_FALSE", []int{1, 2}},
	OP_JUMP_IF_TRUE:  {"OP_JUMP_IF_TRUE", []int{1, 2}},

	OP_NEW_ARRAY: {"OP_NEW_ARRAY", []int{1, 1, 1}},
	OP_INDEX_GET: {"OP_INDEX_GET", []int{1, 1, 1}},
	OP_INDEX_SET: {"OP_INDEX_SET", []int{1, 1, 1}},
	OP_ARRAY_LEN: {"OP_ARRAY_LEN", []int{1, 1}},

	OP_NEW_STRUCT: {"OP_NEW_STRUCT", []int{1, 2, 1, 1}},
	OP_FIELD_GET:  {"OP_FIELD_GET", []int{1, 1, 1}},
	OP_FIELD_SET:  {"OP_FIELD_SET", []int{1, 1, 1}},

	OP_GET_UPVALUE: {"OP_GET_UPVALUE", []int{1, 1}},
	OP_SET_UPVALUE: {"OP_SET_UPVALUE", []int{1, 1}},

	// OP_CLOSURE's operand list covers only the fixed prefix; the
	// upvalue descriptor bytes that follow are appended by the emitter.
	OP_CLOSURE: {"OP_CLOSURE", []int{1, 2, 1}},
	OP_CALL:    {"OP_CALL", []int{1, 1, 1}},
	OP_RETURN:  {"OP_RETURN", []int{1}},
	OP_RETURN_VOID: {"OP_RETURN_VOID", []int{}},

	OP_PRINT: {"OP_PRINT", []int{1}},

	OP_BUILTIN: {"OP_BUILTIN", []int{1, 1, 1, 1}},

	OP_HALT: {"OP_HALT", []int{}},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("compiler: opcode %d undefined", op)
	}
	return def, nil
}

// MakeInstruction encodes an opcode and its fixed-width operands, register
// ids and small counts as single bytes, 2-byte operands (constant indices,
// jump targets) as big-endian uint16 - generalizing the teacher's
// single-width big-endian encoding to mixed 1/2-byte operands.
func MakeInstruction(op Opcode, operands ...int) []byte {
	def, err := Get(op)
	if err != nil {
		return nil
	}
	length := 1
	for _, w := range def.OperandWidths {
		length += w
	}
	instruction := make([]byte, length)
	instruction[0] = byte(op)
	offset := 1
	for i, operand := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 1:
			instruction[offset] = byte(operand)
		case 2:
			binary.BigEndian.PutUint16(instruction[offset:], uint16(operand))
		}
		offset += width
	}
	return instruction
}

func ReadUint16(b Instructions, offset int) uint16 {
	return binary.BigEndian.Uint16(b[offset:])
}
