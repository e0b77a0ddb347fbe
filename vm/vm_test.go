package vm_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orus/compiler"
	"orus/value"
	"orus/vm"
)

func newChunk() *compiler.Chunk {
	return &compiler.Chunk{Name: "test"}
}

func constI32(chunk *compiler.Chunk, v int32) int {
	chunk.ConstantsPool = append(chunk.ConstantsPool, value.I32(v))
	return len(chunk.ConstantsPool) - 1
}

func emit(chunk *compiler.Chunk, op compiler.Opcode, operands ...int) {
	chunk.Instructions = append(chunk.Instructions, compiler.MakeInstruction(op, operands...)...)
}

func runAndCapture(t *testing.T, program *compiler.Program) string {
	t.Helper()
	machine := vm.New()
	var out bytes.Buffer
	machine.Out = &out
	require.NoError(t, machine.Run(program))
	return out.String()
}

func TestTypedArithmeticAndPrint(t *testing.T) {
	chunk := newChunk()
	r0, r1, r2 := compiler.LocalBase, compiler.LocalBase+1, compiler.LocalBase+2

	emit(chunk, compiler.OP_LOAD_CONST, r0, constI32(chunk, 2))
	emit(chunk, compiler.OP_LOAD_CONST, r1, constI32(chunk, 3))
	emit(chunk, compiler.OP_ADD_I32, r2, r0, r1)
	emit(chunk, compiler.OP_PRINT, r2)
	emit(chunk, compiler.OP_HALT)

	out := runAndCapture(t, &compiler.Program{Main: chunk})
	assert.Equal(t, "5\n", out)
}

func TestGlobalRegisterPersistsAcrossInstructions(t *testing.T) {
	chunk := newChunk()
	global := compiler.GlobalBase

	emit(chunk, compiler.OP_LOAD_CONST, global, constI32(chunk, 42))
	emit(chunk, compiler.OP_PRINT, global)
	emit(chunk, compiler.OP_HALT)

	out := runAndCapture(t, &compiler.Program{Main: chunk, GlobalCount: 1})
	assert.Equal(t, "42\n", out)
}

func TestJumpIfFalseSkipsBranch(t *testing.T) {
	chunk := newChunk()
	cond := compiler.LocalBase
	dst := compiler.LocalBase + 1

	emit(chunk, compiler.OP_LOAD_FALSE, cond)
	jumpInstrPos := len(chunk.Instructions)
	emit(chunk, compiler.OP_JUMP_IF_FALSE, cond, 0)
	emit(chunk, compiler.OP_LOAD_CONST, dst, constI32(chunk, 1)) // skipped when cond is false
	target := len(chunk.Instructions)
	binary.BigEndian.PutUint16(chunk.Instructions[jumpInstrPos+2:], uint16(target))
	emit(chunk, compiler.OP_LOAD_CONST, dst, constI32(chunk, 9))
	emit(chunk, compiler.OP_PRINT, dst)
	emit(chunk, compiler.OP_HALT)

	out := runAndCapture(t, &compiler.Program{Main: chunk})
	assert.Equal(t, "9\n", out)
}

func TestBuiltinLenOverArray(t *testing.T) {
	chunk := newChunk()
	elem := compiler.TempBase
	arr := compiler.TempBase + 1
	length := compiler.TempBase + 2

	emit(chunk, compiler.OP_LOAD_CONST, elem, constI32(chunk, 1))
	emit(chunk, compiler.OP_NEW_ARRAY, arr, elem, 1)
	emit(chunk, compiler.OP_BUILTIN, length, compiler.BuiltinLen, arr, 1)
	emit(chunk, compiler.OP_PRINT, length)
	emit(chunk, compiler.OP_HALT)

	out := runAndCapture(t, &compiler.Program{Main: chunk})
	assert.Equal(t, "1\n", out)
}

func TestCallFunctionReturnsValue(t *testing.T) {
	fnChunk := newChunk()
	arg := compiler.LocalBase
	result := compiler.LocalBase + 1
	emit(fnChunk, compiler.OP_LOAD_CONST, result, constI32(fnChunk, 10))
	emit(fnChunk, compiler.OP_ADD_I32, result, arg, result)
	emit(fnChunk, compiler.OP_RETURN, result)

	mainChunk := newChunk()
	base := compiler.TempBase
	emit(mainChunk, compiler.OP_LOAD_CONST, base, constI32(mainChunk, 0))
	emit(mainChunk, compiler.OP_LOAD_CONST, base+1, constI32(mainChunk, 5))
	emit(mainChunk, compiler.OP_CALL, base, base, 1)
	emit(mainChunk, compiler.OP_PRINT, base)
	emit(mainChunk, compiler.OP_HALT)

	program := &compiler.Program{
		Main:      mainChunk,
		Functions: []*compiler.FunctionProto{{Name: "addTen", Arity: 1, Chunk: fnChunk}},
	}
	out := runAndCapture(t, program)
	assert.Equal(t, "15\n", out)
}
