package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orus/compiler"
	"orus/optimizer"
	"orus/value"
)

func emit(chunk *compiler.Chunk, op compiler.Opcode, operands ...int) {
	chunk.Instructions = append(chunk.Instructions, compiler.MakeInstruction(op, operands...)...)
}

func TestOptimizeBytecodeRemovesSelfMove(t *testing.T) {
	chunk := &compiler.Chunk{Name: "test"}
	dst := compiler.LocalBase
	emit(chunk, compiler.OP_LOAD_CONST, dst, 0)
	chunk.ConstantsPool = append(chunk.ConstantsPool, value.I32(7))
	emit(chunk, compiler.OP_MOVE, dst, dst)
	emit(chunk, compiler.OP_PRINT, dst)
	emit(chunk, compiler.OP_HALT)

	before := len(chunk.Instructions)
	program := &compiler.Program{Main: chunk}
	ctx := &optimizer.Context{}
	optimizer.OptimizeBytecode(program, optimizer.Options{Peephole: true}, ctx, nil)

	assert.Less(t, len(chunk.Instructions), before)
	assert.Equal(t, 1, ctx.PeepholeRemoved)
}

func TestOptimizeBytecodeRemovesJumpToNextInstruction(t *testing.T) {
	chunk := &compiler.Chunk{Name: "test"}
	cond := compiler.LocalBase
	dst := compiler.LocalBase + 1
	emit(chunk, compiler.OP_LOAD_FALSE, cond)
	nextPos := len(chunk.Instructions) + len(compiler.MakeInstruction(compiler.OP_JUMP_IF_FALSE, cond, 0))
	emit(chunk, compiler.OP_JUMP_IF_FALSE, cond, nextPos)
	emit(chunk, compiler.OP_LOAD_CONST, dst, 0)
	chunk.ConstantsPool = append(chunk.ConstantsPool, value.I32(1))
	emit(chunk, compiler.OP_PRINT, dst)
	emit(chunk, compiler.OP_HALT)

	program := &compiler.Program{Main: chunk}
	ctx := &optimizer.Context{}
	optimizer.OptimizeBytecode(program, optimizer.Options{Peephole: true}, ctx, nil)

	require.Equal(t, 1, ctx.PeepholeRemoved)
}

func TestOptimizeBytecodeCoalescesScratchIntoDestination(t *testing.T) {
	chunk := &compiler.Chunk{Name: "test"}
	a, b := compiler.LocalBase, compiler.LocalBase+1
	scratch := compiler.TempBase
	final := compiler.LocalBase + 2

	emit(chunk, compiler.OP_LOAD_CONST, a, 0)
	emit(chunk, compiler.OP_LOAD_CONST, b, 1)
	chunk.ConstantsPool = append(chunk.ConstantsPool, value.I32(2), value.I32(3))
	emit(chunk, compiler.OP_ADD_I32, scratch, a, b)
	emit(chunk, compiler.OP_MOVE, final, scratch)
	emit(chunk, compiler.OP_PRINT, final)
	emit(chunk, compiler.OP_HALT)

	program := &compiler.Program{Main: chunk}
	ctx := &optimizer.Context{}
	optimizer.OptimizeBytecode(program, optimizer.Options{Coalesce: true}, ctx, nil)

	assert.Equal(t, 1, ctx.Coalesced)
}
