// bytecode.go decodes a Chunk's flat Instructions byte stream into a
// position-addressable instruction list and re-encodes an edited list back
// into Instructions, fixing up jump targets along the way. peephole.go and
// coalesce.go both build on this rather than patching bytes in place,
// since dropping or rewriting an instruction shifts every later absolute
// jump target - exactly the bookkeeping problem the teacher's own
// disassembler (nilan/compiler/code.go's instruction-walking loop) already
// solves for reading; this is the same walk, generalized to also rewrite.
package optimizer

import "orus/compiler"

// decodedInstr is one instruction: its byte position, opcode, decoded
// fixed-width operands and total encoded length (including any trailing
// OP_CLOSURE upvalue descriptor bytes, held verbatim in closureTail).
type decodedInstr struct {
	pos         int
	op          compiler.Opcode
	operands    []int
	length      int
	closureTail []byte
}

// decodeChunk walks chunk.Instructions start to end. It returns false if it
// encounters an opcode compiler.Get does not recognise, signalling the
// caller to leave that chunk's bytecode untouched.
func decodeChunk(code compiler.Instructions) ([]decodedInstr, bool) {
	var out []decodedInstr
	offset := 0
	for offset < len(code) {
		op := compiler.Opcode(code[offset])
		def, err := compiler.Get(op)
		if err != nil {
			return nil, false
		}
		pos := offset
		cursor := offset + 1
		operands := make([]int, len(def.OperandWidths))
		for i, width := range def.OperandWidths {
			switch width {
			case 1:
				operands[i] = int(code[cursor])
			case 2:
				operands[i] = int(compiler.ReadUint16(code, cursor))
			}
			cursor += width
		}
		var tail []byte
		if op == compiler.OP_CLOSURE {
			upvalCount := operands[2]
			tailLen := upvalCount * 2
			if cursor+tailLen > len(code) {
				return nil, false
			}
			tail = append([]byte(nil), code[cursor:cursor+tailLen]...)
			cursor += tailLen
		}
		out = append(out, decodedInstr{pos: pos, op: op, operands: operands, length: cursor - offset, closureTail: tail})
		offset = cursor
	}
	return out, true
}

// isJumpOpcode reports whether op's last operand is an absolute
// instruction-position target that rebuildChunk must remap.
func isJumpOpcode(op compiler.Opcode) bool {
	switch op {
	case compiler.OP_JUMP, compiler.OP_JUMP_IF_FALSE, compiler.OP_JUMP_IF_TRUE:
		return true
	}
	return false
}

func jumpTargetIndex(op compiler.Opcode) int {
	switch op {
	case compiler.OP_JUMP:
		return 0
	default: // OP_JUMP_IF_FALSE, OP_JUMP_IF_TRUE
		return 1
	}
}

// rebuildChunk re-encodes instrs into chunk.Instructions, skipping any
// instruction whose original position is in drop, and remapping every jump
// target from its old byte position to wherever that position's
// instruction (or, if dropped, the next surviving instruction) landed.
func rebuildChunk(chunk *compiler.Chunk, instrs []decodedInstr, drop map[int]bool) {
	survivors := make([]decodedInstr, 0, len(instrs))
	for _, ins := range instrs {
		if !drop[ins.pos] {
			survivors = append(survivors, ins)
		}
	}

	// Final byte position each surviving instruction lands at.
	survivorAt := make(map[int]int, len(survivors))
	newEnd := 0
	for _, ins := range survivors {
		survivorAt[ins.pos] = newEnd
		newEnd += ins.length
	}

	// old position -> new position, walking backwards so a dropped
	// instruction maps to whatever position the next surviving
	// instruction landed at (or newEnd, if nothing survives after it).
	// A jump may also legitimately target one-past-the-end of the
	// original code (a loop exit falling off the chunk); seed that
	// position too so such a jump still resolves.
	remap := make(map[int]int, len(instrs)+1)
	if len(instrs) > 0 {
		last := instrs[len(instrs)-1]
		remap[last.pos+last.length] = newEnd
	}
	next := newEnd
	for i := len(instrs) - 1; i >= 0; i-- {
		ins := instrs[i]
		if p, ok := survivorAt[ins.pos]; ok {
			next = p
		}
		remap[ins.pos] = next
	}

	code := make(compiler.Instructions, 0, newEnd)
	for _, ins := range survivors {
		operands := ins.operands
		if isJumpOpcode(ins.op) {
			idx := jumpTargetIndex(ins.op)
			rewritten := append([]int(nil), operands...)
			rewritten[idx] = remap[operands[idx]]
			operands = rewritten
		}
		code = append(code, compiler.MakeInstruction(ins.op, operands...)...)
		if ins.op == compiler.OP_CLOSURE {
			code = append(code, ins.closureTail...)
		}
	}
	chunk.Instructions = code
}
