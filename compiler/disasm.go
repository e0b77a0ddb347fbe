// disasm.go renders a compiled Program back to readable text: one line
// per instruction, mnemonic plus decoded operands, generalizing the
// teacher's DiassembleBytecode to the register-based instruction set
// code.go now defines. Used by the "emit" subcommand for bytecode
// inspection and by any future debug tooling that wants a human-readable
// view of what the compiler produced.
package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders every chunk in program (main, then each function in
// declaration order) as readable text.
func Disassemble(program *Program) string {
	var b strings.Builder
	if program.Main != nil {
		disassembleChunk(&b, program.Main)
	}
	for _, fn := range program.Functions {
		b.WriteByte('\n')
		disassembleChunk(&b, fn.Chunk)
	}
	return b.String()
}

func disassembleChunk(b *strings.Builder, chunk *Chunk) {
	fmt.Fprintf(b, "== %s (%d registers) ==\n", chunk.Name, chunk.NumRegisters)
	code := chunk.Instructions
	for pos := 0; pos < len(code); {
		op := Opcode(code[pos])
		def, err := Get(op)
		if err != nil {
			fmt.Fprintf(b, "%04d ???? (unknown opcode %d)\n", pos, op)
			pos++
			continue
		}
		operands, read := readOperands(def, code, pos+1)
		fmt.Fprintf(b, "%04d %-18s%s\n", pos, def.Name, formatOperands(chunk, op, operands))
		pos += 1 + read
		if op == OP_CLOSURE && len(operands) >= 3 {
			pos += operands[2] * 2
		}
	}
}

func readOperands(def *OpCodeDefinition, code Instructions, offset int) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	read := 0
	for i, width := range def.OperandWidths {
		switch width {
		case 1:
			operands[i] = int(code[offset+read])
		case 2:
			operands[i] = int(ReadUint16(code, offset+read))
		}
		read += width
	}
	return operands, read
}

func formatOperands(chunk *Chunk, op Opcode, operands []int) string {
	parts := make([]string, len(operands))
	for i, v := range operands {
		parts[i] = fmt.Sprintf("%d", v)
	}
	joined := strings.Join(parts, " ")
	if op == OP_LOAD_CONST && len(operands) == 2 {
		idx := operands[1]
		if idx >= 0 && idx < len(chunk.ConstantsPool) {
			joined = fmt.Sprintf("%s ; %s", joined, chunk.ConstantsPool[idx].String())
		}
	}
	return joined
}
