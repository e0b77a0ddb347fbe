package compiler

import "orus/value"

// Chunk is one compiled unit of register bytecode: the program's top-level
// body, or a single function's body. NumRegisters records the high-water
// mark of temporary/local registers this chunk uses within its own
// R64-239 window, for the disassembler's header; the vm gives every call
// frame the full R64-239 window regardless.
type Chunk struct {
	Name          string
	Instructions  Instructions
	ConstantsPool []value.Value
	NumRegisters  int
}

func (c *Chunk) addConstant(v value.Value) int {
	c.ConstantsPool = append(c.ConstantsPool, v)
	return len(c.ConstantsPool) - 1
}

func (c *Chunk) emit(op Opcode, operands ...int) int {
	pos := len(c.Instructions)
	c.Instructions = append(c.Instructions, MakeInstruction(op, operands...)...)
	return pos
}

// UpvalueDesc records where a closure's Nth upvalue comes from: either a
// register in the immediately enclosing function's frame (IsLocal) or
// that enclosing function's own upvalue list, chained outward.
type UpvalueDesc struct {
	IsLocal bool
	Index   int
	ByRef   bool
}

// FunctionProto is the compiled, not-yet-instantiated form of a function
// declaration: its code plus enough metadata for the vm to build a
// value.FunctionObject and, if it has upvalues, a value.ClosureObject.
type FunctionProto struct {
	Name      string
	Arity     int
	Chunk     *Chunk
	Upvalues  []UpvalueDesc
}

// StructProto records a struct declaration's field layout so the vm can
// validate/construct value.StructObject instances by field index.
type StructProto struct {
	Name   string
	Fields []string
}

// Program is the finished output of compiling a whole source file: the
// top-level chunk (module body) plus every function and struct the module
// declares, addressed by table index the way the teacher's bytecode
// addressed stack slots.
type Program struct {
	Main        *Chunk
	Functions   []*FunctionProto
	Structs     []*StructProto
	GlobalCount int
}

func (p *Program) FunctionIndex(name string) (int, bool) {
	for i, f := range p.Functions {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
