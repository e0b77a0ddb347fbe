package vm

import (
	"orus/compiler"
	"orus/value"
)

// Frame is one call's register window: R64-191 locals and R192-239
// temporaries, sized to cover both classes in a single contiguous slice
// indexed relative to compiler.LocalBase so register ids the compiler
// emitted resolve unchanged regardless of call depth.
type Frame struct {
	chunk     *compiler.Chunk
	closure   *value.ClosureObject
	regs      []value.Value
	pc        int
	returnReg int
	caller    *Frame
}

func newFrame(chunk *compiler.Chunk, closure *value.ClosureObject, caller *Frame, returnReg int) *Frame {
	return &Frame{
		chunk:     chunk,
		closure:   closure,
		regs:      make([]value.Value, compiler.TempLimit-compiler.LocalBase),
		returnReg: returnReg,
		caller:    caller,
	}
}

func (f *Frame) local(reg int) value.Value   { return f.regs[reg-compiler.LocalBase] }
func (f *Frame) setLocal(reg int, v value.Value) { f.regs[reg-compiler.LocalBase] = v }
