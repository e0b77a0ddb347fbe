package vm

import (
	"orus/compiler"
	"orus/diagnostics"
	"orus/value"
)

// buildClosure instantiates OP_CLOSURE's function prototype into a runtime
// value.ClosureObject, resolving each upvalue descriptor against either the
// current frame's registers (IsLocal) or the current closure's own upvalue
// list (chained capture). ByRef comes from the prototype rather than the
// bytecode: the trailing descriptor bytes only need isLocal/index because
// the compiler already recorded mutability in compiler.UpvalueDesc.
func (vm *VM) buildClosure(f *Frame, operands []int, ins compiler.Instructions, nextPC int) (value.Value, int) {
	funcIdx := operands[1]
	count := operands[2]
	proto := vm.program.Functions[funcIdx]

	upvalues := make([]value.UpvalueSlot, count)
	pc := nextPC
	for i := 0; i < count; i++ {
		isLocal := ins[pc] != 0
		index := int(ins[pc+1])
		pc += 2

		desc := proto.Upvalues[i]
		switch {
		case isLocal && desc.ByRef:
			upvalues[i] = value.UpvalueSlot{ByRef: true, Cell: &f.regs[index-compiler.LocalBase]}
		case isLocal:
			upvalues[i] = value.UpvalueSlot{Value: vm.getReg(f, index)}
		default:
			upvalues[i] = f.closure.Upvalues[index]
		}
	}

	fnObj := value.NewFunction(proto.Name, funcIdx, proto.Arity, count)
	clObj := vm.Heap.Alloc(value.NewClosure(fnObj.Fn, upvalues))
	return value.FromObject(clObj), pc
}

// call dispatches OP_CALL's callee value: a bare i32 function-table index
// for a direct top-level call (no captured state), or an ObjClosure for a
// call through a register/upvalue holding a closure value.
func (vm *VM) call(f *Frame, dstReg, calleeStart, argCount int) (value.Value, error) {
	callee := vm.getReg(f, calleeStart)

	var funcIdx int
	var closure *value.ClosureObject
	switch {
	case callee.Kind() == value.KindI32:
		funcIdx = int(callee.AsI32())
	case callee.Kind() == value.KindObj && callee.AsObject() != nil && callee.AsObject().Kind == value.ObjClosure:
		closure = callee.AsObject().Cl
		funcIdx = closure.Function.ChunkIndex
	default:
		return value.Nil, newRuntimeError(diagnostics.FunctionCallError, "value is not callable")
	}

	proto := vm.program.Functions[funcIdx]
	if argCount != proto.Arity {
		return value.Nil, newRuntimeError(diagnostics.FunctionCallError, "'%s' expects %d arguments, got %d", proto.Name, proto.Arity, argCount)
	}

	calleeFrame := newFrame(proto.Chunk, closure, f, dstReg)
	for i := 0; i < argCount; i++ {
		calleeFrame.setLocal(compiler.LocalBase+i, vm.getReg(f, calleeStart+1+i))
	}
	return vm.execute(calleeFrame)
}
