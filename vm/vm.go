// Package vm executes compiler.Program bytecode on a 256-slot register
// file, generalizing the teacher's nilan/vm fetch-decode-switch Run loop
// from an implicit operand stack to explicit register operands and a
// call-frame stack (nilan/vm/vm.go, nilan/vm/stack.go).
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"orus/compiler"
	"orus/diagnostics"
	"orus/gc"
	"orus/value"
)

// VM is the runtime environment bytecode executes in: a shared register
// window for globals (R0-63) and module slots (R240-255), a heap for
// every object allocation, and one Frame per active call.
type VM struct {
	globals     [compiler.GlobalLimit]value.Value
	moduleSlots [compiler.ModuleLimit - compiler.ModuleBase]value.Value

	Heap *gc.Heap

	Out io.Writer
	In  *bufio.Reader

	program *compiler.Program
}

func New() *VM {
	return &VM{
		Heap: gc.New(),
		Out:  os.Stdout,
		In:   bufio.NewReader(os.Stdin),
	}
}

// Run executes program's main chunk to completion (OP_HALT).
func (vm *VM) Run(program *compiler.Program) error {
	vm.program = program
	frame := newFrame(program.Main, nil, nil, -1)
	_, err := vm.execute(frame)
	return err
}

func (vm *VM) getReg(f *Frame, i int) value.Value {
	switch {
	case i < compiler.GlobalLimit:
		return vm.globals[i]
	case i < compiler.TempLimit:
		return f.local(i)
	default:
		return vm.moduleSlots[i-compiler.ModuleBase]
	}
}

func (vm *VM) setReg(f *Frame, i int, v value.Value) {
	switch {
	case i < compiler.GlobalLimit:
		vm.globals[i] = v
	case i < compiler.TempLimit:
		f.setLocal(i, v)
	default:
		vm.moduleSlots[i-compiler.ModuleBase] = v
	}
}

// execute runs f's chunk until it returns (OP_RETURN/OP_RETURN_VOID) or
// the program halts (OP_HALT, only ever reached by the top-level frame).
func (vm *VM) execute(f *Frame) (value.Value, error) {
	ins := f.chunk.Instructions
	for {
		if f.pc >= len(ins) {
			return value.Nil, nil
		}
		op := compiler.Opcode(ins[f.pc])
		def, err := compiler.Get(op)
		if err != nil {
			return value.Nil, err
		}
		operands, size := decodeOperands(def, ins, f.pc+1)
		nextPC := f.pc + 1 + size

		switch op {
		case compiler.OP_HALT:
			return value.Nil, nil

		case compiler.OP_LOAD_CONST:
			vm.setReg(f, operands[0], f.chunk.ConstantsPool[operands[1]])
		case compiler.OP_LOAD_NIL:
			vm.setReg(f, operands[0], value.Nil)
		case compiler.OP_LOAD_TRUE:
			vm.setReg(f, operands[0], value.Bool(true))
		case compiler.OP_LOAD_FALSE:
			vm.setReg(f, operands[0], value.Bool(false))
		case compiler.OP_MOVE:
			vm.setReg(f, operands[0], vm.getReg(f, operands[1]))

		case compiler.OP_NOT:
			vm.setReg(f, operands[0], value.Bool(!vm.getReg(f, operands[1]).Truthy()))
		case compiler.OP_CAST:
			v, err := vm.cast(vm.getReg(f, operands[1]), value.Kind(operands[2]))
			if err != nil {
				return value.Nil, err
			}
			vm.setReg(f, operands[0], v)

		case compiler.OP_JUMP:
			f.pc = operands[0]
			continue
		case compiler.OP_JUMP_IF_FALSE:
			if !vm.getReg(f, operands[0]).Truthy() {
				f.pc = operands[1]
				continue
			}
		case compiler.OP_JUMP_IF_TRUE:
			if vm.getReg(f, operands[0]).Truthy() {
				f.pc = operands[1]
				continue
			}

		case compiler.OP_NEW_ARRAY:
			count := operands[2]
			elems := make([]value.Value, count)
			for i := 0; i < count; i++ {
				elems[i] = vm.getReg(f, operands[1]+i)
			}
			obj := vm.Heap.Alloc(value.NewArray("", elems))
			vm.setReg(f, operands[0], value.FromObject(obj))
		case compiler.OP_INDEX_GET:
			arr := vm.getReg(f, operands[1]).AsObject()
			idx := int(vm.getReg(f, operands[2]).AsI32())
			if arr == nil || arr.Kind != value.ObjArray || idx < 0 || idx >= len(arr.Arr.Elem) {
				return value.Nil, &RuntimeError{Diagnostic: diagnostics.New(diagnostics.CompilerInvariant, diagnostics.PhaseVM, diagnostics.Span{}, "index %d out of bounds", idx)}
			}
			vm.setReg(f, operands[0], arr.Arr.Elem[idx])
		case compiler.OP_INDEX_SET:
			arr := vm.getReg(f, operands[0]).AsObject()
			idx := int(vm.getReg(f, operands[1]).AsI32())
			if arr == nil || arr.Kind != value.ObjArray || idx < 0 || idx >= len(arr.Arr.Elem) {
				return value.Nil, &RuntimeError{Diagnostic: diagnostics.New(diagnostics.CompilerInvariant, diagnostics.PhaseVM, diagnostics.Span{}, "index %d out of bounds", idx)}
			}
			arr.Arr.Elem[idx] = vm.getReg(f, operands[2])
		case compiler.OP_ARRAY_LEN:
			arr := vm.getReg(f, operands[1]).AsObject()
			length := 0
			if arr != nil && arr.Kind == value.ObjArray {
				length = len(arr.Arr.Elem)
			} else if arr != nil && arr.Kind == value.ObjString {
				length = len(arr.Str.Data)
			}
			vm.setReg(f, operands[0], value.I32(int32(length)))

		case compiler.OP_NEW_STRUCT:
			proto := vm.program.Structs[operands[1]]
			count := operands[3]
			fields := make([]value.Value, count)
			for i := 0; i < count; i++ {
				fields[i] = vm.getReg(f, operands[2]+i)
			}
			obj := vm.Heap.Alloc(value.NewStruct(proto.Name, fields))
			vm.setReg(f, operands[0], value.FromObject(obj))
		case compiler.OP_FIELD_GET:
			obj := vm.getReg(f, operands[1]).AsObject()
			vm.setReg(f, operands[0], obj.St.Fields[operands[2]])
		case compiler.OP_FIELD_SET:
			obj := vm.getReg(f, operands[0]).AsObject()
			obj.St.Fields[operands[1]] = vm.getReg(f, operands[2])

		case compiler.OP_GET_UPVALUE:
			uv := f.closure.Upvalues[operands[1]]
			if uv.Cell != nil {
				vm.setReg(f, operands[0], *uv.Cell)
			} else {
				vm.setReg(f, operands[0], uv.Value)
			}
		case compiler.OP_SET_UPVALUE:
			uv := &f.closure.Upvalues[operands[0]]
			if uv.Cell != nil {
				*uv.Cell = vm.getReg(f, operands[1])
			} else {
				uv.Value = vm.getReg(f, operands[1])
			}

		case compiler.OP_CLOSURE:
			closureVal, consumed := vm.buildClosure(f, operands, ins, nextPC)
			nextPC = consumed
			vm.setReg(f, operands[0], closureVal)

		case compiler.OP_CALL:
			result, err := vm.call(f, operands[0], operands[1], operands[2])
			if err != nil {
				return value.Nil, err
			}
			vm.setReg(f, operands[0], result)

		case compiler.OP_RETURN:
			return vm.getReg(f, operands[0]), nil
		case compiler.OP_RETURN_VOID:
			return value.Nil, nil

		case compiler.OP_PRINT:
			fmt.Fprintln(vm.Out, vm.getReg(f, operands[0]).String())

		case compiler.OP_BUILTIN:
			result, err := vm.callBuiltin(f, operands[1], operands[2], operands[3])
			if err != nil {
				return value.Nil, err
			}
			vm.setReg(f, operands[0], result)

		default:
			vm.dispatchArith(f, op, operands)
		}

		if vm.Heap.ShouldCollect() {
			vm.Heap.Collect(vm.roots(f))
		}
		f.pc = nextPC
	}
}

// roots walks the live frame chain plus the shared global/module windows,
// the set of gc.Collect needs to keep every reachable object alive.
func (vm *VM) roots(f *Frame) []value.Value {
	roots := append([]value.Value{}, vm.globals[:]...)
	roots = append(roots, vm.moduleSlots[:]...)
	for cur := f; cur != nil; cur = cur.caller {
		roots = append(roots, cur.regs...)
		if cur.closure != nil {
			for _, uv := range cur.closure.Upvalues {
				if uv.Cell != nil {
					roots = append(roots, *uv.Cell)
				} else {
					roots = append(roots, uv.Value)
				}
			}
		}
	}
	return roots
}

func (vm *VM) callBuiltin(f *Frame, builtinID, argStart, argCount int) (value.Value, error) {
	switch builtinID {
	case compiler.BuiltinInput:
		line, _ := vm.In.ReadString('\n')
		return value.FromObject(vm.Heap.InternString(trimNewline(line))), nil
	case compiler.BuiltinLen:
		obj := vm.getReg(f, argStart).AsObject()
		switch {
		case obj == nil:
			return value.I32(0), nil
		case obj.Kind == value.ObjArray:
			return value.I32(int32(len(obj.Arr.Elem))), nil
		case obj.Kind == value.ObjString:
			return value.I32(int32(len(obj.Str.Data))), nil
		default:
			return value.I32(0), nil
		}
	case compiler.BuiltinIsType:
		v := vm.getReg(f, argStart)
		want := vm.getReg(f, argStart+1).AsObject()
		if want == nil {
			return value.Bool(false), nil
		}
		return value.Bool(v.Kind().String() == want.Str.Data), nil
	case compiler.BuiltinTimeStamp:
		return value.F64(float64(time.Now().UnixNano()) / 1e9), nil
	default:
		return value.Nil, fmt.Errorf("vm: unknown builtin id %d", builtinID)
	}
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

func decodeOperands(def *compiler.OpCodeDefinition, ins compiler.Instructions, offset int) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	off := offset
	for i, w := range def.OperandWidths {
		switch w {
		case 1:
			operands[i] = int(ins[off])
		case 2:
			operands[i] = int(compiler.ReadUint16(ins, off))
		}
		off += w
	}
	return operands, off - offset
}
