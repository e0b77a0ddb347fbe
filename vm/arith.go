package vm

import (
	"orus/compiler"
	"orus/diagnostics"
	"orus/value"
)

func asI64(v value.Value) int64 {
	switch v.Kind() {
	case value.KindI32:
		return int64(v.AsI32())
	case value.KindI64:
		return v.AsI64()
	case value.KindU32:
		return int64(v.AsU32())
	case value.KindU64:
		return int64(v.AsU64())
	case value.KindF64:
		return int64(v.AsF64())
	default:
		return 0
	}
}

func asU64(v value.Value) uint64 {
	switch v.Kind() {
	case value.KindI32:
		return uint64(v.AsI32())
	case value.KindI64:
		return uint64(v.AsI64())
	case value.KindU32:
		return uint64(v.AsU32())
	case value.KindU64:
		return v.AsU64()
	case value.KindF64:
		return uint64(v.AsF64())
	default:
		return 0
	}
}

func asF64(v value.Value) float64 {
	switch v.Kind() {
	case value.KindI32:
		return float64(v.AsI32())
	case value.KindI64:
		return float64(v.AsI64())
	case value.KindU32:
		return float64(v.AsU32())
	case value.KindU64:
		return float64(v.AsU64())
	case value.KindF64:
		return v.AsF64()
	default:
		return 0
	}
}

func (vm *VM) cast(v value.Value, target value.Kind) (value.Value, error) {
	if v.Kind() == target {
		return v, nil
	}
	if !v.IsNumeric() {
		return value.Nil, newRuntimeError(diagnostics.TypeMismatch, "cannot cast a %s value to %s", v.Kind(), target)
	}
	switch target {
	case value.KindI32:
		return value.I32(int32(asI64(v))), nil
	case value.KindI64:
		return value.I64(asI64(v)), nil
	case value.KindU32:
		return value.U32(uint32(asU64(v))), nil
	case value.KindU64:
		return value.U64(asU64(v)), nil
	case value.KindF64:
		return value.F64(asF64(v)), nil
	default:
		return value.Nil, newRuntimeError(diagnostics.TypeMismatch, "cannot cast to %s", target)
	}
}

// dispatchArith handles every typed/generic arithmetic, comparison and
// negation opcode: one switch per operation rather than per type, so
// adding a numeric kind later touches one place instead of five.
func (vm *VM) dispatchArith(f *Frame, op compiler.Opcode, operands []int) {
	switch op {
	case compiler.OP_ADD_I32, compiler.OP_ADD_I64, compiler.OP_ADD_U32, compiler.OP_ADD_U64, compiler.OP_ADD_F64, compiler.OP_ADD:
		vm.binNumeric(f, op, operands, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b }, func(a, b uint64) uint64 { return a + b })
	case compiler.OP_SUB_I32, compiler.OP_SUB_I64, compiler.OP_SUB_U32, compiler.OP_SUB_U64, compiler.OP_SUB_F64, compiler.OP_SUB:
		vm.binNumeric(f, op, operands, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b }, func(a, b uint64) uint64 { return a - b })
	case compiler.OP_MUL_I32, compiler.OP_MUL_I64, compiler.OP_MUL_U32, compiler.OP_MUL_U64, compiler.OP_MUL_F64, compiler.OP_MUL:
		vm.binNumeric(f, op, operands, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b }, func(a, b uint64) uint64 { return a * b })
	case compiler.OP_DIV_I32, compiler.OP_DIV_I64, compiler.OP_DIV_U32, compiler.OP_DIV_U64, compiler.OP_DIV_F64, compiler.OP_DIV:
		vm.binNumeric(f, op, operands, func(a, b float64) float64 { return a / b }, func(a, b int64) int64 { return a / b }, func(a, b uint64) uint64 { return a / b })
	case compiler.OP_MOD_I32, compiler.OP_MOD_I64, compiler.OP_MOD_U32, compiler.OP_MOD_U64, compiler.OP_MOD:
		vm.binNumeric(f, op, operands, nil, func(a, b int64) int64 { return a % b }, func(a, b uint64) uint64 { return a % b })

	case compiler.OP_CONCAT_STR:
		l := vm.getReg(f, operands[1]).AsObject()
		r := vm.getReg(f, operands[2]).AsObject()
		obj := vm.Heap.Alloc(value.NewString(l.Str.Data + r.Str.Data))
		vm.setReg(f, operands[0], value.FromObject(obj))

	case compiler.OP_LT_I32, compiler.OP_LT_I64, compiler.OP_LT_U32, compiler.OP_LT_U64, compiler.OP_LT_F64, compiler.OP_LT:
		vm.cmpNumeric(f, op, operands, func(c int) bool { return c < 0 })
	case compiler.OP_LE_I32, compiler.OP_LE_I64, compiler.OP_LE_U32, compiler.OP_LE_U64, compiler.OP_LE_F64, compiler.OP_LE:
		vm.cmpNumeric(f, op, operands, func(c int) bool { return c <= 0 })
	case compiler.OP_GT_I32, compiler.OP_GT_I64, compiler.OP_GT_U32, compiler.OP_GT_U64, compiler.OP_GT_F64, compiler.OP_GT:
		vm.cmpNumeric(f, op, operands, func(c int) bool { return c > 0 })
	case compiler.OP_GE_I32, compiler.OP_GE_I64, compiler.OP_GE_U32, compiler.OP_GE_U64, compiler.OP_GE_F64, compiler.OP_GE:
		vm.cmpNumeric(f, op, operands, func(c int) bool { return c >= 0 })

	case compiler.OP_EQ:
		vm.setReg(f, operands[0], value.Bool(value.Equal(vm.getReg(f, operands[1]), vm.getReg(f, operands[2]))))
	case compiler.OP_NEQ:
		vm.setReg(f, operands[0], value.Bool(!value.Equal(vm.getReg(f, operands[1]), vm.getReg(f, operands[2]))))

	case compiler.OP_NEG_I32:
		vm.setReg(f, operands[0], value.I32(-vm.getReg(f, operands[1]).AsI32()))
	case compiler.OP_NEG_I64:
		vm.setReg(f, operands[0], value.I64(-vm.getReg(f, operands[1]).AsI64()))
	case compiler.OP_NEG_U32:
		vm.setReg(f, operands[0], value.U32(-vm.getReg(f, operands[1]).AsU32()))
	case compiler.OP_NEG_U64:
		vm.setReg(f, operands[0], value.U64(-vm.getReg(f, operands[1]).AsU64()))
	case compiler.OP_NEG_F64, compiler.OP_NEG:
		vm.setReg(f, operands[0], value.F64(-asF64(vm.getReg(f, operands[1]))))
	}
}

// binNumeric picks the float/signed/unsigned implementation matching the
// opcode's type suffix (or the operands' runtime kind for the generic
// fallback opcodes) and writes the result into operands[0].
func (vm *VM) binNumeric(f *Frame, op compiler.Opcode, operands []int, onF64 func(a, b float64) float64, onI64 func(a, b int64) int64, onU64 func(a, b uint64) uint64) {
	l := vm.getReg(f, operands[1])
	r := vm.getReg(f, operands[2])
	switch l.Kind() {
	case value.KindF64:
		vm.setReg(f, operands[0], value.F64(onF64(asF64(l), asF64(r))))
	case value.KindI64:
		vm.setReg(f, operands[0], value.I64(onI64(asI64(l), asI64(r))))
	case value.KindU32:
		vm.setReg(f, operands[0], value.U32(uint32(onU64(uint64(l.AsU32()), uint64(r.AsU32())))))
	case value.KindU64:
		vm.setReg(f, operands[0], value.U64(onU64(asU64(l), asU64(r))))
	default: // KindI32 and the generic-opcode default
		vm.setReg(f, operands[0], value.I32(int32(onI64(asI64(l), asI64(r)))))
	}
}

func (vm *VM) cmpNumeric(f *Frame, op compiler.Opcode, operands []int, test func(cmp int) bool) {
	l := vm.getReg(f, operands[1])
	r := vm.getReg(f, operands[2])
	a, b := asF64(l), asF64(r)
	cmp := 0
	switch {
	case a < b:
		cmp = -1
	case a > b:
		cmp = 1
	}
	vm.setReg(f, operands[0], value.Bool(test(cmp)))
}
