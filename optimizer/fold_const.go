package optimizer

import (
	"orus/token"
)

// foldBinaryConst evaluates a binary operator over two literal Go values the
// same way vm/arith.go's dispatchArith would at runtime, picking the
// int64/uint64/float64/bool/string arm by the checker-assigned operand type
// rather than by a runtime value.Kind switch, since at fold time there is no
// value.Value yet - only the Go-native literal held in ast.Literal.Value.
func foldBinaryConst(op string, operandType string, left, right any) (any, bool) {
	switch operandType {
	case "i32", "i64":
		lv, lok := asConstInt(left)
		rv, rok := asConstInt(right)
		if !lok || !rok {
			return nil, false
		}
		return foldIntOp(op, lv, rv)
	case "u32", "u64":
		lv, lok := asConstUint(left)
		rv, rok := asConstUint(right)
		if !lok || !rok {
			return nil, false
		}
		return foldUintOp(op, lv, rv)
	case "f64":
		lv, lok := asConstFloat(left)
		rv, rok := asConstFloat(right)
		if !lok || !rok {
			return nil, false
		}
		return foldFloatOp(op, lv, rv)
	case "bool":
		lv, lok := left.(bool)
		rv, rok := right.(bool)
		if !lok || !rok {
			return nil, false
		}
		return foldBoolOp(op, lv, rv)
	case "string":
		lv, lok := left.(string)
		rv, rok := right.(string)
		if !lok || !rok {
			return nil, false
		}
		return foldStringOp(op, lv, rv)
	}
	return nil, false
}

func asConstInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func asConstUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		return uint64(n), true
	}
	return 0, false
}

func asConstFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func foldIntOp(op string, l, r int64) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.SUB:
		return l - r, true
	case token.MULT:
		return l * r, true
	case token.DIV:
		if r == 0 {
			return nil, false
		}
		return l / r, true
	case token.MOD:
		if r == 0 {
			return nil, false
		}
		return l % r, true
	case token.EQUAL_EQUAL:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.LESS:
		return l < r, true
	case token.LESS_EQUAL:
		return l <= r, true
	case token.LARGER:
		return l > r, true
	case token.LARGER_EQUAL:
		return l >= r, true
	}
	return nil, false
}

func foldUintOp(op string, l, r uint64) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.SUB:
		return l - r, true
	case token.MULT:
		return l * r, true
	case token.DIV:
		if r == 0 {
			return nil, false
		}
		return l / r, true
	case token.MOD:
		if r == 0 {
			return nil, false
		}
		return l % r, true
	case token.EQUAL_EQUAL:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.LESS:
		return l < r, true
	case token.LESS_EQUAL:
		return l <= r, true
	case token.LARGER:
		return l > r, true
	case token.LARGER_EQUAL:
		return l >= r, true
	}
	return nil, false
}

func foldFloatOp(op string, l, r float64) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.SUB:
		return l - r, true
	case token.MULT:
		return l * r, true
	case token.DIV:
		if r == 0 {
			return nil, false
		}
		return l / r, true
	case token.EQUAL_EQUAL:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	case token.LESS:
		return l < r, true
	case token.LESS_EQUAL:
		return l <= r, true
	case token.LARGER:
		return l > r, true
	case token.LARGER_EQUAL:
		return l >= r, true
	}
	return nil, false
}

func foldBoolOp(op string, l, r bool) (any, bool) {
	switch op {
	case token.EQUAL_EQUAL:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	}
	return nil, false
}

func foldStringOp(op string, l, r string) (any, bool) {
	switch op {
	case token.ADD:
		return l + r, true
	case token.EQUAL_EQUAL:
		return l == r, true
	case token.NOT_EQUAL:
		return l != r, true
	}
	return nil, false
}

// foldCastConst mirrors vm/arith.go's (*VM).cast over a Go-native literal
// value rather than a value.Value, covering only the numeric target kinds a
// constant cast can land on; a cast to "string"/"bool" or any non-numeric
// target is left for the vm to perform at runtime.
func foldCastConst(v any, target string) (any, bool) {
	f, ok := asConstFloat(v)
	if !ok {
		return nil, false
	}
	switch target {
	case "i32":
		return int64(int32(int64(f))), true
	case "i64":
		return int64(f), true
	case "u32":
		return uint64(uint32(uint64(int64(f)))), true
	case "u64":
		return uint64(int64(f)), true
	case "f64":
		return f, true
	}
	return nil, false
}
