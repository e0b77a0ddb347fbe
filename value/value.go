// Package value implements the tagged Value union that flows through the
// constant pool, the VM's register file and the garbage collector. Scalars
// are stored inline; everything else is a pointer to a heap Object linked
// on the collector's single object list (see package gc).
package value

import (
	"math"
	"strconv"
)

// Kind discriminates the variant a Value currently holds. Every consumer
// switches on Kind rather than doing interface type assertions, matching
// the "many kinds, one pointer" idiom: a single owned box holding a
// discriminant and a payload.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindI32
	KindI64
	KindU32
	KindU64
	KindF64
	KindObj
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindF64:
		return "f64"
	case KindObj:
		return "obj"
	default:
		return "unknown"
	}
}

// Value is the tagged union described by the data model. Scalar kinds pack
// their bit pattern into bits; KindObj stores a pointer into Obj. Keeping
// scalars unboxed lets the VM's typed opcodes operate on raw bits without
// touching the allocator.
type Value struct {
	kind Kind
	bits uint64
	obj  *Object
}

var Nil = Value{kind: KindNil}

func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, bits: 1}
	}
	return Value{kind: KindBool, bits: 0}
}

func I32(v int32) Value { return Value{kind: KindI32, bits: uint64(uint32(v))} }
func I64(v int64) Value { return Value{kind: KindI64, bits: uint64(v)} }
func U32(v uint32) Value { return Value{kind: KindU32, bits: uint64(v)} }
func U64(v uint64) Value { return Value{kind: KindU64, bits: v} }
func F64(v float64) Value { return Value{kind: KindF64, bits: math.Float64bits(v)} }

func FromObject(o *Object) Value { return Value{kind: KindObj, obj: o} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) AsBool() bool { return v.bits != 0 }
func (v Value) AsI32() int32 { return int32(uint32(v.bits)) }
func (v Value) AsI64() int64 { return int64(v.bits) }
func (v Value) AsU32() uint32 { return uint32(v.bits) }
func (v Value) AsU64() uint64 { return v.bits }
func (v Value) AsF64() float64 { return math.Float64frombits(v.bits) }
func (v Value) AsObject() *Object { return v.obj }

// IsNumeric reports whether v holds one of the five numeric kinds.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindI32, KindI64, KindU32, KindU64, KindF64:
		return true
	default:
		return false
	}
}

// Truthy implements the VM's boolean coercion rule: nil is false, an
// explicit bool is itself, everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.AsBool()
	default:
		return true
	}
}

// Equal implements IEEE-754 default semantics for numeric comparisons
// (NaN is unequal to everything, including itself) and structural
// equality for everything else, resolving the spec's NaN open question
// in favour of the recommended rule.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		if a.IsNumeric() && b.IsNumeric() {
			return asF64(a) == asF64(b)
		}
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.bits == b.bits
	case KindF64:
		return a.AsF64() == b.AsF64()
	case KindI32, KindI64, KindU32, KindU64:
		return a.bits == b.bits
	case KindObj:
		return ObjectsEqual(a.obj, b.obj)
	default:
		return false
	}
}

func asF64(v Value) float64 {
	switch v.kind {
	case KindI32:
		return float64(v.AsI32())
	case KindI64:
		return float64(v.AsI64())
	case KindU32:
		return float64(v.AsU32())
	case KindU64:
		return float64(v.AsU64())
	case KindF64:
		return v.AsF64()
	default:
		return 0
	}
}

// String renders a Value for print/diagnostics purposes.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindI32:
		return strconv.FormatInt(int64(v.AsI32()), 10)
	case KindI64:
		return strconv.FormatInt(v.AsI64(), 10)
	case KindU32:
		return strconv.FormatUint(uint64(v.AsU32()), 10)
	case KindU64:
		return strconv.FormatUint(v.AsU64(), 10)
	case KindF64:
		return strconv.FormatFloat(v.AsF64(), 'g', -1, 64)
	case KindObj:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.String()
	default:
		return "<invalid>"
	}
}
