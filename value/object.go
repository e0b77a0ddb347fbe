package value

import "fmt"

// ObjectKind discriminates the concrete heap object a Value of KindObj
// points to.
type ObjectKind uint8

const (
	ObjString ObjectKind = iota
	ObjArray
	ObjError
	ObjFunction
	ObjClosure
	ObjStruct
)

// Object is the common header every heap-allocated value shares: kind,
// GC mark bit and the intrusive next pointer used by the collector's
// single object list. The concrete payload lives behind the matching
// pointer field below; exactly one is populated per Kind.
type Object struct {
	Kind   ObjectKind
	Marked bool
	Next   *Object

	Str *StringObject
	Arr *ArrayObject
	Err *ErrorObject
	Fn  *FunctionObject
	Cl  *ClosureObject
	St  *StructObject
}

// StringObject stores interned or heap-owned UTF-8 text.
type StringObject struct {
	Data string
}

// ArrayObject is a growable, homogeneously-typed array.
type ArrayObject struct {
	Elem     []Value
	ElemType string
}

// ErrorObject is the payload for runtime error values (caught by try, or
// surfaced as the uncaught-error report).
type ErrorObject struct {
	ErrKind string
	Message string
	Line    int32
	Column  int
}

// FunctionObject is a compiled function: a reference to its own chunk
// (identified by function-table index to avoid an import cycle with the
// compiler package), arity and upvalue count.
type FunctionObject struct {
	Name         string
	ChunkIndex   int
	Arity        int
	UpvalueCount int
}

// UpvalueSlot describes one of a closure's captured bindings. ByRef
// upvalues share a *Value cell with the enclosing frame (mutable
// captures); value upvalues hold an independent copy (immutable
// captures), resolving the spec's closure-capture open question.
type UpvalueSlot struct {
	ByRef bool
	Cell  *Value
	Value Value
}

// ClosureObject pairs a FunctionObject with its captured upvalues.
type ClosureObject struct {
	Function *FunctionObject
	Upvalues []UpvalueSlot
}

// StructObject is an instance of a named struct type; fields are stored
// positionally and resolved by the type checker's field-index map.
type StructObject struct {
	TypeName string
	Fields   []Value
}

func NewString(s string) *Object {
	return &Object{Kind: ObjString, Str: &StringObject{Data: s}}
}

func NewArray(elemType string, elems []Value) *Object {
	return &Object{Kind: ObjArray, Arr: &ArrayObject{Elem: elems, ElemType: elemType}}
}

func NewError(kind, message string, line int32, column int) *Object {
	return &Object{Kind: ObjError, Err: &ErrorObject{ErrKind: kind, Message: message, Line: line, Column: column}}
}

func NewFunction(name string, chunkIndex, arity, upvalues int) *Object {
	return &Object{Kind: ObjFunction, Fn: &FunctionObject{Name: name, ChunkIndex: chunkIndex, Arity: arity, UpvalueCount: upvalues}}
}

func NewClosure(fn *FunctionObject, upvalues []UpvalueSlot) *Object {
	return &Object{Kind: ObjClosure, Cl: &ClosureObject{Function: fn, Upvalues: upvalues}}
}

func NewStruct(typeName string, fields []Value) *Object {
	return &Object{Kind: ObjStruct, St: &StructObject{TypeName: typeName, Fields: fields}}
}

func (o *Object) String() string {
	if o == nil {
		return "nil"
	}
	switch o.Kind {
	case ObjString:
		return o.Str.Data
	case ObjArray:
		return fmt.Sprintf("array[%d]", len(o.Arr.Elem))
	case ObjError:
		return fmt.Sprintf("error(%s): %s", o.Err.ErrKind, o.Err.Message)
	case ObjFunction:
		return fmt.Sprintf("<fn %s>", o.Fn.Name)
	case ObjClosure:
		return fmt.Sprintf("<closure %s>", o.Cl.Function.Name)
	case ObjStruct:
		return fmt.Sprintf("<%s instance>", o.St.TypeName)
	default:
		return "<object>"
	}
}

// ObjectsEqual implements structural equality for heap objects: strings
// compare by content, arrays element-wise, everything else by identity.
func ObjectsEqual(a, b *Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ObjString:
		return a.Str.Data == b.Str.Data
	case ObjArray:
		if len(a.Arr.Elem) != len(b.Arr.Elem) {
			return false
		}
		for i := range a.Arr.Elem {
			if !Equal(a.Arr.Elem[i], b.Arr.Elem[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
