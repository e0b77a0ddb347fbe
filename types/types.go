// Package types implements Orus's type checker for a monomorphic,
// explicit-cast language. Every expression's type is computed bottom-up
// from its operands, annotations and the hoisted struct/function tables;
// the checker creates no type variables and performs no unification, so
// KindVar is part of the type model but is never produced.
package types

import "fmt"

// Kind distinguishes the shape of a Type.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindArray
	KindStruct
	KindFunction
	KindVar // unresolved inference variable
	KindNil
	KindVoid
)

const (
	I32    = "i32"
	I64    = "i64"
	U32    = "u32"
	U64    = "u64"
	F64    = "f64"
	Bool   = "bool"
	String = "string"
)

// Type is an immutable description of an Orus type. Struct and Function
// types carry enough structure for the checker to validate field access
// and calls without a second symbol lookup.
type Type struct {
	Kind Kind
	Name string // primitive name, struct name, or synthesized var name

	Elem *Type // KindArray: element type

	Fields     []string // KindStruct: field names, in declaration order
	FieldTypes []*Type  // KindStruct: parallel to Fields

	Params []*Type // KindFunction
	Result *Type   // KindFunction
}

func Primitive(name string) *Type { return &Type{Kind: KindPrimitive, Name: name} }

var (
	TypeI32    = Primitive(I32)
	TypeI64    = Primitive(I64)
	TypeU32    = Primitive(U32)
	TypeU64    = Primitive(U64)
	TypeF64    = Primitive(F64)
	TypeBool   = Primitive(Bool)
	TypeString = Primitive(String)
	TypeNil    = &Type{Kind: KindNil, Name: "nil"}
	TypeVoid   = &Type{Kind: KindVoid, Name: "void"}
)

func Array(elem *Type) *Type { return &Type{Kind: KindArray, Name: "array", Elem: elem} }

func Struct(name string, fields []string, fieldTypes []*Type) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields, FieldTypes: fieldTypes}
}

func Function(params []*Type, result *Type) *Type {
	return &Type{Kind: KindFunction, Name: "fn", Params: params, Result: result}
}

func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	switch t.Kind {
	case KindArray:
		return fmt.Sprintf("[%s]", t.Elem.String())
	case KindFunction:
		return fmt.Sprintf("fn(%d args) -> %s", len(t.Params), t.Result.String())
	default:
		return t.Name
	}
}

// IsNumeric reports whether t is one of the five numeric primitive kinds.
func (t *Type) IsNumeric() bool {
	if t == nil || t.Kind != KindPrimitive {
		return false
	}
	switch t.Name {
	case I32, I64, U32, U64, F64:
		return true
	default:
		return false
	}
}

func (t *Type) IsFloat() bool { return t != nil && t.Kind == KindPrimitive && t.Name == F64 }

// Equal reports structural equality, sufficient since Orus has no
// polymorphism and every type that reaches here is fully resolved.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPrimitive, KindNil, KindVoid:
		return a.Name == b.Name
	case KindArray:
		return Equal(a.Elem, b.Elem)
	case KindStruct:
		return a.Name == b.Name
	case KindFunction:
		if len(a.Params) != len(b.Params) || !Equal(a.Result, b.Result) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Lookup maps a parsed type annotation spelling to its canonical Type.
// Struct names are resolved later through the checker's struct table;
// this only covers primitives and is used for parameter/field/return
// annotations before the struct table is consulted.
func Lookup(name string) (*Type, bool) {
	switch name {
	case I32:
		return TypeI32, true
	case I64:
		return TypeI64, true
	case U32:
		return TypeU32, true
	case U64:
		return TypeU64, true
	case F64:
		return TypeF64, true
	case Bool:
		return TypeBool, true
	case String:
		return TypeString, true
	}
	return nil, false
}
