package compiler

// Builtin ids are the second operand of OP_BUILTIN. Orus's built-in
// functions are never placed in the function table: the compiler
// recognizes their names directly at a call site and the vm implements
// their behavior natively, per spec.md's built-in function list.
const (
	BuiltinInput = iota
	BuiltinLen
	BuiltinIsType
	BuiltinTimeStamp
)

// Builtins maps a called name to its builtin id, consulted by VisitCall
// before falling back to the user function table.
var Builtins = map[string]int{
	"input":      BuiltinInput,
	"len":        BuiltinLen,
	"is_type":    BuiltinIsType,
	"time_stamp": BuiltinTimeStamp,
}
