package diagnostics

// Code is a closed error-code identifier surfaced to callers, per the
// error taxonomy every diagnostic must carry.
type Code string

const (
	ParseError            Code = "E0001"
	GeneralError          Code = "E0002"
	FunctionCallError     Code = "E0061"
	TypeMismatch          Code = "E0308"
	UndefinedVariable     Code = "E0425"
	ScopeError            Code = "E0426"
	ImmutableAssignment   Code = "E0594"
	PrivateAccess         Code = "E0604"
	VariableError         Code = "E1001"
	ControlFlowError      Code = "E1002"
	TypeFeatureError      Code = "E1003"
	ModuleError           Code = "E1004"
	RuntimeFeatureError   Code = "E1005"
	UnterminatedString    Code = "E1006"
	InvalidToken          Code = "E1007"
	CompilerInvariant     Code = "E1008"
)
