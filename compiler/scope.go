package compiler

// Register classes, per the 256-slot register file: R0-63 hold module-level
// globals, R64-191 are a function frame's locals, R192-239 are scratch
// temporaries for sub-expression results, and R240-255 hold the current
// module's imported bindings. See registers.go for the exported constants
// the vm package uses to interpret the same layout.
const (
	globalBase  = GlobalBase
	globalLimit = GlobalLimit
	localBase   = LocalBase
	localLimit  = LocalLimit
	tempBase    = TempBase
	tempLimit   = TempLimit
	moduleBase  = ModuleBase
	moduleLimit = ModuleLimit
)

// Local generalizes the teacher's ast_compiler.go `Local{name, depth,
// initialized, slot}` from a VM stack index to a register id within
// R64-191.
type Local struct {
	name        string
	depth       int
	initialized bool
	mutable     bool
	reg         int
}

// funcScope tracks one function body's local-variable stack and temporary
// register high-water mark, mirroring the teacher's scopeDepth/locals
// bookkeeping but targeting registers instead of stack slots.
type funcScope struct {
	enclosing  *funcScope
	locals     []Local
	depth      int
	nextLocal  int // next free register in R64-191
	nextTemp   int // next free register in R192-239
	maxTemp    int
	upvalues   []UpvalueDesc
	upNames    []string
	returnType string
}

func newFuncScope(enclosing *funcScope) *funcScope {
	return &funcScope{enclosing: enclosing, nextLocal: localBase, nextTemp: tempBase, maxTemp: tempBase}
}

func (f *funcScope) beginScope() { f.depth++ }

// endScope pops every local declared at the scope being closed and frees
// its register for reuse by siblings, returning how many were popped.
func (f *funcScope) endScope() int {
	popped := 0
	for len(f.locals) > 0 && f.locals[len(f.locals)-1].depth == f.depth {
		f.locals = f.locals[:len(f.locals)-1]
		f.nextLocal--
		popped++
	}
	f.depth--
	return popped
}

func (f *funcScope) declareLocal(name string, mutable bool) (int, bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].depth != f.depth {
			break
		}
		if f.locals[i].name == name {
			return 0, false // redeclaration in the same scope
		}
	}
	if f.nextLocal >= localLimit {
		return 0, false
	}
	reg := f.nextLocal
	f.nextLocal++
	f.locals = append(f.locals, Local{name: name, depth: f.depth, initialized: true, mutable: mutable, reg: reg})
	return reg, true
}

func (f *funcScope) resolveLocal(name string) (*Local, bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return &f.locals[i], true
		}
	}
	return nil, false
}

// allocTemp hands out a scratch register for holding a sub-expression
// result; freeTemp releases it once the value has been consumed (moved
// into a local, a function argument slot, or another temp). Temps are
// allocated in strict stack order within one statement's compilation, so
// a simple bump/release counter suffices - no general-purpose register
// allocator is needed because Orus expressions have no shared subterms.
func (f *funcScope) allocTemp() int {
	reg := f.nextTemp
	f.nextTemp++
	if f.nextTemp > f.maxTemp {
		f.maxTemp = f.nextTemp
	}
	return reg
}

func (f *funcScope) freeTemp(upto int) {
	if upto < f.nextTemp {
		f.nextTemp = upto
	}
}

// resolveUpvalue searches enclosing function scopes for name, recording a
// chain of UpvalueDesc entries (one per intervening function) the way a
// Lua-style upvalue resolver does: each closure only needs to know how to
// reach its immediately enclosing frame or upvalue list, and the chain
// composes automatically.
func (f *funcScope) resolveUpvalue(name string) (int, bool) {
	if f.enclosing == nil {
		return 0, false
	}
	if local, ok := f.enclosing.resolveLocal(name); ok {
		return f.addUpvalue(name, UpvalueDesc{IsLocal: true, Index: local.reg, ByRef: local.mutable}), true
	}
	if idx, ok := f.enclosing.resolveUpvalue(name); ok {
		return f.addUpvalue(name, UpvalueDesc{IsLocal: false, Index: idx, ByRef: f.enclosing.upvalues[idx].ByRef}), true
	}
	return 0, false
}

func (f *funcScope) addUpvalue(name string, desc UpvalueDesc) int {
	for i, existing := range f.upNames {
		if existing == name {
			return i
		}
	}
	f.upvalues = append(f.upvalues, desc)
	f.upNames = append(f.upNames, name)
	return len(f.upvalues) - 1
}
