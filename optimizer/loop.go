// loop.go records, for every counted or iterator for-loop, the scalar type
// its induction variable or element settles on. Codegen does not depend on
// this - compiler.go's VisitForRangeStmt reads the loop statement's own
// Meta.Type and VisitForIterStmt always uses an i32 index - so this pass
// exists purely to populate
// Context.LoopTypes for diagnostics and for a future REPL/tooling surface
// that wants to report what Orus inferred without re-running the checker.
package optimizer

import "orus/ast"

type loopWalker struct {
	ctx *Context
}

// annotateLoopAffinity walks every statement reachable from program,
// recording one LoopTypes entry per for-loop it finds.
func annotateLoopAffinity(program []ast.Stmt, ctx *Context) {
	w := &loopWalker{ctx: ctx}
	for _, stmt := range program {
		w.walkStmt(stmt)
	}
}

func (w *loopWalker) walkBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		w.walkStmt(stmt)
	}
}

func (w *loopWalker) walkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case nil:
		return
	case *ast.BlockStmt:
		w.walkBlock(n)
	case *ast.IfStmt:
		w.walkBlock(n.Then)
		w.walkStmt(n.Else)
	case *ast.WhileStmt:
		w.walkBlock(n.Body)
	case *ast.ForRangeStmt:
		w.ctx.LoopTypes[n] = ast.MetaOf(n.Start).Type
		w.walkBlock(n.Body)
	case *ast.ForIterStmt:
		elem := ast.MetaOf(n.Iterable).Type
		if len(elem) >= 2 && elem[0] == '[' && elem[len(elem)-1] == ']' {
			elem = elem[1 : len(elem)-1]
		}
		w.ctx.LoopTypes[n] = elem
		w.walkBlock(n.Body)
	case *ast.FunctionDecl:
		w.walkBlock(n.Body)
	case *ast.TryStmt:
		w.walkBlock(n.Body)
		w.walkBlock(n.Handler)
	}
}
