// Package optimizer sits between types and compiler: it walks a
// type-checked AST rewriting it in place (constant folding, loop-invariant
// code motion) and, once compiler has emitted bytecode, rewrites the
// resulting Chunks in place (peephole cleanup, register coalescing).
// Every pass is individually toggleable through Options, mirroring the
// CompilerOptions{OptimizerMaxCycle, OptimizeConst, OptimizeExpr} toggle
// struct ozanh-ugo's and gad-lang-gad's compilers expose, and every pass
// refuses rather than fails: a subexpression it cannot prove safe to
// transform is left untouched, never miscompiled.
package optimizer

import (
	"orus/ast"
	"orus/compiler"
	"orus/diagnostics"
)

// Options toggles each pass independently. All passes are safe to run in
// any combination, including all off (Run/OptimizeBytecode become no-ops).
type Options struct {
	FoldConstants bool // constant folding over the typed AST
	LoopAffinity  bool // loop induction-variable/element type recording
	LICM          bool // loop-invariant code motion out of while-conditions
	Peephole      bool // dead move/jump removal on emitted bytecode
	Coalesce      bool // scratch-temp-into-final-destination coalescing
}

// DefaultOptions turns every pass on, the configuration main.go's compiled
// run path uses.
func DefaultOptions() Options {
	return Options{FoldConstants: true, LoopAffinity: true, LICM: true, Peephole: true, Coalesce: true}
}

// Context accumulates statistics and loop-type metadata across a single
// optimizer run, threaded from the AST-level Run call through the later
// OptimizeBytecode call so one report can describe the whole pipeline.
type Context struct {
	Folded          int
	Hoisted         int
	PeepholeRemoved int
	Coalesced       int

	// LoopTypes maps a for-loop statement to the scalar type its
	// induction variable (ForRangeStmt) or element (ForIterStmt) settles
	// on, recorded by the loop-affinity pass for diagnostics/tooling;
	// codegen itself re-derives types from Meta.Type independently, so a
	// missing entry never blocks compilation.
	LoopTypes map[ast.Stmt]string
}

// Run folds constants, records loop type affinity and hoists
// loop-invariant subexpressions out of while-loop conditions, in that
// order - each pass sees the previous pass's output, so a constant folded
// away from a condition can make LICM's invariance check simpler, exactly
// as the ordering in SPEC_FULL.md's optimizer section requires.
func Run(program []ast.Stmt, opts Options, sink *diagnostics.Sink) ([]ast.Stmt, *Context) {
	ctx := &Context{LoopTypes: make(map[ast.Stmt]string)}

	if opts.FoldConstants {
		program = foldProgram(program, ctx)
	}
	if opts.LoopAffinity {
		annotateLoopAffinity(program, ctx)
	}
	if opts.LICM {
		program = licmProgram(program, ctx, sink)
	}
	return program, ctx
}

// OptimizeBytecode runs the post-codegen passes over every chunk in
// program (the main chunk and every function's chunk), mutating them in
// place. Pass a Context returned by Run to keep one running total, or a
// fresh &Context{} to optimize bytecode standalone.
func OptimizeBytecode(program *compiler.Program, opts Options, ctx *Context, sink *diagnostics.Sink) {
	if ctx == nil {
		ctx = &Context{}
	}
	chunks := make([]*compiler.Chunk, 0, len(program.Functions)+1)
	if program.Main != nil {
		chunks = append(chunks, program.Main)
	}
	for _, fn := range program.Functions {
		chunks = append(chunks, fn.Chunk)
	}
	for _, chunk := range chunks {
		if opts.Peephole {
			removed, ok := peepholeChunk(chunk)
			if !ok {
				reportInvariant(sink, chunk)
				continue
			}
			ctx.PeepholeRemoved += removed
		}
		if opts.Coalesce {
			coalesced, ok := coalesceChunk(chunk)
			if !ok {
				reportInvariant(sink, chunk)
				continue
			}
			ctx.Coalesced += coalesced
		}
	}
}

func reportInvariant(sink *diagnostics.Sink, chunk *compiler.Chunk) {
	if sink == nil {
		return
	}
	sink.Report(diagnostics.New(diagnostics.CompilerInvariant, diagnostics.PhaseOptimizer, diagnostics.Span{},
		"chunk '%s' contains an opcode the optimizer does not recognise; skipping bytecode passes for it", chunk.Name))
}
