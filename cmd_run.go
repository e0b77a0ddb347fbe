package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// runCmd implements the "run" subcommand: execute a .orus source file
// through the full lexer -> parser -> module -> types -> optimizer ->
// compiler -> vm pipeline.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute Orus code from a source file" }
func (*runCmd) Usage() string {
	return `run <file.orus>:
  Lex, parse, link, type-check, optimize, compile and execute a source file.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	program, ok := compileSource(string(data), filename)
	if !ok {
		return subcommands.ExitFailure
	}
	if !runProgram(program) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
