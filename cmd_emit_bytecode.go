package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"orus/compiler"

	"github.com/google/subcommands"
)

// emitBytecodeCmd implements the "emit" subcommand: run the full pipeline up
// to and including bytecode optimization, but stop short of vm.Run, and
// write the disassembled program out for inspection.
type emitBytecodeCmd struct {
	stdout bool
}

func (*emitBytecodeCmd) Name() string { return "emit" }
func (*emitBytecodeCmd) Synopsis() string {
	return "Emit the disassembled bytecode for a source file"
}
func (*emitBytecodeCmd) Usage() string {
	return `emit <file.orus>:
  Compile a source file and write its disassembled bytecode to <file>.orusasm,
  or to stdout with -stdout.
`
}

func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.stdout, "stdout", false, "print the disassembly to stdout instead of writing a .orusasm file")
}

func (r *emitBytecodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	orusFile := args[0]

	data, err := os.ReadFile(orusFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	program, ok := compileSource(string(data), orusFile)
	if !ok {
		return subcommands.ExitFailure
	}

	text := compiler.Disassemble(program)

	if r.stdout {
		fmt.Print(text)
		return subcommands.ExitSuccess
	}

	base := strings.TrimSuffix(orusFile, ".orus")
	outFile := base + ".orusasm"
	if err := os.WriteFile(outFile, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write disassembly: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("wrote %s\n", outFile)
	return subcommands.ExitSuccess
}
