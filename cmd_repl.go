package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd implements the REPL command
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start interactive REPL session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

// repl drives an interactive session against rl, accumulating lines into a
// block the way Python's REPL does: a single line that doesn't open a block
// (no trailing ":") runs immediately, anything else keeps reading with a
// continuation prompt until a blank line closes the block. Orus blocks are
// indentation-delimited, so the lexer would otherwise close an unfinished
// block's indentation with synthetic DEDENTs the moment it hit one source
// line - the blank-line convention is what lets a user type a multi-line
// if/while/func body across several Readline calls.
func repl(rl *readline.Instance) {
	var buffer []string

	for {
		if len(buffer) == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer = nil
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Println(err)
			return
		}

		trimmed := strings.TrimSpace(line)

		if len(buffer) == 0 {
			if trimmed == "exit" {
				return
			}
			if trimmed == "" {
				continue
			}
		}

		if trimmed == "" && len(buffer) > 0 {
			evalAndPrint(strings.Join(buffer, "\n") + "\n")
			buffer = nil
			continue
		}

		buffer = append(buffer, line)
		if len(buffer) == 1 && !strings.HasSuffix(trimmed, ":") {
			evalAndPrint(strings.Join(buffer, "\n") + "\n")
			buffer = nil
		}
	}
}

func evalAndPrint(source string) {
	program, ok := compileSource(source, "")
	if !ok {
		return
	}
	runProgram(program)
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\n\nWelcome to Orus!")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	repl(rl)
	return subcommands.ExitSuccess
}
