package clio

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/elyk/loxvm/lang/value"
	"github.com/elyk/loxvm/lang/vm"
)

// Evaluate implements the `evaluate` subcommand: the file holds a single
// expression (no trailing ';'), and its value is printed. There is no
// dedicated "evaluate one expression" entry point in the compiler, so this
// wraps the expression in a print statement the same way a REPL "show me
// this value" line would.
func (c *Cmd) Evaluate(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &compileError{err}
	}

	expr := strings.TrimRight(strings.TrimSpace(string(src)), ";")
	wrapped := []byte("print " + expr + ";")

	t := loadTuning()
	heap := value.NewHeap()
	heap.StressGC = t.StressGC
	heap.LogGC = t.LogGC
	heap.Log = stdio.Stderr

	machine := vm.New(heap)
	machine.Stdout = stdio.Stdout
	machine.Stderr = stdio.Stderr
	machine.MaxSteps = t.MaxSteps

	res, err := machine.Interpret(ctx, args[0], wrapped)
	return wrapResult(stdio, res, err)
}

func wrapResult(stdio mainer.Stdio, res vm.Result, err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintf(stdio.Stderr, "%s\n", err)
	switch res {
	case vm.CompileError:
		return &compileError{err}
	case vm.RuntimeError:
		return &runtimeError{err}
	default:
		return err
	}
}
