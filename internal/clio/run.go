package clio

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/elyk/loxvm/lang/value"
	"github.com/elyk/loxvm/lang/vm"
)

// Run implements the `run` subcommand: compile and execute the whole
// program, mapping a compile failure to exit 65 and a runtime failure to
// exit 70 per the interpreter's usual convention.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &compileError{err}
	}

	t := loadTuning()
	heap := value.NewHeap()
	heap.StressGC = t.StressGC
	heap.LogGC = t.LogGC
	heap.Log = stdio.Stderr

	machine := vm.New(heap)
	machine.Stdout = stdio.Stdout
	machine.Stderr = stdio.Stderr
	machine.MaxSteps = t.MaxSteps

	res, err := machine.Interpret(ctx, args[0], src)
	return wrapResult(stdio, res, err)
}
