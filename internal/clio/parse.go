package clio

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/elyk/loxvm/lang/compiler"
	"github.com/elyk/loxvm/lang/value"
)

// Parse implements the `parse` subcommand. A single-pass compiler never
// builds an AST to print, so in place of the tree this prints the
// bytecode chunk the source compiles to — the closest analogue this
// architecture has to "the result of parsing".
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &compileError{err}
	}

	heap := value.NewHeap()
	fn, err := compiler.Compile(heap, args[0], src)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &compileError{err}
	}
	compiler.DisassembleChunk(stdio.Stdout, &fn.Chunk, "<script>")
	return nil
}
