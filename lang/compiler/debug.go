package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/elyk/loxvm/lang/value"
)

// disassemble prints a human-readable listing of chunk to stderr, gated by
// the package-level debug flag the same way the teacher's CFG linearizer
// traces stack depth during encoding.
func disassemble(c *value.Chunk, name string) {
	DisassembleChunk(os.Stderr, c, name)
}

// DisassembleChunk prints a human-readable listing of chunk to w. Unlike
// disassemble, it is unconditional: it backs the `parse` subcommand's
// bytecode listing, which this single-pass compiler uses in place of an
// AST dump.
func DisassembleChunk(w io.Writer, c *value.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(w, c, offset)
	}
}

func disassembleInstruction(w io.Writer, c *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := value.OpCode(c.Code[offset])
	switch op {
	case value.OpConstant, value.OpGetGlobal, value.OpDefineGlobal, value.OpSetGlobal,
		value.OpGetProperty, value.OpSetProperty, value.OpGetSuper, value.OpClass, value.OpMethod:
		return constantInstruction(w, op, c, offset)
	case value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue, value.OpCall:
		return byteInstruction(w, op, c, offset)
	case value.OpInvoke, value.OpSuperInvoke:
		return invokeInstruction(w, op, c, offset)
	case value.OpJump, value.OpJumpIfFalse:
		return jumpInstruction(w, op, 1, c, offset)
	case value.OpLoop:
		return jumpInstruction(w, op, -1, c, offset)
	case value.OpClosure:
		return closureInstruction(w, c, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%v'\n", op, idx, c.Constants[idx])
	return offset + 2
}

func byteInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func invokeInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	argc := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%v'\n", op, argc, idx, c.Constants[idx])
	return offset + 3
}

func jumpInstruction(w io.Writer, op value.OpCode, sign int, c *value.Chunk, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func closureInstruction(w io.Writer, c *value.Chunk, offset int) int {
	offset++
	idx := c.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%v'\n", value.OpClosure, idx, c.Constants[idx])

	fn, ok := c.Constants[idx].(*value.ObjFunction)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		index := c.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
