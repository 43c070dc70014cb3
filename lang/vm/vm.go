// Package vm implements the stack-based bytecode interpreter: dispatch
// loop, call frames, globals, and open-upvalue bookkeeping. It owns
// exactly one value.Heap for the lifetime of one Interpret call, mirroring
// the single-logical-interpreter-instance rule: re-entering Interpret on
// the same VM while a run is in progress is not supported.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/elyk/loxvm/lang/compiler"
	"github.com/elyk/loxvm/lang/value"
)

const (
	maxStack  = 16384
	maxFrames = 64
)

// Result is the outcome of an Interpret call, grounded on the teacher's
// Thread/RunProgram convention of returning (result, error) rather than a
// bare status enum.
type Result int

const (
	// Ok indicates successful completion.
	Ok Result = iota
	// CompileError indicates the source failed to compile.
	CompileError
	// RuntimeError indicates the program compiled but raised an error while
	// running.
	RuntimeError
)

type callFrame struct {
	closure *value.ObjClosure
	ip      int // index into closure.Function.Chunk.Code
	slots   int // base index into vm.stack for this frame's locals
}

// VM is one bytecode interpreter instance: its value stack, call-frame
// stack, globals table, open-upvalue chain, and the heap all three share.
type VM struct {
	Heap   *value.Heap
	Stdout io.Writer
	Stderr io.Writer

	// MaxSteps bounds dispatch-loop iterations before the run is cancelled,
	// mirroring the teacher's Thread.MaxSteps/steps cooperative-cancellation
	// pattern. Zero means unlimited.
	MaxSteps uint64

	globals *value.StringMap

	stack    []value.Value
	stackTop int

	frames []callFrame

	// openUpval is the head of the open-upvalue list, kept sorted by
	// descending stack slot (see captureUpvalue in upvalues.go).
	openUpval *value.ObjUpvalue

	steps uint64
}

// New returns a VM ready to Interpret. heap is typically fresh from
// value.NewHeap(), but reusing one across repeated Interpret calls within
// a single process is supported as long as calls do not overlap.
func New(heap *value.Heap) *VM {
	vm := &VM{
		Heap:    heap,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		globals: value.NewStringMap(64),
		stack:   make([]value.Value, maxStack),
		frames:  make([]callFrame, 0, maxFrames),
	}
	heap.AddRoot(vm)
	vm.defineNative("clock", nativeClock)
	return vm
}

// MarkRoots implements value.RootSource: the stack, every active frame's
// closure, the open-upvalue chain, and the globals table (both keys and
// values) are all roots.
func (vm *VM) MarkRoots(h *value.Heap) {
	for i := 0; i < vm.stackTop; i++ {
		h.Mark(vm.stack[i])
	}
	for _, fr := range vm.frames {
		h.Mark(fr.closure)
	}
	for uv := vm.openUpval; uv != nil; uv = uv.Next {
		h.Mark(uv)
	}
	vm.globals.Each(func(key *value.ObjString, v value.Value) bool {
		h.Mark(key)
		h.Mark(v)
		return true
	})
}

func (vm *VM) defineNative(name string, fn value.NativeFn) {
	nameStr := vm.Heap.CopyString(name)
	release := vm.Heap.Anchor(nameStr)
	defer release()
	native := vm.Heap.NewNative(name, fn)
	vm.globals.Set(nameStr, native)
}

func nativeClock(_ []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}

// Interpret compiles and runs src as a complete program (filename is used
// only for diagnostics).
func (vm *VM) Interpret(ctx context.Context, filename string, src []byte) (Result, error) {
	fn, err := compiler.Compile(vm.Heap, filename, src)
	if err != nil {
		return CompileError, err
	}
	return vm.interpretFunction(ctx, fn)
}

func (vm *VM) interpretFunction(ctx context.Context, fn *value.ObjFunction) (Result, error) {
	vm.resetStack()

	closure := vm.Heap.NewClosure(fn, nil)
	vm.push(closure)
	vm.frames = append(vm.frames, callFrame{closure: closure, slots: 0})

	if err := vm.run(ctx); err != nil {
		return RuntimeError, err
	}
	return Ok, nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frames = vm.frames[:0]
	vm.openUpval = nil
}

// runtimeError formats a message and the call-stack trace the way §4.4
// requires (one "[line N] in <name>" entry per active frame, innermost
// first), then resets the stack.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)

	var trace strings.Builder
	trace.WriteString(msg)
	trace.WriteByte('\n')
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Function
		line := 0
		if fr.ip-1 >= 0 && fr.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[fr.ip-1]
		}
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		fmt.Fprintf(&trace, "[line %d] in %s\n", line, name)
	}

	vm.resetStack()
	return fmt.Errorf("%s", trace.String())
}
