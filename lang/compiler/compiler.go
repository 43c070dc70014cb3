package compiler

import (
	"errors"

	"github.com/elyk/loxvm/lang/scanner"
	"github.com/elyk/loxvm/lang/token"
	"github.com/elyk/loxvm/lang/value"
)

const maxLocals = 256
const maxUpvalues = 256
const maxParams = 255

type funcType int

const (
	funcTypeScript funcType = iota
	funcTypeFunction
	funcTypeMethod
	funcTypeInitializer
)

// localDepthUndefined marks a local that has been declared but whose
// initializer has not finished compiling yet: resolving an identifier to
// such a local is exactly the "read a local in its own initializer" error.
const localDepthUndefined = -1

type local struct {
	name       string
	depth      int
	isCaptured bool
}

type upvalueRef struct {
	index   uint8
	isLocal bool
}

// classCompiler tracks the chain of classes currently being compiled, so
// `this` and `super` can be validated at parse time even though nothing
// resembling a full symbol table exists.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// Compiler is one stack frame of function compilation: the top-level
// script and every nested fun/method get their own Compiler, chained
// through enclosing. It implements value.RootSource so the function it is
// building is never collected mid-compile: every compiler in the active
// chain keeps its Function alive, per the GC's root set.
type Compiler struct {
	enclosing *Compiler
	p         *parser

	fn   *value.ObjFunction
	typ  funcType
	heap *value.Heap

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
}

// MarkRoots implements value.RootSource.
func (c *Compiler) MarkRoots(h *value.Heap) {
	if c.fn != nil {
		h.Mark(c.fn)
	}
}

func newCompiler(p *parser, enclosing *Compiler, typ funcType, name *value.ObjString) *Compiler {
	c := &Compiler{
		enclosing: enclosing,
		p:         p,
		typ:       typ,
		heap:      p.heap,
		fn:        p.heap.NewFunction(name),
	}
	// Slot 0 is reserved: methods and initializers see the receiver there
	// under the synthetic name "this"; every other function leaves it
	// nameless so user code can never resolve it.
	recv := ""
	if typ == funcTypeMethod || typ == funcTypeInitializer {
		recv = "this"
	}
	c.locals = append(c.locals, local{name: recv, depth: 0})
	p.heap.AddRoot(c)
	return c
}

func (c *Compiler) chunk() *value.Chunk { return &c.fn.Chunk }

func (c *Compiler) emitByte(b value.OpCode) {
	c.chunk().Write(byte(b), c.p.previous.Line)
}

func (c *Compiler) emitRawByte(b byte) {
	c.chunk().Write(b, c.p.previous.Line)
}

func (c *Compiler) emitBytes(b value.OpCode, arg byte) {
	c.emitByte(b)
	c.emitRawByte(arg)
}

func (c *Compiler) emitReturn() {
	if c.typ == funcTypeInitializer {
		c.emitBytes(value.OpGetLocal, 0)
	} else {
		c.emitByte(value.OpNil)
	}
	c.emitByte(value.OpReturn)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx, ok := c.chunk().AddConstant(v)
	if !ok {
		c.p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(value.OpConstant, c.makeConstant(v))
}

// emitJump writes the opcode and a two-byte placeholder operand, returning
// the offset of the first placeholder byte for patchJump.
func (c *Compiler) emitJump(op value.OpCode) int {
	c.emitByte(op)
	c.emitRawByte(0xff)
	c.emitRawByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.p.error("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitByte(value.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.p.error("Loop body too large.")
		return
	}
	c.emitRawByte(byte(offset >> 8))
	c.emitRawByte(byte(offset))
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.isCaptured {
			c.emitByte(value.OpCloseUpvalue)
		} else {
			c.emitByte(value.OpPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.p.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: localDepthUndefined})
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal walks this compiler's locals from the most recently
// declared backward, so shadowing within the same function resolves to
// the innermost declaration.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == localDepthUndefined {
				c.p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		c.p.error("Too many closure variables in function.")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	c.fn.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}

// resolveUpvalue recurses into the enclosing compiler chain, creating an
// upvalue link at every intermediate level the first time a name is
// captured across more than one nesting boundary.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if loc := c.enclosing.resolveLocal(name); loc != -1 {
		c.enclosing.locals[loc].isCaptured = true
		return c.addUpvalue(uint8(loc), true)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(uint8(up), false)
	}
	return -1
}

// Compile compiles a complete source buffer into the top-level script
// Function, or returns nil with the accumulated diagnostics if any
// compile-time error occurred. It always parses to EOF even after an
// error, to surface as many diagnostics as possible in one pass.
func Compile(heap *value.Heap, filename string, src []byte) (*value.ObjFunction, error) {
	var sc scanner.Scanner
	sc.Init(src)

	p := &parser{sc: &sc, filename: filename, heap: heap}
	top := newCompiler(p, nil, funcTypeScript, nil)
	p.cur = top

	p.advance()
	for !p.match(token.EOF) {
		declaration(p)
	}

	fn := finishCompiler(p)
	if p.hadError {
		// errors.Join renders every diagnostic, one per line.
		errs := make([]error, 0, len(p.errs))
		for _, e := range p.errs {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}
	return fn, nil
}

func finishCompiler(p *parser) *value.ObjFunction {
	c := p.cur
	c.emitReturn()
	fn := c.fn
	if debug && !p.hadError {
		name := "<script>"
		if fn.Name != nil {
			name = fn.Name.Chars
		}
		disassemble(&fn.Chunk, name)
	}
	p.heap.RemoveRoot(c)
	p.cur = c.enclosing
	return fn
}
