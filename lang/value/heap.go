package value

import (
	"fmt"
	"io"
	"unsafe"
)

// gcHeapGrowFactor is the multiplier applied to bytesAllocated, at the end
// of a collection, to compute the threshold for the next one.
const gcHeapGrowFactor = 2

// RootSource is implemented by anything the collector must treat as a root
// provider: the VM (stack, frames, open upvalues, globals) and the
// compiler (the chain of currently-compiling functions). MarkRoots should
// call h.Mark on every Value it holds.
type RootSource interface {
	MarkRoots(h *Heap)
}

// Heap owns every object this interpreter allocates: the intrusive list of
// live objects, the string-intern table, and the mark-sweep collector that
// cleans both. A single Heap is shared by one Compiler and one VM for the
// duration of one interpret-and-run, per the one-logical-interpreter-
// instance rule in the concurrency model.
type Heap struct {
	objects Object // head of the intrusive live-object list
	strings Table  // weak table of interned strings

	bytesAllocated int64
	nextGC         int64

	gray []Object

	roots []RootSource

	// anchored holds transient objects that must survive a collection even
	// though they are reachable only from a Go local variable, not from any
	// root: see Anchor. This is the "small anchor area" the design notes
	// permit as an alternative to pushing transients onto the VM stack.
	anchored []Value

	// initString is the interned "init" string, always a root (§4.5).
	initString *ObjString

	StressGC bool      // collect before every allocation, not just over threshold
	LogGC    bool      // emit "-- gc begin/end" trace lines
	Log      io.Writer // destination for LogGC output; defaults to a discarding writer
}

// NewHeap returns an initialized, empty Heap.
func NewHeap() *Heap {
	h := &Heap{nextGC: 1024 * 1024}
	h.initString = h.intern("init")
	return h
}

// AddRoot registers rs as a permanent or temporary source of GC roots. The
// VM registers itself once; the compiler pushes/pops itself as it enters
// and leaves nested function compilations (see newCompiler and
// finishCompiler in the compiler package).
func (h *Heap) AddRoot(rs RootSource) { h.roots = append(h.roots, rs) }

// RemoveRoot unregisters rs, e.g. when a nested function compiler finishes.
func (h *Heap) RemoveRoot(rs RootSource) {
	for i, r := range h.roots {
		if r == rs {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// InitString returns the interned "init" string, used by the VM to look up
// a class's initializer on construction.
func (h *Heap) InitString() *ObjString { return h.initString }

// Anchor pins v against collection for the duration of some further
// allocation that might trigger a GC while v is reachable only from a Go
// local variable (e.g. the two operands of string concatenation, or a new
// string being inserted into the intern table). Call the returned func to
// release the anchor once v has been stored somewhere a root can see it.
func (h *Heap) Anchor(v Value) (release func()) {
	h.anchored = append(h.anchored, v)
	return func() {
		// swap-remove; order doesn't matter for a worklist of pins. v is
		// looked up again because an earlier release may have moved it.
		for i := len(h.anchored) - 1; i >= 0; i-- {
			if h.anchored[i] == v {
				last := len(h.anchored) - 1
				h.anchored[i] = h.anchored[last]
				h.anchored = h.anchored[:last]
				return
			}
		}
	}
}

func (h *Heap) link(obj Object) {
	hdr := obj.gcObj()
	hdr.next = h.objects
	h.objects = obj
}

func (h *Heap) recordAlloc(size uintptr) {
	h.bytesAllocated += int64(size)
	if h.StressGC || h.bytesAllocated > h.nextGC {
		h.Collect()
	}
}

// --- allocation API -------------------------------------------------------

// CopyString returns the canonical ObjString for chars, copying it if no
// equal string is already interned.
func (h *Heap) CopyString(chars string) *ObjString {
	hash := hashString(chars)
	if s := h.strings.FindString(chars, hash); s != nil {
		return s
	}
	return h.intern(chars)
}

// TakeString is like CopyString but is used when the caller already owns
// an independent copy of chars (e.g. the freshly built result of string
// concatenation) and no longer needs it once interning is done.
func (h *Heap) TakeString(chars string) *ObjString {
	hash := hashString(chars)
	if s := h.strings.FindString(chars, hash); s != nil {
		return s
	}
	return h.intern(chars)
}

func (h *Heap) intern(chars string) *ObjString {
	s := &ObjString{Obj: Obj{kind: KindString}, Chars: chars, Hash: hashString(chars)}
	release := h.Anchor(s)
	defer release()
	h.recordAlloc(unsafe.Sizeof(*s))
	h.link(s)
	h.strings.Set(s)
	return s
}

// NewFunction allocates an empty, not-yet-finalized ObjFunction. The
// compiler fills in Arity, UpvalueCount and Chunk as it compiles the body.
func (h *Heap) NewFunction(name *ObjString) *ObjFunction {
	f := &ObjFunction{Obj: Obj{kind: KindFunction}, Name: name}
	h.recordAlloc(unsafe.Sizeof(*f))
	h.link(f)
	return f
}

// NewNative allocates a built-in function value.
func (h *Heap) NewNative(name string, fn NativeFn) *ObjNative {
	n := &ObjNative{Obj: Obj{kind: KindNative}, Name: name, Fn: fn}
	h.recordAlloc(unsafe.Sizeof(*n))
	h.link(n)
	return n
}

// NewUpvalue allocates an open upvalue pointing at the stack slot index
// slotIndex, whose address is loc.
func (h *Heap) NewUpvalue(loc *Value, slotIndex int) *ObjUpvalue {
	u := &ObjUpvalue{Obj: Obj{kind: KindUpvalue}, Location: loc, Slot: slotIndex}
	h.recordAlloc(unsafe.Sizeof(*u))
	h.link(u)
	return u
}

// NewClosure allocates a closure over fn with the given (already captured)
// upvalues.
func (h *Heap) NewClosure(fn *ObjFunction, upvalues []*ObjUpvalue) *ObjClosure {
	c := &ObjClosure{Obj: Obj{kind: KindClosure}, Function: fn, Upvalues: upvalues}
	h.recordAlloc(unsafe.Sizeof(*c))
	h.link(c)
	return c
}

// NewClass allocates a class named name with an empty method table.
func (h *Heap) NewClass(name *ObjString) *ObjClass {
	c := newClass(name)
	h.recordAlloc(unsafe.Sizeof(*c))
	h.link(c)
	return c
}

// NewInstance allocates an instance of class with an empty field table.
func (h *Heap) NewInstance(class *ObjClass) *ObjInstance {
	i := newInstance(class)
	h.recordAlloc(unsafe.Sizeof(*i))
	h.link(i)
	return i
}

// NewBoundMethod allocates a bound method pairing receiver with method.
func (h *Heap) NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	b := &ObjBoundMethod{Obj: Obj{kind: KindBoundMethod}, Receiver: receiver, Method: method}
	h.recordAlloc(unsafe.Sizeof(*b))
	h.link(b)
	return b
}

// BytesAllocated reports the heap's current estimate of live allocated
// bytes, exposed for tests and diagnostics.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

func (h *Heap) logf(format string, args ...interface{}) {
	if !h.LogGC {
		return
	}
	out := h.Log
	if out == nil {
		return
	}
	fmt.Fprintf(out, format, args...)
}
