package value

import "unsafe"

// Collect runs one full mark-sweep cycle: mark every root gray, blacken the
// worklist to fixpoint, remove dead strings from the weak intern table,
// then sweep the object list. It never frees a marked object.
func (h *Heap) Collect() {
	before := h.bytesAllocated
	h.logf("-- gc begin\n")

	h.markRoots()
	h.blackenAll()
	h.strings.removeUnmarked()
	freed := h.sweep()

	h.nextGC = h.bytesAllocated * gcHeapGrowFactor

	h.logf("-- gc end   collected %d bytes (%d -> %d), freed %d objects, next at %d\n",
		before-h.bytesAllocated, before, h.bytesAllocated, freed, h.nextGC)
}

func (h *Heap) markRoots() {
	for _, rs := range h.roots {
		rs.MarkRoots(h)
	}
	for _, v := range h.anchored {
		h.mark(v)
	}
	if h.initString != nil {
		h.mark(h.initString)
	}
}

// Mark colors v gray: if it is a heap Object and not already marked, it is
// marked and pushed onto the gray worklist for blackening. Call this from
// every RootSource.MarkRoots implementation for each root Value.
func (h *Heap) Mark(v Value) { h.mark(v) }

func (h *Heap) mark(v Value) {
	obj, ok := v.(Object)
	if !ok {
		return // Nil, Bool, Number carry no references
	}
	hdr := obj.gcObj()
	if hdr == nil || hdr.marked {
		return
	}
	hdr.marked = true
	h.gray = append(h.gray, obj)
}

func (h *Heap) blackenAll() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		obj := h.gray[n]
		h.gray = h.gray[:n]
		h.blacken(obj)
	}
}

func (h *Heap) blacken(obj Object) {
	switch o := obj.(type) {
	case *ObjString:
		// no children

	case *ObjNative:
		// no children: Name is a plain Go string, Fn is a closure over
		// whatever the native captured, not part of the traced heap

	case *ObjUpvalue:
		h.mark(o.Closed)

	case *ObjFunction:
		if o.Name != nil {
			h.mark(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			h.mark(c)
		}

	case *ObjClosure:
		h.mark(o.Function)
		for _, uv := range o.Upvalues {
			h.mark(uv)
		}

	case *ObjClass:
		h.mark(o.Name)
		o.Methods.Each(func(key *ObjString, v Value) bool {
			h.mark(key)
			h.mark(v)
			return true
		})

	case *ObjInstance:
		h.mark(o.Class)
		o.Fields.Each(func(key *ObjString, v Value) bool {
			h.mark(key)
			h.mark(v)
			return true
		})

	case *ObjBoundMethod:
		h.mark(o.Receiver)
		h.mark(o.Method)
	}
}

// sweep walks the intrusive object list, freeing every unmarked object and
// clearing the mark bit on every survivor, and returns the number freed.
func (h *Heap) sweep() int {
	var (
		prev   Object
		freed  int
		cursor = h.objects
	)
	for cursor != nil {
		hdr := cursor.gcObj()
		next := hdr.next
		if hdr.marked {
			hdr.marked = false
			prev = cursor
		} else {
			if prev == nil {
				h.objects = next
			} else {
				prev.gcObj().next = next
			}
			h.bytesAllocated -= objectSize(cursor)
			freed++
		}
		cursor = next
	}
	return freed
}

// objectSize mirrors the unsafe.Sizeof calls each Heap.New* allocator made
// when the object was created, so sweep can subtract the same estimate it
// added.
func objectSize(obj Object) uintptr {
	switch o := obj.(type) {
	case *ObjString:
		return unsafe.Sizeof(*o)
	case *ObjFunction:
		return unsafe.Sizeof(*o)
	case *ObjNative:
		return unsafe.Sizeof(*o)
	case *ObjUpvalue:
		return unsafe.Sizeof(*o)
	case *ObjClosure:
		return unsafe.Sizeof(*o)
	case *ObjClass:
		return unsafe.Sizeof(*o)
	case *ObjInstance:
		return unsafe.Sizeof(*o)
	case *ObjBoundMethod:
		return unsafe.Sizeof(*o)
	default:
		return 0
	}
}
