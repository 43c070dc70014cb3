package vm

import (
	"golang.org/x/exp/slices"

	"github.com/elyk/loxvm/lang/value"
)

// captureUpvalue returns the open upvalue already pointing at absolute
// stack index slot, if one exists (linear scan of the sorted list), else
// allocates a fresh one and splices it in, preserving descending-Slot
// order.
func (vm *VM) captureUpvalue(slot int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	cur := vm.openUpval
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}

	created := vm.Heap.NewUpvalue(&vm.stack[slot], slot)
	created.Next = cur
	if prev == nil {
		vm.openUpval = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above absolute stack index
// last, copying each one's current stack value into its own storage and
// unlinking it from the open list.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpval != nil && vm.openUpval.Slot >= last {
		uv := vm.openUpval
		uv.Close()
		vm.openUpval = uv.Next
		uv.Next = nil
	}
}

// openUpvalueSlots returns the Slot of every currently open upvalue in list
// order, highest Slot first; used only by tests to assert the sortedness
// invariant without reaching into VM internals by hand.
func openUpvalueSlots(vm *VM) []int {
	var slots []int
	for uv := vm.openUpval; uv != nil; uv = uv.Next {
		slots = append(slots, uv.Slot)
	}
	return slots
}

// isSortedDescending is a thin wrapper exercising golang.org/x/exp/slices'
// generic comparison helpers for the open-upvalue invariant, rather than
// hand-rolling the same loop twice (once in captureUpvalue, once here).
func isSortedDescending(s []int) bool {
	return slices.IsSortedFunc(s, func(a, b int) int { return b - a })
}
