package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elyk/loxvm/lang/value"
)

// TestCaptureUpvalueKeepsOpenListSortedDescending exercises the
// golang.org/x/exp/slices-backed sortedness check directly: the open
// upvalue list must stay ordered by descending Slot as new captures are
// spliced in at any position, not just appended at the ends.
func TestCaptureUpvalueKeepsOpenListSortedDescending(t *testing.T) {
	heap := value.NewHeap()
	v := New(heap)
	v.stack = make([]value.Value, 16)
	for i := range v.stack {
		v.stack[i] = value.Number(i)
	}

	v.captureUpvalue(5)
	v.captureUpvalue(1)
	v.captureUpvalue(9)
	v.captureUpvalue(3)

	slots := openUpvalueSlots(v)
	require.Equal(t, []int{9, 5, 3, 1}, slots)
	require.True(t, isSortedDescending(slots))

	// Recapturing an already-open slot must return the existing upvalue,
	// not disturb the ordering.
	again := v.captureUpvalue(5)
	require.Same(t, again, v.openUpval.Next)
	require.True(t, isSortedDescending(openUpvalueSlots(v)))
}

func TestCloseUpvaluesRemovesClosedEntriesAndPreservesOrder(t *testing.T) {
	heap := value.NewHeap()
	v := New(heap)
	v.stack = make([]value.Value, 16)
	for i := range v.stack {
		v.stack[i] = value.Number(i)
	}

	v.captureUpvalue(5)
	v.captureUpvalue(1)
	v.captureUpvalue(9)

	// closeUpvalues(4) closes every open upvalue at or above slot 4 (9 and
	// 5 here), leaving only the one below it (slot 1) open.
	v.closeUpvalues(4)

	slots := openUpvalueSlots(v)
	require.Equal(t, []int{1}, slots)
	require.True(t, isSortedDescending(slots))
}
