package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elyk/loxvm/lang/value"
)

func TestTableSetHasDelete(t *testing.T) {
	h := value.NewHeap()
	a := h.CopyString("a")
	b := h.CopyString("b")

	var tbl value.Table
	require.True(t, tbl.Set(a))
	require.False(t, tbl.Set(a), "re-setting an existing key reports not-new")
	require.True(t, tbl.Has(a))
	require.False(t, tbl.Has(b))

	require.True(t, tbl.Delete(a))
	require.False(t, tbl.Has(a))
}

func TestTableDeleteOnEmptyReturnsFalse(t *testing.T) {
	// Regression for the tableDelete bug: deleting from an empty table (or
	// a table that simply doesn't contain the key) must report false, not
	// conflate "table non-empty" with "key present".
	var tbl value.Table
	h := value.NewHeap()
	missing := h.CopyString("missing")
	require.False(t, tbl.Delete(missing))

	present := h.CopyString("present")
	tbl.Set(present)
	require.False(t, tbl.Delete(missing))
	require.True(t, tbl.Delete(present))
	require.False(t, tbl.Delete(present), "deleting twice reports false the second time")
}

func TestTableSurvivesGrowthRehash(t *testing.T) {
	// Regression for the adjustCapacity bug: growing the table must rehash
	// every entry under its own key, not a shared/stale one. Insert enough
	// distinct keys to force at least one grow (initial capacity 8, max
	// load 0.75) and confirm every key is still found afterward.
	h := value.NewHeap()
	var tbl value.Table
	var keys []*value.ObjString
	for i := 0; i < 64; i++ {
		s := h.CopyString(string(rune('a' + i%26)) + string(rune('A'+i/26)))
		keys = append(keys, s)
		tbl.Set(s)
	}
	for _, k := range keys {
		require.True(t, tbl.Has(k), "key %q lost across rehash", k.Chars)
	}
}

func TestTableFindStringContinuesProbingPastTombstone(t *testing.T) {
	// Regression for the findEntry tombstone bug: deleting one key must not
	// make a different, still-present key unreachable, whether or not the
	// two ever actually collide in the open-addressing probe sequence.
	h := value.NewHeap()
	var tbl value.Table

	a := h.CopyString("first")
	b := h.CopyString("second")
	tbl.Set(a)
	tbl.Set(b)

	tbl.Delete(a)
	require.True(t, tbl.Has(b))
	require.Equal(t, b, tbl.FindString(b.Chars, b.Hash))
	require.Nil(t, tbl.FindString(a.Chars, a.Hash))
}
