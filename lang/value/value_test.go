package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elyk/loxvm/lang/value"
)

func TestTruth(t *testing.T) {
	require.True(t, value.Truth(value.True))
	require.False(t, value.Truth(value.False))
	require.False(t, value.Truth(value.Nil))
	require.True(t, value.Truth(value.Number(0)))
	require.True(t, value.Truth(value.Number(-1)))
}

func TestEqual(t *testing.T) {
	require.True(t, value.Equal(value.Nil, value.Nil))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.False(t, value.Equal(value.Number(1), value.True))
	require.True(t, value.Equal(value.True, value.True))
	require.False(t, value.Equal(value.True, value.False))

	zero := value.Number(0)
	nan := zero / zero
	require.False(t, value.Equal(nan, nan))
}

func TestEqualStringsByInterning(t *testing.T) {
	h := value.NewHeap()
	a := h.CopyString("hello")
	b := h.CopyString("hello")
	require.True(t, a == b, "equal strings must intern to the same object")
	require.True(t, value.Equal(a, b))
}

func TestNumberString(t *testing.T) {
	require.Equal(t, "1", value.Number(1).String())
	require.Equal(t, "1.5", value.Number(1.5).String())
}

// TestNumberStringUsesFifteenSignificantDigits guards against regressing to
// Go's shortest-round-trip formatting, which disagrees with %.15g for sums
// like 0.1 + 0.2 that are not exactly representable.
func TestNumberStringUsesFifteenSignificantDigits(t *testing.T) {
	require.Equal(t, "0.3", (value.Number(0.1) + value.Number(0.2)).String())
}
