// Package value implements the runtime value model: the tagged Nil/Bool/
// Number/Object variant, the heap object kinds it can carry, string
// interning, and the mark-sweep garbage collector that owns the heap.
package value

import (
	"fmt"
)

// Value is any value the compiler and VM manipulate: Nil, Bool, Number, or a
// heap Object. Equality follows the language's rules (see Equal); Go's `==`
// on two Values only coincidentally agrees with it for Number and Bool, and
// is exactly right for Object (identity) because strings are interned.
type Value interface {
	// String renders the value the way `print` does.
	String() string
	// TypeName is the short runtime type name used in error messages.
	TypeName() string
}

// NilType is the type of the singleton Nil value.
type NilType struct{}

// Nil is the language's absence-of-a-value.
var Nil = NilType{}

func (NilType) String() string   { return "nil" }
func (NilType) TypeName() string { return "nil" }

// Bool is the language's boolean value.
type Bool bool

// True and False are the two Bool values, predeclared for convenience at
// call sites that would otherwise write Bool(true)/Bool(false).
const (
	True  = Bool(true)
	False = Bool(false)
)

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) TypeName() string { return "boolean" }

// Number is the language's only numeric type, an IEEE-754 double.
type Number float64

func (n Number) String() string { return fmt.Sprintf("%.15g", float64(n)) }
func (Number) TypeName() string { return "number" }

// Truth reports whether v is truthy. Only Nil and Bool(false) are falsey;
// every other value, including Number(0), is truthy.
func Truth(v Value) bool {
	switch v := v.(type) {
	case NilType:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements the language's `==`: same variant and same payload.
// Numbers follow IEEE `==` (so NaN != NaN). Objects compare by identity,
// which is correct for strings too because they are interned.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case NilType:
		_, ok := b.(NilType)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bb, ok := b.(Number)
		return ok && a == bb
	default:
		return a == b
	}
}
