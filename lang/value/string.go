package value

import "strconv"

// ObjString is an immutable byte sequence with a precomputed FNV-1a hash.
// Every ObjString reachable from user code is canonical: Heap.CopyString and
// Heap.TakeString always return the single interned instance for a given
// byte sequence, so string equality is pointer equality.
type ObjString struct {
	Obj
	Chars string
	Hash  uint32
}

func (s *ObjString) gcObj() *Obj     { return &s.Obj }
func (s *ObjString) String() string  { return s.Chars }
func (s *ObjString) TypeName() string { return "string" }

// GoString quotes the string; fmt uses it for the %#v verb, where a string
// value must be told apart from its unquoted printed form.
func (s *ObjString) GoString() string { return strconv.Quote(s.Chars) }

// hashString computes the 32-bit FNV-1a hash of s, per the data model spec.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
