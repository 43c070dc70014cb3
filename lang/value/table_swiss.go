package value

import "github.com/dolthub/swiss"

// StringMap is a hash table keyed by interned string identity, backing the
// VM's globals table, every class's method table, and every instance's
// field table. It is grounded on the teacher's machine.Map (itself a thin
// wrapper over swiss.Map[Value, Value]): here the key type is narrowed to
// *ObjString, since every use in this package is "map from an interned
// name to a Value", which is exactly what dolthub/swiss is good at and
// does not need the intern table's weak-sweep semantics (entries are
// reached and marked by the GC instead of self-pruning; see Table for the
// one place that does need weak semantics).
type StringMap struct {
	m *swiss.Map[*ObjString, Value]
}

// NewStringMap returns a table with initial capacity for at least size
// entries.
func NewStringMap(size int) *StringMap {
	if size < 1 {
		size = 1
	}
	return &StringMap{m: swiss.NewMap[*ObjString, Value](uint32(size))}
}

// Get returns the value for key and whether it was present.
func (t *StringMap) Get(key *ObjString) (Value, bool) {
	return t.m.Get(key)
}

// Set inserts or overwrites the value for key.
func (t *StringMap) Set(key *ObjString, v Value) {
	t.m.Put(key, v)
}

// Delete removes key, returning whether it was present.
func (t *StringMap) Delete(key *ObjString) bool {
	return t.m.Delete(key)
}

// Has reports whether key is present, without returning its value.
func (t *StringMap) Has(key *ObjString) bool {
	_, ok := t.m.Get(key)
	return ok
}

// Len returns the number of entries.
func (t *StringMap) Len() int { return int(t.m.Count()) }

// Each calls fn for every entry, stopping early if fn returns false.
func (t *StringMap) Each(fn func(key *ObjString, v Value) bool) {
	t.m.Iter(func(k *ObjString, v Value) bool {
		return !fn(k, v)
	})
}

// AddAll copies every entry of src into t, overwriting existing keys. Used
// by OpInherit to copy a superclass's method table into a subclass.
func (t *StringMap) AddAll(src *StringMap) {
	src.Each(func(key *ObjString, v Value) bool {
		t.Set(key, v)
		return true
	})
}
