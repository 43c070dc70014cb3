package value

import "fmt"

// ObjFunction is the compiled, immutable form of a function or the
// top-level script. It is never called directly by the VM: a Closure
// wraps it with bindings for its free variables.
type ObjFunction struct {
	Obj
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString // nil for the top-level script
}

func (f *ObjFunction) gcObj() *Obj    { return &f.Obj }
func (f *ObjFunction) TypeName() string { return "function" }
func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the signature of a built-in function. It receives the
// argument values and returns the result or an error, which the VM turns
// into a runtime error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a built-in function (e.g. clock) as a callable value.
type ObjNative struct {
	Obj
	Name string
	Fn   NativeFn
}

func (n *ObjNative) gcObj() *Obj      { return &n.Obj }
func (n *ObjNative) TypeName() string { return "native function" }
func (n *ObjNative) String() string   { return "<native fn>" }
