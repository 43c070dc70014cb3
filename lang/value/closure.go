package value

// ObjClosure is what is actually callable: an ObjFunction paired with the
// resolved bindings for its free variables. A bare ObjFunction is never
// invoked by the VM.
type ObjClosure struct {
	Obj
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) gcObj() *Obj      { return &c.Obj }
func (c *ObjClosure) TypeName() string { return "function" }
func (c *ObjClosure) String() string   { return c.Function.String() }
