package value

import "fmt"

// ObjClass is a class: a name and a table of methods, each an ObjClosure.
// Single inheritance is implemented by copying the superclass's method
// table into the subclass's at OpInherit time (see StringMap.AddAll),
// rather than by a runtime lookup chain.
type ObjClass struct {
	Obj
	Name    *ObjString
	Methods *StringMap
}

// newClass allocates the Go-level representation of a class; callers
// should go through Heap.NewClass so the object is registered with the
// heap and tracked for GC.
func newClass(name *ObjString) *ObjClass {
	return &ObjClass{Obj: Obj{kind: KindClass}, Name: name, Methods: NewStringMap(8)}
}

func (c *ObjClass) gcObj() *Obj      { return &c.Obj }
func (c *ObjClass) TypeName() string { return "class" }
func (c *ObjClass) String() string   { return c.Name.Chars }

// ObjInstance is an instance of a class: the class it was constructed from,
// plus its own field table. Fields shadow methods of the same name when
// read via OpGetProperty/OpInvoke.
type ObjInstance struct {
	Obj
	Class  *ObjClass
	Fields *StringMap
}

func newInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Obj: Obj{kind: KindInstance}, Class: class, Fields: NewStringMap(8)}
}

func (i *ObjInstance) gcObj() *Obj      { return &i.Obj }
func (i *ObjInstance) TypeName() string { return "instance" }
func (i *ObjInstance) String() string   { return fmt.Sprintf("%s instance", i.Class.Name.Chars) }

// ObjBoundMethod pairs a receiver (always an Instance) with one of its
// class's method closures. x.m evaluates to a BoundMethod; calling it is
// indistinguishable from calling the method with x as an implicit first
// argument.
type ObjBoundMethod struct {
	Obj
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) gcObj() *Obj      { return &b.Obj }
func (b *ObjBoundMethod) TypeName() string { return "function" }
func (b *ObjBoundMethod) String() string   { return b.Method.String() }
