package value

// ObjUpvalue is a captured-variable cell. While open, Location points into
// the VM's value stack and Slot records that stack index (the "index +
// owning reference" substitute for a raw pointer comparison); Next threads
// it into the VM's open-upvalue list, kept sorted by descending Slot.
// Closing an upvalue copies *Location into Closed and retargets Location
// to &Closed — after that, Location always points at Closed, never back
// into the stack, and Slot is no longer meaningful.
type ObjUpvalue struct {
	Obj
	Location *Value
	Slot     int
	Closed   Value
	Next     *ObjUpvalue
}

func (u *ObjUpvalue) gcObj() *Obj      { return &u.Obj }
func (u *ObjUpvalue) TypeName() string { return "upvalue" }
func (u *ObjUpvalue) String() string   { return "upvalue" }

// IsOpen reports whether the upvalue still points into the stack.
func (u *ObjUpvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close captures the current value of the stack slot the upvalue points
// to, after which the upvalue owns its value independently of the stack.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}
