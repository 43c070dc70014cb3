package vm

import "github.com/elyk/loxvm/lang/value"

func (vm *VM) comparisonOp(op value.OpCode) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case value.OpGreater:
		vm.push(value.Bool(a > b))
	case value.OpGreaterEqual:
		vm.push(value.Bool(a >= b))
	case value.OpLess:
		vm.push(value.Bool(a < b))
	case value.OpLessEqual:
		vm.push(value.Bool(a <= b))
	}
	return nil
}

func (vm *VM) arithmeticOp(op value.OpCode) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	switch op {
	case value.OpSubtract:
		vm.push(a - b)
	case value.OpMultiply:
		vm.push(a * b)
	case value.OpDivide:
		vm.push(a / b)
	}
	return nil
}

// addOp implements the one polymorphic arithmetic opcode: ADD accepts two
// numbers or two strings, and nothing else. String concatenation leaves
// both operands on the value stack until the result has been allocated, so
// they stay roots during that allocation; they are also anchored for its
// duration, so they stay pinned even if the pops are moved ahead of it.
func (vm *VM) addOp() error {
	bVal, aVal := vm.peek(0), vm.peek(1)

	if bNum, ok := bVal.(value.Number); ok {
		if aNum, ok := aVal.(value.Number); ok {
			vm.pop()
			vm.pop()
			vm.push(aNum + bNum)
			return nil
		}
	}

	bStr, bOk := bVal.(*value.ObjString)
	aStr, aOk := aVal.(*value.ObjString)
	if !bOk || !aOk {
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}

	releaseA := vm.Heap.Anchor(aStr)
	releaseB := vm.Heap.Anchor(bStr)
	result := vm.Heap.TakeString(aStr.Chars + bStr.Chars)
	releaseB()
	releaseA()

	vm.pop()
	vm.pop()
	vm.push(result)
	return nil
}
