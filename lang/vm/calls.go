package vm

import "github.com/elyk/loxvm/lang/value"

// callValue dispatches CALL argc by the heap kind of the callee, which sits
// at vm.peek(argc).
func (vm *VM) callValue(callee value.Value, argc int) error {
	switch c := callee.(type) {
	case *value.ObjClosure:
		return vm.call(c, argc)
	case *value.ObjNative:
		return vm.callNative(c, argc)
	case *value.ObjClass:
		return vm.callClass(c, argc)
	case *value.ObjBoundMethod:
		vm.stack[vm.stackTop-argc-1] = c.Receiver
		return vm.call(c.Method, argc)
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) call(closure *value.ObjClosure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if len(vm.frames) >= maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, callFrame{
		closure: closure,
		slots:   vm.stackTop - argc - 1,
	})
	return nil
}

func (vm *VM) callNative(native *value.ObjNative, argc int) error {
	args := vm.stack[vm.stackTop-argc : vm.stackTop]
	result, err := native.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	vm.stackTop -= argc + 1
	vm.push(result)
	return nil
}

func (vm *VM) callClass(class *value.ObjClass, argc int) error {
	instance := vm.Heap.NewInstance(class)
	vm.stack[vm.stackTop-argc-1] = instance
	if init, ok := class.Methods.Get(vm.Heap.InitString()); ok {
		return vm.call(init.(*value.ObjClosure), argc)
	}
	if argc != 0 {
		return vm.runtimeError("Expected 0 arguments but got %d.", argc)
	}
	return nil
}

// getProperty implements GET_PROPERTY: fields shadow methods.
func (vm *VM) getProperty(name *value.ObjString) error {
	instance, ok := vm.peek(0).(*value.ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}
	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return nil
	}
	return vm.bindMethod(instance.Class, name)
}

func (vm *VM) setProperty(name *value.ObjString) error {
	instance, ok := vm.peek(1).(*value.ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	instance.Fields.Set(name, vm.peek(0))
	v := vm.pop()
	vm.pop()
	vm.push(v)
	return nil
}

func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	bound := vm.Heap.NewBoundMethod(vm.peek(0), method.(*value.ObjClosure))
	vm.pop()
	vm.push(bound)
	return nil
}

func (vm *VM) defineMethod(name *value.ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).(*value.ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}

// invoke fuses GET_PROPERTY + CALL: if the property is a field holding a
// callable, it falls back to the general call path instead of materializing
// a BoundMethod first.
func (vm *VM) invoke(name *value.ObjString, argc int) error {
	receiver, ok := vm.peek(argc).(*value.ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}
	if v, ok := receiver.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = v
		return vm.callValue(v, argc)
	}
	return vm.invokeFromClass(receiver.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argc int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method.(*value.ObjClosure), argc)
}
