package vm

import (
	"context"
	"fmt"

	"github.com/elyk/loxvm/lang/value"
)

// run executes the dispatch loop until the outermost frame returns or a
// runtime error aborts it. The active frame is cached in locals (fr, a
// pointer to the frame, and code, its bytecode) and refreshed on
// CALL/INVOKE/SUPER_INVOKE/RETURN, mirroring the
// teacher's run() loop caching fr := callStack[len-1] across iterations.
func (vm *VM) run(ctx context.Context) error {
	fr := &vm.frames[len(vm.frames)-1]
	code := fr.closure.Function.Chunk.Code

	readByte := func() byte {
		b := code[fr.ip]
		fr.ip++
		return b
	}
	readUint16 := func() uint16 {
		hi := code[fr.ip]
		lo := code[fr.ip+1]
		fr.ip += 2
		return uint16(hi)<<8 | uint16(lo)
	}
	readConstant := func() value.Value {
		return fr.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *value.ObjString {
		return readConstant().(*value.ObjString)
	}

	for {
		vm.steps++
		if vm.MaxSteps > 0 && vm.steps >= vm.MaxSteps {
			return vm.runtimeError("thread cancelled: exceeded max steps")
		}
		select {
		case <-ctx.Done():
			return vm.runtimeError("thread cancelled: %v", ctx.Err())
		default:
		}

		op := value.OpCode(readByte())
		switch op {
		case value.OpConstant:
			vm.push(readConstant())

		case value.OpNil:
			vm.push(value.Nil)
		case value.OpTrue:
			vm.push(value.True)
		case value.OpFalse:
			vm.push(value.False)
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[fr.slots+slot])
		case value.OpSetLocal:
			slot := int(readByte())
			vm.stack[fr.slots+slot] = vm.peek(0)

		case value.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case value.OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case value.OpSetGlobal:
			name := readString()
			if !vm.globals.Has(name) {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.globals.Set(name, vm.peek(0))

		case value.OpGetUpvalue:
			slot := int(readByte())
			vm.push(*fr.closure.Upvalues[slot].Location)
		case value.OpSetUpvalue:
			slot := int(readByte())
			*fr.closure.Upvalues[slot].Location = vm.peek(0)

		case value.OpGetProperty:
			if err := vm.getProperty(readString()); err != nil {
				return err
			}
		case value.OpSetProperty:
			if err := vm.setProperty(readString()); err != nil {
				return err
			}
		case value.OpGetSuper:
			name := readString()
			superclass := vm.pop().(*value.ObjClass)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case value.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(!value.Equal(a, b)))
		case value.OpGreater, value.OpGreaterEqual, value.OpLess, value.OpLessEqual:
			if err := vm.comparisonOp(op); err != nil {
				return err
			}

		case value.OpAdd:
			if err := vm.addOp(); err != nil {
				return err
			}
		case value.OpSubtract, value.OpMultiply, value.OpDivide:
			if err := vm.arithmeticOp(op); err != nil {
				return err
			}

		case value.OpNot:
			vm.push(value.Bool(!value.Truth(vm.pop())))
		case value.OpNegate:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case value.OpPrint:
			v := vm.pop()
			if vm.Stdout != nil {
				fmt.Fprintln(vm.Stdout, v.String())
			}

		case value.OpJump:
			offset := readUint16()
			fr.ip += int(offset)
		case value.OpJumpIfFalse:
			offset := readUint16()
			if !value.Truth(vm.peek(0)) {
				fr.ip += int(offset)
			}
		case value.OpLoop:
			offset := readUint16()
			fr.ip -= int(offset)

		case value.OpCall:
			argc := int(readByte())
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpInvoke:
			name := readString()
			argc := int(readByte())
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpSuperInvoke:
			name := readString()
			argc := int(readByte())
			superclass := vm.pop().(*value.ObjClass)
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return err
			}
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpClosure:
			fn := readConstant().(*value.ObjFunction)
			closure := vm.Heap.NewClosure(fn, make([]*value.ObjUpvalue, fn.UpvalueCount))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(fr.slots + index)
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			vm.push(closure)

		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(fr.slots)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script closure
				return nil
			}
			vm.stackTop = fr.slots
			vm.push(result)
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Function.Chunk.Code

		case value.OpClass:
			name := readString()
			vm.push(vm.Heap.NewClass(name))
		case value.OpInherit:
			superclass, ok := vm.peek(1).(*value.ObjClass)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).(*value.ObjClass)
			subclass.Methods.AddAll(superclass.Methods)
			vm.pop() // the subclass; the superclass remains as the "super" local's value
		case value.OpMethod:
			vm.defineMethod(readString())

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}
