package vm_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elyk/loxvm/lang/value"
	"github.com/elyk/loxvm/lang/vm"
)

func run(t *testing.T, src string) (stdout string, res vm.Result, err error) {
	t.Helper()
	heap := value.NewHeap()
	machine := vm.New(heap)
	var out bytes.Buffer
	var errOut bytes.Buffer
	machine.Stdout = &out
	machine.Stderr = &errOut
	res, err = machine.Interpret(context.Background(), "test.lox", []byte(src))
	return out.String(), res, err
}

func TestArithmeticAndPrint(t *testing.T) {
	out, res, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, vm.Ok, res)
	require.Equal(t, "7\n", out)
}

// TestPrintUsesFifteenSignificantDigits guards printed output for sums that
// land on a non-exactly-representable float, e.g. 0.1 + 0.2.
func TestPrintUsesFifteenSignificantDigits(t *testing.T) {
	out, _, err := run(t, `print 0.1 + 0.2;`)
	require.NoError(t, err)
	require.Equal(t, "0.3\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, _, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestGlobalAndLocalVariables(t *testing.T) {
	out, _, err := run(t, `
		var a = "global";
		{
			var a = "local";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	require.Equal(t, "local\nglobal\n", out)
}

func TestControlFlow(t *testing.T) {
	out, _, err := run(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestForLoop(t *testing.T) {
	out, _, err := run(t, `
		for (var i = 0; i < 3; i = i + 1) {
			print i;
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestFunctionCallAndReturn(t *testing.T) {
	out, _, err := run(t, `
		fun add(a, b) {
			return a + b;
		}
		print add(2, 3);
	`)
	require.NoError(t, err)
	require.Equal(t, "5\n", out)
}

func TestClosureCapturesUpvalue(t *testing.T) {
	out, _, err := run(t, `
		fun makeCounter() {
			var i = 0;
			fun count() {
				i = i + 1;
				return i;
			}
			return count;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestClassMethodAndFieldBinding(t *testing.T) {
	out, _, err := run(t, `
		class Counter {
			init() {
				this.count = 0;
			}
			increment() {
				this.count = this.count + 1;
				return this.count;
			}
		}
		var c = Counter();
		print c.increment();
		print c.increment();
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n", out)
}

func TestInitializerAlwaysReturnsInstance(t *testing.T) {
	out, _, err := run(t, `
		class Thing {
			init() {
				return;
			}
		}
		var t = Thing();
		print t;
	`)
	require.NoError(t, err)
	require.Equal(t, "Thing instance\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, _, err := run(t, `
		class Animal {
			speak() {
				return "...";
			}
		}
		class Dog < Animal {
			speak() {
				return "Woof, but first: " + super.speak();
			}
		}
		print Dog().speak();
	`)
	require.NoError(t, err)
	require.Equal(t, "Woof, but first: ...\n", out)
}

func TestBoundMethodCallableStandalone(t *testing.T) {
	out, _, err := run(t, `
		class Greeter {
			greet() {
				return "hi";
			}
		}
		var g = Greeter();
		var m = g.greet;
		print m();
	`)
	require.NoError(t, err)
	require.Equal(t, "hi\n", out)
}

func TestRuntimeErrorUndefinedVariable(t *testing.T) {
	_, res, err := run(t, `print notDefined;`)
	require.Error(t, err)
	require.Equal(t, vm.RuntimeError, res)
	require.True(t, strings.Contains(err.Error(), "Undefined variable 'notDefined'."))
}

func TestRuntimeErrorTypeMismatch(t *testing.T) {
	_, res, err := run(t, `print 1 + "two";`)
	require.Error(t, err)
	require.Equal(t, vm.RuntimeError, res)
	require.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	_, _, err := run(t, `
		fun a() {
			return 1 + "two";
		}
		fun b() {
			return a();
		}
		b();
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "in a")
	require.Contains(t, err.Error(), "in b")
}

func TestCompileErrorResultDistinguishedFromRuntimeError(t *testing.T) {
	_, res, err := run(t, `var a = ;`)
	require.Error(t, err)
	require.Equal(t, vm.CompileError, res)
}

func TestMaxStepsCancelsLongRunningProgram(t *testing.T) {
	heap := value.NewHeap()
	machine := vm.New(heap)
	var out bytes.Buffer
	machine.Stdout = &out
	machine.MaxSteps = 10

	res, err := machine.Interpret(context.Background(), "test.lox", []byte(`
		var i = 0;
		while (true) {
			i = i + 1;
		}
	`))
	require.Error(t, err)
	require.Equal(t, vm.RuntimeError, res)
}

func TestStressGCDoesNotCorruptRunningProgram(t *testing.T) {
	heap := value.NewHeap()
	heap.StressGC = true
	machine := vm.New(heap)
	var out bytes.Buffer
	machine.Stdout = &out

	res, err := machine.Interpret(context.Background(), "test.lox", []byte(`
		fun makeCounter() {
			var i = 0;
			fun count() {
				i = i + 1;
				return i;
			}
			return count;
		}
		var counter = makeCounter();
		print counter();
		print counter();

		class Pair {
			init(a, b) {
				this.a = a;
				this.b = b;
			}
		}
		var p = Pair("x" + "y", "z" + "w");
		print p.a;
		print p.b;
	`))
	require.NoError(t, err)
	require.Equal(t, vm.Ok, res)
	require.Equal(t, "1\n2\nxy\nzw\n", out.String())
}
