package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

const (
	defaultMaxFrames = 64
	frameSlots       = 256
)

// frame is one call-frame: the function being executed, the instruction
// pointer into its chunk, and the stack index of its slot 0 (the callee).
type frame struct {
	fn       *Object
	ip       int
	slotBase int
	lastOp   int
}

// VM is a stack-based bytecode interpreter. A VM instance must not be
// shared across goroutines.
type VM struct {
	stack     []Value
	frames    []frame
	globals   Table
	strings   Table
	objects   *Object
	maxFrames int
	stdout    io.Writer
	stderr    io.Writer
	traceHook TraceHook
}

// New constructs an empty VM wired to the process streams.
func New() *VM {
	return &VM{
		stack:     make([]Value, 0, defaultMaxFrames*frameSlots),
		frames:    make([]frame, 0, defaultMaxFrames),
		maxFrames: defaultMaxFrames,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// SetStdout redirects print output.
func (vm *VM) SetStdout(w io.Writer) {
	vm.stdout = w
}

// SetStderr redirects runtime-error reporting.
func (vm *VM) SetStderr(w io.Writer) {
	vm.stderr = w
}

// SetMaxFrames adjusts the call-depth bound for subsequent runs.
func (vm *VM) SetMaxFrames(n int) {
	if n > 0 {
		vm.maxFrames = n
	}
}

// SetTraceHook registers a callback for instruction-level tracing.
func (vm *VM) SetTraceHook(h TraceHook) {
	vm.traceHook = h
}

// Interpret executes a compiled script prototype to completion. On failure
// the returned error is a *RuntimeError and the stacks have been reset.
func (vm *VM) Interpret(proto *bytecode.Prototype) error {
	script := vm.newFunction(proto)
	vm.push(ObjVal(script))
	if err := vm.call(script, 0); err != nil {
		return err
	}
	return vm.run()
}

func (vm *VM) run() error {
	for {
		fr := vm.currentFrame()
		fr.lastOp = fr.ip
		op := vm.readByte(fr)
		if vm.traceHook != nil {
			vm.trace(fr, op)
		}
		switch op {
		case bytecode.OP_CONSTANT:
			vm.push(vm.constantValue(fr, vm.readByte(fr)))
		case bytecode.OP_NIL:
			vm.push(Nil())
		case bytecode.OP_TRUE:
			vm.push(Bool(true))
		case bytecode.OP_FALSE:
			vm.push(Bool(false))
		case bytecode.OP_POP:
			vm.pop()
		case bytecode.OP_GET_LOCAL:
			slot := vm.readByte(fr)
			vm.push(vm.stack[fr.slotBase+int(slot)])
		case bytecode.OP_SET_LOCAL:
			slot := vm.readByte(fr)
			// assignment is an expression: the value stays on the stack
			vm.stack[fr.slotBase+int(slot)] = vm.peek(0)
		case bytecode.OP_GET_GLOBAL:
			name := vm.readString(fr)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Str)
			}
			vm.push(v)
		case bytecode.OP_DEFINE_GLOBAL:
			name := vm.readString(fr)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OP_SET_GLOBAL:
			name := vm.readString(fr)
			if vm.globals.Set(name, vm.peek(0)) {
				// the failed write created the key; remove it again
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Str)
			}
		case bytecode.OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(Bool(Equal(a, b)))
		case bytecode.OP_GREATER:
			if err := vm.binaryCompare(func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case bytecode.OP_LESS:
			if err := vm.binaryCompare(func(a, b float64) bool { return a < b }); err != nil {
				return err
			}
		case bytecode.OP_ADD:
			if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
				b := vm.pop()
				a := vm.pop()
				vm.push(Number(a.Num + b.Num))
			} else if vm.peek(0).IsString() && vm.peek(1).IsString() {
				b := vm.pop()
				a := vm.pop()
				vm.push(ObjVal(vm.Intern(a.AsString() + b.AsString())))
			} else {
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}
		case bytecode.OP_SUBTRACT:
			if err := vm.binaryArith(func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case bytecode.OP_MULTIPLY:
			if err := vm.binaryArith(func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case bytecode.OP_DIVIDE:
			// division by zero follows IEEE-754: infinity or NaN
			if err := vm.binaryArith(func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}
		case bytecode.OP_NOT:
			vm.push(Bool(Falsey(vm.pop())))
		case bytecode.OP_NEGATE:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(Number(-vm.pop().Num))
		case bytecode.OP_PRINT:
			fmt.Fprintln(vm.stdout, Format(vm.pop()))
		case bytecode.OP_JUMP:
			off := vm.readShort(fr)
			fr.ip += off
		case bytecode.OP_JUMP_IF_FALSE:
			off := vm.readShort(fr)
			if Falsey(vm.peek(0)) {
				fr.ip += off
			}
		case bytecode.OP_LOOP:
			off := vm.readShort(fr)
			fr.ip -= off
		case bytecode.OP_CALL:
			argc := int(vm.readByte(fr))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
		case bytecode.OP_RETURN:
			result := vm.pop()
			base := fr.slotBase
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the script function itself
				return nil
			}
			vm.stack = vm.stack[:base]
			vm.push(result)
		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) callValue(callee Value, argc int) error {
	if callee.Type == ValObj {
		switch callee.Obj.Kind {
		case ObjFunction:
			return vm.call(callee.Obj, argc)
		case ObjNative:
			args := vm.stack[len(vm.stack)-argc:]
			result, err := callee.Obj.Native(vm, args)
			if err != nil {
				return vm.runtimeError("%s", err.Error())
			}
			vm.stack = vm.stack[:len(vm.stack)-argc-1]
			vm.push(result)
			return nil
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

func (vm *VM) call(fn *Object, argc int) error {
	if argc != fn.Proto.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Proto.Arity, argc)
	}
	if len(vm.frames) >= vm.maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, frame{
		fn:       fn,
		slotBase: len(vm.stack) - argc - 1,
	})
	return nil
}

func (vm *VM) currentFrame() *frame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

// peek returns the value n slots below the top without popping.
func (vm *VM) peek(n int) Value {
	return vm.stack[len(vm.stack)-1-n]
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
}

func (vm *VM) readByte(fr *frame) byte {
	b := fr.fn.Proto.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readShort(fr *frame) int {
	code := fr.fn.Proto.Chunk.Code
	hi := code[fr.ip]
	lo := code[fr.ip+1]
	fr.ip += 2
	return int(hi)<<8 | int(lo)
}

// constantValue materializes a constant-pool entry, interning strings and
// wrapping nested prototypes as function objects.
func (vm *VM) constantValue(fr *frame, idx byte) Value {
	switch c := fr.fn.Proto.Chunk.Consts[idx].(type) {
	case float64:
		return Number(c)
	case string:
		return ObjVal(vm.Intern(c))
	case *bytecode.Prototype:
		return ObjVal(vm.newFunction(c))
	default:
		return Nil()
	}
}

// readString reads a constant index and interns the name it refers to.
func (vm *VM) readString(fr *frame) *Object {
	idx := vm.readByte(fr)
	return vm.Intern(fr.fn.Proto.Chunk.Consts[idx].(string))
}

func (vm *VM) binaryArith(op func(a, b float64) float64) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop()
	a := vm.pop()
	vm.push(Number(op(a.Num, b.Num)))
	return nil
}

func (vm *VM) binaryCompare(op func(a, b float64) bool) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop()
	a := vm.pop()
	vm.push(Bool(op(a.Num, b.Num)))
	return nil
}
