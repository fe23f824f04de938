// Package lox compiles and executes Lox source programs on a stack-based
// bytecode virtual machine.
package lox

import (
	"errors"
	"fmt"
	"io"
	"os"

	_ "github.com/xirelogy/go-lox/internal/builtins"
	"github.com/xirelogy/go-lox/internal/compiler"
	"github.com/xirelogy/go-lox/internal/runtime"
	"github.com/xirelogy/go-lox/internal/vm"
)

// Result classifies the outcome of interpreting a source program.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// FrameTrace describes a single frame of a runtime-error stack trace.
// Function is empty for the top-level script.
type FrameTrace struct {
	Function string
	Line     int
}

// RuntimeError is an execution error surfaced from the VM, with the call
// stack at the point of failure, innermost frame first.
type RuntimeError struct {
	Message string
	Stack   []FrameTrace
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// TraceInfo captures execution steps for debug hooks.
type TraceInfo struct {
	Op       byte
	Function string
	Line     int
	IP       int
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// Value is a host-facing Lox value, used to exchange arguments and results
// with native functions.
type Value struct {
	v       vm.Value
	pending *string
}

// NilValue returns the nil value.
func NilValue() Value {
	return Value{v: vm.Nil()}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{v: vm.Bool(b)}
}

// NumberValue wraps a number.
func NumberValue(n float64) Value {
	return Value{v: vm.Number(n)}
}

// StringValue wraps string bytes. The string is interned into the owning
// VM when the value crosses into script code.
func StringValue(s string) Value {
	return Value{pending: &s}
}

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool {
	return v.pending == nil && v.v.IsNil()
}

// Bool returns the boolean payload when the kind matches.
func (v Value) Bool() (bool, bool) {
	if !v.v.IsBool() {
		return false, false
	}
	return v.v.B, true
}

// Number returns the numeric payload when the kind matches.
func (v Value) Number() (float64, bool) {
	if !v.v.IsNumber() {
		return 0, false
	}
	return v.v.Num, true
}

// String returns the string payload when the kind matches.
func (v Value) String() (string, bool) {
	if v.pending != nil {
		return *v.pending, true
	}
	if !v.v.IsString() {
		return "", false
	}
	return v.v.AsString(), true
}

// NativeFunc is the Go-side implementation of a Lox native function.
// The argument count has been validated against the registered arity.
type NativeFunc func(args []Value) (Value, error)

// VM interprets Lox source programs. It carries host natives and stream
// configuration; each Interpret call compiles and runs one program against
// the shared global environment.
type VM struct {
	core   *vm.VM
	stderr io.Writer
}

// NewVM constructs a VM wired to the process streams, with the standard
// natives installed.
func NewVM() *VM {
	core := vm.New()
	runtime.Install(core)
	return &VM{core: core, stderr: os.Stderr}
}

// SetStdout redirects print output.
func (m *VM) SetStdout(w io.Writer) {
	m.core.SetStdout(w)
}

// SetStderr redirects compile- and runtime-error reporting.
func (m *VM) SetStderr(w io.Writer) {
	m.stderr = w
	m.core.SetStderr(w)
}

// SetMaxFrames adjusts the call-depth bound.
func (m *VM) SetMaxFrames(n int) {
	m.core.SetMaxFrames(n)
}

// SetTraceHook attaches a debug hook that observes instruction dispatch.
func (m *VM) SetTraceHook(h TraceHook) {
	if h == nil {
		m.core.SetTraceHook(nil)
		return
	}
	m.core.SetTraceHook(func(info vm.TraceInfo) {
		h(TraceInfo{
			Op:       info.Op,
			Function: info.Function,
			Line:     info.Line,
			IP:       info.IP,
		})
	})
}

// RegisterNative binds a host function as a global with a fixed arity.
func (m *VM) RegisterNative(name string, arity int, fn NativeFunc) {
	m.core.DefineNative(name, func(rt *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != arity {
			return vm.Nil(), fmt.Errorf("Expected %d arguments but got %d.", arity, len(args))
		}
		wrapped := make([]Value, len(args))
		for i, a := range args {
			wrapped[i] = Value{v: a}
		}
		result, err := fn(wrapped)
		if err != nil {
			return vm.Nil(), err
		}
		return unwrapValue(rt, result), nil
	})
}

// Interpret compiles and runs one source program, reporting diagnostics on
// the configured stderr.
func (m *VM) Interpret(source string) Result {
	result, _ := m.Run(source)
	return result
}

// Run behaves like Interpret but also returns the failure, either the
// joined compile diagnostics or a *RuntimeError.
func (m *VM) Run(source string) (Result, error) {
	proto, compileErrs := compiler.Compile(source)
	if compileErrs != nil {
		for _, err := range compileErrs {
			fmt.Fprintln(m.stderr, err)
		}
		return ResultCompileError, errors.Join(compileErrs...)
	}
	if err := m.core.Interpret(proto); err != nil {
		return ResultRuntimeError, convertRuntimeError(err)
	}
	return ResultOK, nil
}

// Disassemble emits assembly-style bytecode output for the function values
// currently bound as globals.
func (m *VM) Disassemble(w io.Writer) error {
	return m.core.Disassemble(w)
}

// Free releases every object owned by the VM. The VM may be reused.
func (m *VM) Free() {
	m.core.Free()
}

// Interpret runs source on a fresh VM wired to the process streams.
func Interpret(source string) Result {
	return NewVM().Interpret(source)
}

func unwrapValue(rt *vm.VM, v Value) vm.Value {
	if v.pending != nil {
		return vm.ObjVal(rt.Intern(*v.pending))
	}
	return v.v
}

func convertRuntimeError(err error) error {
	rte, ok := err.(*vm.RuntimeError)
	if !ok {
		return err
	}
	stack := make([]FrameTrace, len(rte.Trace))
	for i, fr := range rte.Trace {
		stack[i] = FrameTrace{Function: fr.Function, Line: fr.Line}
	}
	return &RuntimeError{Message: rte.Message, Stack: stack}
}
