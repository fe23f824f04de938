package vm

import (
	"fmt"
)

// TraceInfo describes a single instruction dispatch for debugging/tracing.
type TraceInfo struct {
	Op       byte
	Function string
	Line     int
	IP       int
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// FrameInfo captures one call frame of a runtime-error stack trace.
// Function is empty for the top-level script.
type FrameInfo struct {
	Function string
	Line     int
}

// RuntimeError carries the failure message and the call-frame stack trace,
// innermost frame first.
type RuntimeError struct {
	Message string
	Trace   []FrameInfo
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// runtimeError reports a failure to stderr with the stack trace, resets the
// execution stacks and returns the error for the driver.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	trace := vm.stackTrace()
	fmt.Fprintln(vm.stderr, msg)
	for _, fi := range trace {
		if fi.Function == "" {
			fmt.Fprintf(vm.stderr, "[line %d] in script\n", fi.Line)
		} else {
			fmt.Fprintf(vm.stderr, "[line %d] in %s()\n", fi.Line, fi.Function)
		}
	}
	vm.resetStack()
	return &RuntimeError{Message: msg, Trace: trace}
}

// stackTrace walks the frames innermost to outermost. Each frame reports
// the line of the instruction it was executing, not the one it will execute
// next.
func (vm *VM) stackTrace() []FrameInfo {
	trace := make([]FrameInfo, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		trace = append(trace, FrameInfo{
			Function: fr.fn.Proto.Name,
			Line:     fr.fn.Proto.Chunk.LineAt(fr.lastOp),
		})
	}
	return trace
}

func (vm *VM) trace(fr *frame, op byte) {
	name := fr.fn.Proto.Name
	if name == "" {
		name = "script"
	}
	vm.traceHook(TraceInfo{
		Op:       op,
		Function: name,
		Line:     fr.fn.Proto.Chunk.LineAt(fr.lastOp),
		IP:       fr.lastOp,
	})
}
