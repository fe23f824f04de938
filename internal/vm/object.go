package vm

import (
	"github.com/xirelogy/go-lox/internal/bytecode"
)

// ObjKind discriminates heap object kinds.
type ObjKind int

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjNative
)

// NativeFunc is a host-provided callable installed as a global.
type NativeFunc func(vm *VM, args []Value) (Value, error)

// Object is a heap-allocated value. All objects share the kind header and
// the allocation-list link; the remaining fields are populated per kind.
type Object struct {
	Kind ObjKind
	Next *Object

	// ObjString: immutable bytes plus their precomputed FNV-1a hash.
	Str  string
	Hash uint32

	// ObjFunction
	Proto *bytecode.Prototype

	// ObjNative
	Native NativeFunc
}

// hashString computes the 32-bit FNV-1a hash of the string bytes.
func hashString(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (vm *VM) track(o *Object) *Object {
	o.Next = vm.objects
	vm.objects = o
	return o
}

// Intern returns the canonical string object for the given bytes,
// allocating and registering a new object only on first sight.
func (vm *VM) Intern(s string) *Object {
	h := hashString(s)
	if obj := vm.strings.FindString(s, h); obj != nil {
		return obj
	}
	obj := vm.track(&Object{Kind: ObjString, Str: s, Hash: h})
	vm.strings.Set(obj, Nil())
	return obj
}

func (vm *VM) newFunction(proto *bytecode.Prototype) *Object {
	return vm.track(&Object{Kind: ObjFunction, Proto: proto})
}

// DefineNative interns the name and installs a native function in globals.
func (vm *VM) DefineNative(name string, fn NativeFunc) {
	key := vm.Intern(name)
	obj := vm.track(&Object{Kind: ObjNative, Native: fn})
	vm.globals.Set(key, ObjVal(obj))
}

// Free releases every object owned by the VM, clears both tables and resets
// execution state. The VM may be reused afterwards.
func (vm *VM) Free() {
	obj := vm.objects
	for obj != nil {
		next := obj.Next
		obj.Str = ""
		obj.Proto = nil
		obj.Native = nil
		obj.Next = nil
		obj = next
	}
	vm.objects = nil
	vm.globals.Reset()
	vm.strings.Reset()
	vm.resetStack()
}
