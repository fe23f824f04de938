package vm

import (
	"bytes"
	"testing"

	"github.com/xirelogy/go-lox/internal/compiler"
)

func interpretSource(t *testing.T, machine *VM, src string) {
	t.Helper()
	proto, errs := compiler.Compile(src)
	if errs != nil {
		t.Fatalf("compile errors: %v", errs)
	}
	if err := machine.Interpret(proto); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
}

func TestStacksEmptyAfterRun(t *testing.T) {
	machine := New()
	machine.SetStdout(&bytes.Buffer{})
	interpretSource(t, machine, `
fun f(n) { return n + 1; }
var r = f(1) + f(2);
print r;
`)
	if len(machine.stack) != 0 {
		t.Fatalf("expected empty value stack, got %d values", len(machine.stack))
	}
	if len(machine.frames) != 0 {
		t.Fatalf("expected empty frame stack, got %d frames", len(machine.frames))
	}
}

func TestAllocationListTracksObjects(t *testing.T) {
	machine := New()
	machine.SetStdout(&bytes.Buffer{})
	interpretSource(t, machine, `var s = "a" + "b";`)

	count := 0
	for obj := machine.objects; obj != nil; obj = obj.Next {
		count++
	}
	// at least the script function, the literal strings, the concatenation
	// result and the global's name
	if count < 4 {
		t.Fatalf("expected tracked objects, got %d", count)
	}

	machine.Free()
	if machine.objects != nil {
		t.Fatalf("expected empty allocation list after Free")
	}
	if machine.strings.count != 0 || machine.globals.count != 0 {
		t.Fatalf("expected cleared tables after Free")
	}
}

func TestConstantStringsIntern(t *testing.T) {
	machine := New()
	machine.SetStdout(&bytes.Buffer{})
	interpretSource(t, machine, `var a = "dup"; var b = "dup";`)

	seen := 0
	for obj := machine.objects; obj != nil; obj = obj.Next {
		if obj.Kind == ObjString && obj.Str == "dup" {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("expected one interned object for repeated literal, got %d", seen)
	}
}
