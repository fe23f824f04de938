package runtime

import (
	"bytes"
	"testing"

	"github.com/xirelogy/go-lox/internal/compiler"
	"github.com/xirelogy/go-lox/internal/vm"
)

func TestRegisterAndLookup(t *testing.T) {
	Register(Spec{
		Name:  "testProbe",
		Arity: 1,
		Handler: func(rt *vm.VM, args []vm.Value) (vm.Value, error) {
			return args[0], nil
		},
	})
	spec, ok := LookupByName("testProbe")
	if !ok || spec.Arity != 1 {
		t.Fatalf("expected registered native, got %+v (ok=%v)", spec, ok)
	}
	if _, ok := LookupByName("absent"); ok {
		t.Fatalf("expected lookup miss")
	}
}

func TestInstallChecksArity(t *testing.T) {
	Register(Spec{
		Name:  "testDouble",
		Arity: 1,
		Handler: func(rt *vm.VM, args []vm.Value) (vm.Value, error) {
			return vm.Number(args[0].Num * 2), nil
		},
	})
	machine := vm.New()
	var out, errOut bytes.Buffer
	machine.SetStdout(&out)
	machine.SetStderr(&errOut)
	Install(machine)

	proto, errs := compiler.Compile("print testDouble(21);")
	if errs != nil {
		t.Fatalf("compile errors: %v", errs)
	}
	if err := machine.Interpret(proto); err != nil {
		t.Fatalf("interpret error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("expected 42, got %q", out.String())
	}

	proto, errs = compiler.Compile("testDouble();")
	if errs != nil {
		t.Fatalf("compile errors: %v", errs)
	}
	if err := machine.Interpret(proto); err == nil {
		t.Fatalf("expected arity mismatch error")
	}
}
