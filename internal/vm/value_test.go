package vm

import (
	"math"
	"strconv"
	"testing"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

func protoNamed(name string) *bytecode.Prototype {
	return &bytecode.Prototype{Name: name, Chunk: &bytecode.Chunk{}}
}

func TestValueFalsey(t *testing.T) {
	machine := New()
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil(), true},
		{Bool(false), true},
		{Bool(true), false},
		{Number(0), false},
		{Number(math.NaN()), false},
		{ObjVal(machine.Intern("")), false},
	}
	for i, tc := range cases {
		if got := Falsey(tc.v); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestValueEqual(t *testing.T) {
	machine := New()
	cases := []struct {
		a, b Value
		want bool
	}{
		{Nil(), Nil(), true},
		{Bool(true), Bool(true), true},
		{Bool(true), Bool(false), false},
		{Number(1), Number(1), true},
		{Number(0), Number(math.Copysign(0, -1)), true},
		{Number(math.NaN()), Number(math.NaN()), false},
		{Number(0), Bool(false), false},
		{Nil(), Bool(false), false},
		{ObjVal(machine.Intern("a")), ObjVal(machine.Intern("a")), true},
		{ObjVal(machine.Intern("a")), ObjVal(machine.Intern("b")), false},
	}
	for i, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestFormatValues(t *testing.T) {
	machine := New()
	fn := machine.newFunction(protoNamed("fib"))
	script := machine.newFunction(protoNamed(""))
	native := machine.track(&Object{Kind: ObjNative})

	cases := []struct {
		v    Value
		want string
	}{
		{Nil(), "nil"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(7), "7"},
		{Number(-3), "-3"},
		{Number(0.5), "0.5"},
		{Number(1e6), "1000000"},
		{Number(9007199254740992), "9007199254740992"}, // 2^53
		{ObjVal(machine.Intern("hi")), "hi"},
		{ObjVal(fn), "<fn fib>"},
		{ObjVal(script), "<script>"},
		{ObjVal(native), "<native fn>"},
	}
	for i, tc := range cases {
		if got := Format(tc.v); got != tc.want {
			t.Fatalf("case %d: expected %q, got %q", i, tc.want, got)
		}
	}
}

func TestFormatNumberRoundTrip(t *testing.T) {
	// integers in the f64-exact range render as plain decimal, no ".0"
	for _, n := range []int64{0, 1, -1, 255, 123456789, 1 << 53, -(1 << 53)} {
		want := strconv.FormatInt(n, 10)
		if got := FormatNumber(float64(n)); got != want {
			t.Fatalf("%d: expected %q, got %q", n, want, got)
		}
	}
}
