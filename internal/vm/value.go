package vm

import (
	"math"
	"strconv"
)

// ValueType discriminates the variants of a Value.
type ValueType int

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is the tagged union manipulated by the interpreter. Exactly one of
// the payload fields is meaningful, selected by Type.
type Value struct {
	Type ValueType
	B    bool
	Num  float64
	Obj  *Object
}

func Nil() Value {
	return Value{Type: ValNil}
}
func Bool(b bool) Value {
	return Value{Type: ValBool, B: b}
}
func Number(n float64) Value {
	return Value{Type: ValNumber, Num: n}
}
func ObjVal(o *Object) Value {
	return Value{Type: ValObj, Obj: o}
}

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }

func (v Value) IsString() bool {
	return v.Type == ValObj && v.Obj.Kind == ObjString
}

func (v Value) IsFunction() bool {
	return v.Type == ValObj && v.Obj.Kind == ObjFunction
}

// AsString returns the raw bytes of a string value. The caller must have
// verified the type.
func (v Value) AsString() string {
	return v.Obj.Str
}

// Falsey reports whether a value is treated as false: exactly nil and false.
// Everything else is truthy, including 0, "" and NaN.
func Falsey(v Value) bool {
	return v.Type == ValNil || (v.Type == ValBool && !v.B)
}

// Equal compares two values. Cross-variant comparisons are always false.
// Numbers compare by IEEE-754 value equality, so NaN != NaN and 0.0 == -0.0.
// Strings compare by identity, which interning makes equivalent to content.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValNil:
		return true
	case ValBool:
		return a.B == b.B
	case ValNumber:
		return a.Num == b.Num
	default:
		return a.Obj == b.Obj
	}
}

// Format renders a value the way print does.
func Format(v Value) string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.B {
			return "true"
		}
		return "false"
	case ValNumber:
		return FormatNumber(v.Num)
	default:
		return formatObject(v.Obj)
	}
}

// FormatNumber renders integral values in the f64-exact range as plain
// decimal and everything else in shortest round-trip form.
func FormatNumber(n float64) string {
	if !math.IsInf(n, 0) && math.Trunc(n) == n && math.Abs(n) <= 1<<53 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func formatObject(o *Object) string {
	switch o.Kind {
	case ObjString:
		return o.Str
	case ObjFunction:
		if o.Proto.Name == "" {
			return "<script>"
		}
		return "<fn " + o.Proto.Name + ">"
	default:
		return "<native fn>"
	}
}
