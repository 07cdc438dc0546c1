package lang

import (
	"math"
	"strconv"
)

// Type classifies a runtime value.
type Type int

// Value types.
const (
	TypeVoid Type = iota
	TypeNumber
	TypeBoolean
	TypeFunction
	TypeBuiltin
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeFunction:
		return "function"
	case TypeBuiltin:
		return "builtin"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Callable reports whether values of type t can be called.
func (t Type) Callable() bool { return t == TypeFunction || t == TypeBuiltin }

// Value is the result of evaluating an expression.
type Value interface {
	Type() Type
	String() string
}

type (
	// Number is an IEEE-754 double.
	Number float64

	// Boolean is true or false.
	Boolean bool

	// Void is the result of a statement that produces no value.
	Void struct{}

	// Function is a closure: a definition together with the frame it was
	// evaluated in. The frame is shared, not copied.
	Function struct {
		Def   *Definition
		Frame *Frame
	}

	// Builtin is a native function provided by a [Registry]. Params names
	// its arguments for display and may be empty.
	Builtin struct {
		Impl   func(args []Value) (Value, error)
		Name   string
		Params []string
		ID     BuiltinID
		Arity  int
	}
)

// BuiltinID uniquely identifies a registered builtin within the process.
type BuiltinID uint64

func (Number) Type() Type    { return TypeNumber }
func (Boolean) Type() Type   { return TypeBoolean }
func (Void) Type() Type      { return TypeVoid }
func (*Function) Type() Type { return TypeFunction }
func (*Builtin) Type() Type  { return TypeBuiltin }

func (v Number) String() string  { return FormatNumber(float64(v)) }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }
func (Void) String() string      { return "" }
func (*Function) String() string { return "function" }
func (*Builtin) String() string  { return "function" }

// Name returns the name the function was defined with, or "" if anonymous.
func (f *Function) Name() string { return f.Def.Name }

// Arity returns the number of declared parameters.
func (f *Function) Arity() int { return f.Def.Arity() }

// FormatValue returns the display form of v: numbers in shortest
// round-trip decimal notation, booleans as true or false, and every callable
// value as "function". Void formats as the empty string.
func FormatValue(v Value) string {
	if v == nil {
		return ""
	}

	return v.String()
}

// FormatNumber formats f in non-exponent decimal notation using the fewest
// digits that parse back to the same value.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports whether a and b are equal.
//
// Numbers and booleans compare by value. Callable values are equal when
// they share a definition and every captured value is equal. Comparing values
// of different non-callable types, or a callable with a non-callable, is a
// type error.
func Equal(a, b Value) (bool, error) {
	if a.Type() == TypeVoid || b.Type() == TypeVoid {
		return false, ErrVoidAsValue
	}

	switch {
	case a.Type().Callable() && b.Type().Callable():
		return equalCallable(a, b, make(visited)), nil

	case a.Type() != b.Type() || a.Type().Callable():
		return false, ErrTypeError.
			Detail("cannot compare %s with %s", a.Type(), b.Type())
	}

	return a == b, nil
}

// visited holds closure pairs under comparison. A pair seen again is
// assumed equal, which terminates comparison of recursive closures.
type visited map[[2]*Function]struct{}

func equalCallable(a, b Value, seen visited) bool {
	switch a := a.(type) {
	case *Builtin:
		bb, ok := b.(*Builtin)

		return ok && a.ID == bb.ID

	case *Function:
		bf, ok := b.(*Function)
		if !ok {
			return false
		}

		return equalFunction(a, bf, seen)
	}

	return false
}

func equalFunction(a, b *Function, seen visited) bool {
	if a == b {
		return true
	}

	if a.Def.ID != b.Def.ID {
		return false
	}

	key := [2]*Function{a, b}
	if _, ok := seen[key]; ok {
		return true
	}

	seen[key] = struct{}{}

	for _, name := range a.Def.Captures {
		va, oka := a.Frame.captured(name)
		vb, okb := b.Frame.captured(name)

		if oka != okb {
			return false
		}

		if oka && !equalCaptured(va, vb, seen) {
			return false
		}
	}

	return true
}

// equalCaptured compares captured values, treating a type mismatch as
// inequality rather than an error.
func equalCaptured(a, b Value, seen visited) bool {
	if a.Type().Callable() && b.Type().Callable() {
		return equalCallable(a, b, seen)
	}

	return a == b
}
