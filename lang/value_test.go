package lang

import (
	"errors"
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tenth, fifth := 0.1, 0.2

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "-0"},
		{42, "42"},
		{-3.5, "-3.5"},
		{tenth + fifth, "0.30000000000000004"},
		{1e21, "1000000000000000000000"},
		{1e-7, "0.0000001"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatNumber(tt.in); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	fn := &Function{Def: &Definition{Name: "f", Params: []string{"x"}}}
	b := &Builtin{Name: "sqrt", Arity: 1}

	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"number", Number(2.5), "2.5"},
		{"true", Boolean(true), "true"},
		{"false", Boolean(false), "false"},
		{"function", fn, "function"},
		{"builtin", b, "function"},
		{"void", Void{}, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if fn.Name() != "f" || fn.Arity() != 1 {
		t.Errorf("expected f/1, got %s/%d", fn.Name(), fn.Arity())
	}
}

func TestType(t *testing.T) {
	tests := []struct {
		typ      Type
		name     string
		callable bool
	}{
		{TypeVoid, "void", false},
		{TypeNumber, "number", false},
		{TypeBoolean, "boolean", false},
		{TypeFunction, "function", true},
		{TypeBuiltin, "builtin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.name {
				t.Errorf("expected %s, got %s", tt.name, got)
			}

			if got := tt.typ.Callable(); got != tt.callable {
				t.Errorf("expected callable %t, got %t", tt.callable, got)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	global := NewFrame(nil)
	local := NewFrame(global)
	other := NewFrame(global)

	if err := local.Define("n", Number(1)); err != nil {
		t.Fatal(err)
	}

	if err := other.Define("n", Number(2)); err != nil {
		t.Fatal(err)
	}

	def := &Definition{Params: []string{"x"}, Captures: []string{"n"}, ID: nextDefinitionID()}
	defOther := &Definition{Params: []string{"x"}, Captures: []string{"n"}, ID: nextDefinitionID()}

	sqrt := &Builtin{Name: "sqrt", Arity: 1, ID: 1}
	abs := &Builtin{Name: "abs", Arity: 1, ID: 2}

	tests := []struct {
		name    string
		a, b    Value
		want    bool
		wantErr error
	}{
		{"equal numbers", Number(1), Number(1), true, nil},
		{"unequal numbers", Number(1), Number(2), false, nil},
		{"nan", Number(math.NaN()), Number(math.NaN()), false, nil},
		{"zero signs", Number(0), Number(math.Copysign(0, -1)), true, nil},
		{"equal booleans", Boolean(true), Boolean(true), true, nil},
		{"unequal booleans", Boolean(true), Boolean(false), false, nil},
		{"number and boolean", Number(1), Boolean(true), false, ErrTypeError},
		{"number and function", Number(1), &Function{Def: def, Frame: local}, false, ErrTypeError},
		{"builtin and boolean", sqrt, Boolean(true), false, ErrTypeError},
		{"void", Void{}, Number(1), false, ErrVoidAsValue},
		{"same builtin", sqrt, sqrt, true, nil},
		{"different builtins", sqrt, abs, false, nil},
		{"function and builtin", &Function{Def: def, Frame: local}, sqrt, false, nil},
		{
			"same definition and captures",
			&Function{Def: def, Frame: local},
			&Function{Def: def, Frame: NewFrame(local)},
			true, nil,
		},
		{
			"same definition different captures",
			&Function{Def: def, Frame: local},
			&Function{Def: def, Frame: other},
			false, nil,
		},
		{
			"different definitions",
			&Function{Def: def, Frame: local},
			&Function{Def: defOther, Frame: local},
			false, nil,
		},
		{
			"captures in global frame are ignored",
			&Function{Def: def, Frame: global},
			&Function{Def: def, Frame: global},
			true, nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equal(tt.a, tt.b)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %t, got %t", tt.want, got)
			}
		})
	}
}

func TestEqual_Recursive(t *testing.T) {
	global := NewFrame(nil)
	def := &Definition{Name: "loop", Captures: []string{"loop"}, ID: nextDefinitionID()}

	mk := func() *Function {
		f := NewFrame(global)
		fn := &Function{Def: def, Frame: f}

		if err := f.Define("loop", fn); err != nil {
			t.Fatal(err)
		}

		return fn
	}

	eq, err := Equal(mk(), mk())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !eq {
		t.Error("expected self-referencing closures to be equal")
	}
}
