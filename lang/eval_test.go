package lang

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
)

// evalStrings evaluates src in a new interpreter and returns the formatted
// values it produced.
func evalStrings(ctx context.Context, src string, opts ...Option) ([]string, error) {
	values, err := NewInterpreter(opts...).Eval(ctx, src)

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatValue(v)
	}

	return out, err
}

func TestInterpreter_Eval(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		// Literals and arithmetic
		{"number", "42", []string{"42"}},
		{"boolean", "true, false", []string{"true", "false"}},
		{"addition", "1 + 2", []string{"3"}},
		{"float addition", "0.1 + 0.2", []string{"0.30000000000000004"}},
		{"precedence", "2 + 3 * 4 ^ 2", []string{"50"}},
		{"right associative power", "2 ^ 3 ^ 2", []string{"512"}},
		{"negated power", "-2 ^ 2", []string{"-4"}},
		{"juxtaposed minus", "5 -3", []string{"2"}},
		{"division", "7 / 2", []string{"3.5"}},
		{"large number", "10 ^ 21", []string{"1000000000000000000000"}},
		{"small number", "1 / 1024", []string{"0.0009765625"}},
		{"divide by zero", "1 / 0", []string{"inf"}},
		{"divide negative by zero", "-1 / 0", []string{"-inf"}},
		{"zero by zero", "0 / 0", []string{"NaN"}},

		// Comparison and logic
		{"less", "1 < 2, 2 < 1", []string{"true", "false"}},
		{"less equal", "2 <= 2", []string{"true"}},
		{"greater", "3 > 2", []string{"true"}},
		{"greater equal", "1 >= 2", []string{"false"}},
		{"number equality", "1 == 1, 1 != 1", []string{"true", "false"}},
		{"nan inequality", "0 / 0 == 0 / 0", []string{"false"}},
		{"boolean equality", "true == true, true != false", []string{"true", "true"}},
		{"not", "!true, !!true", []string{"false", "true"}},
		{"and", "true && false, true && true", []string{"false", "true"}},
		{"or", "false || false, false || true", []string{"false", "true"}},
		{"ternary", "1 < 2 ? 10 : 20", []string{"10"}},
		{"ternary chain", "x = 5, x < 0 ? -1 : x == 0 ? 0 : 1", []string{"1"}},

		// Scoping
		{"shadowing", "global = 5, {local = 2 * global, {local}}", []string{"10"}},
		{"inner shadow", "x = 1, {x = 2, x}, x", []string{"2", "1"}},
		{"block value", "{1, 2, 3}", []string{"3"}},
		{"block ending in assignment", "{x = 1}", nil},
		{"empty block", "{}", nil},
		{"group of block", "({1})", []string{"1"}},

		// Functions
		{"signature", "sq(x) = x * x, sq(12)", []string{"144"}},
		{"arrow", "sq = x -> x * x, sq(3)", []string{"9"}},
		{"nullary", "f() = 7, f()", []string{"7"}},
		{"immediate call", "((a, b) -> a - b)(10, 4)", []string{"6"}},
		{"function value", "f(x) = x, f", []string{"function"}},
		{"builtin value", "sqrt", []string{"function"}},
		{"curry", "curry(f,r)=l->f(l,r), add=(l,r)->l+r, add5=curry(add,5), add5(100)", []string{"105"}},
		{"closure", "adder(n) = x -> x + n, adder(2)(40)", []string{"42"}},
		{"factorial", "fact(n) = n <= 1 ? 1 : n * fact(n - 1), fact(10)", []string{"3628800"}},
		{"fibonacci", "fib(n) = n < 2 ? n : fib(n - 1) + fib(n - 2), fib(20)", []string{"6765"}},
		{"mutual recursion", "{even(n) = n == 0 ? true : odd(n - 1), odd(n) = n == 0 ? false : even(n - 1), even(10)}", []string{"true"}},
		{"lexical scope", "n = 1, f() = n, g(n) = f(), g(2)", []string{"1"}},
		{"function in block", "{sq(x) = x * x, sq(5)}", []string{"25"}},
		{"returned closure", "get_adder() = (a, b) -> a + b, get_adder()(9, 10)", []string{"19"}},

		// Builtins
		{"sqrt", "sqrt(16)", []string{"4"}},
		{"sqrt negative", "sqrt(-1)", []string{"NaN"}},
		{"abs", "abs(-3)", []string{"3"}},
		{"floor ceil", "floor(2.5), ceil(2.5)", []string{"2", "3"}},
		{"round", "round(2.5)", []string{"3"}},
		{"min max", "min(1, 2), max(1, 2)", []string{"1", "2"}},
		{"hypot", "hypot(3, 4)", []string{"5"}},
		{"ln exp", "ln(1), exp(0)", []string{"0", "1"}},
		{"builtin shadowed", "sqrt(x) = x, sqrt(4)", []string{"4"}},

		// Equality of functions
		{"same function", "foo() = 1, baz = foo, foo == baz", []string{"true"}},
		{"different definitions", "foo() = 1, bar() = 1, foo == bar", []string{"false"}},
		{"same builtin", "sqrt == sqrt", []string{"true"}},
		{"different builtins", "sqrt == abs", []string{"false"}},
		{"function and builtin", "f(x) = x, f == sqrt, f != sqrt", []string{"false", "true"}},
		{"equal closures", "adder(n) = x -> x + n, adder(1) == adder(1)", []string{"true"}},
		{"unequal closures", "adder(n) = x -> x + n, adder(1) == adder(2)", []string{"false"}},
		{"closures over globals", "k = 3, mk() = x -> x + k, mk() == mk()", []string{"true"}},
		{
			"recursive closures",
			"mk(n) = {go(k) = k <= 0 ? n : go(k - 1), go}, mk(1) == mk(1), mk(1) == mk(2)",
			[]string{"true", "false"},
		},
		{
			"closures capturing functions",
			"wrap(f) = x -> f(x), id(x) = x, neg(x) = -x, wrap(id) == wrap(id), wrap(id) == wrap(neg)",
			[]string{"true", "false"},
		},
		{
			"closures capturing mixed types",
			"mk(v) = () -> v, mk(1) == mk(true)",
			[]string{"false"},
		},
		{"literal occurrences differ", "a = x -> x, b = x -> x, a == b", []string{"false"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalStrings(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInterpreter_EvalErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantOut []string // values emitted before the error
		wantMsg string   // substring, optional
	}{
		{"undefined variable", "x", ErrUndefinedVariable, nil, "undefined variable 'x'"},
		{"out of scope", "global = 5, {local = 2 * global, {local}}, local", ErrUndefinedVariable, []string{"10"}, "'local'"},
		{"redefinition", "count = 1, count = 1 + 1", ErrAlreadyDefined, nil, "'count'"},
		{"signature redefinition", "f() = 1, f() = 2", ErrAlreadyDefined, nil, ""},
		{"redefinition in block", "{a = 1, a = 2}", ErrAlreadyDefined, nil, ""},
		{"too many arguments", "f(x) = x, f(1, 2)", ErrArgumentCountMismatch, nil, "takes 1 argument(s), got 2"},
		{"too few arguments", "f(x, y) = x, f(1)", ErrArgumentCountMismatch, nil, ""},
		{"builtin arity", "sqrt(1, 2)", ErrArgumentCountMismatch, nil, "'sqrt'"},
		{"anonymous arity", "(x -> x)()", ErrArgumentCountMismatch, nil, "<anonymous>"},
		{"call number", "1(2)", ErrTypeError, nil, "cannot call a non-function"},
		{"call boolean", "t = true, t()", ErrTypeError, nil, "cannot call a non-function"},
		{"negate boolean", "-true", ErrTypeError, nil, "cannot apply '-' to boolean"},
		{"not number", "!1", ErrTypeError, nil, ""},
		{"add boolean", "true + 1", ErrTypeError, nil, "cannot apply '+' to boolean and number"},
		{"compare boolean", "1 < true", ErrTypeError, nil, ""},
		{"equal mixed", "1 == true", ErrTypeError, nil, ""},
		{"not equal mixed", "false != 0", ErrTypeError, nil, ""},
		{"function equals number", "f() = 1, f == 1", ErrTypeError, nil, ""},
		{"and number", "1 && true", ErrTypeError, nil, ""},
		{"and right number", "true && 1", ErrTypeError, nil, ""},
		{"or right number", "false || 1", ErrTypeError, nil, ""},
		{"ternary number", "1 ? 2 : 3", ErrTypeError, nil, ""},
		{"builtin boolean", "sqrt(true)", ErrTypeError, nil, ""},
		{"void assignment", "x = {y = 1}", ErrVoidAsValue, nil, ""},
		{"void operand", "1 + {}", ErrVoidAsValue, nil, ""},
		{"void argument", "f(x) = 1, f({})", ErrVoidAsValue, nil, ""},
		{"void comparison", "{} == {}", ErrVoidAsValue, nil, ""},
		{"void callee", "{}()", ErrVoidAsValue, nil, ""},
		{"function returns void", "f() = {}, f()", ErrFunctionMustReturnValue, nil, ""},
		{"arrow returns void", "(() -> {x = 1})()", ErrFunctionMustReturnValue, nil, ""},
		{"output before error", "1, 2, nope, 3", ErrUndefinedVariable, []string{"1", "2"}, ""},
		{"chained assignment", "x = y = 1", ErrChainedAssignment, nil, ""},
		{"parse errors produce no output", "1, 2, 3 +", ErrExpectedExpression, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalStrings(t.Context(), tt.input)
			if err == nil {
				t.Fatalf("expected error, got %q", got)
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if strings.Join(got, "\n") != strings.Join(tt.wantOut, "\n") {
				t.Errorf("expected output %q, got %q", tt.wantOut, got)
			}

			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, err.Error())
			}

			if _, ok := WrapError(err).Position(); !ok {
				t.Errorf("expected error to carry a position: %v", err)
			}
		})
	}
}

func TestInterpreter_RuntimeTier(t *testing.T) {
	_, err := NewInterpreter().Eval(t.Context(), "a = 1\nb + 1")
	if err == nil {
		t.Fatal("expected error")
	}

	e := WrapError(err)
	if e.Tier() != TierRuntime {
		t.Errorf("expected tier %s, got %s", TierRuntime, e.Tier())
	}

	want := "RuntimeError at 2:1: undefined variable 'b'\n  2 | b + 1\n      ^"
	if got := Describe(err); got != want {
		t.Errorf("expected description:\n%s\ngot:\n%s", want, got)
	}
}

func TestInterpreter_RedefinitionPosition(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Position
	}{
		{"variable", "n = 1, n = 2", Position{Offset: 7, Line: 1, Column: 8}},
		{"signature", "f() = 1, f() = 2", Position{Offset: 9, Line: 1, Column: 10}},
		{"signature with params", "sq(x) = x\nsq(y) = y", Position{Offset: 10, Line: 2, Column: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInterpreter().Eval(t.Context(), tt.input)
			if !errors.Is(err, ErrAlreadyDefined) {
				t.Fatalf("expected %v, got %v", ErrAlreadyDefined, err)
			}

			pos, ok := WrapError(err).Position()
			if !ok {
				t.Fatal("expected error position")
			}

			if pos != tt.want {
				t.Errorf("expected position %+v, got %+v", tt.want, pos)
			}
		})
	}
}

func TestInterpreter_PersistentGlobals(t *testing.T) {
	in := NewInterpreter()
	ctx := t.Context()

	if _, err := in.Eval(ctx, "x = 20, sq(v) = v * v"); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	values, err := in.Eval(ctx, "sq(x) + 1")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if len(values) != 1 || values[0] != Number(401) {
		t.Errorf("expected [401], got %v", values)
	}

	// A failed statement keeps earlier bindings of the same unit.
	if _, err := in.Eval(ctx, "y = 1, z = nope, w = 2"); !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected undefined variable, got %v", err)
	}

	if _, ok := in.Global().Lookup("y"); !ok {
		t.Error("expected y to remain bound")
	}

	for _, name := range []string{"z", "w"} {
		if _, ok := in.Global().Lookup(name); ok {
			t.Errorf("expected %s to be unbound", name)
		}
	}

	if got, want := strings.Join(in.Global().Names(), ","), "sq,x,y"; got != want {
		t.Errorf("expected globals %s, got %s", want, got)
	}
}

func TestInterpreter_ChainedAssignmentBindsNothing(t *testing.T) {
	in := NewInterpreter()

	if _, err := in.Eval(t.Context(), "x = y = 1"); !errors.Is(err, ErrChainedAssignment) {
		t.Fatalf("expected chained assignment, got %v", err)
	}

	if names := in.Global().Names(); len(names) != 0 {
		t.Errorf("expected no bindings, got %v", names)
	}
}

func TestInterpreter_ShortCircuit(t *testing.T) {
	reg := DefaultRegistry()

	var calls int

	_, err := reg.Register("probe", 0, func([]Value) (Value, error) {
		calls++

		return Boolean(true), nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		input string
		want  string
		calls int
	}{
		{"false && probe()", "false", 0},
		{"true || probe()", "true", 0},
		{"true && probe()", "true", 1},
		{"false || probe()", "true", 1},
		{"true ? 1 : probe()", "1", 0},
		{"false ? probe() : 2", "2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			calls = 0

			got, err := evalStrings(t.Context(), tt.input, WithRegistry(reg))
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}

			if calls != tt.calls {
				t.Errorf("expected %d probe calls, got %d", tt.calls, calls)
			}
		})
	}
}

func TestInterpreter_ArgumentOrder(t *testing.T) {
	reg := DefaultRegistry()

	var order []string

	_, err := reg.Register("mark", 1, func(args []Value) (Value, error) {
		order = append(order, FormatValue(args[0]))

		return args[0], nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = NewInterpreter(WithRegistry(reg)).
		Eval(t.Context(), "f(a, b, c) = a, f(mark(1), mark(2), mark(3))")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got := strings.Join(order, ","); got != "1,2,3" {
		t.Errorf("expected left-to-right evaluation, got %s", got)
	}
}

func TestInterpreter_Canceled(t *testing.T) {
	t.Run("before evaluation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := NewInterpreter().Eval(ctx, "1")
		if !errors.Is(err, ErrCanceled) {
			t.Fatalf("expected canceled, got %v", err)
		}

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected cause context.Canceled, got %v", err)
		}
	})

	t.Run("runaway recursion", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		reg := DefaultRegistry()

		_, err := reg.Register("stop", 0, func([]Value) (Value, error) {
			cancel()

			return Number(0), nil
		})
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		_, err = NewInterpreter(WithRegistry(reg)).
			Eval(ctx, "loop(n) = stop() + loop(n + 1), loop(0)")
		if !errors.Is(err, ErrCanceled) {
			t.Fatalf("expected canceled, got %v", err)
		}

		if KindOf(err) != KindCanceled {
			t.Errorf("expected kind %s, got %s", KindCanceled, KindOf(err))
		}
	})
}

func TestInterpreter_Exec(t *testing.T) {
	var out strings.Builder

	in := NewInterpreter()

	err := in.Exec(t.Context(), "r = 2, pi = 3, pi * r ^ 2, r > 1, sq = x -> x, sq", &out)
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}

	if got, want := out.String(), "12\ntrue\nfunction\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestInterpreter_NumbersRoundTrip(t *testing.T) {
	inputs := []string{
		"0.1 + 0.2",
		"1 / 3",
		"2 / 3 * 1000000",
		"10 ^ 300",
		"1 / 10 ^ 300",
		"sqrt(2)",
		"-7.25",
		"123456789012345680000",
	}

	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			in := NewInterpreter()

			first, err := in.Eval(t.Context(), src)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			printed := FormatValue(first[0])

			again, err := NewInterpreter().Eval(t.Context(), printed)
			if err != nil {
				t.Fatalf("re-eval %q: %v", printed, err)
			}

			if again[0] != first[0] {
				t.Errorf("%s printed as %s re-parses to %v", first[0], printed, again[0])
			}

			if _, err := strconv.ParseFloat(strings.TrimPrefix(printed, "-"), 64); err != nil {
				t.Errorf("printed number %q is not decimal: %v", printed, err)
			}
		})
	}
}

func TestInterpreter_Lookup(t *testing.T) {
	in := NewInterpreter()

	if _, err := in.Eval(t.Context(), "x = 1"); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if v, ok := in.Lookup("x"); !ok || v != Number(1) {
		t.Errorf("expected x = 1, got %v, %t", v, ok)
	}

	v, ok := in.Lookup("sqrt")
	if !ok {
		t.Fatal("expected sqrt to resolve")
	}

	if b, ok := v.(*Builtin); !ok || b.Arity != 1 {
		t.Errorf("expected unary builtin, got %#v", v)
	}

	if _, ok := in.Lookup("nope"); ok {
		t.Error("expected nope to be unresolved")
	}

	if in.Registry() == nil {
		t.Error("expected a default registry")
	}

	if !math.IsNaN(float64(mustNumber(t, in, "sqrt(-4)"))) {
		t.Error("expected NaN")
	}
}

func mustNumber(t *testing.T, in *Interpreter, src string) Number {
	t.Helper()

	values, err := in.Eval(t.Context(), src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}

	n, ok := values[0].(Number)
	if !ok {
		t.Fatalf("eval %q: expected number, got %s", src, values[0].Type())
	}

	return n
}
