package lang

import (
	"log/slog"
	"maps"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	exprparser "github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// ErrNativeCompile reports an expression builtin that failed to compile.
var ErrNativeCompile = NewError("failed to compile builtin expression")

// ExprBuiltin declares a builtin whose body is an expr-lang expression over
// named numeric parameters, e.g. {Name: "norm", Params: ["x", "y"],
// Expr: "sqrt(x^2 + y^2)"}.
type ExprBuiltin struct {
	Name   string   `json:"name"   yaml:"name"`
	Expr   string   `json:"expr"   yaml:"expr"`
	Params []string `json:"params" yaml:"params"`
}

// exprMath is the set of functions available to expression builtins in
// addition to expr-lang's own builtins.
var exprMath = map[string]any{
	"sqrt":  math.Sqrt,
	"ln":    math.Log,
	"log":   math.Log10,
	"exp":   math.Exp,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"hypot": math.Hypot,
	"pi":    math.Pi,
	"e":     math.E,
}

// RegisterExpr compiles b and registers it in r.
//
// The expression may refer only to its parameters, the math functions and
// constants sqrt, ln, log, exp, sin, cos, tan, hypot, pi and e, and expr-lang
// builtins. Its result is converted to a number.
func (r *Registry) RegisterExpr(b ExprBuiltin) (*Builtin, error) {
	program, err := compileExprBuiltin(b)
	if err != nil {
		return nil, err
	}

	params := b.Params

	return r.register(b.Name, params, len(params), func(args []Value) (Value, error) {
		x, err := Numbers(args)
		if err != nil {
			return nil, err
		}

		env := maps.Clone(exprMath)
		for i, name := range params {
			env[name] = x[i]
		}

		out, err := vm.Run(program, env)
		if err != nil {
			return nil, ErrTypeError.Wrap(err).
				Detail("builtin '%s' failed", b.Name)
		}

		f, ok := out.(float64)
		if !ok {
			return nil, ErrTypeError.
				Detail("builtin '%s' did not return a number", b.Name)
		}

		return Number(f), nil
	})
}

func compileExprBuiltin(b ExprBuiltin) (*vm.Program, error) {
	fail := func(err error) error {
		return ErrNativeCompile.Wrap(err).With(
			slog.String("builtin", b.Name),
			slog.String("expr", b.Expr),
		)
	}

	env := maps.Clone(exprMath)

	for _, name := range b.Params {
		if _, ok := env[name]; ok {
			return nil, fail(ErrDuplicateParameter.
				Detail("parameter '%s' shadows a name in scope", name))
		}

		env[name] = 0.0
	}

	tree, err := exprparser.Parse(b.Expr)
	if err != nil {
		return nil, fail(err)
	}

	v := &nameChecker{env: env}
	ast.Walk(&tree.Node, v)

	if v.err != nil {
		return nil, fail(v.err)
	}

	program, err := expr.Compile(b.Expr,
		expr.Env(env),
		expr.AsFloat64(),
		expr.Optimize(true),
	)
	if err != nil {
		return nil, fail(err)
	}

	return program, nil
}

// nameChecker rejects identifiers that are neither in env nor expr-lang
// builtins.
type nameChecker struct {
	env map[string]any
	err error
}

// Visit implements ast.Visitor.
func (c *nameChecker) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok || c.err != nil {
		return
	}

	if _, ok := c.env[ident.Value]; ok {
		return
	}

	if _, ok := builtin.Index[ident.Value]; ok {
		return
	}

	c.err = ErrUndefinedVariable.
		Detail("undefined variable '%s'", ident.Value).
		With(slog.String("name", ident.Value))
}
