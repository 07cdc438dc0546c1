package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ardnew/clac/log"
)

// Interpreter evaluates Clac programs against a persistent global frame.
// Bindings made by one call to [Interpreter.Eval] remain visible to the next.
//
// An Interpreter is not safe for concurrent use.
type Interpreter struct {
	global *Frame
	opts   options
}

// NewInterpreter returns an interpreter with an empty global frame.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{global: NewFrame(nil)}

	applyOptions(&in.opts, opts...)
	applyDefaults(&in.opts)

	return in
}

// Global returns the global frame.
func (in *Interpreter) Global() *Frame { return in.global }

// Registry returns the builtin registry consulted for names not bound in any
// frame.
func (in *Interpreter) Registry() *Registry { return in.opts.registry }

// Logger returns the interpreter's logger.
func (in *Interpreter) Logger() log.Logger { return in.opts.logger }

// Lookup resolves name as an identifier would: first the global frame, then
// the builtin registry.
func (in *Interpreter) Lookup(name string) (Value, bool) {
	if v, ok := in.global.Lookup(name); ok {
		return v, true
	}

	if b, ok := in.opts.registry.Lookup(name); ok {
		return b, true
	}

	return nil, false
}

// Eval parses and evaluates src, returning the values of its top-level
// statements that produced one.
//
// Evaluation stops at the first failing statement. The values of statements
// before it are returned along with the error, and their bindings remain in
// the global frame.
func (in *Interpreter) Eval(ctx context.Context, src string) ([]Value, error) {
	var out []Value

	err := in.Run(ctx, src, func(v Value) error {
		out = append(out, v)

		return nil
	})

	return out, err
}

// Exec parses and evaluates src, writing each non-void statement value to w
// on its own line as soon as it is produced.
func (in *Interpreter) Exec(ctx context.Context, src string, w io.Writer) error {
	return in.Run(ctx, src, func(v Value) error {
		_, err := fmt.Fprintln(w, FormatValue(v))

		return err
	})
}

// Run parses and evaluates src, calling emit with the value of each top-level
// statement that produced one. An error returned by emit stops evaluation.
func (in *Interpreter) Run(
	ctx context.Context,
	src string,
	emit func(Value) error,
) error {
	ast, err := ParseString(ctx, src,
		WithLogger(in.opts.logger),
		WithCache(!in.opts.noCache),
	)
	if err != nil {
		return err
	}

	return in.RunAST(ctx, ast, emit)
}

// RunAST evaluates a parsed program. See [Interpreter.Run].
func (in *Interpreter) RunAST(
	ctx context.Context,
	ast *AST,
	emit func(Value) error,
) error {
	ec := &evalContext{ctx: ctx, in: in}

	for i, stmt := range ast.Stmts {
		if err := ec.canceled(stmt.Pos()); err != nil {
			return err.WithSource(ast.Source)
		}

		v, err := ec.evaluate(stmt, in.global)
		if err != nil {
			e := WrapError(err).WithSource(ast.Source)

			in.opts.logger.TraceContext(ctx, "statement failed",
				slog.Int("index", i),
				slog.Any("error", e))

			return e
		}

		in.opts.logger.TraceContext(ctx, "statement complete",
			slog.Int("index", i),
			slog.String("type", v.Type().String()),
			slog.String("value", FormatValue(v)))

		if v.Type() == TypeVoid {
			continue
		}

		if err := emit(v); err != nil {
			return err
		}
	}

	return nil
}

// evalContext holds the state for one evaluation.
type evalContext struct {
	ctx context.Context
	in  *Interpreter
}

// evaluate evaluates e in frame f. The result may be [Void].
func (ec *evalContext) evaluate(e Expr, f *Frame) (Value, error) {
	switch e := e.(type) {
	case *NumberLiteral:
		return Number(e.Value), nil

	case *BoolLiteral:
		return Boolean(e.Value), nil

	case *Identifier:
		return ec.evaluateIdentifier(e, f)

	case *Group:
		return ec.evaluate(e.Inner, f)

	case *Unary:
		return ec.evaluateUnary(e, f)

	case *Binary:
		return ec.evaluateBinary(e, f)

	case *Conditional:
		return ec.evaluateConditional(e, f)

	case *Call:
		return ec.evaluateCall(e, f)

	case *Block:
		return ec.evaluateBlock(e, f)

	case *FunctionLiteral:
		return &Function{Def: e.Def, Frame: f}, nil

	case *Assignment:
		return ec.evaluateAssignment(e, f)

	default:
		return nil, ErrUnexpectedToken.WithPosition(e.Pos()).
			Detail("cannot evaluate %s", e)
	}
}

// evaluateValue evaluates e and rejects a void result.
func (ec *evalContext) evaluateValue(e Expr, f *Frame) (Value, error) {
	v, err := ec.evaluate(e, f)
	if err != nil {
		return nil, err
	}

	if v.Type() == TypeVoid {
		return nil, ErrVoidAsValue.WithPosition(e.Pos())
	}

	return v, nil
}

func (ec *evalContext) evaluateIdentifier(e *Identifier, f *Frame) (Value, error) {
	if v, ok := f.Lookup(e.Name); ok {
		return v, nil
	}

	if b, ok := ec.in.opts.registry.Lookup(e.Name); ok {
		return b, nil
	}

	return nil, ErrUndefinedVariable.WithPosition(e.At).
		Detail("undefined variable '%s'", e.Name).
		With(slog.String("name", e.Name))
}

func (ec *evalContext) evaluateUnary(e *Unary, f *Frame) (Value, error) {
	v, err := ec.evaluateValue(e.Operand, f)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case TokenMinus:
		if n, ok := v.(Number); ok {
			return -n, nil
		}

	case TokenBang:
		if b, ok := v.(Boolean); ok {
			return !b, nil
		}
	}

	return nil, ErrTypeError.WithPosition(e.At).
		Detail("cannot apply '%s' to %s", e.Op, v.Type())
}

func (ec *evalContext) evaluateBinary(e *Binary, f *Frame) (Value, error) {
	if e.Op == TokenAndAnd || e.Op == TokenPipePipe {
		return ec.evaluateLogical(e, f)
	}

	lhs, err := ec.evaluateValue(e.Left, f)
	if err != nil {
		return nil, err
	}

	rhs, err := ec.evaluateValue(e.Right, f)
	if err != nil {
		return nil, err
	}

	if e.Op == TokenEqualsEquals || e.Op == TokenBangEquals {
		eq, err := Equal(lhs, rhs)
		if err != nil {
			return nil, WrapError(err).WithPosition(e.At)
		}

		return Boolean(eq == (e.Op == TokenEqualsEquals)), nil
	}

	l, lok := lhs.(Number)
	r, rok := rhs.(Number)

	if !lok || !rok {
		return nil, ErrTypeError.WithPosition(e.At).
			Detail("cannot apply '%s' to %s and %s", e.Op, lhs.Type(), rhs.Type())
	}

	switch e.Op {
	case TokenPlus:
		return l + r, nil
	case TokenMinus:
		return l - r, nil
	case TokenStar:
		return l * r, nil
	case TokenSlash:
		return l / r, nil
	case TokenCaret:
		return Number(math.Pow(float64(l), float64(r))), nil
	case TokenLess:
		return Boolean(l < r), nil
	case TokenLessEquals:
		return Boolean(l <= r), nil
	case TokenGreater:
		return Boolean(l > r), nil
	case TokenGreaterEq:
		return Boolean(l >= r), nil
	}

	return nil, ErrUnsupportedOperator.WithPosition(e.At).
		Detail("unsupported binary operator '%s'", e.Op)
}

// evaluateLogical evaluates && and ||. The right operand is evaluated only
// when the left does not decide the result.
func (ec *evalContext) evaluateLogical(e *Binary, f *Frame) (Value, error) {
	lhs, err := ec.evaluateBoolean(e.Left, e.Op, f)
	if err != nil {
		return nil, err
	}

	if bool(lhs) == (e.Op == TokenPipePipe) {
		return lhs, nil
	}

	rhs, err := ec.evaluateBoolean(e.Right, e.Op, f)
	if err != nil {
		return nil, err
	}

	return rhs, nil
}

func (ec *evalContext) evaluateBoolean(
	e Expr,
	op TokenKind,
	f *Frame,
) (Boolean, error) {
	v, err := ec.evaluateValue(e, f)
	if err != nil {
		return false, err
	}

	b, ok := v.(Boolean)
	if !ok {
		return false, ErrTypeError.WithPosition(e.Pos()).
			Detail("expected boolean for '%s', got %s", op, v.Type())
	}

	return b, nil
}

func (ec *evalContext) evaluateConditional(
	e *Conditional,
	f *Frame,
) (Value, error) {
	cond, err := ec.evaluateBoolean(e.Cond, TokenQuestion, f)
	if err != nil {
		return nil, err
	}

	if cond {
		return ec.evaluate(e.Then, f)
	}

	return ec.evaluate(e.Else, f)
}

func (ec *evalContext) evaluateCall(e *Call, f *Frame) (Value, error) {
	callee, err := ec.evaluateValue(e.Callee, f)
	if err != nil {
		return nil, err
	}

	if !callee.Type().Callable() {
		return nil, ErrTypeError.WithPosition(e.At).
			Detail("cannot call a non-function").
			With(slog.String("type", callee.Type().String()))
	}

	args := make([]Value, len(e.Args))

	for i, arg := range e.Args {
		if args[i], err = ec.evaluateValue(arg, f); err != nil {
			return nil, err
		}
	}

	if err := ec.canceled(e.At); err != nil {
		return nil, err
	}

	switch fn := callee.(type) {
	case *Builtin:
		return ec.callBuiltin(e, fn, args)

	case *Function:
		return ec.callFunction(e, fn, args)
	}

	return nil, ErrTypeError.WithPosition(e.At).
		Detail("cannot call a non-function")
}

func (ec *evalContext) callBuiltin(
	e *Call,
	fn *Builtin,
	args []Value,
) (Value, error) {
	if len(args) != fn.Arity {
		return nil, arityError(e, fn.Name, fn.Arity, len(args))
	}

	ec.in.opts.logger.TraceContext(ec.ctx, "call builtin",
		slog.String("name", fn.Name),
		slog.Int("arity", fn.Arity))

	v, err := fn.Impl(args)
	if err != nil {
		ee := WrapError(err)
		if _, ok := ee.Position(); !ok {
			ee = ee.WithPosition(e.At)
		}

		if ee.kind == KindNone {
			ee = ErrTypeError.Wrap(err).WithPosition(e.At).
				Detail("builtin '%s' failed", fn.Name)
		}

		return nil, ee
	}

	if v == nil || v.Type() == TypeVoid {
		return nil, ErrFunctionMustReturnValue.WithPosition(e.At).
			With(slog.String("name", fn.Name))
	}

	return v, nil
}

func (ec *evalContext) callFunction(
	e *Call,
	fn *Function,
	args []Value,
) (Value, error) {
	def := fn.Def
	if len(args) != def.Arity() {
		return nil, arityError(e, def.Name, def.Arity(), len(args))
	}

	ec.in.opts.logger.TraceContext(ec.ctx, "call function",
		slog.String("name", def.Name),
		slog.Uint64("definition", uint64(def.ID)),
		slog.Int("arity", def.Arity()))

	frame := NewFrame(fn.Frame)

	for i, name := range def.Params {
		frame.vars[name] = args[i]
	}

	v, err := ec.evaluate(def.Body, frame)
	if err != nil {
		return nil, err
	}

	if v.Type() == TypeVoid {
		return nil, ErrFunctionMustReturnValue.WithPosition(def.Body.Pos()).
			With(slog.String("name", def.Name))
	}

	return v, nil
}

func (ec *evalContext) evaluateBlock(e *Block, f *Frame) (Value, error) {
	frame := NewFrame(f)

	var last Value = Void{}

	for _, stmt := range e.Stmts {
		v, err := ec.evaluate(stmt, frame)
		if err != nil {
			return nil, err
		}

		last = v
	}

	if !e.HasValue {
		return Void{}, nil
	}

	return last, nil
}

func (ec *evalContext) evaluateAssignment(
	e *Assignment,
	f *Frame,
) (Value, error) {
	var (
		name = e.Target.TargetName()
		v    Value
	)

	switch t := e.Target.(type) {
	case *SignatureTarget:
		v = &Function{Def: t.Def, Frame: f}

	case *VariableTarget:
		var err error
		if v, err = ec.evaluateValue(e.Value, f); err != nil {
			return nil, err
		}
	}

	if err := f.Define(name, v); err != nil {
		return nil, WrapError(err).WithPosition(e.At).
			With(slog.String("name", name))
	}

	return Void{}, nil
}

// canceled returns ErrCanceled if the evaluation context is done.
func (ec *evalContext) canceled(pos Position) *Error {
	if ec.ctx.Err() == nil {
		return nil
	}

	return ErrCanceled.Wrap(context.Cause(ec.ctx)).WithPosition(pos)
}

func arityError(e *Call, name string, want, got int) *Error {
	if name == "" {
		name = "<anonymous>"
	}

	return ErrArgumentCountMismatch.WithPosition(e.At).
		Detail("function '%s' takes %d argument(s), got %d", name, want, got).
		With(
			slog.String("name", name),
			slog.Int("expected", want),
			slog.Int("got", got),
		)
}
