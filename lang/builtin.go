package lang

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

var lastBuiltinID atomic.Uint64

// Registry is a table of native functions visible to every program evaluated
// with it. Builtins are consulted only after the frame chain, so a program may
// shadow any of them.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]*Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Builtin)}
}

// DefaultRegistry returns a new registry holding the standard math natives.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, n := range natives {
		// Names are unique.
		_, _ = r.register(n.name, n.params, len(n.params), n.impl)
	}

	return r
}

// Register adds a native function with a fixed arity. The arity is checked
// before impl is called, and every argument passed to impl is non-void.
func (r *Registry) Register(
	name string,
	arity int,
	impl func(args []Value) (Value, error),
) (*Builtin, error) {
	return r.register(name, nil, arity, impl)
}

func (r *Registry) register(
	name string,
	params []string,
	arity int,
	impl func(args []Value) (Value, error),
) (*Builtin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.funcs[name]; ok {
		return nil, ErrAlreadyDefined.
			Detail("builtin '%s' is already defined", name).
			With(slog.String("builtin", name))
	}

	b := &Builtin{
		Impl:   impl,
		Name:   name,
		Params: params,
		ID:     BuiltinID(lastBuiltinID.Add(1)),
		Arity:  arity,
	}

	r.funcs[name] = b

	return b, nil
}

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.funcs[name]

	return b, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

type native struct {
	impl   func(args []Value) (Value, error)
	name   string
	params []string
}

var natives = []native{
	{name: "sqrt", params: []string{"x"}, impl: unary(math.Sqrt)},
	{name: "abs", params: []string{"x"}, impl: unary(math.Abs)},
	{name: "floor", params: []string{"x"}, impl: unary(math.Floor)},
	{name: "ceil", params: []string{"x"}, impl: unary(math.Ceil)},
	{name: "round", params: []string{"x"}, impl: unary(math.Round)},
	{name: "ln", params: []string{"x"}, impl: unary(math.Log)},
	{name: "log", params: []string{"x"}, impl: unary(math.Log10)},
	{name: "exp", params: []string{"x"}, impl: unary(math.Exp)},
	{name: "sin", params: []string{"x"}, impl: unary(math.Sin)},
	{name: "cos", params: []string{"x"}, impl: unary(math.Cos)},
	{name: "tan", params: []string{"x"}, impl: unary(math.Tan)},
	{name: "min", params: []string{"x", "y"}, impl: binary(math.Min)},
	{name: "max", params: []string{"x", "y"}, impl: binary(math.Max)},
	{name: "hypot", params: []string{"x", "y"}, impl: binary(math.Hypot)},
}

// Numbers converts args to float64, failing with [ErrTypeError] on the first
// argument that is not a [Number].
func Numbers(args []Value) ([]float64, error) {
	out := make([]float64, len(args))

	for i, arg := range args {
		n, ok := arg.(Number)
		if !ok {
			return nil, ErrTypeError.
				Detail("expected number for argument %d, got %s", i+1, arg.Type())
		}

		out[i] = float64(n)
	}

	return out, nil
}

func unary(fn func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		x, err := Numbers(args)
		if err != nil {
			return nil, err
		}

		return Number(fn(x[0])), nil
	}
}

func binary(fn func(float64, float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		x, err := Numbers(args)
		if err != nil {
			return nil, err
		}

		return Number(fn(x[0], x[1])), nil
	}
}
