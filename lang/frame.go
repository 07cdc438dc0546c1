package lang

import (
	"iter"
	"maps"
	"slices"
)

// Frame is one level of lexical scope. Names are bound at most once per frame
// and lookups proceed outward through parent frames.
//
// Frames are shared by reference among the evaluator and every closure
// created while they were current.
type Frame struct {
	parent *Frame
	vars   map[string]Value
}

// NewFrame returns an empty frame enclosed by parent, which may be nil.
func NewFrame(parent *Frame) *Frame {
	return &Frame{parent: parent, vars: make(map[string]Value)}
}

// Parent returns the enclosing frame, or nil for a global frame.
func (f *Frame) Parent() *Frame { return f.parent }

// Define binds name to v in f. It fails with [ErrAlreadyDefined] if name is
// already bound in f itself; bindings in parent frames are shadowed.
func (f *Frame) Define(name string, v Value) error {
	if _, ok := f.vars[name]; ok {
		return ErrAlreadyDefined.
			Detail("variable '%s' is already defined", name)
	}

	f.vars[name] = v

	return nil
}

// Lookup returns the value bound to name in the nearest frame that binds it.
func (f *Frame) Lookup(name string) (Value, bool) {
	v, owner := f.resolve(name)

	return v, owner != nil
}

// Has reports whether name is bound in f itself.
func (f *Frame) Has(name string) bool {
	_, ok := f.vars[name]

	return ok
}

// Names returns the names bound in f itself, sorted.
func (f *Frame) Names() []string {
	return slices.Sorted(maps.Keys(f.vars))
}

// All returns an iterator over the bindings of f itself, in name order.
func (f *Frame) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range f.Names() {
			if !yield(name, f.vars[name]) {
				return
			}
		}
	}
}

func (f *Frame) resolve(name string) (Value, *Frame) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.vars[name]; ok {
			return v, fr
		}
	}

	return nil, nil
}

// captured returns the value a closure over f observes for name. Bindings in
// the global frame are shared by every closure and are not considered
// captured.
func (f *Frame) captured(name string) (Value, bool) {
	v, owner := f.resolve(name)
	if owner == nil || owner.parent == nil {
		return nil, false
	}

	return v, true
}
