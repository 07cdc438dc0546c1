package lang

// bind resolves the captured names of every function definition in ast.
//
// A definition captures each name its body references that is not bound by
// one of its own parameters or by an assignment in one of its own blocks.
// Names are recorded in order of first use, which fixes the order in which
// closures are compared.
func bind(ast *AST) {
	var s scopes

	s.push()

	for _, stmt := range ast.Stmts {
		s.walk(stmt, func(string) {})
	}
}

// scopes is a stack of name sets, innermost last.
type scopes []map[string]struct{}

func (s *scopes) push(names ...string) {
	scope := make(map[string]struct{}, len(names))
	for _, name := range names {
		scope[name] = struct{}{}
	}

	*s = append(*s, scope)
}

func (s *scopes) pop() { *s = (*s)[:len(*s)-1] }

func (s *scopes) declare(name string) { (*s)[len(*s)-1][name] = struct{}{} }

func (s *scopes) bound(name string) bool {
	for i := len(*s) - 1; i >= 0; i-- {
		if _, ok := (*s)[i][name]; ok {
			return true
		}
	}

	return false
}

// walk visits e, reporting every name not bound in s to free.
func (s *scopes) walk(e Expr, free func(string)) {
	switch e := e.(type) {
	case *Identifier:
		if !s.bound(e.Name) {
			free(e.Name)
		}

	case *Unary:
		s.walk(e.Operand, free)

	case *Binary:
		s.walk(e.Left, free)
		s.walk(e.Right, free)

	case *Group:
		s.walk(e.Inner, free)

	case *Call:
		s.walk(e.Callee, free)

		for _, arg := range e.Args {
			s.walk(arg, free)
		}

	case *Conditional:
		s.walk(e.Cond, free)
		s.walk(e.Then, free)
		s.walk(e.Else, free)

	case *Block:
		s.push()

		for _, stmt := range e.Stmts {
			s.walk(stmt, free)
		}

		s.pop()

	case *FunctionLiteral:
		s.capture(e.Def, free)

	case *Assignment:
		switch t := e.Target.(type) {
		case *SignatureTarget:
			s.declare(t.Def.Name)
			s.capture(t.Def, free)

		case *VariableTarget:
			s.walk(e.Value, free)
			s.declare(t.Name)
		}
	}
}

// capture computes def.Captures and forwards the names that are also free in
// the enclosing scopes.
func (s *scopes) capture(def *Definition, free func(string)) {
	var (
		inner scopes
		seen  = make(map[string]struct{})
	)

	def.Captures = def.Captures[:0]

	inner.push(def.Params...)
	inner.walk(def.Body, func(name string) {
		if _, ok := seen[name]; ok {
			return
		}

		seen[name] = struct{}{}
		def.Captures = append(def.Captures, name)
	})

	for _, name := range def.Captures {
		if !s.bound(name) {
			free(name)
		}
	}
}
