package lang

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/ardnew/clac/log"
)

// AST represents a parsed Clac program: an ordered sequence of top-level
// statements.
type AST struct {
	Stmts  []Expr
	Source string
	logger log.Logger // structured logger, set by options
}

// All returns an iterator over the top-level statements.
func (ast *AST) All() iter.Seq[Expr] {
	return func(yield func(Expr) bool) {
		for _, stmt := range ast.Stmts {
			if !yield(stmt) {
				return
			}
		}
	}
}

// Len returns the number of top-level statements.
func (ast *AST) Len() int { return len(ast.Stmts) }

// String returns the S-expression form of the program, e.g.
// "(a: (= n 10) (+ n 1))".
func (ast *AST) String() string {
	var b strings.Builder

	b.WriteString("(a:")

	for _, stmt := range ast.Stmts {
		b.WriteByte(' ')
		writeExpr(&b, stmt)
	}

	b.WriteByte(')')

	return b.String()
}

// Print writes an indented tree of the program to w.
func (ast *AST) Print(w io.Writer) {
	fmt.Fprintln(w, "program")

	for _, stmt := range ast.Stmts {
		printExpr(w, stmt, 1)
	}
}

// Expr is a node of the syntax tree. Assignments are Exprs as well, though
// the parser only accepts them in statement position.
type Expr interface {
	Pos() Position
	String() string
	exprNode()
}

// DefinitionID uniquely identifies one syntactic occurrence of a function
// definition within the process.
type DefinitionID uint64

var lastDefinitionID atomic.Uint64

func nextDefinitionID() DefinitionID {
	return DefinitionID(lastDefinitionID.Add(1))
}

// Definition is the shared part of a function literal or a function
// signature assignment.
type Definition struct {
	Name     string // empty for anonymous functions
	Params   []string
	Body     Expr
	Captures []string // free names of Body, in first-use order
	ID       DefinitionID
}

// Arity returns the number of declared parameters.
func (d *Definition) Arity() int { return len(d.Params) }

type (
	// NumberLiteral is a decimal number.
	NumberLiteral struct {
		Lexeme string
		Value  float64
		At     Position
	}

	// BoolLiteral is true or false.
	BoolLiteral struct {
		Value bool
		At    Position
	}

	// Identifier is a variable reference.
	Identifier struct {
		Name string
		At   Position
	}

	// Unary is a prefix operation: -x or !x.
	Unary struct {
		Operand Expr
		Op      TokenKind
		At      Position
	}

	// Binary is an infix operation, including && and ||.
	Binary struct {
		Left  Expr
		Right Expr
		Op    TokenKind
		At    Position
	}

	// Group is a parenthesized expression.
	Group struct {
		Inner Expr
		At    Position
	}

	// Call applies a function-category value to arguments.
	Call struct {
		Callee Expr
		Args   []Expr
		At     Position
	}

	// Block is a braced sequence of statements evaluated in a new frame.
	// HasValue reports whether the last statement is an expression.
	Block struct {
		Stmts    []Expr
		HasValue bool
		At       Position
	}

	// FunctionLiteral is an anonymous function literal: params -> body.
	FunctionLiteral struct {
		Def *Definition
		At  Position
	}

	// Conditional is cond ? then : else.
	Conditional struct {
		Cond Expr
		Then Expr
		Else Expr
		At   Position
	}

	// Assignment binds a name in the current frame.
	Assignment struct {
		Target Target
		Value  Expr
		At     Position
	}

	// tuple is a parenthesized list that is only valid as the parameter list
	// of a function literal. It never appears in a finished AST.
	tuple struct {
		Items []Expr
		At    Position
	}
)

// Target is the left-hand side of an assignment.
type Target interface {
	TargetName() string
	String() string
	targetNode()
}

type (
	// VariableTarget binds the value of an expression.
	VariableTarget struct {
		Name string
		At   Position
	}

	// SignatureTarget binds a named function, e.g. f(x, y) = x + y.
	SignatureTarget struct {
		Def *Definition
		At  Position
	}
)

func (e *NumberLiteral) Pos() Position   { return e.At }
func (e *BoolLiteral) Pos() Position     { return e.At }
func (e *Identifier) Pos() Position      { return e.At }
func (e *Unary) Pos() Position           { return e.At }
func (e *Binary) Pos() Position          { return e.At }
func (e *Group) Pos() Position           { return e.At }
func (e *Call) Pos() Position            { return e.At }
func (e *Block) Pos() Position           { return e.At }
func (e *FunctionLiteral) Pos() Position { return e.At }
func (e *Conditional) Pos() Position     { return e.At }
func (e *Assignment) Pos() Position      { return e.At }
func (e *tuple) Pos() Position           { return e.At }

func (*NumberLiteral) exprNode()   {}
func (*BoolLiteral) exprNode()     {}
func (*Identifier) exprNode()      {}
func (*Unary) exprNode()           {}
func (*Binary) exprNode()          {}
func (*Group) exprNode()           {}
func (*Call) exprNode()            {}
func (*Block) exprNode()           {}
func (*FunctionLiteral) exprNode() {}
func (*Conditional) exprNode()     {}
func (*Assignment) exprNode()      {}
func (*tuple) exprNode()           {}

func (e *NumberLiteral) String() string   { return sexpr(e) }
func (e *BoolLiteral) String() string     { return sexpr(e) }
func (e *Identifier) String() string      { return sexpr(e) }
func (e *Unary) String() string           { return sexpr(e) }
func (e *Binary) String() string          { return sexpr(e) }
func (e *Group) String() string           { return sexpr(e) }
func (e *Call) String() string            { return sexpr(e) }
func (e *Block) String() string           { return sexpr(e) }
func (e *FunctionLiteral) String() string { return sexpr(e) }
func (e *Conditional) String() string     { return sexpr(e) }
func (e *Assignment) String() string      { return sexpr(e) }
func (e *tuple) String() string           { return sexpr(e) }

func (t *VariableTarget) TargetName() string  { return t.Name }
func (t *SignatureTarget) TargetName() string { return t.Def.Name }

func (t *VariableTarget) String() string { return t.Name }

func (t *SignatureTarget) String() string {
	var b strings.Builder

	b.WriteByte('(')
	b.WriteString(t.Def.Name)

	for _, p := range t.Def.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}

	b.WriteByte(')')

	return b.String()
}

func (*VariableTarget) targetNode()  {}
func (*SignatureTarget) targetNode() {}

func sexpr(e Expr) string {
	var b strings.Builder

	writeExpr(&b, e)

	return b.String()
}

// writeExpr writes the S-expression form of e.
func writeExpr(b *strings.Builder, e Expr) {
	list := func(head string, items ...Expr) {
		b.WriteByte('(')
		b.WriteString(head)

		for _, item := range items {
			b.WriteByte(' ')
			writeExpr(b, item)
		}

		b.WriteByte(')')
	}

	switch e := e.(type) {
	case *NumberLiteral:
		b.WriteString(FormatNumber(e.Value))

	case *BoolLiteral:
		if e.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}

	case *Identifier:
		b.WriteString(e.Name)

	case *Unary:
		list(e.Op.String(), e.Operand)

	case *Binary:
		list(e.Op.String(), e.Left, e.Right)

	case *Group:
		list("p:", e.Inner)

	case *tuple:
		list("t:", e.Items...)

	case *Call:
		b.WriteByte('(')
		writeExpr(b, e.Callee)

		for _, arg := range e.Args {
			b.WriteByte(' ')
			writeExpr(b, arg)
		}

		b.WriteByte(')')

	case *Block:
		list("b:", e.Stmts...)

	case *FunctionLiteral:
		b.WriteString("(->")

		for _, p := range e.Def.Params {
			b.WriteByte(' ')
			b.WriteString(p)
		}

		b.WriteByte(' ')
		writeExpr(b, e.Def.Body)
		b.WriteByte(')')

	case *Conditional:
		list("?", e.Cond, e.Then, e.Else)

	case *Assignment:
		b.WriteString("(= ")
		b.WriteString(e.Target.String())
		b.WriteByte(' ')
		writeExpr(b, e.Value)
		b.WriteByte(')')

	case nil:
		b.WriteString("<nil>")

	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

// printExpr writes an indented tree of e at the given depth.
func printExpr(w io.Writer, e Expr, depth int) {
	indent := strings.Repeat("  ", depth)

	switch e := e.(type) {
	case *NumberLiteral:
		fmt.Fprintf(w, "%snumber %s\n", indent, e.Lexeme)

	case *BoolLiteral:
		fmt.Fprintf(w, "%sbool %t\n", indent, e.Value)

	case *Identifier:
		fmt.Fprintf(w, "%sidentifier %s\n", indent, e.Name)

	case *Unary:
		fmt.Fprintf(w, "%sunary %s\n", indent, e.Op)
		printExpr(w, e.Operand, depth+1)

	case *Binary:
		fmt.Fprintf(w, "%sbinary %s\n", indent, e.Op)
		printExpr(w, e.Left, depth+1)
		printExpr(w, e.Right, depth+1)

	case *Group:
		fmt.Fprintf(w, "%sgroup\n", indent)
		printExpr(w, e.Inner, depth+1)

	case *Call:
		fmt.Fprintf(w, "%scall (%d args)\n", indent, len(e.Args))
		printExpr(w, e.Callee, depth+1)

		for _, arg := range e.Args {
			printExpr(w, arg, depth+1)
		}

	case *Block:
		fmt.Fprintf(w, "%sblock (value=%t)\n", indent, e.HasValue)

		for _, stmt := range e.Stmts {
			printExpr(w, stmt, depth+1)
		}

	case *FunctionLiteral:
		fmt.Fprintf(w, "%sfunction #%d (%s)", indent, e.Def.ID,
			strings.Join(e.Def.Params, ", "))
		printCaptures(w, e.Def)
		printExpr(w, e.Def.Body, depth+1)

	case *Conditional:
		fmt.Fprintf(w, "%sconditional\n", indent)
		printExpr(w, e.Cond, depth+1)
		printExpr(w, e.Then, depth+1)
		printExpr(w, e.Else, depth+1)

	case *Assignment:
		switch t := e.Target.(type) {
		case *SignatureTarget:
			fmt.Fprintf(w, "%sdefine #%d %s(%s)", indent, t.Def.ID, t.Def.Name,
				strings.Join(t.Def.Params, ", "))
			printCaptures(w, t.Def)
		default:
			fmt.Fprintf(w, "%sassign %s\n", indent, e.Target.TargetName())
		}

		printExpr(w, e.Value, depth+1)

	default:
		fmt.Fprintf(w, "%s%s\n", indent, e)
	}
}

func printCaptures(w io.Writer, def *Definition) {
	if len(def.Captures) > 0 {
		fmt.Fprintf(w, " captures [%s]", strings.Join(def.Captures, ", "))
	}

	fmt.Fprintln(w)
}

// Walk traverses e depth-first, calling fn for each node before its children.
// Children are skipped when fn returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch e := e.(type) {
	case *Unary:
		Walk(e.Operand, fn)

	case *Binary:
		Walk(e.Left, fn)
		Walk(e.Right, fn)

	case *Group:
		Walk(e.Inner, fn)

	case *tuple:
		for _, item := range e.Items {
			Walk(item, fn)
		}

	case *Call:
		Walk(e.Callee, fn)

		for _, arg := range e.Args {
			Walk(arg, fn)
		}

	case *Block:
		for _, stmt := range e.Stmts {
			Walk(stmt, fn)
		}

	case *FunctionLiteral:
		Walk(e.Def.Body, fn)

	case *Conditional:
		Walk(e.Cond, fn)
		Walk(e.Then, fn)
		Walk(e.Else, fn)

	case *Assignment:
		Walk(e.Value, fn)
	}
}
