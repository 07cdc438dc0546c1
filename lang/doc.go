// Package lang implements Clac, a small expression language for a command
// line calculator.
//
// A program is a sequence of statements. Each statement is an expression,
// which produces a value, or an assignment, which binds a name and produces
// nothing. Variables are immutable: a name can be bound once per scope.
// Blocks open a new scope, and functions close over the scope they are
// defined in.
//
// # Grammar
//
// Informal EBNF, loosest binding first:
//
//	Program     → Sequence EOF
//	Sequence    → ( Statement ','? )*
//	Statement   → Mapping ( '=' Operand )?
//	Operand     → Mapping                       (no '=' may follow)
//	Mapping     → Or ( '->' Mapping | '?' Operand ':' Mapping )?
//	Or          → And ( '||' And )*
//	And         → Comparison ( '&&' Comparison )*
//	Comparison  → Sum ( ('==' | '!=' | '<' | '<=' | '>' | '>=') Sum )?
//	Sum         → Term ( ('+' | '-') Term )*
//	Term        → Prefix ( ('*' | '/') Prefix )*
//	Prefix      → ('-' | '!') Prefix | Power
//	Power       → Call ( '^' Prefix )?
//	Call        → Primary ( '(' List ')' )*
//	Primary     → Number | Identifier | 'true' | 'false'
//	            | '(' List ')' | '{' Sequence '}'
//	List        → ( Operand ( ',' Operand )* ','? )?
//
// A parenthesized list that is empty, has a trailing comma, or has more than
// one item is a parameter list and must be followed by '->'.
//
// # Example
//
//	# Variables and arithmetic
//	r = 2, pi = 3.14159, pi * r^2
//
//	# Named functions may recurse
//	fact(n) = n <= 1 ? 1 : n * fact(n - 1)
//	fact(10)
//
//	# Closures
//	adder(n) = x -> x + n
//	add5 = adder(5), add5(100)
//
// # Values
//
// Values are numbers (float64), booleans, functions, and builtins. Statements
// that only bind names produce [Void], which cannot be used as an operand.
//
// Two functions compare equal when they come from the same definition and
// every variable they capture from an enclosing local scope is equal.
//
// # Builtins
//
// Names not bound in any scope are resolved in a [Registry]. The default
// registry provides sqrt, abs, floor, ceil, round, ln, log, exp, sin, cos, tan,
// min, max, and hypot. [Registry.RegisterExpr] adds builtins defined by
// expr-lang expressions.
//
// # Errors
//
// All errors are [*Error] values classified by [Kind] and [Tier]. Use
// [errors.Is] with the package sentinels, such as [ErrUndefinedVariable], to
// test for a specific condition, and [Describe] to render one for display.
package lang
