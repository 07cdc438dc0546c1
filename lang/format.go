package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the AST as Clac source to the writer.
//
// Parsing the output yields a program with the same structure. With indent
// greater than zero, top-level statements and block items are written one per
// line; otherwise the program is written on a single line.
func (ast *AST) Format(_ context.Context, w io.Writer, indent int) error {
	f := &formatter{indent: indent}

	f.sequence(ast.Stmts, 0, false)

	if _, err := io.WriteString(w, f.String()); err != nil {
		return err
	}

	// Final newline
	_, err := fmt.Fprintln(w)

	return err
}

// FormatJSON writes the AST as JSON to the writer.
func (ast *AST) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ast, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ast)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST as YAML to the writer.
func (ast *AST) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ast.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// formatter renders expressions as source text.
type formatter struct {
	strings.Builder
	indent int
}

func (f *formatter) newline(depth int) {
	f.WriteByte('\n')
	f.WriteString(strings.Repeat(" ", depth*f.indent))
}

// sequence writes comma-separated statements. Commas are always written so
// that adjacent statements never merge into one expression.
func (f *formatter) sequence(stmts []Expr, depth int, nested bool) {
	for i, stmt := range stmts {
		switch {
		case f.indent > 0 && (nested || i > 0):
			f.newline(depth)
		case i > 0:
			f.WriteByte(' ')
		}

		f.expr(stmt, depth)

		if i < len(stmts)-1 {
			f.WriteByte(',')
		}
	}
}

func (f *formatter) expr(e Expr, depth int) {
	switch e := e.(type) {
	case *NumberLiteral:
		f.WriteString(e.Lexeme)

	case *BoolLiteral:
		fmt.Fprint(f, e.Value)

	case *Identifier:
		f.WriteString(e.Name)

	case *Unary:
		f.WriteString(e.Op.String())
		f.expr(e.Operand, depth)

	case *Binary:
		f.expr(e.Left, depth)
		f.WriteByte(' ')
		f.WriteString(e.Op.String())
		f.WriteByte(' ')
		f.expr(e.Right, depth)

	case *Group:
		f.WriteByte('(')
		f.expr(e.Inner, depth)
		f.WriteByte(')')

	case *Call:
		f.expr(e.Callee, depth)
		f.list(e.Args, depth)

	case *Block:
		f.WriteByte('{')

		if len(e.Stmts) > 0 {
			f.sequence(e.Stmts, depth+1, true)

			if f.indent > 0 {
				f.newline(depth)
			}
		}

		f.WriteByte('}')

	case *FunctionLiteral:
		if len(e.Def.Params) == 1 {
			f.WriteString(e.Def.Params[0])
		} else {
			f.WriteByte('(')
			f.WriteString(strings.Join(e.Def.Params, ", "))
			f.WriteByte(')')
		}

		f.WriteString(" -> ")
		f.expr(e.Def.Body, depth)

	case *Conditional:
		f.expr(e.Cond, depth)
		f.WriteString(" ? ")
		f.expr(e.Then, depth)
		f.WriteString(" : ")
		f.expr(e.Else, depth)

	case *Assignment:
		switch t := e.Target.(type) {
		case *SignatureTarget:
			f.WriteString(t.Def.Name)
			f.WriteByte('(')
			f.WriteString(strings.Join(t.Def.Params, ", "))
			f.WriteByte(')')

		default:
			f.WriteString(e.Target.TargetName())
		}

		f.WriteString(" = ")
		f.expr(e.Value, depth)

	case *tuple:
		f.list(e.Items, depth)
	}
}

func (f *formatter) list(items []Expr, depth int) {
	f.WriteByte('(')

	for i, item := range items {
		if i > 0 {
			f.WriteString(", ")
		}

		f.expr(item, depth)
	}

	f.WriteByte(')')
}
