package lang

import "encoding/json"

// MarshalJSON implements json.Marshaler for AST.
func (ast *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(ast.ToMap())
}

// ToMap converts the AST to a tree of native Go maps and slices.
//
// Every node becomes a map with a "node" key naming its kind, plus keys for
// its operands. Positions are written as "line:column".
func (ast *AST) ToMap() map[string]any {
	return map[string]any{
		"program": exprsToNative(ast.Stmts),
	}
}

// ToNative converts an expression to its native Go representation.
func ToNative(e Expr) map[string]any {
	m := map[string]any{
		"pos": e.Pos().String(),
	}

	switch e := e.(type) {
	case *NumberLiteral:
		m["node"] = "number"
		m["value"] = FormatNumber(e.Value)

	case *BoolLiteral:
		m["node"] = "bool"
		m["value"] = e.Value

	case *Identifier:
		m["node"] = "identifier"
		m["name"] = e.Name

	case *Unary:
		m["node"] = "unary"
		m["op"] = e.Op.String()
		m["operand"] = ToNative(e.Operand)

	case *Binary:
		m["node"] = "binary"
		m["op"] = e.Op.String()
		m["left"] = ToNative(e.Left)
		m["right"] = ToNative(e.Right)

	case *Group:
		m["node"] = "group"
		m["inner"] = ToNative(e.Inner)

	case *Call:
		m["node"] = "call"
		m["callee"] = ToNative(e.Callee)
		m["args"] = exprsToNative(e.Args)

	case *Block:
		m["node"] = "block"
		m["value"] = e.HasValue
		m["body"] = exprsToNative(e.Stmts)

	case *FunctionLiteral:
		m["node"] = "function"
		definitionToNative(m, e.Def)

	case *Conditional:
		m["node"] = "conditional"
		m["cond"] = ToNative(e.Cond)
		m["then"] = ToNative(e.Then)
		m["else"] = ToNative(e.Else)

	case *Assignment:
		switch t := e.Target.(type) {
		case *SignatureTarget:
			m["node"] = "define"
			m["name"] = t.Def.Name
			definitionToNative(m, t.Def)

		default:
			m["node"] = "assign"
			m["name"] = e.Target.TargetName()
			m["value"] = ToNative(e.Value)
		}

	case *tuple:
		m["node"] = "tuple"
		m["items"] = exprsToNative(e.Items)
	}

	return m
}

func exprsToNative(exprs []Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = ToNative(e)
	}

	return out
}

func definitionToNative(m map[string]any, def *Definition) {
	params := make([]any, len(def.Params))
	for i, p := range def.Params {
		params[i] = p
	}

	m["params"] = params
	m["body"] = ToNative(def.Body)

	if len(def.Captures) > 0 {
		captures := make([]any, len(def.Captures))
		for i, c := range def.Captures {
			captures[i] = c
		}

		m["captures"] = captures
	}
}
