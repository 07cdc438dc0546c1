package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/clac/lang"
)

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee identifier
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's argument list. Only calls whose callee is a plain
// identifier are detected, so "f(" is a call but "g()(" and "(x -> x)(" are
// not.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward from cursor to find the unmatched opening paren.
	depth := 0
	openParenPos := -1

	for i := cursor; i > 0 && openParenPos == -1; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')', '}':
			depth++
		case '{':
			if depth == 0 {
				return functionCall{}
			}

			depth--
		case '(':
			if depth == 0 {
				openParenPos = i
			} else {
				depth--
			}
		}
	}

	if openParenPos == -1 {
		return functionCall{}
	}

	// Collect the identifier immediately before the '('.
	nameStart := openParenPos

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if isWordBoundary(r) {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:openParenPos]
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return functionCall{}
	}

	// Count commas at depth 0 in the argument list.
	argIndex := 0
	depth = 0

	for _, r := range input[openParenPos+1 : cursor] {
		switch r {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{
		name:     name,
		argIndex: argIndex,
		inCall:   true,
	}
}

// getSignature describes the callable bound to name in the session. Returns
// an empty signature if name is unbound or not callable.
func getSignature(
	in *lang.Interpreter,
	name string,
) (signature string, params []string) {
	v, ok := in.Lookup(name)
	if !ok {
		return "", nil
	}

	switch fn := v.(type) {
	case *lang.Function:
		params = fn.Def.Params

	case *lang.Builtin:
		params = fn.Params
		if len(params) != fn.Arity {
			params = make([]string, fn.Arity)
			for i := range params {
				params[i] = "arg" + strconv.Itoa(i+1)
			}
		}

	default:
		return "", nil
	}

	return formatSignature(name, params), params
}

// formatSignature renders name and params as "name(p1, p2)".
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		if currentArgIdx == i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if currentArgIdx >= len(params) {
		b.WriteString(errorStyle.Render(" too many arguments"))
	}

	return b.String()
}
