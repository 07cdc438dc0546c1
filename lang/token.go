package lang

import (
	"log/slog"
	"strconv"
)

// Position identifies a location in source text.
// Offset is a 0-based byte offset; Line and Column are 1-based, with Column
// counted in runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// LogValue implements slog.LogValuer.
func (p Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	)
}

// TokenKind classifies a lexical token.
type TokenKind int

// Token kinds.
const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenIdentifier
	TokenTrue
	TokenFalse

	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenCaret        // ^
	TokenBang         // !
	TokenEquals       // =
	TokenEqualsEquals // ==
	TokenBangEquals   // !=
	TokenLess         // <
	TokenLessEquals   // <=
	TokenGreater      // >
	TokenGreaterEq    // >=
	TokenAndAnd       // &&
	TokenPipePipe     // ||
	TokenArrow        // ->
	TokenQuestion     // ?
	TokenColon        // :
	TokenComma        // ,
	TokenOpenParen    // (
	TokenCloseParen   // )
	TokenOpenBrace    // {
	TokenCloseBrace   // }
)

var tokenSymbols = [...]string{
	TokenEOF:          "end of input",
	TokenNumber:       "number",
	TokenIdentifier:   "identifier",
	TokenTrue:         "true",
	TokenFalse:        "false",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenCaret:        "^",
	TokenBang:         "!",
	TokenEquals:       "=",
	TokenEqualsEquals: "==",
	TokenBangEquals:   "!=",
	TokenLess:         "<",
	TokenLessEquals:   "<=",
	TokenGreater:      ">",
	TokenGreaterEq:    ">=",
	TokenAndAnd:       "&&",
	TokenPipePipe:     "||",
	TokenArrow:        "->",
	TokenQuestion:     "?",
	TokenColon:        ":",
	TokenComma:        ",",
	TokenOpenParen:    "(",
	TokenCloseParen:   ")",
	TokenOpenBrace:    "{",
	TokenCloseBrace:   "}",
}

// String returns the symbol of an operator or punctuation kind, or a short
// description of any other kind.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenSymbols) {
		return tokenSymbols[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// describe returns the kind formatted for an error message.
func (k TokenKind) describe() string {
	switch k {
	case TokenEOF, TokenNumber, TokenIdentifier:
		return k.String()
	default:
		return "'" + k.String() + "'"
	}
}

// Token is a single lexeme of Clac source.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    Position
}

// String describes the token for error messages, e.g. "identifier 'foo'",
// "number 2", or "'+'".
func (t Token) String() string {
	switch t.Kind {
	case TokenIdentifier:
		return "identifier '" + t.Lexeme + "'"
	case TokenNumber:
		return "number " + t.Lexeme
	default:
		return t.Kind.describe()
	}
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]TokenKind{
	"true":  TokenTrue,
	"false": TokenFalse,
}

// beginsExpr reports whether a token of kind k can start an expression.
func (k TokenKind) beginsExpr() bool {
	switch k {
	case TokenNumber, TokenIdentifier, TokenTrue, TokenFalse,
		TokenMinus, TokenBang, TokenOpenParen, TokenOpenBrace:
		return true
	}

	return false
}
