package lang

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// lexer holds the scanning state over a single source string.
type lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

func newLexer(s string) *lexer {
	return &lexer{input: []byte(s), line: 1, col: 1}
}

// lex scans the entire input. The returned slice always ends with a single
// TokenEOF. Scanning stops at the first unrecognized character.
func lex(s string) ([]Token, error) {
	l := newLexer(s)
	toks := make([]Token, 0, len(s)/2+1)

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err.WithSource(s)
		}

		toks = append(toks, tok)

		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

// next scans one token.
func (l *lexer) next() (Token, *Error) {
	l.skipWhitespace()

	start := l.position()

	if l.eof() {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	ch := l.peek()

	switch {
	case isDigit(ch):
		return l.number(start), nil

	case isWordStart(ch):
		return l.word(start), nil
	}

	l.advance()

	kind := TokenEOF

	switch ch {
	case '(':
		kind = TokenOpenParen
	case ')':
		kind = TokenCloseParen
	case '{':
		kind = TokenOpenBrace
	case '}':
		kind = TokenCloseBrace
	case ',':
		kind = TokenComma
	case '+':
		kind = TokenPlus
	case '*':
		kind = TokenStar
	case '/':
		kind = TokenSlash
	case '^':
		kind = TokenCaret
	case '?':
		kind = TokenQuestion
	case ':':
		kind = TokenColon
	case '-':
		kind = l.pick('>', TokenArrow, TokenMinus)
	case '=':
		kind = l.pick('=', TokenEqualsEquals, TokenEquals)
	case '!':
		kind = l.pick('=', TokenBangEquals, TokenBang)
	case '<':
		kind = l.pick('=', TokenLessEquals, TokenLess)
	case '>':
		kind = l.pick('=', TokenGreaterEq, TokenGreater)
	case '&':
		if !l.expect('&') {
			return Token{}, ErrUnsupportedOperator.WithPosition(start).
				Detail("the '&' operator is not supported, did you mean '&&'?")
		}

		kind = TokenAndAnd
	case '|':
		if !l.expect('|') {
			return Token{}, ErrUnsupportedOperator.WithPosition(start).
				Detail("the '|' operator is not supported, did you mean '||'?")
		}

		kind = TokenPipePipe
	default:
		return Token{}, ErrUnexpectedCharacter.WithPosition(start).
			Detail("unexpected character %s", quoteRune(ch))
	}

	return Token{Kind: kind, Lexeme: l.lexeme(start), Pos: start}, nil
}

// number scans digits, optionally followed by '.' and more digits.
func (l *lexer) number(start Position) Token {
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	if l.expect('.') {
		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}

	return Token{Kind: TokenNumber, Lexeme: l.lexeme(start), Pos: start}
}

// word scans a keyword or identifier.
func (l *lexer) word(start Position) Token {
	for !l.eof() && isWordContinue(l.peek()) {
		l.advance()
	}

	text := l.lexeme(start)
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Lexeme: text, Pos: start}
	}

	return Token{Kind: TokenIdentifier, Lexeme: text, Pos: start}
}

// pick consumes next and returns yes if it is the next rune, else returns no.
func (l *lexer) pick(next rune, yes, no TokenKind) TokenKind {
	if l.expect(next) {
		return yes
	}

	return no
}

func (l *lexer) lexeme(start Position) string {
	return string(l.input[start.Offset:l.pos])
}

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos:])

	return r
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) expect(ch rune) bool {
	if !l.eof() && l.peek() == ch {
		l.advance()

		return true
	}

	return false
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) skipWhitespace() {
	for !l.eof() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// Character classification

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWordStart(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_'
}

func isWordContinue(r rune) bool {
	return isWordStart(r) || isDigit(r)
}

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "'\\ufffd'"
	}

	q := strconv.QuoteRune(r)

	return "'" + q[1:len(q)-1] + "'"
}
