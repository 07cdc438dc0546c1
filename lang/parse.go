package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/clac/log"
)

// ParseString parses a Clac program from a string.
//
// Every call produces fresh definition identities, so two parses of the same
// source never yield functions that compare equal to each other.
func ParseString(ctx context.Context, s string, opts ...Option) (*AST, error) {
	var o options

	applyOptions(&o, opts...)

	toks, err := tokenize(ctx, s, &o)
	if err != nil {
		return nil, err
	}

	p := &parser{
		toks:   toks,
		source: s,
		logger: o.logger,
	}

	ast, err := p.parseProgram()
	if err != nil {
		return nil, WrapError(err).WithSource(s)
	}

	ast.logger = o.logger

	bind(ast)

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("token_count", len(toks)),
		slog.Int("statement_count", len(ast.Stmts)))

	return ast, nil
}

// IsIncomplete reports whether err was caused by source text ending before
// a construct was closed, such as an unbalanced brace or a trailing operator.
// Line-oriented front ends use it to request continuation lines.
func IsIncomplete(err error) bool {
	if err == nil {
		return false
	}

	e := WrapError(err)

	switch e.kind {
	case KindUnexpectedToken, KindExpectedExpression:
	default:
		return false
	}

	if e.pos == nil || e.source == "" || e.pos.Offset > len(e.source) {
		return false
	}

	return strings.TrimSpace(e.source[e.pos.Offset:]) == ""
}

// parser holds the parser state.
type parser struct {
	toks   []Token
	pos    int
	source string
	logger log.Logger
}

// parseProgram parses: Sequence EOF.
func (p *parser) parseProgram() (*AST, error) {
	stmts, err := p.parseSequence(TokenEOF)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenEOF); err != nil {
		return nil, err
	}

	return &AST{Stmts: stmts, Source: p.source}, nil
}

// parseSequence parses statements separated by optional commas until end.
func (p *parser) parseSequence(end TokenKind) ([]Expr, error) {
	stmts := make([]Expr, 0)

	for !p.check(end) && !p.check(TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)

		// Without a comma, the next statement must begin right here.
		if !p.eat(TokenComma) && !p.peek().Kind.beginsExpr() {
			break
		}
	}

	return stmts, nil
}

// parseStatement parses: Mapping ( '=' Operand )?.
func (p *parser) parseStatement() (Expr, error) {
	lhs, err := p.parseMapping()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenEquals) {
		return lhs, nil
	}

	p.advance()

	target, err := p.parseTarget(lhs)
	if err != nil {
		return nil, err
	}

	value, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	at := lhs.Pos()
	if sig, ok := target.(*SignatureTarget); ok {
		sig.Def.Body = value
		at = sig.At
	}

	return &Assignment{Target: target, Value: value, At: at}, nil
}

// parseOperand parses an expression in a position where assignment is not
// allowed.
func (p *parser) parseOperand() (Expr, error) {
	e, err := p.parseMapping()
	if err != nil {
		return nil, err
	}

	if p.check(TokenEquals) {
		return nil, ErrChainedAssignment.WithPosition(p.peek().Pos)
	}

	return e, nil
}

// parseTarget validates the left-hand side of an assignment.
func (p *parser) parseTarget(lhs Expr) (Target, error) {
	switch lhs := lhs.(type) {
	case *Identifier:
		return &VariableTarget{Name: lhs.Name, At: lhs.At}, nil

	case *Call:
		callee, ok := lhs.Callee.(*Identifier)
		if !ok {
			break
		}

		params, err := p.paramNames(lhs.Args, ErrInvalidAssignmentTarget)
		if err != nil {
			return nil, err
		}

		return &SignatureTarget{
			Def: &Definition{
				Name:   callee.Name,
				Params: params,
				ID:     nextDefinitionID(),
			},
			At: callee.At,
		}, nil
	}

	return nil, ErrInvalidAssignmentTarget.WithPosition(lhs.Pos()).
		With(slog.String("target", lhs.String()))
}

// paramNames extracts distinct identifier names from items, failing with
// notIdent for any item that is not a bare identifier.
func (p *parser) paramNames(items []Expr, notIdent *Error) ([]string, error) {
	params := make([]string, 0, len(items))

	for _, item := range items {
		ident, ok := item.(*Identifier)
		if !ok {
			return nil, notIdent.WithPosition(item.Pos()).
				With(slog.String("param", item.String()))
		}

		for _, prev := range params {
			if prev == ident.Name {
				return nil, ErrDuplicateParameter.WithPosition(ident.At).
					Detail("duplicate parameter '%s'", ident.Name).
					With(slog.String("param", ident.Name))
			}
		}

		params = append(params, ident.Name)
	}

	return params, nil
}

// parseMapping parses: Or ( '->' Mapping | '?' Operand ':' Mapping )?.
func (p *parser) parseMapping() (Expr, error) {
	lhs, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	switch {
	case p.eat(TokenArrow):
		params, err := p.parseParams(lhs)
		if err != nil {
			return nil, err
		}

		body, err := p.parseMapping()
		if err != nil {
			return nil, err
		}

		return &FunctionLiteral{
			Def: &Definition{
				Params: params,
				Body:   body,
				ID:     nextDefinitionID(),
			},
			At: lhs.Pos(),
		}, nil

	case p.eat(TokenQuestion):
		then, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}

		els, err := p.parseMapping()
		if err != nil {
			return nil, err
		}

		return &Conditional{Cond: lhs, Then: then, Else: els, At: lhs.Pos()}, nil
	}

	return lhs, nil
}

// parseParams converts the expression before '->' into parameter names.
func (p *parser) parseParams(lhs Expr) ([]string, error) {
	switch lhs := lhs.(type) {
	case *Identifier:
		return []string{lhs.Name}, nil

	case *Group:
		if ident, ok := lhs.Inner.(*Identifier); ok {
			return []string{ident.Name}, nil
		}

	case *tuple:
		return p.paramNames(lhs.Items, ErrInvalidParameter)
	}

	return nil, ErrInvalidParameter.WithPosition(lhs.Pos()).
		With(slog.String("param", lhs.String()))
}

// parseOr parses: And ( '||' And )*.
func (p *parser) parseOr() (Expr, error) {
	return p.parseLeftAssoc(p.parseAnd, TokenPipePipe)
}

// parseAnd parses: Comparison ( '&&' Comparison )*.
func (p *parser) parseAnd() (Expr, error) {
	return p.parseLeftAssoc(p.parseComparison, TokenAndAnd)
}

// parseComparison parses: Sum ( CompareOp Sum )?.
func (p *parser) parseComparison() (Expr, error) {
	lhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	if !isComparison(p.peek().Kind) {
		return lhs, nil
	}

	op := p.advance()

	rhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	if next := p.peek(); isComparison(next.Kind) {
		return nil, ErrChainedComparison.WithPosition(next.Pos).
			With(slog.String("operator", next.Kind.String()))
	}

	return &Binary{Left: lhs, Right: rhs, Op: op.Kind, At: op.Pos}, nil
}

// parseSum parses: Term ( ('+' | '-') Term )*.
func (p *parser) parseSum() (Expr, error) {
	return p.parseLeftAssoc(p.parseTerm, TokenPlus, TokenMinus)
}

// parseTerm parses: Prefix ( ('*' | '/') Prefix )*.
func (p *parser) parseTerm() (Expr, error) {
	return p.parseLeftAssoc(p.parsePrefix, TokenStar, TokenSlash)
}

// parseLeftAssoc parses a left-associative chain of binary operators drawn
// from ops, with operands produced by next.
func (p *parser) parseLeftAssoc(
	next func() (Expr, error),
	ops ...TokenKind,
) (Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}

	for p.checkAny(ops...) {
		op := p.advance()

		rhs, err := next()
		if err != nil {
			return nil, err
		}

		lhs = &Binary{Left: lhs, Right: rhs, Op: op.Kind, At: op.Pos}
	}

	return lhs, nil
}

// parsePrefix parses: ('-' | '!') Prefix | Power.
func (p *parser) parsePrefix() (Expr, error) {
	if !p.checkAny(TokenMinus, TokenBang) {
		return p.parsePower()
	}

	op := p.advance()

	operand, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	return &Unary{Operand: operand, Op: op.Kind, At: op.Pos}, nil
}

// parsePower parses: Call ( '^' Prefix )?.
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseCall()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenCaret) {
		return base, nil
	}

	op := p.advance()

	exp, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	return &Binary{Left: base, Right: exp, Op: op.Kind, At: op.Pos}, nil
}

// parseCall parses: Primary ( '(' Arguments ')' )*.
func (p *parser) parseCall() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if _, ok := e.(*tuple); ok {
		if !p.check(TokenArrow) {
			return nil, p.unexpected(TokenArrow)
		}

		return e, nil
	}

	for p.check(TokenOpenParen) {
		open := p.advance()

		args, err := p.parseList()
		if err != nil {
			return nil, err
		}

		e = &Call{Callee: e, Args: args, At: open.Pos}
	}

	return e, nil
}

// parseList parses comma-separated operands up to and including ')'.
// The opening parenthesis must already be consumed.
func (p *parser) parseList() ([]Expr, error) {
	items, _, err := p.parseItems()

	return items, err
}

func (p *parser) parseItems() (items []Expr, comma bool, err error) {
	items = make([]Expr, 0)

	for !p.check(TokenCloseParen) {
		item, err := p.parseOperand()
		if err != nil {
			return nil, false, err
		}

		items = append(items, item)

		if !p.eat(TokenComma) {
			break
		}

		comma = true
	}

	if _, err := p.expect(TokenCloseParen); err != nil {
		return nil, false, err
	}

	return items, comma, nil
}

// parsePrimary parses a literal, identifier, parenthesized group or list, or
// block.
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.advance()

		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, ErrUnexpectedToken.WithPosition(tok.Pos).Wrap(err)
		}

		return &NumberLiteral{Lexeme: tok.Lexeme, Value: v, At: tok.Pos}, nil

	case TokenTrue, TokenFalse:
		p.advance()

		return &BoolLiteral{Value: tok.Kind == TokenTrue, At: tok.Pos}, nil

	case TokenIdentifier:
		p.advance()

		return &Identifier{Name: tok.Lexeme, At: tok.Pos}, nil

	case TokenOpenParen:
		p.advance()

		items, comma, err := p.parseItems()
		if err != nil {
			return nil, err
		}

		if len(items) == 1 && !comma {
			return &Group{Inner: items[0], At: tok.Pos}, nil
		}

		return &tuple{Items: items, At: tok.Pos}, nil

	case TokenOpenBrace:
		p.advance()

		stmts, err := p.parseSequence(TokenCloseBrace)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenCloseBrace); err != nil {
			return nil, err
		}

		block := &Block{Stmts: stmts, At: tok.Pos}
		if n := len(stmts); n > 0 {
			_, assign := stmts[n-1].(*Assignment)
			block.HasValue = !assign
		}

		return block, nil
	}

	return nil, ErrExpectedExpression.WithPosition(tok.Pos).
		Detail("expected an expression, got %s", tok)
}

// Token helpers

func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}

	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

func (p *parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *parser) checkAny(kinds ...TokenKind) bool {
	k := p.peek().Kind
	for _, kind := range kinds {
		if k == kind {
			return true
		}
	}

	return false
}

func (p *parser) eat(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	return Token{}, p.unexpected(kind)
}

func (p *parser) unexpected(want TokenKind) *Error {
	got := p.peek()

	return ErrUnexpectedToken.WithPosition(got.Pos).
		Detail("expected %s, got %s", want.describe(), got).
		With(
			slog.String("expected", want.String()),
			slog.String("got", got.Kind.String()),
		)
}

func isComparison(k TokenKind) bool {
	switch k {
	case TokenEqualsEquals, TokenBangEquals,
		TokenLess, TokenLessEquals, TokenGreater, TokenGreaterEq:
		return true
	}

	return false
}
