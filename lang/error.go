package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Tier groups error kinds by the evaluation phase that produces them.
type Tier int

const (
	TierNone    Tier = iota
	TierLex          // LexError
	TierParse        // ParseError
	TierRuntime      // RuntimeError
)

func (t Tier) String() string {
	switch t {
	case TierLex:
		return "LexError"
	case TierParse:
		return "ParseError"
	case TierRuntime:
		return "RuntimeError"
	default:
		return "Error"
	}
}

// Kind identifies a specific error condition.
type Kind int

const (
	KindNone Kind = iota

	KindUnexpectedCharacter
	KindUnsupportedOperator

	KindUnexpectedToken
	KindExpectedExpression
	KindInvalidAssignmentTarget
	KindChainedAssignment
	KindChainedComparison
	KindInvalidParameter
	KindDuplicateParameter

	KindUndefinedVariable
	KindAlreadyDefined
	KindArgumentCountMismatch
	KindTypeError
	KindVoidAsValue
	KindFunctionMustReturnValue
	KindCanceled
)

var kindNames = [...]string{
	KindNone:                    "Error",
	KindUnexpectedCharacter:     "UnexpectedCharacter",
	KindUnsupportedOperator:     "UnsupportedOperator",
	KindUnexpectedToken:         "UnexpectedToken",
	KindExpectedExpression:      "ExpectedExpression",
	KindInvalidAssignmentTarget: "InvalidAssignmentTarget",
	KindChainedAssignment:       "ChainedAssignment",
	KindChainedComparison:       "ChainedComparison",
	KindInvalidParameter:        "InvalidParameter",
	KindDuplicateParameter:      "DuplicateParameter",
	KindUndefinedVariable:       "UndefinedVariable",
	KindAlreadyDefined:          "AlreadyDefined",
	KindArgumentCountMismatch:   "ArgumentCountMismatch",
	KindTypeError:               "TypeError",
	KindVoidAsValue:             "VoidAsValue",
	KindFunctionMustReturnValue: "FunctionMustReturnValue",
	KindCanceled:                "Canceled",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Tier returns the phase that reports errors of kind k.
func (k Kind) Tier() Tier {
	switch {
	case k == KindNone:
		return TierNone
	case k < KindUnexpectedToken:
		return TierLex
	case k < KindUndefinedVariable:
		return TierParse
	default:
		return TierRuntime
	}
}

// Predefined errors (sentinel values).
//
// Every error returned by this package derives from one of these, so
// [errors.Is] can classify it regardless of the detail message or attributes
// attached along the way.
var (
	ErrUnexpectedCharacter = newKindError(KindUnexpectedCharacter, "unexpected character")
	ErrUnsupportedOperator = newKindError(KindUnsupportedOperator, "unsupported operator")

	ErrUnexpectedToken         = newKindError(KindUnexpectedToken, "unexpected token")
	ErrExpectedExpression      = newKindError(KindExpectedExpression, "expected an expression")
	ErrInvalidAssignmentTarget = newKindError(KindInvalidAssignmentTarget, "can only assign to variables and function signatures")
	ErrChainedAssignment       = newKindError(KindChainedAssignment, "assignments cannot be chained")
	ErrChainedComparison       = newKindError(KindChainedComparison, "comparisons cannot be chained")
	ErrInvalidParameter        = newKindError(KindInvalidParameter, "function parameters must be identifiers")
	ErrDuplicateParameter      = newKindError(KindDuplicateParameter, "duplicate parameter")

	ErrUndefinedVariable       = newKindError(KindUndefinedVariable, "undefined variable")
	ErrAlreadyDefined          = newKindError(KindAlreadyDefined, "variable is already defined")
	ErrArgumentCountMismatch   = newKindError(KindArgumentCountMismatch, "incorrect argument count for function")
	ErrTypeError               = newKindError(KindTypeError, "incorrect argument types for operation")
	ErrVoidAsValue             = newKindError(KindVoidAsValue, "cannot use void as a value")
	ErrFunctionMustReturnValue = newKindError(KindFunctionMustReturnValue, "functions must return a value")
	ErrCanceled                = newKindError(KindCanceled, "evaluation canceled")

	ErrReadInput = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	base   *Error      // Sentinel this error derives from
	pos    *Position
	source string // Source text, for rendering a snippet
	kind   Kind
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newKindError(kind Kind, msg string) *Error {
	return &Error{msg: msg, kind: kind}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindNone.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}

	return KindNone
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e derives from the same sentinel as target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

// Kind returns the error kind.
func (e *Error) Kind() Kind { return e.kind }

// Tier returns the phase that reported the error.
func (e *Error) Tier() Tier { return e.kind.Tier() }

// Position returns the source position of the error, if known.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.kind != KindNone {
		attrs = append(attrs,
			slog.String("tier", e.kind.Tier().String()),
			slog.String("kind", e.kind.String()),
		)
	}

	if e.pos != nil {
		attrs = append(attrs, slog.Any("pos", *e.pos))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := e.derive()
	c.attrs = newAttrs

	return c
}

// Detail returns a copy of e with its message replaced by a formatted one.
// The copy still matches e with [errors.Is].
func (e *Error) Detail(format string, args ...any) *Error {
	c := e.derive()
	c.msg = fmt.Sprintf(format, args...)

	return c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.derive()
	c.pos = &pos

	return c
}

// WithSource returns a copy of e that renders a snippet of source in
// [Error.Snippet].
func (e *Error) WithSource(source string) *Error {
	c := e.derive()
	c.source = source

	return c
}

func (e *Error) derive() *Error {
	c := *e
	c.base = e.root()

	return &c
}

func (e *Error) root() *Error {
	for e.base != nil {
		e = e.base
	}

	return e
}

// Snippet renders the offending source line with a caret under the error
// column. It returns "" when the error has no position or source.
func (e *Error) Snippet() string {
	if e.pos == nil || e.source == "" {
		return ""
	}

	lines := strings.Split(e.source, "\n")
	if e.pos.Line < 1 || e.pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := strings.TrimRight(lines[e.pos.Line-1], "\r")
	num := strconv.Itoa(e.pos.Line)

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if e.pos.Column > 0 {
		padding += strings.Repeat(" ", e.pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// Describe formats err for display to a user: the tier, the message, the
// position when known, and a source snippet when available.
func Describe(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.kind == KindNone {
		return err.Error()
	}

	var b strings.Builder

	b.WriteString(e.Tier().String())

	if e.pos != nil {
		b.WriteString(" at ")
		b.WriteString(e.pos.String())
	}

	b.WriteString(": ")
	b.WriteString(e.Error())

	if snip := e.Snippet(); snip != "" {
		b.WriteRune('\n')
		b.WriteString(strings.TrimRight(snip, "\n"))
	}

	return b.String()
}
