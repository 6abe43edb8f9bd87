package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind separates lexical failures from syntax failures.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	default:
		return "error"
	}
}

var (
	ErrIllegalCharacter   = errors.New("illegal character")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrIntegerOverflow    = errors.New("integer overflow")

	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrExpectedIdentifier = errors.New("expected identifier")
	ErrUnterminatedSeries = errors.New("unterminated expression series")
	ErrNoPrefixParse      = errors.New("no prefix parse function")
)

// Error represents a lexer or parser error with its source location.
type Error struct {
	Kind       ErrorKind
	Span       Span
	Err        error
	Incomplete bool // input ended before the construct was closed
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newLexicalError(span Span, err error) *Error {
	return &Error{Kind: LexicalError, Span: span, Err: err}
}

func newIncompleteError(kind ErrorKind, span Span, err error) *Error {
	return &Error{
		Kind:       kind,
		Span:       span,
		Err:        err,
		Incomplete: true,
	}
}

// ErrorList collects statement-level errors reported by a single Parse call.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, err := range l {
		errs[i] = err
	}
	return errs
}

// IsIncomplete reports whether the supplied error represents incomplete input.
// For an ErrorList only the last error matters: earlier statements were closed.
func IsIncomplete(err error) bool {
	var list ErrorList
	if errors.As(err, &list) {
		if len(list) == 0 {
			return false
		}
		return list[len(list)-1].Incomplete
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
