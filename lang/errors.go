package lang

import (
	"errors"
	"fmt"

	"github.com/sergev/minion/parser"
)

var (
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrArity             = errors.New("wrong number of arguments")
	ErrBuiltinRedeclared = errors.New("redeclaring built-in function")
	ErrInvalidIncrement  = errors.New("invalid increment target")
	ErrNotCallable       = errors.New("not a function")
	ErrUnsupported       = errors.New("unsupported statement")
	ErrCallDepth         = errors.New("maximum call depth exceeded")
)

// RuntimeError is an evaluation failure located at the node that caused it.
type RuntimeError struct {
	Span parser.Span
	Err  error
}

func (e *RuntimeError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("runtime error at %s: %s", e.Span, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// errorf builds a RuntimeError wrapping sentinel with extra detail.
func errorf(span parser.Span, sentinel error, format string, args ...interface{}) *RuntimeError {
	if format == "" {
		return &RuntimeError{Span: span, Err: sentinel}
	}
	return &RuntimeError{Span: span, Err: fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)}
}
