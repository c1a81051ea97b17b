// Package apperr classifies failures of the article pipeline so the HTTP
// boundary can map them to a status without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the failure class of an Error.
type Kind string

const (
	KindConfiguration        Kind = "configuration"
	KindInvalidConfiguration Kind = "invalid_configuration"
	KindNotFound             Kind = "not_found"
	KindUpstream             Kind = "upstream"
	KindUnexpected           Kind = "unexpected"
)

// Error carries a Kind, the operation that failed and an optional cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against another *Error of the same kind, so
// errors.Is(err, &Error{Kind: KindNotFound}) works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Wrapf(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
