// Package errors defines the errors raised by the dispatch kernel: bad casts,
// guard failures, arity mismatches and failed overload resolution.
package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/clanmills/ChaiScript/boxed"
)

// Kind represents the category of a kernel error.
type Kind int

const (
	// KindCast indicates a boxed value could not deliver the requested type.
	KindCast Kind = iota
	// KindGuard indicates a callable was invoked despite failing its match test.
	KindGuard
	// KindArity indicates a call supplied the wrong number of arguments.
	KindArity
	// KindDispatch indicates no candidate in an overload set matched a call.
	KindDispatch
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindCast:
		return "bad cast"
	case KindGuard:
		return "guard error"
	case KindArity:
		return "arity error"
	case KindDispatch:
		return "dispatch error"
	default:
		return "error"
	}
}

// FatalError is an interface for errors that may or may not be fatal.
type FatalError interface {
	Error() string
	IsFatal() bool
}

// KindError is implemented by every error type in this package.
type KindError interface {
	Error() string
	Kind() Kind
}

// BadCastError is raised whenever a boxed value cannot be converted to the
// requested native type. Callers may recover from it, for example by trying
// another candidate.
type BadCastError struct {
	From    boxed.TypeInfo
	To      boxed.TypeInfo
	Message string
}

func (e *BadCastError) Error() string {
	if e.From.IsUndefined() && e.To.IsUndefined() {
		return fmt.Sprintf("bad cast: %s", e.Message)
	}
	return fmt.Sprintf("bad cast: %s (from %s to %s)", e.Message, e.From, e.To)
}

func (e *BadCastError) Kind() Kind {
	return KindCast
}

func (e *BadCastError) IsFatal() bool {
	return false
}

// NewBadCast returns a bad cast from one type to another.
func NewBadCast(from, to boxed.TypeInfo, message string) *BadCastError {
	if message == "" {
		message = "cannot perform boxed cast"
	}
	return &BadCastError{From: from, To: to, Message: message}
}

// BadCastf returns a bad cast that carries only a message.
func BadCastf(format string, args ...any) *BadCastError {
	return &BadCastError{Message: fmt.Sprintf(format, args...)}
}

// GuardError is raised when a callable is invoked with arguments that fail
// its own match test. It points at a caller that skipped the match check.
type GuardError struct {
	Function string
	Err      error
}

func (e *GuardError) Error() string {
	name := e.Function
	if name == "" {
		name = "function"
	}
	if e.Err != nil {
		return fmt.Sprintf("guard error: %s invoked with non-matching arguments: %v", name, e.Err)
	}
	return fmt.Sprintf("guard error: %s invoked with non-matching arguments", name)
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

func (e *GuardError) Kind() Kind {
	return KindGuard
}

func (e *GuardError) IsFatal() bool {
	return true
}

// ArityError is raised when a call supplies the wrong number of arguments.
type ArityError struct {
	Function string
	Expected int
	Given    int
	Variadic bool
}

func (e *ArityError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("arity error: %s() takes at least %d arguments (%d given)",
			e.Function, e.Expected, e.Given)
	}
	return fmt.Sprintf("arity error: %s() takes exactly %d arguments (%d given)",
		e.Function, e.Expected, e.Given)
}

func (e *ArityError) Kind() Kind {
	return KindArity
}

func (e *ArityError) IsFatal() bool {
	return false
}

// DispatchError is raised when none of the candidates for a call accepts
// the arguments. Reasons holds one entry per rejected candidate.
type DispatchError struct {
	Name       string
	ArgTypes   []boxed.TypeInfo
	Candidates int
	Reasons    *multierror.Error
	Hint       string
}

func (e *DispatchError) Error() string {
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	msg := fmt.Sprintf("dispatch error: no matching function for %s(%s)",
		name, strings.Join(boxed.Names(e.ArgTypes), ", "))
	if e.Candidates == 0 {
		msg += " (no candidates)"
	} else {
		msg += fmt.Sprintf(" (%d candidates)", e.Candidates)
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// Unwrap exposes the per-candidate reasons to errors.Is and errors.As.
func (e *DispatchError) Unwrap() error {
	return e.Reasons.ErrorOrNil()
}

func (e *DispatchError) Kind() Kind {
	return KindDispatch
}

func (e *DispatchError) IsFatal() bool {
	return true
}

// Reject records why a candidate did not accept the call.
func (e *DispatchError) Reject(reason error) {
	e.Reasons = multierror.Append(e.Reasons, reason)
}

// NewDispatchError returns a dispatch error for a call to name.
func NewDispatchError(name string, args []boxed.Value, candidates int) *DispatchError {
	types := make([]boxed.TypeInfo, 0, len(args))
	for _, arg := range args {
		types = append(types, arg.TypeInfo())
	}
	return &DispatchError{Name: name, ArgTypes: types, Candidates: candidates}
}
