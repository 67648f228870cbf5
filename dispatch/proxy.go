// Package dispatch defines the callable contract used for runtime overload
// resolution, along with the concrete callables built from Go functions and
// constructors, and the conversion of callables back into typed Go funcs.
//
// A resolver offers an argument list to each candidate through CallMatch,
// which is cheap and free of side effects, and then calls the one it picks:
//
//	for _, fn := range candidates {
//		if fn.CallMatch(args) {
//			return fn.Call(ctx, args)
//		}
//	}
package dispatch

import (
	"context"
	"slices"

	"github.com/clanmills/ChaiScript/boxed"
)

// VariadicArity is the arity reported by callables that accept a variable
// number of arguments.
const VariadicArity = -1

// ProxyFunction is the unit of dispatch.
type ProxyFunction interface {
	// CallMatch reports whether Call would accept args. It must not mutate
	// args or any other state, and must agree with Call: when it returns
	// true, Call does not fail for arity or type reasons.
	CallMatch(args []boxed.Value) bool

	// Call invokes the function. It fails with an *errors.GuardError when
	// CallMatch would have returned false.
	Call(ctx context.Context, args []boxed.Value) (boxed.Value, error)

	// Arity returns the number of arguments, or VariadicArity.
	Arity() int

	// ParamTypes returns the result type at index 0 followed by the
	// parameter types, so index 1 describes the first argument.
	ParamTypes() []boxed.TypeInfo

	// Annotation returns a free-form documentation string.
	Annotation() string

	// Equals reports structural equality with another function.
	Equals(other ProxyFunction) bool

	// ContainedFunctions returns the functions this one is built from. It
	// is empty for leaf functions.
	ContainedFunctions() []ProxyFunction
}

// Matcher is implemented by functions that can explain a failed match.
// MatchError returns nil exactly when CallMatch returns true.
type Matcher interface {
	MatchError(args []boxed.Value) error
}

// Base holds the attributes common to every ProxyFunction. Concrete
// functions embed it.
type Base struct {
	paramTypes []boxed.TypeInfo
	arity      int
	annotation string
}

// NewBase returns a Base with the given parameter types, where index 0 is
// the result type.
func NewBase(paramTypes []boxed.TypeInfo, arity int, annotation string) Base {
	return Base{paramTypes: slices.Clone(paramTypes), arity: arity, annotation: annotation}
}

func (b *Base) ParamTypes() []boxed.TypeInfo {
	return slices.Clone(b.paramTypes)
}

func (b *Base) Arity() int {
	return b.arity
}

func (b *Base) Annotation() string {
	return b.annotation
}

func (b *Base) ContainedFunctions() []ProxyFunction {
	return nil
}

// SetAnnotation replaces the documentation string.
func (b *Base) SetAnnotation(annotation string) {
	b.annotation = annotation
}

// sameTypes reports whether two type lists are exact-equal element-wise.
func sameTypes(a, b []boxed.TypeInfo) bool {
	return slices.EqualFunc(a, b, boxed.TypeInfo.ExactEqual)
}

// Equal reports whether a and b are structurally equal. Two nil functions
// are equal.
func Equal(a, b ProxyFunction) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}
