package dispatch

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/errors"
)

// Dispatch calls the first function in fns that matches args. When none
// matches, it returns an *errors.DispatchError recording why each candidate
// rejected the call. Choosing among several matching candidates is left to
// the caller; this picks the first.
func Dispatch(ctx context.Context, name string, fns []ProxyFunction, args []boxed.Value) (boxed.Value, error) {
	for _, fn := range fns {
		if fn.CallMatch(args) {
			return fn.Call(ctx, args)
		}
	}
	return boxed.Value{}, Mismatch(name, fns, args)
}

// Mismatch builds the error reported when no function in fns accepts args.
func Mismatch(name string, fns []ProxyFunction, args []boxed.Value) *errors.DispatchError {
	err := errors.NewDispatchError(name, args, len(fns))
	for _, fn := range fns {
		err.Reject(explain(fn, args))
	}
	return err
}

func explain(fn ProxyFunction, args []boxed.Value) error {
	if m, ok := fn.(Matcher); ok {
		if err := m.MatchError(args); err != nil {
			return err
		}
	}
	return fmt.Errorf("candidate %s does not accept the arguments", Signature(fn))
}

// Signature renders the parameter types of fn, e.g. "(int, string) -> bool".
func Signature(fn ProxyFunction) string {
	types := fn.ParamTypes()
	if len(types) == 0 {
		return "(...)"
	}
	params := boxed.Names(types[1:])
	if fn.Arity() == VariadicArity {
		n := len(params)
		if last := types[n].Bare(); n > 0 && last != nil && last.Kind() == reflect.Slice {
			params[n-1] = "..." + boxed.TypeFor(last.Elem()).String()
		} else {
			params = append(params, "...")
		}
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), types[0])
}

// Flatten expands nested overload sets into a flat list of their members,
// preserving order. Other functions, decorators included, are kept as they
// are.
func Flatten(fns []ProxyFunction) []ProxyFunction {
	var out []ProxyFunction
	for _, fn := range fns {
		if set, ok := fn.(*OverloadSet); ok {
			out = append(out, Flatten(set.fns)...)
			continue
		}
		out = append(out, fn)
	}
	return out
}

// Walk visits fn and, depth first, every function it contains. Returning
// false from visit stops the walk.
func Walk(fn ProxyFunction, visit func(ProxyFunction) bool) bool {
	if !visit(fn) {
		return false
	}
	for _, inner := range fn.ContainedFunctions() {
		if !Walk(inner, visit) {
			return false
		}
	}
	return true
}

// Contains reports whether fns already holds a function structurally equal
// to fn.
func Contains(fns []ProxyFunction, fn ProxyFunction) bool {
	for _, existing := range fns {
		if Equal(existing, fn) {
			return true
		}
	}
	return false
}

// *****************************************************************************
// OverloadSet
// *****************************************************************************

var _ ProxyFunction = (*OverloadSet)(nil)

// OverloadSet groups candidates that share a name and behaves as a single
// function that dispatches to the first matching member.
type OverloadSet struct {
	Base
	name string
	fns  []ProxyFunction
}

// NewOverloadSet returns a set over fns. The parameter types are those
// common to every member; positions where members disagree are undefined.
func NewOverloadSet(name string, fns ...ProxyFunction) *OverloadSet {
	fns = append([]ProxyFunction(nil), fns...)
	arity, types := commonSignature(fns)
	annotations := make([]string, 0, len(fns))
	for _, fn := range fns {
		if a := fn.Annotation(); a != "" {
			annotations = append(annotations, a)
		}
	}
	return &OverloadSet{
		Base: NewBase(types, arity, strings.Join(annotations, "\n")),
		name: name,
		fns:  fns,
	}
}

func commonSignature(fns []ProxyFunction) (int, []boxed.TypeInfo) {
	if len(fns) == 0 {
		return VariadicArity, nil
	}
	arity := fns[0].Arity()
	types := fns[0].ParamTypes()
	for _, fn := range fns[1:] {
		if fn.Arity() != arity {
			return VariadicArity, nil
		}
		other := fn.ParamTypes()
		for i := range types {
			if i >= len(other) || !types[i].ExactEqual(other[i]) {
				types[i] = boxed.TypeInfo{}
			}
		}
	}
	return arity, types
}

// Name returns the name shared by the members.
func (s *OverloadSet) Name() string {
	return s.name
}

func (s *OverloadSet) Len() int {
	return len(s.fns)
}

func (s *OverloadSet) CallMatch(args []boxed.Value) bool {
	for _, fn := range s.fns {
		if fn.CallMatch(args) {
			return true
		}
	}
	return false
}

func (s *OverloadSet) MatchError(args []boxed.Value) error {
	if s.CallMatch(args) {
		return nil
	}
	return Mismatch(s.name, s.fns, args)
}

func (s *OverloadSet) Call(ctx context.Context, args []boxed.Value) (boxed.Value, error) {
	for _, fn := range s.fns {
		if fn.CallMatch(args) {
			return fn.Call(ctx, args)
		}
	}
	return boxed.Value{}, &errors.GuardError{Function: s.name, Err: Mismatch(s.name, s.fns, args)}
}

// Equals reports whether other is a set with pairwise equal members.
func (s *OverloadSet) Equals(other ProxyFunction) bool {
	o, ok := other.(*OverloadSet)
	if !ok || len(s.fns) != len(o.fns) {
		return false
	}
	for i := range s.fns {
		if !Equal(s.fns[i], o.fns[i]) {
			return false
		}
	}
	return true
}

func (s *OverloadSet) ContainedFunctions() []ProxyFunction {
	return append([]ProxyFunction(nil), s.fns...)
}
