package dynamic

import (
	"context"
	"fmt"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/dispatch"
)

var _ dispatch.ProxyFunction = (*Constructor)(nil)

// Constructor turns an initializer into a constructor for records tagged
// typeName. Calling it creates a blank record, passes it to the initializer
// ahead of the caller's arguments, discards the initializer's result and
// returns the record.
type Constructor struct {
	dispatch.Base
	typeName string
	fn       dispatch.ProxyFunction
}

// NewConstructor wraps fn, which must take the record as its first
// argument.
func NewConstructor(typeName string, fn dispatch.ProxyFunction) *Constructor {
	arity := fn.Arity()
	if arity == 0 {
		panic("dynamic.Constructor: the initializer must take at least one parameter (the receiver)")
	}
	if arity != dispatch.VariadicArity {
		// The record is supplied by the constructor, not the caller.
		arity--
	}
	types := []boxed.TypeInfo{objectType}
	if inner := fn.ParamTypes(); len(inner) > 2 {
		types = append(types, inner[2:]...)
	}
	return &Constructor{
		Base:     dispatch.NewBase(types, arity, fn.Annotation()),
		typeName: typeName,
		fn:       fn,
	}
}

// TypeName returns the tag of the records this constructor builds.
func (c *Constructor) TypeName() string {
	return c.typeName
}

func (c *Constructor) CallMatch(args []boxed.Value) bool {
	return c.fn.CallMatch(withReceiver(probe(c.typeName), args))
}

// MatchError explains why args do not match, or returns nil.
func (c *Constructor) MatchError(args []boxed.Value) error {
	full := withReceiver(probe(c.typeName), args)
	if m, ok := c.fn.(dispatch.Matcher); ok {
		return m.MatchError(full)
	}
	if !c.fn.CallMatch(full) {
		return fmt.Errorf("%s constructor %s does not accept the arguments", c.typeName, dispatch.Signature(c))
	}
	return nil
}

func (c *Constructor) Call(ctx context.Context, args []boxed.Value) (boxed.Value, error) {
	obj := New(c.typeName)
	if _, err := c.fn.Call(ctx, withReceiver(obj, args)); err != nil {
		return boxed.Value{}, err
	}
	return obj, nil
}

// Equals reports whether other builds the same tag with an equal
// initializer.
func (c *Constructor) Equals(other dispatch.ProxyFunction) bool {
	o, ok := other.(*Constructor)
	if !ok {
		return false
	}
	return c.typeName == o.typeName && dispatch.Equal(c.fn, o.fn)
}

func (c *Constructor) ContainedFunctions() []dispatch.ProxyFunction {
	return []dispatch.ProxyFunction{c.fn}
}

func (c *Constructor) String() string {
	return fmt.Sprintf("dynamic_constructor(%s)", c.typeName)
}

func withReceiver(receiver boxed.Value, args []boxed.Value) []boxed.Value {
	full := make([]boxed.Value, 0, len(args)+1)
	full = append(full, receiver)
	return append(full, args...)
}
