package dynamic

import (
	"context"
	"fmt"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/dispatch"
	"github.com/clanmills/ChaiScript/errors"
)

var objectType = boxed.TypeOf[*Object]()

var _ dispatch.ProxyFunction = (*Function)(nil)

// Function guards a callable so that it only applies when its first
// argument is a record tagged typeName. A tag of AnyTypeName accepts every
// record. When an override type is supplied, a first argument that is not
// a record but whose type is bare-equal to the override is accepted too.
type Function struct {
	dispatch.Base
	typeName    string
	fn          dispatch.ProxyFunction
	override    boxed.TypeInfo
	hasOverride bool
}

// NewFunction guards fn with a tag check on its first argument. fn must
// take at least one argument, the receiver.
func NewFunction(typeName string, fn dispatch.ProxyFunction) *Function {
	return newFunction(typeName, fn, boxed.TypeInfo{}, false)
}

// NewFunctionWithType is NewFunction with an override type. The override
// also replaces the receiver's entry in ParamTypes, so callers see a
// native-typed signature.
func NewFunctionWithType(typeName string, fn dispatch.ProxyFunction, override boxed.TypeInfo) *Function {
	return newFunction(typeName, fn, override, true)
}

func newFunction(typeName string, fn dispatch.ProxyFunction, override boxed.TypeInfo, hasOverride bool) *Function {
	if fn.Arity() == 0 {
		panic("dynamic.Function: the wrapped function must take at least one parameter (the receiver)")
	}
	types := fn.ParamTypes()
	if hasOverride {
		if len(types) < 2 {
			panic("dynamic.Function: the wrapped function declares no receiver type to override")
		}
		types[1] = override
	}
	return &Function{
		Base:        dispatch.NewBase(types, fn.Arity(), fn.Annotation()),
		typeName:    typeName,
		fn:          fn,
		override:    override,
		hasOverride: hasOverride,
	}
}

// TypeName returns the tag this function is guarded by.
func (f *Function) TypeName() string {
	return f.typeName
}

// Override returns the override type and whether one was supplied.
func (f *Function) Override() (boxed.TypeInfo, bool) {
	return f.override, f.hasOverride
}

func (f *Function) CallMatch(args []boxed.Value) bool {
	return f.guard(args) == nil && f.fn.CallMatch(args)
}

// MatchError explains why args do not match, or returns nil.
func (f *Function) MatchError(args []boxed.Value) error {
	if err := f.guard(args); err != nil {
		return err
	}
	if m, ok := f.fn.(dispatch.Matcher); ok {
		return m.MatchError(args)
	}
	if !f.fn.CallMatch(args) {
		return fmt.Errorf("%s method %s does not accept the arguments", f.typeName, dispatch.Signature(f.fn))
	}
	return nil
}

func (f *Function) Call(ctx context.Context, args []boxed.Value) (boxed.Value, error) {
	if err := f.guard(args); err != nil {
		return boxed.Value{}, &errors.GuardError{Function: f.typeName + " method", Err: err}
	}
	return f.fn.Call(ctx, args)
}

// guard checks the first argument against the tag and override type.
func (f *Function) guard(args []boxed.Value) error {
	if len(args) == 0 {
		return &errors.ArityError{Function: f.typeName + " method", Expected: 1, Given: 0, Variadic: true}
	}
	first := args[0]
	ti := first.TypeInfo()
	if ti.BareEqual(objectType) {
		o, ok := asObject(first)
		if !ok {
			return errors.NewBadCast(ti, objectType, "record is nil")
		}
		if f.typeName == AnyTypeName || o.TypeName() == f.typeName {
			return nil
		}
		return errors.NewBadCast(ti, objectType,
			fmt.Sprintf("Dynamic object type mismatch: expected %s, got %s", f.typeName, o.TypeName()))
	}
	if f.hasOverride && ti.BareEqual(f.override) {
		return nil
	}
	return errors.NewBadCast(ti, objectType,
		fmt.Sprintf("expected a %s record as the first argument", f.typeName))
}

// Equals reports whether other guards an equal function with the same tag.
func (f *Function) Equals(other dispatch.ProxyFunction) bool {
	o, ok := other.(*Function)
	if !ok {
		return false
	}
	return f.typeName == o.typeName && dispatch.Equal(f.fn, o.fn)
}

func (f *Function) ContainedFunctions() []dispatch.ProxyFunction {
	return []dispatch.ProxyFunction{f.fn}
}

func (f *Function) String() string {
	return fmt.Sprintf("dynamic_func(%s)", f.typeName)
}

// asObject reads the record held by v without going through a cast, so
// const aliases are accepted as well.
func asObject(v boxed.Value) (*Object, bool) {
	switch o := v.Interface().(type) {
	case *Object:
		return o, o != nil
	case Object:
		return &o, true
	}
	return nil, false
}
