package dispatch

import (
	"fmt"
	"reflect"

	"github.com/clanmills/ChaiScript/cast"
)

// MaxConstructorArity is the largest parameter count a Constructor accepts.
const MaxConstructorArity = 10

var _ ProxyFunction = (*Constructor)(nil)

type constructorKind int

const (
	fromFunc constructorKind = iota
	fromNew
	fromFields
)

// Constructor exposes the construction of a Go type as a ProxyFunction.
// Calling it converts every argument to its parameter type, builds a new
// instance and returns it as an owning boxed *T.
type Constructor struct {
	*NativeFunction
	target reflect.Type
	kind   constructorKind
	orig   reflect.Value
}

// NewConstructor wraps a Go constructor function: func(A, B, ...) T or
// func(A, B, ...) *T, optionally with a trailing error result that is
// returned unchanged. A constructor returning T by value has its result
// moved to a fresh allocation.
func NewConstructor(fn any, registry *cast.Registry) (*Constructor, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor: expected func, got %T", fn)
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("constructor: variadic functions are not supported (%s)", ft)
	}
	if ft.NumIn() > MaxConstructorArity {
		return nil, fmt.Errorf("constructor: %d parameters exceed the limit of %d", ft.NumIn(), MaxConstructorArity)
	}
	hasError := ft.NumOut() == 2 && ft.Out(1) == errorInterface
	if ft.NumOut() != 1 && !hasError {
		return nil, fmt.Errorf("constructor: expected a single result, got %s", ft)
	}
	out := ft.Out(0)
	target := out
	if out.Kind() == reflect.Pointer {
		target = out.Elem()
	}
	if target.Kind() == reflect.Pointer || target.Kind() == reflect.Interface {
		return nil, fmt.Errorf("constructor: cannot construct %s", out)
	}

	impl := rv
	if out.Kind() != reflect.Pointer {
		impl = allocating(rv, target, hasError)
	}
	return newConstructor(impl, target, fromFunc, rv, registry), nil
}

// allocating adapts a constructor returning T into one returning *T.
func allocating(fn reflect.Value, target reflect.Type, hasError bool) reflect.Value {
	ft := fn.Type()
	ins := make([]reflect.Type, ft.NumIn())
	for i := range ins {
		ins[i] = ft.In(i)
	}
	outs := []reflect.Type{reflect.PointerTo(target)}
	if hasError {
		outs = append(outs, errorInterface)
	}
	return reflect.MakeFunc(reflect.FuncOf(ins, outs, false), func(args []reflect.Value) []reflect.Value {
		results := fn.Call(args)
		ptr := reflect.New(target)
		ptr.Elem().Set(results[0])
		if hasError {
			return []reflect.Value{ptr, results[1]}
		}
		return []reflect.Value{ptr}
	})
}

func newConstructor(impl reflect.Value, target reflect.Type, kind constructorKind, orig reflect.Value, registry *cast.Registry) *Constructor {
	name := target.Name()
	if name == "" {
		name = target.String()
	}
	c := &Constructor{
		NativeFunction: NewNativeFunction(impl, name, registry),
		target:         target,
		kind:           kind,
		orig:           orig,
	}
	c.SetAnnotation(fmt.Sprintf("constructor of %s", target))
	return c
}

// DefaultConstructor returns a constructor with no parameters that
// allocates a zero T.
func DefaultConstructor[T any](registry *cast.Registry) *Constructor {
	target := reflect.TypeOf((*T)(nil)).Elem()
	impl := reflect.ValueOf(func() *T { return new(T) })
	return newConstructor(impl, target, fromNew, reflect.Value{}, registry)
}

// FieldConstructor returns a constructor taking one argument per exported
// field of the struct T, in declaration order.
func FieldConstructor[T any](registry *cast.Registry) (*Constructor, error) {
	target := reflect.TypeOf((*T)(nil)).Elem()
	if target.Kind() != reflect.Struct {
		return nil, fmt.Errorf("constructor: %s is not a struct", target)
	}
	var fields []int
	var ins []reflect.Type
	for i := 0; i < target.NumField(); i++ {
		if field := target.Field(i); field.IsExported() {
			fields = append(fields, i)
			ins = append(ins, field.Type)
		}
	}
	if len(fields) > MaxConstructorArity {
		return nil, fmt.Errorf("constructor: %s has %d exported fields, the limit is %d",
			target, len(fields), MaxConstructorArity)
	}
	ft := reflect.FuncOf(ins, []reflect.Type{reflect.PointerTo(target)}, false)
	impl := reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		ptr := reflect.New(target)
		for i, idx := range fields {
			ptr.Elem().Field(idx).Set(args[i])
		}
		return []reflect.Value{ptr}
	})
	return newConstructor(impl, target, fromFields, reflect.Value{}, registry), nil
}

// Target returns the type being constructed.
func (c *Constructor) Target() reflect.Type {
	return c.target
}

// Equals reports whether other constructs the same type the same way.
func (c *Constructor) Equals(other ProxyFunction) bool {
	o, ok := other.(*Constructor)
	if !ok || c.target != o.target || c.kind != o.kind {
		return false
	}
	if c.kind == fromFunc && c.orig.Pointer() != o.orig.Pointer() {
		return false
	}
	return sameTypes(c.paramTypes, o.paramTypes)
}

func (c *Constructor) String() string {
	return fmt.Sprintf("constructor(%s)", c.target)
}

func mustConstructor(c *Constructor, err error) *Constructor {
	if err != nil {
		panic(err)
	}
	return c
}

// Constructor0 wraps a constructor with no parameters.
func Constructor0[T any](registry *cast.Registry, fn func() T) *Constructor {
	return mustConstructor(NewConstructor(fn, registry))
}

// Constructor1 wraps a constructor with one parameter.
func Constructor1[T, A any](registry *cast.Registry, fn func(A) T) *Constructor {
	return mustConstructor(NewConstructor(fn, registry))
}

// Constructor2 wraps a constructor with two parameters.
func Constructor2[T, A, B any](registry *cast.Registry, fn func(A, B) T) *Constructor {
	return mustConstructor(NewConstructor(fn, registry))
}

// Constructor3 wraps a constructor with three parameters.
func Constructor3[T, A, B, C any](registry *cast.Registry, fn func(A, B, C) T) *Constructor {
	return mustConstructor(NewConstructor(fn, registry))
}
