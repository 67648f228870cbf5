package dispatch

import (
	"context"
	"fmt"
	"reflect"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/cast"
	"github.com/clanmills/ChaiScript/errors"
)

// Functor builds a Go function of type F that dispatches to fns.
//
// Calling the result boxes its arguments, invokes the first function in fns
// that matches them and casts the result back to the declared result type.
// A leading context.Context parameter of F is forwarded to the call. When
// F ends with an error result, dispatch and cast failures are returned
// there; otherwise they panic with the failure.
func Functor[F any](registry *cast.Registry, fns ...ProxyFunction) (F, error) {
	var zero F
	fn, err := MakeFunc(registry, reflect.TypeOf((*F)(nil)).Elem(), fns)
	if err != nil {
		return zero, err
	}
	return fn.Interface().(F), nil
}

// FunctorFromValue builds a Go function of type F from a boxed
// ProxyFunction or []ProxyFunction.
func FunctorFromValue[F any](registry *cast.Registry, v boxed.Value) (F, error) {
	var zero F
	target := reflect.TypeOf((*F)(nil)).Elem()
	fns, ok := proxyFunctions(v)
	if !ok {
		return zero, errors.NewBadCast(v.TypeInfo(), boxed.TypeFor(target), "value is not a function")
	}
	return Functor[F](registry, fns...)
}

// MakeFunc returns a Go function of the given func type that dispatches to
// fns. See Functor.
func MakeFunc(registry *cast.Registry, target reflect.Type, fns []ProxyFunction) (reflect.Value, error) {
	if target.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("functor: expected func type, got %s", target)
	}
	if len(fns) == 0 {
		return reflect.Value{}, fmt.Errorf("functor: no functions to dispatch to")
	}
	if registry == nil {
		registry = cast.Default()
	}
	fns = append([]ProxyFunction(nil), fns...)
	name := functorName(fns)

	hasContext := target.NumIn() > 0 && target.In(0) == contextInterface
	numOut := target.NumOut()
	hasError := numOut > 0 && target.Out(numOut-1) == errorInterface
	if hasError {
		numOut--
	}

	fail := func(err error) []reflect.Value {
		if !hasError {
			panic(err)
		}
		outs := make([]reflect.Value, target.NumOut())
		for i := range outs {
			outs[i] = reflect.Zero(target.Out(i))
		}
		errVal := reflect.New(errorInterface).Elem()
		errVal.Set(reflect.ValueOf(err))
		outs[len(outs)-1] = errVal
		return outs
	}

	body := func(in []reflect.Value) []reflect.Value {
		ctx := context.Background()
		if hasContext {
			if c, ok := in[0].Interface().(context.Context); ok && c != nil {
				ctx = c
			}
			in = in[1:]
		}
		args, err := boxArgs(registry, target, in)
		if err != nil {
			return fail(err)
		}
		result, err := Dispatch(ctx, name, fns, args)
		if err != nil {
			return fail(err)
		}
		outs, err := unboxResults(registry, target, result, numOut)
		if err != nil {
			return fail(err)
		}
		if hasError {
			outs = append(outs, reflect.Zero(errorInterface))
		}
		return outs
	}
	return reflect.MakeFunc(target, body), nil
}

func functorName(fns []ProxyFunction) string {
	type named interface{ Name() string }
	if n, ok := fns[0].(named); ok {
		return n.Name()
	}
	return ""
}

// boxArgs boxes the arguments of a functor call. Interface arguments are
// boxed by their dynamic type, the way a caller passing them would expect.
func boxArgs(registry *cast.Registry, target reflect.Type, in []reflect.Value) ([]boxed.Value, error) {
	args := make([]boxed.Value, 0, len(in))
	for i, rv := range in {
		if target.IsVariadic() && i == len(in)-1 {
			for j := 0; j < rv.Len(); j++ {
				v, err := registry.BoxReflect(dynamic(rv.Index(j)))
				if err != nil {
					return nil, err
				}
				args = append(args, v)
			}
			break
		}
		v, err := registry.BoxReflect(dynamic(rv))
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func dynamic(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Interface && !rv.IsNil() {
		return rv.Elem()
	}
	return rv
}

func unboxResults(registry *cast.Registry, target reflect.Type, result boxed.Value, numOut int) ([]reflect.Value, error) {
	switch numOut {
	case 0:
		return nil, nil
	case 1:
		out, err := registry.Cast(result, target.Out(0))
		if err != nil {
			return nil, err
		}
		return []reflect.Value{out}, nil
	}
	items, err := cast.ToWith[[]boxed.Value](registry, result)
	if err != nil {
		return nil, err
	}
	if len(items) != numOut {
		return nil, errors.NewBadCast(result.TypeInfo(), boxed.TypeFor(valuesType),
			fmt.Sprintf("expected %d results, got %d", numOut, len(items)))
	}
	outs := make([]reflect.Value, numOut)
	for i, item := range items {
		out, err := registry.Cast(item, target.Out(i))
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i+1, err)
		}
		outs[i] = out
	}
	return outs, nil
}

func proxyFunctions(v boxed.Value) ([]ProxyFunction, bool) {
	switch p := v.Interface().(type) {
	case ProxyFunction:
		return []ProxyFunction{p}, true
	case []ProxyFunction:
		return p, len(p) > 0
	}
	return nil, false
}

// castFunctor is the cast strategy for func targets: a boxed ProxyFunction
// or overload set becomes a Go function of the requested signature.
func castFunctor(r *cast.Registry, v boxed.Value, target reflect.Type) (reflect.Value, error) {
	fns, ok := proxyFunctions(v)
	if !ok {
		return reflect.Value{}, errors.NewBadCast(v.TypeInfo(), boxed.TypeFor(target), "value is not a function")
	}
	return MakeFunc(r, target, fns)
}

// RegisterFunctors installs the strategy converting boxed functions into Go
// funcs of any signature. Values that do not hold a ProxyFunction fall
// through to the next strategy or the default cast.
func RegisterFunctors(b *cast.Builder) *cast.Builder {
	return b.RegisterKind(reflect.Func, castFunctor)
}
