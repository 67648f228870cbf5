package dispatch

import (
	"context"
	"fmt"
	"reflect"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/cast"
	"github.com/clanmills/ChaiScript/errors"
)

var (
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()
	valuesType       = reflect.TypeOf([]boxed.Value(nil))
)

var _ ProxyFunction = (*NativeFunction)(nil) // Ensure that *NativeFunction implements ProxyFunction

// NativeFunction wraps an arbitrary Go function as a ProxyFunction.
// It uses reflection to handle argument conversion and function calls.
//
// A leading context.Context parameter receives the context given to Call
// and is not counted as an argument. A trailing error result is returned as
// the error of Call. Several remaining results are boxed together as a
// []boxed.Value.
type NativeFunction struct {
	Base
	fn         reflect.Value  // The Go function
	fnType     reflect.Type   // Cached type info
	name       string         // For error messages
	numIn      int            // Input count (excluding context if present)
	isVariadic bool           // Whether the function is variadic
	hasContext bool           // First param is context.Context
	hasError   bool           // Last return is error
	registry   *cast.Registry // For type conversion
}

// NewNativeFunction creates a new NativeFunction wrapping the given Go
// function. The registry is used for converting arguments and results.
func NewNativeFunction(fn reflect.Value, name string, registry *cast.Registry) *NativeFunction {
	fnType := fn.Type()
	if fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("NativeFunction: expected func, got %s", fnType.Kind()))
	}
	if registry == nil {
		registry = cast.Default()
	}

	f := &NativeFunction{
		fn:         fn,
		fnType:     fnType,
		name:       name,
		isVariadic: fnType.IsVariadic(),
		registry:   registry,
	}

	start := 0
	if fnType.NumIn() > 0 && fnType.In(0) == contextInterface {
		f.hasContext = true
		start = 1
	}
	f.numIn = fnType.NumIn() - start

	numOut := fnType.NumOut()
	if numOut > 0 && fnType.Out(numOut-1) == errorInterface {
		f.hasError = true
		numOut--
	}

	types := make([]boxed.TypeInfo, 0, f.numIn+1)
	switch numOut {
	case 0:
		types = append(types, boxed.VoidType)
	case 1:
		types = append(types, boxed.TypeFor(fnType.Out(0)))
	default:
		types = append(types, boxed.TypeFor(valuesType))
	}
	for i := start; i < fnType.NumIn(); i++ {
		types = append(types, boxed.TypeFor(fnType.In(i)))
	}

	arity := f.numIn
	if f.isVariadic {
		arity = VariadicArity
	}
	f.Base = NewBase(types, arity, "")
	return f
}

// Fun wraps fn, which must be a Go function, using the default registry.
func Fun(name string, fn any) *NativeFunction {
	return NewNativeFunction(reflect.ValueOf(fn), name, cast.Default())
}

// Name returns the name of the wrapped function.
func (f *NativeFunction) Name() string {
	return f.name
}

// WithAnnotation sets the annotation and returns f.
func (f *NativeFunction) WithAnnotation(annotation string) *NativeFunction {
	f.SetAnnotation(annotation)
	return f
}

func (f *NativeFunction) String() string {
	return fmt.Sprintf("native_func(%s)", f.name)
}

// Equals reports whether other wraps the same Go function under the same
// name and signature.
func (f *NativeFunction) Equals(other ProxyFunction) bool {
	o, ok := other.(*NativeFunction)
	if !ok {
		return false
	}
	return f.name == o.name &&
		f.fn.Pointer() == o.fn.Pointer() &&
		sameTypes(f.paramTypes, o.paramTypes)
}

// CallMatch reports whether args have the right count and each converts to
// the corresponding parameter type.
func (f *NativeFunction) CallMatch(args []boxed.Value) bool {
	return f.MatchError(args) == nil
}

// MatchError explains why args do not match, or returns nil.
func (f *NativeFunction) MatchError(args []boxed.Value) error {
	if err := f.validateArgCount(len(args)); err != nil {
		return err
	}
	for i, arg := range args {
		if _, err := f.registry.Cast(arg, f.argType(i)); err != nil {
			return fmt.Errorf("%s: argument %d: %w", f.name, i+1, err)
		}
	}
	return nil
}

// Call invokes the wrapped Go function with the given boxed arguments.
func (f *NativeFunction) Call(ctx context.Context, args []boxed.Value) (result boxed.Value, err error) {
	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = fmt.Errorf("panic in %s: %w", f.name, perr)
			} else {
				err = fmt.Errorf("panic in %s: %v", f.name, r)
			}
			result = boxed.Value{}
		}
	}()

	callArgs, err := f.buildCallArgs(ctx, args)
	if err != nil {
		return boxed.Value{}, &errors.GuardError{Function: f.name, Err: err}
	}

	var results []reflect.Value
	if f.isVariadic {
		results = f.fn.CallSlice(callArgs)
	} else {
		results = f.fn.Call(callArgs)
	}
	return f.processResults(results)
}

// argType returns the Go type argument i converts to.
func (f *NativeFunction) argType(i int) reflect.Type {
	offset := 0
	if f.hasContext {
		offset = 1
	}
	if f.isVariadic && i >= f.numIn-1 {
		return f.fnType.In(f.fnType.NumIn() - 1).Elem()
	}
	return f.fnType.In(offset + i)
}

func (f *NativeFunction) validateArgCount(numArgs int) error {
	if f.isVariadic {
		// Variadic functions need at least numIn-1 arguments
		if minArgs := f.numIn - 1; numArgs < minArgs {
			return &errors.ArityError{Function: f.name, Expected: minArgs, Given: numArgs, Variadic: true}
		}
		return nil
	}
	if numArgs != f.numIn {
		return &errors.ArityError{Function: f.name, Expected: f.numIn, Given: numArgs}
	}
	return nil
}

func (f *NativeFunction) buildCallArgs(ctx context.Context, args []boxed.Value) ([]reflect.Value, error) {
	if err := f.validateArgCount(len(args)); err != nil {
		return nil, err
	}
	callArgs := make([]reflect.Value, 0, f.fnType.NumIn())
	if f.hasContext {
		if ctx == nil {
			ctx = context.Background()
		}
		callArgs = append(callArgs, reflect.ValueOf(&ctx).Elem())
	}

	fixed := len(args)
	if f.isVariadic {
		fixed = f.numIn - 1
	}
	for i := 0; i < fixed; i++ {
		v, err := f.registry.Cast(args[i], f.argType(i))
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", f.name, i+1, err)
		}
		callArgs = append(callArgs, v)
	}
	if f.isVariadic {
		// Build the slice passed as the variadic parameter
		sliceType := f.fnType.In(f.fnType.NumIn() - 1)
		rest := reflect.MakeSlice(sliceType, 0, len(args)-fixed)
		for i := fixed; i < len(args); i++ {
			v, err := f.registry.Cast(args[i], sliceType.Elem())
			if err != nil {
				return nil, fmt.Errorf("%s: variadic argument %d: %w", f.name, i+1, err)
			}
			rest = reflect.Append(rest, v)
		}
		callArgs = append(callArgs, rest)
	}
	return callArgs, nil
}

func (f *NativeFunction) processResults(results []reflect.Value) (boxed.Value, error) {
	numOut := len(results)

	// Check for error in last position
	if f.hasError {
		if errVal := results[numOut-1]; !errVal.IsNil() {
			return boxed.Value{}, errVal.Interface().(error)
		}
		results = results[:numOut-1]
		numOut--
	}

	switch numOut {
	case 0:
		return boxed.Void(), nil
	case 1:
		return f.registry.BoxReflect(results[0])
	}

	// Multiple return values are boxed together
	items := make([]boxed.Value, numOut)
	for i, rv := range results {
		item, err := f.registry.BoxReflect(rv)
		if err != nil {
			return boxed.Value{}, fmt.Errorf("%s: return value %d: %w", f.name, i+1, err)
		}
		items[i] = item
	}
	return boxed.New(items), nil
}
