// Package chaiscript is the registration and resolution front end of the
// dispatch kernel. An Engine keeps a name-indexed table of candidate
// functions and resolves calls against it by offering the arguments to each
// candidate in registration order.
//
//	e := chaiscript.New()
//	e.AddFunc("add", func(a, b int) int { return a + b })
//	result, err := e.Call(ctx, "add", boxed.New(3), boxed.New(4))
package chaiscript

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/cast"
	"github.com/clanmills/ChaiScript/dispatch"
	"github.com/clanmills/ChaiScript/dynamic"
	"github.com/clanmills/ChaiScript/errors"
)

// Engine holds registered functions and type names. Registration is
// expected to happen before scripts run; lookups and calls are safe for
// concurrent use.
type Engine struct {
	mu        sync.RWMutex
	registry  *cast.Registry
	functions map[string][]dispatch.ProxyFunction
	types     map[string]boxed.TypeInfo
	logger    zerolog.Logger
	dedupe    bool
}

// New returns an Engine configured with the given options.
func New(opts ...Option) *Engine {
	o := collectOptions(opts...)
	e := &Engine{
		registry:  o.buildRegistry(dispatch.RegisterFunctors),
		functions: map[string][]dispatch.ProxyFunction{},
		types:     map[string]boxed.TypeInfo{},
		logger:    o.logger,
		dedupe:    o.dedupe,
	}
	e.logger.Debug().Bool("functors", !o.noFunctors).Msg("engine created")
	return e
}

// Registry returns the cast registry used by the engine.
func (e *Engine) Registry() *cast.Registry {
	return e.registry
}

// Add registers fn under name. It returns false when deduplication is on
// and an equal function is already registered under that name.
func (e *Engine) Add(name string, fn dispatch.ProxyFunction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dedupe && dispatch.Contains(e.functions[name], fn) {
		e.logger.Debug().Str("name", name).Msg("duplicate function skipped")
		return false
	}
	e.functions[name] = append(e.functions[name], fn)
	e.logger.Debug().
		Str("name", name).
		Int("arity", fn.Arity()).
		Str("signature", dispatch.Signature(fn)).
		Str("annotation", fn.Annotation()).
		Msg("function registered")
	return true
}

// AddFunc wraps the Go function fn and registers it under name.
func (e *Engine) AddFunc(name string, fn any) error {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return fmt.Errorf("%s: expected func, got %T", name, fn)
	}
	e.Add(name, dispatch.NewNativeFunction(rv, name, e.registry))
	return nil
}

// AddConstructor registers a Go constructor function under name.
func (e *Engine) AddConstructor(name string, fn any) error {
	c, err := dispatch.NewConstructor(fn, e.registry)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	e.Add(name, c)
	return nil
}

// AddMethod registers fn under name as a method of records tagged typeName.
// The first parameter of fn receives the record, usually as *dynamic.Object
// or boxed.Value.
func (e *Engine) AddMethod(typeName, name string, fn any) error {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return fmt.Errorf("%s: expected func, got %T", name, fn)
	}
	native := dispatch.NewNativeFunction(rv, name, e.registry)
	if native.Arity() == 0 {
		return fmt.Errorf("%s: a method of %s must take the record as its first parameter", name, typeName)
	}
	e.Add(name, dynamic.NewFunction(typeName, native))
	return nil
}

// AddObjectConstructor registers a constructor for records tagged typeName
// under that name. init receives the new record followed by the call's
// arguments; its result other than an error is discarded.
func (e *Engine) AddObjectConstructor(typeName string, init any) error {
	rv := reflect.ValueOf(init)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return fmt.Errorf("%s: expected func, got %T", typeName, init)
	}
	fn := dispatch.NewNativeFunction(rv, typeName, e.registry)
	if fn.Arity() == 0 {
		return fmt.Errorf("%s: the initializer must take the record as its first parameter", typeName)
	}
	e.Add(typeName, dynamic.NewConstructor(typeName, fn))
	return nil
}

// AddAttribute registers an accessor for the attribute attrName of records
// tagged typeName, under the attribute's name.
func (e *Engine) AddAttribute(typeName, attrName string) {
	e.Add(attrName, dynamic.NewAttribute(typeName, attrName))
}

// AddAll registers every Go function in fns. Names are processed in sorted
// order and all failures are reported together.
func (e *Engine) AddAll(fns map[string]any) error {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	var result *multierror.Error
	for _, name := range names {
		if err := e.AddFunc(name, fns[name]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// AddType records a script-visible name for a type.
func (e *Engine) AddType(name string, ti boxed.TypeInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types[name] = ti
	e.logger.Debug().Str("name", name).Str("type", ti.String()).Msg("type registered")
}

// Type returns the type registered under name.
func (e *Engine) Type(name string) (boxed.TypeInfo, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ti, ok := e.types[name]
	return ti, ok
}

// TypeName returns the name a type was registered under, matching bare
// types.
func (e *Engine) TypeName(ti boxed.TypeInfo) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for name, t := range e.types {
		if t.BareEqual(ti) {
			return name, true
		}
	}
	return "", false
}

// Functions returns the candidates registered under name, in registration
// order.
func (e *Engine) Functions(name string) []dispatch.ProxyFunction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]dispatch.ProxyFunction(nil), e.functions[name]...)
}

// Function returns the candidates registered under name as one overload
// set, which can be boxed and handed to Go code as a typed func.
func (e *Engine) Function(name string) (*dispatch.OverloadSet, bool) {
	fns := e.Functions(name)
	if len(fns) == 0 {
		return nil, false
	}
	return dispatch.NewOverloadSet(name, fns...), true
}

// Names returns the registered function names in sorted order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call resolves name against args and calls the first matching candidate.
func (e *Engine) Call(ctx context.Context, name string, args ...boxed.Value) (boxed.Value, error) {
	fns := e.Functions(name)
	result, err := dispatch.Dispatch(ctx, name, fns, args)
	if err == nil {
		return result, nil
	}
	if dispatchErr, ok := err.(*errors.DispatchError); ok {
		if len(fns) == 0 {
			dispatchErr.Hint = errors.DidYouMean(errors.Suggest(name, e.Names()))
		}
		e.logger.Debug().
			Str("name", name).
			Strs("args", boxed.Names(dispatchErr.ArgTypes)).
			Int("candidates", len(fns)).
			Msg("no matching function")
	}
	return boxed.Value{}, err
}

// Box converts a Go value to a boxed value using the engine's registry.
func (e *Engine) Box(v any) (boxed.Value, error) {
	return e.registry.Box(v)
}

// Cast converts v to the target type using the engine's registry.
func Cast[T any](e *Engine, v boxed.Value) (T, error) {
	return cast.ToWith[T](e.registry, v)
}

// Functor returns the candidates registered under name as a Go func of
// type F.
func Functor[F any](e *Engine, name string) (F, error) {
	var zero F
	set, ok := e.Function(name)
	if !ok {
		err := errors.NewDispatchError(name, nil, 0)
		err.Hint = errors.DidYouMean(errors.Suggest(name, e.Names()))
		return zero, err
	}
	return dispatch.Functor[F](e.registry, set)
}
