// Package cast converts boxed values to and from concrete Go types.
//
// The default conversion delivers the payload of a boxed value when its
// TypeInfo matches the requested type and fails with a bad cast otherwise.
// Extension strategies, registered per target type or per target kind,
// are consulted before the default and may synthesize the target from a
// differently typed value.
package cast

import (
	"reflect"
	"sync"

	"github.com/clanmills/ChaiScript/boxed"
)

// Strategy converts a boxed value to the target type. It returns an error
// when it does not apply, in which case the next strategy is consulted.
// Strategies must not mutate v; they back side-effect-free match tests.
type Strategy func(r *Registry, v boxed.Value, target reflect.Type) (reflect.Value, error)

// BoxFunc converts a native Go value into a boxed value.
type BoxFunc func(r *Registry, v reflect.Value) (boxed.Value, error)

// Registry handles conversion between boxed values and Go values.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	byType map[reflect.Type][]Strategy
	byKind map[reflect.Kind][]Strategy
	box    map[reflect.Type]BoxFunc
}

// Cast converts v to the target type. Strategies registered for the exact
// target type run first, then strategies registered for its kind, each in
// registration order. The first success wins; if none succeeds the default
// conversion decides.
func (r *Registry) Cast(v boxed.Value, target reflect.Type) (reflect.Value, error) {
	for _, fn := range r.byType[target] {
		if out, ok := r.try(fn, v, target); ok {
			return out, nil
		}
	}
	for _, fn := range r.byKind[target.Kind()] {
		if out, ok := r.try(fn, v, target); ok {
			return out, nil
		}
	}
	return castDefault(v, target)
}

func (r *Registry) try(fn Strategy, v boxed.Value, target reflect.Type) (reflect.Value, bool) {
	out, err := fn(r, v, target)
	if err != nil || !out.IsValid() {
		return reflect.Value{}, false
	}
	if out.Type() == target {
		return out, true
	}
	if !out.Type().AssignableTo(target) {
		return reflect.Value{}, false
	}
	slot := reflect.New(target).Elem()
	slot.Set(out)
	return slot, true
}

// CanCast reports whether Cast would succeed. It performs the conversion
// and discards the result.
func (r *Registry) CanCast(v boxed.Value, target reflect.Type) bool {
	_, err := r.Cast(v, target)
	return err == nil
}

// Box converts a Go value to a boxed value using its dynamic type.
func (r *Registry) Box(v any) (boxed.Value, error) {
	if bv, ok := v.(boxed.Value); ok {
		return bv, nil
	}
	if v == nil {
		return boxed.Undefined(), nil
	}
	return r.BoxReflect(reflect.ValueOf(v))
}

// BoxReflect converts rv to a boxed value typed by rv.Type(), so interface
// types declared by a function signature are preserved.
func (r *Registry) BoxReflect(rv reflect.Value) (boxed.Value, error) {
	if !rv.IsValid() {
		return boxed.Undefined(), nil
	}
	if fn, ok := r.box[rv.Type()]; ok {
		return fn(r, rv)
	}
	return boxed.FromReflect(rv), nil
}

// *****************************************************************************
// Builder
// *****************************************************************************

// Builder constructs a Registry with extension strategies. Registration is
// meant to happen once, during start-up, before the registry is shared.
type Builder struct {
	base   *Registry
	byType map[reflect.Type][]Strategy
	byKind map[reflect.Kind][]Strategy
	box    map[reflect.Type]BoxFunc
}

// NewBuilder creates a builder starting from the default registry.
func NewBuilder() *Builder {
	return NewBuilderFrom(Default())
}

// NewBuilderFrom creates a builder that extends base. Strategies of base
// keep their priority over the ones added to the builder.
func NewBuilderFrom(base *Registry) *Builder {
	return &Builder{
		base:   base,
		byType: make(map[reflect.Type][]Strategy),
		byKind: make(map[reflect.Kind][]Strategy),
		box:    make(map[reflect.Type]BoxFunc),
	}
}

// Register adds a strategy for casts to the exact target type.
func (b *Builder) Register(target reflect.Type, fn Strategy) *Builder {
	b.byType[target] = append(b.byType[target], fn)
	return b
}

// RegisterKind adds a strategy for casts to any target of the given kind,
// e.g. reflect.Func for every function signature.
func (b *Builder) RegisterKind(kind reflect.Kind, fn Strategy) *Builder {
	b.byKind[kind] = append(b.byKind[kind], fn)
	return b
}

// RegisterBox adds a converter for Go values of type typ. A later
// registration for the same type replaces an earlier one.
func (b *Builder) RegisterBox(typ reflect.Type, fn BoxFunc) *Builder {
	b.box[typ] = fn
	return b
}

// Build creates an immutable Registry.
func (b *Builder) Build() *Registry {
	r := &Registry{
		byType: make(map[reflect.Type][]Strategy),
		byKind: make(map[reflect.Kind][]Strategy),
		box:    make(map[reflect.Type]BoxFunc),
	}
	if b.base != nil {
		for k, v := range b.base.byType {
			r.byType[k] = append(r.byType[k], v...)
		}
		for k, v := range b.base.byKind {
			r.byKind[k] = append(r.byKind[k], v...)
		}
		for k, v := range b.base.box {
			r.box[k] = v
		}
	}
	for k, v := range b.byType {
		r.byType[k] = append(r.byType[k], v...)
	}
	for k, v := range b.byKind {
		r.byKind[k] = append(r.byKind[k], v...)
	}
	for k, v := range b.box {
		r.box[k] = v
	}
	return r
}

// Register adds a typed strategy for casts to T.
func Register[T any](b *Builder, fn func(v boxed.Value) (T, error)) *Builder {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return b.Register(target, func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
		out, err := fn(v)
		if err != nil {
			return reflect.Value{}, err
		}
		slot := reflect.New(target).Elem()
		slot.Set(reflect.ValueOf(&out).Elem())
		return slot, nil
	})
}

// *****************************************************************************
// Default Registry
// *****************************************************************************

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry with no extension strategies.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = &Registry{
			byType: map[reflect.Type][]Strategy{},
			byKind: map[reflect.Kind][]Strategy{},
			box:    map[reflect.Type]BoxFunc{},
		}
	})
	return defaultRegistry
}

// *****************************************************************************
// Convenience functions
// *****************************************************************************

// To casts v to T using the default registry.
func To[T any](v boxed.Value) (T, error) {
	return ToWith[T](Default(), v)
}

// ToWith casts v to T using the given registry.
func ToWith[T any](r *Registry, v boxed.Value) (T, error) {
	var zero T
	out, err := r.Cast(v, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	// A nil interface result has no dynamic type to assert.
	if t, ok := out.Interface().(T); ok {
		return t, nil
	}
	return zero, nil
}

// Is reports whether v can be cast to T using the default registry.
func Is[T any](v boxed.Value) bool {
	return Default().CanCast(v, reflect.TypeOf((*T)(nil)).Elem())
}
