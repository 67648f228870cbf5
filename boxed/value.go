package boxed

import (
	"errors"
	"fmt"
	"reflect"
)

// Value is a type-erased container holding one native value and the
// TypeInfo describing it.
//
// A Value is a handle: copies of a Value share the same slot, so a payload
// built with New is owned jointly by every copy and released by the garbage
// collector once the last one is gone. Ref and ConstRef build aliasing
// values instead, which observe an object owned by the caller. Writes made
// through an aliasing value are visible to the owner and the other way
// around; the caller decides how long that sharing is meant to last.
//
// Values are not synchronized. Concurrent mutation of the same slot must be
// serialized by the caller.
//
// The zero Value is undefined and cannot be assigned to.
type Value struct {
	d *data
}

type data struct {
	// obj is always addressable so that pointer casts can hand out the
	// storage itself rather than a copy.
	obj   reflect.Value
	ti    TypeInfo
	isRef bool
}

var (
	errAssignToZero  = errors.New("cannot assign to an unallocated value")
	errAssignToConst = errors.New("cannot assign to a const value")
)

// New boxes v as an owning value. Boxing an existing Value returns it
// unchanged and boxing nil yields a fresh undefined slot.
func New(v any) Value {
	switch v := v.(type) {
	case nil:
		return Undefined()
	case Value:
		return v
	}
	return FromReflect(reflect.ValueOf(v))
}

// NewTyped boxes v using its static type T rather than its dynamic type.
// Use it to keep interface types, e.g. NewTyped[error](err).
func NewTyped[T any](v T) Value {
	return FromReflect(reflect.ValueOf(&v).Elem())
}

// FromReflect boxes a copy of rv as an owning value typed by rv.Type().
func FromReflect(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Undefined()
	}
	if rv.Type() == valueType {
		return rv.Interface().(Value)
	}
	slot := reflect.New(rv.Type()).Elem()
	slot.Set(rv)
	return Value{d: &data{obj: slot, ti: TypeFor(rv.Type())}}
}

// Ref builds a value aliasing *p without taking ownership of it.
func Ref[T any](p *T) Value {
	if p == nil {
		return Undefined()
	}
	obj := reflect.ValueOf(p).Elem()
	return Value{d: &data{obj: obj, ti: TypeFor(obj.Type()).Ref(), isRef: true}}
}

// ConstRef builds a read-only value aliasing *p. Casts may copy the
// payload but will refuse to hand out a mutable pointer to it.
func ConstRef[T any](p *T) Value {
	v := Ref(p)
	if v.d != nil && v.d.ti.defined {
		v.d.ti = v.d.ti.Const()
	}
	return v
}

// Undefined returns a new slot that holds no value yet but can be assigned.
func Undefined() Value {
	return Value{d: &data{}}
}

// Void returns the value produced by functions with no results.
func Void() Value {
	return Value{d: &data{ti: VoidType}}
}

var valueType = reflect.TypeOf(Value{})

// TypeInfo returns the descriptor of the payload.
func (v Value) TypeInfo() TypeInfo {
	if v.d == nil {
		return TypeInfo{}
	}
	return v.d.ti
}

func (v Value) IsUndefined() bool {
	return v.d == nil || !v.d.ti.defined
}

func (v Value) IsVoid() bool {
	return v.d != nil && v.d.ti.isVoid
}

func (v Value) IsConst() bool {
	return v.d != nil && v.d.ti.isConst
}

// IsRef reports whether the value aliases an object it does not own.
func (v Value) IsRef() bool {
	return v.d != nil && v.d.isRef
}

// IsNull reports whether the value is undefined or holds a nil pointer,
// interface, map, slice, channel or function.
func (v Value) IsNull() bool {
	if v.IsUndefined() || v.IsVoid() {
		return true
	}
	switch v.d.obj.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.d.obj.IsNil()
	}
	return false
}

// Reflect returns the addressable storage of the payload. It is meant for
// the cast package; other callers should use cast.To.
func (v Value) Reflect() reflect.Value {
	if v.d == nil {
		return reflect.Value{}
	}
	return v.d.obj
}

// Interface returns the payload as an empty interface, or nil when the
// value is undefined or void.
func (v Value) Interface() any {
	if v.d == nil || !v.d.obj.IsValid() {
		return nil
	}
	return v.d.obj.Interface()
}

// Same reports whether both values are handles to the same slot.
func (v Value) Same(other Value) bool {
	return v.d != nil && v.d == other.d
}

// Assign makes the slot behind v hold the payload of other. Every copy of v
// observes the change. The payload storage itself is shared with other, not
// copied.
func (v Value) Assign(other Value) error {
	if v.d == nil {
		return errAssignToZero
	}
	if v.d.ti.isConst {
		return errAssignToConst
	}
	if other.d == nil {
		*v.d = data{}
		return nil
	}
	*v.d = *other.d
	return nil
}

func (v Value) String() string {
	switch {
	case v.IsVoid():
		return "void"
	case v.IsUndefined():
		return "undefined"
	}
	return fmt.Sprintf("%v (%s)", v.Interface(), v.d.ti)
}
