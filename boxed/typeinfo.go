// Package boxed provides the type-erased value representation used by the
// dispatch kernel: a runtime type descriptor (TypeInfo) and a container that
// pairs a native Go value with that descriptor (Value).
//
// A Value never reinterprets its payload. Extracting a typed Go value goes
// through the cast package, which either delivers exactly the requested type
// or fails with a bad cast error.
package boxed

import (
	"reflect"
	"strings"
)

// TypeInfo describes a native Go type together with the qualifiers the
// dispatch layer cares about. The zero TypeInfo is "undefined".
//
// Two descriptors are exact-equal when every field matches and bare-equal
// when only the underlying type matches, ignoring the const, pointer and
// reference qualifiers.
type TypeInfo struct {
	bare        reflect.Type
	isConst     bool
	isPointer   bool
	isReference bool
	isVoid      bool
	defined     bool
}

// VoidType describes the result of a function that returns nothing.
var VoidType = TypeInfo{isVoid: true, defined: true}

// TypeOf returns the descriptor for the static type T. A single level of
// pointer indirection is folded into the pointer qualifier, so TypeOf[*Point]
// and TypeOf[Point] are bare-equal.
func TypeOf[T any]() TypeInfo {
	return TypeFor(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeFor returns the descriptor for the given reflect.Type. A nil type
// yields the undefined descriptor.
func TypeFor(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}
	if t.Kind() == reflect.Pointer {
		return TypeInfo{bare: t.Elem(), isPointer: true, defined: true}
	}
	return TypeInfo{bare: t, defined: true}
}

// Bare returns the underlying type with qualifiers removed.
func (t TypeInfo) Bare() reflect.Type {
	return t.bare
}

// Type returns the Go type this descriptor was built from, re-applying
// pointer indirection. It returns nil for void and undefined descriptors.
func (t TypeInfo) Type() reflect.Type {
	if t.bare == nil {
		return nil
	}
	if t.isPointer {
		return reflect.PointerTo(t.bare)
	}
	return t.bare
}

func (t TypeInfo) IsConst() bool {
	return t.isConst
}

func (t TypeInfo) IsPointer() bool {
	return t.isPointer
}

func (t TypeInfo) IsReference() bool {
	return t.isReference
}

func (t TypeInfo) IsVoid() bool {
	return t.isVoid
}

func (t TypeInfo) IsUndefined() bool {
	return !t.defined
}

// Const returns a copy of the descriptor with the const qualifier set.
func (t TypeInfo) Const() TypeInfo {
	if t.defined {
		t.isConst = true
	}
	return t
}

// Ref returns a copy of the descriptor with the reference qualifier set.
func (t TypeInfo) Ref() TypeInfo {
	if t.defined {
		t.isReference = true
	}
	return t
}

// ExactEqual reports whether both descriptors match on every field.
func (t TypeInfo) ExactEqual(other TypeInfo) bool {
	return t == other
}

// BareEqual reports whether both descriptors name the same underlying type.
// Void only matches void and undefined only matches undefined.
func (t TypeInfo) BareEqual(other TypeInfo) bool {
	if t.bare == nil || other.bare == nil {
		return t.bare == other.bare && t.isVoid == other.isVoid && t.defined == other.defined
	}
	return t.bare == other.bare
}

// Name returns the name of the bare type, without qualifiers.
func (t TypeInfo) Name() string {
	switch {
	case !t.defined:
		return "undefined"
	case t.isVoid:
		return "void"
	}
	return t.bare.String()
}

func (t TypeInfo) String() string {
	if t.bare == nil {
		return t.Name()
	}
	var b strings.Builder
	if t.isConst {
		b.WriteString("const ")
	}
	if t.isPointer {
		b.WriteString("*")
	}
	b.WriteString(t.bare.String())
	if t.isReference {
		b.WriteString("&")
	}
	return b.String()
}

// Names returns the string form of each descriptor, for diagnostics.
func Names(types []TypeInfo) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	return names
}
