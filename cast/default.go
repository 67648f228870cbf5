package cast

import (
	"reflect"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/errors"
)

var valueType = reflect.TypeOf(boxed.Value{})

// castDefault is the conversion used when no extension strategy applies.
//
//   - boxed.Value targets receive v itself.
//   - Interface targets accept any payload implementing the interface.
//   - Pointer targets (*T) require a bare match and receive the payload's
//     storage, so writes are seen by every holder of v. Const values refuse.
//   - Value targets (T) require a bare match and receive a copy, following
//     a pointer payload when needed.
func castDefault(v boxed.Value, target reflect.Type) (reflect.Value, error) {
	if target == valueType {
		return reflect.ValueOf(v), nil
	}
	from := v.TypeInfo()
	to := boxed.TypeFor(target)
	if v.IsUndefined() {
		return reflect.Value{}, errors.NewBadCast(from, to, "value is undefined")
	}
	if v.IsVoid() {
		return reflect.Value{}, errors.NewBadCast(from, to, "value is void")
	}
	obj := v.Reflect()

	if target.Kind() == reflect.Interface {
		return castInterface(obj, from, to, target)
	}

	if !from.BareEqual(to) {
		return reflect.Value{}, errors.NewBadCast(from, to, "type mismatch")
	}

	if to.IsPointer() {
		if from.IsConst() {
			return reflect.Value{}, errors.NewBadCast(from, to, "cannot take a mutable pointer to a const value")
		}
		if from.IsPointer() {
			// The payload already is the pointer.
			return obj, nil
		}
		return obj.Addr(), nil
	}

	out := reflect.New(target).Elem()
	if from.IsPointer() {
		if obj.IsNil() {
			return reflect.Value{}, errors.NewBadCast(from, to, "nil pointer")
		}
		out.Set(obj.Elem())
		return out, nil
	}
	out.Set(obj)
	return out, nil
}

func castInterface(obj reflect.Value, from, to boxed.TypeInfo, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	if obj.Type().Implements(target) {
		out.Set(obj)
		return out, nil
	}
	// An interface payload may hold a dynamic value that implements target.
	if obj.Kind() == reflect.Interface && !obj.IsNil() && obj.Elem().Type().Implements(target) {
		out.Set(obj.Elem())
		return out, nil
	}
	return reflect.Value{}, errors.NewBadCast(from, to, "value does not implement "+target.String())
}
