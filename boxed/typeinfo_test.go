package boxed

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

func TestTypeOfFoldsPointer(t *testing.T) {
	value := TypeOf[point]()
	pointer := TypeOf[*point]()

	require.False(t, value.IsPointer())
	require.True(t, pointer.IsPointer())
	require.Equal(t, reflect.TypeOf(point{}), pointer.Bare())
	require.Equal(t, reflect.TypeOf(&point{}), pointer.Type())

	require.True(t, value.BareEqual(pointer))
	require.False(t, value.ExactEqual(pointer))
}

func TestTypeInfoQualifiers(t *testing.T) {
	base := TypeOf[int]()
	constRef := base.Const().Ref()

	require.True(t, constRef.IsConst())
	require.True(t, constRef.IsReference())
	require.False(t, base.IsConst())
	require.True(t, base.BareEqual(constRef))
	require.False(t, base.ExactEqual(constRef))
	require.True(t, constRef.ExactEqual(TypeOf[int]().Const().Ref()))
}

func TestTypeInfoUndefinedAndVoid(t *testing.T) {
	var undefined TypeInfo
	require.True(t, undefined.IsUndefined())
	require.False(t, VoidType.IsUndefined())
	require.True(t, VoidType.IsVoid())

	require.True(t, undefined.BareEqual(TypeInfo{}))
	require.True(t, VoidType.BareEqual(VoidType))
	require.False(t, VoidType.BareEqual(undefined))
	require.False(t, VoidType.BareEqual(TypeOf[int]()))
	require.False(t, undefined.BareEqual(TypeOf[int]()))

	// Qualifiers never apply to undefined descriptors.
	require.True(t, undefined.Const().IsUndefined())
	require.False(t, undefined.Const().IsConst())
	require.Nil(t, VoidType.Type())
}

func TestTypeInfoString(t *testing.T) {
	tests := []struct {
		ti   TypeInfo
		want string
	}{
		{TypeOf[int](), "int"},
		{TypeOf[*point](), "*boxed.point"},
		{TypeOf[string]().Const().Ref(), "const string&"},
		{VoidType, "void"},
		{TypeInfo{}, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.ti.String())
		})
	}
	require.Equal(t, "boxed.point", TypeOf[*point]().Name())
	require.Equal(t, []string{"int", "void"}, Names([]TypeInfo{TypeOf[int](), VoidType}))
}

func TestTypeForNil(t *testing.T) {
	require.True(t, TypeFor(nil).IsUndefined())
}
