package cast

import (
	goerrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/errors"
)

type point struct {
	X, Y int
}

func (p point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func TestCastRoundTrip(t *testing.T) {
	tests := []any{42, "hello", 3.5, true, point{1, 2}, []int{1, 2}, map[string]int{"a": 1}}
	for _, value := range tests {
		v := boxed.New(value)
		out, err := Default().Cast(v, reflect.TypeOf(value))
		require.NoError(t, err)
		require.Equal(t, value, out.Interface())
	}
}

func TestCastMismatch(t *testing.T) {
	_, err := To[string](boxed.New(42))
	require.Error(t, err)

	var castErr *errors.BadCastError
	require.True(t, goerrors.As(err, &castErr))
	require.True(t, castErr.From.ExactEqual(boxed.TypeOf[int]()))
	require.True(t, castErr.To.ExactEqual(boxed.TypeOf[string]()))
	require.Equal(t, "bad cast: type mismatch (from int to string)", err.Error())
}

func TestCastNoNumericConversion(t *testing.T) {
	_, err := To[int64](boxed.New(42))
	require.Error(t, err)
}

func TestCastPointerSharesStorage(t *testing.T) {
	v := boxed.New(point{X: 1})

	p, err := To[*point](v)
	require.NoError(t, err)
	p.X = 9

	again, err := To[point](v)
	require.NoError(t, err)
	require.Equal(t, 9, again.X)
}

func TestCastValueCopies(t *testing.T) {
	v := boxed.New(point{X: 1})
	copied, err := To[point](v)
	require.NoError(t, err)
	copied.X = 5

	p, err := To[*point](v)
	require.NoError(t, err)
	require.Equal(t, 1, p.X)
}

func TestCastPointerPayload(t *testing.T) {
	orig := &point{X: 2}
	v := boxed.New(orig)

	p, err := To[*point](v)
	require.NoError(t, err)
	require.Same(t, orig, p)

	copied, err := To[point](v)
	require.NoError(t, err)
	require.Equal(t, *orig, copied)
}

func TestCastNilPointerPayload(t *testing.T) {
	var orig *point
	_, err := To[point](boxed.New(orig))
	require.ErrorContains(t, err, "nil pointer")
}

func TestCastRefReturnsReferent(t *testing.T) {
	orig := point{X: 3}
	p, err := To[*point](boxed.Ref(&orig))
	require.NoError(t, err)
	require.Same(t, &orig, p)
}

func TestCastConstRefRefusesMutablePointer(t *testing.T) {
	orig := point{X: 3}
	v := boxed.ConstRef(&orig)

	_, err := To[*point](v)
	require.ErrorContains(t, err, "const")

	copied, err := To[point](v)
	require.NoError(t, err)
	require.Equal(t, orig, copied)
}

func TestCastInterfaceTargets(t *testing.T) {
	s, err := To[fmt.Stringer](boxed.New(point{1, 2}))
	require.NoError(t, err)
	require.Equal(t, "(1, 2)", s.String())

	a, err := To[any](boxed.New(7))
	require.NoError(t, err)
	require.Equal(t, 7, a)

	_, err = To[fmt.Stringer](boxed.New(7))
	require.Error(t, err)

	// A payload declared as an interface is matched on its dynamic value.
	s, err = To[fmt.Stringer](boxed.NewTyped[any](point{3, 4}))
	require.NoError(t, err)
	require.Equal(t, "(3, 4)", s.String())
}

func TestCastNilInterfacePayload(t *testing.T) {
	err, castErr := To[error](boxed.NewTyped[error](nil))
	require.NoError(t, castErr)
	require.Nil(t, err)
}

func TestCastValuePassthrough(t *testing.T) {
	v := boxed.New(1)
	out, err := To[boxed.Value](v)
	require.NoError(t, err)
	require.True(t, out.Same(v))

	undefined, err := To[boxed.Value](boxed.Value{})
	require.NoError(t, err)
	require.True(t, undefined.IsUndefined())
}

func TestCastUndefinedAndVoid(t *testing.T) {
	_, err := To[int](boxed.Undefined())
	require.ErrorContains(t, err, "undefined")

	_, err = To[int](boxed.Void())
	require.ErrorContains(t, err, "void")
}

func TestIs(t *testing.T) {
	require.True(t, Is[int](boxed.New(1)))
	require.False(t, Is[string](boxed.New(1)))
}

func TestExtensionRunsBeforeDefault(t *testing.T) {
	b := NewBuilder()
	Register(b, func(v boxed.Value) (int, error) {
		s, err := To[string](v)
		if err != nil {
			return 0, err
		}
		return strconv.Atoi(s)
	})
	r := b.Build()

	n, err := ToWith[int](r, boxed.New("12"))
	require.NoError(t, err)
	require.Equal(t, 12, n)

	// The strategy fails for ints, so the default cast applies.
	n, err = ToWith[int](r, boxed.New(5))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	_, err = ToWith[int](r, boxed.New("x"))
	require.Error(t, err)

	// The default registry is untouched.
	require.False(t, Default().CanCast(boxed.New("12"), reflect.TypeOf(0)))
}

func TestExtensionsFirstSuccessWins(t *testing.T) {
	var calls []string
	fail := func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
		calls = append(calls, "fail")
		return reflect.Value{}, goerrors.New("not applicable")
	}
	first := func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
		calls = append(calls, "first")
		return reflect.ValueOf("first"), nil
	}
	second := func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
		calls = append(calls, "second")
		return reflect.ValueOf("second"), nil
	}
	r := NewBuilder().
		Register(reflect.TypeOf(""), fail).
		Register(reflect.TypeOf(""), first).
		Register(reflect.TypeOf(""), second).
		Build()

	s, err := ToWith[string](r, boxed.New(1))
	require.NoError(t, err)
	require.Equal(t, "first", s)
	require.Equal(t, []string{"fail", "first"}, calls)
}

func TestKindStrategy(t *testing.T) {
	r := NewBuilder().
		RegisterKind(reflect.Slice, func(_ *Registry, v boxed.Value, target reflect.Type) (reflect.Value, error) {
			out := reflect.MakeSlice(target, 1, 1)
			elem, err := Default().Cast(v, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(0).Set(elem)
			return out, nil
		}).
		Build()

	ints, err := ToWith[[]int](r, boxed.New(3))
	require.NoError(t, err)
	require.Equal(t, []int{3}, ints)

	strs, err := ToWith[[]string](r, boxed.New("a"))
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, strs)
}

func TestStrategyResultMustBeAssignable(t *testing.T) {
	r := NewBuilder().
		Register(reflect.TypeOf(0), func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf("wrong"), nil
		}).
		Build()
	_, err := ToWith[int](r, boxed.New("x"))
	require.Error(t, err)
}

func TestBuilderExtendsBase(t *testing.T) {
	base := NewBuilder().
		Register(reflect.TypeOf(""), func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf("base"), nil
		}).
		Build()
	r := NewBuilderFrom(base).
		Register(reflect.TypeOf(""), func(_ *Registry, v boxed.Value, _ reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf("derived"), nil
		}).
		Build()

	s, err := ToWith[string](r, boxed.New(1))
	require.NoError(t, err)
	require.Equal(t, "base", s)
}

func TestBoxHooks(t *testing.T) {
	type celsius float64
	r := NewBuilder().
		RegisterBox(reflect.TypeOf(celsius(0)), func(_ *Registry, v reflect.Value) (boxed.Value, error) {
			return boxed.New(float64(v.Float())), nil
		}).
		Build()

	v, err := r.Box(celsius(21.5))
	require.NoError(t, err)
	require.Equal(t, 21.5, v.Interface())

	v, err = Default().Box(celsius(21.5))
	require.NoError(t, err)
	require.Equal(t, celsius(21.5), v.Interface())

	existing := boxed.New(1)
	v, err = r.Box(existing)
	require.NoError(t, err)
	require.True(t, v.Same(existing))

	v, err = r.Box(nil)
	require.NoError(t, err)
	require.True(t, v.IsUndefined())
}

func TestBoxReflectKeepsStaticType(t *testing.T) {
	var err error = goerrors.New("x")
	v, boxErr := Default().BoxReflect(reflect.ValueOf(&err).Elem())
	require.NoError(t, boxErr)
	require.True(t, v.TypeInfo().ExactEqual(boxed.TypeOf[error]()))
}
