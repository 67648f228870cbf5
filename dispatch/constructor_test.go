package dispatch

import (
	"context"
	goerrors "errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clanmills/ChaiScript/boxed"
	"github.com/clanmills/ChaiScript/cast"
	"github.com/clanmills/ChaiScript/errors"
)

type point struct {
	X, Y   int
	hidden string
}

func newPoint(x, y int) point {
	return point{X: x, Y: y}
}

func newPointPtr(x, y int) *point {
	return &point{X: x, Y: y}
}

func TestConstructor_ByValue(t *testing.T) {
	ctor, err := NewConstructor(newPoint, cast.Default())
	require.NoError(t, err)
	require.Equal(t, 2, ctor.Arity())
	require.Equal(t, "point", ctor.Name())
	require.Equal(t, reflect.TypeOf(point{}), ctor.Target())
	require.Contains(t, ctor.Annotation(), "constructor of")

	types := ctor.ParamTypes()
	require.True(t, types[0].ExactEqual(boxed.TypeOf[*point]()))
	require.True(t, types[1].ExactEqual(boxed.TypeOf[int]()))

	v, err := ctor.Call(context.Background(), box(1, 2))
	require.NoError(t, err)
	require.True(t, v.TypeInfo().IsPointer())

	p, err := cast.To[point](v)
	require.NoError(t, err)
	require.Equal(t, 1, p.X)
	require.Equal(t, 2, p.Y)
}

func TestConstructor_ByPointer(t *testing.T) {
	ctor, err := NewConstructor(newPointPtr, nil)
	require.NoError(t, err)

	v, err := ctor.Call(context.Background(), box(3, 4))
	require.NoError(t, err)
	p, err := cast.To[*point](v)
	require.NoError(t, err)
	require.Equal(t, &point{X: 3, Y: 4}, p)
}

func TestConstructor_InstancesAreDistinct(t *testing.T) {
	ctor := Constructor2(cast.Default(), newPoint)

	a, err := ctor.Call(context.Background(), box(1, 1))
	require.NoError(t, err)
	b, err := ctor.Call(context.Background(), box(1, 1))
	require.NoError(t, err)

	pa, _ := cast.To[*point](a)
	pb, _ := cast.To[*point](b)
	require.NotSame(t, pa, pb)
	pa.X = 9
	require.Equal(t, 1, pb.X)
}

func TestConstructor_ErrorResult(t *testing.T) {
	errNegative := goerrors.New("negative size")
	ctor, err := NewConstructor(func(n int) ([]int, error) {
		if n < 0 {
			return nil, errNegative
		}
		return make([]int, n), nil
	}, nil)
	require.NoError(t, err)

	v, err := ctor.Call(context.Background(), box(3))
	require.NoError(t, err)
	s, err := cast.To[[]int](v)
	require.NoError(t, err)
	require.Len(t, s, 3)

	_, err = ctor.Call(context.Background(), box(-1))
	require.ErrorIs(t, err, errNegative)
}

func TestConstructor_BadArgument(t *testing.T) {
	ctor := Constructor2(nil, newPoint)

	require.False(t, ctor.CallMatch(box(1, "2")))
	_, err := ctor.Call(context.Background(), box(1, "2"))
	var guardErr *errors.GuardError
	require.ErrorAs(t, err, &guardErr)
	var castErr *errors.BadCastError
	require.ErrorAs(t, err, &castErr)
}

func TestConstructor_Invalid(t *testing.T) {
	cases := map[string]any{
		"not a func":      42,
		"nil":             nil,
		"variadic":        func(xs ...int) point { return point{} },
		"no result":       func() {},
		"two results":     func() (point, point) { return point{}, point{} },
		"pointer pointer": func() **point { return nil },
		"interface":       func() error { return nil },
		"too many params": func(a, b, c, d, e, f, g, h, i, j, k int) point { return point{} },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewConstructor(fn, nil)
			require.Error(t, err)
		})
	}
}

func TestConstructor_MaxArity(t *testing.T) {
	ctor, err := NewConstructor(func(a, b, c, d, e, f, g, h, i, j int) point {
		return point{X: a + b + c + d + e + f + g + h + i + j}
	}, nil)
	require.NoError(t, err)
	require.Equal(t, MaxConstructorArity, ctor.Arity())

	v, err := ctor.Call(context.Background(), box(1, 1, 1, 1, 1, 1, 1, 1, 1, 1))
	require.NoError(t, err)
	p, err := cast.To[point](v)
	require.NoError(t, err)
	require.Equal(t, 10, p.X)
}

func TestDefaultConstructor(t *testing.T) {
	ctor := DefaultConstructor[point](nil)
	require.Equal(t, 0, ctor.Arity())

	v, err := ctor.Call(context.Background(), nil)
	require.NoError(t, err)
	p, err := cast.To[*point](v)
	require.NoError(t, err)
	require.Equal(t, &point{}, p)
}

func TestFieldConstructor(t *testing.T) {
	ctor, err := FieldConstructor[point](nil)
	require.NoError(t, err)
	require.Equal(t, 2, ctor.Arity())

	v, err := ctor.Call(context.Background(), box(5, 6))
	require.NoError(t, err)
	p, err := cast.To[point](v)
	require.NoError(t, err)
	require.Equal(t, point{X: 5, Y: 6}, p)

	_, err = FieldConstructor[int](nil)
	require.Error(t, err)
}

func TestConstructor_Helpers(t *testing.T) {
	c0 := Constructor0(nil, func() point { return point{X: 1} })
	c1 := Constructor1(nil, func(x int) point { return point{X: x} })
	c3 := Constructor3(nil, func(x, y int, _ string) *point { return &point{X: x, Y: y} })

	require.Equal(t, 0, c0.Arity())
	require.Equal(t, 1, c1.Arity())
	require.Equal(t, 3, c3.Arity())

	v, err := c3.Call(context.Background(), box(1, 2, "ignored"))
	require.NoError(t, err)
	p, err := cast.To[point](v)
	require.NoError(t, err)
	require.Equal(t, 2, p.Y)
}

func TestConstructor_Equals(t *testing.T) {
	a := Constructor2(nil, newPoint)
	b := Constructor2(cast.Default(), newPoint)
	c := Constructor2(nil, func(x, y int) point { return point{} })
	d := DefaultConstructor[point](nil)

	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))
	require.False(t, a.Equals(d))
	require.True(t, d.Equals(DefaultConstructor[point](nil)))
	require.False(t, a.Equals(Fun("point", newPoint)))
}
