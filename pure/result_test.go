package pure_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/on-the-ground/effect_ive_engine/pure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestResult_FlatMapIdentity(t *testing.T) {
	for _, r := range []pure.Result[int, error]{
		pure.Success[int, error](7),
		pure.Failure[int](errBoom),
	} {
		got := pure.FlatMap(r, func(x int) pure.Result[int, error] {
			return pure.Success[int, error](x)
		})
		assert.Equal(t, r, got)
	}
}

func TestResult_FlatMapShortCircuitsOnFailureFromFunction(t *testing.T) {
	r := pure.Success[int, error](1)
	got := pure.FlatMap(r, func(int) pure.Result[string, error] {
		return pure.Failure[string](errBoom)
	})

	require.True(t, got.IsFailure())
	err, _ := got.Err()
	assert.ErrorIs(t, err, errBoom)
}

func TestResult_FailurePassesThroughMapAndFlatMap(t *testing.T) {
	r := pure.Failure[int](errBoom)
	called := false

	mapped := pure.Map(r, func(x int) string {
		called = true
		return strconv.Itoa(x)
	})
	flat := pure.FlatMap(r, func(x int) pure.Result[string, error] {
		called = true
		return pure.Success[string, error]("never")
	})

	assert.False(t, called)
	err, ok := mapped.Err()
	require.True(t, ok)
	assert.Same(t, errBoom, err)
	err, ok = flat.Err()
	require.True(t, ok)
	assert.Same(t, errBoom, err)
}

func TestResult_UnwrapAndFold(t *testing.T) {
	ok := pure.Success[int, string](3)
	bad := pure.Failure[int]("bad")

	assert.Equal(t, 3, ok.UnwrapOr(0))
	assert.Equal(t, 0, bad.UnwrapOr(0))
	assert.Equal(t, 3, bad.UnwrapOrElse(func(e string) int { return len(e) }))

	describe := func(r pure.Result[int, string]) string {
		return pure.Fold(r,
			func(v int) string { return "ok:" + strconv.Itoa(v) },
			func(e string) string { return "err:" + e },
		)
	}
	assert.Equal(t, "ok:3", describe(ok))
	assert.Equal(t, "err:bad", describe(bad))
}

func TestResult_MapErrorLeavesSuccessAlone(t *testing.T) {
	ok := pure.MapError(pure.Success[int, string](1), func(e string) int { return len(e) })
	v, isOk := ok.Value()
	require.True(t, isOk)
	assert.Equal(t, 1, v)

	bad := pure.MapError(pure.Failure[int]("four"), func(e string) int { return len(e) })
	e, isErr := bad.Err()
	require.True(t, isErr)
	assert.Equal(t, 4, e)
}

func TestResult_AllReturnsFirstFailureInOrder(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	got := pure.All([]pure.Result[int, error]{
		pure.Success[int, error](1),
		pure.Failure[int](first),
		pure.Failure[int](second),
	})
	err, ok := got.Err()
	require.True(t, ok)
	assert.Same(t, first, err)

	all := pure.All([]pure.Result[int, error]{
		pure.Success[int, error](1),
		pure.Success[int, error](2),
	})
	values, ok := all.Value()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, values)
}

func TestResult_PairBridge(t *testing.T) {
	r := pure.FromPair(strconv.Atoi("12"))
	v, err := pure.ToPair(r)
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	r = pure.FromPair(strconv.Atoi("x"))
	_, err = pure.ToPair(r)
	assert.Error(t, err)
}

func TestOption_Basics(t *testing.T) {
	some := pure.Some("v")
	none := pure.None[string]()

	assert.True(t, some.IsPresent())
	assert.True(t, none.IsAbsent())
	assert.Equal(t, "v", some.OrElse("d"))
	assert.Equal(t, "d", none.OrElse("d"))

	upper := pure.MapOption(some, func(s string) int { return len(s) })
	n, ok := upper.Get()
	require.True(t, ok)
	assert.Equal(t, 1, n)

	assert.True(t, pure.FlatMapOption(some, func(string) pure.Option[int] { return pure.None[int]() }).IsAbsent())
	assert.True(t, pure.OkOr(none, errBoom).IsFailure())
	assert.True(t, pure.OkOr(some, errBoom).IsSuccess())
	assert.True(t, pure.OptionFromPair(0, false).IsAbsent())
}
