package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_engine/effects/cache"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRistretto(t *testing.T) *cache.RistrettoStore {
	t.Helper()
	store, err := cache.NewRistrettoStore(1e4, 1<<20)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func lookup(t *testing.T, in *cache.Interpreter, key string) pure.Option[[]byte] {
	t.Helper()
	out := in.Execute(context.Background(), cache.MustGetOf(key))
	v, ok := out.Value()
	require.True(t, ok, "get failed: %v", out)
	return v.(pure.Option[[]byte])
}

func TestInterpreter_PutThenGet(t *testing.T) {
	in := cache.NewInterpreter(newRistretto(t))

	assert.True(t, lookup(t, in, "k").IsAbsent())

	out := in.Execute(context.Background(), cache.MustPutOf("k", []byte("v"), 300*time.Second))
	require.True(t, out.IsSuccess())

	got, ok := lookup(t, in, "k").Get()
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestInterpreter_TTLExpires(t *testing.T) {
	in := cache.NewInterpreter(newRistretto(t))

	out := in.Execute(context.Background(), cache.MustPutOf("short", []byte("v"), 20*time.Millisecond))
	require.True(t, out.IsSuccess())

	require.Eventually(t, func() bool {
		return lookup(t, in, "short").IsAbsent()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInterpreter_BackendFailureIsTransient(t *testing.T) {
	in := cache.NewInterpreter(cache.StoreFuncs{
		SetFn: func(context.Context, string, []byte, time.Duration) error {
			return errors.New("connection reset")
		},
	})

	out := in.Execute(context.Background(), cache.MustPutOf("k", nil, 0))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindTransient, err.Kind)
	assert.True(t, err.Retryable())
}

func TestInterpreter_CanceledContextIsClassified(t *testing.T) {
	in := cache.NewInterpreter(newRistretto(t))
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	out := in.Execute(ctx, cache.MustGetOf("k"))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindTimeout, err.Kind)
}

func TestDescriptions_RejectNegativeTTL(t *testing.T) {
	_, err := cache.PutOf("k", nil, -time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	_, err = cache.GetOf("")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	p := cache.MustPutOf("k", []byte("abc"), time.Minute)
	assert.Equal(t, time.Minute, p.TTL())
	assert.Equal(t, "k", p.Key())
}
