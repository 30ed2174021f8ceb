package storage_test

import (
	"context"
	"errors"
	"testing"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/effects/storage"
	"github.com/on-the-ground/effect_ive_engine/pure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterpreter(t *testing.T) *storage.Interpreter {
	t.Helper()
	store, err := storage.NewMemDBBucketStore()
	require.NoError(t, err)
	return storage.NewInterpreter(store)
}

func run(t *testing.T, in *storage.Interpreter, d effectmodel.Description) any {
	t.Helper()
	out := in.Execute(context.Background(), d)
	v, ok := out.Value()
	require.True(t, ok, "%s failed: %v", d.Tag(), out)
	return v
}

func TestInterpreter_PutGetDelete(t *testing.T) {
	in := newInterpreter(t)

	info := run(t, in, storage.MustPutOf("avatars", "u1.png", []byte("png"), "image/png",
		map[string]string{"owner": "u1"})).(storage.ObjectInfo)
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, storage.ETagOf([]byte("png")), info.ETag)
	assert.Len(t, info.ETag, 16)

	obj, ok := run(t, in, storage.MustGetOf("avatars", "u1.png")).(pure.Option[storage.Object]).Get()
	require.True(t, ok)
	assert.Equal(t, []byte("png"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "u1", obj.Metadata["owner"])

	run(t, in, storage.MustDeleteOf("avatars", "u1.png"))
	run(t, in, storage.MustDeleteOf("avatars", "u1.png"))

	got := run(t, in, storage.MustGetOf("avatars", "u1.png")).(pure.Option[storage.Object])
	assert.True(t, got.IsAbsent())
}

func TestInterpreter_PutReplacesAndChangesETag(t *testing.T) {
	in := newInterpreter(t)

	first := run(t, in, storage.MustPutOf("b", "k", []byte("one"), "", nil)).(storage.ObjectInfo)
	second := run(t, in, storage.MustPutOf("b", "k", []byte("two"), "", nil)).(storage.ObjectInfo)
	assert.NotEqual(t, first.ETag, second.ETag)
	assert.Equal(t, "application/octet-stream", second.ContentType)

	obj, ok := run(t, in, storage.MustGetOf("b", "k")).(pure.Option[storage.Object]).Get()
	require.True(t, ok)
	assert.Equal(t, []byte("two"), obj.Data)
}

func TestInterpreter_ListByPrefixInKeyOrder(t *testing.T) {
	in := newInterpreter(t)
	for _, key := range []string{"logs/c", "logs/a", "img/x", "logs/b"} {
		run(t, in, storage.MustPutOf("b", key, []byte(key), "text/plain", nil))
	}
	run(t, in, storage.MustPutOf("other", "logs/z", nil, "", nil))

	infos := run(t, in, storage.MustListOf("b", "logs/", 10)).([]storage.ObjectInfo)
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	assert.Equal(t, []string{"logs/a", "logs/b", "logs/c"}, keys)

	page := run(t, in, storage.MustListOf("b", "", 2)).([]storage.ObjectInfo)
	require.Len(t, page, 2)
	assert.Equal(t, "img/x", page[0].Key)

	empty := run(t, in, storage.MustListOf("nothing", "", 5)).([]storage.ObjectInfo)
	assert.Empty(t, empty)
}

func TestInterpreter_BackendFailureIsTransient(t *testing.T) {
	in := storage.NewInterpreter(storage.BucketStoreFuncs{
		ListFn: func(context.Context, string, string, int) ([]storage.ObjectInfo, error) {
			return nil, errors.New("503 slow down")
		},
	})

	out := in.Execute(context.Background(), storage.MustListOf("b", "", 1))
	err, ok := out.Err()
	require.True(t, ok)
	assert.Equal(t, effectmodel.KindTransient, err.Kind)
	assert.Equal(t, effectmodel.TagStorageList, err.Tag)
}

func TestDescriptions_Validation(t *testing.T) {
	_, err := storage.ListOf("b", "", 0)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))
	_, err = storage.ListOf("b", "", storage.MaxListKeys+1)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))
	_, err = storage.GetOf("", "k")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))
	_, err = storage.GetOf("a/b", "k")
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))
	_, err = storage.PutOf("b", "", nil, "", nil)
	assert.True(t, errors.Is(err, effectmodel.ErrValidation))

	data := []byte("abc")
	p := storage.MustPutOf("b", "k", data, "text/plain", nil)
	data[0] = 'z'
	assert.Equal(t, []byte("abc"), p.Data())
	assert.True(t, effectmodel.Equal(p, storage.MustPutOf("b", "k", []byte("abc"), "text/plain", nil)))
}
