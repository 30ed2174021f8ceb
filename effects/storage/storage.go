package storage

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

// BucketStore is the narrow capability a blob storage adapter provides.
// Get reports ok=false for a missing object; Delete of a missing object is
// not an error.
type BucketStore interface {
	Get(ctx context.Context, bucket, key string) (Object, bool, error)
	Put(ctx context.Context, obj Object) (ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error)
}

// ETagOf is the entity tag of data: the hex xxhash64 digest.
func ETagOf(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

var _ effectmodel.Interpreter = (*Interpreter)(nil)

// Interpreter executes storage descriptions against a BucketStore.
type Interpreter struct {
	store BucketStore
}

// NewInterpreter executes storage descriptions against store.
func NewInterpreter(store BucketStore) *Interpreter {
	return &Interpreter{store: store}
}

func (*Interpreter) Tags() []effectmodel.Tag {
	return effectmodel.TagsOf(effectmodel.FamilyStorage)
}

func (in *Interpreter) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	switch d := d.(type) {

	case Get:
		obj, ok, err := in.store.Get(ctx, d.bucket, d.key)
		if err != nil {
			return effectmodel.Failed(effectmodel.Classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(pure.OptionFromPair(obj, ok))

	case Put:
		data := []byte(d.data)
		info, err := in.store.Put(ctx, Object{
			ObjectInfo: ObjectInfo{
				Bucket:      d.bucket,
				Key:         d.key,
				Size:        int64(len(data)),
				ContentType: d.contentType,
				Metadata:    d.Metadata(),
				ETag:        ETagOf(data),
			},
			Data: data,
		})
		if err != nil {
			return effectmodel.Failed(effectmodel.Classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(info)

	case Delete:
		if err := in.store.Delete(ctx, d.bucket, d.key); err != nil {
			return effectmodel.Failed(effectmodel.Classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	case List:
		infos, err := in.store.List(ctx, d.bucket, d.prefix, d.maxKeys)
		if err != nil {
			return effectmodel.Failed(effectmodel.Classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(infos)

	default:
		panic(fmt.Errorf("storage interpreter: foreign description %T", d))
	}
}

// BucketStoreFuncs adapts plain functions into a BucketStore. A nil function
// behaves like an empty bucket that accepts every write.
type BucketStoreFuncs struct {
	GetFn    func(ctx context.Context, bucket, key string) (Object, bool, error)
	PutFn    func(ctx context.Context, obj Object) (ObjectInfo, error)
	DeleteFn func(ctx context.Context, bucket, key string) error
	ListFn   func(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error)
}

var _ BucketStore = BucketStoreFuncs{}

func (f BucketStoreFuncs) Get(ctx context.Context, bucket, key string) (Object, bool, error) {
	if f.GetFn == nil {
		return Object{}, false, nil
	}
	return f.GetFn(ctx, bucket, key)
}

func (f BucketStoreFuncs) Put(ctx context.Context, obj Object) (ObjectInfo, error) {
	if f.PutFn == nil {
		return obj.ObjectInfo, nil
	}
	return f.PutFn(ctx, obj)
}

func (f BucketStoreFuncs) Delete(ctx context.Context, bucket, key string) error {
	if f.DeleteFn == nil {
		return nil
	}
	return f.DeleteFn(ctx, bucket, key)
}

func (f BucketStoreFuncs) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error) {
	if f.ListFn == nil {
		return []ObjectInfo{}, nil
	}
	return f.ListFn(ctx, bucket, prefix, maxKeys)
}
