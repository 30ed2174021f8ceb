package storage

import (
	"maps"
	"strings"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// MaxListKeys bounds a single List page.
const MaxListKeys = 1000

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ContentType string
	Metadata    map[string]string
	ETag        string
}

// Object is a stored object with its content.
type Object struct {
	ObjectInfo
	Data []byte
}

func (o Object) clone() Object {
	o.Data = append([]byte(nil), o.Data...)
	o.Metadata = maps.Clone(o.Metadata)
	return o
}

// Description is a sealed interface for object storage operations.
type Description interface {
	effectmodel.Description
	storageDescription()
}

var (
	_ Description = Get{}
	_ Description = Put{}
	_ Description = Delete{}
	_ Description = List{}
)

// Get fetches one object.
type Get struct {
	bucket, key string
}

func GetOf(bucket, key string) (Get, error) {
	if err := checkPath(effectmodel.TagStorageGet, bucket, key); err != nil {
		return Get{}, err
	}
	return Get{bucket: bucket, key: key}, nil
}

func MustGetOf(bucket, key string) Get { return must(GetOf(bucket, key)) }

func (Get) Tag() effectmodel.Tag   { return effectmodel.TagStorageGet }
func (d Get) Bucket() string       { return d.bucket }
func (d Get) Key() string          { return d.key }
func (d Get) PartitionKey() string { return d.bucket + "/" + d.key }
func (Get) storageDescription()    {}

// Put stores data under bucket/key, replacing any previous object.
type Put struct {
	bucket, key string
	data        string
	contentType string
	metadata    map[string]string
}

// PutOf copies data and metadata, so later changes by the caller are not seen.
func PutOf(bucket, key string, data []byte, contentType string, metadata map[string]string) (Put, error) {
	if err := checkPath(effectmodel.TagStoragePut, bucket, key); err != nil {
		return Put{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Put{
		bucket:      bucket,
		key:         key,
		data:        string(data),
		contentType: contentType,
		metadata:    maps.Clone(metadata),
	}, nil
}

func MustPutOf(bucket, key string, data []byte, contentType string, metadata map[string]string) Put {
	return must(PutOf(bucket, key, data, contentType, metadata))
}

func (Put) Tag() effectmodel.Tag          { return effectmodel.TagStoragePut }
func (d Put) Bucket() string              { return d.bucket }
func (d Put) Key() string                 { return d.key }
func (d Put) Data() []byte                { return []byte(d.data) }
func (d Put) ContentType() string         { return d.contentType }
func (d Put) Metadata() map[string]string { return maps.Clone(d.metadata) }
func (d Put) PartitionKey() string        { return d.bucket + "/" + d.key }
func (Put) storageDescription()           {}

// Delete removes bucket/key. Deleting a missing object succeeds.
type Delete struct {
	bucket, key string
}

func DeleteOf(bucket, key string) (Delete, error) {
	if err := checkPath(effectmodel.TagStorageDelete, bucket, key); err != nil {
		return Delete{}, err
	}
	return Delete{bucket: bucket, key: key}, nil
}

func MustDeleteOf(bucket, key string) Delete { return must(DeleteOf(bucket, key)) }

func (Delete) Tag() effectmodel.Tag   { return effectmodel.TagStorageDelete }
func (d Delete) Bucket() string       { return d.bucket }
func (d Delete) Key() string          { return d.key }
func (d Delete) PartitionKey() string { return d.bucket + "/" + d.key }
func (Delete) storageDescription()    {}

// List returns up to maxKeys objects of bucket whose key starts with prefix,
// in key order.
type List struct {
	bucket, prefix string
	maxKeys        int
}

// ListOf describes a prefix listing of at most maxKeys objects.
func ListOf(bucket, prefix string, maxKeys int) (List, error) {
	if err := checkBucket(effectmodel.TagStorageList, bucket); err != nil {
		return List{}, err
	}
	if maxKeys < 1 || maxKeys > MaxListKeys {
		return List{}, effectmodel.ValidationError(effectmodel.TagStorageList,
			"maxKeys must be within 1..%d, got %d", MaxListKeys, maxKeys)
	}
	return List{bucket: bucket, prefix: prefix, maxKeys: maxKeys}, nil
}

func MustListOf(bucket, prefix string, maxKeys int) List {
	return must(ListOf(bucket, prefix, maxKeys))
}

func (List) Tag() effectmodel.Tag   { return effectmodel.TagStorageList }
func (d List) Bucket() string       { return d.bucket }
func (d List) Prefix() string       { return d.prefix }
func (d List) MaxKeys() int         { return d.maxKeys }
func (d List) PartitionKey() string { return d.bucket }
func (List) storageDescription()    {}

func checkBucket(tag effectmodel.Tag, bucket string) error {
	if bucket == "" {
		return effectmodel.ValidationError(tag, "bucket must not be empty")
	}
	if strings.Contains(bucket, "/") {
		return effectmodel.ValidationError(tag, "bucket %q must not contain '/'", bucket)
	}
	return nil
}

func checkPath(tag effectmodel.Tag, bucket, key string) error {
	if err := checkBucket(tag, bucket); err != nil {
		return err
	}
	if key == "" {
		return effectmodel.ValidationError(tag, "key must not be empty")
	}
	return nil
}

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}
