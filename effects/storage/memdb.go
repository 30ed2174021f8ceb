package storage

import (
	"context"
	"fmt"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	objectTable = "object"
	pathIndex   = "id"
)

type storedObject struct {
	Path   string
	Object Object
}

func pathOf(bucket, key string) string { return bucket + "/" + key }

func objectSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			objectTable: {
				Name: objectTable,
				Indexes: map[string]*memdb.IndexSchema{
					pathIndex: {
						Name:    pathIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Path"},
					},
				},
			},
		},
	}
}

var _ BucketStore = (*MemDBBucketStore)(nil)

// MemDBBucketStore keeps objects in an in-process go-memdb database keyed by
// "bucket/key". The radix index keeps keys ordered, so List is a prefix scan.
type MemDBBucketStore struct {
	db *memdb.MemDB
}

// NewMemDBBucketStore returns an empty in-memory bucket store.
func NewMemDBBucketStore() (*MemDBBucketStore, error) {
	db, err := memdb.NewMemDB(objectSchema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &MemDBBucketStore{db: db}, nil
}

func (m *MemDBBucketStore) Get(ctx context.Context, bucket, key string) (Object, bool, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, false, err
	}
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(objectTable, pathIndex, pathOf(bucket, key))
	if err != nil || raw == nil {
		return Object{}, false, err
	}
	return raw.(*storedObject).Object.clone(), true, nil
}

func (m *MemDBBucketStore) Put(ctx context.Context, obj Object) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	stored := &storedObject{Path: pathOf(obj.Bucket, obj.Key), Object: obj.clone()}
	if err := txn.Insert(objectTable, stored); err != nil {
		return ObjectInfo{}, err
	}
	txn.Commit()
	return stored.Object.clone().ObjectInfo, nil
}

func (m *MemDBBucketStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(objectTable, pathIndex, pathOf(bucket, key)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemDBBucketStore) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(objectTable, pathIndex+"_prefix", pathOf(bucket, prefix))
	if err != nil {
		return nil, err
	}
	infos := make([]ObjectInfo, 0)
	for raw := it.Next(); raw != nil && len(infos) < maxKeys; raw = it.Next() {
		infos = append(infos, raw.(*storedObject).Object.clone().ObjectInfo)
	}
	return infos, nil
}
