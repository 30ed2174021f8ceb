package database

import (
	"context"
	"fmt"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	recordTable = "record"
	recordIndex = "id"
)

func recordSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			recordTable: {
				Name: recordTable,
				Indexes: map[string]*memdb.IndexSchema{
					recordIndex: {
						Name:   recordIndex,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Collection"},
								&memdb.StringFieldIndex{Field: "ID"},
							},
						},
					},
				},
			},
		},
	}
}

var _ Repository = (*MemDBRepository)(nil)

// MemDBRepository keeps records in an in-process go-memdb database.
// Every call runs in its own transaction, aborted on every exit path.
type MemDBRepository struct {
	db *memdb.MemDB
}

// NewMemDBRepository returns an empty in-memory repository.
func NewMemDBRepository() (*MemDBRepository, error) {
	db, err := memdb.NewMemDB(recordSchema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &MemDBRepository{db: db}, nil
}

func (m *MemDBRepository) Get(ctx context.Context, collection, id string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(recordTable, recordIndex, collection, id)
	if err != nil || raw == nil {
		return Record{}, false, err
	}
	return raw.(*Record).clone(), true, nil
}

func (m *MemDBRepository) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	old, err := txn.First(recordTable, recordIndex, rec.Collection, rec.ID)
	if err != nil {
		return err
	} else if old != nil {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateKey, rec.Collection, rec.ID)
	}

	stored := rec.clone()
	if err := txn.Insert(recordTable, &stored); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemDBRepository) Update(ctx context.Context, rec Record, expectedVersion uint64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(recordTable, recordIndex, rec.Collection, rec.ID)
	if err != nil {
		return Record{}, err
	} else if raw == nil {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrNoSuchRecord, rec.Collection, rec.ID)
	}
	actual := raw.(*Record)
	if expectedVersion != 0 && actual.Version != expectedVersion {
		return Record{}, fmt.Errorf("%w: have %d, expected %d", ErrVersionMismatch, actual.Version, expectedVersion)
	}

	next := rec.clone()
	next.Version = actual.Version + 1
	if err := txn.Insert(recordTable, &next); err != nil {
		return Record{}, err
	}
	txn.Commit()
	return next.clone(), nil
}

func (m *MemDBRepository) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	actual, err := txn.First(recordTable, recordIndex, collection, id)
	if err != nil {
		return err
	} else if actual == nil {
		return fmt.Errorf("%w: %s/%s", ErrNoSuchRecord, collection, id)
	}

	if err := txn.Delete(recordTable, actual); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
