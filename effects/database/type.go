package database

import (
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Description is a sealed interface for database operations.
// Only GetByID, Save, Update and Delete implement it.
type Description interface {
	effectmodel.Description
	effectmodel.Partitionable
	databaseDescription()
}

var (
	_ Description = GetByID{}
	_ Description = Save{}
	_ Description = Update{}
	_ Description = Delete{}
)

// Record is one stored entry. Version starts at 1 and grows by one per update.
type Record struct {
	Collection string
	ID         string
	Version    uint64
	Data       []byte
}

func (r Record) clone() Record {
	r.Data = append([]byte(nil), r.Data...)
	return r
}

func checkKey(tag effectmodel.Tag, collection, id string) error {
	if collection == "" {
		return effectmodel.ValidationError(tag, "collection must not be empty")
	}
	if id == "" {
		return effectmodel.ValidationError(tag, "id must not be empty")
	}
	return nil
}

// GetByID looks a record up. Absence is data, never an error.
type GetByID struct {
	collection string
	id         string
}

// GetByIDOf rejects an empty collection or id.
func GetByIDOf(collection, id string) (GetByID, error) {
	if err := checkKey(effectmodel.TagDatabaseGetByID, collection, id); err != nil {
		return GetByID{}, err
	}
	return GetByID{collection: collection, id: id}, nil
}

// MustGetByIDOf panics on invalid arguments.
func MustGetByIDOf(collection, id string) GetByID {
	return must(GetByIDOf(collection, id))
}

func (GetByID) Tag() effectmodel.Tag   { return effectmodel.TagDatabaseGetByID }
func (d GetByID) Collection() string   { return d.collection }
func (d GetByID) ID() string           { return d.id }
func (d GetByID) PartitionKey() string { return d.collection + "/" + d.id }
func (GetByID) databaseDescription()   {}

// Save inserts a new record. An existing key is a conflict.
type Save struct {
	collection string
	id         string
	data       string
}

// SaveOf describes inserting a new record.
func SaveOf(collection, id string, data []byte) (Save, error) {
	if err := checkKey(effectmodel.TagDatabaseSave, collection, id); err != nil {
		return Save{}, err
	}
	return Save{collection: collection, id: id, data: string(data)}, nil
}

func MustSaveOf(collection, id string, data []byte) Save {
	return must(SaveOf(collection, id, data))
}

func (Save) Tag() effectmodel.Tag   { return effectmodel.TagDatabaseSave }
func (d Save) Collection() string   { return d.collection }
func (d Save) ID() string           { return d.id }
func (d Save) Data() []byte         { return []byte(d.data) }
func (d Save) PartitionKey() string { return d.collection + "/" + d.id }
func (Save) databaseDescription()   {}

// Update replaces the data of an existing record.
// A zero ExpectedVersion updates unconditionally (last writer wins);
// otherwise the stored version must match.
type Update struct {
	collection      string
	id              string
	data            string
	expectedVersion uint64
}

// UpdateOf describes an optimistic update guarded by expectedVersion.
func UpdateOf(collection, id string, data []byte, expectedVersion uint64) (Update, error) {
	if err := checkKey(effectmodel.TagDatabaseUpdate, collection, id); err != nil {
		return Update{}, err
	}
	return Update{collection: collection, id: id, data: string(data), expectedVersion: expectedVersion}, nil
}

func MustUpdateOf(collection, id string, data []byte, expectedVersion uint64) Update {
	return must(UpdateOf(collection, id, data, expectedVersion))
}

func (Update) Tag() effectmodel.Tag      { return effectmodel.TagDatabaseUpdate }
func (d Update) Collection() string      { return d.collection }
func (d Update) ID() string              { return d.id }
func (d Update) Data() []byte            { return []byte(d.data) }
func (d Update) ExpectedVersion() uint64 { return d.expectedVersion }
func (d Update) PartitionKey() string    { return d.collection + "/" + d.id }
func (Update) databaseDescription()      {}

// Delete removes a record.
type Delete struct {
	collection string
	id         string
}

// DeleteOf describes removing a record.
func DeleteOf(collection, id string) (Delete, error) {
	if err := checkKey(effectmodel.TagDatabaseDelete, collection, id); err != nil {
		return Delete{}, err
	}
	return Delete{collection: collection, id: id}, nil
}

func MustDeleteOf(collection, id string) Delete {
	return must(DeleteOf(collection, id))
}

func (Delete) Tag() effectmodel.Tag   { return effectmodel.TagDatabaseDelete }
func (d Delete) Collection() string   { return d.collection }
func (d Delete) ID() string           { return d.id }
func (d Delete) PartitionKey() string { return d.collection + "/" + d.id }
func (Delete) databaseDescription()   {}

func must[D any](d D, err error) D {
	if err != nil {
		panic(err)
	}
	return d
}
