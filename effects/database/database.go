package database

import (
	"context"
	"errors"
	"fmt"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

var (
	// ErrDuplicateKey is returned by Insert when the key already exists.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNoSuchRecord is returned by Update and Delete for a missing key.
	ErrNoSuchRecord = errors.New("no such record")
	// ErrVersionMismatch is returned by Update when the expected version is stale.
	ErrVersionMismatch = errors.New("version mismatch")
	// ErrBusy marks a transient lock or contention failure.
	ErrBusy = errors.New("database busy")
)

// Repository is the narrow capability a database adapter provides.
// Implementations acquire whatever connection they need per call and release
// it before returning.
type Repository interface {
	Get(ctx context.Context, collection, id string) (Record, bool, error)
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record, expectedVersion uint64) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}

var _ effectmodel.Interpreter = (*Interpreter)(nil)

// Interpreter executes database descriptions against a Repository.
type Interpreter struct {
	repo Repository
}

// NewInterpreter executes database descriptions against repo.
func NewInterpreter(repo Repository) *Interpreter {
	return &Interpreter{repo: repo}
}

func (*Interpreter) Tags() []effectmodel.Tag {
	return effectmodel.TagsOf(effectmodel.FamilyDatabase)
}

// Execute performs exactly one repository call.
func (in *Interpreter) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	switch d := d.(type) {

	case GetByID:
		rec, ok, err := in.repo.Get(ctx, d.collection, d.id)
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(pure.OptionFromPair(rec, ok))

	case Save:
		rec := Record{Collection: d.collection, ID: d.id, Version: 1, Data: []byte(d.data)}
		if err := in.repo.Insert(ctx, rec); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(rec)

	case Update:
		rec, err := in.repo.Update(ctx, Record{Collection: d.collection, ID: d.id, Data: []byte(d.data)}, d.expectedVersion)
		if err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(rec)

	case Delete:
		if err := in.repo.Delete(ctx, d.collection, d.id); err != nil {
			return effectmodel.Failed(classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	default:
		// The composite only routes database tags here.
		panic(fmt.Errorf("database interpreter: foreign description %T", d))
	}
}

func classify(tag effectmodel.Tag, err error) effectmodel.EffectError {
	switch {
	case errors.Is(err, ErrDuplicateKey):
		return effectmodel.NewEffectError(effectmodel.KindConflict, tag, "uniqueness violation", err)
	case errors.Is(err, ErrVersionMismatch):
		return effectmodel.NewEffectError(effectmodel.KindConflict, tag, "stale version", err)
	case errors.Is(err, ErrNoSuchRecord):
		return effectmodel.NewEffectError(effectmodel.KindNotFound, tag, "record not found", err)
	case errors.Is(err, ErrBusy):
		return effectmodel.NewEffectError(effectmodel.KindTransient, tag, "database busy", err)
	default:
		return effectmodel.Classify(tag, err)
	}
}

// RepositoryFuncs adapts plain functions into a Repository, for test doubles.
// A nil function fails with ErrBusy.
type RepositoryFuncs struct {
	GetFn    func(ctx context.Context, collection, id string) (Record, bool, error)
	InsertFn func(ctx context.Context, rec Record) error
	UpdateFn func(ctx context.Context, rec Record, expectedVersion uint64) (Record, error)
	DeleteFn func(ctx context.Context, collection, id string) error
}

var _ Repository = RepositoryFuncs{}

func (r RepositoryFuncs) Get(ctx context.Context, collection, id string) (Record, bool, error) {
	if r.GetFn == nil {
		return Record{}, false, ErrBusy
	}
	return r.GetFn(ctx, collection, id)
}

func (r RepositoryFuncs) Insert(ctx context.Context, rec Record) error {
	if r.InsertFn == nil {
		return ErrBusy
	}
	return r.InsertFn(ctx, rec)
}

func (r RepositoryFuncs) Update(ctx context.Context, rec Record, expectedVersion uint64) (Record, error) {
	if r.UpdateFn == nil {
		return Record{}, ErrBusy
	}
	return r.UpdateFn(ctx, rec, expectedVersion)
}

func (r RepositoryFuncs) Delete(ctx context.Context, collection, id string) error {
	if r.DeleteFn == nil {
		return ErrBusy
	}
	return r.DeleteFn(ctx, collection, id)
}
