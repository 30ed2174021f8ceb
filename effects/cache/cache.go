package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

// ErrRejected is returned when a store declines to keep a value.
var ErrRejected = errors.New("cache rejected value")

// Store is the narrow capability a cache adapter provides.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

var _ effectmodel.Interpreter = (*Interpreter)(nil)

// Interpreter executes cache descriptions against a Store.
type Interpreter struct {
	store Store
}

// NewInterpreter executes cache descriptions against store.
func NewInterpreter(store Store) *Interpreter {
	return &Interpreter{store: store}
}

func (*Interpreter) Tags() []effectmodel.Tag {
	return effectmodel.TagsOf(effectmodel.FamilyCache)
}

func (in *Interpreter) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	switch d := d.(type) {

	case Get:
		v, ok, err := in.store.Get(ctx, d.key)
		if err != nil {
			return effectmodel.Failed(effectmodel.Classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(pure.OptionFromPair(v, ok))

	case Put:
		if err := in.store.Set(ctx, d.key, []byte(d.value), d.ttl); err != nil {
			return effectmodel.Failed(effectmodel.Classify(d.Tag(), err))
		}
		return effectmodel.Succeeded(struct{}{})

	default:
		panic(fmt.Errorf("cache interpreter: foreign description %T", d))
	}
}

// StoreFuncs adapts plain functions into a Store.
type StoreFuncs struct {
	GetFn func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

var _ Store = StoreFuncs{}

func (s StoreFuncs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.GetFn == nil {
		return nil, false, nil
	}
	return s.GetFn(ctx, key)
}

func (s StoreFuncs) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.SetFn == nil {
		return nil
	}
	return s.SetFn(ctx, key, value, ttl)
}
