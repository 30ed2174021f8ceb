package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

var ErrScopeClosed = errors.New("dispatch scope closed")

// Scope owns a set of workers. Every message accepted by Dispatch is handled
// exactly once, even when the scope closes before a worker reaches it.
// The scope closes itself when its context ends.
type Scope[T effectmodel.Partitionable] struct {
	ID string

	mu         sync.RWMutex
	closed     bool
	stop       chan struct{}
	workers    sync.WaitGroup
	dispatcher Dispatcher[T]
}

// NewScope starts cfg.NumWorkers workers. A single worker uses one shared
// queue; more workers partition by PartitionKey.
func NewScope[T effectmodel.Partitionable](
	ctx context.Context,
	cfg effectmodel.EffectScopeConfig,
	handleFn func(context.Context, T),
) *Scope[T] {
	cfg = effectmodel.NewEffectScopeConfig(cfg.BufferSize, cfg.NumWorkers)
	s := &Scope[T]{
		ID:   uuid.NewString(),
		stop: make(chan struct{}),
	}
	if cfg.NumWorkers == 1 {
		s.dispatcher = NewSingleQueue(ctx, s.stop, &s.workers, cfg.BufferSize, handleFn)
	} else {
		s.dispatcher = NewPartitionedQueue(ctx, s.stop, &s.workers, cfg.NumWorkers, cfg.BufferSize, handleFn)
	}
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.stop:
		}
	}()
	return s
}

// Dispatch queues msg, blocking while its worker's buffer is full.
func (s *Scope[T]) Dispatch(ctx context.Context, msg T) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrScopeClosed
	}
	select {
	case s.dispatcher.ChannelOf(msg) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages and waits for the workers to finish what
// was already queued. Closing twice is a no-op.
func (s *Scope[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()
	s.workers.Wait()
}
