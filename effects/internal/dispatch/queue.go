package dispatch

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Dispatcher picks the worker channel a message is queued on.
type Dispatcher[T any] interface {
	ChannelOf(msg T) chan<- T
}

// --- single queue ---

type singleQueue[T any] struct {
	ch chan T
}

func (q singleQueue[T]) ChannelOf(_ T) chan<- T {
	return q.ch
}

// NewSingleQueue starts one worker. It returns once the worker is running.
// Workers stop when stop is closed, after handling everything already queued.
func NewSingleQueue[T any](
	ctx context.Context,
	stop <-chan struct{},
	wg *sync.WaitGroup,
	bufferSize int,
	handleFn func(context.Context, T),
) Dispatcher[T] {
	ch := make(chan T, bufferSize)
	ready := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(ready)
		work(ctx, stop, ch, handleFn)
	}()
	<-ready
	return singleQueue[T]{ch: ch}
}

// --- partitioned queue ---

type partitionedQueue[T effectmodel.Partitionable] struct {
	chs []chan T
}

func (pq partitionedQueue[T]) ChannelOf(msg T) chan<- T {
	return pq.chs[IndexOf(msg.PartitionKey(), len(pq.chs))]
}

// NewPartitionedQueue starts numWorkers workers. Messages with the same
// partition key always land on the same worker, in submission order.
func NewPartitionedQueue[T effectmodel.Partitionable](
	ctx context.Context,
	stop <-chan struct{},
	wg *sync.WaitGroup,
	numWorkers, bufferSize int,
	handleFn func(context.Context, T),
) Dispatcher[T] {
	chs := make([]chan T, numWorkers)
	var ready sync.WaitGroup
	for i := range chs {
		ch := make(chan T, bufferSize)
		chs[i] = ch
		ready.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			work(ctx, stop, ch, handleFn)
		}()
	}
	ready.Wait()
	return partitionedQueue[T]{chs: chs}
}

// IndexOf maps key onto one of n partitions.
func IndexOf(key string, n int) int {
	switch n {
	case 0:
		panic("number of channels cannot be 0")
	case 1:
		return 0
	default:
		return int(xxhash.Sum64String(key) % uint64(n))
	}
}

func work[T any](ctx context.Context, stop <-chan struct{}, ch chan T, handleFn func(context.Context, T)) {
	for {
		select {
		case msg := <-ch:
			handleFn(ctx, msg)
		case <-stop:
			drain(ctx, ch, handleFn)
			return
		}
	}
}

func drain[T any](ctx context.Context, ch chan T, handleFn func(context.Context, T)) {
	for {
		select {
		case msg := <-ch:
			handleFn(ctx, msg)
		default:
			return
		}
	}
}
