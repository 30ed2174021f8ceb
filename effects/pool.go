package effects

import (
	"context"
	"errors"

	"github.com/on-the-ground/effect_ive_engine/effects/internal/dispatch"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

// ErrPoolClosed is returned by Submit once the pool is closed.
var ErrPoolClosed = errors.New("pool closed")

// RunResult is what Run returned for a submitted program.
type RunResult[T, E any] struct {
	Result pure.Result[T, E]
	Err    error
}

type job struct {
	key string
	run func()
}

func (j job) PartitionKey() string { return j.key }

// Pool runs independent programs on a fixed set of workers. Programs
// submitted with the same key run one at a time, in submission order.
type Pool struct {
	ID     string
	runner *Runner
	scope  *dispatch.Scope[job]
}

// NewPool starts cfg.NumWorkers workers. The pool closes when ctx ends.
func NewPool(ctx context.Context, cfg effectmodel.EffectScopeConfig, runner *Runner) *Pool {
	scope := dispatch.NewScope(ctx, cfg, func(_ context.Context, j job) { j.run() })
	return &Pool{ID: scope.ID, runner: runner, scope: scope}
}

// Submit queues program and returns a channel that receives its result
// exactly once. ctx governs both queueing and the run itself.
func Submit[T, E any](ctx context.Context, p *Pool, key string, program Program[T, E]) <-chan RunResult[T, E] {
	out := make(chan RunResult[T, E], 1)
	err := p.scope.Dispatch(ctx, job{
		key: key,
		run: func() {
			res, err := Run(ctx, p.runner, program)
			out <- RunResult[T, E]{Result: res, Err: err}
		},
	})
	if errors.Is(err, dispatch.ErrScopeClosed) {
		err = ErrPoolClosed
	}
	if err != nil {
		out <- RunResult[T, E]{Err: err}
	}
	return out
}

// Close stops accepting programs and waits for queued ones to finish.
func (p *Pool) Close() {
	p.scope.Close()
}
