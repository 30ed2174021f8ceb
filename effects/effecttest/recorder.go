// Package effecttest provides test doubles for executors and interpreters.
package effecttest

import (
	"context"
	"fmt"
	"sync"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

var _ effectmodel.Executor = (*Recorder)(nil)

// Recorder is a scripted Executor. It records every description it is
// asked to execute and answers with outcomes queued per tag. Tags with an
// empty queue go to the fallback executor, or fail as Unroutable.
type Recorder struct {
	mu       sync.Mutex
	scripts  map[effectmodel.Tag][]effectmodel.Outcome
	fallback effectmodel.Executor
	calls    []effectmodel.Description
}

// NewRecorder returns a Recorder with nothing scripted.
func NewRecorder() *Recorder {
	return &Recorder{scripts: make(map[effectmodel.Tag][]effectmodel.Outcome)}
}

// On queues outcomes for tag, answered in order.
func (r *Recorder) On(tag effectmodel.Tag, outcomes ...effectmodel.Outcome) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[tag] = append(r.scripts[tag], outcomes...)
	return r
}

// OnSuccess queues one Success outcome per value.
func (r *Recorder) OnSuccess(tag effectmodel.Tag, values ...any) *Recorder {
	outcomes := make([]effectmodel.Outcome, len(values))
	for i, v := range values {
		outcomes[i] = effectmodel.Succeeded(v)
	}
	return r.On(tag, outcomes...)
}

// OnFailure queues one Failure of kind for tag.
func (r *Recorder) OnFailure(tag effectmodel.Tag, kind effectmodel.Kind) *Recorder {
	return r.On(tag, effectmodel.Failed(effectmodel.NewEffectError(kind, tag, "scripted failure", nil)))
}

// Fallback answers descriptions that have no scripted outcome left.
func (r *Recorder) Fallback(exec effectmodel.Executor) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = exec
	return r
}

func (r *Recorder) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	r.mu.Lock()
	r.calls = append(r.calls, d)
	var tag effectmodel.Tag
	if d != nil {
		tag = d.Tag()
	}
	if queued := r.scripts[tag]; len(queued) > 0 {
		r.scripts[tag] = queued[1:]
		r.mu.Unlock()
		return queued[0]
	}
	fallback := r.fallback
	r.mu.Unlock()

	if fallback != nil {
		return fallback.Execute(ctx, d)
	}
	return effectmodel.Failed(effectmodel.NewEffectError(
		effectmodel.KindUnroutable, tag, fmt.Sprintf("no scripted outcome for %T", d), nil))
}

// Calls returns every description executed so far, in order.
func (r *Recorder) Calls() []effectmodel.Description {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]effectmodel.Description(nil), r.calls...)
}

// CallCount counts executions of tag.
func (r *Recorder) CallCount(tag effectmodel.Tag) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.calls {
		if d != nil && d.Tag() == tag {
			n++
		}
	}
	return n
}

// Pending counts scripted outcomes not yet consumed.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, q := range r.scripts {
		n += len(q)
	}
	return n
}
