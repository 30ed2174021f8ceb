package effects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
	"github.com/on-the-ground/effect_ive_engine/pure"
)

// ErrAbandoned is returned when the caller's context ends before a program
// completes. Descriptions already executed are not rolled back.
var ErrAbandoned = errors.New("program abandoned")

// StepEvent describes one executed step of a run.
type StepEvent struct {
	RunID       string
	Step        int
	Description effectmodel.Description
	Outcome     effectmodel.Outcome
	Elapsed     time.Duration
	Span        effectmodel.TimeSpan
}

func (e StepEvent) TimeSpan() effectmodel.TimeSpan { return e.Span }

// Observer is told about every step a Runner executes.
type Observer interface {
	ObserveStep(StepEvent)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(StepEvent)

func (f ObserverFunc) ObserveStep(e StepEvent) { f(e) }

// Runner drives programs against an Executor. It holds no per-run state, so
// one Runner may drive many programs concurrently.
type Runner struct {
	exec      effectmodel.Executor
	logger    *zap.Logger
	observers []Observer
	metrics   *Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for program lifecycle events. The default is a no-op.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithObserver adds an observer; observers are called in the order added.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

// WithMetrics records program counts and durations on m.
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner returns a Runner executing descriptions on exec.
func NewRunner(exec effectmodel.Executor, opts ...RunnerOption) *Runner {
	r := &Runner{exec: exec, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives p until it completes and returns its result.
//
// Every outcome, Success or Failure, is fed back to the program unchanged;
// deciding what a failure means is the program's job. The error is non-nil
// only when ctx ends between steps, in which case it wraps ErrAbandoned.
func Run[T, E any](ctx context.Context, r *Runner, p Program[T, E]) (pure.Result[T, E], error) {
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))
	logger.Debug("program started")

	prev := pure.None[effectmodel.Outcome]()
	for step := 0; ; step++ {
		s := p.Resume(prev)
		if res, done := s.Result(); done {
			logger.Debug("program completed",
				zap.Int("steps", step),
				zap.Bool("success", res.IsSuccess()),
			)
			r.countProgram(res.IsSuccess())
			return res, nil
		}
		d, _ := s.Request()

		if err := ctx.Err(); err != nil {
			logger.Debug("program abandoned", zap.Int("step", step), zap.Error(err))
			if r.metrics != nil {
				r.metrics.observeProgram(outcomeAbandoned)
			}
			var zero pure.Result[T, E]
			return zero, fmt.Errorf("%w at step %d: %w", ErrAbandoned, step, err)
		}

		start := time.Now()
		o := r.exec.Execute(ctx, d)
		end := time.Now()
		elapsed := end.Sub(start)
		logger.Debug("step executed",
			zap.Int("step", step),
			zap.String("tag", string(tagOf(d))),
			zap.Bool("success", o.IsSuccess()),
		)
		for _, obs := range r.observers {
			obs.ObserveStep(StepEvent{
				RunID:       runID,
				Step:        step,
				Description: d,
				Outcome:     o,
				Elapsed:     elapsed,
				Span:        effectmodel.SpanBetween(start, end),
			})
		}
		prev = pure.Some(o)
	}
}

// RunProgram is Run for a plan.
func RunProgram[T, E any](ctx context.Context, r *Runner, plan Plan[T, E]) (pure.Result[T, E], error) {
	return Run(ctx, r, NewProgram(plan))
}

func (r *Runner) countProgram(success bool) {
	if r.metrics == nil {
		return
	}
	if success {
		r.metrics.observeProgram(outcomeSuccess)
	} else {
		r.metrics.observeProgram(outcomeFailure)
	}
}
